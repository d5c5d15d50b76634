package feepolicy

// Config is the EIP-1559 fee policy configuration, amounts are in gwei
type Config struct {
	// MinPriorityFeeGwei is the floor of the suggested priority fee
	MinPriorityFeeGwei float64 `mapstructure:"MinPriorityFeeGwei"`

	// MinMaxFeeGwei is the floor of the suggested max fee
	MinMaxFeeGwei float64 `mapstructure:"MinMaxFeeGwei"`

	// BaseMultiplier is applied to the network gas price to get the max fee
	//
	// ex:
	// gas price: 20 gwei
	// BaseMultiplier: 3
	// max fee = 60 gwei
	BaseMultiplier float64 `mapstructure:"BaseMultiplier"`

	// ReplacementFactor multiplies both fees of a stuck transaction
	ReplacementFactor float64 `mapstructure:"ReplacementFactor"`

	// PriorityBumpGwei is the minimum increase of the priority fee on replacement
	PriorityBumpGwei float64 `mapstructure:"PriorityBumpGwei"`

	// MaxFeeBumpGwei is the minimum increase of the max fee on replacement
	MaxFeeBumpGwei float64 `mapstructure:"MaxFeeBumpGwei"`

	// MaxFeeLimitGwei caps the suggested max fee, 0 means no limit.
	// Replacements are never capped, a capped replacement could be
	// rejected as underpriced by the node.
	MaxFeeLimitGwei float64 `mapstructure:"MaxFeeLimitGwei"`
}

// DefaultConfig returns the default fee policy
func DefaultConfig() Config {
	return Config{
		MinPriorityFeeGwei: 3,   //nolint:gomnd
		MinMaxFeeGwei:      40,  //nolint:gomnd
		BaseMultiplier:     3,   //nolint:gomnd
		ReplacementFactor:  1.5, //nolint:gomnd
		PriorityBumpGwei:   1,
		MaxFeeBumpGwei:     10, //nolint:gomnd
	}
}
