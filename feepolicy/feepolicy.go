// Package feepolicy computes the EIP-1559 fees of new transactions and the
// escalated fees of replacements.
package feepolicy

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	localCommon "github.com/0xPolygon/ethtx-gateway/common"
	"github.com/0xPolygon/ethtx-gateway/log"
	"github.com/0xPolygon/ethtx-gateway/types"
)

// priorityDivisor derives the priority fee from the network gas price
const priorityDivisor = 10

var (
	// ErrInvalidConfig is returned when a floor or a bump isn't positive
	ErrInvalidConfig = errors.New("invalid fee policy configuration")
	// ErrInvalidGasPrice is returned when the network reports a non positive gas price
	ErrInvalidGasPrice = errors.New("invalid gas price")
)

// GasPriceFetcher returns the legacy gas price of the network, usually eth_gasPrice
type GasPriceFetcher func(ctx context.Context) (*big.Int, error)

// Policy computes fee quotes, it is immutable and safe for concurrent use
type Policy struct {
	cfg           Config
	minPriority   *big.Int
	minMaxFee     *big.Int
	priorityBump  *big.Int
	maxFeeBump    *big.Int
	maxFeeLimit   *big.Int
	baseMult      *big.Float
	replaceFactor *big.Float
}

// New validates the configuration and creates a policy
func New(cfg Config) (*Policy, error) {
	switch {
	case cfg.MinPriorityFeeGwei <= 0:
		return nil, fmt.Errorf("%w: MinPriorityFeeGwei must be positive", ErrInvalidConfig)
	case cfg.MinMaxFeeGwei <= 0:
		return nil, fmt.Errorf("%w: MinMaxFeeGwei must be positive", ErrInvalidConfig)
	case cfg.PriorityBumpGwei <= 0:
		return nil, fmt.Errorf("%w: PriorityBumpGwei must be positive", ErrInvalidConfig)
	case cfg.MaxFeeBumpGwei <= 0:
		return nil, fmt.Errorf("%w: MaxFeeBumpGwei must be positive", ErrInvalidConfig)
	case cfg.BaseMultiplier <= 0:
		return nil, fmt.Errorf("%w: BaseMultiplier must be positive", ErrInvalidConfig)
	case cfg.ReplacementFactor <= 0:
		return nil, fmt.Errorf("%w: ReplacementFactor must be positive", ErrInvalidConfig)
	case cfg.MaxFeeLimitGwei < 0:
		return nil, fmt.Errorf("%w: MaxFeeLimitGwei can't be negative", ErrInvalidConfig)
	}

	p := &Policy{
		cfg:           cfg,
		minPriority:   localCommon.FloatGweiToWei(cfg.MinPriorityFeeGwei),
		minMaxFee:     localCommon.FloatGweiToWei(cfg.MinMaxFeeGwei),
		priorityBump:  localCommon.FloatGweiToWei(cfg.PriorityBumpGwei),
		maxFeeBump:    localCommon.FloatGweiToWei(cfg.MaxFeeBumpGwei),
		baseMult:      big.NewFloat(cfg.BaseMultiplier),
		replaceFactor: big.NewFloat(cfg.ReplacementFactor),
	}
	if cfg.MaxFeeLimitGwei > 0 {
		p.maxFeeLimit = localCommon.FloatGweiToWei(cfg.MaxFeeLimitGwei)
	}
	return p, nil
}

// Config returns the configuration the policy was built with
func (p *Policy) Config() Config {
	return p.cfg
}

// Suggest computes the fees of a new transaction from the network gas price
func (p *Policy) Suggest(ctx context.Context, fetch GasPriceFetcher) (types.FeeQuote, error) {
	base, err := fetch(ctx)
	if err != nil {
		return types.FeeQuote{}, fmt.Errorf("failed to get gas price: %w", err)
	}
	if base == nil || base.Sign() <= 0 {
		return types.FeeQuote{}, fmt.Errorf("%w: %v", ErrInvalidGasPrice, base)
	}

	return p.SuggestFromBase(base), nil
}

// SuggestFromBase computes the fees of a new transaction for a known gas price
func (p *Policy) SuggestFromBase(base *big.Int) types.FeeQuote {
	priority := localCommon.MaxBigInt(p.minPriority, new(big.Int).Div(base, big.NewInt(priorityDivisor)))
	maxFee := localCommon.MaxBigInt(p.minMaxFee, mulFloat(base, p.baseMult))

	if p.maxFeeLimit != nil && maxFee.Cmp(p.maxFeeLimit) > 0 {
		log.Infof("max fee %s gwei capped to %s gwei", localCommon.WeiToGwei(maxFee), localCommon.WeiToGwei(p.maxFeeLimit))
		maxFee = new(big.Int).Set(p.maxFeeLimit)
	}
	if maxFee.Cmp(priority) < 0 {
		maxFee = new(big.Int).Set(priority)
	}

	return types.FeeQuote{Priority: priority, MaxFee: maxFee}
}

// Replace escalates the fees of a stuck transaction, both components grow
// at least by the configured bumps whatever the factor is
func (p *Policy) Replace(prev types.FeeQuote) types.FeeQuote {
	priority := localCommon.MaxBigInt(
		mulFloat(prev.Priority, p.replaceFactor),
		new(big.Int).Add(prev.Priority, p.priorityBump),
	)
	maxFee := localCommon.MaxBigInt(
		mulFloat(prev.MaxFee, p.replaceFactor),
		new(big.Int).Add(prev.MaxFee, p.maxFeeBump),
	)
	if maxFee.Cmp(priority) < 0 {
		maxFee = new(big.Int).Set(priority)
	}
	return types.FeeQuote{Priority: priority, MaxFee: maxFee}
}

// mulFloat multiplies v by f truncating the result to wei
func mulFloat(v *big.Int, f *big.Float) *big.Int {
	res, _ := new(big.Float).Mul(new(big.Float).SetInt(v), f).Int(nil)
	return res
}
