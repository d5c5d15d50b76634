package ethtxmanager

import (
	"time"

	"github.com/0xPolygon/ethtx-gateway/config/types"
	"github.com/0xPolygon/ethtx-gateway/etherman"
	"github.com/0xPolygon/ethtx-gateway/feepolicy"
	"github.com/0xPolygon/ethtx-gateway/log"
)

const (
	// DefaultConfirmTimeout is the time a broadcast tx has to get a receipt before being replaced
	DefaultConfirmTimeout = 120 * time.Second
	// DefaultPollInterval is the time between two receipt lookups
	DefaultPollInterval = 800 * time.Millisecond
	// DefaultMaxReplacements is the number of fee escalations before giving up
	DefaultMaxReplacements = 2
	// DefaultEstimatePadding multiplies the estimated gas
	DefaultEstimatePadding = 1.2
	// DefaultMinGasLimit is the lowest gas limit of a contract call
	DefaultMinGasLimit = 150000
	// DefaultMaxConcurrentSenders bounds the lifecycles running at the same time
	DefaultMaxConcurrentSenders = 4
	// DefaultQueueSize is the capacity of each sender queue
	DefaultQueueSize = 128
)

// Config is configuration for ethereum transaction manager
type Config struct {
	// ConfirmTimeout is the time to wait for the receipt of a broadcast tx
	// before replacing it with higher fees
	ConfirmTimeout types.Duration `mapstructure:"ConfirmTimeout"`

	// PollInterval is the time to sleep between receipt lookups
	PollInterval types.Duration `mapstructure:"PollInterval"`

	// MaxReplacements is the number of times a stuck tx is re-sent with higher fees
	MaxReplacements int `mapstructure:"MaxReplacements"`

	// EstimatePadding multiplies the gas estimated by the network.
	//
	// ex:
	// estimated gas: 100000
	// EstimatePadding: 1.2
	// gas limit = 120000, raised to MinGasLimit when lower
	EstimatePadding float64 `mapstructure:"EstimatePadding"`

	// MinGasLimit is the lowest gas limit used for a tx, it is never below 21000
	MinGasLimit uint64 `mapstructure:"MinGasLimit"`

	// ForcedGas is the amount of gas to be forced in case of gas estimation error,
	// 0 means the request fails when the estimation fails
	ForcedGas uint64 `mapstructure:"ForcedGas"`

	// MaxConcurrentSenders is the number of senders having a tx in flight at the same time
	MaxConcurrentSenders int64 `mapstructure:"MaxConcurrentSenders"`

	// QueueSize is the number of requests a sender queue holds before Add blocks
	QueueSize int `mapstructure:"QueueSize"`

	// StoragePath is the path of the SQLite storage, when empty the
	// in memory storage is used
	StoragePath string `mapstructure:"StoragePath"`

	// PersistenceFilename is the JSON file backing the in memory storage,
	// ignored when StoragePath is set
	PersistenceFilename string `mapstructure:"PersistenceFilename"`

	// FeePolicy configuration
	FeePolicy feepolicy.Config `mapstructure:"FeePolicy"`

	// Etherman configuration
	Etherman etherman.Config `mapstructure:"Etherman"`

	// Signers configuration
	Signers etherman.SignersConfig `mapstructure:"Signers"`

	// Log configuration
	Log log.Config `mapstructure:"Log"`
}

// withDefaults fills the zero values that have a meaningful default
func (c Config) withDefaults() Config {
	if c.ConfirmTimeout.Duration < 0 {
		c.ConfirmTimeout = types.NewDuration(DefaultConfirmTimeout)
	}
	if c.PollInterval.Duration <= 0 {
		c.PollInterval = types.NewDuration(DefaultPollInterval)
	}
	if c.MaxReplacements < 0 {
		c.MaxReplacements = 0
	}
	if c.EstimatePadding <= 0 {
		c.EstimatePadding = DefaultEstimatePadding
	}
	if c.MinGasLimit == 0 {
		c.MinGasLimit = DefaultMinGasLimit
	}
	if c.MaxConcurrentSenders <= 0 {
		c.MaxConcurrentSenders = DefaultMaxConcurrentSenders
	}
	if c.QueueSize <= 0 {
		c.QueueSize = DefaultQueueSize
	}
	return c
}

// DefaultConfig returns the configuration used when nothing is provided
func DefaultConfig() Config {
	return Config{
		ConfirmTimeout:       types.NewDuration(DefaultConfirmTimeout),
		PollInterval:         types.NewDuration(DefaultPollInterval),
		MaxReplacements:      DefaultMaxReplacements,
		EstimatePadding:      DefaultEstimatePadding,
		MinGasLimit:          DefaultMinGasLimit,
		MaxConcurrentSenders: DefaultMaxConcurrentSenders,
		QueueSize:            DefaultQueueSize,
		FeePolicy:            feepolicy.DefaultConfig(),
	}
}
