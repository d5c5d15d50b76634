package jsonrpc

import "github.com/0xPolygon/ethtx-gateway/config/types"

// Config represents the configuration of the rpc gateway
type Config struct {
	// URLs is the ordered pool of node endpoints, requests rotate over them
	URLs []string `mapstructure:"URLs"`

	// RequestTimeout bounds every single HTTP attempt
	RequestTimeout types.Duration `mapstructure:"RequestTimeout"`

	// MaxRetries is the number of extra attempts on the same endpoint after a
	// connection error or a 5xx answer
	MaxRetries uint64 `mapstructure:"MaxRetries"`

	// RetryInterval is the wait between two attempts on the same endpoint
	RetryInterval types.Duration `mapstructure:"RetryInterval"`

	// HTTPHeaders are the headers to be used in the HTTP requests
	HTTPHeaders map[string]string `mapstructure:"HTTPHeaders"`
}
