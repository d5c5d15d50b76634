package config

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/0xPolygon/ethtx-gateway/ethtxmanager"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"
)

const (
	// FlagCfg is the flag for cfg
	FlagCfg = "cfg"
	// FlagNetwork is the flag for the network name. Valid values: ["mainnet", "sepolia", "polygon", "amoy", "local", "custom"]
	FlagNetwork = "network"
	// FlagCustomNetwork is the flag for the custom network file
	FlagCustomNetwork = "custom-network-file"

	envPrefix = "ETHTXGATEWAY"
)

// Config represents the configuration of the entire gateway
type Config struct {
	// TxManager configuration, including the node endpoints, signers and logs
	TxManager ethtxmanager.Config `mapstructure:"TxManager"`
	// LogFilter configuration
	LogFilter LogFilterConfig `mapstructure:"LogFilter"`
	// Metrics configuration
	Metrics MetricsConfig `mapstructure:"Metrics"`
	// NetworkConfig is the network preset applied on load, if any
	NetworkConfig NetworkConfig `mapstructure:"-"`
}

// LogFilterConfig configures the eth_getLogs requests
type LogFilterConfig struct {
	// MaxChunk is the block span of each request of a chunked query
	MaxChunk uint64 `mapstructure:"MaxChunk"`
}

// MetricsConfig configures the prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"Enabled"`
	Host    string `mapstructure:"Host"`
	Port    int    `mapstructure:"Port"`
}

// Addr returns the listen address of the metrics endpoint
func (m MetricsConfig) Addr() string {
	return fmt.Sprintf("%s:%d", m.Host, m.Port)
}

// Default parses the default configuration values
func Default() (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}
	return unmarshal(v)
}

// Load loads the configuration from the flags of the command
func Load(ctx *cli.Context) (*Config, error) {
	return LoadFile(ctx.String(FlagCfg), ctx.String(FlagNetwork), ctx.String(FlagCustomNetwork))
}

// LoadFile loads the defaults, merges the optional configuration file and the
// ETHTXGATEWAY_* environment variables, and applies the network preset
func LoadFile(configFilePath, networkName, customNetworkFile string) (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	if configFilePath != "" {
		fileExtension := strings.TrimPrefix(filepath.Ext(configFilePath), ".")
		if fileExtension == "" {
			fileExtension = "toml"
		}
		v.SetConfigFile(configFilePath)
		v.SetConfigType(fileExtension)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read configuration file %s: %w", configFilePath, err)
		}
	}

	cfg, err := unmarshal(v)
	if err != nil {
		return nil, err
	}

	if networkName != "" {
		network, err := LoadNetworkConfig(networkName, customNetworkFile)
		if err != nil {
			return nil, err
		}
		network.apply(cfg)
		cfg.NetworkConfig = network
	}

	return cfg, nil
}

func newViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("toml")
	if err := v.ReadConfig(bytes.NewBufferString(DefaultValues)); err != nil {
		return nil, fmt.Errorf("failed to read default configuration: %w", err)
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix(envPrefix)
	return v, nil
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	return &cfg, nil
}
