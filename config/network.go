package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/0xPolygon/ethtx-gateway/log"
)

type network string

const (
	mainnet network = "mainnet"
	sepolia network = "sepolia"
	polygon network = "polygon"
	amoy    network = "amoy"
	local   network = "local"
	custom  network = "custom"
)

// ErrUnsupportedNetwork is returned for an unknown --network value
var ErrUnsupportedNetwork = errors.New("unsupported network")

// NetworkConfig describes the chain the gateway talks to
type NetworkConfig struct {
	// Name of the network
	Name string `json:"name"`
	// ChainID of the network
	ChainID uint64 `json:"chainId"`
	// RPCURLs are used when no endpoint is configured
	RPCURLs []string `json:"rpcUrls"`
}

var presets = map[network]NetworkConfig{
	mainnet: {Name: string(mainnet), ChainID: 1, RPCURLs: []string{"https://ethereum-rpc.publicnode.com"}},           //nolint:mnd
	sepolia: {Name: string(sepolia), ChainID: 11155111, RPCURLs: []string{"https://ethereum-sepolia-rpc.publicnode.com"}}, //nolint:mnd
	polygon: {Name: string(polygon), ChainID: 137, RPCURLs: []string{"https://polygon-rpc.com"}},                        //nolint:mnd
	amoy:    {Name: string(amoy), ChainID: 80002, RPCURLs: []string{"https://rpc-amoy.polygon.technology"}},           //nolint:mnd
	local:   {Name: string(local), ChainID: 1337, RPCURLs: []string{"http://localhost:8545"}},                          //nolint:mnd
}

// LoadNetworkConfig resolves a network preset, custom networks are read from customFile
func LoadNetworkConfig(name, customFile string) (NetworkConfig, error) {
	if network(name) == custom {
		networkJSON, err := LoadNetworkFileAsString(customFile)
		if err != nil {
			return NetworkConfig{}, err
		}
		return LoadNetworkFromJSONString(networkJSON)
	}

	cfg, found := presets[network(name)]
	if !found {
		return NetworkConfig{}, fmt.Errorf("%w %q. Must be one of: [%s, %s, %s, %s, %s, %s]",
			ErrUnsupportedNetwork, name, mainnet, sepolia, polygon, amoy, local, custom)
	}
	cfg.RPCURLs = append([]string{}, cfg.RPCURLs...)
	return cfg, nil
}

// LoadNetworkFileAsString loads the custom network file as a string
func LoadNetworkFileAsString(cfgPath string) (string, error) {
	if cfgPath == "" {
		return "", errors.New("custom network file not provided. Please use the custom-network-file flag")
	}

	f, err := os.Open(cfgPath) //nolint:gosec
	if err != nil {
		return "", err
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Error(err)
		}
	}()

	b, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// LoadNetworkFromJSONString decodes a custom network
func LoadNetworkFromJSONString(jsonStr string) (NetworkConfig, error) {
	var cfg NetworkConfig
	if err := json.Unmarshal([]byte(jsonStr), &cfg); err != nil {
		return NetworkConfig{}, fmt.Errorf("failed to decode network configuration: %w", err)
	}
	if cfg.ChainID == 0 {
		return NetworkConfig{}, errors.New("network configuration without chainId")
	}
	if cfg.Name == "" {
		cfg.Name = string(custom)
	}
	return cfg, nil
}

// apply sets the chain id and fills the endpoints when none are configured
func (n NetworkConfig) apply(cfg *Config) {
	etherman := &cfg.TxManager.Etherman
	if etherman.ChainID != 0 && etherman.ChainID != n.ChainID {
		log.Warnf("configured chain id %d overridden by network %s (%d)", etherman.ChainID, n.Name, n.ChainID)
	}
	etherman.ChainID = n.ChainID
	if len(etherman.RPC.URLs) == 0 {
		etherman.RPC.URLs = append([]string{}, n.RPCURLs...)
	}
}
