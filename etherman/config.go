package etherman

import (
	"github.com/0xPolygon/ethtx-gateway/config/types"
	"github.com/0xPolygon/ethtx-gateway/jsonrpc"
)

// Config represents the configuration of the etherman
type Config struct {
	// RPC is the configuration of the node endpoint pool
	RPC jsonrpc.Config `mapstructure:"RPC"`

	// ChainID is the chain ID of the network, 0 means it is fetched from the node
	ChainID uint64 `mapstructure:"ChainID"`
}

// SignersConfig is the configuration of the accounts able to sign
type SignersConfig struct {
	// PrivateKeys defines all the key store files that are going
	// to be read in order to provide the private keys to sign the txs
	PrivateKeys []types.KeystoreFileConfig `mapstructure:"PrivateKeys"`

	// HexKeys are raw 0x prefixed private keys, meant for local networks
	HexKeys []string `mapstructure:"HexKeys"`
}
