package types

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// EthermanInterface is the interface that wraps the chain operations used by the tx lifecycle.
type EthermanInterface interface {
	ChainID(ctx context.Context) (*big.Int, error)
	GetTx(ctx context.Context, txHash common.Hash) (*types.Transaction, bool, error)
	GetTxReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	SendTx(ctx context.Context, tx *types.Transaction) error
	PendingNonce(ctx context.Context, account common.Address) (uint64, error)
	SuggestedGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, from common.Address, to *common.Address, value *big.Int, data []byte) (uint64, error)
	CheckTxWasMined(ctx context.Context, txHash common.Hash) (bool, *types.Receipt, error)
}

// Signer produces signatures for a single account. Key material never leaves it.
type Signer interface {
	Address() common.Address
	// SignHash returns a 65 bytes [R || S || V] secp256k1 signature of the digest
	SignHash(digest common.Hash) ([]byte, error)
}

// StorageInterface is the interface that wraps the basic storage operations for monitored transactions.
type StorageInterface interface {
	Add(ctx context.Context, mTx MonitoredTx) error
	Remove(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (MonitoredTx, error)
	GetByStatus(ctx context.Context, statuses []MonitoredTxStatus) ([]MonitoredTx, error)
	Update(ctx context.Context, mTx MonitoredTx) error
	Empty(ctx context.Context) error
}
