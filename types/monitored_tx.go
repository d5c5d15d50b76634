package types

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const (
	// MonitoredTxStatusQueued means the request was accepted and waits for its sender queue
	MonitoredTxStatusQueued = MonitoredTxStatus("queued")

	// MonitoredTxStatusSent means that at least a eth tx was sent to the network
	MonitoredTxStatusSent = MonitoredTxStatus("sent")

	// MonitoredTxStatusFailed means the lifecycle ended without a receipt, either
	// because a step failed or because all the replacement attempts were used
	MonitoredTxStatusFailed = MonitoredTxStatus("failed")

	// MonitoredTxStatusMined means a receipt was found for one of the sent txs
	MonitoredTxStatusMined = MonitoredTxStatus("mined")
)

// MonitoredTxStatus represents the status of a monitored tx
type MonitoredTxStatus string

// String returns a string representation of the status
func (s MonitoredTxStatus) String() string {
	return string(s)
}

// Terminal reports whether the status can't change anymore
func (s MonitoredTxStatus) Terminal() bool {
	return s == MonitoredTxStatusMined || s == MonitoredTxStatusFailed
}

// MonitoredTx represents a send request plus the information collected while
// its txs were broadcast and monitored
type MonitoredTx struct {
	// ID is the request identifier
	ID string `mapstructure:"id" meddler:"id"`

	// From is the sender of the tx, used to identify which private key should be used to sign the tx
	From common.Address `mapstructure:"from" meddler:"from_address,address"`

	// To is the receiver of the tx
	To *common.Address `mapstructure:"to" meddler:"to_address,address"`

	// Nonce is used to create the tx, only meaningful once the status is sent
	Nonce uint64 `mapstructure:"nonce" meddler:"nonce"`

	// Value is the transaction value
	Value *big.Int `mapstructure:"value" meddler:"value,bigInt"`

	// Data represents the transaction data
	Data []byte `mapstructure:"data" meddler:"tx_data"`

	// Gas is the gas limit of the last sent tx
	Gas uint64 `mapstructure:"gas" meddler:"gas"`

	// GasTipCap is the priority fee of the last sent tx
	GasTipCap *big.Int `mapstructure:"gasTipCap" meddler:"gas_tip_cap,bigInt"`

	// GasFeeCap is the max fee per gas of the last sent tx
	GasFeeCap *big.Int `mapstructure:"gasFeeCap" meddler:"gas_fee_cap,bigInt"`

	// Status represents the status of this monitored transaction
	Status MonitoredTxStatus `mapstructure:"status" meddler:"status"`

	// TxHash is the hash of the last sent tx, or of the mined one
	TxHash common.Hash `mapstructure:"txHash" meddler:"tx_hash,hash"`

	// History represents all transaction hashes sent to the network, oldest first
	History []common.Hash `mapstructure:"history" meddler:"history,json"`

	// Replacements is the number of fee escalations performed
	Replacements int `mapstructure:"replacements" meddler:"replacements"`

	// BlockNumber represents the block where the transaction was identified to be mined
	BlockNumber *big.Int `mapstructure:"blockNumber" meddler:"block_number,bigInt"`

	// Reason explains a failed status
	Reason string `mapstructure:"reason" meddler:"reason"`

	// CreatedAt is the timestamp for when the transaction was created
	CreatedAt time.Time `mapstructure:"createdAt" meddler:"created_at,timeRFC3339"`

	// UpdatedAt is the timestamp for when the transaction was last updated
	UpdatedAt time.Time `mapstructure:"updatedAt" meddler:"updated_at,timeRFC3339"`
}

// Fields rebuilds the fields of the last sent tx
func (mTx MonitoredTx) Fields(chainID *big.Int) TxFields {
	var to common.Address
	if mTx.To != nil {
		to = *mTx.To
	}
	return TxFields{
		ChainID:              chainID,
		Nonce:                mTx.Nonce,
		MaxPriorityFeePerGas: mTx.GasTipCap,
		MaxFeePerGas:         mTx.GasFeeCap,
		Gas:                  mTx.Gas,
		To:                   to,
		From:                 mTx.From,
		Value:                mTx.Value,
		Data:                 mTx.Data,
	}
}

// Tx uses the current information to build a tx
func (mTx MonitoredTx) Tx(chainID *big.Int) *types.Transaction {
	return mTx.Fields(chainID).Tx()
}

// AddHistory adds a transaction hash to the monitoring history and makes it the current one
func (mTx *MonitoredTx) AddHistory(txHash common.Hash) error {
	for _, h := range mTx.History {
		if h == txHash {
			return ErrAlreadyExists
		}
	}
	mTx.History = append(mTx.History, txHash)
	mTx.TxHash = txHash
	return nil
}

// ApplyFields copies the values of a sent tx into the record
func (mTx *MonitoredTx) ApplyFields(f TxFields) {
	to := f.To
	mTx.To = &to
	mTx.Nonce = f.Nonce
	mTx.Gas = f.Gas
	mTx.GasTipCap = f.MaxPriorityFeePerGas
	mTx.GasFeeCap = f.MaxFeePerGas
}

// HistoryHashSlice returns a copy of the history
func (mTx *MonitoredTx) HistoryHashSlice() []common.Hash {
	history := make([]common.Hash, len(mTx.History))
	copy(history, mTx.History)
	return history
}

// Result converts the record into the result handed to callers
func (mTx MonitoredTx) Result(chainID *big.Int) SendResult {
	return SendResult{
		ID:           mTx.ID,
		Status:       mTx.Status,
		TxHash:       mTx.TxHash,
		History:      mTx.HistoryHashSlice(),
		Fields:       mTx.Fields(chainID),
		Replacements: mTx.Replacements,
		Reason:       mTx.Reason,
	}
}

// MonitoredTxResult represents the result of a execution of a monitored tx
type MonitoredTxResult struct {
	ID                 string
	To                 *common.Address
	Nonce              uint64
	Value              *big.Int
	Data               []byte
	MinedAtBlockNumber *big.Int
	Status             MonitoredTxStatus
	Reason             string
	Txs                map[common.Hash]TxResult
}

// TxResult represents the result of a execution of a ethereum transaction in the block chain
type TxResult struct {
	Tx      *types.Transaction
	Receipt *types.Receipt
}
