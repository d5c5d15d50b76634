package types

import (
	"fmt"
	"math/big"

	localCommon "github.com/0xPolygon/ethtx-gateway/common"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// MinGas is the intrinsic gas of a plain value transfer, no transaction can use less
const MinGas = 21000

// FeeQuote is an EIP-1559 fee pair expressed in wei
type FeeQuote struct {
	Priority *big.Int
	MaxFee   *big.Int
}

// Valid reports whether both components are strictly positive
func (q FeeQuote) Valid() bool {
	return q.Priority != nil && q.MaxFee != nil && q.Priority.Sign() > 0 && q.MaxFee.Sign() > 0
}

// String renders the quote in gwei
func (q FeeQuote) String() string {
	return fmt.Sprintf("maxFee=%s gwei priority=%s gwei", localCommon.WeiToGwei(q.MaxFee), localCommon.WeiToGwei(q.Priority))
}

// TxFields are the parameters of a single EIP-1559 transaction attempt.
// A fee escalation produces a new TxFields value through WithFees, the
// previous one is never mutated.
type TxFields struct {
	ChainID              *big.Int
	Nonce                uint64
	MaxPriorityFeePerGas *big.Int
	MaxFeePerGas         *big.Int
	Gas                  uint64
	To                   common.Address
	From                 common.Address
	Value                *big.Int
	Data                 []byte
	AccessList           types.AccessList
}

// Normalize returns a copy of the fields ready to be signed: value defaults
// to zero, the access list is never nil, gas is at least MinGas and the max
// fee is raised to the priority fee when it is lower.
func (f TxFields) Normalize() TxFields {
	n := f.clone()
	if n.Value == nil {
		n.Value = big.NewInt(0)
	}
	if n.AccessList == nil {
		n.AccessList = types.AccessList{}
	}
	if n.Gas < MinGas {
		n.Gas = MinGas
	}
	if n.MaxPriorityFeePerGas != nil && n.MaxFeePerGas != nil && n.MaxFeePerGas.Cmp(n.MaxPriorityFeePerGas) < 0 {
		n.MaxFeePerGas = new(big.Int).Set(n.MaxPriorityFeePerGas)
	}
	return n
}

// WithFees returns a copy of the fields using the provided quote
func (f TxFields) WithFees(q FeeQuote) TxFields {
	n := f.clone()
	n.MaxPriorityFeePerGas = new(big.Int).Set(q.Priority)
	n.MaxFeePerGas = new(big.Int).Set(q.MaxFee)
	return n
}

// Fees returns the fee pair of the fields
func (f TxFields) Fees() FeeQuote {
	return FeeQuote{Priority: f.MaxPriorityFeePerGas, MaxFee: f.MaxFeePerGas}
}

// Tx builds the unsigned dynamic fee transaction
func (f TxFields) Tx() *types.Transaction {
	n := f.Normalize()
	to := n.To
	return types.NewTx(&types.DynamicFeeTx{
		ChainID:    n.ChainID,
		Nonce:      n.Nonce,
		GasTipCap:  n.MaxPriorityFeePerGas,
		GasFeeCap:  n.MaxFeePerGas,
		Gas:        n.Gas,
		To:         &to,
		Value:      n.Value,
		Data:       n.Data,
		AccessList: n.AccessList,
	})
}

func (f TxFields) clone() TxFields {
	n := f
	n.ChainID = copyBig(f.ChainID)
	n.MaxPriorityFeePerGas = copyBig(f.MaxPriorityFeePerGas)
	n.MaxFeePerGas = copyBig(f.MaxFeePerGas)
	n.Value = copyBig(f.Value)
	if f.Data != nil {
		n.Data = common.CopyBytes(f.Data)
	}
	if f.AccessList != nil {
		n.AccessList = append(types.AccessList{}, f.AccessList...)
	}
	return n
}

func copyBig(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}
