package types

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	f := TxFields{
		ChainID:              big.NewInt(1),
		MaxPriorityFeePerGas: big.NewInt(50),
		MaxFeePerGas:         big.NewInt(10),
		Gas:                  100,
	}

	n := f.Normalize()
	require.Equal(t, big.NewInt(50), n.MaxFeePerGas, "max fee must be raised to the priority fee")
	require.Equal(t, big.NewInt(10), f.MaxFeePerGas, "original fields must not change")
	require.Equal(t, uint64(MinGas), n.Gas)
	require.NotNil(t, n.Value)
	require.Equal(t, 0, n.Value.Sign())
	require.NotNil(t, n.AccessList)
}

func TestWithFeesDoesNotMutate(t *testing.T) {
	f := TxFields{
		ChainID:              big.NewInt(1),
		Nonce:                9,
		MaxPriorityFeePerGas: big.NewInt(1),
		MaxFeePerGas:         big.NewInt(2),
		Gas:                  50000,
		To:                   common.HexToAddress("0x1"),
		Data:                 []byte{1, 2, 3},
	}
	q := FeeQuote{Priority: big.NewInt(5), MaxFee: big.NewInt(6)}

	n := f.WithFees(q)
	require.Equal(t, big.NewInt(5), n.MaxPriorityFeePerGas)
	require.Equal(t, big.NewInt(6), n.MaxFeePerGas)
	require.Equal(t, uint64(9), n.Nonce)
	require.Equal(t, big.NewInt(1), f.MaxPriorityFeePerGas)

	n.Data[0] = 0xff
	require.Equal(t, byte(1), f.Data[0])

	q.Priority.SetInt64(100)
	require.Equal(t, big.NewInt(5), n.MaxPriorityFeePerGas)
}

func TestFeeQuoteValid(t *testing.T) {
	require.True(t, FeeQuote{Priority: big.NewInt(1), MaxFee: big.NewInt(1)}.Valid())
	require.False(t, FeeQuote{Priority: big.NewInt(0), MaxFee: big.NewInt(1)}.Valid())
	require.False(t, FeeQuote{MaxFee: big.NewInt(1)}.Valid())
	require.Equal(t, "maxFee=40 gwei priority=3 gwei", FeeQuote{
		Priority: big.NewInt(3_000_000_000),
		MaxFee:   big.NewInt(40_000_000_000),
	}.String())
}
