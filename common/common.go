package common

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

const (
	// Base10 decimal base
	Base10 = 10
	// Gwei represents 1000000000 wei
	Gwei = 1000000000
	// SQLLiteDriverName is the driver name registered by mattn/go-sqlite3
	SQLLiteDriverName = "sqlite3"
)

// GweiToWei converts a gwei amount into wei
func GweiToWei(gwei uint64) *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(gwei), big.NewInt(Gwei))
}

// FloatGweiToWei converts a fractional gwei amount into wei, truncating below 1 wei
func FloatGweiToWei(gwei float64) *big.Int {
	f := new(big.Float).Mul(big.NewFloat(gwei), new(big.Float).SetInt64(Gwei))
	wei, _ := f.Int(nil)
	return wei
}

// WeiToGwei renders a wei amount as a gwei decimal string
func WeiToGwei(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	f := new(big.Float).Quo(new(big.Float).SetInt(wei), new(big.Float).SetInt64(Gwei))
	return f.Text('f', -1)
}

// MaxBigInt returns the greatest of the provided values
func MaxBigInt(a, b *big.Int) *big.Int {
	if a.Cmp(b) >= 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}

// BoolToInteger converts the provided boolean value into integer value
func BoolToInteger(v bool) int {
	if v {
		return 1
	}

	return 0
}

// ToAddressPtr converts a hex string into a *common.Address, nil for an empty string
func ToAddressPtr(addr string) *common.Address {
	if addr == "" {
		return nil
	}
	a := common.HexToAddress(addr)
	return &a
}

// ToUint64Ptr returns a pointer to the provided value
func ToUint64Ptr(v uint64) *uint64 {
	return &v
}

// SlicePtrsToSlice converts a slice of pointers into a slice of values
func SlicePtrsToSlice[T any](ptrs []*T) []T {
	res := make([]T, 0, len(ptrs))
	for _, p := range ptrs {
		res = append(res, *p)
	}
	return res
}
