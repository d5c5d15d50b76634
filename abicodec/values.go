package abicodec

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/holiman/uint256"
)

func encodeUint(bits int, n *big.Int) ([]byte, error) {
	if n.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative value %s for uint%d", ErrInvalidArgument, n, bits)
	}
	if n.BitLen() > bits {
		return nil, fmt.Errorf("%w: %s overflows uint%d", ErrInvalidArgument, n, bits)
	}
	u, overflow := uint256.FromBig(n)
	if overflow {
		return nil, fmt.Errorf("%w: %s overflows uint256", ErrInvalidArgument, n)
	}
	slot := u.Bytes32()
	return slot[:], nil
}

func encodeInt(bits int, n *big.Int) ([]byte, error) {
	limit := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
	minValue := new(big.Int).Neg(limit)
	if n.Cmp(minValue) < 0 || n.Cmp(limit) >= 0 {
		return nil, fmt.Errorf("%w: %s overflows int%d", ErrInvalidArgument, n, bits)
	}
	// U256Bytes works in place
	return math.U256Bytes(new(big.Int).Set(n)), nil
}

func toBigInt(v interface{}) (*big.Int, error) {
	switch n := v.(type) {
	case *big.Int:
		if n == nil {
			return nil, fmt.Errorf("%w: nil number", ErrInvalidArgument)
		}
		return new(big.Int).Set(n), nil
	case big.Int:
		return new(big.Int).Set(&n), nil
	case *uint256.Int:
		if n == nil {
			return nil, fmt.Errorf("%w: nil number", ErrInvalidArgument)
		}
		return n.ToBig(), nil
	case uint256.Int:
		return n.ToBig(), nil
	case int:
		return big.NewInt(int64(n)), nil
	case int8:
		return big.NewInt(int64(n)), nil
	case int16:
		return big.NewInt(int64(n)), nil
	case int32:
		return big.NewInt(int64(n)), nil
	case int64:
		return big.NewInt(n), nil
	case uint:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint64:
		return new(big.Int).SetUint64(n), nil
	case json.Number:
		return parseBigInt(string(n))
	case string:
		return parseBigInt(n)
	}
	return nil, fmt.Errorf("%w: %T is not a number", ErrInvalidArgument, v)
}

// parseBigInt accepts decimal and 0x prefixed hex, optionally negative
func parseBigInt(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	digits := strings.TrimPrefix(s, "-")

	base := 10
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		base = 16
		digits = digits[2:]
	}
	n, ok := new(big.Int).SetString(digits, base)
	if !ok || digits == "" {
		return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidArgument, s)
	}
	if neg {
		n.Neg(n)
	}
	return n, nil
}

func toAddress(v interface{}) (common.Address, error) {
	switch a := v.(type) {
	case common.Address:
		return a, nil
	case *common.Address:
		if a == nil {
			return common.Address{}, fmt.Errorf("%w: nil address", ErrInvalidArgument)
		}
		return *a, nil
	case string:
		if !common.IsHexAddress(a) {
			return common.Address{}, fmt.Errorf("%w: %q is not an address", ErrInvalidArgument, a)
		}
		return common.HexToAddress(a), nil
	case []byte:
		if len(a) != common.AddressLength {
			return common.Address{}, fmt.Errorf("%w: address must be %d bytes", ErrInvalidArgument, common.AddressLength)
		}
		return common.BytesToAddress(a), nil
	}
	return common.Address{}, fmt.Errorf("%w: %T is not an address", ErrInvalidArgument, v)
}

func toBool(v interface{}) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return false, fmt.Errorf("%w: %q is not a bool", ErrInvalidArgument, b)
		}
		return parsed, nil
	}
	return false, fmt.Errorf("%w: %T is not a bool", ErrInvalidArgument, v)
}

func toFixedBytes(v interface{}) ([]byte, error) {
	switch b := v.(type) {
	case [32]byte:
		return b[:], nil
	case common.Hash:
		return b.Bytes(), nil
	case []byte:
		return b, nil
	case string:
		decoded, err := hexutil.Decode(b)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not hex", ErrInvalidArgument, b)
		}
		return decoded, nil
	}
	return nil, fmt.Errorf("%w: %T is not fixed bytes", ErrInvalidArgument, v)
}

func toString(v interface{}) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	case fmt.Stringer:
		return s.String(), nil
	}
	return "", fmt.Errorf("%w: %T is not a string", ErrInvalidArgument, v)
}

func toBytes(v interface{}) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return b, nil
	case string:
		if b == "" || b == "0x" {
			return []byte{}, nil
		}
		decoded, err := hexutil.Decode(b)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not hex", ErrInvalidArgument, b)
		}
		return decoded, nil
	}
	return nil, fmt.Errorf("%w: %T is not bytes", ErrInvalidArgument, v)
}
