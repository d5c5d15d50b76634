// Package abicodec encodes contract calls with the standard head/tail ABI
// layout and decodes the values returned by eth_call and carried by logs.
// Only the elementary types are supported: uintN, intN, address, bool,
// bytes1..bytes32, string and bytes.
package abicodec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/0xPolygon/ethtx-gateway/types"
)

const slotSize = 32

var (
	// ErrUnsupportedType is returned for arrays, tuples and any non elementary type
	ErrUnsupportedType = fmt.Errorf("%w: unsupported type", types.ErrABI)
	// ErrFunctionNotFound is returned when the ABI has no function with the requested name
	ErrFunctionNotFound = fmt.Errorf("%w: function not found", types.ErrABI)
	// ErrEventNotFound is returned when the ABI has no event matching a log
	ErrEventNotFound = fmt.Errorf("%w: event not found", types.ErrABI)
	// ErrMalformedABI is returned when the ABI document can't be parsed
	ErrMalformedABI = fmt.Errorf("%w: malformed abi", types.ErrABI)
	// ErrInvalidArgument is returned when a value can't be encoded as its declared type
	ErrInvalidArgument = fmt.Errorf("%w: invalid argument", types.ErrABI)
	// ErrInvalidResult is returned when returned data doesn't follow the ABI layout
	ErrInvalidResult = fmt.Errorf("%w: invalid result", types.ErrABI)
	// ErrEmptyResult is returned when a scalar is decoded from an empty payload
	ErrEmptyResult = fmt.Errorf("%w: empty result", types.ErrABI)
	// ErrInputTooLong is returned when a string doesn't fit in bytes32 and truncation is disabled
	ErrInputTooLong = fmt.Errorf("%w: input exceeds 32 bytes", types.ErrABI)
)

type typeKind uint8

const (
	kindUint typeKind = iota
	kindInt
	kindAddress
	kindBool
	kindFixedBytes
	kindString
	kindBytes
)

// paramType is an elementary ABI type. size is the bit size for integers and
// the byte size for fixed bytes.
type paramType struct {
	kind typeKind
	size int
}

func (t paramType) dynamic() bool {
	return t.kind == kindString || t.kind == kindBytes
}

// String returns the canonical type name
func (t paramType) String() string {
	switch t.kind {
	case kindUint:
		return "uint" + strconv.Itoa(t.size)
	case kindInt:
		return "int" + strconv.Itoa(t.size)
	case kindAddress:
		return "address"
	case kindBool:
		return "bool"
	case kindFixedBytes:
		return "bytes" + strconv.Itoa(t.size)
	case kindString:
		return "string"
	default:
		return "bytes"
	}
}

// parseType parses an elementary type name, uint and int are aliases of
// uint256 and int256
func parseType(name string) (paramType, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch {
	case n == "address":
		return paramType{kind: kindAddress}, nil
	case n == "bool":
		return paramType{kind: kindBool}, nil
	case n == "string":
		return paramType{kind: kindString}, nil
	case n == "bytes":
		return paramType{kind: kindBytes}, nil
	case strings.ContainsAny(n, "[]()"):
		return paramType{}, fmt.Errorf("%w: %s", ErrUnsupportedType, name)
	case strings.HasPrefix(n, "uint"):
		size, err := intSize(n[len("uint"):])
		if err != nil {
			return paramType{}, fmt.Errorf("%w: %s", ErrUnsupportedType, name)
		}
		return paramType{kind: kindUint, size: size}, nil
	case strings.HasPrefix(n, "int"):
		size, err := intSize(n[len("int"):])
		if err != nil {
			return paramType{}, fmt.Errorf("%w: %s", ErrUnsupportedType, name)
		}
		return paramType{kind: kindInt, size: size}, nil
	case strings.HasPrefix(n, "bytes"):
		size, err := strconv.Atoi(n[len("bytes"):])
		if err != nil || size < 1 || size > slotSize {
			return paramType{}, fmt.Errorf("%w: %s", ErrUnsupportedType, name)
		}
		return paramType{kind: kindFixedBytes, size: size}, nil
	}
	return paramType{}, fmt.Errorf("%w: %s", ErrUnsupportedType, name)
}

func intSize(suffix string) (int, error) {
	if suffix == "" {
		return 256, nil //nolint:gomnd
	}
	size, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, err
	}
	if size < 8 || size > 256 || size%8 != 0 {
		return 0, fmt.Errorf("invalid integer size %d", size)
	}
	return size, nil
}

func parseTypes(names []string) ([]paramType, error) {
	res := make([]paramType, 0, len(names))
	for _, name := range names {
		t, err := parseType(name)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, nil
}
