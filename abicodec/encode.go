package abicodec

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ParseABI parses a JSON ABI document
func ParseABI(doc string) (abi.ABI, error) {
	parsed, err := abi.JSON(strings.NewReader(doc))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("%w: %v", ErrMalformedABI, err)
	}
	return parsed, nil
}

// FunctionSignature returns the canonical signature name(t1,t2,...), uint and
// int are expanded to their 256 bits form
func FunctionSignature(name string, typeNames ...string) string {
	canonical := make([]string, 0, len(typeNames))
	for _, n := range typeNames {
		if t, err := parseType(n); err == nil {
			canonical = append(canonical, t.String())
		} else {
			canonical = append(canonical, strings.TrimSpace(n))
		}
	}
	return strings.TrimSpace(name) + "(" + strings.Join(canonical, ",") + ")"
}

// Selector returns the first 4 bytes of the keccak256 hash of the signature
func Selector(signature string) [4]byte {
	var sel [4]byte
	copy(sel[:], crypto.Keccak256([]byte(strings.ReplaceAll(signature, " ", "")))[:4])
	return sel
}

// SelectorHex returns the 0x prefixed selector of the signature
func SelectorHex(signature string) string {
	sel := Selector(signature)
	return hexutil.Encode(sel[:])
}

// EncodeFunction builds the calldata of the named function of the ABI. name can
// be the bare function name or its full signature when the ABI has overloads.
func EncodeFunction(contractABI abi.ABI, name string, args ...interface{}) ([]byte, error) {
	method, err := findMethod(contractABI, name, len(args))
	if err != nil {
		return nil, err
	}

	typeNames := make([]string, 0, len(method.Inputs))
	for _, input := range method.Inputs {
		typeNames = append(typeNames, input.Type.String())
	}
	return encodeCall(method.RawName, typeNames, args)
}

// EncodeFunctionJSON parses the JSON ABI document and encodes the named function
func EncodeFunctionJSON(doc, name string, args ...interface{}) ([]byte, error) {
	contractABI, err := ParseABI(doc)
	if err != nil {
		return nil, err
	}
	return EncodeFunction(contractABI, name, args...)
}

// EncodeCall encodes a call from a human readable signature such as
// "transfer(address,uint256)"
func EncodeCall(signature string, args ...interface{}) ([]byte, error) {
	name, typeNames, err := splitSignature(signature)
	if err != nil {
		return nil, err
	}
	return encodeCall(name, typeNames, args)
}

// EncodeArguments encodes the values without selector
func EncodeArguments(typeNames []string, args []interface{}) ([]byte, error) {
	ts, err := parseTypes(typeNames)
	if err != nil {
		return nil, err
	}
	return encodeArguments(ts, args)
}

func encodeCall(name string, typeNames []string, args []interface{}) ([]byte, error) {
	ts, err := parseTypes(typeNames)
	if err != nil {
		return nil, err
	}
	encodedArgs, err := encodeArguments(ts, args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	sel := Selector(FunctionSignature(name, typeNames...))
	return append(sel[:], encodedArgs...), nil
}

// encodeArguments lays out the head with one slot per argument and appends the
// dynamic values in the tail, offsets are relative to the first head slot
func encodeArguments(ts []paramType, args []interface{}) ([]byte, error) {
	if len(ts) != len(args) {
		return nil, fmt.Errorf("%w: expected %d arguments, got %d", ErrInvalidArgument, len(ts), len(args))
	}

	headSize := slotSize * len(ts)
	head := make([]byte, 0, headSize)
	var tail []byte
	for i, t := range ts {
		if t.dynamic() {
			data, err := encodeDynamic(t, args[i])
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i, err)
			}
			head = append(head, uintSlot(uint64(headSize+len(tail)))...)
			tail = append(tail, data...)
			continue
		}

		slot, err := encodeStatic(t, args[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		head = append(head, slot...)
	}
	return append(head, tail...), nil
}

func encodeStatic(t paramType, v interface{}) ([]byte, error) {
	switch t.kind {
	case kindUint:
		n, err := toBigInt(v)
		if err != nil {
			return nil, err
		}
		return encodeUint(t.size, n)
	case kindInt:
		n, err := toBigInt(v)
		if err != nil {
			return nil, err
		}
		return encodeInt(t.size, n)
	case kindAddress:
		addr, err := toAddress(v)
		if err != nil {
			return nil, err
		}
		return common.LeftPadBytes(addr.Bytes(), slotSize), nil
	case kindBool:
		b, err := toBool(v)
		if err != nil {
			return nil, err
		}
		if b {
			return uintSlot(1), nil
		}
		return uintSlot(0), nil
	case kindFixedBytes:
		b, err := toFixedBytes(v)
		if err != nil {
			return nil, err
		}
		if len(b) > t.size {
			return nil, fmt.Errorf("%w: %d bytes don't fit in %s", ErrInvalidArgument, len(b), t)
		}
		return common.RightPadBytes(b, slotSize), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
}

// encodeDynamic returns the length slot followed by the data right padded to a
// multiple of 32 bytes
func encodeDynamic(t paramType, v interface{}) ([]byte, error) {
	var data []byte
	switch t.kind {
	case kindString:
		s, err := toString(v)
		if err != nil {
			return nil, err
		}
		data = []byte(s)
	case kindBytes:
		b, err := toBytes(v)
		if err != nil {
			return nil, err
		}
		data = b
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}

	padded := (len(data) + slotSize - 1) / slotSize * slotSize
	res := uintSlot(uint64(len(data)))
	return append(res, common.RightPadBytes(data, padded)...), nil
}

func uintSlot(n uint64) []byte {
	return common.LeftPadBytes(new(big.Int).SetUint64(n).Bytes(), slotSize)
}

// splitSignature splits "name(t1,t2)" into its name and type names
func splitSignature(signature string) (string, []string, error) {
	sig := strings.ReplaceAll(strings.TrimSpace(signature), " ", "")
	open := strings.Index(sig, "(")
	if open <= 0 || !strings.HasSuffix(sig, ")") {
		return "", nil, fmt.Errorf("%w: invalid signature %q", ErrInvalidArgument, signature)
	}
	inner := sig[open+1 : len(sig)-1]
	if strings.ContainsAny(inner, "()") {
		return "", nil, fmt.Errorf("%w: %s", ErrUnsupportedType, signature)
	}
	if inner == "" {
		return sig[:open], nil, nil
	}
	return sig[:open], strings.Split(inner, ","), nil
}

func findMethod(contractABI abi.ABI, name string, argCount int) (abi.Method, error) {
	if strings.Contains(name, "(") {
		wanted := strings.ReplaceAll(name, " ", "")
		for _, m := range contractABI.Methods {
			if m.Sig == wanted {
				return m, nil
			}
		}
		return abi.Method{}, fmt.Errorf("%w: %s", ErrFunctionNotFound, name)
	}

	var candidates []abi.Method
	for _, m := range contractABI.Methods {
		if m.RawName == name {
			candidates = append(candidates, m)
		}
	}
	switch len(candidates) {
	case 0:
		return abi.Method{}, fmt.Errorf("%w: %s", ErrFunctionNotFound, name)
	case 1:
		return candidates[0], nil
	}

	var match []abi.Method
	for _, m := range candidates {
		if len(m.Inputs) == argCount {
			match = append(match, m)
		}
	}
	if len(match) != 1 {
		return abi.Method{}, fmt.Errorf("%w: %s is overloaded, use the full signature", ErrInvalidArgument, name)
	}
	return match[0], nil
}
