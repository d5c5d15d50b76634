package abicodec

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
)

// CallResult wraps the bytes returned by eth_call
type CallResult struct {
	data []byte
}

// NewCallResult decodes a hex payload, with or without 0x prefix
func NewCallResult(hexData string) (CallResult, error) {
	s := strings.TrimSpace(hexData)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s)%2 == 1 {
		s = "0" + s
	}
	data, err := hex.DecodeString(s)
	if err != nil {
		return CallResult{}, fmt.Errorf("%w: %v", ErrInvalidResult, err)
	}
	return CallResult{data: data}, nil
}

// NewCallResultBytes wraps raw bytes
func NewCallResultBytes(data []byte) CallResult {
	return CallResult{data: common.CopyBytes(data)}
}

// Raw returns the 0x prefixed hex payload
func (r CallResult) Raw() string {
	return hexutil.Encode(r.data)
}

// Bytes returns a copy of the payload
func (r CallResult) Bytes() []byte {
	return common.CopyBytes(r.data)
}

// IsEmpty reports whether the call returned no data
func (r CallResult) IsEmpty() bool {
	return len(r.data) == 0
}

// String implements fmt.Stringer
func (r CallResult) String() string {
	return r.Raw()
}

// As decodes the payload as the named elementary type. Numbers are returned as
// *big.Int, fixed bytes as []byte of the declared size.
func (r CallResult) As(typeName string) (interface{}, error) {
	t, err := parseType(typeName)
	if err != nil {
		return nil, err
	}
	switch t.kind {
	case kindString:
		return r.AsString()
	case kindBytes:
		return r.AsBytes()
	}
	slot, err := r.lastSlot()
	if err != nil {
		return nil, err
	}
	return decodeStatic(t, slot)
}

// AsString decodes a string return value
func (r CallResult) AsString() (string, error) {
	b, err := decodeDynamicValue(r.data)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// AsBytes decodes a bytes return value
func (r CallResult) AsBytes() ([]byte, error) {
	return decodeDynamicValue(r.data)
}

// AsBigInt decodes an unsigned integer
func (r CallResult) AsBigInt() (*big.Int, error) {
	slot, err := r.lastSlot()
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(slot), nil
}

// AsSignedBigInt decodes a two's complement signed integer
func (r CallResult) AsSignedBigInt() (*big.Int, error) {
	slot, err := r.lastSlot()
	if err != nil {
		return nil, err
	}
	return math.S256(new(big.Int).SetBytes(slot)), nil
}

// AsBool is true when the last byte is not zero
func (r CallResult) AsBool() (bool, error) {
	slot, err := r.lastSlot()
	if err != nil {
		return false, err
	}
	return slot[slotSize-1] != 0, nil
}

// AsAddress returns the low 20 bytes of the last slot
func (r CallResult) AsAddress() (common.Address, error) {
	slot, err := r.lastSlot()
	if err != nil {
		return common.Address{}, err
	}
	return common.BytesToAddress(slot[slotSize-common.AddressLength:]), nil
}

// AsBytes32 returns the last slot
func (r CallResult) AsBytes32() ([32]byte, error) {
	var res [32]byte
	slot, err := r.lastSlot()
	if err != nil {
		return res, err
	}
	copy(res[:], slot)
	return res, nil
}

// lastSlot returns the trailing 32 bytes, shorter payloads are left padded
func (r CallResult) lastSlot() ([]byte, error) {
	if len(r.data) == 0 {
		return nil, ErrEmptyResult
	}
	if len(r.data) < slotSize {
		return common.LeftPadBytes(r.data, slotSize), nil
	}
	return r.data[len(r.data)-slotSize:], nil
}

// decodeDynamicValue follows offset then length. Payloads too short to hold
// both words are treated as a single right padded static chunk.
func decodeDynamicValue(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}
	if len(data) < 2*slotSize {
		return bytes.TrimRight(data, "\x00"), nil
	}
	return readDynamicAt(data, data[:slotSize])
}

// readDynamicAt reads the length prefixed value whose offset is stored in
// offsetSlot, the offset is relative to the start of data
func readDynamicAt(data, offsetSlot []byte) ([]byte, error) {
	offset := new(big.Int).SetBytes(offsetSlot)
	size := uint64(len(data))
	if !offset.IsUint64() || offset.Uint64() > size || offset.Uint64()+slotSize > size {
		return nil, fmt.Errorf("%w: offset %s out of range", ErrInvalidResult, offset)
	}
	start := offset.Uint64() + slotSize

	length := new(big.Int).SetBytes(data[offset.Uint64():start])
	if !length.IsUint64() || length.Uint64() > size-start {
		return nil, fmt.Errorf("%w: length %s out of range", ErrInvalidResult, length)
	}
	return common.CopyBytes(data[start : start+length.Uint64()]), nil
}

// DecodeStaticSlot decodes a single 32 bytes word, as found in the head of
// the arguments or in an indexed topic
func DecodeStaticSlot(typeName string, slot []byte) (interface{}, error) {
	t, err := parseType(typeName)
	if err != nil {
		return nil, err
	}
	if len(slot) != slotSize {
		return nil, fmt.Errorf("%w: slot must be %d bytes, got %d", ErrInvalidResult, slotSize, len(slot))
	}
	return decodeStatic(t, slot)
}

func decodeStatic(t paramType, slot []byte) (interface{}, error) {
	switch t.kind {
	case kindUint:
		return new(big.Int).SetBytes(slot), nil
	case kindInt:
		return math.S256(new(big.Int).SetBytes(slot)), nil
	case kindAddress:
		return common.BytesToAddress(slot[slotSize-common.AddressLength:]), nil
	case kindBool:
		return slot[slotSize-1] != 0, nil
	case kindFixedBytes:
		return common.CopyBytes(slot[:t.size]), nil
	}
	return nil, fmt.Errorf("%w: %s is not static", ErrUnsupportedType, t)
}

// DecodeArguments decodes an argument list laid out with head and tail. Strings
// are returned as string and bytes as []byte.
func DecodeArguments(typeNames []string, data []byte) ([]interface{}, error) {
	ts, err := parseTypes(typeNames)
	if err != nil {
		return nil, err
	}
	if len(data) < slotSize*len(ts) {
		return nil, fmt.Errorf("%w: %d bytes can't hold %d arguments", ErrInvalidResult, len(data), len(ts))
	}

	res := make([]interface{}, 0, len(ts))
	for i, t := range ts {
		slot := data[i*slotSize : (i+1)*slotSize]
		if !t.dynamic() {
			v, err := decodeStatic(t, slot)
			if err != nil {
				return nil, err
			}
			res = append(res, v)
			continue
		}

		b, err := readDynamicAt(data, slot)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		if t.kind == kindString {
			res = append(res, string(b))
		} else {
			res = append(res, b)
		}
	}
	return res, nil
}

// IsDynamicType reports whether the type is encoded in the tail
func IsDynamicType(typeName string) bool {
	t, err := parseType(typeName)
	return err == nil && t.dynamic()
}
