package abicodec

import (
	"math/big"
	"strings"
	"testing"

	"github.com/0xPolygon/ethtx-gateway/types"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testABI = `[
	{"type":"function","name":"transfer","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"register","stateMutability":"nonpayable","inputs":[{"name":"name","type":"string"},{"name":"id","type":"uint64"},{"name":"payload","type":"bytes"},{"name":"tag","type":"bytes32"},{"name":"delta","type":"int32"},{"name":"on","type":"bool"}],"outputs":[]},
	{"type":"function","name":"batch","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address[]"}],"outputs":[]},
	{"type":"function","name":"set","stateMutability":"nonpayable","inputs":[{"name":"v","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"set","stateMutability":"nonpayable","inputs":[{"name":"k","type":"string"},{"name":"v","type":"uint256"}],"outputs":[]}
]`

func TestSelector(t *testing.T) {
	assert.Equal(t, "0xa9059cbb", SelectorHex("transfer(address,uint256)"))
	assert.Equal(t, "0x70a08231", SelectorHex("balanceOf(address)"))
	assert.Equal(t, "transfer(address,uint256)", FunctionSignature("transfer", "address", "uint"))
	assert.Equal(t, "name()", FunctionSignature("name"))
}

func TestEncodeTransferMatchesGeth(t *testing.T) {
	contractABI, err := ParseABI(testABI)
	require.NoError(t, err)

	to := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	amount := big.NewInt(1_000_000)

	expected, err := contractABI.Pack("transfer", to, amount)
	require.NoError(t, err)

	data, err := EncodeFunction(contractABI, "transfer", to, amount)
	require.NoError(t, err)
	require.Equal(t, expected, data)
	require.Equal(t, "0xa9059cbb", hexutil.Encode(data[:4]))

	// same call built from strings
	data, err = EncodeCall("transfer(address, uint256)", to.Hex(), "1000000")
	require.NoError(t, err)
	require.Equal(t, expected, data)

	// encoding is deterministic
	again, err := EncodeFunctionJSON(testABI, "transfer", to, uint256.NewInt(1_000_000))
	require.NoError(t, err)
	require.Equal(t, expected, again)
}

func TestEncodeDynamicMatchesGeth(t *testing.T) {
	contractABI, err := ParseABI(testABI)
	require.NoError(t, err)

	tag := [32]byte{'t', 'a', 'g'}
	cases := []struct {
		name    string
		str     string
		payload []byte
	}{
		{name: "empty values", str: "", payload: []byte{}},
		{name: "short values", str: "hello", payload: []byte{0x01, 0x02}},
		{name: "exactly one slot", str: strings.Repeat("a", 32), payload: make([]byte, 32)},
		{name: "several slots", str: strings.Repeat("b", 70), payload: make([]byte, 65)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expected, err := contractABI.Pack("register", tc.str, uint64(7), tc.payload, tag, int32(-5), true)
			require.NoError(t, err)

			data, err := EncodeFunction(contractABI, "register", tc.str, uint64(7), tc.payload, tag, -5, true)
			require.NoError(t, err)
			require.Equal(t, expected, data)
		})
	}
}

func TestEncodeOverloads(t *testing.T) {
	contractABI, err := ParseABI(testABI)
	require.NoError(t, err)

	data, err := EncodeFunction(contractABI, "set(string,uint256)", "k", 1)
	require.NoError(t, err)
	require.Equal(t, SelectorHex("set(string,uint256)"), hexutil.Encode(data[:4]))

	data, err = EncodeFunction(contractABI, "set", 1)
	require.NoError(t, err)
	require.Equal(t, SelectorHex("set(uint256)"), hexutil.Encode(data[:4]))
}

func TestEncodeErrors(t *testing.T) {
	contractABI, err := ParseABI(testABI)
	require.NoError(t, err)

	_, err = EncodeFunction(contractABI, "mint", 1)
	require.ErrorIs(t, err, ErrFunctionNotFound)
	require.ErrorIs(t, err, types.ErrABI)

	_, err = EncodeFunction(contractABI, "batch", []common.Address{})
	require.ErrorIs(t, err, ErrUnsupportedType)

	_, err = EncodeFunction(contractABI, "transfer", common.Address{})
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = EncodeCall("f(uint8)", 256)
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = EncodeCall("f(uint256)", -1)
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = EncodeCall("f(int8)", 128)
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = EncodeCall("f(address)", "0x1234")
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = EncodeCall("f(bytes4)", "0x0102030405")
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = EncodeCall("f((uint256,bool))", 1)
	require.ErrorIs(t, err, ErrUnsupportedType)

	_, err = ParseABI("{not json")
	require.ErrorIs(t, err, ErrMalformedABI)
}

func TestEncodeIntBounds(t *testing.T) {
	data, err := EncodeArguments([]string{"int8", "int256"}, []interface{}{-128, "-0x1"})
	require.NoError(t, err)
	require.Len(t, data, 64)

	args, err := DecodeArguments([]string{"int8", "int256"}, data)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(-128), args[0])
	require.Equal(t, big.NewInt(-1), args[1])
}

func TestCallResultScalars(t *testing.T) {
	r, err := NewCallResult("0x" + strings.Repeat("0", 62) + "2a")
	require.NoError(t, err)

	n, err := r.AsBigInt()
	require.NoError(t, err)
	require.Equal(t, int64(42), n.Int64())

	b, err := r.AsBool()
	require.NoError(t, err)
	require.True(t, b)

	signed, err := NewCallResult("0x" + strings.Repeat("f", 64))
	require.NoError(t, err)
	s, err := signed.AsSignedBigInt()
	require.NoError(t, err)
	require.Equal(t, int64(-1), s.Int64())

	addr := common.HexToAddress("0x71C7656EC7ab88b098defB751B7401B5f6d8976F")
	r = NewCallResultBytes(common.LeftPadBytes(addr.Bytes(), 32))
	got, err := r.AsAddress()
	require.NoError(t, err)
	require.Equal(t, addr, got)

	v, err := r.As("address")
	require.NoError(t, err)
	require.Equal(t, addr, v)

	short, err := NewCallResult("0x1")
	require.NoError(t, err)
	n, err = short.AsBigInt()
	require.NoError(t, err)
	require.Equal(t, int64(1), n.Int64())

	empty, err := NewCallResult("0x")
	require.NoError(t, err)
	require.True(t, empty.IsEmpty())
	_, err = empty.AsBigInt()
	require.ErrorIs(t, err, ErrEmptyResult)

	_, err = NewCallResult("0xzz")
	require.ErrorIs(t, err, ErrInvalidResult)
}

func TestCallResultString(t *testing.T) {
	stringTy, err := abi.NewType("string", "", nil)
	require.NoError(t, err)
	args := abi.Arguments{{Type: stringTy}}

	packed, err := args.Pack("Wrapped Ether")
	require.NoError(t, err)

	r := NewCallResultBytes(packed)
	s, err := r.AsString()
	require.NoError(t, err)
	require.Equal(t, "Wrapped Ether", s)

	// some legacy tokens return a bytes32 name
	legacy, err := StringToBytes32("MKR", false)
	require.NoError(t, err)
	r, err = NewCallResult(legacy)
	require.NoError(t, err)
	s, err = r.AsString()
	require.NoError(t, err)
	require.Equal(t, "MKR", s)

	empty := NewCallResultBytes(nil)
	s, err = empty.AsString()
	require.NoError(t, err)
	require.Equal(t, "", s)

	broken := make([]byte, 64)
	broken[31] = 0xff
	_, err = NewCallResultBytes(broken).AsString()
	require.ErrorIs(t, err, ErrInvalidResult)
}

func TestDecodeArgumentsMatchesGeth(t *testing.T) {
	contractABI, err := ParseABI(testABI)
	require.NoError(t, err)

	tag := [32]byte{0xde, 0xad}
	packed, err := contractABI.Pack("register", "name", uint64(9), []byte{0xca, 0xfe}, tag, int32(-3), false)
	require.NoError(t, err)

	args, err := DecodeArguments([]string{"string", "uint64", "bytes", "bytes32", "int32", "bool"}, packed[4:])
	require.NoError(t, err)
	require.Equal(t, "name", args[0])
	require.Equal(t, big.NewInt(9), args[1])
	require.Equal(t, []byte{0xca, 0xfe}, args[2])
	require.Equal(t, tag[:], args[3])
	require.Equal(t, big.NewInt(-3), args[4])
	require.Equal(t, false, args[5])

	_, err = DecodeArguments([]string{"uint256", "uint256"}, packed[4:36])
	require.ErrorIs(t, err, ErrInvalidResult)
}

func TestDecodeStaticSlot(t *testing.T) {
	slot := common.LeftPadBytes([]byte{0x01}, 32)

	v, err := DecodeStaticSlot("bool", slot)
	require.NoError(t, err)
	require.Equal(t, true, v)

	_, err = DecodeStaticSlot("string", slot)
	require.ErrorIs(t, err, ErrUnsupportedType)

	_, err = DecodeStaticSlot("uint256", slot[:10])
	require.ErrorIs(t, err, ErrInvalidResult)

	require.True(t, IsDynamicType("bytes"))
	require.False(t, IsDynamicType("bytes32"))
}

func TestBytes32(t *testing.T) {
	encoded, err := StringToBytes32("hello", false)
	require.NoError(t, err)
	require.Equal(t, "0x68656c6c6f"+strings.Repeat("0", 54), encoded)

	decoded, err := Bytes32ToString(encoded)
	require.NoError(t, err)
	require.Equal(t, "hello", decoded)

	long := strings.Repeat("x", 40)
	_, err = StringToBytes32(long, false)
	require.ErrorIs(t, err, ErrInputTooLong)

	truncated, err := StringToBytes32(long, true)
	require.NoError(t, err)
	decoded, err = Bytes32ToString(truncated)
	require.NoError(t, err)
	require.Equal(t, long[:32], decoded)

	_, err = Bytes32ToString("0x1234")
	require.ErrorIs(t, err, ErrInvalidArgument)
}
