package etherman

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/0xPolygon/ethtx-gateway/jsonrpc"
	localTypes "github.com/0xPolygon/ethtx-gateway/types"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

var errGenericNotFound = errors.New("not found")

type rpcHandler func(params []json.RawMessage) (interface{}, *jsonrpc.ErrorObject)

type fakeNode struct {
	mu       sync.Mutex
	handlers map[string]rpcHandler
	calls    map[string][]json.RawMessage
}

type rawRequest struct {
	ID     string            `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

func newTestClient(t *testing.T, chainID uint64, handlers map[string]rpcHandler) (*Client, *fakeNode) {
	t.Helper()
	node := &fakeNode{handlers: handlers, calls: map[string][]json.RawMessage{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rawRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		node.mu.Lock()
		node.calls[req.Method] = req.Params
		h, found := node.handlers[req.Method]
		node.mu.Unlock()

		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		if !found {
			resp["error"] = jsonrpc.ErrorObject{Code: -32601, Message: "method not found"}
		} else if result, rpcErr := h(req.Params); rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{RPC: jsonrpc.Config{URLs: []string{srv.URL}}, ChainID: chainID})
	require.NoError(t, err)
	return c, node
}

func result(v interface{}) rpcHandler {
	return func([]json.RawMessage) (interface{}, *jsonrpc.ErrorObject) {
		return v, nil
	}
}

func TestTranslateError(t *testing.T) {
	require.ErrorIs(t, ethereum.NotFound, translateError(ethereum.NotFound))
	require.ErrorIs(t, ethereum.NotFound, translateError(errGenericNotFound))
	anotherErr := errors.New("another error")
	require.ErrorIs(t, anotherErr, translateError(anotherErr))
	require.NoError(t, translateError(nil))
}

func TestNewClientFetchesChainID(t *testing.T) {
	c, _ := newTestClient(t, 0, map[string]rpcHandler{"eth_chainId": result("0x89")})
	chainID, err := c.ChainID(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(137), chainID.Int64())

	c, node := newTestClient(t, 5, map[string]rpcHandler{})
	chainID, err = c.ChainID(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(5), chainID.Int64())
	require.Empty(t, node.calls)
}

func TestReads(t *testing.T) {
	addr := common.HexToAddress("0x1")
	c, node := newTestClient(t, 1, map[string]rpcHandler{
		"eth_blockNumber": result("0x10"),
		"eth_gasPrice":    result("0x3b9aca00"),
		"eth_getTransactionCount": func(params []json.RawMessage) (interface{}, *jsonrpc.ErrorObject) {
			var block string
			_ = json.Unmarshal(params[1], &block)
			if block == "pending" {
				return "0x5", nil
			}
			return "0x3", nil
		},
		"eth_estimateGas":      result("0x5208"),
		"eth_call":             result("0x2a"),
		"eth_getBlockByNumber": result(map[string]string{"baseFeePerGas": "0x64"}),
	})
	ctx := context.Background()

	n, err := c.GetLatestBlockNumber(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(16), n)

	price, err := c.SuggestedGasPrice(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1_000_000_000), price.Int64())

	pending, err := c.PendingNonce(ctx, addr)
	require.NoError(t, err)
	require.Equal(t, uint64(5), pending)

	latest, err := c.CurrentNonce(ctx, addr)
	require.NoError(t, err)
	require.Equal(t, uint64(3), latest)

	gas, err := c.EstimateGas(ctx, addr, &addr, big.NewInt(1), []byte{0x01})
	require.NoError(t, err)
	require.Equal(t, uint64(21000), gas)

	var callArg map[string]string
	require.NoError(t, json.Unmarshal(node.calls["eth_estimateGas"][0], &callArg))
	require.Equal(t, "0x01", callArg["data"])
	require.Equal(t, "0x1", callArg["value"])

	out, err := c.CallContract(ctx, nil, addr, []byte{0x01}, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{0x2a}, out)
	var block string
	require.NoError(t, json.Unmarshal(node.calls["eth_call"][1], &block))
	require.Equal(t, "latest", block)

	baseFee, err := c.GetBaseFee(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(100), baseFee.Int64())
}

func TestZeroGasPrice(t *testing.T) {
	c, _ := newTestClient(t, 1, map[string]rpcHandler{"eth_gasPrice": result("0x0")})
	_, err := c.SuggestedGasPrice(context.Background())
	require.ErrorIs(t, err, ErrGasPrice)
}

func signedTestTx(t *testing.T) *ethTypes.Transaction {
	t.Helper()
	signer, err := NewKeySigner("0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318")
	require.NoError(t, err)
	to := common.HexToAddress("0x2")
	tx := ethTypes.NewTx(&ethTypes.DynamicFeeTx{
		ChainID:   big.NewInt(1),
		Nonce:     1,
		GasTipCap: big.NewInt(1),
		GasFeeCap: big.NewInt(2),
		Gas:       21000,
		To:        &to,
		Value:     big.NewInt(0),
	})
	signed, err := SignTx(signer, tx)
	require.NoError(t, err)
	return signed
}

func TestSendTx(t *testing.T) {
	tx := signedTestTx(t)
	raw, err := tx.MarshalBinary()
	require.NoError(t, err)

	c, node := newTestClient(t, 1, map[string]rpcHandler{"eth_sendRawTransaction": result(tx.Hash())})
	require.NoError(t, c.SendTx(context.Background(), tx))

	var sent string
	require.NoError(t, json.Unmarshal(node.calls["eth_sendRawTransaction"][0], &sent))
	require.Equal(t, hexutil.Encode(raw), sent)

	c, _ = newTestClient(t, 1, map[string]rpcHandler{"eth_sendRawTransaction": result(common.HexToHash("0xff"))})
	err = c.SendTx(context.Background(), tx)
	require.ErrorIs(t, err, ErrHashMismatch)
	require.ErrorIs(t, err, localTypes.ErrProtocol)

	c, _ = newTestClient(t, 1, map[string]rpcHandler{
		"eth_sendRawTransaction": func([]json.RawMessage) (interface{}, *jsonrpc.ErrorObject) {
			return nil, &jsonrpc.ErrorObject{Code: -32000, Message: "nonce too low"}
		},
	})
	err = c.SendTx(context.Background(), tx)
	require.ErrorIs(t, err, localTypes.ErrTransportExhausted)
	require.ErrorContains(t, err, "nonce too low")
}

func TestGetTx(t *testing.T) {
	tx := signedTestTx(t)
	c, _ := newTestClient(t, 1, map[string]rpcHandler{"eth_getTransactionByHash": result(nil)})
	_, _, err := c.GetTx(context.Background(), tx.Hash())
	require.ErrorIs(t, err, ethereum.NotFound)

	encoded, err := json.Marshal(tx)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(encoded, &body))
	body["blockNumber"] = "0x10"

	c, _ = newTestClient(t, 1, map[string]rpcHandler{"eth_getTransactionByHash": result(body)})
	got, isPending, err := c.GetTx(context.Background(), tx.Hash())
	require.NoError(t, err)
	require.False(t, isPending)
	require.Equal(t, tx.Hash(), got.Hash())
}

func TestReceipts(t *testing.T) {
	hash := common.HexToHash("0x1")
	receipt := &ethTypes.Receipt{
		Type:        ethTypes.DynamicFeeTxType,
		Status:      ethTypes.ReceiptStatusSuccessful,
		TxHash:      hash,
		BlockNumber: big.NewInt(7),
		Logs:        []*ethTypes.Log{},
	}

	c, _ := newTestClient(t, 1, map[string]rpcHandler{"eth_getTransactionReceipt": result(nil)})
	_, err := c.GetTxReceipt(context.Background(), hash)
	require.ErrorIs(t, err, ethereum.NotFound)

	mined, r, err := c.CheckTxWasMined(context.Background(), hash)
	require.NoError(t, err)
	require.False(t, mined)
	require.Nil(t, r)

	c, _ = newTestClient(t, 1, map[string]rpcHandler{"eth_getTransactionReceipt": result(receipt)})
	mined, r, err = c.CheckTxWasMined(context.Background(), hash)
	require.NoError(t, err)
	require.True(t, mined)
	require.Equal(t, hash, r.TxHash)
	require.Equal(t, int64(7), r.BlockNumber.Int64())

	r, err = c.WaitTxReceipt(context.Background(), hash, time.Second, 10*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, hash, r.TxHash)
}

func TestWaitTxReceiptTimeout(t *testing.T) {
	c, _ := newTestClient(t, 1, map[string]rpcHandler{"eth_getTransactionReceipt": result(nil)})
	_, err := c.WaitTxReceipt(context.Background(), common.HexToHash("0x1"), 50*time.Millisecond, 10*time.Millisecond)
	require.ErrorIs(t, err, ErrTimeoutReached)
}

func TestRevertReason(t *testing.T) {
	errorTy, err := abi.NewType("string", "", nil)
	require.NoError(t, err)
	packed, err := abi.Arguments{{Type: errorTy}}.Pack("insufficient balance")
	require.NoError(t, err)
	data := hexutil.Encode(append([]byte{0x08, 0xc3, 0x79, 0xa0}, packed...))

	callErr := &jsonrpc.ProtocolError{Err: jsonrpc.ErrorObject{Code: 3, Message: "execution reverted", Data: json.RawMessage(`"` + data + `"`)}}
	reason, err := RevertReason(callErr)
	require.NoError(t, err)
	require.Equal(t, "insufficient balance", reason)

	plain := errors.New("boom")
	_, err = RevertReason(plain)
	require.ErrorIs(t, err, plain)
}

func TestGetRevertMessage(t *testing.T) {
	tx := signedTestTx(t)
	errorTy, err := abi.NewType("string", "", nil)
	require.NoError(t, err)
	packed, err := abi.Arguments{{Type: errorTy}}.Pack("transfer amount exceeds balance")
	require.NoError(t, err)
	data := hexutil.Encode(append([]byte{0x08, 0xc3, 0x79, 0xa0}, packed...))

	receipt := func(status uint64) *ethTypes.Receipt {
		return &ethTypes.Receipt{
			Type:        ethTypes.DynamicFeeTxType,
			Status:      status,
			TxHash:      tx.Hash(),
			BlockNumber: big.NewInt(7),
			Logs:        []*ethTypes.Log{},
		}
	}
	reverted := func([]json.RawMessage) (interface{}, *jsonrpc.ErrorObject) {
		return nil, &jsonrpc.ErrorObject{Code: 3, Message: "execution reverted", Data: json.RawMessage(`"` + data + `"`)}
	}

	c, node := newTestClient(t, 1, map[string]rpcHandler{
		"eth_getTransactionReceipt": result(receipt(ethTypes.ReceiptStatusFailed)),
		"eth_call":                  reverted,
	})
	reason, err := c.GetRevertMessage(context.Background(), tx)
	require.NoError(t, err)
	require.Equal(t, "transfer amount exceeds balance", reason)

	// replayed at the block of the receipt from the tx sender
	var callArg map[string]interface{}
	require.NoError(t, json.Unmarshal(node.calls["eth_call"][0], &callArg))
	require.Equal(t, "0x0000000000000000000000000000000000000002", callArg["to"])
	require.Equal(t, "0x2c7536e3605d9c16a7a3d7b1898e529396a65c23", callArg["from"])
	var block string
	require.NoError(t, json.Unmarshal(node.calls["eth_call"][1], &block))
	require.Equal(t, "0x7", block)

	c, node = newTestClient(t, 1, map[string]rpcHandler{
		"eth_getTransactionReceipt": result(receipt(ethTypes.ReceiptStatusSuccessful)),
		"eth_call":                  reverted,
	})
	reason, err = c.GetRevertMessage(context.Background(), tx)
	require.NoError(t, err)
	require.Empty(t, reason)
	require.NotContains(t, node.calls, "eth_call")

	reason, err = c.GetRevertMessage(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, reason)
}
