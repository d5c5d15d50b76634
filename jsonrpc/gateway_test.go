package jsonrpc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/0xPolygon/ethtx-gateway/config/types"
	localTypes "github.com/0xPolygon/ethtx-gateway/types"
	"github.com/ethereum/go-ethereum/common"
	ethTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

type fakeNode struct {
	*httptest.Server
	hits    atomic.Int32
	mu      sync.Mutex
	methods []string
}

func newFakeNode(t *testing.T, handler func(w http.ResponseWriter, req Request)) *fakeNode {
	t.Helper()
	n := &fakeNode{}
	n.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n.hits.Add(1)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req Request
		_ = json.Unmarshal(body, &req)
		n.mu.Lock()
		n.methods = append(n.methods, req.Method)
		n.mu.Unlock()
		handler(w, req)
	}))
	t.Cleanup(n.Close)
	return n
}

func writeResult(w http.ResponseWriter, req Request, result interface{}) {
	raw, _ := json.Marshal(result)
	_ = json.NewEncoder(w).Encode(Response{JSONRPC: "2.0", ID: json.RawMessage(`"` + req.ID + `"`), Result: raw})
}

func statusHandler(status int) func(w http.ResponseWriter, req Request) {
	return func(w http.ResponseWriter, _ Request) {
		w.WriteHeader(status)
	}
}

func newTestGateway(t *testing.T, maxRetries uint64, urls ...string) *Gateway {
	t.Helper()
	g, err := NewGateway(Config{
		URLs:           urls,
		RequestTimeout: types.NewDuration(2 * time.Second),
		MaxRetries:     maxRetries,
		RetryInterval:  types.NewDuration(time.Millisecond),
	})
	require.NoError(t, err)
	return g
}

func TestNewGatewayWithoutEndpoints(t *testing.T) {
	_, err := NewGateway(Config{})
	require.ErrorIs(t, err, ErrNoEndpoints)
}

func TestEndpointsAreACopy(t *testing.T) {
	urls := []string{"http://a", "http://b"}
	g, err := NewGateway(Config{URLs: urls})
	require.NoError(t, err)
	urls[0] = "http://changed"

	endpoints := g.Endpoints()
	require.Equal(t, []string{"http://a", "http://b"}, endpoints)
	endpoints[1] = "http://changed"
	require.Equal(t, []string{"http://a", "http://b"}, g.Endpoints())
}

func TestCallAllEndpointsFailWith5xx(t *testing.T) {
	nodes := []*fakeNode{
		newFakeNode(t, statusHandler(http.StatusBadGateway)),
		newFakeNode(t, statusHandler(http.StatusServiceUnavailable)),
		newFakeNode(t, statusHandler(http.StatusInternalServerError)),
	}
	g := newTestGateway(t, 0, nodes[0].URL, nodes[1].URL, nodes[2].URL)

	_, err := g.Call(context.Background(), "eth_blockNumber")
	require.ErrorIs(t, err, localTypes.ErrTransportExhausted)

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	require.Equal(t, 3, exhausted.Attempts)
	require.Contains(t, err.Error(), "HTTP 500")

	for _, n := range nodes {
		require.Equal(t, int32(1), n.hits.Load())
	}
}

func TestTransportRetryStaysOnSameEndpoint(t *testing.T) {
	n := newFakeNode(t, statusHandler(http.StatusBadGateway))
	g := newTestGateway(t, 2, n.URL)

	_, err := g.Call(context.Background(), "eth_chainId")
	require.ErrorIs(t, err, localTypes.ErrTransportExhausted)
	require.Equal(t, int32(3), n.hits.Load(), "one attempt plus two retries")
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	n := newFakeNode(t, statusHandler(http.StatusTooManyRequests))
	g := newTestGateway(t, 2, n.URL)

	_, err := g.Call(context.Background(), "eth_chainId")
	require.ErrorIs(t, err, localTypes.ErrTransportExhausted)
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
	require.Equal(t, int32(1), n.hits.Load())
}

func TestCallLastEndpointSucceeds(t *testing.T) {
	failing1 := newFakeNode(t, statusHandler(http.StatusBadGateway))
	failing2 := newFakeNode(t, func(w http.ResponseWriter, _ Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	})
	ok := newFakeNode(t, func(w http.ResponseWriter, req Request) {
		writeResult(w, req, "0x89")
	})
	g := newTestGateway(t, 0, failing1.URL, failing2.URL, ok.URL)

	result, err := g.Call(context.Background(), "eth_chainId")
	require.NoError(t, err)
	require.JSONEq(t, `"0x89"`, string(result))
	require.Equal(t, int32(1), failing1.hits.Load())
	require.Equal(t, int32(1), failing2.hits.Load())
	require.Equal(t, int32(1), ok.hits.Load())
}

func TestRPCErrorAdvancesToNextEndpoint(t *testing.T) {
	rpcErr := newFakeNode(t, func(w http.ResponseWriter, req Request) {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":"` + req.ID + `","error":{"code":-32000,"message":"header not found"}}`))
	})
	ok := newFakeNode(t, func(w http.ResponseWriter, req Request) {
		writeResult(w, req, "0x10")
	})
	g := newTestGateway(t, 2, rpcErr.URL, ok.URL)

	resp, err := g.CallRaw(context.Background(), "eth_blockNumber")
	require.NoError(t, err)
	require.Nil(t, resp.Error)
	require.Equal(t, int32(1), rpcErr.hits.Load(), "rpc errors are never retried on the same endpoint")
}

func TestAllRPCErrorsSurfaceProtocolError(t *testing.T) {
	rpcErr := newFakeNode(t, func(w http.ResponseWriter, req Request) {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":"` + req.ID + `","error":{"code":3,"message":"execution reverted","data":"0x08c379a0"}}`))
	})
	g := newTestGateway(t, 0, rpcErr.URL)

	_, err := g.Call(context.Background(), "eth_estimateGas")
	require.ErrorIs(t, err, localTypes.ErrTransportExhausted)
	require.ErrorIs(t, err, localTypes.ErrProtocol)
	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
	require.Equal(t, 3, protoErr.ErrorCode())
	require.Equal(t, "0x08c379a0", protoErr.ErrorData())
}

func TestEnvelopeWithoutResultIsAFailure(t *testing.T) {
	empty := newFakeNode(t, func(w http.ResponseWriter, req Request) {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":"` + req.ID + `"}`))
	})
	g := newTestGateway(t, 0, empty.URL)

	_, err := g.Call(context.Background(), "eth_chainId")
	require.ErrorIs(t, err, errEmptyEnvelope)
}

func TestNullResultIsKept(t *testing.T) {
	n := newFakeNode(t, func(w http.ResponseWriter, req Request) {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":"` + req.ID + `","result":null}`))
	})
	g := newTestGateway(t, 0, n.URL)

	result, err := g.Call(context.Background(), "eth_getTransactionReceipt", common.Hash{})
	require.NoError(t, err)
	require.Equal(t, "null", string(result))
}

func TestCursorRotatesAcrossCalls(t *testing.T) {
	a := newFakeNode(t, func(w http.ResponseWriter, req Request) { writeResult(w, req, "0x1") })
	b := newFakeNode(t, func(w http.ResponseWriter, req Request) { writeResult(w, req, "0x1") })
	g := newTestGateway(t, 0, a.URL, b.URL)

	for i := 0; i < 4; i++ {
		_, err := g.Call(context.Background(), "eth_chainId")
		require.NoError(t, err)
	}
	require.Equal(t, int32(2), a.hits.Load())
	require.Equal(t, int32(2), b.hits.Load())
}

func TestHealth(t *testing.T) {
	n := newFakeNode(t, func(w http.ResponseWriter, req Request) {
		switch req.Method {
		case "eth_chainId":
			writeResult(w, req, "0x89")
		case "eth_blockNumber":
			writeResult(w, req, "0x3e8")
		}
	})
	g := newTestGateway(t, 0, n.URL)

	h, err := g.Health(context.Background())
	require.NoError(t, err)
	require.Equal(t, Health{ChainID: 137, BlockNumber: 1000}, h)
	require.Equal(t, []string{"eth_chainId", "eth_blockNumber"}, n.methods)
}

func TestGetLogs(t *testing.T) {
	expected := []*ethTypes.Log{{
		Address: common.HexToAddress("0x1"),
		Topics:  []common.Hash{common.HexToHash("0xaa")},
		Data:    []byte{0x01},
		TxHash:  common.HexToHash("0xbb"),
	}}
	var gotParams []interface{}
	n := newFakeNode(t, func(w http.ResponseWriter, req Request) {
		gotParams = req.Params
		writeResult(w, req, expected)
	})
	g := newTestGateway(t, 0, n.URL)

	logs, err := g.GetLogs(context.Background(), map[string]interface{}{"fromBlock": "0x1"})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, expected[0].Address, logs[0].Address)
	require.Equal(t, expected[0].Topics, logs[0].Topics)
	require.Len(t, gotParams, 1)
}

func TestObserverAndHeaders(t *testing.T) {
	var gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Api-Key")
		var req Request
		_ = json.NewDecoder(r.Body).Decode(&req)
		writeResult(w, req, "0x1")
	}))
	defer srv.Close()

	g, err := NewGateway(Config{URLs: []string{srv.URL}, HTTPHeaders: map[string]string{"X-Api-Key": "secret"}})
	require.NoError(t, err)

	var outcomes []Outcome
	g.SetObserver(func(_, _ string, outcome Outcome, _ time.Duration) {
		outcomes = append(outcomes, outcome)
	})

	_, err = g.Call(context.Background(), "eth_chainId")
	require.NoError(t, err)
	require.Equal(t, "secret", gotHeader)
	require.Equal(t, []Outcome{OutcomeOK}, outcomes)
}

func TestCancelledContextStopsRotation(t *testing.T) {
	n := newFakeNode(t, statusHandler(http.StatusBadGateway))
	g := newTestGateway(t, 0, n.URL, n.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.Call(ctx, "eth_chainId")
	require.True(t, errors.Is(err, context.Canceled))
	require.Equal(t, int32(0), n.hits.Load())
}
