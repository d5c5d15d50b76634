// Package jsonrpc implements a JSON-RPC 2.0 client over a pool of HTTP
// endpoints. Every attempt moves a shared cursor so consecutive calls rotate
// over the pool, a failing endpoint hands the request to the next one and only
// a full pool rotation without a usable answer is reported to the caller.
package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/0xPolygon/ethtx-gateway/log"
	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
)

const (
	defaultRequestTimeout = 10 * time.Second
	defaultRetryInterval  = 200 * time.Millisecond
	maxErrorBodyLength    = 512
)

// Outcome classifies the result of a single endpoint attempt
type Outcome string

const (
	// OutcomeOK means a usable envelope was received
	OutcomeOK = Outcome("ok")
	// OutcomeRPCError means the envelope carried an error object
	OutcomeRPCError = Outcome("rpc_error")
	// OutcomeHTTPError means a non 2xx status was received
	OutcomeHTTPError = Outcome("http_error")
	// OutcomeTransportError means the request never got an HTTP answer
	OutcomeTransportError = Outcome("transport_error")
	// OutcomeInvalidBody means the body was not a JSON-RPC envelope
	OutcomeInvalidBody = Outcome("invalid_body")
)

// Observer is notified after every endpoint attempt
type Observer func(endpoint, method string, outcome Outcome, elapsed time.Duration)

// Gateway issues JSON-RPC requests over a pool of endpoints
type Gateway struct {
	cfg      Config
	urls     []string
	cursor   atomic.Uint64
	client   *http.Client
	observer Observer
}

// NewGateway creates a new gateway, the pool can't be empty
func NewGateway(cfg Config) (*Gateway, error) {
	if len(cfg.URLs) == 0 {
		return nil, ErrNoEndpoints
	}
	if cfg.RequestTimeout.Duration <= 0 {
		cfg.RequestTimeout.Duration = defaultRequestTimeout
	}
	if cfg.RetryInterval.Duration <= 0 {
		cfg.RetryInterval.Duration = defaultRetryInterval
	}

	urls := make([]string, len(cfg.URLs))
	copy(urls, cfg.URLs)

	return &Gateway{
		cfg:    cfg,
		urls:   urls,
		client: &http.Client{},
	}, nil
}

// SetObserver registers a function notified after every endpoint attempt
func (g *Gateway) SetObserver(o Observer) {
	g.observer = o
}

// Endpoints returns the configured pool
func (g *Gateway) Endpoints() []string {
	res := make([]string, len(g.urls))
	copy(res, g.urls)
	return res
}

// next picks the endpoint under the cursor and advances it. Concurrent callers
// may occasionally get the same endpoint, that is harmless.
func (g *Gateway) next() string {
	i := g.cursor.Add(1) - 1
	return g.urls[i%uint64(len(g.urls))]
}

// CallRaw performs the request and returns the full envelope of the first
// endpoint that produced a usable result. When the whole pool fails an
// *ExhaustedError carrying the last observed error is returned.
func (g *Gateway) CallRaw(ctx context.Context, method string, params ...interface{}) (Response, error) {
	if params == nil {
		params = []interface{}{}
	}
	req := Request{
		JSONRPC: jsonRPCVersion,
		ID:      uuid.NewString(),
		Method:  method,
		Params:  params,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	logger := log.WithFields("method", method, "id", req.ID)

	attempts := len(g.urls)
	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return Response{}, err
		}

		url := g.next()
		start := time.Now()
		resp, outcome, err := g.callEndpoint(ctx, url, method, body)
		g.observe(url, method, outcome, time.Since(start))
		if err == nil {
			return resp, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Response{}, ctxErr
		}

		lastErr = err
		switch outcome {
		case OutcomeRPCError:
			logger.Warnf("rpc error body from %s: %v", url, err)
		case OutcomeTransportError:
			logger.Errorf("rpc exception from %s: %v", url, err)
		default:
			logger.Warnf("rpc failure from %s: %v", url, err)
		}
	}

	return Response{}, &ExhaustedError{Method: method, Attempts: attempts, Last: lastErr}
}

// Call performs the request and returns the raw result member
func (g *Gateway) Call(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	resp, err := g.CallRaw(ctx, method, params...)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, &ProtocolError{Method: method, Err: *resp.Error}
	}
	return resp.Result, nil
}

// CallFor performs the request and decodes the result into out
func (g *Gateway) CallFor(ctx context.Context, out interface{}, method string, params ...interface{}) error {
	result, err := g.Call(ctx, method, params...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(result, out); err != nil {
		return fmt.Errorf("failed to decode %s result: %w", method, err)
	}
	return nil
}

// Health is the chain id and head block reported by the pool
type Health struct {
	ChainID     uint64 `json:"chainId"`
	BlockNumber uint64 `json:"blockNumber"`
}

// Health queries eth_chainId and then eth_blockNumber
func (g *Gateway) Health(ctx context.Context) (Health, error) {
	var chainID, blockNumber hexutil.Uint64
	if err := g.CallFor(ctx, &chainID, "eth_chainId"); err != nil {
		return Health{}, err
	}
	if err := g.CallFor(ctx, &blockNumber, "eth_blockNumber"); err != nil {
		return Health{}, err
	}
	return Health{ChainID: uint64(chainID), BlockNumber: uint64(blockNumber)}, nil
}

// GetLogs issues eth_getLogs with the provided filter object
func (g *Gateway) GetLogs(ctx context.Context, filter interface{}) ([]ethTypes.Log, error) {
	var logs []ethTypes.Log
	if err := g.CallFor(ctx, &logs, "eth_getLogs", filter); err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []ethTypes.Log{}
	}
	return logs, nil
}

// callEndpoint performs a request against a single endpoint, transport
// failures are retried on the same endpoint, everything else is returned
func (g *Gateway) callEndpoint(ctx context.Context, url, method string, body []byte) (Response, Outcome, error) {
	data, err := g.post(ctx, url, body)
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) {
			return Response{}, OutcomeHTTPError, err
		}
		return Response{}, OutcomeTransportError, err
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return Response{}, OutcomeInvalidBody, &InvalidBodyError{Body: truncate(string(data)), Err: err}
	}
	if resp.Error != nil {
		return Response{}, OutcomeRPCError, &ProtocolError{Endpoint: url, Method: method, Err: *resp.Error}
	}
	if !resp.HasResult() {
		return Response{}, OutcomeInvalidBody, &InvalidBodyError{Body: truncate(string(data)), Err: errEmptyEnvelope}
	}
	return resp, OutcomeOK, nil
}

func (g *Gateway) post(ctx context.Context, url string, body []byte) ([]byte, error) {
	var respBody []byte
	operation := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, g.cfg.RequestTimeout.Duration)
		defer cancel()

		req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		for key, value := range g.cfg.HTTPHeaders {
			req.Header.Set(key, value)
		}

		resp, err := g.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		switch {
		case resp.StatusCode >= http.StatusInternalServerError:
			return &HTTPError{StatusCode: resp.StatusCode, Body: truncate(string(data))}
		case resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices:
			return backoff.Permanent(&HTTPError{StatusCode: resp.StatusCode, Body: truncate(string(data))})
		}

		respBody = data
		return nil
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(g.cfg.RetryInterval.Duration), g.cfg.MaxRetries),
		ctx,
	)
	if err := backoff.Retry(operation, b); err != nil {
		return nil, err
	}
	return respBody, nil
}

func (g *Gateway) observe(url, method string, outcome Outcome, elapsed time.Duration) {
	if g.observer != nil {
		g.observer(url, method, outcome, elapsed)
	}
}

func truncate(s string) string {
	if len(s) > maxErrorBodyLength {
		return s[:maxErrorBodyLength] + "..."
	}
	return s
}
