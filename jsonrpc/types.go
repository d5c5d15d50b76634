package jsonrpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/0xPolygon/ethtx-gateway/types"
)

const jsonRPCVersion = "2.0"

var (
	// ErrNoEndpoints is returned when the gateway is built without URLs
	ErrNoEndpoints = errors.New("no rpc endpoints configured")

	errEmptyEnvelope = errors.New("response carries neither result nor error")
)

// Request is a JSON-RPC 2.0 request envelope
type Request struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      string        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

// Response is a JSON-RPC 2.0 response envelope. Result keeps the raw JSON,
// a literal null result is kept as "null".
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ErrorObject    `json:"error,omitempty"`
}

// HasResult reports whether the result member was present in the body
func (r Response) HasResult() bool {
	return len(r.Result) > 0
}

// ErrorObject is the error member of a response
type ErrorObject struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// ProtocolError is returned when the node answered with an error object
type ProtocolError struct {
	Endpoint string
	Method   string
	Err      ErrorObject
}

func (e *ProtocolError) Error() string {
	msg := fmt.Sprintf("rpc error %d: %s", e.Err.Code, e.Err.Message)
	if len(e.Err.Data) > 0 {
		msg += " (" + string(e.Err.Data) + ")"
	}
	return msg
}

// ErrorCode is the JSON-RPC error code
func (e *ProtocolError) ErrorCode() int {
	return e.Err.Code
}

// ErrorData is the optional data member, usually the hex revert payload
func (e *ProtocolError) ErrorData() interface{} {
	if len(e.Err.Data) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(e.Err.Data, &s); err == nil {
		return s
	}
	return string(e.Err.Data)
}

// Unwrap allows errors.Is(err, types.ErrProtocol)
func (e *ProtocolError) Unwrap() error {
	return types.ErrProtocol
}

// HTTPError is returned for non 2xx answers
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// InvalidBodyError is returned when a 2xx body is not a JSON-RPC envelope
type InvalidBodyError struct {
	Body string
	Err  error
}

func (e *InvalidBodyError) Error() string {
	return fmt.Sprintf("invalid json body: %v", e.Err)
}

func (e *InvalidBodyError) Unwrap() error {
	return e.Err
}

// ExhaustedError is returned once every endpoint of the pool was tried
// without a usable response
type ExhaustedError struct {
	Method   string
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all rpc endpoints failed for %s after %d attempts: %v", e.Method, e.Attempts, e.Last)
}

// Unwrap exposes both the exhaustion sentinel and the last observed error
func (e *ExhaustedError) Unwrap() []error {
	if e.Last == nil {
		return []error{types.ErrTransportExhausted}
	}
	return []error{types.ErrTransportExhausted, e.Last}
}
