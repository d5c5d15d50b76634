package types

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// EventKind identifies a lifecycle transition
type EventKind string

const (
	// EventQueued is emitted once when a send request starts being processed
	EventQueued = EventKind("queued")
	// EventBroadcast is emitted every time a signed tx is accepted by the node
	EventBroadcast = EventKind("broadcast")
	// EventReplaced is emitted before a stuck tx is re-sent with higher fees
	EventReplaced = EventKind("replaced")
	// EventMined is the terminal success event
	EventMined = EventKind("mined")
	// EventFailed is the terminal failure event
	EventFailed = EventKind("failed")
)

// String returns a string representation of the kind
func (k EventKind) String() string {
	return string(k)
}

// Terminal reports whether no other event follows this one
func (k EventKind) Terminal() bool {
	return k == EventMined || k == EventFailed
}

// Event is a lifecycle transition of a send request
type Event struct {
	Kind      EventKind
	RequestID string
	From      common.Address
	// TxHash is the hash of the broadcast or mined tx
	TxHash common.Hash
	// OldTxHash is the hash of the tx superseded by a replacement
	OldTxHash common.Hash
	// Fields of the tx that was broadcast or that will replace OldTxHash
	Fields *TxFields
	// Attempt is the replacement number, starting at 1
	Attempt int
	Receipt *types.Receipt
	Reason  string
	Err     error
	At      time.Time
}

// EventSink receives lifecycle events, it must not block the caller for long
type EventSink interface {
	Emit(e Event)
}

// SendRequest is a request to deliver call data to a contract
type SendRequest struct {
	ID    string
	From  common.Address
	To    common.Address
	Data  []byte
	Value *big.Int

	// Per-request overrides, nil means the controller configuration is used
	ConfirmTimeout  *time.Duration
	PollInterval    *time.Duration
	MaxReplacements *int
}

// SendResult is the outcome of a lifecycle run
type SendResult struct {
	ID           string
	Status       MonitoredTxStatus
	TxHash       common.Hash
	History      []common.Hash
	Receipt      *types.Receipt
	Fields       TxFields
	Replacements int
	Reason       string
	Err          error
}
