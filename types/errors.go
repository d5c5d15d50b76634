package types

import "errors"

var (
	// ErrNotFound when the object is not found
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists when the object already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrTransportExhausted is returned when every endpoint of the pool failed to
	// produce a usable response
	ErrTransportExhausted = errors.New("transport exhausted")
	// ErrProtocol is returned when a node answered with a JSON-RPC error object
	ErrProtocol = errors.New("rpc protocol error")
	// ErrABI is the parent of every encoding/decoding error caused by an
	// unknown function, an unsupported type or a malformed ABI document
	ErrABI = errors.New("abi error")
	// ErrSigning is returned for invalid or unusable key material
	ErrSigning = errors.New("signing error")
	// ErrLifecycleExhausted is returned when all the replacement attempts were
	// used without getting a receipt
	ErrLifecycleExhausted = errors.New("replacement attempts exhausted")
)
