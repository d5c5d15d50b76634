package abicodec

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// StringToBytes32 returns the 0x prefixed, right padded bytes32 form of s.
// Inputs longer than 32 bytes are cut when truncate is set.
func StringToBytes32(s string, truncate bool) (string, error) {
	b := []byte(s)
	if len(b) > slotSize {
		if !truncate {
			return "", fmt.Errorf("%w: got %d bytes", ErrInputTooLong, len(b))
		}
		b = b[:slotSize]
	}
	return "0x" + hex.EncodeToString(common.RightPadBytes(b, slotSize)), nil
}

// Bytes32ToString decodes exactly 32 bytes of hex and trims trailing NULs
func Bytes32ToString(hexValue string) (string, error) {
	s := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(hexValue), "0x"), "0X")
	if len(s) != 2*slotSize {
		return "", fmt.Errorf("%w: bytes32 must be 64 hex characters, got %d", ErrInvalidArgument, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return string(bytes.TrimRight(b, "\x00")), nil
}
