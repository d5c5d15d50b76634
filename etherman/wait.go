package etherman

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/0xPolygon/ethtx-gateway/log"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const (
	// DefaultInterval is the receipt polling interval
	DefaultInterval = 800 * time.Millisecond
	// DefaultDeadline is the default time to wait for a receipt
	DefaultDeadline = 2 * time.Minute
)

var (
	// ErrTimeoutReached is thrown when the timeout is reached and
	// because the condition is not matched
	ErrTimeoutReached = fmt.Errorf("timeout has been reached")
)

// ConditionFunc is a generic function
type ConditionFunc func() (done bool, err error)

// Poll checks the condition right away and then with the given interval
// until it succeeds, fails or the given deadline expires.
func Poll(ctx context.Context, interval, deadline time.Duration, condition ConditionFunc) error {
	timeout := time.NewTimer(deadline)
	defer timeout.Stop()
	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		ok, err := condition()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout.C:
			return ErrTimeoutReached
		case <-tick.C:
		}
	}
}

// ReceiptGetter returns the receipt of a tx or ethereum.NotFound
type ReceiptGetter interface {
	GetTxReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// WaitTxReceipt waits until a tx receipt is available or the given timeout
// expires, lookup errors other than not found are logged and polling continues
func WaitTxReceipt(
	ctx context.Context,
	txHash common.Hash,
	timeout, interval time.Duration,
	client ReceiptGetter,
) (*types.Receipt, error) {
	if client == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if timeout <= 0 {
		timeout = DefaultDeadline
	}
	if interval <= 0 {
		interval = DefaultInterval
	}

	var receipt *types.Receipt
	pollErr := Poll(ctx, interval, timeout, func() (bool, error) {
		var err error
		receipt, err = client.GetTxReceipt(ctx, txHash)
		if err != nil {
			if !errors.Is(err, ethereum.NotFound) {
				log.Warnf("failed to get receipt of tx %s: %v", txHash.String(), err)
			}
			return false, nil
		}
		return true, nil
	})
	if pollErr != nil {
		return nil, pollErr
	}
	return receipt, nil
}

// WaitSignal blocks until an Interrupt or Kill signal is received, then it
// executes the given cleanup functions and returns.
func WaitSignal(cleanupFuncs ...func()) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	for sig := range signals {
		switch sig {
		case os.Interrupt, syscall.SIGTERM:
			log.Info("terminating application gracefully...")
			for _, cleanup := range cleanupFuncs {
				cleanup()
			}
			return
		}
	}
}
