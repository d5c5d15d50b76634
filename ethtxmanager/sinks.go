package ethtxmanager

import (
	"context"
	"errors"
	"time"

	localCommon "github.com/0xPolygon/ethtx-gateway/common"
	"github.com/0xPolygon/ethtx-gateway/log"
	"github.com/0xPolygon/ethtx-gateway/types"
)

// MultiSink forwards every event to all its sinks in order
type MultiSink []types.EventSink

// Emit implements types.EventSink
func (m MultiSink) Emit(e types.Event) {
	for _, s := range m {
		if s != nil {
			s.Emit(e)
		}
	}
}

// SinkFunc adapts a function to types.EventSink
type SinkFunc func(e types.Event)

// Emit implements types.EventSink
func (f SinkFunc) Emit(e types.Event) {
	f(e)
}

// LogSink writes the events to the log
type LogSink struct{}

// Emit implements types.EventSink
func (LogSink) Emit(e types.Event) {
	logger := log.WithFields("requestID", e.RequestID, "from", e.From.String(), "event", e.Kind.String())
	switch e.Kind {
	case types.EventQueued:
		logger.Debug("request queued")
	case types.EventBroadcast:
		if e.Fields != nil {
			logger.Infof("broadcast %s nonce %d gas %d %s", e.TxHash.String(), e.Fields.Nonce, e.Fields.Gas, e.Fields.Fees().String())
		} else {
			logger.Infof("broadcast %s", e.TxHash.String())
		}
	case types.EventReplaced:
		if e.Fields != nil {
			logger.Infof("replacing %s, attempt %d, %s", e.OldTxHash.String(), e.Attempt, e.Fields.Fees().String())
		} else {
			logger.Infof("replacing %s, attempt %d", e.OldTxHash.String(), e.Attempt)
		}
	case types.EventMined:
		if fee := gasFromReceipt(e.Receipt); fee != nil {
			logger.Infof("mined %s in block %v, fee paid %s gwei", e.TxHash.String(), e.Receipt.BlockNumber, localCommon.WeiToGwei(fee))
		} else {
			logger.Infof("mined %s", e.TxHash.String())
		}
	case types.EventFailed:
		logger.Warnf("failed: %s: %v", e.Reason, e.Err)
	}
}

// StorageSink keeps the stored MonitoredTx of each request in sync with its events
type StorageSink struct {
	Storage types.StorageInterface
	// Timeout bounds every storage operation, 0 means no limit
	Timeout time.Duration
}

// NewStorageSink creates a sink updating storage
func NewStorageSink(storage types.StorageInterface) *StorageSink {
	return &StorageSink{Storage: storage, Timeout: 10 * time.Second} //nolint:mnd
}

// Emit implements types.EventSink
func (s *StorageSink) Emit(e types.Event) {
	if e.Kind == types.EventQueued {
		return
	}
	ctx := context.Background()
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	mTx, err := s.Storage.Get(ctx, e.RequestID)
	if errors.Is(err, types.ErrNotFound) {
		// the request was removed while running
		return
	} else if err != nil {
		log.Errorf("failed to get monitored tx %s: %v", e.RequestID, err)
		return
	}

	applyEvent(&mTx, e)
	if err := s.Storage.Update(ctx, mTx); err != nil {
		log.Errorf("failed to update monitored tx %s: %v", e.RequestID, err)
	}
}

// applyEvent moves the record to the state described by the event
func applyEvent(mTx *types.MonitoredTx, e types.Event) {
	switch e.Kind {
	case types.EventBroadcast:
		mTx.Status = types.MonitoredTxStatusSent
		if e.Fields != nil {
			mTx.ApplyFields(*e.Fields)
		}
		if err := mTx.AddHistory(e.TxHash); err != nil {
			mTx.TxHash = e.TxHash
		}
	case types.EventReplaced:
		mTx.Replacements = e.Attempt
	case types.EventMined:
		mTx.Status = types.MonitoredTxStatusMined
		mTx.TxHash = e.TxHash
		mTx.Reason = ""
		if e.Receipt != nil {
			mTx.BlockNumber = e.Receipt.BlockNumber
		}
	case types.EventFailed:
		mTx.Status = types.MonitoredTxStatusFailed
		mTx.Reason = e.Reason
	}
}
