package ethtxmanager

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/0xPolygon/ethtx-gateway/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestMultiSink(t *testing.T) {
	var order []string
	sink := MultiSink{
		SinkFunc(func(types.Event) { order = append(order, "first") }),
		nil,
		SinkFunc(func(types.Event) { order = append(order, "second") }),
	}
	sink.Emit(types.Event{Kind: types.EventQueued})
	require.Equal(t, []string{"first", "second"}, order)
}

func TestStorageSink(t *testing.T) {
	ctx := context.Background()
	storage, err := NewMemStorage("")
	require.NoError(t, err)
	require.NoError(t, storage.Add(ctx, types.MonitoredTx{ID: "req", Status: types.MonitoredTxStatusQueued}))
	sink := NewStorageSink(storage)

	firstHash := common.HexToHash("0x1")
	secondHash := common.HexToHash("0x2")
	fields := &types.TxFields{
		Nonce:                4,
		Gas:                  150000,
		To:                   common.HexToAddress("0x3"),
		MaxPriorityFeePerGas: big.NewInt(1),
		MaxFeePerGas:         big.NewInt(2),
	}

	steps := []struct {
		event  types.Event
		assert func(t *testing.T, mTx types.MonitoredTx)
	}{
		{
			event: types.Event{Kind: types.EventQueued, RequestID: "req"},
			assert: func(t *testing.T, mTx types.MonitoredTx) {
				require.Equal(t, types.MonitoredTxStatusQueued, mTx.Status)
			},
		},
		{
			event: types.Event{Kind: types.EventBroadcast, RequestID: "req", TxHash: firstHash, Fields: fields},
			assert: func(t *testing.T, mTx types.MonitoredTx) {
				require.Equal(t, types.MonitoredTxStatusSent, mTx.Status)
				require.Equal(t, firstHash, mTx.TxHash)
				require.Equal(t, uint64(4), mTx.Nonce)
				require.Equal(t, uint64(150000), mTx.Gas)
				require.Equal(t, common.HexToAddress("0x3"), *mTx.To)
			},
		},
		{
			event: types.Event{Kind: types.EventReplaced, RequestID: "req", OldTxHash: firstHash, Attempt: 1},
			assert: func(t *testing.T, mTx types.MonitoredTx) {
				require.Equal(t, 1, mTx.Replacements)
				require.Equal(t, firstHash, mTx.TxHash)
			},
		},
		{
			event: types.Event{Kind: types.EventBroadcast, RequestID: "req", TxHash: secondHash},
			assert: func(t *testing.T, mTx types.MonitoredTx) {
				require.Equal(t, []common.Hash{firstHash, secondHash}, mTx.History)
				require.Equal(t, secondHash, mTx.TxHash)
			},
		},
		{
			event: types.Event{Kind: types.EventFailed, RequestID: "req", Reason: "send_error", Err: errors.New("boom")},
			assert: func(t *testing.T, mTx types.MonitoredTx) {
				require.Equal(t, types.MonitoredTxStatusFailed, mTx.Status)
				require.Equal(t, "send_error", mTx.Reason)
			},
		},
		{
			event: types.Event{Kind: types.EventMined, RequestID: "req", TxHash: firstHash, Receipt: minedReceipt(firstHash)},
			assert: func(t *testing.T, mTx types.MonitoredTx) {
				require.Equal(t, types.MonitoredTxStatusMined, mTx.Status)
				require.Equal(t, firstHash, mTx.TxHash)
				require.Empty(t, mTx.Reason)
				require.Equal(t, int64(100), mTx.BlockNumber.Int64())
			},
		},
	}

	for _, step := range steps {
		sink.Emit(step.event)
		mTx, err := storage.Get(ctx, "req")
		require.NoError(t, err)
		step.assert(t, mTx)
	}

	// events of removed requests are dropped
	require.NoError(t, storage.Remove(ctx, "req"))
	sink.Emit(types.Event{Kind: types.EventFailed, RequestID: "req"})
	_, err = storage.Get(ctx, "req")
	require.ErrorIs(t, err, types.ErrNotFound)
}

func TestLogSinkHandlesPartialEvents(t *testing.T) {
	sink := LogSink{}
	require.NotPanics(t, func() {
		for _, kind := range []types.EventKind{types.EventQueued, types.EventBroadcast, types.EventReplaced, types.EventMined, types.EventFailed} {
			sink.Emit(types.Event{Kind: kind, RequestID: "req"})
		}
		sink.Emit(types.Event{Kind: types.EventMined, RequestID: "req", Receipt: minedReceipt(common.HexToHash("0x1"))})
	})
}
