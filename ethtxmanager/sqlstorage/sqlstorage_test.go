package sqlstorage

import (
	"context"
	"fmt"
	"math/big"
	"path/filepath"
	"sync"
	"testing"
	"time"

	localCommon "github.com/0xPolygon/ethtx-gateway/common"
	"github.com/0xPolygon/ethtx-gateway/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *SqlStorage {
	t.Helper()
	storage, err := NewStorage(localCommon.SQLLiteDriverName, filepath.Join(t.TempDir(), "ethtxgateway.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })
	return storage
}

func TestSqlStorage_Add(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	tests := []struct {
		name        string
		mTx         types.MonitoredTx
		expectedErr error
	}{
		{
			name: "Add new request",
			mTx:  newMonitoredTx("req-1", "0x1", "0x2", 1, types.MonitoredTxStatusQueued, 0),
		},
		{
			name: "Add sent request",
			mTx:  newMonitoredTx("req-2", "0x1", "0x2", 2, types.MonitoredTxStatusSent, 0),
		},
		{
			name:        "Add duplicate request",
			mTx:         newMonitoredTx("req-1", "0x1", "0x2", 1, types.MonitoredTxStatusQueued, 0),
			expectedErr: types.ErrAlreadyExists,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := storage.Add(ctx, test.mTx)
			if test.expectedErr != nil {
				require.ErrorIs(t, err, test.expectedErr)
				return
			}
			require.NoError(t, err)

			resultTx, err := storage.Get(ctx, test.mTx.ID)
			require.NoError(t, err)
			compareTxsWithoutDates(t, test.mTx, resultTx)
			require.False(t, resultTx.CreatedAt.IsZero())
		})
	}
}

func TestSqlStorage_Remove(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	require.NoError(t, storage.Add(ctx, newMonitoredTx("req-1", "0x1", "0x2", 1, types.MonitoredTxStatusQueued, 0)))

	require.NoError(t, storage.Remove(ctx, "req-1"))
	_, err := storage.Get(ctx, "req-1")
	require.ErrorIs(t, err, types.ErrNotFound)

	require.ErrorIs(t, storage.Remove(ctx, "req-1"), types.ErrNotFound)
}

func TestSqlStorage_GetByStatus(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	statuses := []types.MonitoredTxStatus{
		types.MonitoredTxStatusQueued,
		types.MonitoredTxStatusSent,
		types.MonitoredTxStatusMined,
		types.MonitoredTxStatusFailed,
		types.MonitoredTxStatusSent,
	}
	for i, status := range statuses {
		require.NoError(t, storage.Add(ctx, newMonitoredTx(fmt.Sprintf("req-%d", i), "0x1", "0x2", uint64(i), status, 0)))
		time.Sleep(2 * time.Millisecond)
	}

	tests := []struct {
		name        string
		statuses    []types.MonitoredTxStatus
		expectedIDs []string
	}{
		{"all", nil, []string{"req-0", "req-1", "req-2", "req-3", "req-4"}},
		{"sent", []types.MonitoredTxStatus{types.MonitoredTxStatusSent}, []string{"req-1", "req-4"}},
		{"terminal", []types.MonitoredTxStatus{types.MonitoredTxStatusMined, types.MonitoredTxStatusFailed}, []string{"req-2", "req-3"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			mTxs, err := storage.GetByStatus(ctx, test.statuses)
			require.NoError(t, err)
			ids := make([]string, 0, len(mTxs))
			for _, mTx := range mTxs {
				ids = append(ids, mTx.ID)
			}
			require.Equal(t, test.expectedIDs, ids)
		})
	}
}

func TestSqlStorage_Update(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	mTx := newMonitoredTx("req-1", "0x1", "0x2", 1, types.MonitoredTxStatusQueued, 0)
	require.NoError(t, storage.Add(ctx, mTx))
	stored, err := storage.Get(ctx, mTx.ID)
	require.NoError(t, err)

	stored.Status = types.MonitoredTxStatusSent
	stored.GasFeeCap = big.NewInt(50_000_000_000)
	require.NoError(t, stored.AddHistory(common.HexToHash("0x3")))
	stored.Replacements = 1
	require.NoError(t, storage.Update(ctx, stored))

	updated, err := storage.Get(ctx, mTx.ID)
	require.NoError(t, err)
	require.Equal(t, types.MonitoredTxStatusSent, updated.Status)
	require.Equal(t, common.HexToHash("0x3"), updated.TxHash)
	require.Len(t, updated.History, 3)
	require.Equal(t, 1, updated.Replacements)
	require.Equal(t, int64(50_000_000_000), updated.GasFeeCap.Int64())
	require.True(t, stored.CreatedAt.Equal(updated.CreatedAt))

	missing := newMonitoredTx("req-2", "0x1", "0x2", 1, types.MonitoredTxStatusQueued, 0)
	require.ErrorIs(t, storage.Update(ctx, missing), types.ErrNotFound)
}

func TestSqlStorage_Empty(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	require.NoError(t, storage.Add(ctx, newMonitoredTx("req-1", "0x1", "0x2", 1, types.MonitoredTxStatusQueued, 0)))
	require.NoError(t, storage.Add(ctx, newMonitoredTx("req-2", "0x1", "0x2", 2, types.MonitoredTxStatusQueued, 0)))
	require.NoError(t, storage.Empty(ctx))

	mTxs, err := storage.GetByStatus(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, mTxs)
}

func TestSingleReaderMultipleWriters(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	numWriterGoroutines := 5
	numRecordsPerGoroutine := 10

	var wg sync.WaitGroup
	errs := make(chan error, numWriterGoroutines*numRecordsPerGoroutine)
	insertRecords := func(start, end int) {
		defer wg.Done()
		for i := start; i < end; i++ {
			errs <- storage.Add(ctx, newMonitoredTx(fmt.Sprintf("req-%d", i), "0x1", "0x2", uint64(i), types.MonitoredTxStatusQueued, 0))
		}
	}

	for i := 0; i < numWriterGoroutines; i++ {
		wg.Add(1)
		start := i * numRecordsPerGoroutine
		go insertRecords(start, start+numRecordsPerGoroutine)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	for i := 0; i < numWriterGoroutines*numRecordsPerGoroutine; i++ {
		_, err := storage.Get(ctx, fmt.Sprintf("req-%d", i))
		require.NoError(t, err, "record not found for ID %d", i)
	}
}

func TestSqlStorage_MonitoredTxTableExists(t *testing.T) {
	storage := newTestStorage(t)

	query := `SELECT name FROM sqlite_master WHERE type='table' AND name='monitored_txs';`
	var tableName string
	require.NoError(t, storage.db.QueryRow(query).Scan(&tableName))
	require.Equal(t, "monitored_txs", tableName)
}

// newMonitoredTx creates a record with two sent txs, blockNumber 0 means not mined
func newMonitoredTx(id string, fromHex string, toHex string, nonce uint64, status types.MonitoredTxStatus, blockNumber int64) types.MonitoredTx {
	mTx := types.MonitoredTx{
		ID:        id,
		From:      common.HexToAddress(fromHex),
		To:        localCommon.ToAddressPtr(toHex),
		Nonce:     nonce,
		Value:     big.NewInt(10),
		Data:      []byte{0xa9, 0x05, 0x9c, 0xbb},
		Gas:       150000,
		GasTipCap: big.NewInt(3_000_000_000),
		GasFeeCap: big.NewInt(40_000_000_000),
		Status:    status,
		History:   []common.Hash{common.HexToHash("0x1"), common.HexToHash("0x2")},
		TxHash:    common.HexToHash("0x2"),
	}
	if blockNumber > 0 {
		mTx.BlockNumber = big.NewInt(blockNumber)
	}
	return mTx
}

// compareTxsWithoutDates compares the two MonitoredTx instances, but without dates, since some functions are altering it
func compareTxsWithoutDates(t *testing.T, expected, actual types.MonitoredTx) {
	t.Helper()

	expected.CreatedAt = time.Time{}
	expected.UpdatedAt = time.Time{}
	actual.CreatedAt = time.Time{}
	actual.UpdatedAt = time.Time{}

	require.Equal(t, expected, actual)
}
