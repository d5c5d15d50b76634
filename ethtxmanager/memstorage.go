package ethtxmanager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/0xPolygon/ethtx-gateway/log"
	"github.com/0xPolygon/ethtx-gateway/types"
)

var _ types.StorageInterface = (*MemStorage)(nil)

// MemStorage hold the send requests in memory, optionally mirrored to a JSON file
type MemStorage struct {
	TxsMutex            sync.RWMutex
	FileMutex           sync.Mutex
	Transactions        map[string]types.MonitoredTx
	PersistenceFilename string
}

// NewMemStorage creates a new instance of storage, loading persistenceFilename when it exists
func NewMemStorage(persistenceFilename string) (*MemStorage, error) {
	transactions := make(map[string]types.MonitoredTx)
	if persistenceFilename != "" {
		content, err := os.ReadFile(persistenceFilename)
		switch {
		case errors.Is(err, os.ErrNotExist):
			log.Infof("Persistence file %s does not exist", persistenceFilename)
		case err != nil:
			return nil, err
		default:
			if err := json.Unmarshal(content, &transactions); err != nil {
				return nil, fmt.Errorf("failed to decode persistence file %s: %w", persistenceFilename, err)
			}
			log.Infof("Persistence file %s loaded, %d monitored txs", persistenceFilename, len(transactions))
		}
	}

	return &MemStorage{
		Transactions:        transactions,
		PersistenceFilename: persistenceFilename,
	}, nil
}

// persist writes the whole storage to the persistence file
func (s *MemStorage) persist() {
	if s.PersistenceFilename == "" {
		return
	}
	s.TxsMutex.RLock()
	jsonFile, err := json.Marshal(s.Transactions)
	s.TxsMutex.RUnlock()
	if err != nil {
		log.Errorf("failed to encode monitored txs: %v", err)
		return
	}

	s.FileMutex.Lock()
	defer s.FileMutex.Unlock()
	err = os.WriteFile(s.PersistenceFilename+".tmp", jsonFile, 0644) //nolint:gosec,mnd
	if err != nil {
		log.Error(err)
		return
	}
	err = os.Rename(s.PersistenceFilename+".tmp", s.PersistenceFilename)
	if err != nil {
		log.Error(err)
	}
}

// Add persist a monitored tx
func (s *MemStorage) Add(_ context.Context, mTx types.MonitoredTx) error {
	mTx.CreatedAt = time.Now()
	mTx.UpdatedAt = mTx.CreatedAt
	s.TxsMutex.Lock()
	if _, exists := s.Transactions[mTx.ID]; exists {
		s.TxsMutex.Unlock()
		return types.ErrAlreadyExists
	}
	s.Transactions[mTx.ID] = copyMonitoredTx(mTx)
	s.TxsMutex.Unlock()
	s.persist()
	return nil
}

// Remove a persisted monitored tx
func (s *MemStorage) Remove(_ context.Context, id string) error {
	s.TxsMutex.Lock()
	if _, exists := s.Transactions[id]; !exists {
		s.TxsMutex.Unlock()
		return types.ErrNotFound
	}
	delete(s.Transactions, id)
	s.TxsMutex.Unlock()
	s.persist()
	return nil
}

// Get loads a persisted monitored tx
func (s *MemStorage) Get(_ context.Context, id string) (types.MonitoredTx, error) {
	s.TxsMutex.RLock()
	defer s.TxsMutex.RUnlock()
	if mTx, exists := s.Transactions[id]; exists {
		return copyMonitoredTx(mTx), nil
	}
	return types.MonitoredTx{}, types.ErrNotFound
}

// GetByStatus loads all monitored tx that match the provided status, oldest first.
// All of them are returned when statuses is empty.
func (s *MemStorage) GetByStatus(_ context.Context, statuses []types.MonitoredTxStatus) ([]types.MonitoredTx, error) {
	mTxs := []types.MonitoredTx{}
	s.TxsMutex.RLock()
	for _, mTx := range s.Transactions {
		if matchStatus(mTx.Status, statuses) {
			mTxs = append(mTxs, copyMonitoredTx(mTx))
		}
	}
	s.TxsMutex.RUnlock()

	sortByCreation(mTxs)
	return mTxs, nil
}

// Update a persisted monitored tx
func (s *MemStorage) Update(_ context.Context, mTx types.MonitoredTx) error {
	mTx.UpdatedAt = time.Now()
	s.TxsMutex.Lock()
	if _, exists := s.Transactions[mTx.ID]; !exists {
		s.TxsMutex.Unlock()
		return types.ErrNotFound
	}
	s.Transactions[mTx.ID] = copyMonitoredTx(mTx)
	s.TxsMutex.Unlock()
	s.persist()
	return nil
}

// Empty the storage
func (s *MemStorage) Empty(_ context.Context) error {
	s.TxsMutex.Lock()
	s.Transactions = make(map[string]types.MonitoredTx)
	s.TxsMutex.Unlock()
	s.persist()
	return nil
}

func matchStatus(status types.MonitoredTxStatus, statuses []types.MonitoredTxStatus) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, s := range statuses {
		if status == s {
			return true
		}
	}
	return false
}

func sortByCreation(mTxs []types.MonitoredTx) {
	sort.SliceStable(mTxs, func(i, j int) bool {
		return mTxs[i].CreatedAt.Before(mTxs[j].CreatedAt)
	})
}

// copyMonitoredTx detaches the history from the stored record
func copyMonitoredTx(mTx types.MonitoredTx) types.MonitoredTx {
	mTx.History = mTx.HistoryHashSlice()
	return mTx
}
