// Package noncemanager keeps the next usable nonce of every sender so that
// consecutive transactions of the same address don't wait for the node to
// account for the previous ones.
package noncemanager

import (
	"context"
	"sync"

	"github.com/0xPolygon/ethtx-gateway/log"
	"github.com/ethereum/go-ethereum/common"
)

// Fetcher returns the pending nonce of the address as reported by the node
type Fetcher func(ctx context.Context, addr common.Address) (uint64, error)

// Manager is an in memory address to next nonce cache. The mutex only guards
// the map, callers must not run two lifecycles of the same sender at once.
type Manager struct {
	mu     sync.Mutex
	nonces map[common.Address]uint64
}

// New creates an empty nonce manager
func New() *Manager {
	return &Manager{nonces: make(map[common.Address]uint64)}
}

// GetPendingNonce returns the cached next nonce of addr, the fetcher is only
// called the first time the address is seen. Fetch errors aren't cached.
func (m *Manager) GetPendingNonce(ctx context.Context, addr common.Address, fetch Fetcher) (uint64, error) {
	m.mu.Lock()
	nonce, found := m.nonces[addr]
	m.mu.Unlock()
	if found {
		return nonce, nil
	}

	nonce, err := fetch(ctx, addr)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// a MarkUsed may have happened while fetching
	if cached, found := m.nonces[addr]; found && cached > nonce {
		return cached, nil
	}
	m.nonces[addr] = nonce
	log.Debugf("nonce of %s initialized to %d", addr.String(), nonce)
	return nonce, nil
}

// MarkUsed records that nonce was consumed by a broadcast transaction, the
// cached value never decreases
func (m *Manager) MarkUsed(addr common.Address, nonce uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cached, found := m.nonces[addr]; found && cached > nonce {
		return
	}
	m.nonces[addr] = nonce + 1
}

// Peek returns the cached next nonce without fetching
func (m *Manager) Peek(addr common.Address) (uint64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	nonce, found := m.nonces[addr]
	return nonce, found
}
