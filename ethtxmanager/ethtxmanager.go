// Package ethtxmanager delivers contract calls to the network: it estimates
// the gas, signs and broadcasts EIP-1559 transactions, tracks their receipts
// and replaces the ones that get stuck with higher fees. Requests of the same
// sender are processed one at a time so their nonces never collide.
package ethtxmanager

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"runtime/debug"
	"sync"
	"time"

	localCommon "github.com/0xPolygon/ethtx-gateway/common"
	"github.com/0xPolygon/ethtx-gateway/etherman"
	"github.com/0xPolygon/ethtx-gateway/ethtxmanager/sqlstorage"
	"github.com/0xPolygon/ethtx-gateway/feepolicy"
	"github.com/0xPolygon/ethtx-gateway/log"
	"github.com/0xPolygon/ethtx-gateway/noncemanager"
	"github.com/0xPolygon/ethtx-gateway/types"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

var (
	// ErrNotStarted is returned when a request is added before Start
	ErrNotStarted = errors.New("tx manager not started")
	// ErrStopped is returned when the manager stops while a request is being queued
	ErrStopped = errors.New("tx manager stopped")
)

// SendOptions overrides the configuration for a single request
type SendOptions struct {
	// ID of the request, a random one is generated when empty
	ID              string
	ConfirmTimeout  *time.Duration
	PollInterval    *time.Duration
	MaxReplacements *int
}

// job is an item of a sender queue, resume is set for txs that were sent
// before a restart
type job struct {
	req    types.SendRequest
	resume *types.MonitoredTx
}

// Client for eth tx manager
type Client struct {
	ctx    context.Context
	cancel context.CancelCauseFunc

	cfg        Config
	etherman   types.EthermanInterface
	signers    SignerProvider
	storage    types.StorageInterface
	controller *Controller
	sink       types.EventSink

	sem   *semaphore.Weighted
	group *errgroup.Group

	mu      sync.Mutex
	started bool
	queues  map[common.Address]chan job
	waiters map[string][]chan struct{}
}

// New creates a tx manager using the provided collaborators. Every event is
// written to storage first and then forwarded to sinks.
func New(cfg Config, etherman types.EthermanInterface, signers SignerProvider,
	storage types.StorageInterface, sinks ...types.EventSink) (*Client, error) {
	cfg = cfg.withDefaults()
	policy, err := feepolicy.New(cfg.FeePolicy)
	if err != nil {
		return nil, err
	}

	c := &Client{
		cfg:      cfg,
		etherman: etherman,
		signers:  signers,
		storage:  storage,
		sem:      semaphore.NewWeighted(cfg.MaxConcurrentSenders),
		queues:   make(map[common.Address]chan job),
		waiters:  make(map[string][]chan struct{}),
	}
	c.sink = MultiSink{NewStorageSink(storage), MultiSink(sinks), SinkFunc(c.notify)}
	c.controller = NewController(cfg, etherman, signers, policy, noncemanager.New(), c.sink)
	return c, nil
}

// NewFromConfig builds the node client, the signers and the storage described
// by cfg and creates a tx manager logging its events
func NewFromConfig(cfg Config, sinks ...types.EventSink) (*Client, error) {
	log.Init(cfg.Log)

	ethClient, err := etherman.NewClient(cfg.Etherman)
	if err != nil {
		return nil, err
	}

	signers, err := etherman.NewSigners(cfg.Signers)
	if err != nil {
		return nil, err
	}

	storage, err := NewStorage(cfg)
	if err != nil {
		return nil, err
	}

	return New(cfg, ethClient, signers, storage, append([]types.EventSink{LogSink{}}, sinks...)...)
}

// NewStorage opens the SQLite storage when StoragePath is set, the in memory one otherwise
func NewStorage(cfg Config) (types.StorageInterface, error) {
	if cfg.StoragePath != "" {
		return sqlstorage.NewStorage(localCommon.SQLLiteDriverName, cfg.StoragePath)
	}
	return NewMemStorage(cfg.PersistenceFilename)
}

// Start spawns the sender consumers and reschedules the requests that were
// left unfinished by a previous run
func (c *Client) Start() {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.ctx, c.cancel = context.WithCancelCause(context.Background())
	c.group = &errgroup.Group{}
	c.started = true
	c.mu.Unlock()

	if err := c.reschedule(c.ctx); err != nil {
		log.Errorf("failed to reschedule pending requests: %v", err)
	}
}

// Stop interrupts the running lifecycles and waits for the consumers to exit.
// Interrupted requests keep their stored status and are resumed by Start.
func (c *Client) Stop() {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	c.started = false
	c.cancel(ErrStopped)
	group := c.group
	c.queues = make(map[common.Address]chan job)
	c.mu.Unlock()

	if err := group.Wait(); err != nil {
		log.Errorf("tx manager consumers stopped with error: %v", err)
	}
}

// Add persists a request and queues it behind the other requests of the
// same sender. It returns the request id.
func (c *Client) Add(ctx context.Context, from, to common.Address, data []byte, value *big.Int, opts *SendOptions) (string, error) {
	if opts == nil {
		opts = &SendOptions{}
	}
	if _, err := c.signers.Get(from); err != nil {
		return "", err
	}

	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}

	mTx := types.MonitoredTx{
		ID:     id,
		From:   from,
		To:     &to,
		Value:  value,
		Data:   data,
		Status: types.MonitoredTxStatusQueued,
	}
	if err := c.storage.Add(ctx, mTx); err != nil {
		return "", fmt.Errorf("failed to add monitored tx %s: %w", id, err)
	}

	req := types.SendRequest{
		ID:              id,
		From:            from,
		To:              to,
		Data:            data,
		Value:           value,
		ConfirmTimeout:  opts.ConfirmTimeout,
		PollInterval:    opts.PollInterval,
		MaxReplacements: opts.MaxReplacements,
	}
	if err := c.enqueue(ctx, job{req: req}); err != nil {
		if rmErr := c.storage.Remove(context.Background(), id); rmErr != nil {
			log.Errorf("failed to remove monitored tx %s after enqueue error: %v", id, rmErr)
		}
		return "", err
	}

	CreateLogger(id, from, to).Infof("request queued")
	return id, nil
}

// Remove a monitored tx, a queued request is skipped by its consumer
func (c *Client) Remove(ctx context.Context, id string) error {
	return c.storage.Remove(ctx, id)
}

// RemoveAll removes all the monitored txs
func (c *Client) RemoveAll(ctx context.Context) error {
	return c.storage.Empty(ctx)
}

// ResultsByStatus returns all the results for all the monitored txs matching the provided statuses
// if the statuses are empty, all the statuses are considered.
func (c *Client) ResultsByStatus(ctx context.Context, statuses []types.MonitoredTxStatus) ([]types.MonitoredTxResult, error) {
	mTxs, err := c.storage.GetByStatus(ctx, statuses)
	if err != nil {
		return nil, err
	}

	results := make([]types.MonitoredTxResult, 0, len(mTxs))
	for _, mTx := range mTxs {
		result, err := c.buildResult(ctx, mTx)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	return results, nil
}

// Result returns the current result of the transaction execution with all the details
func (c *Client) Result(ctx context.Context, id string) (types.MonitoredTxResult, error) {
	mTx, err := c.storage.Get(ctx, id)
	if err != nil {
		return types.MonitoredTxResult{}, err
	}

	return c.buildResult(ctx, mTx)
}

// Wait blocks until the request is mined or failed
func (c *Client) Wait(ctx context.Context, id string) (types.MonitoredTxResult, error) {
	for {
		done := c.subscribe(id)
		mTx, err := c.storage.Get(ctx, id)
		if err != nil {
			c.unsubscribe(id, done)
			return types.MonitoredTxResult{}, err
		}
		if mTx.Status.Terminal() {
			c.unsubscribe(id, done)
			return c.buildResult(ctx, mTx)
		}

		select {
		case <-ctx.Done():
			c.unsubscribe(id, done)
			return types.MonitoredTxResult{}, ctx.Err()
		case <-done:
		}
	}
}

func (c *Client) buildResult(ctx context.Context, mTx types.MonitoredTx) (types.MonitoredTxResult, error) {
	history := mTx.HistoryHashSlice()
	txs := make(map[common.Hash]types.TxResult, len(history))

	for _, txHash := range history {
		tx, _, err := c.etherman.GetTx(ctx, txHash)
		if !errors.Is(err, ethereum.NotFound) && err != nil {
			return types.MonitoredTxResult{}, err
		}

		receipt, err := c.etherman.GetTxReceipt(ctx, txHash)
		if !errors.Is(err, ethereum.NotFound) && err != nil {
			return types.MonitoredTxResult{}, err
		}

		txs[txHash] = types.TxResult{
			Tx:      tx,
			Receipt: receipt,
		}
	}

	result := types.MonitoredTxResult{
		ID:                 mTx.ID,
		To:                 mTx.To,
		Nonce:              mTx.Nonce,
		Value:              mTx.Value,
		Data:               mTx.Data,
		MinedAtBlockNumber: mTx.BlockNumber,
		Status:             mTx.Status,
		Reason:             mTx.Reason,
		Txs:                txs,
	}

	return result, nil
}

// reschedule queues the stored requests that didn't reach a terminal status
func (c *Client) reschedule(ctx context.Context) error {
	mTxs, err := c.storage.GetByStatus(ctx, []types.MonitoredTxStatus{types.MonitoredTxStatusQueued, types.MonitoredTxStatusSent})
	if err != nil {
		return err
	}
	if len(mTxs) > 0 {
		log.Infof("%d unfinished requests found", len(mTxs))
	}

	for i := range mTxs {
		mTx := mTxs[i]
		var to common.Address
		if mTx.To != nil {
			to = *mTx.To
		}
		j := job{req: types.SendRequest{ID: mTx.ID, From: mTx.From, To: to, Data: mTx.Data, Value: mTx.Value}}
		if mTx.Status == types.MonitoredTxStatusSent {
			j.resume = &mTx
		}
		if err := c.enqueue(ctx, j); err != nil {
			return err
		}
	}
	return nil
}

// enqueue pushes the job into the queue of its sender, creating the
// queue and its consumer the first time the sender is seen
func (c *Client) enqueue(ctx context.Context, j job) error {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return ErrNotStarted
	}
	runCtx := c.ctx
	queue, found := c.queues[j.req.From]
	if !found {
		queue = make(chan job, c.cfg.QueueSize)
		c.queues[j.req.From] = queue
		from := j.req.From
		c.group.Go(func() error {
			return c.consume(runCtx, from, queue)
		})
	}
	c.mu.Unlock()

	select {
	case queue <- j:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-runCtx.Done():
		return ErrStopped
	}
}

// consume runs the jobs of a single sender one after the other
func (c *Client) consume(ctx context.Context, from common.Address, queue <-chan job) error {
	log.Debugf("consumer of %s started", from.String())
	for {
		select {
		case <-ctx.Done():
			log.Debugf("consumer of %s stopped", from.String())
			return nil
		case j := <-queue:
			if err := c.sem.Acquire(ctx, 1); err != nil {
				return nil
			}
			c.process(ctx, j)
			c.sem.Release(1)
		}
	}
}

func (c *Client) process(ctx context.Context, j job) {
	logger := CreateLogger(j.req.ID, j.req.From, j.req.To)
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("lifecycle recovered from panic: %v\n%s", r, debug.Stack())
			c.sink.Emit(types.Event{
				Kind:      types.EventFailed,
				RequestID: j.req.ID,
				From:      j.req.From,
				Reason:    "panic",
				Err:       fmt.Errorf("panic: %v", r),
				At:        time.Now(),
			})
		}
	}()

	if _, err := c.storage.Get(ctx, j.req.ID); errors.Is(err, types.ErrNotFound) {
		logger.Infof("request removed before being processed")
		return
	}

	if j.resume != nil {
		logger.Infof("resuming monitoring of tx %s", j.resume.TxHash.String())
		c.controller.Resume(ctx, j.req, *j.resume)
		return
	}
	c.controller.Run(ctx, j.req)
}

func (c *Client) subscribe(id string) chan struct{} {
	ch := make(chan struct{})
	c.mu.Lock()
	c.waiters[id] = append(c.waiters[id], ch)
	c.mu.Unlock()
	return ch
}

func (c *Client) unsubscribe(id string, ch chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	waiters := c.waiters[id]
	for i, w := range waiters {
		if w == ch {
			waiters = append(waiters[:i], waiters[i+1:]...)
			break
		}
	}
	if len(waiters) == 0 {
		delete(c.waiters, id)
	} else {
		c.waiters[id] = waiters
	}
}

// notify wakes up the Wait calls of a request that reached a terminal status
func (c *Client) notify(e types.Event) {
	if !e.Kind.Terminal() {
		return
	}
	c.mu.Lock()
	waiters := c.waiters[e.RequestID]
	delete(c.waiters, e.RequestID)
	c.mu.Unlock()
	for _, ch := range waiters {
		close(ch)
	}
}
