package ethtxmanager

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/big"
	"time"

	"github.com/0xPolygon/ethtx-gateway/etherman"
	"github.com/0xPolygon/ethtx-gateway/feepolicy"
	"github.com/0xPolygon/ethtx-gateway/log"
	"github.com/0xPolygon/ethtx-gateway/noncemanager"
	"github.com/0xPolygon/ethtx-gateway/types"
	"github.com/ethereum/go-ethereum/common"
	ethTypes "github.com/ethereum/go-ethereum/core/types"
)

// Failure reasons reported in the Failed event and the result
const (
	ReasonEstimateGas = "estimate_gas_error"
	ReasonNonce       = "nonce_error"
	ReasonFee         = "fee_error"
	ReasonSigning     = "signing_error"
	ReasonSend        = "send_error"
	ReasonChainID     = "chain_id_error"
	ReasonCancelled   = "cancelled"
)

// SignerProvider returns the signer of an address
type SignerProvider interface {
	Get(addr common.Address) (types.Signer, error)
}

// Controller drives a single send request from gas estimation to a receipt,
// escalating the fees of a tx that isn't mined in time
type Controller struct {
	cfg      Config
	etherman types.EthermanInterface
	signers  SignerProvider
	fees     *feepolicy.Policy
	nonces   *noncemanager.Manager
	sink     types.EventSink
}

// NewController creates a controller, a nil sink discards the events
func NewController(cfg Config, etherman types.EthermanInterface, signers SignerProvider,
	fees *feepolicy.Policy, nonces *noncemanager.Manager, sink types.EventSink) *Controller {
	if sink == nil {
		sink = MultiSink{}
	}
	return &Controller{
		cfg:      cfg.withDefaults(),
		etherman: etherman,
		signers:  signers,
		fees:     fees,
		nonces:   nonces,
		sink:     sink,
	}
}

type runOptions struct {
	confirmTimeout  time.Duration
	pollInterval    time.Duration
	maxReplacements int
}

func (c *Controller) options(req types.SendRequest) runOptions {
	opts := runOptions{
		confirmTimeout:  c.cfg.ConfirmTimeout.Duration,
		pollInterval:    c.cfg.PollInterval.Duration,
		maxReplacements: c.cfg.MaxReplacements,
	}
	if req.ConfirmTimeout != nil && *req.ConfirmTimeout >= 0 {
		opts.confirmTimeout = *req.ConfirmTimeout
	}
	if req.PollInterval != nil && *req.PollInterval > 0 {
		opts.pollInterval = *req.PollInterval
	}
	if req.MaxReplacements != nil && *req.MaxReplacements >= 0 {
		opts.maxReplacements = *req.MaxReplacements
	}
	return opts
}

// run holds the state of a single lifecycle
type run struct {
	c      *Controller
	req    types.SendRequest
	opts   runOptions
	logger *log.Logger
	signer types.Signer
	fields types.TxFields
	result types.SendResult
}

// Run processes the request until it is mined or fails. It never returns an
// error, the outcome is reported through the events and the result.
func (c *Controller) Run(ctx context.Context, req types.SendRequest) types.SendResult {
	r := c.newRun(req)
	c.emit(types.Event{Kind: types.EventQueued, RequestID: req.ID, From: req.From})

	signer, err := c.signers.Get(req.From)
	if err != nil {
		return r.fail(ctx, ReasonSigning, err)
	}
	r.signer = signer

	if res, ok := r.build(ctx); !ok {
		return res
	}

	if err := r.broadcast(ctx); err != nil {
		if errors.Is(err, types.ErrSigning) {
			return r.fail(ctx, ReasonSigning, err)
		}
		return r.fail(ctx, ReasonSend, err)
	}
	c.nonces.MarkUsed(req.From, r.fields.Nonce)

	return r.monitor(ctx)
}

// Resume continues monitoring a request whose tx was sent by a previous
// run, the nonce and the fees of the last sent tx are kept
func (c *Controller) Resume(ctx context.Context, req types.SendRequest, mTx types.MonitoredTx) types.SendResult {
	r := c.newRun(req)

	signer, err := c.signers.Get(req.From)
	if err != nil {
		return r.fail(ctx, ReasonSigning, err)
	}
	r.signer = signer

	chainID, err := c.etherman.ChainID(ctx)
	if err != nil {
		return r.fail(ctx, ReasonChainID, fmt.Errorf("failed to get chain id: %w", err))
	}

	r.fields = mTx.Fields(chainID).Normalize()
	r.result.Status = types.MonitoredTxStatusSent
	r.result.TxHash = mTx.TxHash
	r.result.History = mTx.HistoryHashSlice()
	r.result.Replacements = mTx.Replacements
	r.result.Fields = r.fields
	if len(r.result.History) == 0 {
		r.result.History = []common.Hash{mTx.TxHash}
	}
	c.nonces.MarkUsed(req.From, r.fields.Nonce)

	return r.monitor(ctx)
}

func (c *Controller) newRun(req types.SendRequest) *run {
	return &run{
		c:      c,
		req:    req,
		opts:   c.options(req),
		logger: CreateLogger(req.ID, req.From, req.To),
		result: types.SendResult{ID: req.ID, Status: types.MonitoredTxStatusQueued},
	}
}

// monitor waits for a receipt replacing the tx every time the confirm
// timeout elapses, until the attempts are exhausted
func (r *run) monitor(ctx context.Context) types.SendResult {
	for attempt := r.result.Replacements + 1; ; attempt++ {
		receipt, err := r.confirm(ctx)
		if err != nil {
			return r.fail(ctx, ReasonCancelled, err)
		}
		if receipt != nil {
			return r.mined(receipt)
		}

		if attempt > r.opts.maxReplacements {
			return r.exhausted()
		}
		if err := r.replace(ctx, attempt); err != nil {
			return r.fail(ctx, fmt.Sprintf("%s_replacement_%d", ReasonSend, attempt), err)
		}
	}
}

// build estimates the gas, takes the nonce and the fees of the first attempt
func (r *run) build(ctx context.Context) (types.SendResult, bool) {
	c := r.c
	gas, err := r.gasLimit(ctx)
	if err != nil {
		return r.fail(ctx, ReasonEstimateGas, err), false
	}

	nonce, err := c.nonces.GetPendingNonce(ctx, r.req.From, c.etherman.PendingNonce)
	if err != nil {
		return r.fail(ctx, ReasonNonce, err), false
	}

	chainID, err := c.etherman.ChainID(ctx)
	if err != nil {
		return r.fail(ctx, ReasonChainID, fmt.Errorf("failed to get chain id: %w", err)), false
	}

	quote, err := c.fees.Suggest(ctx, c.etherman.SuggestedGasPrice)
	if err != nil {
		return r.fail(ctx, ReasonFee, err), false
	}

	r.fields = types.TxFields{
		ChainID: chainID,
		Nonce:   nonce,
		Gas:     gas,
		To:      r.req.To,
		From:    r.req.From,
		Value:   r.req.Value,
		Data:    r.req.Data,
	}.WithFees(quote).Normalize()
	r.result.Fields = r.fields
	return types.SendResult{}, true
}

func (r *run) gasLimit(ctx context.Context) (uint64, error) {
	c := r.c
	to := r.req.To
	estimated, err := c.etherman.EstimateGas(ctx, r.req.From, &to, r.req.Value, r.req.Data)
	if err != nil {
		if c.cfg.ForcedGas > 0 && ctx.Err() == nil {
			r.logger.Warnf("failed to estimate gas, using forced gas %d: %v", c.cfg.ForcedGas, err)
			return c.cfg.ForcedGas, nil
		}
		return 0, err
	}

	gas := uint64(math.Ceil(float64(estimated) * c.cfg.EstimatePadding))
	if gas < c.cfg.MinGasLimit {
		gas = c.cfg.MinGasLimit
	}
	if gas < types.MinGas {
		gas = types.MinGas
	}
	r.logger.Debugf("estimated gas %d, using %d", estimated, gas)
	return gas, nil
}

// broadcast signs and sends the current fields
func (r *run) broadcast(ctx context.Context) error {
	signed, err := etherman.SignTx(r.signer, r.fields.Tx())
	if err != nil {
		return err
	}
	if err := r.c.etherman.SendTx(ctx, signed); err != nil {
		return err
	}

	hash := signed.Hash()
	r.result.Status = types.MonitoredTxStatusSent
	r.result.TxHash = hash
	r.result.History = append(r.result.History, hash)
	r.result.Fields = r.fields
	r.logger.Infof("tx %s sent, nonce %d, %s", hash.String(), r.fields.Nonce, r.fields.Fees().String())

	fields := r.fields
	r.c.emit(types.Event{
		Kind:      types.EventBroadcast,
		RequestID: r.req.ID,
		From:      r.req.From,
		TxHash:    hash,
		Fields:    &fields,
		Attempt:   r.result.Replacements,
	})
	return nil
}

// confirm looks for a receipt of any of the sent txs until the confirm
// timeout elapses. A nil receipt and a nil error means timeout.
func (r *run) confirm(ctx context.Context) (*ethTypes.Receipt, error) {
	deadline := time.Now().Add(r.opts.confirmTimeout)
	for {
		if receipt := r.findReceipt(ctx); receipt != nil {
			return receipt, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, nil
		}
		wait := r.opts.pollInterval
		if remaining < wait {
			wait = remaining
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// findReceipt checks the current tx first and then the replaced ones, since
// any of them can be the one included
func (r *run) findReceipt(ctx context.Context) *ethTypes.Receipt {
	for i := len(r.result.History) - 1; i >= 0; i-- {
		hash := r.result.History[i]
		mined, receipt, err := r.c.etherman.CheckTxWasMined(ctx, hash)
		if err != nil {
			if ctx.Err() == nil {
				r.logger.Warnf("failed to get receipt of tx %s: %v", hash.String(), err)
			}
			continue
		}
		if mined && receipt != nil {
			return receipt
		}
	}
	return nil
}

// replace escalates the fees keeping the nonce and re-sends the tx
func (r *run) replace(ctx context.Context, attempt int) error {
	oldHash := r.result.TxHash
	next := r.fields.WithFees(r.c.fees.Replace(r.fields.Fees())).Normalize()

	r.logger.Infof("tx %s not mined after %s, replacement %d/%d: %s",
		oldHash.String(), r.opts.confirmTimeout, attempt, r.opts.maxReplacements, next.Fees().String())
	fields := next
	r.c.emit(types.Event{
		Kind:      types.EventReplaced,
		RequestID: r.req.ID,
		From:      r.req.From,
		OldTxHash: oldHash,
		Fields:    &fields,
		Attempt:   attempt,
	})

	r.fields = next
	r.result.Replacements = attempt
	if err := r.broadcast(ctx); err != nil {
		// the send usually fails because one of the previous txs got mined
		if receipt := r.findReceipt(ctx); receipt != nil {
			r.logger.Infof("replacement rejected but tx %s was mined", receipt.TxHash.String())
			r.result.Receipt = receipt
			return errMinedDuringReplacement
		}
		return err
	}
	return nil
}

var errMinedDuringReplacement = errors.New("mined during replacement")

func (r *run) mined(receipt *ethTypes.Receipt) types.SendResult {
	r.result.Status = types.MonitoredTxStatusMined
	r.result.TxHash = receipt.TxHash
	r.result.Receipt = receipt
	if receipt.Status == ethTypes.ReceiptStatusFailed {
		r.logger.Warnf("tx %s mined in block %v but reverted", receipt.TxHash.String(), receipt.BlockNumber)
	} else {
		r.logger.Infof("tx %s mined in block %v", receipt.TxHash.String(), receipt.BlockNumber)
	}
	r.c.emit(types.Event{
		Kind:      types.EventMined,
		RequestID: r.req.ID,
		From:      r.req.From,
		TxHash:    receipt.TxHash,
		Receipt:   receipt,
		Attempt:   r.result.Replacements,
	})
	return r.result
}

func (r *run) exhausted() types.SendResult {
	reason := fmt.Sprintf("no_receipt_after_%d_replacements (last maxFee=%s priority=%s)",
		r.result.Replacements, r.fields.MaxFeePerGas.String(), r.fields.MaxPriorityFeePerGas.String())
	return r.finish(reason, fmt.Errorf("%w: %s", types.ErrLifecycleExhausted, reason))
}

// fail ends the lifecycle, a cancelled context always wins over the step reason.
// A context cancelled with ErrStopped is a shutdown of the manager: nothing is
// emitted so the stored record keeps its status and is picked up by the next Start.
func (r *run) fail(ctx context.Context, reason string, err error) types.SendResult {
	if errors.Is(err, errMinedDuringReplacement) {
		return r.mined(r.result.Receipt)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(context.Cause(ctx), ErrStopped) {
			r.logger.Infof("interrupted by shutdown while %s", r.result.Status)
			r.result.Err = ErrStopped
			return r.result
		}
		reason = ReasonCancelled
		if err == nil || !errors.Is(err, ctxErr) {
			err = ctxErr
		}
	}
	return r.finish(reason, err)
}

func (r *run) finish(reason string, err error) types.SendResult {
	r.result.Status = types.MonitoredTxStatusFailed
	r.result.Reason = reason
	r.result.Err = err
	r.logger.Errorf("request failed, %s: %v", reason, err)
	r.c.emit(types.Event{
		Kind:      types.EventFailed,
		RequestID: r.req.ID,
		From:      r.req.From,
		TxHash:    r.result.TxHash,
		Attempt:   r.result.Replacements,
		Reason:    reason,
		Err:       err,
	})
	return r.result
}

func (c *Controller) emit(e types.Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	c.sink.Emit(e)
}

// CreateLogger creates a logger tagged with the request information
func CreateLogger(requestID string, from common.Address, to common.Address) *log.Logger {
	return log.WithFields(
		"requestID", requestID,
		"from", from.String(),
		"to", to.String(),
	)
}

// gasFromReceipt returns the fee paid by a mined tx, nil when the receipt lacks it
func gasFromReceipt(receipt *ethTypes.Receipt) *big.Int {
	if receipt == nil || receipt.EffectiveGasPrice == nil {
		return nil
	}
	return new(big.Int).Mul(receipt.EffectiveGasPrice, new(big.Int).SetUint64(receipt.GasUsed))
}
