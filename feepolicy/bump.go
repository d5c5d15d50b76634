package feepolicy

import (
	"errors"
	"fmt"
	"math/big"

	localCommon "github.com/0xPolygon/ethtx-gateway/common"
	"github.com/0xPolygon/ethtx-gateway/types"
)

const (
	// DefaultBumpFactor multiplies the network gas price to get the max fee of a bump
	DefaultBumpFactor = 2.0

	bumpPriorityNum  = 3
	bumpPriorityDen  = 10
	autoBumpRatio    = 1.125
	autoPriorityGwei = 1
	autoMaxFeeGwei   = 2
	hintRatio        = 1.15
	hintPriorityGwei = 2
	hintMaxFeeGwei   = 3
)

// ErrNoPendingTx is returned when the sender has no pending tx to replace
var ErrNoPendingTx = errors.New("no pending transactions detected (pending == latest), set the nonce to force a replacement")

// BumpRequest describes a replacement of a stuck tx with an empty self transfer
type BumpRequest struct {
	PendingNonce uint64
	LatestNonce  uint64
	// Nonce forces the nonce to replace
	Nonce *uint64
	// BaseGasPrice is the network gas price
	BaseGasPrice *big.Int
	// Factor multiplies BaseGasPrice to get the max fee, DefaultBumpFactor when 0
	Factor float64
	// Priority and MaxFee override the computed fees
	Priority *big.Int
	MaxFee   *big.Int
	Gas      uint64
	// Original fees and gas of the stuck tx, when known
	Original      *types.FeeQuote
	OriginalGas   uint64
	OriginalNonce *uint64
	// Auto raises the fees to the minimum a node accepts for a replacement of Original
	Auto bool
}

// BumpPlan is the replacement to sign
type BumpPlan struct {
	Nonce    uint64
	Fees     types.FeeQuote
	Gas      uint64
	Warnings []string
}

// PlanBump computes the nonce, fees and gas of a replacement tx
func (p *Policy) PlanBump(req BumpRequest) (BumpPlan, error) {
	var plan BumpPlan

	switch {
	case req.Nonce != nil:
		plan.Nonce = *req.Nonce
	case req.PendingNonce > req.LatestNonce:
		plan.Nonce = req.PendingNonce - 1
	default:
		return BumpPlan{}, ErrNoPendingTx
	}
	if req.OriginalNonce != nil && *req.OriginalNonce != plan.Nonce {
		plan.Warnings = append(plan.Warnings, fmt.Sprintf(
			"original tx nonce %d != target nonce %d, the replacement may fail", *req.OriginalNonce, plan.Nonce))
	}

	if req.BaseGasPrice == nil || req.BaseGasPrice.Sign() <= 0 {
		return BumpPlan{}, fmt.Errorf("%w: %v", ErrInvalidGasPrice, req.BaseGasPrice)
	}
	factor := req.Factor
	if factor <= 0 {
		factor = DefaultBumpFactor
	}

	suggested := p.SuggestFromBase(req.BaseGasPrice)
	priority := localCommon.MaxBigInt(suggested.Priority, new(big.Int).Div(
		new(big.Int).Mul(req.BaseGasPrice, big.NewInt(bumpPriorityNum)), big.NewInt(bumpPriorityDen)))
	if req.Priority != nil {
		priority = new(big.Int).Set(req.Priority)
	}
	maxFee := localCommon.MaxBigInt(suggested.MaxFee, mulFloat(req.BaseGasPrice, big.NewFloat(factor)))
	if req.MaxFee != nil {
		maxFee = new(big.Int).Set(req.MaxFee)
	}

	if req.Auto && req.Original != nil && req.Original.Valid() {
		minimum := minReplacement(*req.Original, autoBumpRatio, autoPriorityGwei, autoMaxFeeGwei)
		priority = localCommon.MaxBigInt(priority, minimum.Priority)
		maxFee = localCommon.MaxBigInt(maxFee, minimum.MaxFee)
	}

	if maxFee.Cmp(priority) <= 0 {
		maxFee = new(big.Int).Mul(priority, big.NewInt(2)) //nolint:mnd
	}
	plan.Fees = types.FeeQuote{Priority: priority, MaxFee: maxFee}

	plan.Gas = req.Gas
	if plan.Gas < types.MinGas {
		plan.Gas = types.MinGas
	}
	if req.OriginalGas > plan.Gas {
		plan.Gas = req.OriginalGas
	}

	return plan, nil
}

// ReplacementHint returns fees that a node rejecting a replacement of
// original is likely to accept
func ReplacementHint(original types.FeeQuote) types.FeeQuote {
	return minReplacement(original, hintRatio, hintPriorityGwei, hintMaxFeeGwei)
}

func minReplacement(original types.FeeQuote, ratio float64, priorityGwei, maxFeeGwei uint64) types.FeeQuote {
	r := big.NewFloat(ratio)
	return types.FeeQuote{
		Priority: localCommon.MaxBigInt(
			mulFloat(original.Priority, r),
			new(big.Int).Add(original.Priority, localCommon.GweiToWei(priorityGwei)),
		),
		MaxFee: localCommon.MaxBigInt(
			mulFloat(original.MaxFee, r),
			new(big.Int).Add(original.MaxFee, localCommon.GweiToWei(maxFeeGwei)),
		),
	}
}
