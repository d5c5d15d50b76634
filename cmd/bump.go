package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	localCommon "github.com/0xPolygon/ethtx-gateway/common"
	"github.com/0xPolygon/ethtx-gateway/etherman"
	"github.com/0xPolygon/ethtx-gateway/feepolicy"
	"github.com/0xPolygon/ethtx-gateway/log"
	"github.com/0xPolygon/ethtx-gateway/types"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/urfave/cli/v2"
)

var errChainIDMismatch = errors.New("configured chain id doesn't match the node")

func bumpCmd(cliCtx *cli.Context) error {
	if cliCtx.NArg() > 1 {
		return fmt.Errorf("%w: expected [address]", errInvalidArgs)
	}
	priority, err := parseWei(cliCtx.String(flagPriority))
	if err != nil {
		return err
	}
	maxFee, err := parseWei(cliCtx.String(flagMax))
	if err != nil {
		return err
	}
	dryRun := cliCtx.Bool(flagDryRun)

	c, err := loadConfig(cliCtx)
	if err != nil {
		return err
	}
	ctx := cliCtx.Context
	client, err := newChainClient(ctx, c, nil)
	if err != nil {
		return err
	}
	signers, err := etherman.NewSigners(c.TxManager.Signers)
	if err != nil {
		return err
	}
	from, err := resolveSender(cliCtx.Args().First(), signers)
	if err != nil {
		return err
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return err
	}
	remoteChainID, err := client.RemoteChainID(ctx)
	if err != nil {
		return err
	}
	if remoteChainID.Cmp(chainID) != 0 {
		if !dryRun {
			return fmt.Errorf("%w: %s != %s", errChainIDMismatch, chainID, remoteChainID)
		}
		log.Warnf("%v: %s != %s", errChainIDMismatch, chainID, remoteChainID)
	}

	pending, err := client.PendingNonce(ctx, from)
	if err != nil {
		return err
	}
	latest, err := client.CurrentNonce(ctx, from)
	if err != nil {
		return err
	}
	gasPrice, err := client.SuggestedGasPrice(ctx)
	if err != nil {
		return err
	}

	req := feepolicy.BumpRequest{
		PendingNonce: pending,
		LatestNonce:  latest,
		BaseGasPrice: gasPrice,
		Factor:       cliCtx.Float64(flagFactor),
		Priority:     priority,
		MaxFee:       maxFee,
		Gas:          cliCtx.Uint64(flagGas),
		Auto:         cliCtx.Bool(flagAuto),
	}
	if cliCtx.IsSet(flagNonce) {
		req.Nonce = localCommon.ToUint64Ptr(cliCtx.Uint64(flagNonce))
	}
	if s := cliCtx.String(flagOriginal); s != "" {
		hash, err := parseHash(s)
		if err != nil {
			return err
		}
		original, _, err := client.GetTx(ctx, hash)
		if err != nil {
			return fmt.Errorf("failed to get original tx %s: %w", hash, err)
		}
		req.Original = &types.FeeQuote{Priority: original.GasTipCap(), MaxFee: original.GasFeeCap()}
		req.OriginalGas = original.Gas()
		req.OriginalNonce = localCommon.ToUint64Ptr(original.Nonce())
	}

	policy, err := feepolicy.New(c.TxManager.FeePolicy)
	if err != nil {
		return err
	}
	plan, err := policy.PlanBump(req)
	if err != nil {
		return err
	}
	for _, w := range plan.Warnings {
		log.Warn(w)
	}

	tx := types.TxFields{
		ChainID:              chainID,
		Nonce:                plan.Nonce,
		MaxPriorityFeePerGas: plan.Fees.Priority,
		MaxFeePerGas:         plan.Fees.MaxFee,
		Gas:                  plan.Gas,
		To:                   from,
		From:                 from,
	}.Tx()
	signed, err := signers.SignTx(from, tx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cliCtx.App.Writer, 0, 0, 2, ' ', 0) //nolint:mnd
	fmt.Fprintf(w, "Account\t%s\n", from.Hex())
	fmt.Fprintf(w, "Pending / latest nonce\t%d / %d\n", pending, latest)
	fmt.Fprintf(w, "Target nonce\t%d\n", plan.Nonce)
	fmt.Fprintf(w, "Gas price\t%s gwei\n", localCommon.WeiToGwei(gasPrice))
	fmt.Fprintf(w, "Priority fee\t%s gwei\n", localCommon.WeiToGwei(plan.Fees.Priority))
	fmt.Fprintf(w, "Max fee\t%s gwei\n", localCommon.WeiToGwei(plan.Fees.MaxFee))
	fmt.Fprintf(w, "Gas limit\t%d\n", plan.Gas)
	fmt.Fprintf(w, "Tx hash\t%s\n", signed.Hash().Hex())
	if err := w.Flush(); err != nil {
		return err
	}

	if dryRun {
		raw, err := signed.MarshalBinary()
		if err != nil {
			return err
		}
		fmt.Fprintf(cliCtx.App.Writer, "Raw tx %s\n", hexutil.Encode(raw))
		return nil
	}

	if err := client.SendTx(ctx, signed); err != nil {
		if req.Original != nil && isReplacementRejected(err) {
			hint := feepolicy.ReplacementHint(*req.Original)
			fmt.Fprintf(cliCtx.App.Writer, "Replacement rejected, retry with --priority %s --max %s\n",
				hint.Priority, hint.MaxFee)
		}
		return err
	}
	fmt.Fprintf(cliCtx.App.Writer, "Sent replacement %s\n", signed.Hash().Hex())
	return nil
}

func isReplacementRejected(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "could not replace") || strings.Contains(msg, "underpriced")
}
