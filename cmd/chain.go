package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/0xPolygon/ethtx-gateway/abicodec"
	"github.com/0xPolygon/ethtx-gateway/etherman"
	"github.com/0xPolygon/ethtx-gateway/log"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/urfave/cli/v2"
)

var errInvalidArgs = errors.New("invalid arguments")

func healthCmd(cliCtx *cli.Context) error {
	c, err := loadConfig(cliCtx)
	if err != nil {
		return err
	}
	gateway, err := newGateway(c, nil)
	if err != nil {
		return err
	}
	client, err := etherman.NewClientWithRPC(cliCtx.Context, c.TxManager.Etherman, gateway)
	if err != nil {
		return err
	}

	fmt.Fprintf(cliCtx.App.Writer, "Endpoints %s\n", strings.Join(gateway.Endpoints(), ", "))
	health, err := client.Health(cliCtx.Context)
	if err != nil {
		return err
	}
	fmt.Fprintf(cliCtx.App.Writer, "Chain ID %d\n", health.ChainID)
	fmt.Fprintf(cliCtx.App.Writer, "Latest block %d\n", health.BlockNumber)
	return nil
}

func waitCmd(cliCtx *cli.Context) error {
	if cliCtx.NArg() != 1 {
		return fmt.Errorf("%w: expected <txHash>", errInvalidArgs)
	}
	txHash, err := parseHash(cliCtx.Args().First())
	if err != nil {
		return err
	}

	c, err := loadConfig(cliCtx)
	if err != nil {
		return err
	}
	client, err := newChainClient(cliCtx.Context, c, nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cliCtx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	receipt, err := client.WaitTxReceipt(ctx, txHash, cliCtx.Duration(flagTimeout), cliCtx.Duration(flagPoll))
	if errors.Is(err, etherman.ErrTimeoutReached) {
		return cli.Exit("No receipt within timeout", 1)
	} else if err != nil {
		return err
	}
	if err := printJSON(cliCtx, receipt); err != nil {
		return err
	}
	if receipt.Status == ethTypes.ReceiptStatusFailed {
		return cli.Exit(fmt.Sprintf("tx %s reverted: %s", txHash.Hex(), revertMessage(ctx, client, txHash)), 1)
	}
	return nil
}

// revertMessage replays a reverted tx to get its reason, best effort
func revertMessage(ctx context.Context, client *etherman.Client, txHash common.Hash) string {
	tx, _, err := client.GetTx(ctx, txHash)
	if err != nil {
		log.Warnf("failed to get tx %s: %v", txHash.Hex(), err)
		return "unknown reason"
	}
	reason, err := client.GetRevertMessage(ctx, tx)
	if err != nil {
		log.Warnf("failed to get the revert message of tx %s: %v", txHash.Hex(), err)
	}
	if reason == "" {
		return "unknown reason"
	}
	return reason
}

// resolveSender returns the account to sign with, the only configured one when addr is empty
func resolveSender(addr string, signers *etherman.Signers) (common.Address, error) {
	if addr != "" {
		if !common.IsHexAddress(addr) {
			return common.Address{}, fmt.Errorf("%w: invalid address %q", errInvalidArgs, addr)
		}
		return common.HexToAddress(addr), nil
	}
	accounts := signers.PublicAddress()
	switch len(accounts) {
	case 0:
		return common.Address{}, etherman.ErrPrivateKeyNotFound
	case 1:
		return accounts[0], nil
	}
	return common.Address{}, fmt.Errorf("%w: %d signers configured, choose the sender", errInvalidArgs, len(accounts))
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: invalid address %q", errInvalidArgs, s)
	}
	return common.HexToAddress(s), nil
}

func parseHash(s string) (common.Hash, error) {
	b, err := hexutil.Decode(s)
	if err != nil || len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("%w: invalid hash %q", errInvalidArgs, s)
	}
	return common.BytesToHash(b), nil
}

// parseWei parses a decimal or 0x prefixed amount, an empty string is nil
func parseWei(s string) (*big.Int, error) {
	if s == "" {
		return nil, nil
	}
	v, ok := new(big.Int).SetString(s, 0)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("%w: invalid amount %q", errInvalidArgs, s)
	}
	return v, nil
}

func readABI(path string) (abi.ABI, error) {
	doc, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return abi.ABI{}, err
	}
	return abicodec.ParseABI(string(doc))
}

// formatValue converts decoded abi values into printable ones
func formatValue(v interface{}) interface{} {
	switch t := v.(type) {
	case *big.Int:
		return t.String()
	case common.Address:
		return t.Hex()
	case common.Hash:
		return t.Hex()
	case [32]byte:
		return hexutil.Encode(t[:])
	case []byte:
		return hexutil.Encode(t)
	}
	return v
}

func jsonIndent(v interface{}) (string, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}
