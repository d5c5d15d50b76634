package main

import (
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/0xPolygon/ethtx-gateway/abicodec"
	"github.com/0xPolygon/ethtx-gateway/ethtxmanager"
	"github.com/0xPolygon/ethtx-gateway/types"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/urfave/cli/v2"
)

// contractCall are the positional arguments of call and send
type contractCall struct {
	address  common.Address
	abi      abi.ABI
	function string
	data     []byte
}

func parseContractCall(cliCtx *cli.Context) (contractCall, error) {
	const minArgs = 3
	if cliCtx.NArg() < minArgs {
		return contractCall{}, fmt.Errorf("%w: expected <address> <abiPath> <function> [args...]", errInvalidArgs)
	}
	args := cliCtx.Args().Slice()

	address, err := parseAddress(args[0])
	if err != nil {
		return contractCall{}, err
	}
	contractABI, err := readABI(args[1])
	if err != nil {
		return contractCall{}, err
	}

	callArgs := make([]interface{}, 0, len(args)-minArgs)
	for _, a := range args[minArgs:] {
		callArgs = append(callArgs, a)
	}
	data, err := abicodec.EncodeFunction(contractABI, args[2], callArgs...)
	if err != nil {
		return contractCall{}, err
	}

	return contractCall{address: address, abi: contractABI, function: args[2], data: data}, nil
}

// outputTypes returns the output types of the function, nil when it can't be resolved
func (c contractCall) outputTypes() []string {
	for _, m := range c.abi.Methods {
		if m.RawName != c.function && m.Sig != strings.ReplaceAll(c.function, " ", "") {
			continue
		}
		res := make([]string, 0, len(m.Outputs))
		for _, o := range m.Outputs {
			res = append(res, o.Type.String())
		}
		return res
	}
	return nil
}

func callCmd(cliCtx *cli.Context) error {
	call, err := parseContractCall(cliCtx)
	if err != nil {
		return err
	}

	var from *common.Address
	if s := cliCtx.String(flagFrom); s != "" {
		addr, err := parseAddress(s)
		if err != nil {
			return err
		}
		from = &addr
	}
	var block *big.Int
	if b := cliCtx.String(flagBlock); b != "" && b != "latest" {
		n, ok := new(big.Int).SetString(b, 0)
		if !ok {
			return fmt.Errorf("%w: block must be a number or latest, got %q", errInvalidArgs, b)
		}
		block = n
	}

	c, err := loadConfig(cliCtx)
	if err != nil {
		return err
	}
	client, err := newChainClient(cliCtx.Context, c, nil)
	if err != nil {
		return err
	}

	out, err := client.CallContract(cliCtx.Context, from, call.address, call.data, block)
	if err != nil {
		return err
	}

	res := map[string]interface{}{"raw": hexutil.Encode(out)}
	if outputs := call.outputTypes(); len(outputs) > 0 && len(out) > 0 {
		values, err := abicodec.DecodeArguments(outputs, out)
		if err != nil {
			res["error"] = err.Error()
		} else {
			decoded := make([]interface{}, 0, len(values))
			for _, v := range values {
				decoded = append(decoded, formatValue(v))
			}
			res["decoded"] = decoded
		}
	}
	return printJSON(cliCtx, res)
}

func sendCmd(cliCtx *cli.Context) error {
	call, err := parseContractCall(cliCtx)
	if err != nil {
		return err
	}
	value, err := parseWei(cliCtx.String(flagValue))
	if err != nil {
		return err
	}

	opts := &ethtxmanager.SendOptions{}
	if cliCtx.IsSet(flagTimeout) {
		timeout := cliCtx.Duration(flagTimeout)
		opts.ConfirmTimeout = &timeout
	}
	if cliCtx.IsSet(flagPoll) {
		poll := cliCtx.Duration(flagPoll)
		opts.PollInterval = &poll
	}
	if replacements := cliCtx.Int(flagReplace); replacements >= 0 {
		opts.MaxReplacements = &replacements
	}

	c, err := loadConfig(cliCtx)
	if err != nil {
		return err
	}
	manager, signers, err := newTxManager(cliCtx.Context, c, nil)
	if err != nil {
		return err
	}
	from, err := resolveSender(cliCtx.String(flagFrom), signers)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cliCtx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	manager.Start()
	defer manager.Stop()

	id, err := manager.Add(ctx, from, call.address, call.data, value, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(cliCtx.App.Writer, "Queued request id %s\n", id)

	result, err := manager.Wait(ctx, id)
	if err != nil {
		return err
	}

	hashes := make([]string, 0, len(result.Txs))
	for h := range result.Txs {
		hashes = append(hashes, h.Hex())
	}
	out := map[string]interface{}{
		"id":     result.ID,
		"status": result.Status,
		"nonce":  result.Nonce,
		"txs":    hashes,
	}
	if result.MinedAtBlockNumber != nil {
		out["block"] = result.MinedAtBlockNumber.String()
	}
	if result.Reason != "" {
		out["reason"] = result.Reason
	}
	if err := printJSON(cliCtx, out); err != nil {
		return err
	}
	if result.Status != types.MonitoredTxStatusMined {
		return cli.Exit(fmt.Sprintf("request %s failed: %s", id, result.Reason), 1)
	}
	return nil
}
