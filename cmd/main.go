package main

import (
	"os"

	ethtxgateway "github.com/0xPolygon/ethtx-gateway"
	"github.com/0xPolygon/ethtx-gateway/config"
	"github.com/0xPolygon/ethtx-gateway/ethtxmanager"
	"github.com/0xPolygon/ethtx-gateway/log"
	"github.com/urfave/cli/v2"
)

const appName = "ethtx-gateway"

const (
	flagTimeout  = "timeout"
	flagPoll     = "poll"
	flagFrom     = "from"
	flagValue    = "value"
	flagReplace  = "max-replacements"
	flagBlock    = "block"
	flagFromBlk  = "from-block"
	flagToBlk    = "to-block"
	flagEvent    = "event"
	flagTopic    = "topic"
	flagChunk    = "chunk"
	flagABI      = "abi"
	flagNonce    = "nonce"
	flagOriginal = "original"
	flagFactor   = "factor"
	flagGas      = "gas"
	flagPriority = "priority"
	flagMax      = "max"
	flagDryRun   = "dry-run"
	flagAuto     = "auto"
	flagCount    = "count"
	flagJSON     = "json"
)

var (
	configFileFlag = cli.StringFlag{
		Name:    config.FlagCfg,
		Aliases: []string{"c"},
		Usage:   "Configuration `FILE`",
	}
	networkFlag = cli.StringFlag{
		Name:    config.FlagNetwork,
		Aliases: []string{"net"},
		Usage:   "Load a network preset. Supported values: [`mainnet`, `sepolia`, `polygon`, `amoy`, `local`, `custom`]",
	}
	customNetworkFlag = cli.StringFlag{
		Name:    config.FlagCustomNetwork,
		Aliases: []string{"net-file"},
		Usage:   "Load the network configuration file if --network=custom",
	}
	timeoutFlag = cli.DurationFlag{
		Name:  flagTimeout,
		Usage: "Time to wait for a receipt",
	}
	pollFlag = cli.DurationFlag{
		Name:  flagPoll,
		Usage: "Time between two receipt lookups",
	}
)

func main() {
	app := cli.NewApp()
	app.Name = appName
	app.Usage = "Reliable contract calls and EIP-1559 transactions over a pool of JSON-RPC nodes"
	app.Version = ethtxgateway.Version
	flags := []cli.Flag{
		&configFileFlag,
		&networkFlag,
		&customNetworkFlag,
	}
	app.Commands = []*cli.Command{
		{
			Name:    "version",
			Aliases: []string{},
			Usage:   "Application version and build",
			Action:  versionCmd,
		},
		{
			Name:   "run",
			Usage:  "Run the tx manager, resuming the requests left unfinished by a previous run",
			Action: start,
			Flags:  flags,
		},
		{
			Name:   "health",
			Usage:  "Show chain id and latest block to verify the RPC health",
			Action: healthCmd,
			Flags:  flags,
		},
		{
			Name:      "call",
			Usage:     "Static eth_call on a contract function",
			ArgsUsage: "<address> <abiPath> <function> [args...]",
			Action:    callCmd,
			Flags: append([]cli.Flag{
				&cli.StringFlag{Name: flagFrom, Usage: "Caller `ADDRESS`"},
				&cli.StringFlag{Name: flagBlock, Usage: "Block number or tag", Value: "latest"},
			}, flags...),
		},
		{
			Name:      "send",
			Usage:     "Send a transaction calling a contract function and wait for its outcome",
			ArgsUsage: "<address> <abiPath> <function> [args...]",
			Action:    sendCmd,
			Flags: append([]cli.Flag{
				&cli.StringFlag{Name: flagFrom, Usage: "Sender `ADDRESS`, the first signer when empty"},
				&cli.StringFlag{Name: flagValue, Usage: "Value in wei", Value: "0"},
				&cli.IntFlag{Name: flagReplace, Usage: "Fee replacements before giving up", Value: -1},
				&timeoutFlag,
				&pollFlag,
			}, flags...),
		},
		{
			Name:      "wait",
			Usage:     "Wait for a transaction receipt",
			ArgsUsage: "<txHash>",
			Action:    waitCmd,
			Flags: append([]cli.Flag{
				&cli.DurationFlag{Name: flagTimeout, Usage: "Time to wait for the receipt", Value: ethtxmanager.DefaultConfirmTimeout},
				&cli.DurationFlag{Name: flagPoll, Usage: "Time between two receipt lookups", Value: ethtxmanager.DefaultPollInterval},
			}, flags...),
		},
		{
			Name:      "bump",
			Usage:     "Send a high-fee empty self transaction to replace a stuck pending transaction (same nonce)",
			ArgsUsage: "[address]",
			Action:    bumpCmd,
			Flags: append([]cli.Flag{
				&cli.Uint64Flag{Name: flagNonce, Usage: "Nonce to replace, the last pending one when not set"},
				&cli.StringFlag{Name: flagOriginal, Usage: "Hash of the stuck tx, used to keep its gas and by --auto"},
				&cli.Float64Flag{Name: flagFactor, Usage: "Multiplier of the gas price for the max fee", Value: 2.0}, //nolint:mnd
				&cli.Uint64Flag{Name: flagGas, Usage: "Gas limit", Value: 21000},                                    //nolint:mnd
				&cli.StringFlag{Name: flagPriority, Usage: "Priority fee in wei"},
				&cli.StringFlag{Name: flagMax, Usage: "Max fee in wei"},
				&cli.BoolFlag{Name: flagDryRun, Usage: "Print the signed tx without broadcasting it"},
				&cli.BoolFlag{Name: flagAuto, Usage: "Raise the fees to the minimum replacement of --original"},
			}, flags...),
		},
		{
			Name:      "logs",
			Usage:     "Query and decode contract logs",
			ArgsUsage: "<address>",
			Action:    logsCmd,
			Flags: append([]cli.Flag{
				&cli.StringFlag{Name: flagFromBlk, Usage: "First block, number or tag", Value: "earliest"},
				&cli.StringFlag{Name: flagToBlk, Usage: "Last block, number or tag", Value: "latest"},
				&cli.StringFlag{Name: flagEvent, Usage: "Event signature or name when --abi is set"},
				&cli.StringSliceFlag{Name: flagTopic, Usage: "Topics 1..3, empty for a wildcard"},
				&cli.StringFlag{Name: flagABI, Usage: "ABI `FILE` to decode the logs"},
				&cli.Uint64Flag{Name: flagChunk, Usage: "Block span of each request"},
			}, flags...),
		},
		{
			Name:   "address",
			Usage:  "Generate fresh accounts (private key and checksum address)",
			Action: addressCmd,
			Flags: []cli.Flag{
				&cli.IntFlag{Name: flagCount, Usage: "Number of accounts to generate", Value: 1},
				&cli.BoolFlag{Name: flagJSON, Usage: "Output a JSON array"},
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
		os.Exit(1)
	}
}
