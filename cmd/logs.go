package main

import (
	"fmt"

	"github.com/0xPolygon/ethtx-gateway/log"
	"github.com/0xPolygon/ethtx-gateway/logfilter"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/urfave/cli/v2"
)

type printedLog struct {
	Address     string                 `json:"address"`
	BlockNumber uint64                 `json:"blockNumber"`
	TxHash      string                 `json:"transactionHash"`
	LogIndex    uint                   `json:"logIndex"`
	Topics      []string               `json:"topics"`
	Data        string                 `json:"data"`
	Event       string                 `json:"event,omitempty"`
	Args        map[string]interface{} `json:"args,omitempty"`
}

func logsCmd(cliCtx *cli.Context) error {
	if cliCtx.NArg() != 1 {
		return fmt.Errorf("%w: expected <address>", errInvalidArgs)
	}
	address, err := parseAddress(cliCtx.Args().First())
	if err != nil {
		return err
	}

	var contractABI *abi.ABI
	if path := cliCtx.String(flagABI); path != "" {
		parsed, err := readABI(path)
		if err != nil {
			return err
		}
		contractABI = &parsed
	}

	c, err := loadConfig(cliCtx)
	if err != nil {
		return err
	}
	client, err := newChainClient(cliCtx.Context, c, nil)
	if err != nil {
		return err
	}

	b := logfilter.NewBuilder(client).
		FromBlock(cliCtx.String(flagFromBlk)).
		ToBlock(cliCtx.String(flagToBlk)).
		Address(address)
	if event := cliCtx.String(flagEvent); event != "" {
		if contractABI != nil {
			b.EventByABI(*contractABI, event)
		} else {
			b.Event(event)
		}
	}
	for i, topic := range cliCtx.StringSlice(flagTopic) {
		if topic == "" {
			b.TopicWildcard(i + 1)
			continue
		}
		b.Topic(i+1, topic)
	}

	chunk := cliCtx.Uint64(flagChunk)
	if chunk == 0 {
		chunk = c.LogFilter.MaxChunk
	}
	logs, err := b.Chunked(cliCtx.Context, chunk)
	if err != nil {
		return err
	}

	res := make([]printedLog, 0, len(logs))
	for _, l := range logs {
		p := printedLog{
			Address:     l.Address.Hex(),
			BlockNumber: l.BlockNumber,
			TxHash:      l.TxHash.Hex(),
			LogIndex:    l.Index,
			Data:        formatValue(l.Data).(string),
		}
		for _, t := range l.Topics {
			p.Topics = append(p.Topics, t.Hex())
		}
		if contractABI != nil {
			event, err := logfilter.MatchEvent(*contractABI, l)
			if err != nil {
				log.Debugf("log %d of tx %s not decoded: %v", l.Index, l.TxHash, err)
			} else if args, err := logfilter.DecodeEvent(*contractABI, l); err != nil {
				log.Warnf("failed to decode log %d of tx %s: %v", l.Index, l.TxHash, err)
			} else {
				p.Event = event.Name
				p.Args = make(map[string]interface{}, len(args))
				for k, v := range args {
					p.Args[k] = formatValue(v)
				}
			}
		}
		res = append(res, p)
	}
	return printJSON(cliCtx, res)
}
