package main

import (
	"context"
	"math/big"
	"time"

	"github.com/0xPolygon/ethtx-gateway/config/types"
	"github.com/0xPolygon/ethtx-gateway/etherman"
	"github.com/0xPolygon/ethtx-gateway/ethtxmanager"
	"github.com/0xPolygon/ethtx-gateway/jsonrpc"
	"github.com/0xPolygon/ethtx-gateway/log"
	localTypes "github.com/0xPolygon/ethtx-gateway/types"
	"github.com/ethereum/go-ethereum/common"
)

const txCount = 11

var (
	to1  = common.HexToAddress("0x0001")
	from = common.HexToAddress("0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266")
)

func main() {
	config := ethtxmanager.DefaultConfig()
	config.Log = log.Config{Level: "info", Environment: "development", Outputs: []string{"stderr"}}
	config.PollInterval = types.NewDuration(1 * time.Second)
	config.ConfirmTimeout = types.NewDuration(2 * time.Minute)
	config.PersistenceFilename = "ethtxmanager-persistence.json"
	config.Signers.PrivateKeys = []types.KeystoreFileConfig{{Path: "test.keystore", Password: "testonly"}}
	config.Etherman = etherman.Config{
		RPC: jsonrpc.Config{
			URLs:           []string{"http://localhost:8545"},
			RequestTimeout: types.NewDuration(10 * time.Second),
			HTTPHeaders:    map[string]string{},
		},
		ChainID: 1337,
	}

	log.Debug("Creating ethtxmanager")
	client, err := ethtxmanager.NewFromConfig(config)
	if err != nil {
		panic(err)
	}
	log.Debug("ethtxmanager created")

	ctx := context.Background()

	client.Start()
	defer client.Stop()
	log.Debug("ethtxmanager started")

	ids := make([]string, 0, txCount)
	for i := 0; i < txCount; i++ {
		if id, ok := sendTransaction(ctx, client); ok {
			ids = append(ids, id)
		}
		time.Sleep(100 * time.Millisecond)
	}

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()
	for _, id := range ids {
		result, err := client.Wait(waitCtx, id)
		if err != nil {
			log.Fatalf("Error waiting for %s: %s", id, err)
		}
		if result.Status != localTypes.MonitoredTxStatusMined {
			log.Fatalf("Tx %s ended as %s: %s", id, result.Status, result.Reason)
		}
		log.Infof("Tx %s mined with nonce %d at block %s", id, result.Nonce, result.MinedAtBlockNumber)
	}
	log.Info("All txs mined")
}

func sendTransaction(ctx context.Context, client *ethtxmanager.Client) (string, bool) {
	id, err := client.Add(ctx, from, to1, []byte{}, big.NewInt(1), nil)
	if err != nil {
		log.Errorf("Error sending transaction: %s", err)
		return "", false
	}
	log.Infof("Transaction sent with id %s", id)
	return id, true
}
