package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/0xPolygon/ethtx-gateway/config"
	"github.com/0xPolygon/ethtx-gateway/etherman"
	"github.com/0xPolygon/ethtx-gateway/ethtxmanager"
	"github.com/0xPolygon/ethtx-gateway/jsonrpc"
	"github.com/0xPolygon/ethtx-gateway/log"
	"github.com/0xPolygon/ethtx-gateway/metrics"
	"github.com/0xPolygon/ethtx-gateway/types"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
)

const metricsEndpoint = "/metrics"

func start(cliCtx *cli.Context) error {
	c, err := loadConfig(cliCtx)
	if err != nil {
		return err
	}

	var m *metrics.Metrics
	if c.Metrics.Enabled {
		m = metrics.Register()
		go startMetricsHTTPServer(c.Metrics)
	}

	manager, _, err := newTxManager(cliCtx.Context, c, m)
	if err != nil {
		return err
	}
	manager.Start()
	log.Infof("%s started", appName)

	etherman.WaitSignal(manager.Stop)
	return nil
}

func loadConfig(cliCtx *cli.Context) (*config.Config, error) {
	c, err := config.Load(cliCtx)
	if err != nil {
		return nil, err
	}
	log.Init(c.TxManager.Log)
	return c, nil
}

// newChainClient creates the node client, m is notified of every endpoint attempt when set
func newGateway(c *config.Config, m *metrics.Metrics) (*jsonrpc.Gateway, error) {
	gateway, err := jsonrpc.NewGateway(c.TxManager.Etherman.RPC)
	if err != nil {
		return nil, err
	}
	if m != nil {
		gateway.SetObserver(m.Observe)
	}
	return gateway, nil
}

func newChainClient(ctx context.Context, c *config.Config, m *metrics.Metrics) (*etherman.Client, error) {
	gateway, err := newGateway(c, m)
	if err != nil {
		return nil, err
	}
	return etherman.NewClientWithRPC(ctx, c.TxManager.Etherman, gateway)
}

func newTxManager(ctx context.Context, c *config.Config, m *metrics.Metrics) (*ethtxmanager.Client, *etherman.Signers, error) {
	client, err := newChainClient(ctx, c, m)
	if err != nil {
		return nil, nil, err
	}
	signers, err := etherman.NewSigners(c.TxManager.Signers)
	if err != nil {
		return nil, nil, err
	}
	storage, err := ethtxmanager.NewStorage(c.TxManager)
	if err != nil {
		return nil, nil, err
	}

	sinks := []types.EventSink{ethtxmanager.LogSink{}}
	if m != nil {
		sinks = append(sinks, m)
	}
	manager, err := ethtxmanager.New(c.TxManager, client, signers, storage, sinks...)
	if err != nil {
		return nil, nil, err
	}
	return manager, signers, nil
}

func startMetricsHTTPServer(c config.MetricsConfig) {
	const ten = 10
	mux := http.NewServeMux()
	lis, err := net.Listen("tcp", c.Addr())
	if err != nil {
		log.Errorf("failed to create tcp listener for metrics: %v", err)
		return
	}
	mux.Handle(metricsEndpoint, promhttp.Handler())

	metricsServer := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: ten * time.Second,
	}
	log.Infof("metrics server listening on %s", c.Addr())
	if err := metricsServer.Serve(lis); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Warnf("http server for metrics stopped")
			return
		}
		log.Errorf("closed http connection for metrics server: %v", err)
	}
}

// printJSON writes v indented to the standard output
func printJSON(cliCtx *cli.Context, v interface{}) error {
	out, err := jsonIndent(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cliCtx.App.Writer, out)
	return err
}
