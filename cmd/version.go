package main

import (
	"os"

	ethtxgateway "github.com/0xPolygon/ethtx-gateway"
	"github.com/urfave/cli/v2"
)

func versionCmd(*cli.Context) error {
	ethtxgateway.PrintVersion(os.Stdout)
	return nil
}
