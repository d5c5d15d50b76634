package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/0xPolygon/ethtx-gateway/etherman"
	"github.com/urfave/cli/v2"
)

const maxGeneratedAccounts = 50

type generatedAccount struct {
	Address    string `json:"address"`
	PrivateKey string `json:"privateKey"`
}

func addressCmd(cliCtx *cli.Context) error {
	count := cliCtx.Int(flagCount)
	if count < 1 || count > maxGeneratedAccounts {
		return fmt.Errorf("%w: count must be between 1 and %d", errInvalidArgs, maxGeneratedAccounts)
	}

	accounts := make([]generatedAccount, 0, count)
	for i := 0; i < count; i++ {
		key, addr, err := etherman.GenerateKey()
		if err != nil {
			return err
		}
		accounts = append(accounts, generatedAccount{Address: addr.Hex(), PrivateKey: key})
	}

	fmt.Fprintln(os.Stderr, "Store the private keys safely, anyone holding them controls the accounts")
	if cliCtx.Bool(flagJSON) {
		return printJSON(cliCtx, accounts)
	}

	w := tabwriter.NewWriter(cliCtx.App.Writer, 0, 0, 2, ' ', 0) //nolint:mnd
	fmt.Fprintln(w, "#\tADDRESS\tPRIVATE KEY")
	for i, a := range accounts {
		fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, a.Address, a.PrivateKey)
	}
	return w.Flush()
}
