// Package main is the entry point for ledgerctl.
package main

import (
	"os"

	"github.com/SscSPs/money_ledger/cmd/ledgerctl/cmd"
)

func main() {
	os.Exit(cmd.Run())
}
