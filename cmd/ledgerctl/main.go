// Command ledgerctl is the operator CLI for the OpsEase ledger: balance
// verification and repair, development tokens and event inspection.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
