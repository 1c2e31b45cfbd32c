// This program provides a command line client for the ledger service.
package main

import "github.com/ardanlabs/transactchain/app/tooling/ledger/cmd"

func main() {
	cmd.Execute()
}
