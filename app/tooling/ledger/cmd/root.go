// Package cmd contains the ledger command line client.
package cmd

import (
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	serviceURL string
	timeout    time.Duration
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&serviceURL, "url", "u", "http://localhost:8000", "Url of the ledger service.")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 2*time.Minute, "Time to wait for the service to respond.")
}

var rootCmd = &cobra.Command{
	Use:          "ledger",
	Short:        "Work with a TransactChain ledger service",
	SilenceUsage: true,
}

// Execute runs the requested command and exits the process on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}
