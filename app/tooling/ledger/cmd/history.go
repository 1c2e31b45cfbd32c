package cmd

import (
	"net/http"
	"net/url"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history <address>",
	Short: "Print every mined transaction involving a party.",
	Args:  cobra.ExactArgs(1),
	RunE:  historyRun,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func historyRun(cmd *cobra.Command, args []string) error {
	var resp history
	if err := call(http.MethodGet, "/v1/transactions/"+url.PathEscape(args[0]), nil, &resp); err != nil {
		return err
	}

	pterm.DefaultHeader.Printfln("%s: %d transactions", resp.Address, resp.Count)
	renderTxs(resp.Transactions)

	return nil
}
