package cmd

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/ardanlabs/transactchain/foundation/ledger"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Print the blocks of the chain.",
	RunE:  chainRun,
}

var blockCmd = &cobra.Command{
	Use:   "block <index>",
	Short: "Print a single block and its transactions.",
	Args:  cobra.ExactArgs(1),
	RunE:  blockRun,
}

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "Print the transactions waiting to be mined.",
	RunE:  pendingRun,
}

func init() {
	rootCmd.AddCommand(chainCmd)
	rootCmd.AddCommand(blockCmd)
	rootCmd.AddCommand(pendingCmd)
}

func chainRun(cmd *cobra.Command, args []string) error {
	var resp chain
	if err := call(http.MethodGet, "/v1/chain", nil, &resp); err != nil {
		return err
	}

	rows := make([]blockRow, len(resp.Chain))
	for i, bd := range resp.Chain {
		rows[i] = newBlockRow(bd)
	}

	pterm.DefaultHeader.Printfln("chain length %d", resp.Length)
	renderBlocks(rows)

	return nil
}

func blockRun(cmd *cobra.Command, args []string) error {
	index, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid block index %q", args[0])
	}

	var bd ledger.BlockData
	if err := call(http.MethodGet, fmt.Sprintf("/v1/chain/%d", index), nil, &bd); err != nil {
		return err
	}

	renderBlocks([]blockRow{newBlockRow(bd)})
	renderTxs(bd.Transactions)

	return nil
}

func pendingRun(cmd *cobra.Command, args []string) error {
	var resp pending
	if err := call(http.MethodGet, "/v1/pending", nil, &resp); err != nil {
		return err
	}

	pterm.DefaultHeader.Printfln("%d pending", resp.Count)
	renderTxs(resp.Transactions)

	return nil
}
