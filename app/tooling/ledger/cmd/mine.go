package cmd

import (
	"net/http"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var background bool

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Mine the pending transactions into a new block.",
	RunE:  mineRun,
}

func init() {
	rootCmd.AddCommand(mineCmd)
	mineCmd.Flags().BoolVarP(&background, "background", "b", false, "Signal the background miner instead of waiting.")
}

func mineRun(cmd *cobra.Command, args []string) error {
	if background {
		var resp message
		if err := call(http.MethodPost, "/v1/mine/signal", nil, &resp); err != nil {
			return err
		}

		pterm.Info.Println(resp.Message)
		return nil
	}

	spinner, _ := pterm.DefaultSpinner.Start("mining pending transactions")

	var resp mined
	if err := call(http.MethodPost, "/v1/mine", nil, &resp); err != nil {
		spinner.Fail(err.Error())
		return err
	}

	spinner.Success(resp.Message)
	renderBlocks([]blockRow{newBlockRow(resp.Block)})

	return nil
}
