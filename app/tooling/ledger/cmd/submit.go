package cmd

import (
	"net/http"

	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	sender      string
	receiver    string
	amount      string
	description string
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a transaction to the pending pool.",
	RunE:  submitRun,
}

func init() {
	rootCmd.AddCommand(submitCmd)
	submitCmd.Flags().StringVarP(&sender, "sender", "s", "", "Identifier of the sending party.")
	submitCmd.Flags().StringVarP(&receiver, "receiver", "r", "", "Identifier of the receiving party.")
	submitCmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount to transfer.")
	submitCmd.Flags().StringVarP(&description, "description", "d", "", "Description of the transfer.")
	submitCmd.MarkFlagRequired("sender")
	submitCmd.MarkFlagRequired("receiver")
	submitCmd.MarkFlagRequired("amount")
}

func submitRun(cmd *cobra.Command, args []string) error {

	// Catch a malformed amount before going over the wire.
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return err
	}

	tx := newTx{
		Sender:      sender,
		Receiver:    receiver,
		Amount:      amt.String(),
		Description: description,
	}

	var resp submitted
	if err := call(http.MethodPost, "/v1/transactions", tx, &resp); err != nil {
		return err
	}

	pterm.Success.Printfln("%s: block[%d]", resp.Message, resp.BlockIndex)
	return nil
}
