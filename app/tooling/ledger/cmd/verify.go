package cmd

import (
	"fmt"
	"net/http"

	"github.com/ardanlabs/transactchain/foundation/ledger"
	"github.com/ardanlabs/transactchain/foundation/ledger/seal"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	difficulty uint
	hasher     string
)

var validCmd = &cobra.Command{
	Use:   "valid",
	Short: "Ask the service to validate its chain.",
	RunE:  validRun,
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Download the chain and verify every block locally.",
	RunE:  verifyRun,
}

func init() {
	rootCmd.AddCommand(validCmd)
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().UintVarP(&difficulty, "difficulty", "d", ledger.DefaultDifficulty, "Difficulty the chain was mined at.")
	verifyCmd.Flags().StringVarP(&hasher, "hasher", "s", seal.SHA256, fmt.Sprintf("Hash function the chain was sealed with %v.", seal.Names()))
}

func validRun(cmd *cobra.Command, args []string) error {
	var resp validity
	if err := call(http.MethodGet, "/v1/valid", nil, &resp); err != nil {
		return err
	}

	if !resp.IsValid {
		return fmt.Errorf("chain is invalid: %s", resp.Error)
	}

	pterm.Success.Println("chain is valid")
	return nil
}

func verifyRun(cmd *cobra.Command, args []string) error {
	var resp chain
	if err := call(http.MethodGet, "/v1/chain", nil, &resp); err != nil {
		return err
	}

	if err := verifyChain(resp.Chain, difficulty, hasher); err != nil {
		return err
	}

	pterm.Success.Printfln("verified %d blocks", len(resp.Chain))
	return nil
}

// verifyChain rebuilds the blocks from their external form and checks the
// seals and linkage without trusting the service.
func verifyChain(bds []ledger.BlockData, difficulty uint, hasher string) error {
	h, err := seal.New(hasher)
	if err != nil {
		return err
	}

	blocks := make([]ledger.Block, len(bds))
	for i, bd := range bds {
		b, err := ledger.ToBlock(bd)
		if err != nil {
			return fmt.Errorf("block[%d]: %w", i, err)
		}
		blocks[i] = b
	}

	return ledger.VerifyBlocks(blocks, difficulty, h, nil)
}
