package cmd

import (
	"strconv"
	"time"

	"github.com/ardanlabs/transactchain/foundation/ledger"
	"github.com/pterm/pterm"
)

type blockRow struct {
	index uint64
	txs   int
	when  string
	nonce uint64
	seal  string
	prev  string
}

func newBlockRow(bd ledger.BlockData) blockRow {
	return blockRow{
		index: bd.Index,
		txs:   len(bd.Transactions),
		when:  formatMilli(bd.TimeStamp),
		nonce: bd.Nonce,
		seal:  bd.Seal,
		prev:  bd.PreviousSeal,
	}
}

func renderBlocks(rows []blockRow) {
	data := pterm.TableData{{"Index", "Txs", "Time", "Nonce", "Seal", "Previous"}}
	for _, r := range rows {
		data = append(data, []string{
			strconv.FormatUint(r.index, 10),
			strconv.Itoa(r.txs),
			r.when,
			strconv.FormatUint(r.nonce, 10),
			short(r.seal),
			short(r.prev),
		})
	}

	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func renderTxs(txs []ledger.Tx) {
	if len(txs) == 0 {
		pterm.Info.Println("no transactions")
		return
	}

	data := pterm.TableData{{"Sender", "Receiver", "Amount", "Description", "Time"}}
	for _, tx := range txs {
		data = append(data, []string{
			tx.Sender,
			tx.Receiver,
			tx.Amount.String(),
			tx.Description,
			formatMilli(tx.TimeStamp),
		})
	}

	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func formatMilli(ms uint64) string {
	return time.UnixMilli(int64(ms)).UTC().Format(time.RFC3339)
}

// short keeps seals readable in a table.
func short(s string) string {
	if len(s) <= 16 {
		return s
	}
	return s[:16] + "..."
}
