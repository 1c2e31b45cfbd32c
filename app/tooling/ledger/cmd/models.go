package cmd

import "github.com/ardanlabs/transactchain/foundation/ledger"

type newTx struct {
	Sender      string `json:"sender"`
	Receiver    string `json:"receiver"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

type message struct {
	Message string `json:"message"`
}

type submitted struct {
	Message    string `json:"message"`
	BlockIndex uint64 `json:"block_index"`
}

type mined struct {
	Message string           `json:"message"`
	Block   ledger.BlockData `json:"block"`
}

type chain struct {
	Chain  []ledger.BlockData `json:"chain"`
	Length int                `json:"length"`
}

type history struct {
	Address      string      `json:"address"`
	Transactions []ledger.Tx `json:"transactions"`
	Count        int         `json:"count"`
}

type pending struct {
	Transactions []ledger.Tx `json:"transactions"`
	Count        int         `json:"count"`
}

type validity struct {
	IsValid bool   `json:"is_valid"`
	Error   string `json:"error,omitempty"`
}
