package ledgergrp

import (
	"github.com/ardanlabs/transactchain/business/sys/validate"
	"github.com/ardanlabs/transactchain/foundation/ledger"
	"github.com/shopspring/decimal"
)

// newTx is what clients provide to submit a transaction. The timestamp is
// always assigned by the chain.
type newTx struct {
	Sender      string          `json:"sender" validate:"required"`
	Receiver    string          `json:"receiver" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	Description string          `json:"description" validate:"max=1024"`
}

// Validate checks the data in the model is considered clean.
func (ntx newTx) Validate() error {
	return validate.Check(ntx)
}

type info struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Status  string `json:"status"`
	Blocks  int    `json:"blocks"`
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
