package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Bounds on the representation of an amount. They keep the canonical
// encoding of a transaction small no matter what a client submits.
const (
	MaxAmountExponent = 18
	MaxAmountDigits   = 30
)

// Tx is the transactional information between two parties. The field order
// is part of the seal's canonical encoding and must not change.
type Tx struct {
	Sender      string          `json:"sender"`      // Identifier of the party sending the amount.
	Receiver    string          `json:"receiver"`    // Identifier of the party receiving the amount.
	Amount      decimal.Decimal `json:"amount"`      // Amount transferred, always greater than zero.
	Description string          `json:"description"` // Free form text provided by the client.
	TimeStamp   uint64          `json:"timestamp"`   // Unix milliseconds the chain accepted the transaction.
}

// NewTx constructs a new transaction, rejecting malformed fields.
func NewTx(sender string, receiver string, amount decimal.Decimal, description string) (Tx, error) {
	tx := Tx{
		Sender:      strings.TrimSpace(sender),
		Receiver:    strings.TrimSpace(receiver),
		Amount:      amount,
		Description: description,
	}

	if err := tx.Validate(); err != nil {
		return Tx{}, err
	}

	return tx, nil
}

// Validate checks the fields required for a transaction to be accepted.
func (tx Tx) Validate() error {
	if strings.TrimSpace(tx.Sender) == "" {
		return NewValidationError("sender", "sender is required")
	}

	if strings.TrimSpace(tx.Receiver) == "" {
		return NewValidationError("receiver", "receiver is required")
	}

	if !tx.Amount.IsPositive() {
		return NewValidationError("amount", "amount must be greater than zero")
	}

	if exp := tx.Amount.Exponent(); exp < -MaxAmountExponent || exp > MaxAmountExponent {
		return NewValidationError("amount", "amount exponent must be between -%d and %d, got %d", MaxAmountExponent, MaxAmountExponent, exp)
	}

	if n := tx.Amount.NumDigits(); n > MaxAmountDigits {
		return NewValidationError("amount", "amount must have at most %d digits, got %d", MaxAmountDigits, n)
	}

	return nil
}

// Involves reports whether the identifier is the sender or the receiver.
func (tx Tx) Involves(id string) bool {
	return tx.Sender == id || tx.Receiver == id
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s->%s:%s", tx.Sender, tx.Receiver, tx.Amount)
}
