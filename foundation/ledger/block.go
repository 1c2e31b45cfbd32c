package ledger

import (
	"context"
	"fmt"

	"github.com/ardanlabs/transactchain/foundation/ledger/seal"
)

// EventHandler defines a function that is called when events occur in the
// processing of the ledger.
type EventHandler func(v string, args ...any)

// =============================================================================

// sealData is the canonical set of fields the seal is computed over.
type sealData struct {
	Index        uint64 `json:"index"`
	Transactions []Tx   `json:"transactions"`
	TimeStamp    uint64 `json:"timestamp"`
	PreviousSeal string `json:"previous_seal"`
	Nonce        uint64 `json:"nonce"`
}

// Block represents a group of transactions batched together and linked to
// the block before it. A Block is never changed once it has been sealed.
type Block struct {
	index        uint64
	trans        []Tx
	timeStamp    uint64
	previousSeal string
	nonce        uint64 // Identified by the proof of work search.
	seal         string
}

// NewBlock constructs an unsealed block. Every transaction is validated
// before the block is returned.
func NewBlock(index int, trans []Tx, timeStamp uint64, previousSeal string) (Block, error) {
	if index < 0 {
		return Block{}, NewValidationError("index", "block index can't be negative, got %d", index)
	}

	cp := make([]Tx, len(trans))
	for i, tx := range trans {
		if err := tx.Validate(); err != nil {
			return Block{}, fmt.Errorf("transaction %d: %w", i, err)
		}
		cp[i] = tx
	}

	b := Block{
		index:        uint64(index),
		trans:        cp,
		timeStamp:    timeStamp,
		previousSeal: previousSeal,
	}

	return b, nil
}

// Index returns the position of the block in the chain.
func (b Block) Index() uint64 {
	return b.index
}

// Transactions returns a copy of the transactions in mining order.
func (b Block) Transactions() []Tx {
	trans := make([]Tx, len(b.trans))
	copy(trans, b.trans)
	return trans
}

// TimeStamp returns the Unix milliseconds the block was created.
func (b Block) TimeStamp() uint64 {
	return b.timeStamp
}

// PreviousSeal returns the seal of the parent block.
func (b Block) PreviousSeal() string {
	return b.previousSeal
}

// Nonce returns the value that solved the proof of work.
func (b Block) Nonce() uint64 {
	return b.nonce
}

// Seal returns the stored seal for the block.
func (b Block) Seal() string {
	return b.seal
}

// ComputeSeal recomputes the seal from the stored fields of the block.
func (b Block) ComputeSeal(h seal.Hasher) string {
	trans := b.trans
	if trans == nil {
		trans = []Tx{}
	}

	sd := sealData{
		Index:        b.index,
		Transactions: trans,
		TimeStamp:    b.timeStamp,
		PreviousSeal: b.previousSeal,
		Nonce:        b.nonce,
	}

	// The encoding of these types can't fail. An empty seal will never
	// match a stored seal if it somehow does.
	s, err := h.Seal(sd)
	if err != nil {
		return ""
	}

	return s
}

// =============================================================================

// MineConfig represents the settings for a proof of work search.
type MineConfig struct {
	Difficulty  uint
	MaxAttempts uint64 // Zero means the search is unbounded.
	Hasher      seal.Hasher
	EvHandler   EventHandler
}

// Mine does the work of finding a nonce that produces a seal with the
// required number of leading zeros. Pointer semantics are being used since
// a nonce is being discovered.
func (b *Block) Mine(ctx context.Context, cfg MineConfig) error {
	ev := cfg.EvHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	if cfg.Difficulty > seal.Size {
		return NewValidationError("difficulty", "difficulty can't exceed %d, got %d", seal.Size, cfg.Difficulty)
	}

	ev("ledger: Mine: MINING: blk[%d]: started: difficulty[%d]", b.index, cfg.Difficulty)
	defer ev("ledger: Mine: MINING: blk[%d]: completed", b.index)

	for _, tx := range b.trans {
		ev("ledger: Mine: MINING: blk[%d]: tx[%s]", b.index, tx)
	}

	b.nonce = 0
	b.seal = ""

	var attempts uint64
	for {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("ledger: Mine: MINING: blk[%d]: attempts[%d]", b.index, attempts)
		}

		// Did we timeout trying to solve the problem.
		if err := ctx.Err(); err != nil {
			ev("ledger: Mine: MINING: blk[%d]: CANCELLED", b.index)
			return err
		}

		// Hash the block and check if we have solved the puzzle.
		s := b.ComputeSeal(cfg.Hasher)
		if seal.IsSolved(cfg.Difficulty, s) {
			b.seal = s

			ev("ledger: Mine: MINING: blk[%d]: SOLVED: prevBlk[%s]: newBlk[%s]", b.index, b.previousSeal, s)
			ev("ledger: Mine: MINING: blk[%d]: attempts[%d]", b.index, attempts)
			return nil
		}

		if cfg.MaxAttempts > 0 && attempts >= cfg.MaxAttempts {
			ev("ledger: Mine: MINING: blk[%d]: EXHAUSTED: attempts[%d]", b.index, attempts)
			b.nonce = 0
			return ErrMiningExhausted
		}

		b.nonce++
	}
}

// ValidateBlock takes a block and validates it against its parent block.
func (b Block) ValidateBlock(previousBlock Block, difficulty uint, h seal.Hasher, evHandler EventHandler) error {
	ev := evHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	ev("ledger: ValidateBlock: validate: blk[%d]: check: block index is the next index", b.index)

	nextIndex := previousBlock.index + 1
	if b.index != nextIndex {
		return fmt.Errorf("block %d: this block is not the next index, got %d, exp %d", b.index, b.index, nextIndex)
	}

	ev("ledger: ValidateBlock: validate: blk[%d]: check: previous seal does match parent block", b.index)

	if b.previousSeal != previousBlock.seal {
		return fmt.Errorf("block %d: previous seal doesn't match our known parent, got %s, exp %s", b.index, b.previousSeal, previousBlock.seal)
	}

	ev("ledger: ValidateBlock: validate: blk[%d]: check: stored seal does match the block fields", b.index)

	computed := b.ComputeSeal(h)
	if b.seal != computed {
		return fmt.Errorf("block %d: seal doesn't match block fields, got %s, exp %s", b.index, b.seal, computed)
	}

	ev("ledger: ValidateBlock: validate: blk[%d]: check: block seal has been solved", b.index)

	if !seal.IsSolved(difficulty, b.seal) {
		return fmt.Errorf("block %d: seal %s doesn't satisfy difficulty %d", b.index, b.seal, difficulty)
	}

	return nil
}

// =============================================================================

// BlockData is the transport neutral form of a block.
type BlockData struct {
	Index        uint64 `json:"index"`
	Transactions []Tx   `json:"transactions"`
	TimeStamp    uint64 `json:"timestamp"`
	PreviousSeal string `json:"previous_seal"`
	Nonce        uint64 `json:"nonce"`
	Seal         string `json:"seal"`
}

// ExternalForm renders all the fields of the block for external use.
func (b Block) ExternalForm() BlockData {
	return BlockData{
		Index:        b.index,
		Transactions: b.Transactions(),
		TimeStamp:    b.timeStamp,
		PreviousSeal: b.previousSeal,
		Nonce:        b.nonce,
		Seal:         b.seal,
	}
}

// ToBlock converts a BlockData back into a Block, keeping the stored nonce
// and seal so the block can be verified.
func ToBlock(bd BlockData) (Block, error) {
	if bd.Index > uint64(maxIndex) {
		return Block{}, NewValidationError("index", "block index out of range, got %d", bd.Index)
	}

	b, err := NewBlock(int(bd.Index), bd.Transactions, bd.TimeStamp, bd.PreviousSeal)
	if err != nil {
		return Block{}, err
	}

	b.nonce = bd.Nonce
	b.seal = bd.Seal

	return b, nil
}

const maxIndex = int(^uint(0) >> 1)
