// Package ledger implements an append only, in memory blockchain. Clients
// submit transactions into a pending queue, mining batches the pending
// transactions into a new block sealed by proof of work, and the chain can
// be verified from the genesis block to the latest block.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ardanlabs/transactchain/foundation/ledger/seal"
)

// DefaultDifficulty is the number of leading zeros required when a
// difficulty is not configured.
const DefaultDifficulty = 4

// Config represents the configuration required to start the chain.
type Config struct {
	Difficulty  uint
	Hasher      string
	MaxAttempts uint64
	EvHandler   EventHandler
}

// Chain manages the blocks and the pending transactions.
type Chain struct {
	mu     sync.RWMutex
	mineMu sync.Mutex

	blocks  []Block
	pending []Tx

	difficulty  uint
	maxAttempts uint64
	hasher      seal.Hasher
	evHandler   EventHandler
	now         func() time.Time
}

// New constructs a new chain with a genesis block.
func New(cfg Config) (*Chain, error) {

	// Capture the event handler and make sure it's never nil.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if cfg.Difficulty == 0 {
		return nil, NewValidationError("difficulty", "difficulty must be greater than zero")
	}

	if cfg.Difficulty > seal.Size {
		return nil, NewValidationError("difficulty", "difficulty can't exceed %d, got %d", seal.Size, cfg.Difficulty)
	}

	hasher, err := seal.New(cfg.Hasher)
	if err != nil {
		return nil, NewValidationError("hasher", "%s", err)
	}

	c := Chain{
		difficulty:  cfg.Difficulty,
		maxAttempts: cfg.MaxAttempts,
		hasher:      hasher,
		evHandler:   ev,
		now:         time.Now,
	}

	genesis, err := NewBlock(0, nil, unixMilli(c.now()), seal.Genesis)
	if err != nil {
		return nil, err
	}
	genesis.seal = genesis.ComputeSeal(hasher)

	c.blocks = []Block{genesis}

	ev("ledger: New: genesis: seal[%s]: difficulty[%d]: hasher[%s]", genesis.seal, c.difficulty, hasher.Name())

	return &c, nil
}

// Difficulty returns the number of leading zeros required on every seal.
func (c *Chain) Difficulty() uint {
	return c.difficulty
}

// Hasher returns the hasher used to seal blocks.
func (c *Chain) Hasher() seal.Hasher {
	return c.hasher
}

// =============================================================================

// Submit validates the transaction and adds it to the pending queue. The
// index of the block the transaction will be part of if mined next is
// returned.
func (c *Chain) Submit(tx Tx) (uint64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}

	// The chain owns the timestamp of the transaction.
	if tx.TimeStamp == 0 {
		tx.TimeStamp = unixMilli(c.now())
	}

	var index uint64
	var length int

	c.mu.Lock()
	{
		c.pending = append(c.pending, tx)
		index = uint64(len(c.blocks))
		length = len(c.pending)
	}
	c.mu.Unlock()

	c.evHandler("ledger: Submit: tx[%s]: blk[%d]: pending[%d]", tx, index, length)

	return index, nil
}

// Mine takes all the pending transactions and seals them into a new block
// which is appended to the chain. The proof of work is performed on a copy
// of the pending transactions so submissions are not blocked during the
// search. Transactions submitted while mining remain pending.
func (c *Chain) Mine(ctx context.Context) (Block, error) {
	c.mineMu.Lock()
	defer c.mineMu.Unlock()

	var trans []Tx
	var latest Block

	c.mu.RLock()
	{
		trans = make([]Tx, len(c.pending))
		copy(trans, c.pending)
		latest = c.blocks[len(c.blocks)-1]
	}
	c.mu.RUnlock()

	if len(trans) == 0 {
		return Block{}, ErrNoPendingWork
	}

	nb, err := NewBlock(int(latest.index+1), trans, unixMilli(c.now()), latest.seal)
	if err != nil {
		return Block{}, err
	}

	mc := MineConfig{
		Difficulty:  c.difficulty,
		MaxAttempts: c.maxAttempts,
		Hasher:      c.hasher,
		EvHandler:   c.evHandler,
	}

	t := time.Now()
	if err := nb.Mine(ctx, mc); err != nil {
		return Block{}, fmt.Errorf("mining block %d: %w", nb.index, err)
	}
	c.evHandler("ledger: Mine: blk[%d]: mining duration[%v]", nb.index, time.Since(t))

	// The append and the removal of the consumed transactions must be
	// observed as a single transition.
	c.mu.Lock()
	{
		c.blocks = append(c.blocks, nb)

		remaining := make([]Tx, len(c.pending)-len(trans))
		copy(remaining, c.pending[len(trans):])
		c.pending = remaining
	}
	c.mu.Unlock()

	return nb, nil
}

// =============================================================================

// Export returns the external form of every block in the chain.
func (c *Chain) Export() []BlockData {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]BlockData, len(c.blocks))
	for i, b := range c.blocks {
		out[i] = b.ExternalForm()
	}

	return out
}

// Length returns the number of blocks in the chain.
func (c *Chain) Length() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.blocks)
}

// Latest returns the most recently appended block.
func (c *Chain) Latest() Block {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.blocks[len(c.blocks)-1]
}

// BlockByIndex returns the block at the specified index.
func (c *Chain) BlockByIndex(index uint64) (Block, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if index >= uint64(len(c.blocks)) {
		return Block{}, fmt.Errorf("index %d: %w", index, ErrNotFound)
	}

	return c.blocks[index], nil
}

// Pending returns a copy of the transactions waiting to be mined.
func (c *Chain) Pending() []Tx {
	c.mu.RLock()
	defer c.mu.RUnlock()

	trans := make([]Tx, len(c.pending))
	copy(trans, c.pending)

	return trans
}

// PendingCount returns the number of transactions waiting to be mined.
func (c *Chain) PendingCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.pending)
}

// HistoryFor returns every transaction where the identifier is the sender
// or the receiver, oldest block first.
func (c *Chain) HistoryFor(id string) []Tx {
	c.mu.RLock()
	defer c.mu.RUnlock()

	history := []Tx{}
	for _, b := range c.blocks {
		for _, tx := range b.trans {
			if tx.Involves(id) {
				history = append(history, tx)
			}
		}
	}

	return history
}

// =============================================================================

// Validate reports whether every block in the chain is intact.
func (c *Chain) Validate() bool {
	return c.Verify() == nil
}

// Verify walks the chain and returns an error describing the first block
// that fails a check.
func (c *Chain) Verify() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return VerifyBlocks(c.blocks, c.difficulty, c.hasher, c.evHandler)
}

// VerifyBlocks checks the genesis block and then validates every block
// against its parent.
func VerifyBlocks(blocks []Block, difficulty uint, h seal.Hasher, evHandler EventHandler) error {
	if len(blocks) == 0 {
		return errors.New("chain has no genesis block")
	}

	genesis := blocks[0]
	switch {
	case genesis.index != 0:
		return fmt.Errorf("genesis block has index %d", genesis.index)
	case genesis.previousSeal != seal.Genesis:
		return fmt.Errorf("genesis block has previous seal %s", genesis.previousSeal)
	case len(genesis.trans) != 0:
		return fmt.Errorf("genesis block has %d transactions", len(genesis.trans))
	case genesis.seal != genesis.ComputeSeal(h):
		return errors.New("genesis block seal doesn't match block fields")
	}

	for i := 1; i < len(blocks); i++ {
		if err := blocks[i].ValidateBlock(blocks[i-1], difficulty, h, evHandler); err != nil {
			return err
		}
	}

	return nil
}

// =============================================================================

// unixMilli converts the time into the unit used for ledger timestamps.
func unixMilli(t time.Time) uint64 {
	return uint64(t.UTC().UnixMilli())
}
