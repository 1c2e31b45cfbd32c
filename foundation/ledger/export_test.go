package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// TamperBlock provides write access to a block already on the chain.
func TamperBlock(c *Chain, index int, fn func(b *Block)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fn(&c.blocks[index])
}

// SetClock replaces the clock the chain uses for timestamps.
func SetClock(c *Chain, now func() time.Time) {
	c.now = now
}

func (b *Block) SetAmount(i int, amount decimal.Decimal) {
	b.trans[i].Amount = amount
}

func (b *Block) SetNonce(nonce uint64) {
	b.nonce = nonce
}

func (b *Block) SetPreviousSeal(s string) {
	b.previousSeal = s
}

func (b *Block) SetTimeStamp(ts uint64) {
	b.timeStamp = ts
}

func (b *Block) SetIndex(index uint64) {
	b.index = index
}
