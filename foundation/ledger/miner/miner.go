// Package miner implements the background mining workflow for the ledger.
package miner

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ardanlabs/transactchain/foundation/ledger"
)

// Chain represents the behavior the worker needs from the ledger.
type Chain interface {
	Mine(ctx context.Context) (ledger.Block, error)
	PendingCount() int
}

// Config represents the settings for the mining worker.
type Config struct {
	Interval    time.Duration // Zero means only signalled mining is performed.
	MineTimeout time.Duration // Zero means a search is only stopped by shutdown.
	EvHandler   ledger.EventHandler
}

// Worker manages the mining workflow for the ledger.
type Worker struct {
	chain       Chain
	interval    time.Duration
	mineTimeout time.Duration
	evHandler   ledger.EventHandler

	wg          sync.WaitGroup
	shut        chan struct{}
	startMining chan bool
	ctx         context.Context
	cancel      context.CancelFunc
}

// Run creates a worker and starts the mining goroutine.
func Run(chain Chain, cfg Config) *Worker {
	ev := cfg.EvHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	ctx, cancel := context.WithCancel(context.Background())

	w := Worker{
		chain:       chain,
		interval:    cfg.Interval,
		mineTimeout: cfg.MineTimeout,
		evHandler:   ev,
		shut:        make(chan struct{}),
		startMining: make(chan bool, 1),
		ctx:         ctx,
		cancel:      cancel,
	}

	// We don't want to return until we know the G is up and running.
	hasStarted := make(chan bool)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		hasStarted <- true
		w.miningOperations()
	}()

	<-hasStarted

	return &w
}

// Shutdown cancels any mining in progress and terminates the goroutine.
func (w *Worker) Shutdown() {
	w.evHandler("miner: shutdown: started")
	defer w.evHandler("miner: shutdown: completed")

	w.evHandler("miner: shutdown: cancel mining")
	w.cancel()

	w.evHandler("miner: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()
}

// SignalStartMining starts a mining operation. If there is already a signal
// pending in the channel, just return since a mining operation will start.
func (w *Worker) SignalStartMining() {
	select {
	case w.startMining <- true:
	default:
	}
	w.evHandler("miner: SignalStartMining: mining signaled")
}

// =============================================================================

// miningOperations handles mining on signal and on the interval.
func (w *Worker) miningOperations() {
	w.evHandler("miner: miningOperations: G started")
	defer w.evHandler("miner: miningOperations: G completed")

	// A nil channel blocks forever which turns off interval mining.
	var tick <-chan time.Time
	if w.interval > 0 {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-w.startMining:
			if !w.isShutdown() {
				w.runMiningOperation()
			}
		case <-tick:
			if !w.isShutdown() {
				w.runMiningOperation()
			}
		case <-w.shut:
			w.evHandler("miner: miningOperations: received shut signal")
			return
		}
	}
}

// runMiningOperation takes all the pending transactions and mines a new
// block onto the chain.
func (w *Worker) runMiningOperation() {
	length := w.chain.PendingCount()
	if length == 0 {
		return
	}

	w.evHandler("miner: runMiningOperation: MINING: started: Txs[%d]", length)
	defer w.evHandler("miner: runMiningOperation: MINING: completed")

	ctx := w.ctx
	if w.mineTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.mineTimeout)
		defer cancel()
	}

	block, err := w.chain.Mine(ctx)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrNoPendingWork):
			w.evHandler("miner: runMiningOperation: MINING: WARNING: no pending transactions")
		case ctx.Err() != nil:
			w.evHandler("miner: runMiningOperation: MINING: CANCEL: still pending: %s", err)
		default:
			w.evHandler("miner: runMiningOperation: MINING: ERROR: %s", err)
		}
		return
	}

	w.evHandler("miner: runMiningOperation: MINING: blk[%d]: seal[%s]", block.Index(), block.Seal())
}

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
