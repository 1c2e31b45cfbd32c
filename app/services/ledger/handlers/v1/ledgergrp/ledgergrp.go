// Package ledgergrp maintains the group of handlers for ledger access.
package ledgergrp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ardanlabs/transactchain/business/sys/validate"
	"github.com/ardanlabs/transactchain/business/web/errs"
	"github.com/ardanlabs/transactchain/foundation/events"
	"github.com/ardanlabs/transactchain/foundation/ledger"
	"github.com/ardanlabs/transactchain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Signaler represents the behavior of a background miner.
type Signaler interface {
	SignalStartMining()
}

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Build       string
	Log         *zap.SugaredLogger
	Chain       *ledger.Chain
	Miner       Signaler
	Evts        *events.Events
	WS          websocket.Upgrader
	MineTimeout time.Duration
}

// Root returns information about the service.
func (h Handlers) Root(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := info{
		Service: "TransactChain",
		Version: h.Build,
		Status:  "online",
		Blocks:  h.Chain.Length(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SubmitTransaction adds a new transaction to the pending queue.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var ntx newTx
	if err := web.Decode(r, &ntx); err != nil {
		if validate.IsFieldErrors(err) {
			return err
		}
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	tx, err := ledger.NewTx(ntx.Sender, ntx.Receiver, ntx.Amount, ntx.Description)
	if err != nil {
		return toFieldsError(err)
	}

	h.Log.Infow("submit tran", "traceid", web.GetTraceID(ctx), "tx", tx)

	index, err := h.Chain.Submit(tx)
	if err != nil {
		return toFieldsError(err)
	}

	resp := submitted{
		Message:    "Transaction added successfully",
		BlockIndex: index,
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// Pending returns the set of transactions waiting to be mined.
func (h Handlers) Pending(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	trans := h.Chain.Pending()

	resp := pending{
		Transactions: trans,
		Count:        len(trans),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// History returns the transactions where the address is the sender or
// the receiver.
func (h Handlers) History(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	address := web.Param(r, "address")
	trans := h.Chain.HistoryFor(address)

	resp := history{
		Address:      address,
		Transactions: trans,
		Count:        len(trans),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mine batches the pending transactions into a new block.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if h.MineTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.MineTimeout)
		defer cancel()
	}

	block, err := h.Chain.Mine(ctx)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrNoPendingWork):
			return errs.NewTrusted(err, http.StatusBadRequest)
		case errors.Is(err, ledger.ErrMiningExhausted):
			return errs.NewTrusted(err, http.StatusServiceUnavailable)
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			return errs.NewTrusted(fmt.Errorf("mining still pending: %w", err), http.StatusServiceUnavailable)
		}
		return fmt.Errorf("mine: %w", err)
	}

	h.Log.Infow("mine", "traceid", web.GetTraceID(ctx), "index", block.Index(), "seal", block.Seal(), "nonce", block.Nonce())

	resp := mined{
		Message: "New block mined successfully",
		Block:   block.ExternalForm(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SignalMining asks the background miner to mine the pending transactions.
func (h Handlers) SignalMining(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if h.Miner == nil {
		return errs.NewTrusted(errors.New("background mining is not enabled"), http.StatusServiceUnavailable)
	}

	h.Miner.SignalStartMining()

	resp := struct {
		Message string `json:"message"`
	}{
		Message: "Mining signalled",
	}

	return web.Respond(ctx, w, resp, http.StatusAccepted)
}

// QueryChain returns every block in the chain.
func (h Handlers) QueryChain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blocks := h.Chain.Export()

	resp := chain{
		Chain:  blocks,
		Length: len(blocks),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// BlockByIndex returns the block at the specified index.
func (h Handlers) BlockByIndex(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	index, err := strconv.ParseUint(web.Param(r, "index"), 10, 64)
	if err != nil {
		return validate.NewFieldsError("index", err)
	}

	block, err := h.Chain.BlockByIndex(index)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return errs.NewTrusted(err, http.StatusNotFound)
		}
		return fmt.Errorf("block by index: %w", err)
	}

	return web.Respond(ctx, w, block.ExternalForm(), http.StatusOK)
}

// Validate walks the chain and reports if it's intact.
func (h Handlers) Validate(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var resp validity

	switch err := h.Chain.Verify(); err {
	case nil:
		resp.IsValid = true
	default:
		h.Log.Infow("validate", "traceid", web.GetTraceID(ctx), "ERROR", err)
		resp.Error = err.Error()
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	if h.Evts == nil {
		return errs.NewTrusted(errors.New("event streaming is not enabled"), http.StatusServiceUnavailable)
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}

		case <-ctx.Done():
			return nil
		}
	}
}

// =============================================================================

// toFieldsError converts ledger validation failures into field errors so
// they are reported to the client with the failing field.
func toFieldsError(err error) error {
	if ve := ledger.GetValidationError(err); ve != nil {
		return validate.NewFieldsError(ve.Field, ve.Err)
	}
	return err
}
