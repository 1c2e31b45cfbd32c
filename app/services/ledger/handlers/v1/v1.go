// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"
	"time"

	"github.com/ardanlabs/transactchain/app/services/ledger/handlers/v1/ledgergrp"
	"github.com/ardanlabs/transactchain/foundation/events"
	"github.com/ardanlabs/transactchain/foundation/ledger"
	"github.com/ardanlabs/transactchain/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Signaler represents the behavior of a background miner.
type Signaler = ledgergrp.Signaler

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Build       string
	Log         *zap.SugaredLogger
	Chain       *ledger.Chain
	Miner       Signaler
	Evts        *events.Events
	MineTimeout time.Duration
}

// Routes binds all the version 1 routes.
func Routes(app *web.App, cfg Config) {
	lgh := ledgergrp.Handlers{
		Build:       cfg.Build,
		Log:         cfg.Log,
		Chain:       cfg.Chain,
		Miner:       cfg.Miner,
		Evts:        cfg.Evts,
		MineTimeout: cfg.MineTimeout,
	}

	app.Handle(http.MethodGet, "", "/", lgh.Root)

	app.Handle(http.MethodPost, version, "/transactions", lgh.SubmitTransaction)
	app.Handle(http.MethodGet, version, "/pending", lgh.Pending)
	app.Handle(http.MethodGet, version, "/transactions/:address", lgh.History)
	app.Handle(http.MethodPost, version, "/mine", lgh.Mine)
	app.Handle(http.MethodPost, version, "/mine/signal", lgh.SignalMining)
	app.Handle(http.MethodGet, version, "/chain", lgh.QueryChain)
	app.Handle(http.MethodGet, version, "/chain/:index", lgh.BlockByIndex)
	app.Handle(http.MethodGet, version, "/valid", lgh.Validate)
	app.Handle(http.MethodGet, version, "/events", lgh.Events)
}
