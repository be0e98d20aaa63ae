package main

import (
	"context"
	"log"
	"sync"
	"time"

	"tycoon.gg/internal/auto"
	"tycoon.gg/internal/game"
	"tycoon.gg/internal/market"
	"tycoon.gg/internal/metrics"
	persistlog "tycoon.gg/internal/persistence/log"
	"tycoon.gg/internal/persistence/policystore"
	"tycoon.gg/internal/protocol"
	"tycoon.gg/internal/session"
	"tycoon.gg/internal/trade"
)

// app owns the decision loop. Snapshots arrive on a channel from the session
// read goroutine; everything downstream of that channel runs single-threaded
// so the engine and trade book need no locks.
type app struct {
	log    *log.Logger
	player string
	lobby  string

	sess   *session.Session
	engine *auto.Engine
	book   *trade.Book
	store  *policystore.Store

	snapLog *persistlog.SnapshotLogger
	actLog  *persistlog.ActionLogger

	states   chan *protocol.StateMsg
	trades   chan protocol.TradeMsg
	policies chan auto.Policy

	lastTurn  int
	lastState *protocol.StateMsg
	fetched   map[string]bool

	// Mirror of the engine's policy for the HTTP handler; the engine itself
	// is only touched by the run loop.
	polMu     sync.Mutex
	curPolicy auto.Policy
}

func (a *app) currentPolicy() auto.Policy {
	a.polMu.Lock()
	defer a.polMu.Unlock()
	return a.curPolicy
}

func (a *app) mirrorPolicy() {
	a.polMu.Lock()
	a.curPolicy = a.engine.Policy()
	a.polMu.Unlock()
}

func (a *app) onState(st *protocol.StateMsg) {
	select {
	case a.states <- st:
	default:
		// Engine is behind; drop the older state, only the newest matters.
		select {
		case <-a.states:
		default:
		}
		a.states <- st
	}
}

func (a *app) onAck(ack protocol.AckMsg, sent *protocol.Action) {
	entry := persistlog.ActionEntry{
		At:       time.Now().UTC().Format(time.RFC3339Nano),
		LobbyID:  a.lobby,
		ActionID: ack.AckFor,
		Action:   sent,
		OK:       &ack.OK,
		Code:     ack.Code,
		Reason:   ack.Message,
	}
	if err := a.actLog.WriteAction(entry); err != nil {
		a.log.Printf("action log: %v", err)
	}
	if !ack.OK {
		a.log.Printf("ack denied id=%s code=%s msg=%s reasons=%v", ack.AckFor, ack.Code, ack.Message, ack.Reasons)
		return
	}
	if sent != nil {
		if outcome := tradeOutcome(sent.Type); outcome != "" {
			metrics.ObserveTrade(outcome)
		}
	}
}

// tradeOutcome maps a resolving trade action to its metrics label. Other
// action types, offer_trade included, do not resolve a trade.
func tradeOutcome(actionType string) string {
	switch actionType {
	case protocol.ActAcceptTrade:
		return "accepted"
	case protocol.ActDeclineTrade:
		return "declined"
	case protocol.ActCancelTrade:
		return "cancelled"
	}
	return ""
}

func (a *app) onTrade(msg protocol.TradeMsg) {
	select {
	case a.trades <- msg:
	default:
	}
}

// run is the decision loop. It consumes snapshots, re-arms on the engine's
// internal deadlines, and is the only goroutine touching the engine and book.
func (a *app) run(ctx context.Context) {
	var wake *time.Timer
	var wakeC <-chan time.Time
	stopWake := func() {
		if wake != nil {
			wake.Stop()
			wake = nil
			wakeC = nil
		}
	}
	defer stopWake()

	for {
		select {
		case <-ctx.Done():
			return

		case st := <-a.states:
			a.consume(st)

		case msg := <-a.trades:
			if msg.Found && msg.Offer != nil {
				a.book.Hydrate(*msg.Offer)
			}

		case p := <-a.policies:
			a.engine.SetPolicy(p)
			a.mirrorPolicy()
			a.syncAutoMortgageFlag(p.AutoMortgage)

		case <-wakeC:
			stopWake()
			a.dispatch(a.engine.Revisit())
		}

		stopWake()
		if next := a.engine.NextWake(); !next.IsZero() {
			d := time.Until(next)
			if d < 0 {
				d = 0
			}
			wake = time.NewTimer(d)
			wakeC = wake.C
		}
	}
}

func (a *app) consume(st *protocol.StateMsg) {
	a.lastState = st
	if err := a.snapLog.WriteSnapshot(st); err != nil {
		a.log.Printf("snapshot log: %v", err)
	}

	snap := game.NewSnapshot(st)
	a.book.SyncPending(st.Trades, st.Turn)
	if st.Turn != a.lastTurn {
		a.book.AdvanceTurn(st.Turn)
		a.lastTurn = st.Turn
	}
	a.checkMarkets(st, snap)

	if me := snap.Player(a.player); me != nil {
		metrics.Cash.Set(float64(me.Cash))
	}

	a.dispatch(a.engine.OnSnapshot(snap))
	metrics.SetStuck(a.engine.Stuck())
	a.mirrorPolicy()

	// Ask the session layer for full offers we only know by id. Best
	// effort, once per id; the stub view stands in until TRADE arrives.
	for _, o := range a.book.Pending(a.player) {
		if o.Stub && !a.fetched[o.ID] {
			if _, err := a.sess.FetchTrade(o.ID); err == nil {
				a.fetched[o.ID] = true
			}
		}
	}
}

// checkMarkets validates the server's market figures against the local
// ledger math. A mismatch means either a lagging snapshot or a server bug;
// both are worth a log line.
func (a *app) checkMarkets(st *protocol.StateMsg, snap *game.Snapshot) {
	for _, stock := range st.Stocks {
		ownerCash := 0
		if owner := snap.Player(stock.Owner); owner != nil {
			ownerCash = owner.Cash
		}
		pool := market.NewPool(stock, ownerCash)
		if !pool.Valid() {
			a.log.Printf("stock pool for %s fails conservation, owner stake %s",
				stock.Owner, market.FormatPercent(pool.OwnerPercent()))
		}
	}
	for _, bond := range st.Bonds {
		book := market.NewBondBook(bond)
		if book.AllowBonds && book.RatePercent <= 0 {
			a.log.Printf("bond book for %s enabled with no rate set", bond.Owner)
		}
	}
}

func (a *app) dispatch(act *protocol.Action) {
	if act == nil {
		return
	}
	id, err := a.sess.Send(act)
	if err != nil {
		a.log.Printf("send %s: %v", act.Type, err)
		return
	}
	entry := persistlog.ActionEntry{
		At:       time.Now().UTC().Format(time.RFC3339Nano),
		LobbyID:  a.lobby,
		ActionID: id,
		Action:   act,
	}
	if err := a.actLog.WriteAction(entry); err != nil {
		a.log.Printf("action log: %v", err)
	}
}

// syncAutoMortgageFlag mirrors the local auto-mortgage toggle to the server,
// which gates its own negative-balance handling on it.
func (a *app) syncAutoMortgageFlag(enabled bool) {
	if a.lastState == nil {
		return
	}
	me := game.NewSnapshot(a.lastState).Player(a.player)
	if me == nil || me.AutoMortgage == enabled {
		return
	}
	a.dispatch(&protocol.Action{
		Type:    protocol.ActToggleAutoMortgage,
		Player:  a.player,
		Enabled: &enabled,
	})
}

func (a *app) persistPolicy(ctx context.Context, p auto.Policy) {
	if err := a.store.Save(ctx, a.lobby, a.player, p); err != nil {
		a.log.Printf("save policy: %v", err)
	}
}
