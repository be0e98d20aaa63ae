// Package trade holds the client-side negotiation state machine. Offers move
// Draft -> Pending -> {Accepted, Declined, Cancelled}; the three right-hand
// states are terminal and an accepted offer is immutable. Recurring payment
// and rental terms only materialize on acceptance.
package trade

import "tycoon.gg/internal/protocol"

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusDeclined  Status = "declined"
	StatusCancelled Status = "cancelled"
)

func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusDeclined || s == StatusCancelled
}

type Offer struct {
	ID      string
	From    string
	To      string
	Give    protocol.TradeSide
	Receive protocol.TradeSide
	Terms   *protocol.TradeTerms

	Status       Status
	CreatedTurn  int
	ResolvedTurn int

	// Stub marks an offer reconstructed from a bare log id. A later
	// hydration may fill in the real sides; until then the view is degraded
	// but never an error.
	Stub bool
}

func (o *Offer) Wire() protocol.TradeState {
	return protocol.TradeState{
		ID:      o.ID,
		From:    o.From,
		To:      o.To,
		Give:    o.Give,
		Receive: o.Receive,
		Terms:   o.Terms,
	}
}

func sideEmpty(s protocol.TradeSide) bool {
	return s.Cash <= 0 && len(s.Properties) == 0 && !s.JailCard
}

func termsEmpty(t *protocol.TradeTerms) bool {
	return t == nil || (len(t.Payments) == 0 && len(t.Rentals) == 0)
}

func validTerms(t *protocol.TradeTerms) bool {
	if t == nil {
		return true
	}
	for _, p := range t.Payments {
		if p.From == "" || p.To == "" || p.Amount <= 0 || p.Turns <= 0 {
			return false
		}
	}
	for _, r := range t.Rentals {
		if r.Direction != "give" && r.Direction != "receive" {
			return false
		}
		if r.Percentage <= 0 || r.Percentage > 100 || r.Turns <= 0 || len(r.Properties) == 0 {
			return false
		}
	}
	return true
}

// submittable requires a counterparty and at least one non-empty side; a
// populated terms block counts as a side of its own.
func (o *Offer) submittable() error {
	if o.To == "" {
		return ErrNoCounterparty
	}
	if o.From == o.To {
		return ErrSelfTrade
	}
	if !validTerms(o.Terms) {
		return ErrBadTerms
	}
	if sideEmpty(o.Give) && sideEmpty(o.Receive) && termsEmpty(o.Terms) {
		return ErrEmptyOffer
	}
	return nil
}
