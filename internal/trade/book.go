package trade

import (
	"sort"

	"github.com/google/uuid"

	"tycoon.gg/internal/protocol"
)

// Book is the local, transient view of all negotiations: open drafts, pending
// offers (inbound and outbound, independent of each other), and the
// obligations spawned by accepted offers. It resets when a new game begins.
type Book struct {
	offers      map[string]*Offer
	obligations []*RecurringObligation
	rentals     []*RentalAgreement
	lastTurn    int
}

func NewBook() *Book {
	return &Book{offers: make(map[string]*Offer)}
}

func (b *Book) Reset() {
	b.offers = make(map[string]*Offer)
	b.obligations = nil
	b.rentals = nil
	b.lastTurn = 0
}

// Draft opens a new local draft for the offering party.
func (b *Book) Draft(from, to string, turn int) *Offer {
	o := &Offer{
		ID:          uuid.NewString(),
		From:        from,
		To:          to,
		Status:      StatusDraft,
		CreatedTurn: turn,
	}
	b.offers[o.ID] = o
	return o
}

// Submit validates a draft and moves it to pending.
func (b *Book) Submit(id string) (*Offer, error) {
	o, ok := b.offers[id]
	if !ok {
		return nil, ErrNotFound
	}
	if o.Status != StatusDraft {
		return nil, ErrNotDraft
	}
	if err := o.submittable(); err != nil {
		return nil, err
	}
	o.Status = StatusPending
	return o, nil
}

// Accept resolves a pending offer. Only the addressed recipient may accept;
// the give/receive swap itself is committed by the rules engine, the client
// materializes the recurring terms.
func (b *Book) Accept(id, actor string, turn int) (*Offer, error) {
	o, ok := b.offers[id]
	if !ok {
		return nil, ErrNotFound
	}
	if o.Status != StatusPending {
		return nil, ErrNotPending
	}
	if o.To != actor {
		return nil, ErrNotRecipient
	}
	o.Status = StatusAccepted
	o.ResolvedTurn = turn
	obs, rents := materializeTerms(o)
	b.obligations = append(b.obligations, obs...)
	b.rentals = append(b.rentals, rents...)
	return o, nil
}

// Decline resolves a pending offer negatively. The sender cannot decline
// their own offer, only cancel it.
func (b *Book) Decline(id, actor string, turn int) (*Offer, error) {
	o, ok := b.offers[id]
	if !ok {
		return nil, ErrNotFound
	}
	if o.Status != StatusPending {
		return nil, ErrNotPending
	}
	if o.To != actor {
		return nil, ErrNotRecipient
	}
	o.Status = StatusDeclined
	o.ResolvedTurn = turn
	return o, nil
}

// Cancel withdraws a still-pending offer; only the original sender may.
func (b *Book) Cancel(id, actor string, turn int) (*Offer, error) {
	o, ok := b.offers[id]
	if !ok {
		return nil, ErrNotFound
	}
	if o.Status != StatusPending {
		return nil, ErrNotPending
	}
	if o.From != actor {
		return nil, ErrNotSender
	}
	o.Status = StatusCancelled
	o.ResolvedTurn = turn
	return o, nil
}

// AdvanceTurn decrements every live obligation and rental once per new turn
// and drops the ones that ran out.
func (b *Book) AdvanceTurn(turn int) {
	if turn <= b.lastTurn {
		return
	}
	b.lastTurn = turn

	live := b.obligations[:0]
	for _, o := range b.obligations {
		o.TurnsLeft--
		if o.TurnsLeft > 0 {
			live = append(live, o)
		}
	}
	b.obligations = live

	liveRent := b.rentals[:0]
	for _, r := range b.rentals {
		r.TurnsLeft--
		if r.TurnsLeft > 0 {
			liveRent = append(liveRent, r)
		}
	}
	b.rentals = liveRent
}

// SyncPending merges the server's pending-offer list into the local view.
// Unknown offers appear as pending; local offers the server no longer lists
// and that we have not resolved ourselves were resolved elsewhere and are
// dropped. Local drafts are untouched.
func (b *Book) SyncPending(states []protocol.TradeState, turn int) {
	seen := make(map[string]bool, len(states))
	for _, st := range states {
		seen[st.ID] = true
		if o, ok := b.offers[st.ID]; ok {
			if o.Stub {
				hydrate(o, st)
			}
			continue
		}
		b.offers[st.ID] = &Offer{
			ID:          st.ID,
			From:        st.From,
			To:          st.To,
			Give:        st.Give,
			Receive:     st.Receive,
			Terms:       st.Terms,
			Status:      StatusPending,
			CreatedTurn: turn,
		}
	}
	for id, o := range b.offers {
		if o.Status == StatusPending && !seen[id] {
			delete(b.offers, id)
		}
	}
}

// Get returns the offer, or a degraded stub when only the id is known (for
// example a historical log reference). The stub is registered so a later
// Hydrate call can fill it in.
func (b *Book) Get(id string) *Offer {
	if o, ok := b.offers[id]; ok {
		return o
	}
	o := &Offer{ID: id, Status: StatusPending, Stub: true}
	b.offers[id] = o
	return o
}

// Hydrate fills a stub with the full wire form fetched out of band.
func (b *Book) Hydrate(st protocol.TradeState) {
	o, ok := b.offers[st.ID]
	if !ok || !o.Stub {
		return
	}
	hydrate(o, st)
}

func hydrate(o *Offer, st protocol.TradeState) {
	o.From = st.From
	o.To = st.To
	o.Give = st.Give
	o.Receive = st.Receive
	o.Terms = st.Terms
	o.Stub = false
}

// Pending lists pending offers involving the player, inbound and outbound,
// in a stable order.
func (b *Book) Pending(player string) []*Offer {
	var out []*Offer
	for _, o := range b.offers {
		if o.Status != StatusPending {
			continue
		}
		if o.From == player || o.To == player {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (b *Book) Obligations() []*RecurringObligation { return b.obligations }
func (b *Book) Rentals() []*RentalAgreement         { return b.rentals }
