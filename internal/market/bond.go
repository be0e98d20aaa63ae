package market

import "tycoon.gg/internal/protocol"

// Bonds trade in fixed increments of this size.
const BondIncrement = 50

// BondBook tracks one player's bond offer and the append-only history of
// periodic interest applications. It is independent of the equity pool; the
// two markets only share the owner identity.
type BondBook struct {
	Owner       string
	AllowBonds  bool
	RatePercent float64
	PeriodTurns int
	History     []protocol.BondRatePoint
}

func NewBondBook(st protocol.BondState) BondBook {
	return BondBook{
		Owner:       st.Owner,
		AllowBonds:  st.AllowBonds,
		RatePercent: st.RatePercent,
		PeriodTurns: st.PeriodTurns,
		History:     st.History,
	}
}

// SetRate validates a new offer before it is sent as bond_settings.
func (b *BondBook) SetRate(ratePercent float64, periodTurns int) error {
	if ratePercent < 0 || ratePercent > 100 {
		return ErrBondRateRange
	}
	if periodTurns < 1 {
		return ErrBondPeriodRange
	}
	b.RatePercent = ratePercent
	b.PeriodTurns = periodTurns
	return nil
}

// RecordApplication appends the current rate for the turn interest was
// applied. The series stays ordered by turn; late or duplicate turns are
// dropped rather than re-sorted.
func (b *BondBook) RecordApplication(turn int) {
	if n := len(b.History); n > 0 && b.History[n-1].Turn >= turn {
		return
	}
	b.History = append(b.History, protocol.BondRatePoint{Turn: turn, RatePercent: b.RatePercent})
}

// ValidateInvest checks a non-owner purchase of bond increments.
func (b BondBook) ValidateInvest(investor string, amount, investorCash int) error {
	if investor == b.Owner {
		return ErrOwnBonds
	}
	if !b.AllowBonds {
		return ErrBondsDisabled
	}
	if amount <= 0 {
		return ErrNonPositiveAmount
	}
	if amount%BondIncrement != 0 {
		return ErrBondIncrement
	}
	if amount > investorCash {
		return ErrInsufficientCash
	}
	return nil
}

// InterestPerPeriod is the cash paid each period on a principal.
func (b BondBook) InterestPerPeriod(principal int) float64 {
	return float64(principal) * b.RatePercent / 100
}
