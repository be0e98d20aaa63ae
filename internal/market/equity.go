// Package market holds the client-side derivations of the two per-player
// markets: the proportional-equity pool ("stocks") and the periodic-interest
// bond book. Both are pure previews over snapshot fields; the rules engine
// commits the real transaction and the next snapshot overwrites any optimism.
package market

import (
	"errors"

	"tycoon.gg/internal/protocol"
)

var (
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrInsufficientCash  = errors.New("amount exceeds buyer cash")
	ErrInvestingDisabled = errors.New("owner does not allow investing")
	ErrBelowMinBuy       = errors.New("amount below pool minimum buy")
	ErrPoolBelowMinimum  = errors.New("pool value below investing gate")
	ErrOwnerShareFloor   = errors.New("purchase would push owner share below floor")
	ErrNoStake           = errors.New("investor holds no stake in this pool")
)

// Pool is a read-only view of one player's self-issued equity pool. The
// owner's live cash is the tradable denominator, floored at 1 so the percent
// math never divides by zero.
type Pool struct {
	Owner    string
	Value    int
	Holdings []protocol.StockHolding
	Settings protocol.StockSettings
}

func NewPool(st protocol.StockState, ownerCash int) Pool {
	return Pool{
		Owner:    st.Owner,
		Value:    PoolValue(ownerCash),
		Holdings: st.Holdings,
		Settings: st.Settings,
	}
}

func PoolValue(ownerCash int) int {
	if ownerCash < 1 {
		return 1
	}
	return ownerCash
}

func (p Pool) HoldingPercent(investor string) float64 {
	for _, h := range p.Holdings {
		if h.Investor == investor {
			return h.Percent
		}
	}
	return 0
}

// OwnerPercent is derived by conservation: owner plus all holders sum to 1.
func (p Pool) OwnerPercent() float64 {
	return 1 - p.HoldingsSum()
}

func (p Pool) HoldingsSum() float64 {
	var sum float64
	for _, h := range p.Holdings {
		sum += h.Percent
	}
	return sum
}

// StakeValue is the investor's dollar-equivalent share of the pool.
func (p Pool) StakeValue(investor string) float64 {
	return p.HoldingPercent(investor) * float64(p.Value)
}

type BuyPreview struct {
	Amount       int
	NewPercent   float64
	NewPoolValue int
}

// PreviewBuy computes the investor's post-purchase percent for a cash amount.
// The new stake is (E+A)/(P+A); every other holder dilutes by conservation,
// which the server re-normalizes on commit.
func (p Pool) PreviewBuy(investor string, amount, buyerCash int) (BuyPreview, error) {
	if amount <= 0 {
		return BuyPreview{}, ErrNonPositiveAmount
	}
	if amount > buyerCash {
		return BuyPreview{}, ErrInsufficientCash
	}
	if !p.Settings.AllowInvesting {
		return BuyPreview{}, ErrInvestingDisabled
	}
	if p.Settings.EnforceMinBuy && amount < p.Settings.MinBuy {
		return BuyPreview{}, ErrBelowMinBuy
	}
	if p.Settings.EnforceMinPoolTotal && p.Value < p.Settings.MinPoolTotal {
		return BuyPreview{}, ErrPoolBelowMinimum
	}

	pv := float64(p.Value)
	stake := p.HoldingPercent(investor) * pv
	newPercent := (stake + float64(amount)) / (pv + float64(amount))

	if p.Settings.EnforceMinPoolOwner {
		// Owner dilutes proportionally with every non-buying holder.
		scale := pv / (pv + float64(amount))
		ownerAfter := p.OwnerPercent() * scale
		if ownerAfter*100 < p.Settings.MinPoolOwner {
			return BuyPreview{}, ErrOwnerShareFloor
		}
	}

	return BuyPreview{
		Amount:       amount,
		NewPercent:   newPercent,
		NewPoolValue: p.Value + amount,
	}, nil
}

type SellPreview struct {
	Requested    float64
	Redeemed     float64
	Clamped      bool // true when the owner's liquidity cut the redemption short
	NewPercent   float64
	NewPoolValue float64
}

// PreviewSell computes a redemption for a requested cash amount. Clamp order
// is uniform: first to the stake value, then to the owner's present cash.
// ownerCash is passed separately because the pool view may come from an older
// snapshot than the owner's live balance; only the liquidity clamp is
// surfaced, asking for more than the stake is an ordinary ceiling.
func (p Pool) PreviewSell(investor string, requested float64, ownerCash int) (SellPreview, error) {
	if requested <= 0 {
		return SellPreview{}, ErrNonPositiveAmount
	}
	stake := p.StakeValue(investor)
	if stake <= 0 {
		return SellPreview{}, ErrNoStake
	}

	redeemed := requested
	if redeemed > stake {
		redeemed = stake
	}
	clamped := false
	if redeemed > float64(ownerCash) {
		redeemed = float64(ownerCash)
		if redeemed < 0 {
			redeemed = 0
		}
		clamped = true
	}

	newPool := float64(p.Value) - redeemed
	if newPool < 0 {
		newPool = 0
	}
	newPercent := 0.0
	if newPool > 0 {
		newPercent = (stake - redeemed) / newPool
	}

	return SellPreview{
		Requested:    requested,
		Redeemed:     redeemed,
		Clamped:      clamped,
		NewPercent:   newPercent,
		NewPoolValue: newPool,
	}, nil
}

// PreviewSellFraction redeems a fraction of the investor's current stake.
func (p Pool) PreviewSellFraction(investor string, fraction float64, ownerCash int) (SellPreview, error) {
	if fraction <= 0 || fraction > 1 {
		return SellPreview{}, ErrNonPositiveAmount
	}
	stake := p.StakeValue(investor)
	if stake <= 0 {
		return SellPreview{}, ErrNoStake
	}
	return p.PreviewSell(investor, stake*fraction, ownerCash)
}

// ConservationTolerance bounds the float drift allowed on the committed
// invariant ownerPercent + sum(holdings) == 1. The owner side is derived by
// conservation, so the check reduces to the holdings staying inside [0,1].
const ConservationTolerance = 1e-9

func (p Pool) Valid() bool {
	for _, h := range p.Holdings {
		if h.Percent < 0 || h.Percent > 1+ConservationTolerance {
			return false
		}
	}
	return p.HoldingsSum() <= 1+ConservationTolerance
}
