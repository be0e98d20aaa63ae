package market

import (
	"testing"

	"tycoon.gg/internal/protocol"
)

func TestBondSetRate_Validation(t *testing.T) {
	b := BondBook{Owner: "Alice"}
	if err := b.SetRate(-1, 4); err != ErrBondRateRange {
		t.Fatalf("negative rate: %v", err)
	}
	if err := b.SetRate(101, 4); err != ErrBondRateRange {
		t.Fatalf("rate over 100: %v", err)
	}
	if err := b.SetRate(5, 0); err != ErrBondPeriodRange {
		t.Fatalf("zero period: %v", err)
	}
	if err := b.SetRate(5, 4); err != nil {
		t.Fatalf("valid offer: %v", err)
	}
	if b.RatePercent != 5 || b.PeriodTurns != 4 {
		t.Fatalf("offer not stored: %+v", b)
	}
}

func TestBondHistory_OrderedAppendOnly(t *testing.T) {
	b := BondBook{Owner: "Alice", RatePercent: 5}
	b.RecordApplication(4)
	b.RecordApplication(8)
	b.RatePercent = 7
	b.RecordApplication(12)
	// Out-of-order and duplicate turns are dropped.
	b.RecordApplication(12)
	b.RecordApplication(6)

	want := []protocol.BondRatePoint{{Turn: 4, RatePercent: 5}, {Turn: 8, RatePercent: 5}, {Turn: 12, RatePercent: 7}}
	if len(b.History) != len(want) {
		t.Fatalf("history length %d, want %d: %+v", len(b.History), len(want), b.History)
	}
	for i := range want {
		if b.History[i] != want[i] {
			t.Fatalf("history[%d] = %+v, want %+v", i, b.History[i], want[i])
		}
	}
}

func TestBondValidateInvest(t *testing.T) {
	b := BondBook{Owner: "Alice", AllowBonds: true, RatePercent: 5, PeriodTurns: 4}
	if err := b.ValidateInvest("Alice", 100, 1000); err != ErrOwnBonds {
		t.Fatalf("own bonds: %v", err)
	}
	if err := b.ValidateInvest("Bob", 0, 1000); err != ErrNonPositiveAmount {
		t.Fatalf("zero amount: %v", err)
	}
	if err := b.ValidateInvest("Bob", 75, 1000); err != ErrBondIncrement {
		t.Fatalf("off-increment: %v", err)
	}
	if err := b.ValidateInvest("Bob", 200, 100); err != ErrInsufficientCash {
		t.Fatalf("over cash: %v", err)
	}
	if err := b.ValidateInvest("Bob", 100, 1000); err != nil {
		t.Fatalf("valid invest: %v", err)
	}

	closed := b
	closed.AllowBonds = false
	if err := closed.ValidateInvest("Bob", 100, 1000); err != ErrBondsDisabled {
		t.Fatalf("closed book: %v", err)
	}
}

func TestBondInterestPerPeriod(t *testing.T) {
	b := BondBook{RatePercent: 5}
	if got := b.InterestPerPeriod(200); got != 10 {
		t.Fatalf("interest = %v, want 10", got)
	}
}

func TestFormatPercent_DiminishingPrecision(t *testing.T) {
	cases := []struct {
		frac float64
		want string
	}{
		{0.25, "25%"},
		{0.1, "10%"},
		{0.0512, "5.12%"},
		{0.01, "1.00%"},
		{0.002, "0.200%"},
		{0.0001, "0.010%"},
		{0.00009, "<0.01%"},
		{0, "<0.01%"},
	}
	for _, c := range cases {
		if got := FormatPercent(c.frac); got != c.want {
			t.Fatalf("FormatPercent(%v) = %q, want %q", c.frac, got, c.want)
		}
	}
}
