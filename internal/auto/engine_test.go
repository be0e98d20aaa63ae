package auto

import (
	"testing"
	"time"

	"tycoon.gg/internal/game"
	"tycoon.gg/internal/protocol"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

// boardState builds a snapshot where Alice owns the complete brown group and
// it is her turn. Callers mutate the returned message before wrapping it.
func boardState() *protocol.StateMsg {
	return &protocol.StateMsg{
		Type:          protocol.TypeState,
		Version:       10,
		Turn:          4,
		CurrentPlayer: "Alice",
		HasRolled:     true,
		Players: []protocol.PlayerState{
			{Name: "Alice", Cash: 900, Position: 1},
			{Name: "Bob", Cash: 700, Position: 12},
		},
		Board: []protocol.TileState{
			{Position: 1, Name: "Mediterranean Avenue", Kind: "property", Group: "brown", Price: 60, HouseCost: 50, Buyable: true},
			{Position: 3, Name: "Baltic Avenue", Kind: "property", Group: "brown", Price: 60, HouseCost: 50, Buyable: true},
			{Position: 5, Name: "Reading Railroad", Kind: "railroad", Price: 200, Buyable: true},
			{Position: 6, Name: "Oriental Avenue", Kind: "property", Group: "lightblue", Price: 100, HouseCost: 50, Buyable: true},
			{Position: 8, Name: "Vermont Avenue", Kind: "property", Group: "lightblue", Price: 100, HouseCost: 50, Buyable: true},
			{Position: 9, Name: "Connecticut Avenue", Kind: "property", Group: "lightblue", Price: 120, HouseCost: 50, Buyable: true},
		},
		Ownership: []protocol.PropertyState{
			{Position: 1, Owner: "Alice"},
			{Position: 3, Owner: "Alice"},
		},
	}
}

func snap(msg *protocol.StateMsg) *game.Snapshot { return game.NewSnapshot(msg) }

func newEngine(clock Clock, p Policy) *Engine {
	return New(Config{Player: "Alice", Policy: p, Clock: clock})
}

func TestBuild_SpreadPicksEmptiestTile(t *testing.T) {
	msg := boardState()
	msg.Ownership[0].Houses = 2 // Mediterranean
	msg.Ownership[1].Houses = 1 // Baltic

	e := newEngine(newFakeClock(), Policy{AutoBuildHouses: true, AutoSpreadHouses: true, CostRule: CostAny})
	a := e.OnSnapshot(snap(msg))
	if a == nil || a.Type != protocol.ActBuyHouse || a.Position != 3 {
		t.Fatalf("spread should build on the emptiest tile, got %+v", a)
	}
}

func TestBuild_SpreadUpgradesHotelWhenLevel(t *testing.T) {
	msg := boardState()
	msg.Ownership[0].Houses = 4
	msg.Ownership[1].Houses = 4

	e := newEngine(newFakeClock(), Policy{AutoBuildHouses: true, AutoSpreadHouses: true, CostRule: CostAny})
	a := e.OnSnapshot(snap(msg))
	if a == nil || a.Type != protocol.ActBuyHotel || a.Position != 1 {
		t.Fatalf("level group at four houses should upgrade to hotel, got %+v", a)
	}
}

func TestBuild_ConcentrateFinishesHotelFirst(t *testing.T) {
	msg := boardState()
	msg.Ownership[0].Houses = 2
	msg.Ownership[1].Houses = 4

	e := newEngine(newFakeClock(), Policy{AutoBuildHouses: true, CostRule: CostAny})
	a := e.OnSnapshot(snap(msg))
	if a == nil || a.Type != protocol.ActBuyHotel || a.Position != 3 {
		t.Fatalf("concentrating should finish the four-house tile, got %+v", a)
	}
}

func TestBuild_RespectsMinCashKeep(t *testing.T) {
	msg := boardState()
	msg.Players[0].Cash = 120

	e := newEngine(newFakeClock(), Policy{AutoBuildHouses: true, AutoSpreadHouses: true, CostRule: CostAny, MinCashKeep: 100})
	if a := e.OnSnapshot(snap(msg)); a != nil {
		t.Fatalf("120 cash minus 50 house breaks the 100 floor, got %+v", a)
	}
}

func TestBuild_CostRuleFilters(t *testing.T) {
	msg := boardState()
	e := newEngine(newFakeClock(), Policy{AutoBuildHouses: true, AutoSpreadHouses: true, CostRule: CostAbove, CostThreshold: 80})
	if a := e.OnSnapshot(snap(msg)); a != nil {
		t.Fatalf("house cost 50 is not above 80, got %+v", a)
	}
}

func TestUnmortgageBeforeBuild(t *testing.T) {
	msg := boardState()
	msg.Ownership[1].Mortgaged = true

	e := newEngine(newFakeClock(), Policy{AutoBuildHouses: true, AutoSpreadHouses: true, CostRule: CostAny})
	a := e.OnSnapshot(snap(msg))
	if a == nil || a.Type != protocol.ActUnmortgage || a.Position != 3 {
		t.Fatalf("mortgaged tile blocks building and comes first, got %+v", a)
	}
}

func TestBuy_LandedUnownedTile(t *testing.T) {
	msg := boardState()
	msg.Players[0].Position = 5 // unowned railroad

	e := newEngine(newFakeClock(), Policy{AutoBuy: true, CostRule: CostAny})
	a := e.OnSnapshot(snap(msg))
	if a == nil || a.Type != protocol.ActBuyProperty || a.Position != 5 {
		t.Fatalf("should buy the landed railroad, got %+v", a)
	}
}

func TestBuy_RequiresRoll(t *testing.T) {
	msg := boardState()
	msg.Players[0].Position = 5
	msg.HasRolled = false

	e := newEngine(newFakeClock(), Policy{AutoBuy: true, CostRule: CostAny})
	if a := e.OnSnapshot(snap(msg)); a != nil {
		t.Fatalf("no purchase before rolling, got %+v", a)
	}
}

func TestRoll_DebouncedThroughRevisit(t *testing.T) {
	msg := boardState()
	msg.HasRolled = false
	msg.RollsLeft = 1

	clock := newFakeClock()
	e := New(Config{
		Player:    "Alice",
		Policy:    Policy{AutoRoll: true, CostRule: CostAny},
		Clock:     clock,
		RollDelay: 400 * time.Millisecond,
	})
	if a := e.OnSnapshot(snap(msg)); a != nil {
		t.Fatalf("first tick only arms the timer, got %+v", a)
	}
	if wake := e.NextWake(); wake.IsZero() {
		t.Fatalf("armed timer should report a wake time")
	}
	clock.Advance(200 * time.Millisecond)
	if a := e.Revisit(); a != nil {
		t.Fatalf("timer still pending, got %+v", a)
	}
	clock.Advance(300 * time.Millisecond)
	a := e.Revisit()
	if a == nil || a.Type != protocol.ActRollDice {
		t.Fatalf("elapsed timer should roll, got %+v", a)
	}
}

func TestRoll_JailCardPlayedFirst(t *testing.T) {
	msg := boardState()
	msg.HasRolled = false
	msg.RollsLeft = 1
	msg.Players[0].InJail = true
	msg.Players[0].JailCards = 1

	e := newEngine(newFakeClock(), Policy{AutoRoll: true, CostRule: CostAny})
	a := e.OnSnapshot(snap(msg))
	if a == nil || a.Type != protocol.ActUseJailCard {
		t.Fatalf("jail card goes before the roll, got %+v", a)
	}
}

func TestRescue_SellsHouseBeforeMortgage(t *testing.T) {
	msg := boardState()
	msg.Players[0].Cash = -50
	msg.Ownership[0].Houses = 1
	msg.CurrentPlayer = "Bob" // rescue is turn-independent

	e := newEngine(newFakeClock(), Policy{AutoMortgage: true, CostRule: CostAny})
	a := e.OnSnapshot(snap(msg))
	if a == nil || a.Type != protocol.ActSellHouse || a.Position != 1 {
		t.Fatalf("rescue should sell the house first, got %+v", a)
	}
}

func TestRescue_MortgagesHighestPricedEligible(t *testing.T) {
	msg := boardState()
	msg.Players[0].Cash = -50
	msg.CurrentPlayer = "Bob"
	msg.Ownership = append(msg.Ownership, protocol.PropertyState{Position: 5, Owner: "Alice"})

	e := newEngine(newFakeClock(), Policy{AutoMortgage: true, CostRule: CostAny})
	a := e.OnSnapshot(snap(msg))
	if a == nil || a.Type != protocol.ActMortgage || a.Position != 5 {
		t.Fatalf("no houses to sell, highest-priced tile mortgages first, got %+v", a)
	}
}

func TestRescue_SkipsGroupWithBuildings(t *testing.T) {
	msg := boardState()
	msg.Players[0].Cash = -50
	msg.CurrentPlayer = "Bob"
	msg.Ownership[0].Hotel = true // brown carries a hotel, neither tile can mortgage
	msg.Ownership = append(msg.Ownership, protocol.PropertyState{Position: 5, Owner: "Alice"})

	e := newEngine(newFakeClock(), Policy{AutoMortgage: true, CostRule: CostAny})
	a := e.OnSnapshot(snap(msg))
	// Hotels cannot be sold by the house branch; the railroad is the only
	// mortgage candidate left.
	if a == nil || a.Type != protocol.ActMortgage || a.Position != 5 {
		t.Fatalf("buildings elsewhere block the group, got %+v", a)
	}
}

func TestRescue_RetryExhaustionMarksStuck(t *testing.T) {
	msg := boardState()
	msg.Players[0].Cash = -50
	msg.CurrentPlayer = "Bob"
	msg.Ownership = []protocol.PropertyState{{Position: 5, Owner: "Alice"}}

	clock := newFakeClock()
	e := New(Config{
		Player:      "Alice",
		Policy:      Policy{AutoMortgage: true, CostRule: CostAny},
		Clock:       clock,
		RescueRetry: RetryPolicy{MaxAttempts: 2, Backoff: []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}},
	})

	for i := 0; i < 2; i++ {
		msg.Version++
		if a := e.OnSnapshot(snap(msg)); a == nil || a.Type != protocol.ActMortgage {
			t.Fatalf("attempt %d should mortgage, got %+v", i+1, a)
		}
		clock.Advance(time.Second)
	}
	msg.Version++
	if a := e.OnSnapshot(snap(msg)); a != nil {
		t.Fatalf("budget exhausted, got %+v", a)
	}
	if !e.Stuck() {
		t.Fatalf("engine should report stuck after exhausting retries")
	}

	// Recovery clears the episode.
	msg.Version++
	msg.Players[0].Cash = 100
	e.OnSnapshot(snap(msg))
	if e.Stuck() {
		t.Fatalf("stuck should clear once cash recovers")
	}
}

func TestRescue_BackoffSpacesAttempts(t *testing.T) {
	msg := boardState()
	msg.Players[0].Cash = -50
	msg.CurrentPlayer = "Bob"
	msg.Ownership = []protocol.PropertyState{{Position: 5, Owner: "Alice"}}

	clock := newFakeClock()
	e := New(Config{
		Player:      "Alice",
		Policy:      Policy{AutoMortgage: true, CostRule: CostAny},
		Clock:       clock,
		RescueRetry: RetryPolicy{MaxAttempts: 3, Backoff: []time.Duration{500 * time.Millisecond}},
	})
	if a := e.OnSnapshot(snap(msg)); a == nil {
		t.Fatalf("first attempt should fire")
	}
	msg.Version++
	if a := e.OnSnapshot(snap(msg)); a != nil {
		t.Fatalf("second attempt must wait out the backoff, got %+v", a)
	}
	clock.Advance(600 * time.Millisecond)
	msg.Version++
	if a := e.OnSnapshot(snap(msg)); a == nil {
		t.Fatalf("backoff elapsed, second attempt should fire")
	}
}

func TestEndTurn_SettleDelayAndDebtHold(t *testing.T) {
	msg := boardState()
	msg.RollsLeft = 0

	clock := newFakeClock()
	e := New(Config{
		Player:       "Alice",
		Policy:       Policy{AutoEnd: true, AutoMortgage: true, CostRule: CostAny},
		Clock:        clock,
		EndTurnDelay: 300 * time.Millisecond,
	})
	if a := e.OnSnapshot(snap(msg)); a != nil {
		t.Fatalf("first tick arms the settle delay, got %+v", a)
	}
	clock.Advance(400 * time.Millisecond)
	a := e.Revisit()
	if a == nil || a.Type != protocol.ActEndTurn {
		t.Fatalf("settle delay elapsed, got %+v", a)
	}

	// Negative cash with rescue enabled holds the turn open.
	e2 := newEngine(newFakeClock(), Policy{AutoEnd: true, AutoMortgage: true, CostRule: CostAny})
	msg2 := boardState()
	msg2.RollsLeft = 0
	msg2.Players[0].Cash = -10
	msg2.Ownership = nil // nothing to rescue with either
	if a := e2.OnSnapshot(snap(msg2)); a != nil {
		t.Fatalf("debt with rescue enabled must not end the turn, got %+v", a)
	}
}

func TestDedupe_WindowSuppressesRefire(t *testing.T) {
	msg := boardState()
	msg.Players[0].Position = 5
	e := newEngine(newFakeClock(), Policy{AutoBuy: true, CostRule: CostAny})

	if a := e.OnSnapshot(snap(msg)); a == nil {
		t.Fatalf("first evaluation should buy")
	}
	if a := e.Revisit(); a != nil {
		t.Fatalf("same snapshot version must not re-fire, got %+v", a)
	}
	msg.Version++ // next snapshot, effect not visible yet
	if a := e.OnSnapshot(snap(msg)); a != nil {
		t.Fatalf("version bump inside the window must not re-fire, got %+v", a)
	}
	msg.Version += 20 // past the dedupe TTL, tile still unowned
	if a := e.OnSnapshot(snap(msg)); a == nil {
		t.Fatalf("expired dedupe entry should allow a retry")
	}
}

func TestDedupe_AcceptedBuyNotDoubledByLaggingSnapshot(t *testing.T) {
	msg := boardState()
	msg.Players[0].Position = 5
	e := newEngine(newFakeClock(), Policy{AutoBuy: true, CostRule: CostAny})

	a := e.OnSnapshot(snap(msg))
	if a == nil || a.Type != protocol.ActBuyProperty || a.Position != 5 {
		t.Fatalf("should buy the landed railroad, got %+v", a)
	}

	// The server accepted the buy but the next snapshot has not caught up:
	// ownership is still empty while the version advanced.
	msg.Version++
	msg.LastAction = &protocol.LastAction{
		Player: "Alice", Action: protocol.ActBuyProperty, Position: 5, OK: true,
	}
	if a := e.OnSnapshot(snap(msg)); a != nil {
		t.Fatalf("accepted buy must not be sent twice, got %+v", a)
	}
}

func TestDenialGuard_SuppressesRefusedAction(t *testing.T) {
	msg := boardState()
	msg.Players[0].Position = 5
	msg.LastAction = &protocol.LastAction{
		Player: "Alice", Action: protocol.ActBuyProperty, Position: 5, OK: false, Code: "E_NO_FUNDS",
	}
	e := newEngine(newFakeClock(), Policy{AutoBuy: true, CostRule: CostAny})
	if a := e.OnSnapshot(snap(msg)); a != nil {
		t.Fatalf("server denial suppresses the retry, got %+v", a)
	}
}

func TestReset_NewGameRestoresDefaults(t *testing.T) {
	var resetTo *Policy
	e := New(Config{
		Player: "Alice",
		Policy: Policy{AutoRoll: true, AutoBuy: true, MinCashKeep: 300, CostRule: CostBelow, CostThreshold: 200},
		Clock:  newFakeClock(),
		OnReset: func(p Policy) {
			resetTo = &p
		},
	})

	msg := boardState()
	e.OnSnapshot(snap(msg)) // enters the game

	fresh := boardState()
	fresh.Turn = 0
	if a := e.OnSnapshot(snap(fresh)); a != nil {
		t.Fatalf("pre-game snapshot acts on nothing, got %+v", a)
	}
	if e.Policy().AnyEnabled() || e.Policy().MinCashKeep != 0 {
		t.Fatalf("policy should reset to defaults, got %+v", e.Policy())
	}
	if resetTo == nil || resetTo.AnyEnabled() {
		t.Fatalf("reset hook should fire with the default policy, got %+v", resetTo)
	}
}

func TestGameOver_ResetsToo(t *testing.T) {
	e := newEngine(newFakeClock(), Policy{AutoRoll: true, CostRule: CostAny})
	msg := boardState()
	e.OnSnapshot(snap(msg))

	over := boardState()
	over.GameOver = true
	if a := e.OnSnapshot(snap(over)); a != nil {
		t.Fatalf("finished game acts on nothing, got %+v", a)
	}
	if e.Policy().AnyEnabled() {
		t.Fatalf("policy should reset on game over")
	}
}

func TestNotMyTurn_OnlyRescueRuns(t *testing.T) {
	msg := boardState()
	msg.CurrentPlayer = "Bob"
	e := newEngine(newFakeClock(), Policy{AutoRoll: true, AutoBuy: true, AutoEnd: true, AutoBuildHouses: true, AutoSpreadHouses: true, CostRule: CostAny})
	if a := e.OnSnapshot(snap(msg)); a != nil {
		t.Fatalf("nothing but rescue may run off-turn, got %+v", a)
	}
}
