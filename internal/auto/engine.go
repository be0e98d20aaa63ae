package auto

import (
	"time"

	"tycoon.gg/internal/game"
	"tycoon.gg/internal/protocol"
)

type Config struct {
	Player string
	Policy Policy
	Clock  Clock

	// RollDelay debounces the roll action; EndTurnDelay gives the server a
	// settle window before end_turn so a lagging snapshot cannot strand us
	// with a stale negative balance.
	RollDelay    time.Duration
	EndTurnDelay time.Duration

	RescueRetry RetryPolicy
	DedupeTTL   uint64

	// OnReset fires when a new game (turn < 1) or game-over resets the
	// policy to defaults, so the caller can persist the reset.
	OnReset func(Policy)
}

// Engine is the per-player decision loop. It is single-threaded by contract:
// every method runs on the snapshot-delivery goroutine. At most one action
// comes out per evaluation.
type Engine struct {
	cfg    Config
	policy Policy
	clock  Clock
	recent *RecentActions

	last *game.Snapshot

	rollArmedAt time.Time
	endArmedAt  time.Time

	rescueAttempts int
	rescueNextAt   time.Time
	stuck          bool

	inGame bool
}

func New(cfg Config) *Engine {
	if cfg.Clock == nil {
		cfg.Clock = RealClock()
	}
	if cfg.RescueRetry.MaxAttempts == 0 {
		cfg.RescueRetry = DefaultRescueRetry()
	}
	return &Engine{
		cfg:    cfg,
		policy: cfg.Policy,
		clock:  cfg.Clock,
		recent: NewRecentActions(cfg.DedupeTTL),
	}
}

func (e *Engine) Policy() Policy { return e.policy }

// SetPolicy applies a user edit mid-game.
func (e *Engine) SetPolicy(p Policy) { e.policy = p }

// Stuck reports that the rescue retry budget ran out for the current debt
// episode; the human has to intervene. It clears when cash recovers.
func (e *Engine) Stuck() bool { return e.stuck }

// OnSnapshot consumes the next snapshot and returns at most one action.
func (e *Engine) OnSnapshot(s *game.Snapshot) *protocol.Action {
	e.last = s
	return e.evaluate(s)
}

// Revisit re-evaluates the last snapshot. The driver calls it when a delay
// reported by NextWake elapses without a fresh snapshot arriving.
func (e *Engine) Revisit() *protocol.Action {
	if e.last == nil {
		return nil
	}
	return e.evaluate(e.last)
}

// NextWake returns the earliest pending internal deadline, or zero when no
// timer is armed.
func (e *Engine) NextWake() time.Time {
	var next time.Time
	for _, t := range []time.Time{e.rollArmedAt, e.endArmedAt, e.rescueNextAt} {
		if t.IsZero() {
			continue
		}
		if next.IsZero() || t.Before(next) {
			next = t
		}
	}
	return next
}

func (e *Engine) evaluate(s *game.Snapshot) *protocol.Action {
	if s.Turn() < 1 || s.GameOver() {
		e.resetForNewGame()
		return nil
	}
	e.inGame = true

	me := s.Player(e.cfg.Player)
	if me == nil || me.Bankrupt {
		return nil
	}

	now := e.clock.Now()

	// Debt episode over: the retry budget and stuck flag clear.
	if me.Cash >= 0 {
		e.rescueAttempts = 0
		e.rescueNextAt = time.Time{}
		e.stuck = false
	}

	myTurn := s.IsTurn(e.cfg.Player)
	if !myTurn {
		// Stale timers must not fire actions against someone else's turn.
		e.rollArmedAt = time.Time{}
		e.endArmedAt = time.Time{}
	}

	// Priority order; one action per tick. The rescue branch alone is
	// evaluated off-turn so lag cannot leave a negative balance unattended.
	if myTurn {
		if a := e.tryUnmortgageForBuild(s, me); a != nil {
			return e.emit(s, a)
		}
		if a := e.tryBuild(s, me); a != nil {
			return e.emit(s, a)
		}
		if a := e.tryRoll(s, me, now); a != nil {
			return e.emit(s, a)
		}
		if a := e.tryBuy(s, me); a != nil {
			return e.emit(s, a)
		}
	}
	if a := e.tryRescue(s, me, now); a != nil {
		return e.emit(s, a)
	}
	if myTurn {
		if a := e.tryEndTurn(s, me, now); a != nil {
			return e.emit(s, a)
		}
	}
	return nil
}

func (e *Engine) resetForNewGame() {
	wasInGame := e.inGame
	e.inGame = false
	e.policy = DefaultPolicy()
	e.recent.Reset()
	e.rollArmedAt = time.Time{}
	e.endArmedAt = time.Time{}
	e.rescueAttempts = 0
	e.rescueNextAt = time.Time{}
	e.stuck = false
	if wasInGame && e.cfg.OnReset != nil {
		e.cfg.OnReset(e.policy)
	}
}

func (e *Engine) emit(s *game.Snapshot, a *protocol.Action) *protocol.Action {
	e.recent.Remember(ActionKey{Type: a.Type, Position: a.Position}, s.Version())
	a.Player = e.cfg.Player
	return a
}

// allowed suppresses a candidate that the server just denied for the same
// tile, or that already fired within the last few snapshot versions. The
// version window covers the lag between our send and the snapshot that
// reflects its effect, so a succeeded action is not doubled either.
func (e *Engine) allowed(s *game.Snapshot, actionType string, pos int) bool {
	if last := s.Msg.LastAction; last != nil && !last.OK &&
		(last.Player == "" || last.Player == e.cfg.Player) &&
		last.Action == actionType && last.Position == pos {
		return false
	}
	return !e.recent.Seen(ActionKey{Type: actionType, Position: pos}, s.Version())
}

// unmortgageCost is the mortgage payoff at a premium: the mortgage itself is
// half the face price, plus a 10% fee, i.e. 55% of face.
func unmortgageCost(price int) int {
	return price * 55 / 100
}

// Priority 1: a complete group blocked only by mortgaged tiles is worth
// unblocking before any house purchase. Cheapest payoff first.
func (e *Engine) tryUnmortgageForBuild(s *game.Snapshot, me *protocol.PlayerState) *protocol.Action {
	if !e.policy.AutoBuildHouses {
		return nil
	}
	best, bestPrice := -1, 0
	for _, g := range s.CompleteGroups(me.Name) {
		mortgaged := s.GroupMortgaged(g)
		if len(mortgaged) == 0 {
			continue
		}
		for _, pos := range mortgaged {
			t := s.Tile(pos)
			if t == nil {
				continue
			}
			cost := unmortgageCost(t.Price)
			if me.Cash-cost < e.policy.MinCashKeep {
				continue
			}
			if !e.allowed(s, protocol.ActUnmortgage, pos) {
				continue
			}
			if best == -1 || t.Price < bestPrice {
				best, bestPrice = pos, t.Price
			}
		}
	}
	if best == -1 {
		return nil
	}
	return &protocol.Action{Type: protocol.ActUnmortgage, Position: best}
}

// Priority 2: build on complete, fully unmortgaged groups. Spreading picks
// the emptiest tile; concentrating finishes hotels first.
func (e *Engine) tryBuild(s *game.Snapshot, me *protocol.PlayerState) *protocol.Action {
	if !e.policy.AutoBuildHouses {
		return nil
	}
	for _, g := range s.CompleteGroups(me.Name) {
		if !s.GroupFullyUnmortgaged(g) {
			continue
		}
		positions := s.Group(g)
		houseCost := s.Tile(positions[0]).HouseCost
		if houseCost <= 0 {
			continue
		}
		if !e.policy.CostRule.Allows(houseCost, e.policy.CostThreshold) {
			continue
		}
		if me.Cash-houseCost < e.policy.MinCashKeep {
			continue
		}

		target := -1
		if e.policy.AutoSpreadHouses {
			minUnits := 5
			for _, pos := range positions {
				u := game.BuildingUnits(s.Ownership(pos))
				if u < minUnits {
					minUnits, target = u, pos
				}
			}
		} else {
			for _, pos := range positions {
				if game.BuildingUnits(s.Ownership(pos)) == 4 {
					target = pos
					break
				}
			}
			if target == -1 {
				maxUnits := -1
				for _, pos := range positions {
					u := game.BuildingUnits(s.Ownership(pos))
					if u < 4 && u > maxUnits {
						maxUnits, target = u, pos
					}
				}
			}
		}
		if target == -1 {
			continue // group fully built out
		}

		actionType := protocol.ActBuyHouse
		if game.BuildingUnits(s.Ownership(target)) == 4 {
			actionType = protocol.ActBuyHotel
		}
		if !e.allowed(s, actionType, target) {
			continue
		}
		return &protocol.Action{Type: actionType, Position: target}
	}
	return nil
}

// Priority 3: roll. A jail card is played first when available; the roll
// itself is debounced so a human watching can still intervene.
func (e *Engine) tryRoll(s *game.Snapshot, me *protocol.PlayerState, now time.Time) *protocol.Action {
	if !e.policy.AutoRoll {
		return nil
	}
	if s.Msg.HasRolled && s.Msg.RollsLeft == 0 {
		e.rollArmedAt = time.Time{}
		return nil
	}
	if me.InJail && me.JailCards > 0 {
		if e.allowed(s, protocol.ActUseJailCard, 0) {
			return &protocol.Action{Type: protocol.ActUseJailCard}
		}
		return nil
	}
	if e.cfg.RollDelay > 0 {
		if e.rollArmedAt.IsZero() {
			e.rollArmedAt = now.Add(e.cfg.RollDelay)
			return nil
		}
		if now.Before(e.rollArmedAt) {
			return nil
		}
	}
	if !e.allowed(s, protocol.ActRollDice, 0) {
		return nil
	}
	e.rollArmedAt = time.Time{}
	return &protocol.Action{Type: protocol.ActRollDice}
}

// Priority 4: buy the tile we landed on.
func (e *Engine) tryBuy(s *game.Snapshot, me *protocol.PlayerState) *protocol.Action {
	if !e.policy.AutoBuy || !s.Msg.HasRolled {
		return nil
	}
	t := s.Tile(me.Position)
	if t == nil || !t.Buyable || t.Price <= 0 {
		return nil
	}
	if s.Owner(me.Position) != "" {
		return nil
	}
	if !e.policy.CostRule.Allows(t.Price, e.policy.CostThreshold) {
		return nil
	}
	if me.Cash-t.Price < e.policy.MinCashKeep {
		return nil
	}
	if !e.allowed(s, protocol.ActBuyProperty, me.Position) {
		return nil
	}
	return &protocol.Action{Type: protocol.ActBuyProperty, Position: me.Position}
}

// Priority 5, turn-independent: dig out of negative cash. Houses go first
// (highest house cost), then mortgages (highest face price, skipping tiles
// whose group still has buildings elsewhere). Bounded retries with
// escalating backoff; exhaustion flags the engine stuck.
func (e *Engine) tryRescue(s *game.Snapshot, me *protocol.PlayerState, now time.Time) *protocol.Action {
	if me.Cash >= 0 || !e.policy.AutoMortgage || e.stuck {
		return nil
	}
	if e.rescueAttempts >= e.cfg.RescueRetry.MaxAttempts {
		e.stuck = true
		return nil
	}
	if !e.rescueNextAt.IsZero() && now.Before(e.rescueNextAt) {
		return nil
	}

	actionType, target := e.rescueTarget(s, me)
	if target == -1 {
		e.stuck = true
		return nil
	}
	// Rescue deliberately re-fires the same key across versions: a lost or
	// denied attempt gets retried on the backoff schedule, not the dedupe
	// window. The attempt budget bounds it instead.
	e.rescueAttempts++
	e.rescueNextAt = now.Add(e.cfg.RescueRetry.Delay(e.rescueAttempts - 1))
	return &protocol.Action{Type: actionType, Position: target}
}

func (e *Engine) rescueTarget(s *game.Snapshot, me *protocol.PlayerState) (string, int) {
	// Sell the most valuable house first.
	best, bestCost := -1, 0
	for _, pos := range s.OwnedBy(me.Name) {
		own := s.Ownership(pos)
		if own.Houses == 0 || own.Hotel {
			continue
		}
		if t := s.Tile(pos); t != nil && t.HouseCost > bestCost {
			best, bestCost = pos, t.HouseCost
		}
	}
	if best != -1 {
		return protocol.ActSellHouse, best
	}

	// Then mortgage the most valuable building-free tile, excluding groups
	// that still carry buildings (the rules engine would deny those).
	bestPrice := 0
	for _, pos := range s.OwnedBy(me.Name) {
		own := s.Ownership(pos)
		if own.Mortgaged || game.BuildingUnits(own) > 0 {
			continue
		}
		t := s.Tile(pos)
		if t == nil {
			continue
		}
		if t.Group != "" && s.GroupHasBuildings(t.Group) {
			continue
		}
		if t.Price > bestPrice {
			best, bestPrice = pos, t.Price
		}
	}
	if best != -1 {
		return protocol.ActMortgage, best
	}
	return "", -1
}

// Priority 6: end the turn after a settle delay, once nothing is pending.
func (e *Engine) tryEndTurn(s *game.Snapshot, me *protocol.PlayerState, now time.Time) *protocol.Action {
	if !e.policy.AutoEnd {
		return nil
	}
	if !s.Msg.HasRolled || s.Msg.RollsLeft > 0 {
		e.endArmedAt = time.Time{}
		return nil
	}
	if me.Cash < 0 && e.policy.AutoMortgage {
		// Rescue pending; ending the turn now would strand the debt.
		e.endArmedAt = time.Time{}
		return nil
	}
	if e.cfg.EndTurnDelay > 0 {
		if e.endArmedAt.IsZero() {
			e.endArmedAt = now.Add(e.cfg.EndTurnDelay)
			return nil
		}
		if now.Before(e.endArmedAt) {
			return nil
		}
	}
	if !e.allowed(s, protocol.ActEndTurn, 0) {
		return nil
	}
	e.endArmedAt = time.Time{}
	return &protocol.Action{Type: protocol.ActEndTurn}
}
