// Package auto is the automation policy engine: a closed-loop controller
// re-evaluated on every snapshot that issues at most one qualifying action
// per tick under the player's configured policy.
package auto

// CostRule filters build/buy decisions by price.
type CostRule string

const (
	CostAny   CostRule = "any"
	CostAbove CostRule = "above"
	CostBelow CostRule = "below"
)

func (r CostRule) Allows(cost, threshold int) bool {
	switch r {
	case CostAbove:
		return cost > threshold
	case CostBelow:
		return cost < threshold
	default:
		return true
	}
}

// Policy is the per-player automation configuration. It is owned by the local
// player, passed into the decision function each tick, and persisted through
// a key-value store; it is never shared and never ambient.
type Policy struct {
	AutoRoll         bool `json:"auto_roll"`
	AutoBuy          bool `json:"auto_buy"`
	AutoEnd          bool `json:"auto_end"`
	AutoBuildHouses  bool `json:"auto_build_houses"`
	AutoMortgage     bool `json:"auto_mortgage"`
	AutoSpreadHouses bool `json:"auto_spread_houses"`

	MinCashKeep   int      `json:"min_cash_keep"`
	CostRule      CostRule `json:"cost_rule"`
	CostThreshold int      `json:"cost_threshold"`
}

// DefaultPolicy is fully passive. A fresh game always starts here so stale
// aggressive settings cannot carry into a new match.
func DefaultPolicy() Policy {
	return Policy{CostRule: CostAny}
}

func (p Policy) AnyEnabled() bool {
	return p.AutoRoll || p.AutoBuy || p.AutoEnd || p.AutoBuildHouses || p.AutoMortgage || p.AutoSpreadHouses
}
