package protocol

// STATE (session layer -> client): the periodic immutable game snapshot.
// The rules engine is authoritative. Everything here is already computed;
// the client derives views from it and never writes back.
type StateMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Version         uint64 `json:"version"`
	LobbyID         string `json:"lobby_id"`

	Turn          int    `json:"turn"`
	CurrentPlayer string `json:"current_player"`
	HasRolled     bool   `json:"has_rolled"`
	RollsLeft     int    `json:"rolls_left"`
	GameOver      bool   `json:"game_over,omitempty"`

	Players   []PlayerState   `json:"players"`
	Board     []TileState     `json:"board"`
	Ownership []PropertyState `json:"ownership"`

	LastAction *LastAction `json:"last_action,omitempty"`

	Trades []TradeState `json:"trades,omitempty"`
	Stocks []StockState `json:"stocks,omitempty"`
	Bonds  []BondState  `json:"bonds,omitempty"`
}

type PlayerState struct {
	Name         string `json:"name"`
	Cash         int    `json:"cash"`
	Position     int    `json:"position"`
	InJail       bool   `json:"in_jail"`
	JailCards    int    `json:"jail_cards"`
	AutoMortgage bool   `json:"auto_mortgage"`
	Bankrupt     bool   `json:"bankrupt,omitempty"`
}

// Tile metadata is static per board; the server re-sends it with each
// snapshot so the client never needs a board file of its own.
type TileState struct {
	Position  int    `json:"position"`
	Name      string `json:"name"`
	Kind      string `json:"kind"` // "property","railroad","utility","special"
	Group     string `json:"group,omitempty"`
	Price     int    `json:"price,omitempty"`
	HouseCost int    `json:"house_cost,omitempty"`
	Rent      int    `json:"rent,omitempty"`
	Buyable   bool   `json:"buyable,omitempty"`
}

type PropertyState struct {
	Position  int    `json:"position"`
	Owner     string `json:"owner,omitempty"`
	Houses    int    `json:"houses"`
	Hotel     bool   `json:"hotel"`
	Mortgaged bool   `json:"mortgaged"`
}

// LastAction describes the most recent action the server processed,
// including denials. The automation engine keys its anti-retry guard on it.
type LastAction struct {
	Player   string `json:"player,omitempty"`
	Action   string `json:"action"`
	Position int    `json:"position,omitempty"`
	OK       bool   `json:"ok"`
	Code     string `json:"code,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// TradeState is the wire form of a pending offer. Lifecycle state beyond
// "pending" lives client-side in internal/trade.
type TradeState struct {
	ID      string      `json:"id"`
	From    string      `json:"from"`
	To      string      `json:"to"`
	Give    TradeSide   `json:"give"`
	Receive TradeSide   `json:"receive"`
	Terms   *TradeTerms `json:"terms,omitempty"`
}

type TradeSide struct {
	Cash       int   `json:"cash,omitempty"`
	Properties []int `json:"properties,omitempty"`
	JailCard   bool  `json:"jail_card,omitempty"`
}

type TradeTerms struct {
	Payments []PaymentTerm `json:"payments,omitempty"`
	Rentals  []RentalTerm  `json:"rentals,omitempty"`
}

type PaymentTerm struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount int    `json:"amount"`
	Turns  int    `json:"turns"`
}

// RentalTerm direction is explicit: "give" rents the offering party's own
// properties to the counterparty, "receive" is the symmetric case.
type RentalTerm struct {
	Direction  string  `json:"direction"`
	Percentage float64 `json:"percentage"`
	Properties []int   `json:"properties"`
	Turns      int     `json:"turns"`
}

// StockState mirrors one player's self-issued equity pool.
type StockState struct {
	Owner    string         `json:"owner"`
	Holdings []StockHolding `json:"holdings,omitempty"`
	Settings StockSettings  `json:"settings"`
}

type StockHolding struct {
	Investor string  `json:"investor"`
	Percent  float64 `json:"percent"`
}

type StockSettings struct {
	AllowInvesting      bool    `json:"allow_investing"`
	EnforceMinBuy       bool    `json:"enforce_min_buy,omitempty"`
	MinBuy              int     `json:"min_buy,omitempty"`
	EnforceMinPoolTotal bool    `json:"enforce_min_pool_total,omitempty"`
	MinPoolTotal        int     `json:"min_pool_total,omitempty"`
	EnforceMinPoolOwner bool    `json:"enforce_min_pool_owner,omitempty"`
	MinPoolOwner        float64 `json:"min_pool_owner,omitempty"`
}

type BondState struct {
	Owner       string          `json:"owner"`
	AllowBonds  bool            `json:"allow_bonds"`
	RatePercent float64         `json:"rate_percent"`
	PeriodTurns int             `json:"period_turns"`
	History     []BondRatePoint `json:"history,omitempty"`
}

type BondRatePoint struct {
	Turn        int     `json:"turn"`
	RatePercent float64 `json:"rate_percent"`
}
