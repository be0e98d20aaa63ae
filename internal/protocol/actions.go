package protocol

// Action type identifiers accepted by the rules engine.
const (
	ActRollDice           = "roll_dice"
	ActBuyProperty        = "buy_property"
	ActBuyHouse           = "buy_house"
	ActSellHouse          = "sell_house"
	ActBuyHotel           = "buy_hotel"
	ActSellHotel          = "sell_hotel"
	ActMortgage           = "mortgage"
	ActUnmortgage         = "unmortgage"
	ActEndTurn            = "end_turn"
	ActOfferTrade         = "offer_trade"
	ActAcceptTrade        = "accept_trade"
	ActDeclineTrade       = "decline_trade"
	ActCancelTrade        = "cancel_trade"
	ActStockInvest        = "stock_invest"
	ActStockSell          = "stock_sell"
	ActStockSettings      = "stock_settings"
	ActBondInvest         = "bond_invest"
	ActBondSettings       = "bond_settings"
	ActToggleAutoMortgage = "toggle_auto_mortgage"
	ActUseJailCard        = "use_jail_card"
	ActBankrupt           = "bankrupt"

	// Out-of-band, best effort: ask the session layer to hydrate a trade
	// known only by id. Failure degrades to a stub view.
	ActFetchTrade = "fetch_trade"
)

// ACT (client -> session layer)
type ActMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	LobbyID         string `json:"lobby_id"`
	ID              string `json:"id,omitempty"` // echoed in ACK.ack_for
	Action          Action `json:"action"`
}

// Action is the single generic payload. Fields are sparse; which ones are
// required depends on Type.
type Action struct {
	Type     string `json:"type"`
	Player   string `json:"player,omitempty"`
	Position int    `json:"position,omitempty"`

	// Market actions.
	Owner         string         `json:"owner,omitempty"`
	Amount        int            `json:"amount,omitempty"`
	Percent       float64        `json:"percent,omitempty"`
	StockSettings *StockSettings `json:"stock_settings,omitempty"`
	BondRate      float64        `json:"bond_rate,omitempty"`
	BondPeriod    int            `json:"bond_period,omitempty"`
	AllowBonds    *bool          `json:"allow_bonds,omitempty"`

	// Trade actions.
	TradeID string      `json:"trade_id,omitempty"`
	Offer   *TradeState `json:"offer,omitempty"`

	// toggle_auto_mortgage.
	Enabled *bool `json:"enabled,omitempty"`
}
