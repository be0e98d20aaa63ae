package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Lobby routing/state.
	ErrLobbyNotFound = "E_LOBBY_NOT_FOUND"
	ErrGameOver      = "E_GAME_OVER"

	// Rule/action layer.
	ErrBadRequest      = "E_BAD_REQUEST"
	ErrNotYourTurn     = "E_NOT_YOUR_TURN"
	ErrNoFunds         = "E_NO_FUNDS"
	ErrNotBuyable      = "E_NOT_BUYABLE"
	ErrAlreadyOwned    = "E_ALREADY_OWNED"
	ErrNotOwner        = "E_NOT_OWNER"
	ErrGroupIncomplete = "E_GROUP_INCOMPLETE"
	ErrMortgaged       = "E_MORTGAGED"
	ErrInvalidTarget   = "E_INVALID_TARGET"

	// Market layer.
	ErrInvestingDisabled = "E_INVESTING_DISABLED"
	ErrBelowMinBuy       = "E_BELOW_MIN_BUY"
	ErrPoolGate          = "E_POOL_GATE"
	ErrOwnerLiquidity    = "E_OWNER_LIQUIDITY"
	ErrBondsDisabled     = "E_BONDS_DISABLED"

	// Consistency.
	ErrStale      = "E_STALE"
	ErrNegBalance = "E_NEG_BALANCE"
	ErrInternal   = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest:   {},
	ErrLobbyNotFound:     {},
	ErrGameOver:          {},
	ErrBadRequest:        {},
	ErrNotYourTurn:       {},
	ErrNoFunds:           {},
	ErrNotBuyable:        {},
	ErrAlreadyOwned:      {},
	ErrNotOwner:          {},
	ErrGroupIncomplete:   {},
	ErrMortgaged:         {},
	ErrInvalidTarget:     {},
	ErrInvestingDisabled: {},
	ErrBelowMinBuy:       {},
	ErrPoolGate:          {},
	ErrOwnerLiquidity:    {},
	ErrBondsDisabled:     {},
	ErrStale:             {},
	ErrNegBalance:        {},
	ErrInternal:          {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
