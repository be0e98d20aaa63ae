package market

import "errors"

var (
	ErrBondRateRange   = errors.New("bond rate must be between 0 and 100")
	ErrBondPeriodRange = errors.New("bond period must be at least one turn")
	ErrBondsDisabled   = errors.New("owner does not allow bonds")
	ErrBondIncrement   = errors.New("bond amount must be a whole number of increments")
	ErrOwnBonds        = errors.New("cannot buy your own bonds")
)
