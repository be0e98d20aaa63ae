package trade

import "errors"

var (
	ErrNotFound       = errors.New("trade not found")
	ErrNoCounterparty = errors.New("offer has no counterparty")
	ErrSelfTrade      = errors.New("cannot trade with yourself")
	ErrEmptyOffer     = errors.New("both sides of the offer are empty")
	ErrBadTerms       = errors.New("recurring terms need positive amounts and turn counts")
	ErrNotDraft       = errors.New("offer already submitted")
	ErrNotPending     = errors.New("offer is no longer pending")
	ErrNotRecipient   = errors.New("only the addressed recipient may do that")
	ErrNotSender      = errors.New("only the original sender may do that")
)
