package trade

import "github.com/google/uuid"

// RecurringObligation is a fixed per-turn payment created by accepting an
// offer with payment terms. It self-terminates when TurnsLeft reaches zero.
type RecurringObligation struct {
	ID        string
	TradeID   string
	From      string
	To        string
	Amount    int
	TurnsLeft int
}

// RentalAgreement grants the beneficiary a share of rent collected on the
// listed tiles for a fixed number of turns.
type RentalAgreement struct {
	ID          string
	TradeID     string
	Owner       string
	Beneficiary string
	Percentage  float64
	Properties  []int
	TurnsLeft   int
}

// materializeTerms instantiates the accepted offer's terms as independent
// obligations anchored to the acceptance turn. Rental direction resolves
// against the offer: "give" rents the sender's tiles to the recipient,
// "receive" the other way around.
func materializeTerms(o *Offer) (obs []*RecurringObligation, rents []*RentalAgreement) {
	if o.Terms == nil {
		return nil, nil
	}
	for _, p := range o.Terms.Payments {
		obs = append(obs, &RecurringObligation{
			ID:        uuid.NewString(),
			TradeID:   o.ID,
			From:      p.From,
			To:        p.To,
			Amount:    p.Amount,
			TurnsLeft: p.Turns,
		})
	}
	for _, r := range o.Terms.Rentals {
		owner, beneficiary := o.From, o.To
		if r.Direction == "receive" {
			owner, beneficiary = o.To, o.From
		}
		rents = append(rents, &RentalAgreement{
			ID:          uuid.NewString(),
			TradeID:     o.ID,
			Owner:       owner,
			Beneficiary: beneficiary,
			Percentage:  r.Percentage,
			Properties:  append([]int(nil), r.Properties...),
			TurnsLeft:   r.Turns,
		})
	}
	return obs, rents
}
