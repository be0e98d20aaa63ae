package protocol

import "encoding/json"

// Older servers and logged snapshots use a handful of legacy field names
// (including a historic misspelling of "position"). They are all mapped onto
// the canonical fields here, once, at the wire boundary. Business logic never
// sees an alias.

func (p *PropertyState) UnmarshalJSON(b []byte) error {
	var raw struct {
		Position  *int `json:"position"`
		Posistion *int `json:"posistion"`
		Pos       *int `json:"pos"`

		Owner     *string `json:"owner"`
		OwnerName *string `json:"owner_name"`

		Houses     *int `json:"houses"`
		NumHouses  *int `json:"num_houses"`
		HouseCount *int `json:"house_count"`

		Hotel    *bool `json:"hotel"`
		HasHotel *bool `json:"has_hotel"`

		Mortgaged   *bool `json:"mortgaged"`
		IsMortgaged *bool `json:"is_mortgaged"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	p.Position = firstInt(0, raw.Position, raw.Posistion, raw.Pos)
	p.Owner = firstString("", raw.Owner, raw.OwnerName)
	p.Houses = firstInt(0, raw.Houses, raw.NumHouses, raw.HouseCount)
	p.Hotel = firstBool(false, raw.Hotel, raw.HasHotel)
	p.Mortgaged = firstBool(false, raw.Mortgaged, raw.IsMortgaged)

	// Legacy servers encode a hotel as a fifth house. Canonically a hotel
	// means zero houses; the two are never represented together.
	if p.Houses > 4 {
		p.Hotel = true
	}
	if p.Hotel {
		p.Houses = 0
	}
	return nil
}

func (p *PlayerState) UnmarshalJSON(b []byte) error {
	var raw struct {
		Name     *string `json:"name"`
		Username *string `json:"username"`

		Cash    *int `json:"cash"`
		Bal     *int `json:"bal"`
		Balance *int `json:"balance"`

		Position *int `json:"position"`
		Pos      *int `json:"pos"`

		InJail *bool `json:"in_jail"`
		Jail   *bool `json:"jail"`

		JailCards *int `json:"jail_cards"`

		AutoMortgage *bool `json:"auto_mortgage"`
		Bankrupt     *bool `json:"bankrupt"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	p.Name = firstString("", raw.Name, raw.Username)
	p.Cash = firstInt(0, raw.Cash, raw.Bal, raw.Balance)
	p.Position = firstInt(0, raw.Position, raw.Pos)
	p.InJail = firstBool(false, raw.InJail, raw.Jail)
	p.JailCards = firstInt(0, raw.JailCards)
	p.AutoMortgage = firstBool(false, raw.AutoMortgage)
	p.Bankrupt = firstBool(false, raw.Bankrupt)
	return nil
}

func firstInt(def int, vs ...*int) int {
	for _, v := range vs {
		if v != nil {
			return *v
		}
	}
	return def
}

func firstString(def string, vs ...*string) string {
	for _, v := range vs {
		if v != nil {
			return *v
		}
	}
	return def
}

func firstBool(def bool, vs ...*bool) bool {
	for _, v := range vs {
		if v != nil {
			return *v
		}
	}
	return def
}
