package models

import dbmodels "github.com/reinos-tcg/backend/database/models"

// CardResult is the flat wire representation of a card: the base record plus
// whichever attribute fields its subtype row carries. Attribute fields are
// pointers so they disappear from the JSON for types that lack them.
type CardResult struct {
	PhysicalID  string            `json:"idPhysical,omitempty"`
	GlobalID    string            `json:"idGlobal"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	CardType    dbmodels.CardType `json:"cardType"`

	Atk             *int            `json:"atk,omitempty"`
	Def             *int            `json:"def,omitempty"`
	Level           *int            `json:"lvl,omitempty"`
	Realm           *dbmodels.Realm `json:"realm,omitempty"`
	HasSpecialSkill *bool           `json:"hasSpecialSkill,omitempty"`
	Subtype         *string         `json:"subtype,omitempty"`
}
