package models

import (
	"time"

	"github.com/uptrace/bun"
)

// CardType discriminates which subtype row a card owns.
type CardType string

const (
	CardTypeBeastNormal CardType = "BEAST_NORMAL"
	CardTypeBeastSkill  CardType = "BEAST_SKILL"
	CardTypeSpellNormal CardType = "SPELL_NORMAL"
	CardTypeSpellField  CardType = "SPELL_FIELD"
	CardTypeResource    CardType = "RESOURCE"
	CardTypeQueen       CardType = "QUEEN"
	CardTypeToken       CardType = "TOKEN"
)

// AllCardTypes lists every valid card type in declaration order.
var AllCardTypes = []CardType{
	CardTypeBeastNormal,
	CardTypeBeastSkill,
	CardTypeSpellNormal,
	CardTypeSpellField,
	CardTypeResource,
	CardTypeQueen,
	CardTypeToken,
}

// Valid reports whether t is one of the known card types.
func (t CardType) Valid() bool {
	switch t {
	case CardTypeBeastNormal, CardTypeBeastSkill, CardTypeSpellNormal,
		CardTypeSpellField, CardTypeResource, CardTypeQueen, CardTypeToken:
		return true
	}
	return false
}

// HasAttributes reports whether the card type carries realm/lvl columns and
// therefore lives in one of the joined attribute tables.
func (t CardType) HasAttributes() bool {
	switch t {
	case CardTypeBeastNormal, CardTypeBeastSkill, CardTypeQueen, CardTypeToken:
		return true
	}
	return false
}

// AttributeTable names the subtype table owned by cards of this type.
// Resources own a marker row only.
func (t CardType) AttributeTable() AttributeTable {
	switch t {
	case CardTypeBeastNormal, CardTypeBeastSkill:
		return TableBeasts
	case CardTypeQueen:
		return TableQueens
	case CardTypeToken:
		return TableTokens
	case CardTypeSpellNormal, CardTypeSpellField:
		return TableSpells
	case CardTypeResource:
		return TableResources
	}
	return ""
}

// AttributeTable identifies one of the subtype tables.
type AttributeTable string

const (
	TableBeasts    AttributeTable = "beasts"
	TableQueens    AttributeTable = "queens"
	TableTokens    AttributeTable = "tokens"
	TableSpells    AttributeTable = "spells"
	TableResources AttributeTable = "resources"
)

// JoinedTables are the attribute tables with realm/lvl columns, in the order
// the planner scans them for implicit (type-less) searches.
var JoinedTables = []AttributeTable{TableBeasts, TableQueens, TableTokens}

// Realm is the elemental domain assigned to attribute-bearing cards.
type Realm string

const (
	RealmNatura Realm = "NATURA"
	RealmNicrom Realm = "NICROM"
	RealmPyro   Realm = "PYRO"
	RealmAqua   Realm = "AQUA"
)

func (r Realm) Valid() bool {
	switch r {
	case RealmNatura, RealmNicrom, RealmPyro, RealmAqua:
		return true
	}
	return false
}

const (
	// MinLevel and MaxLevel bound the lvl column on every attribute table.
	MinLevel = 1
	MaxLevel = 10
)

// Card is the base catalog entity shared by every card type. Exactly one
// subtype row exists per card, determined by CardType.
type Card struct {
	bun.BaseModel `bun:"table:cards,alias:c"`

	ID          int64    `bun:"id,pk"`
	GlobalID    string   `bun:"id_global,notnull,unique"`
	PhysicalID  string   `bun:"id_physical,unique,nullzero"`
	Name        string   `bun:"name,notnull"`
	Description string   `bun:"description,type:text,default:''"`
	CardType    CardType `bun:"card_type,notnull"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}
