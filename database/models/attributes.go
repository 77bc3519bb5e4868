package models

import "github.com/uptrace/bun"

// Subtype attribute rows. Each is owned 1:1 by a Card through its id; the
// row never outlives the card and is rewritten when the card changes type.

type Beast struct {
	bun.BaseModel `bun:"table:beasts,alias:b"`

	ID              int64  `bun:"id,pk"`
	Atk             int    `bun:"atk,notnull"`
	Def             int    `bun:"def,notnull"`
	Level           int    `bun:"lvl,notnull"`
	Realm           *Realm `bun:"realm,nullzero"`
	HasSpecialSkill bool   `bun:"has_special_skill,notnull,default:false"`
}

func (b *Beast) AttrID() int64 { return b.ID }

type Queen struct {
	bun.BaseModel `bun:"table:queens,alias:q"`

	ID    int64  `bun:"id,pk"`
	Atk   int    `bun:"atk,notnull"`
	Level int    `bun:"lvl,notnull"`
	Realm *Realm `bun:"realm,nullzero"`
}

func (q *Queen) AttrID() int64 { return q.ID }

type Token struct {
	bun.BaseModel `bun:"table:tokens,alias:t"`

	ID    int64  `bun:"id,pk"`
	Atk   int    `bun:"atk,notnull"`
	Def   int    `bun:"def,notnull"`
	Level int    `bun:"lvl,notnull"`
	Realm *Realm `bun:"realm,nullzero"`
}

func (t *Token) AttrID() int64 { return t.ID }

type Spell struct {
	bun.BaseModel `bun:"table:spells,alias:s"`

	ID      int64  `bun:"id,pk"`
	Subtype string `bun:"subtype,notnull"`
}

func (s *Spell) AttrID() int64 { return s.ID }

// Resource is a marker row only; the base card carries everything else.
type Resource struct {
	bun.BaseModel `bun:"table:resources,alias:r"`

	ID int64 `bun:"id,pk"`
}

func (r *Resource) AttrID() int64 { return r.ID }
