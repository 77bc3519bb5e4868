package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbmodels "github.com/reinos-tcg/backend/database/models"
)

func TestEnricherAttachesAttributesPerType(t *testing.T) {
	pyro := dbmodels.RealmPyro
	aqua := dbmodels.RealmAqua

	store := &fakeStore{
		beasts: map[int64]*dbmodels.Beast{
			1: {ID: 1, Atk: 1200, Def: 800, Level: 4, Realm: &pyro, HasSpecialSkill: false},
		},
		queens: map[int64]*dbmodels.Queen{
			2: {ID: 2, Atk: 2400, Level: 8, Realm: &aqua},
		},
		tokens: map[int64]*dbmodels.Token{
			3: {ID: 3, Atk: 300, Def: 300, Level: 1, Realm: nil},
		},
		spells: map[int64]*dbmodels.Spell{
			4: {ID: 4, Subtype: "FIELD"},
		},
	}
	enricher := NewEnricher(store)

	cards := []*dbmodels.Card{
		{ID: 1, GlobalID: "bn001", Name: "Drake", CardType: dbmodels.CardTypeBeastNormal},
		{ID: 2, GlobalID: "qu001", Name: "Tide Queen", CardType: dbmodels.CardTypeQueen},
		{ID: 3, GlobalID: "tk001", Name: "Sprite", CardType: dbmodels.CardTypeToken},
		{ID: 4, GlobalID: "sf001", Name: "Volcanic Ground", CardType: dbmodels.CardTypeSpellField},
		{ID: 5, GlobalID: "rs001", Name: "Gold Vein", CardType: dbmodels.CardTypeResource},
	}

	got, err := enricher.Enrich(context.Background(), cards)
	require.NoError(t, err)
	require.Len(t, got, 5)

	beast := got[0]
	assert.Equal(t, "bn001", beast.GlobalID)
	require.NotNil(t, beast.Atk)
	assert.Equal(t, 1200, *beast.Atk)
	require.NotNil(t, beast.Def)
	assert.Equal(t, 800, *beast.Def)
	require.NotNil(t, beast.Level)
	assert.Equal(t, 4, *beast.Level)
	require.NotNil(t, beast.Realm)
	assert.Equal(t, dbmodels.RealmPyro, *beast.Realm)
	require.NotNil(t, beast.HasSpecialSkill)
	assert.False(t, *beast.HasSpecialSkill)
	assert.Nil(t, beast.Subtype)

	queen := got[1]
	require.NotNil(t, queen.Atk)
	assert.Equal(t, 2400, *queen.Atk)
	assert.Nil(t, queen.Def)
	require.NotNil(t, queen.Realm)
	assert.Equal(t, dbmodels.RealmAqua, *queen.Realm)

	token := got[2]
	require.NotNil(t, token.Def)
	assert.Equal(t, 300, *token.Def)
	assert.Nil(t, token.Realm)

	spell := got[3]
	require.NotNil(t, spell.Subtype)
	assert.Equal(t, "FIELD", *spell.Subtype)
	assert.Nil(t, spell.Atk)

	resource := got[4]
	assert.Nil(t, resource.Atk)
	assert.Nil(t, resource.Def)
	assert.Nil(t, resource.Level)
	assert.Nil(t, resource.Realm)
	assert.Nil(t, resource.Subtype)
}

func TestEnricherEmptyInputIssuesNoFetch(t *testing.T) {
	store := &fakeStore{}
	enricher := NewEnricher(store)

	got, err := enricher.Enrich(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 0, store.fetchCalls)
}

func TestEnricherOnlyFetchesRelevantTables(t *testing.T) {
	store := &fakeStore{
		spells: map[int64]*dbmodels.Spell{9: {ID: 9, Subtype: "NORMAL"}},
	}
	enricher := NewEnricher(store)

	cards := []*dbmodels.Card{
		{ID: 9, GlobalID: "sn001", Name: "Mend", CardType: dbmodels.CardTypeSpellNormal},
	}

	_, err := enricher.Enrich(context.Background(), cards)
	require.NoError(t, err)
	// Only the spells table is relevant to a spell-only result set.
	assert.Equal(t, 1, store.fetchCalls)
}
