package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbmodels "github.com/reinos-tcg/backend/database/models"
	"github.com/reinos-tcg/backend/database/repositories"
)

func TestServiceValidationHappensBeforeStorage(t *testing.T) {
	tests := []struct {
		name string
		raw  RawFilters
	}{
		{name: "invalid realm", raw: RawFilters{Realms: "VOID"}},
		{name: "invalid type", raw: RawFilters{Types: "DRAGON"}},
		{name: "level out of range", raw: RawFilters{Levels: "11"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			svc := NewService(store, store, 5)

			_, err := svc.Search(context.Background(), tt.raw)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, 0, store.storageCalls())
		})
	}
}

func TestServiceSearchEndToEnd(t *testing.T) {
	natura := dbmodels.RealmNatura
	store := &fakeStore{
		joinedRows: func(table dbmodels.AttributeTable, _ repositories.JoinPredicate) []*dbmodels.Card {
			if table != dbmodels.TableBeasts {
				return nil
			}
			return []*dbmodels.Card{
				{ID: 1, GlobalID: "bn001", Name: "Moss Drake", CardType: dbmodels.CardTypeBeastNormal},
			}
		},
		beasts: map[int64]*dbmodels.Beast{
			1: {ID: 1, Atk: 900, Def: 600, Level: 3, Realm: &natura},
		},
	}
	svc := NewService(store, store, 5)

	results, err := svc.Search(context.Background(), RawFilters{Types: "beast normal", Realms: "natura"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "bn001", results[0].GlobalID)
	require.NotNil(t, results[0].Atk)
	assert.Equal(t, 900, *results[0].Atk)
	require.NotNil(t, results[0].Realm)
	assert.Equal(t, dbmodels.RealmNatura, *results[0].Realm)
}

func TestServiceSuggest(t *testing.T) {
	store := &fakeStore{
		names: []string{"Moss Drake", "Tide Queen", "Mossy Golem", "Gold Vein"},
	}
	svc := NewService(store, store, 2)

	got, err := svc.Suggest(context.Background(), "moss")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Contains(t, got, "Moss Drake")
	assert.Contains(t, got, "Mossy Golem")
}

func TestServiceSuggestEmptyQuery(t *testing.T) {
	store := &fakeStore{names: []string{"Moss Drake"}}
	svc := NewService(store, store, 5)

	got, err := svc.Suggest(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestServiceSuggestStorageError(t *testing.T) {
	store := &fakeStore{err: errors.New("connection reset")}
	svc := NewService(store, store, 5)

	_, err := svc.Suggest(context.Background(), "moss")
	assert.Error(t, err)
}
