package search

import (
	"context"

	"golang.org/x/sync/errgroup"

	dbmodels "github.com/reinos-tcg/backend/database/models"
	"github.com/reinos-tcg/backend/database/repositories"
	webmodels "github.com/reinos-tcg/backend/models"
)

// Enricher attaches subtype attributes to deduplicated base rows and shapes
// the flat output records.
type Enricher struct {
	attrs repositories.AttributeRepository
}

func NewEnricher(attrs repositories.AttributeRepository) *Enricher {
	return &Enricher{attrs: attrs}
}

// Enrich batch-fetches the attribute rows for every subtype table relevant
// to the result set and merges them into flat records. Fetches run
// concurrently and all complete before any record is shaped. Input order is
// preserved.
func (e *Enricher) Enrich(ctx context.Context, cards []*dbmodels.Card) ([]webmodels.CardResult, error) {
	if len(cards) == 0 {
		return []webmodels.CardResult{}, nil
	}

	idsByTable := make(map[dbmodels.AttributeTable][]int64)
	for _, card := range cards {
		table := card.CardType.AttributeTable()
		if table == dbmodels.TableResources {
			// Marker rows carry nothing worth fetching.
			continue
		}
		idsByTable[table] = append(idsByTable[table], card.ID)
	}

	var (
		beasts map[int64]*dbmodels.Beast
		queens map[int64]*dbmodels.Queen
		tokens map[int64]*dbmodels.Token
		spells map[int64]*dbmodels.Spell
	)

	g, gctx := errgroup.WithContext(ctx)
	if ids := idsByTable[dbmodels.TableBeasts]; len(ids) > 0 {
		g.Go(func() error {
			var err error
			beasts, err = e.attrs.BeastsByIDs(gctx, ids)
			return err
		})
	}
	if ids := idsByTable[dbmodels.TableQueens]; len(ids) > 0 {
		g.Go(func() error {
			var err error
			queens, err = e.attrs.QueensByIDs(gctx, ids)
			return err
		})
	}
	if ids := idsByTable[dbmodels.TableTokens]; len(ids) > 0 {
		g.Go(func() error {
			var err error
			tokens, err = e.attrs.TokensByIDs(gctx, ids)
			return err
		})
	}
	if ids := idsByTable[dbmodels.TableSpells]; len(ids) > 0 {
		g.Go(func() error {
			var err error
			spells, err = e.attrs.SpellsByIDs(gctx, ids)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]webmodels.CardResult, 0, len(cards))
	for _, card := range cards {
		record := webmodels.CardResult{
			PhysicalID:  card.PhysicalID,
			GlobalID:    card.GlobalID,
			Name:        card.Name,
			Description: card.Description,
			CardType:    card.CardType,
		}

		// Exactly one subtype map can contain the card's id; the switch is
		// exhaustive over the card types.
		switch card.CardType {
		case dbmodels.CardTypeBeastNormal, dbmodels.CardTypeBeastSkill:
			if beast, ok := beasts[card.ID]; ok {
				record.Atk = &beast.Atk
				record.Def = &beast.Def
				record.Level = &beast.Level
				record.Realm = beast.Realm
				record.HasSpecialSkill = &beast.HasSpecialSkill
			}
		case dbmodels.CardTypeQueen:
			if queen, ok := queens[card.ID]; ok {
				record.Atk = &queen.Atk
				record.Level = &queen.Level
				record.Realm = queen.Realm
			}
		case dbmodels.CardTypeToken:
			if token, ok := tokens[card.ID]; ok {
				record.Atk = &token.Atk
				record.Def = &token.Def
				record.Level = &token.Level
				record.Realm = token.Realm
			}
		case dbmodels.CardTypeSpellNormal, dbmodels.CardTypeSpellField:
			if spell, ok := spells[card.ID]; ok {
				record.Subtype = &spell.Subtype
			}
		case dbmodels.CardTypeResource:
			// Base record only.
		}

		results = append(results, record)
	}

	return results, nil
}
