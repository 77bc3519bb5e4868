package search

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/reinos-tcg/backend/database/models"
	"github.com/reinos-tcg/backend/database/repositories"
)

// Planner turns a canonical filter set into the base-table and joined
// queries it implies, and unions the results.
//
// The combination policy is fixed: a physical id short-circuits everything;
// within one type branch, realm, level and name predicates AND together;
// across branches the results union. Realm and level never touch the plain
// types (spells, resources) because those carry no attributes to filter on.
type Planner struct {
	cards repositories.CardRepository
	attrs repositories.AttributeRepository
}

func NewPlanner(cards repositories.CardRepository, attrs repositories.AttributeRepository) *Planner {
	return &Planner{cards: cards, attrs: attrs}
}

type branchQuery func(ctx context.Context) ([]*models.Card, error)

// Run executes the plan for f and returns deduplicated base rows. Branches
// are independent point-in-time reads, so they run concurrently; the first
// failure aborts the whole search.
func (p *Planner) Run(ctx context.Context, f Filters) ([]*models.Card, error) {
	// An explicit identity lookup ignores every other filter.
	if f.PhysicalID != "" {
		card, err := p.cards.GetByPhysicalID(ctx, f.PhysicalID)
		if err != nil {
			return nil, err
		}
		if card == nil {
			return []*models.Card{}, nil
		}
		return []*models.Card{card}, nil
	}

	if f.Empty() {
		return p.cards.GetAll(ctx)
	}

	branches := p.planBranches(f)

	results := make([][]*models.Card, len(branches))
	g, gctx := errgroup.WithContext(ctx)
	for i, run := range branches {
		i, run := i, run
		g.Go(func() error {
			rows, err := run(gctx)
			if err != nil {
				return err
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return dedupeByID(results), nil
}

// planBranches materializes the decision table for a non-identity search.
func (p *Planner) planBranches(f Filters) []branchQuery {
	var branches []branchQuery

	var typesPlain []models.CardType
	for _, t := range f.Types {
		t := t
		if t.HasAttributes() {
			branches = append(branches, func(ctx context.Context) ([]*models.Card, error) {
				return p.attrs.ScanJoined(ctx, t.AttributeTable(), repositories.JoinPredicate{
					Type:     &t,
					Realms:   f.Realms,
					Levels:   f.Levels,
					NameLike: f.Name,
				})
			})
		} else {
			typesPlain = append(typesPlain, t)
		}
	}

	// Realm and level do not apply to the plain types; only the name
	// predicate carries over.
	if len(typesPlain) > 0 {
		branches = append(branches, func(ctx context.Context) ([]*models.Card, error) {
			return p.cards.ScanBase(ctx, repositories.BasePredicate{
				Types:    typesPlain,
				NameLike: f.Name,
			})
		})
	}

	// No types requested: an implicit scan across every attribute-bearing
	// table recovers cross-type realm/level searches.
	if len(f.Types) == 0 {
		for _, table := range models.JoinedTables {
			table := table
			branches = append(branches, func(ctx context.Context) ([]*models.Card, error) {
				return p.attrs.ScanJoined(ctx, table, repositories.JoinPredicate{
					Realms:   f.Realms,
					Levels:   f.Levels,
					NameLike: f.Name,
				})
			})
		}
	}

	return branches
}

// dedupeByID unions the branch results in branch order, keeping the first
// occurrence of each card id. Deduplication happens before enrichment, so
// duplicates across branches carry identical data and no ordering bias can
// arise.
func dedupeByID(branches [][]*models.Card) []*models.Card {
	seen := make(map[int64]struct{})
	merged := make([]*models.Card, 0)

	for _, rows := range branches {
		for _, card := range rows {
			if _, ok := seen[card.ID]; ok {
				continue
			}
			seen[card.ID] = struct{}{}
			merged = append(merged, card)
		}
	}

	return merged
}
