package search

import (
	"context"
	"sync"

	dbmodels "github.com/reinos-tcg/backend/database/models"
	"github.com/reinos-tcg/backend/database/repositories"
)

// fakeStore implements both repository interfaces and records every call.
// Planner branches run concurrently, so all bookkeeping is locked.
type fakeStore struct {
	mu sync.Mutex

	physical map[string]*dbmodels.Card
	all      []*dbmodels.Card
	names    []string

	baseRows   func(repositories.BasePredicate) []*dbmodels.Card
	joinedRows func(dbmodels.AttributeTable, repositories.JoinPredicate) []*dbmodels.Card

	beasts map[int64]*dbmodels.Beast
	queens map[int64]*dbmodels.Queen
	tokens map[int64]*dbmodels.Token
	spells map[int64]*dbmodels.Spell

	err error

	physicalCalls int
	allCalls      int
	baseCalls     []repositories.BasePredicate
	joinedCalls   []joinedCall
	fetchCalls    int
}

type joinedCall struct {
	table dbmodels.AttributeTable
	pred  repositories.JoinPredicate
}

func (f *fakeStore) storageCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.physicalCalls + f.allCalls + len(f.baseCalls) + len(f.joinedCalls) + f.fetchCalls
}

// CardRepository

func (f *fakeStore) GetByPhysicalID(_ context.Context, physicalID string) (*dbmodels.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.physicalCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.physical[physicalID], nil
}

func (f *fakeStore) GetByGlobalID(_ context.Context, _ string) (*dbmodels.Card, error) {
	return nil, nil
}

func (f *fakeStore) GetAll(_ context.Context) ([]*dbmodels.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.allCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.all, nil
}

func (f *fakeStore) ScanBase(_ context.Context, pred repositories.BasePredicate) ([]*dbmodels.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.baseCalls = append(f.baseCalls, pred)
	if f.err != nil {
		return nil, f.err
	}
	if f.baseRows == nil {
		return nil, nil
	}
	return f.baseRows(pred), nil
}

func (f *fakeStore) InvalidateCache() {}

func (f *fakeStore) ListNames(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.names, nil
}

func (f *fakeStore) Count(_ context.Context) (int64, error) {
	return int64(len(f.all)), nil
}

// AttributeRepository

func (f *fakeStore) ScanJoined(_ context.Context, table dbmodels.AttributeTable, pred repositories.JoinPredicate) ([]*dbmodels.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joinedCalls = append(f.joinedCalls, joinedCall{table: table, pred: pred})
	if f.err != nil {
		return nil, f.err
	}
	if f.joinedRows == nil {
		return nil, nil
	}
	return f.joinedRows(table, pred), nil
}

func (f *fakeStore) BeastsByIDs(_ context.Context, ids []int64) (map[int64]*dbmodels.Beast, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	if f.err != nil {
		return nil, f.err
	}
	return pickByIDs(f.beasts, ids), nil
}

func (f *fakeStore) QueensByIDs(_ context.Context, ids []int64) (map[int64]*dbmodels.Queen, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	if f.err != nil {
		return nil, f.err
	}
	return pickByIDs(f.queens, ids), nil
}

func (f *fakeStore) TokensByIDs(_ context.Context, ids []int64) (map[int64]*dbmodels.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	if f.err != nil {
		return nil, f.err
	}
	return pickByIDs(f.tokens, ids), nil
}

func (f *fakeStore) SpellsByIDs(_ context.Context, ids []int64) (map[int64]*dbmodels.Spell, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	if f.err != nil {
		return nil, f.err
	}
	return pickByIDs(f.spells, ids), nil
}

func pickByIDs[M any](src map[int64]M, ids []int64) map[int64]M {
	out := make(map[int64]M, len(ids))
	for _, id := range ids {
		if row, ok := src[id]; ok {
			out[id] = row
		}
	}
	return out
}
