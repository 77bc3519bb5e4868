package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/reinos-tcg/backend/config"
	"github.com/reinos-tcg/backend/database/models"
	"github.com/reinos-tcg/backend/logger"
)

// JoinPredicate restricts a joined scan of cards plus one attribute table.
// Realm, level and name compose with AND; a nil Type means "any card type
// stored in this table".
type JoinPredicate struct {
	Type     *models.CardType
	Realms   []models.Realm
	Levels   []int
	NameLike string
}

// AttributeRepository is the read-only accessor for the subtype tables.
type AttributeRepository interface {
	// ScanJoined inner-joins cards with one of the realm/lvl-bearing tables
	// (beasts, queens, tokens) and returns the matching base rows.
	ScanJoined(ctx context.Context, table models.AttributeTable, pred JoinPredicate) ([]*models.Card, error)

	BeastsByIDs(ctx context.Context, ids []int64) (map[int64]*models.Beast, error)
	QueensByIDs(ctx context.Context, ids []int64) (map[int64]*models.Queen, error)
	TokensByIDs(ctx context.Context, ids []int64) (map[int64]*models.Token, error)
	SpellsByIDs(ctx context.Context, ids []int64) (map[int64]*models.Spell, error)
}

type attributeRepository struct {
	db        *bun.DB
	chunkSize int
}

func NewAttributeRepository(db *bun.DB, chunkSize int) AttributeRepository {
	if chunkSize <= 0 {
		chunkSize = config.DefaultChunkSize
	}
	return &attributeRepository{db: db, chunkSize: chunkSize}
}

func (r *attributeRepository) ScanJoined(ctx context.Context, table models.AttributeTable, pred JoinPredicate) ([]*models.Card, error) {
	switch table {
	case models.TableBeasts, models.TableQueens, models.TableTokens:
	default:
		return nil, fmt.Errorf("table %q has no realm/lvl columns", table)
	}

	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	query := r.db.NewSelect().
		Model((*models.Card)(nil)).
		Join(fmt.Sprintf("INNER JOIN %s AS a ON a.id = c.id", table))

	if pred.Type != nil {
		query = query.Where("c.card_type = ?", *pred.Type)
	}
	if len(pred.Realms) > 0 {
		query = query.Where("a.realm IN (?)", bun.In(pred.Realms))
	}
	if len(pred.Levels) > 0 {
		query = query.Where("a.lvl IN (?)", bun.In(pred.Levels))
	}
	if pred.NameLike != "" {
		query = query.Where("LOWER(c.name) LIKE LOWER(?)", "%"+pred.NameLike+"%")
	}

	start := time.Now()
	var cards []*models.Card
	err := query.Order("c.id ASC").Scan(ctx, &cards)
	logger.LogQuery(fmt.Sprintf("%s join scan", table), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s join: %w", table, err)
	}

	return cards, nil
}

func (r *attributeRepository) BeastsByIDs(ctx context.Context, ids []int64) (map[int64]*models.Beast, error) {
	return fetchByIDs[*models.Beast](ctx, r.db, r.chunkSize, ids)
}

func (r *attributeRepository) QueensByIDs(ctx context.Context, ids []int64) (map[int64]*models.Queen, error) {
	return fetchByIDs[*models.Queen](ctx, r.db, r.chunkSize, ids)
}

func (r *attributeRepository) TokensByIDs(ctx context.Context, ids []int64) (map[int64]*models.Token, error) {
	return fetchByIDs[*models.Token](ctx, r.db, r.chunkSize, ids)
}

func (r *attributeRepository) SpellsByIDs(ctx context.Context, ids []int64) (map[int64]*models.Spell, error) {
	return fetchByIDs[*models.Spell](ctx, r.db, r.chunkSize, ids)
}

type identifiable interface {
	AttrID() int64
}

// fetchByIDs splits ids into bounded chunks so no single query exceeds the
// backend's bound-parameter budget, and merges the rows into one id-keyed
// map. An empty input issues no query at all.
func fetchByIDs[M identifiable](ctx context.Context, db *bun.DB, chunkSize int, ids []int64) (map[int64]M, error) {
	out := make(map[int64]M, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	for _, window := range chunk(ids, chunkSize) {
		var rows []M
		err := db.NewSelect().
			Model(&rows).
			Where("id IN (?)", bun.In(window)).
			Scan(ctx)
		if err != nil {
			return nil, err
		}

		for _, row := range rows {
			out[row.AttrID()] = row
		}
	}

	return out, nil
}

// chunk splits items into windows of at most size elements. Order is
// preserved and the last window carries the remainder.
func chunk[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) == 0 {
		return nil
	}

	windows := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		windows = append(windows, items[start:end])
	}
	return windows
}
