package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/uptrace/bun"

	"github.com/reinos-tcg/backend/config"
	"github.com/reinos-tcg/backend/database/models"
	"github.com/reinos-tcg/backend/logger"
)

const physicalIDCacheSize = 512

// BasePredicate restricts a scan of the cards table. Zero values mean
// "no restriction on this dimension".
type BasePredicate struct {
	Types    []models.CardType
	NameLike string
}

type CardRepository interface {
	// GetByPhysicalID resolves the unique physical print id. A miss returns
	// (nil, nil); physical-id lookups are identity lookups, not errors.
	GetByPhysicalID(ctx context.Context, physicalID string) (*models.Card, error)
	GetByGlobalID(ctx context.Context, globalID string) (*models.Card, error)
	GetAll(ctx context.Context) ([]*models.Card, error)
	ScanBase(ctx context.Context, pred BasePredicate) ([]*models.Card, error)
	ListNames(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)
	// InvalidateCache drops every cached read. The import job rewrites cards
	// behind the repository's back, so its handlers call this after a run.
	InvalidateCache()
}

// physCacheEntry carries the cached row copy and its expiry. Entries past
// expiresAt are dropped on read.
type physCacheEntry struct {
	card      models.Card
	expiresAt time.Time
}

type cardRepository struct {
	db        *bun.DB
	chunkSize int
	physCache *lru.Cache
}

func NewCardRepository(db *bun.DB, chunkSize int) CardRepository {
	if chunkSize <= 0 {
		chunkSize = config.DefaultChunkSize
	}
	cache, _ := lru.New(physicalIDCacheSize)
	return &cardRepository{
		db:        db,
		chunkSize: chunkSize,
		physCache: cache,
	}
}

func (r *cardRepository) GetByPhysicalID(ctx context.Context, physicalID string) (*models.Card, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	if card, ok := r.cachedPhysical(physicalID); ok {
		return card, nil
	}

	card := new(models.Card)
	err := r.db.NewSelect().
		Model(card).
		Where("id_physical = ?", physicalID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	r.cachePhysical(physicalID, card)
	return card, nil
}

// cachedPhysical returns a copy of the cached row unless the entry is past
// its expiry, in which case the entry is dropped and the lookup misses.
func (r *cardRepository) cachedPhysical(physicalID string) (*models.Card, bool) {
	value, ok := r.physCache.Get(physicalID)
	if !ok {
		return nil, false
	}

	entry := value.(physCacheEntry)
	if time.Now().After(entry.expiresAt) {
		r.physCache.Remove(physicalID)
		return nil, false
	}

	card := entry.card
	return &card, true
}

func (r *cardRepository) cachePhysical(physicalID string, card *models.Card) {
	r.physCache.Add(physicalID, physCacheEntry{
		card:      *card,
		expiresAt: time.Now().Add(config.CacheExpiration),
	})
}

func (r *cardRepository) InvalidateCache() {
	r.physCache.Purge()
}

func (r *cardRepository) GetByGlobalID(ctx context.Context, globalID string) (*models.Card, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	card := new(models.Card)
	err := r.db.NewSelect().
		Model(card).
		Where("id_global = ?", globalID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return card, nil
}

func (r *cardRepository) GetAll(ctx context.Context) ([]*models.Card, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	var cards []*models.Card
	err := r.db.NewSelect().
		Model(&cards).
		Order("id ASC").
		Scan(ctx)

	return cards, err
}

func (r *cardRepository) ScanBase(ctx context.Context, pred BasePredicate) ([]*models.Card, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	query := r.db.NewSelect().Model((*models.Card)(nil))

	if len(pred.Types) > 0 {
		query = query.Where("card_type IN (?)", bun.In(pred.Types))
	}
	if pred.NameLike != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+pred.NameLike+"%")
	}

	start := time.Now()
	var cards []*models.Card
	err := query.Order("id ASC").Scan(ctx, &cards)
	logger.LogQuery("cards base scan", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to scan cards: %w", err)
	}

	return cards, nil
}

func (r *cardRepository) ListNames(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	var names []string
	err := r.db.NewSelect().
		Model((*models.Card)(nil)).
		Column("name").
		Order("id ASC").
		Scan(ctx, &names)

	return names, err
}

func (r *cardRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	count, err := r.db.NewSelect().
		Model((*models.Card)(nil)).
		Count(ctx)

	return int64(count), err
}
