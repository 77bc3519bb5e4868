package search

import (
	"context"
	"log/slog"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/reinos-tcg/backend/database/repositories"
	webmodels "github.com/reinos-tcg/backend/models"
)

// Service is the search facade: normalize, plan, enrich.
type Service struct {
	cards        repositories.CardRepository
	planner      *Planner
	enricher     *Enricher
	suggestLimit int
}

func NewService(cards repositories.CardRepository, attrs repositories.AttributeRepository, suggestLimit int) *Service {
	return &Service{
		cards:        cards,
		planner:      NewPlanner(cards, attrs),
		enricher:     NewEnricher(attrs),
		suggestLimit: suggestLimit,
	}
}

// Search runs the full pipeline for one request. Validation happens fully
// before any storage access; a *ValidationError means no query was issued.
func (s *Service) Search(ctx context.Context, raw RawFilters) ([]webmodels.CardResult, error) {
	start := time.Now()

	filters, err := ParseFilters(raw)
	if err != nil {
		return nil, err
	}

	cards, err := s.planner.Run(ctx, filters)
	if err != nil {
		return nil, err
	}

	results, err := s.enricher.Enrich(ctx, cards)
	if err != nil {
		return nil, err
	}

	slog.Debug("Card search completed",
		slog.String("type", "db"),
		slog.Int("matches", len(results)),
		slog.Duration("took", time.Since(start)))

	return results, nil
}

// Suggest fuzzily ranks catalog names against q. Used by the admin surface
// when a search came back empty.
func (s *Service) Suggest(ctx context.Context, q string) ([]string, error) {
	if q == "" {
		return []string{}, nil
	}

	names, err := s.cards.ListNames(ctx)
	if err != nil {
		return nil, err
	}

	matches := fuzzy.Find(q, names)
	limit := s.suggestLimit
	if len(matches) < limit {
		limit = len(matches)
	}

	suggestions := make([]string, 0, limit)
	for _, match := range matches[:limit] {
		suggestions = append(suggestions, match.Str)
	}

	return suggestions, nil
}
