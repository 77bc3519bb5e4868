package services

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/reinos-tcg/backend/config"
	webmodels "github.com/reinos-tcg/backend/models"
)

const legacyBatchSize = 500

// LegacyImportService streams card documents out of the previous
// generation's MongoDB catalog and feeds them through the regular import
// pipeline in batches.
type LegacyImportService struct {
	cfg      config.LegacyConfig
	importer *ImportService
}

func NewLegacyImportService(cfg config.LegacyConfig, importer *ImportService) *LegacyImportService {
	return &LegacyImportService{cfg: cfg, importer: importer}
}

// Run connects, drains the legacy collection, and returns the merged report.
func (s *LegacyImportService) Run(ctx context.Context) (*webmodels.ImportReport, error) {
	if s.cfg.URI == "" {
		return nil, fmt.Errorf("legacy import not configured")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(s.cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to legacy catalog: %w", err)
	}
	defer func() {
		if err := client.Disconnect(ctx); err != nil {
			slog.Warn("Failed to disconnect legacy client", slog.Any("error", err))
		}
	}()

	coll := client.Database(s.cfg.Database).Collection(s.cfg.Collection)
	cursor, err := coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to query legacy catalog: %w", err)
	}
	defer cursor.Close(ctx)

	total := &webmodels.ImportReport{}
	batch := make([]webmodels.CatalogCard, 0, legacyBatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		report, err := s.importer.Import(ctx, &webmodels.CatalogDocument{Cards: batch})
		if err != nil {
			return err
		}
		mergeReports(total, report)
		batch = batch[:0]
		return nil
	}

	for cursor.Next(ctx) {
		var card webmodels.CatalogCard
		if err := cursor.Decode(&card); err != nil {
			total.Skipped++
			total.Errors = append(total.Errors, webmodels.ImportIssue{
				GlobalID: card.GlobalID,
				Reason:   fmt.Sprintf("undecodable legacy document: %v", err),
			})
			continue
		}
		batch = append(batch, card)

		if len(batch) >= legacyBatchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("legacy cursor failed: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	slog.Info("Legacy catalog import completed",
		slog.String("type", "import"),
		slog.Int("created", total.Created),
		slog.Int("updated", total.Updated),
		slog.Int("skipped", total.Skipped))

	return total, nil
}

func mergeReports(total, part *webmodels.ImportReport) {
	total.Created += part.Created
	total.Updated += part.Updated
	total.Skipped += part.Skipped
	total.Errors = append(total.Errors, part.Errors...)
}
