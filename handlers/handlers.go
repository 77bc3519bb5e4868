package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/reinos-tcg/backend/config"
	"github.com/reinos-tcg/backend/database"
	"github.com/reinos-tcg/backend/database/repositories"
	"github.com/reinos-tcg/backend/models"
	"github.com/reinos-tcg/backend/search"
	"github.com/reinos-tcg/backend/services"
	"github.com/reinos-tcg/backend/utils"
)

// CardSearcher is the slice of the search service the handlers consume.
type CardSearcher interface {
	Search(ctx context.Context, raw search.RawFilters) ([]models.CardResult, error)
	Suggest(ctx context.Context, q string) ([]string, error)
}

// CatalogImporter accepts a parsed catalog document.
type CatalogImporter interface {
	Import(ctx context.Context, doc *models.CatalogDocument) (*models.ImportReport, error)
}

// LegacyRunner drains the legacy catalog into the store.
type LegacyRunner interface {
	Run(ctx context.Context) (*models.ImportReport, error)
}

// WebApp bundles everything the route handlers need.
type WebApp struct {
	Config   *config.Config
	DB       *database.DB
	Cards    repositories.CardRepository
	Search   CardSearcher
	Import   CatalogImporter
	Legacy   LegacyRunner
	Spaces   *services.SpacesService
	Sessions *services.SessionService
	Tokens   *services.TokenService
	Version  string
}

// HealthCheck reports liveness and the catalog size.
func HealthCheck(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		count, err := webApp.Cards.Count(c.UserContext())
		if err != nil {
			return utils.SendInternalServerError(c, "Database unavailable")
		}

		return c.JSON(fiber.Map{
			"status":  "ok",
			"version": webApp.Version,
			"cards":   count,
		})
	}
}
