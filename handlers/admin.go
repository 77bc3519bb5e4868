package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/reinos-tcg/backend/logger"
	"github.com/reinos-tcg/backend/models"
	"github.com/reinos-tcg/backend/utils"
)

// CatalogImport accepts a parsed catalog document and upserts it. A
// successful run flushes the repository read cache so stale pre-import
// copies cannot be served.
func CatalogImport(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var doc models.CatalogDocument
		if err := c.BodyParser(&doc); err != nil {
			return utils.SendBadRequest(c, "Invalid catalog document", nil)
		}
		if len(doc.Cards) == 0 {
			return utils.SendBadRequest(c, "Catalog document contains no cards", nil)
		}

		report, err := webApp.Import.Import(c.UserContext(), &doc)
		if err != nil {
			logger.LogError("Catalog import failed", err)
			return utils.SendInternalServerError(c, "Import failed")
		}

		webApp.Cards.InvalidateCache()

		return utils.SendSuccess(c, report, "Catalog imported")
	}
}

// LegacyImport drains the legacy Mongo catalog into the store.
func LegacyImport(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		report, err := webApp.Legacy.Run(c.UserContext())
		if err != nil {
			logger.LogError("Legacy import failed", err)
			return utils.SendInternalServerError(c, "Legacy import failed")
		}

		webApp.Cards.InvalidateCache()

		return utils.SendSuccess(c, report, "Legacy catalog imported")
	}
}

// CardSuggest fuzzily ranks catalog names against the admin's query.
func CardSuggest(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := c.Query("q")
		if q == "" {
			return utils.SendBadRequest(c, "Missing query parameter q", nil)
		}

		suggestions, err := webApp.Search.Suggest(c.UserContext(), q)
		if err != nil {
			return utils.SendInternalServerError(c, "Suggestion lookup failed")
		}

		return utils.SendSuccess(c, fiber.Map{"suggestions": suggestions}, "")
	}
}
