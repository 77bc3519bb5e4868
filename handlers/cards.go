package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/reinos-tcg/backend/logger"
	"github.com/reinos-tcg/backend/search"
)

// CardSearch is the public search endpoint. Its wire contract is a bare
// JSON array of card records on success and a flat {error} object on
// failure, unlike the enveloped admin endpoints.
func CardSearch(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := search.RawFilters{
			PhysicalID: c.Query("idFisico"),
			Name:       c.Query("nombre"),
			Types:      c.Query("tipo"),
			Realms:     c.Query("reino"),
			Levels:     c.Query("nivel"),
		}

		results, err := webApp.Search.Search(c.UserContext(), raw)
		if err != nil {
			var validationErr *search.ValidationError
			if errors.As(err, &validationErr) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": validationErr.Error(),
				})
			}

			logger.LogError("Card search failed", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "search failed: " + err.Error(),
			})
		}

		return c.JSON(results)
	}
}

// CardImage streams a card's artwork out of the blob store. The key is the
// card's idGlobal; unknown cards 404 without touching the blob store.
func CardImage(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Params("key")
		if key == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "missing card key",
			})
		}

		card, err := webApp.Cards.GetByGlobalID(c.UserContext(), key)
		if err != nil {
			logger.LogError("Card lookup failed", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "card lookup failed",
			})
		}
		if card == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "card not found",
			})
		}

		data, contentType, err := webApp.Spaces.GetCardImage(c.UserContext(), key)
		if err != nil {
			slog.Debug("Card image not found",
				slog.String("key", key),
				slog.Any("error", err))
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "image not found",
			})
		}

		c.Set(fiber.HeaderContentType, contentType)
		return c.Send(data)
	}
}
