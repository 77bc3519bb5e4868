package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbmodels "github.com/reinos-tcg/backend/database/models"
	"github.com/reinos-tcg/backend/models"
	"github.com/reinos-tcg/backend/search"
)

// stubSearcher satisfies CardSearcher with canned behavior per test.
type stubSearcher struct {
	results []models.CardResult
	err     error

	gotFilters search.RawFilters
}

func (s *stubSearcher) Search(_ context.Context, raw search.RawFilters) ([]models.CardResult, error) {
	s.gotFilters = raw
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

func (s *stubSearcher) Suggest(_ context.Context, _ string) ([]string, error) {
	return nil, nil
}

func newSearchApp(searcher *stubSearcher) *fiber.App {
	app := fiber.New()
	app.Get("/api/cards", CardSearch(&WebApp{Search: searcher}))
	return app
}

func TestCardSearchReturnsBareArray(t *testing.T) {
	atk := 900
	searcher := &stubSearcher{
		results: []models.CardResult{
			{GlobalID: "bn001", Name: "Moss Drake", CardType: "BEAST_NORMAL", Atk: &atk},
		},
	}
	app := newSearchApp(searcher)

	req := httptest.NewRequest("GET", "/api/cards?tipo=BEAST_NORMAL&reino=NATURA&nivel=3", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "bn001", got[0]["idGlobal"])
	assert.Equal(t, float64(900), got[0]["atk"])

	// Query params pass through untouched; normalization is the search
	// core's job.
	assert.Equal(t, "BEAST_NORMAL", searcher.gotFilters.Types)
	assert.Equal(t, "NATURA", searcher.gotFilters.Realms)
	assert.Equal(t, "3", searcher.gotFilters.Levels)
}

func TestCardSearchEmptyResultIsEmptyArray(t *testing.T) {
	app := newSearchApp(&stubSearcher{results: []models.CardResult{}})

	req := httptest.NewRequest("GET", "/api/cards?nombre=nothing", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(body))
}

func TestCardSearchValidationErrorIsFlat400(t *testing.T) {
	searcher := &stubSearcher{
		err: &search.ValidationError{Field: "reino", Message: `unknown realm "VOID"`},
	}
	app := newSearchApp(searcher)

	req := httptest.NewRequest("GET", "/api/cards?reino=VOID", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Contains(t, got["error"], `unknown realm "VOID"`)
	assert.Len(t, got, 1)
}

func TestCardImageUnknownCardIs404(t *testing.T) {
	cards := &stubCards{byGlobal: map[string]*dbmodels.Card{}}
	app := fiber.New()
	// Spaces stays nil: an unknown card must 404 before the blob store is
	// ever consulted.
	app.Get("/api/cards/:key/image", CardImage(&WebApp{Cards: cards}))

	req := httptest.NewRequest("GET", "/api/cards/bn999/image", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "card not found", got["error"])
}

func TestCardImageLookupErrorIs500(t *testing.T) {
	cards := &stubCards{err: errors.New("connection reset")}
	app := fiber.New()
	app.Get("/api/cards/:key/image", CardImage(&WebApp{Cards: cards}))

	req := httptest.NewRequest("GET", "/api/cards/bn001/image", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestCardSearchStorageErrorIs500(t *testing.T) {
	app := newSearchApp(&stubSearcher{err: errors.New("connection reset")})

	req := httptest.NewRequest("GET", "/api/cards?nombre=drake", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Contains(t, got["error"], "search failed")
}
