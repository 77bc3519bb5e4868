package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbmodels "github.com/reinos-tcg/backend/database/models"
	"github.com/reinos-tcg/backend/database/repositories"
	"github.com/reinos-tcg/backend/models"
)

// stubCards satisfies repositories.CardRepository and records cache flushes.
type stubCards struct {
	byGlobal    map[string]*dbmodels.Card
	err         error
	invalidated int
}

func (s *stubCards) GetByPhysicalID(_ context.Context, _ string) (*dbmodels.Card, error) {
	return nil, nil
}

func (s *stubCards) GetByGlobalID(_ context.Context, globalID string) (*dbmodels.Card, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.byGlobal[globalID], nil
}

func (s *stubCards) GetAll(_ context.Context) ([]*dbmodels.Card, error) { return nil, nil }

func (s *stubCards) ScanBase(_ context.Context, _ repositories.BasePredicate) ([]*dbmodels.Card, error) {
	return nil, nil
}

func (s *stubCards) ListNames(_ context.Context) ([]string, error) { return nil, nil }

func (s *stubCards) Count(_ context.Context) (int64, error) { return 0, nil }

func (s *stubCards) InvalidateCache() { s.invalidated++ }

type stubImporter struct {
	report *models.ImportReport
	err    error
	calls  int
}

func (s *stubImporter) Import(_ context.Context, _ *models.CatalogDocument) (*models.ImportReport, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.report, nil
}

func newImportApp(cards *stubCards, importer *stubImporter) *fiber.App {
	app := fiber.New()
	app.Post("/admin/import", CatalogImport(&WebApp{Cards: cards, Import: importer}))
	return app
}

func TestCatalogImportFlushesReadCache(t *testing.T) {
	cards := &stubCards{}
	importer := &stubImporter{report: &models.ImportReport{Created: 1, Updated: 1}}
	app := newImportApp(cards, importer)

	body := `{"cards":[{"idGlobal":"bn001","name":"Moss Drake","cardType":"BEAST_NORMAL"}]}`
	req := httptest.NewRequest("POST", "/admin/import", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, importer.calls)

	// A rewritten card must not be served from a pre-import cache entry.
	assert.Equal(t, 1, cards.invalidated)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var envelope models.APIResponse
	require.NoError(t, json.Unmarshal(raw, &envelope))
	assert.True(t, envelope.Success)
}

func TestCatalogImportFailureKeepsCache(t *testing.T) {
	cards := &stubCards{}
	importer := &stubImporter{err: errors.New("transaction aborted")}
	app := newImportApp(cards, importer)

	body := `{"cards":[{"idGlobal":"bn001","name":"Moss Drake","cardType":"BEAST_NORMAL"}]}`
	req := httptest.NewRequest("POST", "/admin/import", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, 0, cards.invalidated)
}

func TestCatalogImportEmptyDocumentIs400(t *testing.T) {
	cards := &stubCards{}
	importer := &stubImporter{}
	app := newImportApp(cards, importer)

	req := httptest.NewRequest("POST", "/admin/import", strings.NewReader(`{"cards":[]}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 0, importer.calls)
	assert.Equal(t, 0, cards.invalidated)
}
