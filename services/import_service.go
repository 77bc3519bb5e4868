package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/bun"

	dbmodels "github.com/reinos-tcg/backend/database/models"
	webmodels "github.com/reinos-tcg/backend/models"
)

// romanLevels maps the roman-numeral level notation of the legacy catalog.
var romanLevels = map[string]int{
	"I": 1, "II": 2, "III": 3, "IV": 4, "V": 5,
	"VI": 6, "VII": 7, "VIII": 8, "IX": 9, "X": 10,
}

// ImportService bulk-loads a parsed catalog document into the store. It owns
// every write to the card tables; the search core never mutates them.
type ImportService struct {
	db        *bun.DB
	chunkSize int
}

func NewImportService(db *bun.DB, chunkSize int) *ImportService {
	return &ImportService{db: db, chunkSize: chunkSize}
}

// parsedEntry is a catalog entry after validation, ready to write.
type parsedEntry struct {
	card  dbmodels.Card
	beast *dbmodels.Beast
	queen *dbmodels.Queen
	token *dbmodels.Token
	spell *dbmodels.Spell
}

// Import validates every entry, then upserts the valid ones in a single
// transaction keyed on idGlobal. Entries that fail validation are skipped
// and reported, not fatal. Returns counts per the import contract.
func (s *ImportService) Import(ctx context.Context, doc *webmodels.CatalogDocument) (*webmodels.ImportReport, error) {
	start := time.Now()
	report := &webmodels.ImportReport{}

	entries := make([]parsedEntry, 0, len(doc.Cards))
	for i, raw := range doc.Cards {
		entry, err := parseEntry(raw)
		if err != nil {
			globalID := raw.GlobalID
			if globalID == "" {
				globalID = fmt.Sprintf("(entry %d)", i)
			}
			report.Skipped++
			report.Errors = append(report.Errors, webmodels.ImportIssue{
				GlobalID: globalID,
				Reason:   err.Error(),
			})
			continue
		}
		entries = append(entries, entry)
	}

	if len(entries) > 0 {
		err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
			return s.upsertEntries(ctx, tx, entries, report)
		})
		if err != nil {
			return nil, fmt.Errorf("catalog import failed: %w", err)
		}
	}

	slog.Info("Catalog import completed",
		slog.String("type", "import"),
		slog.Int("created", report.Created),
		slog.Int("updated", report.Updated),
		slog.Int("skipped", report.Skipped),
		slog.Duration("took", time.Since(start)))

	return report, nil
}

func (s *ImportService) upsertEntries(ctx context.Context, tx bun.Tx, entries []parsedEntry, report *webmodels.ImportReport) error {
	existing, err := s.loadExisting(ctx, tx, entries)
	if err != nil {
		return err
	}

	alloc, err := newIDAllocator(ctx, tx)
	if err != nil {
		return err
	}

	now := time.Now()
	for i := range entries {
		entry := &entries[i]

		if prev, ok := existing[entry.card.GlobalID]; ok {
			entry.card.ID = prev.ID
			entry.card.CreatedAt = prev.CreatedAt
			entry.card.UpdatedAt = now

			if _, err := tx.NewUpdate().
				Model(&entry.card).
				WherePK().
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to update card %s: %w", entry.card.GlobalID, err)
			}

			// A type change moves the card to a different subtype table;
			// the old row must not survive it.
			if prev.CardType != entry.card.CardType {
				if err := deleteSubtypeRow(ctx, tx, prev.CardType, prev.ID); err != nil {
					return err
				}
			}

			if err := upsertSubtypeRow(ctx, tx, entry); err != nil {
				return err
			}
			report.Updated++
			continue
		}

		entry.card.ID = alloc.next()
		entry.card.CreatedAt = now
		entry.card.UpdatedAt = now

		if _, err := tx.NewInsert().
			Model(&entry.card).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert card %s: %w", entry.card.GlobalID, err)
		}

		if err := upsertSubtypeRow(ctx, tx, entry); err != nil {
			return err
		}
		report.Created++
	}

	return nil
}

// loadExisting fetches the current id/type of every incoming global id, in
// bounded chunks so the IN list stays under the parameter ceiling.
func (s *ImportService) loadExisting(ctx context.Context, tx bun.Tx, entries []parsedEntry) (map[string]*dbmodels.Card, error) {
	globalIDs := make([]string, 0, len(entries))
	for i := range entries {
		globalIDs = append(globalIDs, entries[i].card.GlobalID)
	}

	existing := make(map[string]*dbmodels.Card, len(globalIDs))
	for start := 0; start < len(globalIDs); start += s.chunkSize {
		end := start + s.chunkSize
		if end > len(globalIDs) {
			end = len(globalIDs)
		}

		var cards []*dbmodels.Card
		err := tx.NewSelect().
			Model(&cards).
			Column("id", "id_global", "card_type", "created_at").
			Where("id_global IN (?)", bun.In(globalIDs[start:end])).
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load existing cards: %w", err)
		}

		for _, card := range cards {
			existing[card.GlobalID] = card
		}
	}

	return existing, nil
}

// idAllocator hands out card ids for one import transaction. Seeded from
// MAX(id) inside the transaction, never from process state, so concurrent
// imports cannot interleave allocations.
type idAllocator struct {
	last int64
}

func newIDAllocator(ctx context.Context, tx bun.Tx) (*idAllocator, error) {
	var maxID int64
	err := tx.NewSelect().
		Model((*dbmodels.Card)(nil)).
		ColumnExpr("COALESCE(MAX(id), 0)").
		Scan(ctx, &maxID)
	if err != nil {
		return nil, fmt.Errorf("failed to seed id allocator: %w", err)
	}
	return &idAllocator{last: maxID}, nil
}

func (a *idAllocator) next() int64 {
	a.last++
	return a.last
}

func upsertSubtypeRow(ctx context.Context, tx bun.Tx, entry *parsedEntry) error {
	id := entry.card.ID

	var model interface{}
	switch {
	case entry.beast != nil:
		entry.beast.ID = id
		model = entry.beast
	case entry.queen != nil:
		entry.queen.ID = id
		model = entry.queen
	case entry.token != nil:
		entry.token.ID = id
		model = entry.token
	case entry.spell != nil:
		entry.spell.ID = id
		model = entry.spell
	default:
		model = &dbmodels.Resource{ID: id}
	}

	q := tx.NewInsert().Model(model).On("CONFLICT (id) DO UPDATE")
	switch model.(type) {
	case *dbmodels.Beast:
		q = q.Set("atk = EXCLUDED.atk").
			Set("def = EXCLUDED.def").
			Set("lvl = EXCLUDED.lvl").
			Set("realm = EXCLUDED.realm").
			Set("has_special_skill = EXCLUDED.has_special_skill")
	case *dbmodels.Queen:
		q = q.Set("atk = EXCLUDED.atk").
			Set("lvl = EXCLUDED.lvl").
			Set("realm = EXCLUDED.realm")
	case *dbmodels.Token:
		q = q.Set("atk = EXCLUDED.atk").
			Set("def = EXCLUDED.def").
			Set("lvl = EXCLUDED.lvl").
			Set("realm = EXCLUDED.realm")
	case *dbmodels.Spell:
		q = q.Set("subtype = EXCLUDED.subtype")
	case *dbmodels.Resource:
		q = tx.NewInsert().Model(model).On("CONFLICT (id) DO NOTHING")
	}

	if _, err := q.Exec(ctx); err != nil {
		return fmt.Errorf("failed to upsert subtype row for card %d: %w", id, err)
	}
	return nil
}

func deleteSubtypeRow(ctx context.Context, tx bun.Tx, cardType dbmodels.CardType, id int64) error {
	var model interface{}
	switch cardType.AttributeTable() {
	case dbmodels.TableBeasts:
		model = (*dbmodels.Beast)(nil)
	case dbmodels.TableQueens:
		model = (*dbmodels.Queen)(nil)
	case dbmodels.TableTokens:
		model = (*dbmodels.Token)(nil)
	case dbmodels.TableSpells:
		model = (*dbmodels.Spell)(nil)
	case dbmodels.TableResources:
		model = (*dbmodels.Resource)(nil)
	default:
		return nil
	}

	if _, err := tx.NewDelete().
		Model(model).
		Where("id = ?", id).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete stale subtype row %d: %w", id, err)
	}
	return nil
}

// parseEntry validates one catalog entry and shapes its card and subtype
// rows. Field requirements follow the card type.
func parseEntry(raw webmodels.CatalogCard) (parsedEntry, error) {
	var entry parsedEntry

	if raw.GlobalID == "" {
		return entry, fmt.Errorf("missing idGlobal")
	}
	if raw.Name == "" {
		return entry, fmt.Errorf("missing name")
	}

	cardType := dbmodels.CardType(canonicalType(raw.CardType))
	if !cardType.Valid() {
		return entry, fmt.Errorf("unknown card type %q", raw.CardType)
	}

	entry.card = dbmodels.Card{
		GlobalID:    raw.GlobalID,
		PhysicalID:  raw.PhysicalID,
		Name:        raw.Name,
		Description: raw.Description,
		CardType:    cardType,
	}

	realm, err := parseRealm(raw.Realm)
	if err != nil {
		return entry, err
	}

	switch cardType {
	case dbmodels.CardTypeBeastNormal, dbmodels.CardTypeBeastSkill:
		atk, def, lvl, err := requireCombatStats(raw, true)
		if err != nil {
			return entry, err
		}
		// Skill beasts carry a special skill unless the dataset says
		// otherwise.
		hasSkill := cardType == dbmodels.CardTypeBeastSkill
		if raw.HasSpecialSkill != nil {
			hasSkill = *raw.HasSpecialSkill
		}
		entry.beast = &dbmodels.Beast{
			Atk: atk, Def: def, Level: lvl,
			Realm:           realm,
			HasSpecialSkill: hasSkill,
		}

	case dbmodels.CardTypeQueen:
		atk, _, lvl, err := requireCombatStats(raw, false)
		if err != nil {
			return entry, err
		}
		entry.queen = &dbmodels.Queen{Atk: atk, Level: lvl, Realm: realm}

	case dbmodels.CardTypeToken:
		atk, def, lvl, err := requireCombatStats(raw, true)
		if err != nil {
			return entry, err
		}
		entry.token = &dbmodels.Token{Atk: atk, Def: def, Level: lvl, Realm: realm}

	case dbmodels.CardTypeSpellNormal, dbmodels.CardTypeSpellField:
		subtype := ""
		if raw.Subtype != nil {
			subtype = *raw.Subtype
		}
		if subtype == "" {
			if cardType == dbmodels.CardTypeSpellField {
				subtype = "FIELD"
			} else {
				subtype = "NORMAL"
			}
		}
		entry.spell = &dbmodels.Spell{Subtype: subtype}

	case dbmodels.CardTypeResource:
		if realm != nil {
			return entry, fmt.Errorf("resource cards carry no realm")
		}
	}

	return entry, nil
}

func requireCombatStats(raw webmodels.CatalogCard, needsDef bool) (atk, def, lvl int, err error) {
	if raw.Atk == nil {
		return 0, 0, 0, fmt.Errorf("missing atk")
	}
	atk = *raw.Atk

	if needsDef {
		if raw.Def == nil {
			return 0, 0, 0, fmt.Errorf("missing def")
		}
		def = *raw.Def
	}

	lvl, err = parseLevel(raw.Level)
	if err != nil {
		return 0, 0, 0, err
	}
	return atk, def, lvl, nil
}

// parseLevel accepts a plain integer or the legacy roman-numeral notation.
func parseLevel(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("missing lvl")
	}

	if lvl, err := strconv.Atoi(s); err == nil {
		if lvl < dbmodels.MinLevel || lvl > dbmodels.MaxLevel {
			return 0, fmt.Errorf("level %d out of range %d-%d", lvl, dbmodels.MinLevel, dbmodels.MaxLevel)
		}
		return lvl, nil
	}

	if lvl, ok := romanLevels[strings.ToUpper(s)]; ok {
		return lvl, nil
	}

	return 0, fmt.Errorf("unparseable level %q", s)
}

func parseRealm(raw *string) (*dbmodels.Realm, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	realm := dbmodels.Realm(strings.ToUpper(strings.TrimSpace(*raw)))
	if !realm.Valid() {
		return nil, fmt.Errorf("unknown realm %q", *raw)
	}
	return &realm, nil
}

func canonicalType(token string) string {
	return strings.ToUpper(strings.Join(strings.Fields(token), "_"))
}
