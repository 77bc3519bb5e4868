package search

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/reinos-tcg/backend/database/models"
)

// ValidationError rejects a search before any storage access happens.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// RawFilters carries the query parameters exactly as received. Lists are
// comma-separated.
type RawFilters struct {
	PhysicalID string
	Name       string
	Types      string
	Realms     string
	Levels     string
}

// Filters is the canonical, validated form: deduplicated sets with
// normalized tokens.
type Filters struct {
	PhysicalID string
	Name       string
	Types      []models.CardType
	Realms     []models.Realm
	Levels     []int
}

// Empty reports whether no filter dimension was given at all.
func (f Filters) Empty() bool {
	return f.PhysicalID == "" && f.Name == "" &&
		len(f.Types) == 0 && len(f.Realms) == 0 && len(f.Levels) == 0
}

// ParseFilters normalizes raw inputs into canonical sets. Unknown type or
// realm tokens fail with a ValidationError naming the token; non-numeric
// level tokens are dropped silently, out-of-range ones are rejected.
func ParseFilters(raw RawFilters) (Filters, error) {
	f := Filters{
		PhysicalID: strings.TrimSpace(raw.PhysicalID),
		Name:       strings.TrimSpace(raw.Name),
	}

	for _, token := range splitList(raw.Types) {
		canonical := models.CardType(canonicalTypeToken(token))
		if !canonical.Valid() {
			return Filters{}, &ValidationError{
				Field:   "tipo",
				Message: fmt.Sprintf("unknown card type %q", token),
			}
		}
		f.Types = appendUniqueType(f.Types, canonical)
	}

	for _, token := range splitList(raw.Realms) {
		realm := models.Realm(strings.ToUpper(token))
		if !realm.Valid() {
			return Filters{}, &ValidationError{
				Field:   "reino",
				Message: fmt.Sprintf("unknown realm %q", token),
			}
		}
		f.Realms = appendUniqueRealm(f.Realms, realm)
	}

	for _, token := range splitList(raw.Levels) {
		level, err := strconv.Atoi(token)
		if err != nil {
			continue
		}
		if level < models.MinLevel || level > models.MaxLevel {
			return Filters{}, &ValidationError{
				Field:   "nivel",
				Message: fmt.Sprintf("level %d out of range %d-%d", level, models.MinLevel, models.MaxLevel),
			}
		}
		f.Levels = appendUniqueInt(f.Levels, level)
	}

	return f, nil
}

// splitList splits on commas, trims whitespace, and drops empty tokens.
// Order is preserved; duplicates survive here and are collapsed by the
// typed appendUnique helpers.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}

	var tokens []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			tokens = append(tokens, part)
		}
	}
	return tokens
}

// canonicalTypeToken uppercases a type token and collapses internal
// whitespace runs to a single underscore, so "spell normal" and
// "SPELL_NORMAL" canonicalize identically.
func canonicalTypeToken(token string) string {
	return strings.ToUpper(strings.Join(strings.Fields(token), "_"))
}

func appendUniqueType(list []models.CardType, t models.CardType) []models.CardType {
	for _, existing := range list {
		if existing == t {
			return list
		}
	}
	return append(list, t)
}

func appendUniqueRealm(list []models.Realm, r models.Realm) []models.Realm {
	for _, existing := range list {
		if existing == r {
			return list
		}
	}
	return append(list, r)
}

func appendUniqueInt(list []int, n int) []int {
	for _, existing := range list {
		if existing == n {
			return list
		}
	}
	return append(list, n)
}
