package data

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/sthapa66/Library-Management-Full-Stack/internal/validator"
)

func TestValidateFilters(t *testing.T) {
	testCases := []struct {
		name    string
		filters Filters
		wantKey string // field expected to fail, empty for a valid case
	}{
		{name: "defaults", filters: Filters{Skip: 0, Limit: 100}, wantKey: ""},
		{name: "mid-range", filters: Filters{Skip: 40, Limit: 20}, wantKey: ""},
		{name: "limit at maximum", filters: Filters{Skip: 0, Limit: 100}, wantKey: ""},
		{name: "limit at minimum", filters: Filters{Skip: 0, Limit: 1}, wantKey: ""},
		{name: "negative skip", filters: Filters{Skip: -1, Limit: 20}, wantKey: "skip"},
		{name: "zero limit", filters: Filters{Skip: 0, Limit: 0}, wantKey: "limit"},
		{name: "negative limit", filters: Filters{Skip: 0, Limit: -5}, wantKey: "limit"},
		{name: "limit above maximum", filters: Filters{Skip: 0, Limit: 101}, wantKey: "limit"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := validator.New()
			ValidateFilters(v, tc.filters)

			if tc.wantKey == "" {
				assert.True(t, v.Valid(), "expected filters to validate, got %v", v.Errors)
			} else {
				assert.False(t, v.Valid())
				assert.Contains(t, v.Errors, tc.wantKey)
			}
		})
	}
}

func TestPQErrorCodeMapping(t *testing.T) {
	unique := &pq.Error{Code: "23505", Constraint: "authors_name_key"}
	foreignKey := &pq.Error{Code: "23503", Constraint: "book_loans_isbn_fkey"}

	assert.True(t, isUniqueViolation(unique))
	assert.False(t, isUniqueViolation(foreignKey))

	assert.True(t, isForeignKeyViolation(foreignKey))
	assert.False(t, isForeignKeyViolation(unique))

	// Codes must still be recognized through wrapping.
	wrapped := fmt.Errorf("inserting author: %w", unique)
	assert.True(t, isUniqueViolation(wrapped))

	// Plain errors carry no SQLSTATE at all.
	assert.False(t, isUniqueViolation(errors.New("boom")))
	assert.False(t, isForeignKeyViolation(nil))
}
