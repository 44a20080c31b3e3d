package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAuthors(t *testing.T) {
	t.Run("maps_source_ids_to_row_order_ids", func(t *testing.T) {
		records := [][]string{
			{"author_id", "name"},
			{"0", "Frank Herbert"},
			{"1", "Isaac Asimov"},
			{"2", "Ursula K. Le Guin"},
		}

		table, err := parseAuthors(records)
		require.NoError(t, err)

		assert.Equal(t, []string{"Frank Herbert", "Isaac Asimov", "Ursula K. Le Guin"}, table.names)
		assert.Equal(t, map[int64]int64{0: 1, 1: 2, 2: 3}, table.idFor)
	})

	t.Run("duplicate_names_collapse_onto_first_occurrence", func(t *testing.T) {
		records := [][]string{
			{"author_id", "name"},
			{"0", "Frank Herbert"},
			{"1", "Frank Herbert"},
			{"2", "Isaac Asimov"},
		}

		table, err := parseAuthors(records)
		require.NoError(t, err)

		assert.Equal(t, []string{"Frank Herbert", "Isaac Asimov"}, table.names)
		// Both source ids for the repeated name point at the same database row.
		assert.Equal(t, map[int64]int64{0: 1, 1: 1, 2: 2}, table.idFor)
	})

	t.Run("column_order_does_not_matter", func(t *testing.T) {
		records := [][]string{
			{"name", "author_id"},
			{"Frank Herbert", "7"},
		}

		table, err := parseAuthors(records)
		require.NoError(t, err)

		assert.Equal(t, []string{"Frank Herbert"}, table.names)
		assert.Equal(t, map[int64]int64{7: 1}, table.idFor)
	})

	t.Run("rejects_bad_input", func(t *testing.T) {
		tests := []struct {
			name    string
			records [][]string
		}{
			{name: "empty_file", records: nil},
			{name: "missing_id_column", records: [][]string{{"name"}, {"Frank Herbert"}}},
			{name: "missing_name_column", records: [][]string{{"author_id"}, {"0"}}},
			{name: "non_numeric_id", records: [][]string{{"author_id", "name"}, {"x", "Frank Herbert"}}},
			{name: "empty_name", records: [][]string{{"author_id", "name"}, {"0", ""}}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := parseAuthors(tt.records)
				assert.Error(t, err)
			})
		}
	})
}

func TestParseBooks(t *testing.T) {
	t.Run("keeps_file_order", func(t *testing.T) {
		records := [][]string{
			{"isbn", "title"},
			{"9780441013593", "Dune"},
			{"9780553293357", "Foundation"},
		}

		books, err := parseBooks(records)
		require.NoError(t, err)

		require.Len(t, books, 2)
		assert.Equal(t, "9780441013593", books[0].ISBN)
		assert.Equal(t, "Dune", books[0].Title)
		assert.Equal(t, "Foundation", books[1].Title)
	})

	t.Run("rejects_an_empty_isbn", func(t *testing.T) {
		records := [][]string{
			{"isbn", "title"},
			{"", "Dune"},
		}

		_, err := parseBooks(records)
		assert.Error(t, err)
	})
}

func TestParseLinks(t *testing.T) {
	idFor := map[int64]int64{10: 1, 20: 2}

	t.Run("translates_source_author_ids", func(t *testing.T) {
		records := [][]string{
			{"author_id", "isbn"},
			{"10", "9780441013593"},
			{"20", "9780553293357"},
		}

		links, err := parseLinks(records, idFor)
		require.NoError(t, err)

		assert.Equal(t, []seedLink{
			{authorID: 1, isbn: "9780441013593"},
			{authorID: 2, isbn: "9780553293357"},
		}, links)
	})

	t.Run("drops_duplicate_pairs", func(t *testing.T) {
		records := [][]string{
			{"author_id", "isbn"},
			{"10", "9780441013593"},
			{"10", "9780441013593"},
		}

		links, err := parseLinks(records, idFor)
		require.NoError(t, err)
		assert.Len(t, links, 1)
	})

	t.Run("rejects_links_to_unknown_authors", func(t *testing.T) {
		records := [][]string{
			{"author_id", "isbn"},
			{"99", "9780441013593"},
		}

		_, err := parseLinks(records, idFor)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown author id 99")
	})
}

func TestColumnIndex(t *testing.T) {
	header := []string{"author_id", "name"}

	i, err := columnIndex(header, "name")
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	_, err = columnIndex(header, "isbn")
	assert.Error(t, err)
}

func TestReadTSV(t *testing.T) {
	t.Run("reads_tab_separated_rows", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "authors.tsv")
		content := "author_id\tname\n0\tFrank Herbert\n1\tMary \"Polly\" Smith\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		records, err := readTSV(path)
		require.NoError(t, err)

		require.Len(t, records, 3)
		assert.Equal(t, []string{"author_id", "name"}, records[0])
		assert.Equal(t, []string{"0", "Frank Herbert"}, records[1])
		// LazyQuotes keeps stray quotes inside a field intact.
		assert.Equal(t, []string{"1", `Mary "Polly" Smith`}, records[2])
	})

	t.Run("missing_file_is_an_error", func(t *testing.T) {
		_, err := readTSV(filepath.Join(t.TempDir(), "nope.tsv"))
		assert.Error(t, err)
	})
}
