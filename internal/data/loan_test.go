package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLoanListQuery_NoFilters(t *testing.T) {
	sql, args, err := buildLoanListQuery(LoanFilters{}, Filters{Skip: 0, Limit: 100})
	require.NoError(t, err)

	assert.NotContains(t, sql, "WHERE")
	assert.Contains(t, sql, `FROM "book_loans"`)
	assert.Contains(t, sql, `ORDER BY "loan_id" ASC`)
	assert.Contains(t, sql, "LIMIT $1")

	require.NotEmpty(t, args)
	assert.EqualValues(t, 100, args[0])
}

func TestBuildLoanListQuery_BookAndBorrowerFilters(t *testing.T) {
	f := LoanFilters{ISBN: "9780441013593", CardID: 7}

	sql, args, err := buildLoanListQuery(f, Filters{Skip: 10, Limit: 5})
	require.NoError(t, err)

	assert.Contains(t, sql, `("isbn" = $1)`)
	assert.Contains(t, sql, `("card_id" = $2)`)
	assert.Contains(t, sql, "LIMIT $3")
	assert.Contains(t, sql, "OFFSET $4")

	require.Len(t, args, 4)
	assert.Equal(t, "9780441013593", args[0])
	assert.EqualValues(t, 7, args[1])
	assert.EqualValues(t, 5, args[2])
	assert.EqualValues(t, 10, args[3])
}

func TestBuildLoanListQuery_StatusFilters(t *testing.T) {
	t.Run("open_keeps_only_unreturned_loans", func(t *testing.T) {
		sql, args, err := buildLoanListQuery(LoanFilters{Status: LoanStatusOpen}, Filters{Skip: 0, Limit: 100})
		require.NoError(t, err)

		assert.Contains(t, sql, `("date_in" IS NULL)`)
		assert.NotContains(t, sql, "due_date")

		// Only the limit is bound; the NULL test needs no argument.
		require.Len(t, args, 1)
		assert.EqualValues(t, 100, args[0])
	})

	t.Run("overdue_adds_due_date_cutoff", func(t *testing.T) {
		f := LoanFilters{Status: LoanStatusOverdue, AsOf: "2024-05-01"}

		sql, args, err := buildLoanListQuery(f, Filters{Skip: 0, Limit: 100})
		require.NoError(t, err)

		assert.Contains(t, sql, `("date_in" IS NULL)`)
		assert.Contains(t, sql, `("due_date" < $1)`)

		require.Len(t, args, 2)
		assert.Equal(t, "2024-05-01", args[0])
		assert.EqualValues(t, 100, args[1])
	})

	t.Run("overdue_combines_with_borrower_filter", func(t *testing.T) {
		f := LoanFilters{CardID: 3, Status: LoanStatusOverdue, AsOf: "2024-05-01"}

		sql, args, err := buildLoanListQuery(f, Filters{Skip: 0, Limit: 100})
		require.NoError(t, err)

		assert.Contains(t, sql, `("card_id" = $1)`)
		assert.Contains(t, sql, `("date_in" IS NULL)`)
		assert.Contains(t, sql, `("due_date" < $2)`)

		require.Len(t, args, 3)
		assert.EqualValues(t, 3, args[0])
		assert.Equal(t, "2024-05-01", args[1])
	})
}

func TestBuildLoanListCountQuery(t *testing.T) {
	f := LoanFilters{ISBN: "9780441013593", Status: LoanStatusOpen}

	sql, args, err := buildLoanListCountQuery(f)
	require.NoError(t, err)

	// The count shares the filters but drops ordering and pagination.
	assert.Contains(t, sql, "COUNT(*)")
	assert.Contains(t, sql, `("isbn" = $1)`)
	assert.Contains(t, sql, `("date_in" IS NULL)`)
	assert.NotContains(t, sql, "ORDER BY")
	assert.NotContains(t, sql, "LIMIT")
	assert.NotContains(t, sql, "OFFSET")

	require.Len(t, args, 1)
	assert.Equal(t, "9780441013593", args[0])
}
