// internal/data/fine.go
package data

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
)

// Fine represents the late fee attached to a loan. The loan ID is the primary
// key, so a loan carries at most one fine for its entire life.
type Fine struct {
	LoanID int64   `db:"loan_id" json:"loan_id"`
	Amount float64 `db:"fine_amt" json:"fine_amt"` // Fee in dollars
	Paid   bool    `db:"paid" json:"paid"`
}

// CreateFineInput holds the fields a client must supply when assessing a fine.
// The amount is a pointer so a missing field can be told apart from an
// explicit zero-dollar fine.
type CreateFineInput struct {
	LoanID int64    `json:"loan_id"`
	Amount *float64 `json:"fine_amt"`
}

// UpdateFineInput holds the fields a client may supply when adjusting a fine.
type UpdateFineInput struct {
	Amount *float64 `json:"fine_amt"`
	Paid   *bool    `json:"paid"`
}

// FineModel wraps a *sqlx.DB connection pool and provides methods for
// assessing, settling, and adjusting fines.
type FineModel struct {
	DB *sqlx.DB
}

// fineListDataset builds the filtered SELECT shared by the fine page and
// count queries. The join onto book_loans carries the borrower's card number,
// which is how "fines owed by this borrower" is answered.
func fineListDataset(paid *bool, cardID int64) *goqu.SelectDataset {
	stmt := dialect.
		From("fines").
		Join(goqu.T("book_loans"), goqu.On(goqu.Ex{"book_loans.loan_id": goqu.I("fines.loan_id")})).
		Select(goqu.I("fines.loan_id"), goqu.I("fines.fine_amt"), goqu.I("fines.paid")).
		Order(goqu.I("fines.loan_id").Asc())

	if paid != nil {
		stmt = stmt.Where(goqu.Ex{"fines.paid": *paid})
	}
	if cardID != 0 {
		stmt = stmt.Where(goqu.Ex{"book_loans.card_id": cardID})
	}

	return stmt
}

// buildFineListQuery renders the paginated fine listing with placeholder arguments.
func buildFineListQuery(paid *bool, cardID int64, filters Filters) (string, []interface{}, error) {
	return fineListDataset(paid, cardID).
		Offset(uint(filters.offset())).
		Limit(uint(filters.limit())).
		Prepared(true).
		ToSQL()
}

// buildFineListCountQuery renders the matching-row count for the same listing.
func buildFineListCountQuery(paid *bool, cardID int64) (string, []interface{}, error) {
	return fineListDataset(paid, cardID).
		ClearOrder().
		Select(goqu.COUNT(goqu.Star())).
		Prepared(true).
		ToSQL()
}

// Insert assesses a fine against a loan. New fines always start unpaid.
// Returns ErrDuplicateFine if the loan already carries one, or
// ErrRecordNotFound if the loan does not exist.
func (m FineModel) Insert(ctx context.Context, fine *Fine) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `INSERT INTO fines (loan_id, fine_amt) VALUES ($1, $2) RETURNING paid`

	err := m.DB.GetContext(ctx, &fine.Paid, query, fine.LoanID, fine.Amount)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return ErrDuplicateFine
		case isForeignKeyViolation(err):
			return ErrRecordNotFound
		default:
			return err
		}
	}

	return nil
}

// Get retrieves the fine attached to the given loan.
// Returns ErrRecordNotFound if the loan carries no fine.
func (m FineModel) Get(ctx context.Context, loanID int64) (*Fine, error) {
	if loanID < 1 {
		return nil, ErrRecordNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var fine Fine
	err := m.DB.GetContext(ctx, &fine, `SELECT loan_id, fine_amt, paid FROM fines WHERE loan_id = $1`, loanID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &fine, nil
}

// GetAll retrieves one page of fines matching the filters plus the total
// count of matches. A nil paid means both paid and unpaid fines; a zero
// cardID means fines for every borrower.
func (m FineModel) GetAll(ctx context.Context, paid *bool, cardID int64, filters Filters) ([]*Fine, int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	countQuery, countArgs, err := buildFineListCountQuery(paid, cardID)
	if err != nil {
		return nil, 0, err
	}

	var count int
	err = m.DB.GetContext(ctx, &count, countQuery, countArgs...)
	if err != nil {
		return nil, 0, err
	}

	pageQuery, pageArgs, err := buildFineListQuery(paid, cardID, filters)
	if err != nil {
		return nil, 0, err
	}

	fines := []*Fine{}
	err = m.DB.SelectContext(ctx, &fines, pageQuery, pageArgs...)
	if err != nil {
		return nil, 0, err
	}

	return fines, count, nil
}

// MarkPaid settles the fine attached to the given loan and returns the
// updated record. Settling an already-paid fine is a no-op, not an error.
func (m FineModel) MarkPaid(ctx context.Context, loanID int64) (*Fine, error) {
	if loanID < 1 {
		return nil, ErrRecordNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		UPDATE fines
		SET paid = true
		WHERE loan_id = $1
		RETURNING loan_id, fine_amt, paid`

	var fine Fine
	err := m.DB.GetContext(ctx, &fine, query, loanID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &fine, nil
}

// Update saves a modified fine back to the database.
// Returns ErrRecordNotFound if the fine no longer exists.
func (m FineModel) Update(ctx context.Context, fine *Fine) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `UPDATE fines SET fine_amt = $1, paid = $2 WHERE loan_id = $3`

	result, err := m.DB.ExecContext(ctx, query, fine.Amount, fine.Paid, fine.LoanID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}

	return nil
}

// Delete waives the fine attached to the given loan.
func (m FineModel) Delete(ctx context.Context, loanID int64) error {
	if loanID < 1 {
		return ErrRecordNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := m.DB.ExecContext(ctx, `DELETE FROM fines WHERE loan_id = $1`, loanID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}

	return nil
}
