// internal/data/loan.go
package data

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
)

// Loan represents a single checkout record. A loan is open while DateIn is
// nil and closed once the book has been returned. Dates travel as plain
// YYYY-MM-DD strings end to end; the ISO layout makes string comparison agree
// with date comparison, which the overdue filter relies on.
type Loan struct {
	ID      int64   `db:"loan_id" json:"loan_id"` // Unique identifier assigned by the database
	ISBN    string  `db:"isbn" json:"isbn"`
	CardID  int64   `db:"card_id" json:"card_id"`
	DateOut string  `db:"date_out" json:"date_out"`
	DueDate string  `db:"due_date" json:"due_date"`
	DateIn  *string `db:"date_in" json:"date_in"` // nil while the loan is open
}

// Availability reports whether a book is on the shelf or checked out.
type Availability string

const (
	AvailabilityIn  Availability = "IN"  // no open loan for the book
	AvailabilityOut Availability = "OUT" // at least one loan without a return date
)

// Loan status filter values accepted by GetAll.
const (
	LoanStatusOpen    = "open"
	LoanStatusOverdue = "overdue"
)

// CreateLoanInput holds the fields a client must supply to check a book out.
type CreateLoanInput struct {
	ISBN    string `json:"isbn"`
	CardID  int64  `json:"card_id"`
	DateOut string `json:"date_out"`
	DueDate string `json:"due_date"`
}

// ReturnLoanInput holds the return date supplied when checking a book back in.
type ReturnLoanInput struct {
	DateIn string `json:"date_in"`
}

// UpdateLoanInput holds the date fields an administrator may rewrite on an
// existing loan, for correcting clerical mistakes. Absent fields are left
// unchanged; the book and borrower of a loan are fixed at checkout.
type UpdateLoanInput struct {
	DateOut *string `json:"date_out"`
	DueDate *string `json:"due_date"`
	DateIn  *string `json:"date_in"`
}

// LoanFilters narrows the loan listing. Zero values mean "no filter".
type LoanFilters struct {
	ISBN   string // exact ISBN match
	CardID int64  // exact borrower match
	Status string // "", LoanStatusOpen or LoanStatusOverdue
	AsOf   string // reference date for the overdue cutoff, YYYY-MM-DD
}

// LoanModel wraps a *sqlx.DB connection pool and provides the checkout,
// return, and loan bookkeeping operations.
type LoanModel struct {
	DB *sqlx.DB
}

// loanListDataset builds the filtered SELECT shared by the loan page and
// count queries. Overdue means the loan is still open and its due date lies
// strictly before the AsOf cutoff.
func loanListDataset(f LoanFilters) *goqu.SelectDataset {
	stmt := dialect.
		From("book_loans").
		Select("loan_id", "isbn", "card_id", "date_out", "due_date", "date_in").
		Order(goqu.I("loan_id").Asc())

	if f.ISBN != "" {
		stmt = stmt.Where(goqu.Ex{"isbn": f.ISBN})
	}
	if f.CardID != 0 {
		stmt = stmt.Where(goqu.Ex{"card_id": f.CardID})
	}

	switch f.Status {
	case LoanStatusOpen:
		stmt = stmt.Where(goqu.I("date_in").IsNull())
	case LoanStatusOverdue:
		stmt = stmt.Where(goqu.I("date_in").IsNull(), goqu.I("due_date").Lt(f.AsOf))
	}

	return stmt
}

// buildLoanListQuery renders the paginated loan listing with placeholder arguments.
func buildLoanListQuery(f LoanFilters, filters Filters) (string, []interface{}, error) {
	return loanListDataset(f).
		Offset(uint(filters.offset())).
		Limit(uint(filters.limit())).
		Prepared(true).
		ToSQL()
}

// buildLoanListCountQuery renders the matching-row count for the same listing.
func buildLoanListCountQuery(f LoanFilters) (string, []interface{}, error) {
	return loanListDataset(f).
		ClearOrder().
		Select(goqu.COUNT(goqu.Star())).
		Prepared(true).
		ToSQL()
}

// Insert checks a book out: it creates an open loan for the given book and
// borrower, writing the database-assigned loan ID back into the struct. The
// INSERT is guarded so that a book with an open loan cannot be checked out
// twice, no matter how requests interleave. Returns ErrBookAlreadyOnLoan when
// the guard blocks the insert, or ErrRecordNotFound if the book or borrower
// disappeared since the handler looked them up.
func (m LoanModel) Insert(ctx context.Context, loan *Loan) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO book_loans (isbn, card_id, date_out, due_date)
		SELECT $1, $2, $3, $4
		WHERE NOT EXISTS (
			SELECT 1 FROM book_loans WHERE isbn = $1 AND date_in IS NULL
		)
		RETURNING loan_id`

	err := m.DB.GetContext(ctx, &loan.ID, query, loan.ISBN, loan.CardID, loan.DateOut, loan.DueDate)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrBookAlreadyOnLoan
		case isForeignKeyViolation(err):
			return ErrRecordNotFound
		default:
			return err
		}
	}

	return nil
}

// Get retrieves a single loan by ID.
// Returns ErrRecordNotFound if no loan with the given id exists.
func (m LoanModel) Get(ctx context.Context, id int64) (*Loan, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT loan_id, isbn, card_id, date_out, due_date, date_in FROM book_loans WHERE loan_id = $1`

	var loan Loan
	err := m.DB.GetContext(ctx, &loan, query, id)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &loan, nil
}

// GetAll retrieves one page of loans matching the filters plus the total
// count of matches.
func (m LoanModel) GetAll(ctx context.Context, f LoanFilters, filters Filters) ([]*Loan, int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	countQuery, countArgs, err := buildLoanListCountQuery(f)
	if err != nil {
		return nil, 0, err
	}

	var count int
	err = m.DB.GetContext(ctx, &count, countQuery, countArgs...)
	if err != nil {
		return nil, 0, err
	}

	pageQuery, pageArgs, err := buildLoanListQuery(f, filters)
	if err != nil {
		return nil, 0, err
	}

	loans := []*Loan{}
	err = m.DB.SelectContext(ctx, &loans, pageQuery, pageArgs...)
	if err != nil {
		return nil, 0, err
	}

	return loans, count, nil
}

// Return checks a book back in by stamping the loan's return date, and
// returns the updated loan. The UPDATE only matches open loans, so a loan
// cannot be returned twice; when it matches nothing, a follow-up Get
// distinguishes a missing loan (ErrRecordNotFound) from one that was already
// closed (ErrLoanAlreadyReturned).
func (m LoanModel) Return(ctx context.Context, id int64, dateIn string) (*Loan, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		UPDATE book_loans
		SET date_in = $2
		WHERE loan_id = $1 AND date_in IS NULL
		RETURNING loan_id, isbn, card_id, date_out, due_date, date_in`

	var loan Loan
	err := m.DB.GetContext(ctx, &loan, query, id, dateIn)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			_, getErr := m.Get(ctx, id)
			switch {
			case getErr == nil:
				return nil, ErrLoanAlreadyReturned
			case errors.Is(getErr, ErrRecordNotFound):
				return nil, ErrRecordNotFound
			default:
				return nil, getErr
			}
		default:
			return nil, err
		}
	}

	return &loan, nil
}

// Update overwrites the date fields of an existing loan. This is the
// administrative correction path; it performs no open-loan guard, so it can
// adjust closed loans as well. Returns ErrRecordNotFound if the loan is gone.
func (m LoanModel) Update(ctx context.Context, loan *Loan) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		UPDATE book_loans
		SET date_out = $1, due_date = $2, date_in = $3
		WHERE loan_id = $4`

	result, err := m.DB.ExecContext(ctx, query, loan.DateOut, loan.DueDate, loan.DateIn, loan.ID)
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

// Delete removes the loan with the given id. Its fine, if any, is removed by
// the ON DELETE CASCADE on fines.
func (m LoanModel) Delete(ctx context.Context, id int64) error {
	if id < 1 {
		return ErrRecordNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := m.DB.ExecContext(ctx, `DELETE FROM book_loans WHERE loan_id = $1`, id)
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

// BookAvailability reports whether the given book is IN or OUT right now.
// The answer is derived from open loans on every call rather than stored.
func (m LoanModel) BookAvailability(ctx context.Context, isbn string) (Availability, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT EXISTS (SELECT 1 FROM book_loans WHERE isbn = $1 AND date_in IS NULL)`

	var out bool
	err := m.DB.GetContext(ctx, &out, query, isbn)
	if err != nil {
		return "", err
	}

	if out {
		return AvailabilityOut, nil
	}
	return AvailabilityIn, nil
}
