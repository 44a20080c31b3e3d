// internal/data/models.go
package data

import (
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // Register the postgres dialect with goqu.
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sthapa66/Library-Management-Full-Stack/internal/validator"
)

// Models is a top-level container that groups all database model types together.
// It is passed around the application via applicationDependencies so every handler
// has access to the database without importing sql directly.
type Models struct {
	Books     BookModel     // Books table plus the catalog search query
	Authors   AuthorModel   // Authors table (names are unique)
	Borrowers BorrowerModel // Borrowers table
	Loans     LoanModel     // Checkout, return, and overdue queries
	Fines     FineModel     // Fines, at most one per loan
}

// NewModels constructs a Models value wired up to the given database connection pool.
// Call this once during application startup and store the result in applicationDependencies.
func NewModels(db *sqlx.DB) Models {
	return Models{
		Books:     BookModel{DB: db},
		Authors:   AuthorModel{DB: db},
		Borrowers: BorrowerModel{DB: db},
		Loans:     LoanModel{DB: db},
		Fines:     FineModel{DB: db},
	}
}

// Sentinel errors returned by the model layer. Handlers match on these with
// errors.Is and translate them into HTTP responses; raw pq error codes never
// leave this package.
var (
	ErrRecordNotFound      = errors.New("record not found")
	ErrDuplicateISBN       = errors.New("duplicate isbn")
	ErrDuplicateAuthorName = errors.New("duplicate author name")
	ErrDuplicateFine       = errors.New("duplicate fine")
	ErrBookAlreadyOnLoan   = errors.New("book already on loan")
	ErrLoanAlreadyReturned = errors.New("loan already returned")
	ErrRecordInUse         = errors.New("record referenced by existing rows")
)

// queryTimeout caps how long any single database operation may run. Model
// methods derive their context from the caller's request context, so the
// effective deadline is whichever expires first.
const queryTimeout = 3 * time.Second

// dialect is the goqu SQL builder configured for PostgreSQL. The queries
// whose shape depends on request parameters (catalog search, loan and fine
// listings) are assembled with it; fixed-shape statements stay as plain SQL.
var dialect = goqu.Dialect("postgres")

// PostgreSQL error codes this package translates into sentinel errors.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// pqErrorCode reports whether err is a *pq.Error carrying the given SQLSTATE code.
func pqErrorCode(err error, code string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == code
}

func isUniqueViolation(err error) bool {
	return pqErrorCode(err, pqUniqueViolation)
}

func isForeignKeyViolation(err error) bool {
	return pqErrorCode(err, pqForeignKeyViolation)
}

// Filters holds the offset pagination parameters extracted from URL query strings.
// Skip is the number of records to pass over and Limit the maximum page size,
// mirroring SQL OFFSET and LIMIT directly.
type Filters struct {
	Skip  int
	Limit int
}

// limit returns the SQL LIMIT value.
func (f Filters) limit() int { return f.Limit }

// offset returns the SQL OFFSET value.
func (f Filters) offset() int { return f.Skip }

// ValidateFilters records a validation error for any pagination parameter
// that is out of range.
func ValidateFilters(v *validator.Validator, f Filters) {
	v.Check(f.Skip >= 0, "skip", "must not be negative")
	v.Check(f.Limit > 0, "limit", "must be greater than zero")
	v.Check(f.Limit <= 100, "limit", "must be a maximum of 100")
}
