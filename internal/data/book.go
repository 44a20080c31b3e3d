// Package data provides the data models and database interaction logic
// for the library management system.
package data

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
)

// Book represents a single book record stored in the database.
// It maps directly to a row in the "book" table.
type Book struct {
	ISBN  string `db:"isbn" json:"isbn"`   // ISBN string, the primary key
	Title string `db:"title" json:"title"` // Title of the book
}

// BookSearchResult is one row of the catalog search: a book together with its
// aggregated author list and its current availability flag.
type BookSearchResult struct {
	ISBN      string  `db:"isbn" json:"isbn"`
	Title     string  `db:"title" json:"title"`
	Authors   *string `db:"authors" json:"authors"`     // "First, Second, ..." or null for authorless books
	Available string  `db:"available" json:"available"` // "IN" or "OUT", derived from open loans
}

// CreateBookInput holds the fields a client must supply when creating a new book.
// Every book is created together with exactly one author name; multi-author
// books enter through the bulk importer, which loads author links directly.
type CreateBookInput struct {
	ISBN       string `json:"isbn"`
	Title      string `json:"title"`
	AuthorName string `json:"author_name"`
}

// UpdateBookInput holds the fields a client may supply when partially updating
// a book. The pointer distinguishes "not provided" (nil) from "set to empty".
// The ISBN is the primary key and cannot be changed once loans reference it.
type UpdateBookInput struct {
	Title *string `json:"title"`
}

// BookModel wraps a *sqlx.DB connection pool and provides methods for
// creating, searching, updating, and deleting book records.
type BookModel struct {
	DB *sqlx.DB
}

// availableSQL derives the IN/OUT availability flag for a book row. A book is
// OUT while any of its loans has no return date, otherwise IN. The flag is
// computed fresh on every query; loan state changes independently of book
// rows, so a stored status column would go stale.
const availableSQL = `CASE WHEN EXISTS (SELECT 1 FROM book_loans WHERE book_loans.isbn = book.isbn AND book_loans.date_in IS NULL) THEN 'OUT' ELSE 'IN' END`

// authorMatchSQL matches a book whose author list contains the keyword. It
// probes the base tables rather than the aggregated authors column, so a
// match on one co-author never truncates the aggregate to just that author.
const authorMatchSQL = `EXISTS (SELECT 1 FROM book_authors ba JOIN authors a ON a.author_id = ba.author_id WHERE ba.isbn = book.isbn AND lower(a.name) LIKE ?)`

// searchDataset builds the grouped SELECT shared by the search page and count
// queries. Every book row aggregates ALL of its authors (ordered by author id)
// regardless of which column matched the keyword. A nil query means "no
// keyword supplied": the WHERE clause is omitted entirely and every book
// matches, which is also what an empty keyword produces via LIKE '%%'.
func searchDataset(query *string) *goqu.SelectDataset {
	stmt := dialect.
		From("book").
		Select(
			goqu.I("book.isbn"),
			goqu.I("book.title"),
			goqu.L("string_agg(authors.name, ', ' ORDER BY authors.author_id)").As("authors"),
			goqu.L(availableSQL).As("available"),
		).
		LeftJoin(goqu.T("book_authors"), goqu.On(goqu.Ex{"book_authors.isbn": goqu.I("book.isbn")})).
		LeftJoin(goqu.T("authors"), goqu.On(goqu.Ex{"authors.author_id": goqu.I("book_authors.author_id")})).
		GroupBy(goqu.I("book.isbn"), goqu.I("book.title")).
		Order(goqu.I("book.title").Asc(), goqu.I("book.isbn").Asc())

	if query != nil {
		keyword := "%" + strings.ToLower(*query) + "%"
		stmt = stmt.Where(goqu.Or(
			goqu.Func("lower", goqu.I("book.isbn")).Like(keyword),
			goqu.Func("lower", goqu.I("book.title")).Like(keyword),
			goqu.L(authorMatchSQL, keyword),
		))
	}

	return stmt
}

// buildSearchQuery renders the paginated search statement with placeholder
// arguments.
func buildSearchQuery(query *string, filters Filters) (string, []interface{}, error) {
	return searchDataset(query).
		Offset(uint(filters.offset())).
		Limit(uint(filters.limit())).
		Prepared(true).
		ToSQL()
}

// buildSearchCountQuery renders the matching-row count for the same search.
// It wraps the grouped dataset in a subquery so the count stays independent
// of LIMIT and OFFSET: page 40 of a 3-row result still reports count 3.
func buildSearchCountQuery(query *string) (string, []interface{}, error) {
	matches := searchDataset(query).ClearOrder().As("matches")
	return dialect.From(matches).Select(goqu.COUNT(goqu.Star())).Prepared(true).ToSQL()
}

// Search runs the catalog search and returns one page of results plus the
// total number of matching books. A nil query matches everything.
func (m BookModel) Search(ctx context.Context, query *string, filters Filters) ([]*BookSearchResult, int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	countQuery, countArgs, err := buildSearchCountQuery(query)
	if err != nil {
		return nil, 0, err
	}

	var count int
	err = m.DB.GetContext(ctx, &count, countQuery, countArgs...)
	if err != nil {
		return nil, 0, err
	}

	pageQuery, pageArgs, err := buildSearchQuery(query, filters)
	if err != nil {
		return nil, 0, err
	}

	results := []*BookSearchResult{}
	err = m.DB.SelectContext(ctx, &results, pageQuery, pageArgs...)
	if err != nil {
		return nil, 0, err
	}

	return results, count, nil
}

// InsertWithAuthor creates a book together with its author link in a single
// transaction. The author row is reused when one with exactly the given name
// already exists, otherwise it is created. Returns ErrDuplicateISBN if a book
// with the same ISBN is already on file.
func (m BookModel) InsertWithAuthor(ctx context.Context, book *Book, authorName string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := m.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	// Rollback is a no-op once the transaction has been committed.
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO book (isbn, title) VALUES ($1, $2)`, book.ISBN, book.Title)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return ErrDuplicateISBN
		default:
			return err
		}
	}

	// Insert-or-get the author. ON CONFLICT DO NOTHING suppresses the unique
	// violation and returns no row, in which case the follow-up SELECT picks
	// up whichever row already holds the name.
	var authorID int64
	err = tx.GetContext(ctx, &authorID, `
		INSERT INTO authors (name)
		VALUES ($1)
		ON CONFLICT (name) DO NOTHING
		RETURNING author_id`, authorName)
	if errors.Is(err, sql.ErrNoRows) {
		err = tx.GetContext(ctx, &authorID, `SELECT author_id FROM authors WHERE name = $1`, authorName)
	}
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO book_authors (author_id, isbn) VALUES ($1, $2)`, authorID, book.ISBN)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Get retrieves a single book by its ISBN.
// Returns ErrRecordNotFound if no book with the given ISBN exists.
func (m BookModel) Get(ctx context.Context, isbn string) (*Book, error) {
	if isbn == "" {
		return nil, ErrRecordNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var book Book
	err := m.DB.GetContext(ctx, &book, `SELECT isbn, title FROM book WHERE isbn = $1`, isbn)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &book, nil
}

// GetAll retrieves one page of the plain book list (no author aggregation)
// along with the total number of books on file.
func (m BookModel) GetAll(ctx context.Context, filters Filters) ([]*Book, int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT isbn, title FROM book
		ORDER BY title ASC, isbn ASC
		LIMIT $1 OFFSET $2`

	books := []*Book{}
	err := m.DB.SelectContext(ctx, &books, query, filters.limit(), filters.offset())
	if err != nil {
		return nil, 0, err
	}

	var count int
	err = m.DB.GetContext(ctx, &count, `SELECT count(*) FROM book`)
	if err != nil {
		return nil, 0, err
	}

	return books, count, nil
}

// Update saves a modified book back to the database.
// Returns ErrRecordNotFound if the book no longer exists.
func (m BookModel) Update(ctx context.Context, book *Book) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := m.DB.ExecContext(ctx, `UPDATE book SET title = $1 WHERE isbn = $2`, book.Title, book.ISBN)
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

// Delete removes the book with the given ISBN and returns the deleted record.
// Author links are removed by the ON DELETE CASCADE on book_authors. Loans
// deliberately do not cascade: deleting a book that still has loan history
// fails with ErrRecordInUse.
func (m BookModel) Delete(ctx context.Context, isbn string) (*Book, error) {
	if isbn == "" {
		return nil, ErrRecordNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var book Book
	err := m.DB.GetContext(ctx, &book, `DELETE FROM book WHERE isbn = $1 RETURNING isbn, title`, isbn)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		case isForeignKeyViolation(err):
			return nil, ErrRecordInUse
		default:
			return nil, err
		}
	}

	return &book, nil
}
