// internal/data/author.go
package data

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// Author represents a single author record. Names are unique; the
// create-book workflow relies on that to reuse an existing author
// instead of inserting a duplicate.
type Author struct {
	ID   int64  `db:"author_id" json:"author_id"` // Unique identifier assigned by the database
	Name string `db:"name" json:"name"`           // Full name, exact-match unique
}

// CreateAuthorInput holds the fields a client must supply when creating an author.
type CreateAuthorInput struct {
	Name string `json:"name"`
}

// UpdateAuthorInput holds the fields a client may supply when renaming an author.
type UpdateAuthorInput struct {
	Name *string `json:"name"`
}

// AuthorModel wraps a *sqlx.DB connection pool and provides methods for
// creating, reading, updating, and deleting author records.
type AuthorModel struct {
	DB *sqlx.DB
}

// Insert adds a new author record, writing the database-assigned ID back into
// the struct. Returns ErrDuplicateAuthorName if the name is already taken.
func (m AuthorModel) Insert(ctx context.Context, author *Author) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `INSERT INTO authors (name) VALUES ($1) RETURNING author_id`

	err := m.DB.GetContext(ctx, &author.ID, query, author.Name)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return ErrDuplicateAuthorName
		default:
			return err
		}
	}

	return nil
}

// Get retrieves a single author by ID.
// Returns ErrRecordNotFound if no author with the given id exists.
func (m AuthorModel) Get(ctx context.Context, id int64) (*Author, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var author Author
	err := m.DB.GetContext(ctx, &author, `SELECT author_id, name FROM authors WHERE author_id = $1`, id)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &author, nil
}

// GetAll retrieves one page of authors plus the total count of matches.
// A non-empty name filters case-insensitively on a substring of the name;
// the empty string expands to LIKE '%%' and matches every author.
func (m AuthorModel) GetAll(ctx context.Context, name string, filters Filters) ([]*Author, int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT author_id, name FROM authors
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY author_id ASC
		LIMIT $2 OFFSET $3`

	authors := []*Author{}
	err := m.DB.SelectContext(ctx, &authors, query, name, filters.limit(), filters.offset())
	if err != nil {
		return nil, 0, err
	}

	var count int
	err = m.DB.GetContext(ctx, &count, `SELECT count(*) FROM authors WHERE name ILIKE '%' || $1 || '%'`, name)
	if err != nil {
		return nil, 0, err
	}

	return authors, count, nil
}

// Update renames an author. Returns ErrDuplicateAuthorName when the new name
// collides with another author, or ErrRecordNotFound if the author is gone.
func (m AuthorModel) Update(ctx context.Context, author *Author) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := m.DB.ExecContext(ctx, `UPDATE authors SET name = $1 WHERE author_id = $2`, author.Name, author.ID)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return ErrDuplicateAuthorName
		default:
			return err
		}
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

// Delete removes the author with the given id. Book links are removed by the
// ON DELETE CASCADE on book_authors; the books themselves are kept.
func (m AuthorModel) Delete(ctx context.Context, id int64) error {
	if id < 1 {
		return ErrRecordNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := m.DB.ExecContext(ctx, `DELETE FROM authors WHERE author_id = $1`, id)
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
