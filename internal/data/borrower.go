// internal/data/borrower.go
package data

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// Borrower represents a library card holder. Every profile field is optional
// and nullable; only the card number is guaranteed to exist.
type Borrower struct {
	CardID  int64   `db:"card_id" json:"card_id"` // Card number assigned by the database
	SSN     *string `db:"ssn" json:"ssn"`
	Name    *string `db:"bname" json:"bname"`
	Address *string `db:"address" json:"address"`
	Phone   *string `db:"phone" json:"phone"`
}

// CreateBorrowerInput holds the fields a client may supply when registering a
// borrower. All of them are optional; a card can be issued with nothing but
// its number.
type CreateBorrowerInput struct {
	SSN     *string `json:"ssn"`
	Name    *string `json:"bname"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
}

// UpdateBorrowerInput holds the fields a client may supply when partially
// updating a borrower. Absent fields are left unchanged.
type UpdateBorrowerInput struct {
	SSN     *string `json:"ssn"`
	Name    *string `json:"bname"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
}

// BorrowerModel wraps a *sqlx.DB connection pool and provides methods for
// creating, reading, updating, and deleting borrower records.
type BorrowerModel struct {
	DB *sqlx.DB
}

// Insert registers a new borrower, writing the database-assigned card number
// back into the struct.
func (m BorrowerModel) Insert(ctx context.Context, borrower *Borrower) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO borrower (ssn, bname, address, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING card_id`

	return m.DB.GetContext(ctx, &borrower.CardID, query,
		borrower.SSN, borrower.Name, borrower.Address, borrower.Phone)
}

// Get retrieves a single borrower by card number.
// Returns ErrRecordNotFound if no borrower holds the given card.
func (m BorrowerModel) Get(ctx context.Context, cardID int64) (*Borrower, error) {
	if cardID < 1 {
		return nil, ErrRecordNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT card_id, ssn, bname, address, phone FROM borrower WHERE card_id = $1`

	var borrower Borrower
	err := m.DB.GetContext(ctx, &borrower, query, cardID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &borrower, nil
}

// GetAll retrieves one page of borrowers plus the total count of matches.
// A non-empty name filters case-insensitively on a substring of bname; a
// non-empty ssn must match exactly. Borrowers with a NULL bname only appear
// when the name filter is empty.
func (m BorrowerModel) GetAll(ctx context.Context, name, ssn string, filters Filters) ([]*Borrower, int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT card_id, ssn, bname, address, phone FROM borrower
		WHERE ($1 = '' OR bname ILIKE '%' || $1 || '%')
		AND ($2 = '' OR ssn = $2)
		ORDER BY card_id ASC
		LIMIT $3 OFFSET $4`

	borrowers := []*Borrower{}
	err := m.DB.SelectContext(ctx, &borrowers, query, name, ssn, filters.limit(), filters.offset())
	if err != nil {
		return nil, 0, err
	}

	countQuery := `
		SELECT count(*) FROM borrower
		WHERE ($1 = '' OR bname ILIKE '%' || $1 || '%')
		AND ($2 = '' OR ssn = $2)`

	var count int
	err = m.DB.GetContext(ctx, &count, countQuery, name, ssn)
	if err != nil {
		return nil, 0, err
	}

	return borrowers, count, nil
}

// Update saves a modified borrower back to the database.
// Returns ErrRecordNotFound if the borrower no longer exists.
func (m BorrowerModel) Update(ctx context.Context, borrower *Borrower) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		UPDATE borrower
		SET ssn = $1, bname = $2, address = $3, phone = $4
		WHERE card_id = $5`

	result, err := m.DB.ExecContext(ctx, query,
		borrower.SSN, borrower.Name, borrower.Address, borrower.Phone, borrower.CardID)
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

// Delete removes the borrower with the given card number. Loans do not
// cascade: deleting a borrower that still has loan history fails with
// ErrRecordInUse.
func (m BorrowerModel) Delete(ctx context.Context, cardID int64) error {
	if cardID < 1 {
		return ErrRecordNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := m.DB.ExecContext(ctx, `DELETE FROM borrower WHERE card_id = $1`, cardID)
	if err != nil {
		switch {
		case isForeignKeyViolation(err):
			return ErrRecordInUse
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
