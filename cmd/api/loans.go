// cmd/api/loans.go
// HTTP handlers for the loans resource: checking books out, listing and
// filtering loans, checking books back in, and administrative corrections.
package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/sthapa66/Library-Management-Full-Stack/internal/data"
	"github.com/sthapa66/Library-Management-Full-Stack/internal/validator"
)

// createLoanHandler handles POST /v1/loans, the checkout operation.
// The book and borrower must both exist (404 with a specific message
// otherwise) and the book must not already be out on loan (409). The
// database-level guard in Insert backs up the availability check here, so
// two simultaneous checkouts of the same book cannot both succeed.
func (app *applicationDependencies) createLoanHandler(w http.ResponseWriter, r *http.Request) {
	var input data.CreateLoanInput

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(input.ISBN != "", "isbn", "must be provided")
	v.Check(input.CardID > 0, "card_id", "must be a positive integer")
	v.Check(input.DateOut != "", "date_out", "must be provided")
	v.Check(input.DateOut == "" || validator.ValidDate(input.DateOut), "date_out", "must be a valid date in YYYY-MM-DD format")
	v.Check(input.DueDate != "", "due_date", "must be provided")
	v.Check(input.DueDate == "" || validator.ValidDate(input.DueDate), "due_date", "must be a valid date in YYYY-MM-DD format")

	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	_, err = app.models.Books.Get(r.Context(), input.ISBN)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundMessageResponse(w, r, "the book with this ISBN could not be found")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	_, err = app.models.Borrowers.Get(r.Context(), input.CardID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundMessageResponse(w, r, "the borrower with this card number could not be found")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	availability, err := app.models.Loans.BookAvailability(r.Context(), input.ISBN)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	if availability == data.AvailabilityOut {
		app.conflictResponse(w, r, "the book is currently checked out")
		return
	}

	loan := &data.Loan{
		ISBN:    input.ISBN,
		CardID:  input.CardID,
		DateOut: input.DateOut,
		DueDate: input.DueDate,
	}

	err = app.models.Loans.Insert(r.Context(), loan)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrBookAlreadyOnLoan):
			app.conflictResponse(w, r, "the book is currently checked out")
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundMessageResponse(w, r, "the book or borrower could not be found")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"loan": loan}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// listLoansHandler handles GET /v1/loans.
// Filters: isbn (exact), card_id (exact), status (open or overdue), and
// as_of, the reference date for the overdue cutoff, defaulting to today.
func (app *applicationDependencies) listLoansHandler(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	v := validator.New()

	loanFilters := data.LoanFilters{
		ISBN:   app.readString(qs, "isbn", ""),
		CardID: int64(app.readInt(qs, "card_id", 0, v)),
		Status: app.readString(qs, "status", ""),
		AsOf:   app.readString(qs, "as_of", ""),
	}
	filters := app.readFilters(qs, v)

	v.Check(validator.In(loanFilters.Status, "", data.LoanStatusOpen, data.LoanStatusOverdue),
		"status", "must be either 'open' or 'overdue'")
	v.Check(loanFilters.AsOf == "" || validator.ValidDate(loanFilters.AsOf),
		"as_of", "must be a valid date in YYYY-MM-DD format")

	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	// The overdue cutoff defaults to today when the caller does not pin it.
	if loanFilters.Status == data.LoanStatusOverdue && loanFilters.AsOf == "" {
		loanFilters.AsOf = time.Now().Format("2006-01-02")
	}

	loans, count, err := app.models.Loans.GetAll(r.Context(), loanFilters, filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"data": loans, "count": count}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showLoanHandler handles GET /v1/loans/:id.
func (app *applicationDependencies) showLoanHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	loan, err := app.models.Loans.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"loan": loan}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// returnLoanHandler handles PATCH /v1/loans/:id/return, the check-in
// operation. Responds 404 if the loan does not exist and 409 if the book
// has already been returned.
func (app *applicationDependencies) returnLoanHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input data.ReturnLoanInput
	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(input.DateIn != "", "date_in", "must be provided")
	v.Check(input.DateIn == "" || validator.ValidDate(input.DateIn), "date_in", "must be a valid date in YYYY-MM-DD format")

	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	loan, err := app.models.Loans.Return(r.Context(), id, input.DateIn)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, data.ErrLoanAlreadyReturned):
			app.conflictResponse(w, r, "the loan has already been returned")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"loan": loan}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateLoanHandler handles PATCH /v1/loans/:id, the administrative
// correction path. It rewrites whichever date fields are present in the body
// with no open-loan guard, so clerical mistakes on closed loans can be fixed.
func (app *applicationDependencies) updateLoanHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input data.UpdateLoanInput
	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(input.DateOut == nil || validator.ValidDate(*input.DateOut), "date_out", "must be a valid date in YYYY-MM-DD format")
	v.Check(input.DueDate == nil || validator.ValidDate(*input.DueDate), "due_date", "must be a valid date in YYYY-MM-DD format")
	v.Check(input.DateIn == nil || validator.ValidDate(*input.DateIn), "date_in", "must be a valid date in YYYY-MM-DD format")

	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	loan, err := app.models.Loans.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if input.DateOut != nil {
		loan.DateOut = *input.DateOut
	}
	if input.DueDate != nil {
		loan.DueDate = *input.DueDate
	}
	if input.DateIn != nil {
		loan.DateIn = input.DateIn
	}

	err = app.models.Loans.Update(r.Context(), loan)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"loan": loan}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteLoanHandler handles DELETE /v1/loans/:id.
// The loan's fine, if any, is removed with it.
func (app *applicationDependencies) deleteLoanHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.models.Loans.Delete(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "loan successfully deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
