// cmd/api/fines.go
// HTTP handlers for the fines resource. A fine is keyed by its loan, so a
// loan can carry at most one fine; settling goes through the pay endpoint.
package main

import (
	"errors"
	"net/http"

	"github.com/sthapa66/Library-Management-Full-Stack/internal/data"
	"github.com/sthapa66/Library-Management-Full-Stack/internal/validator"
)

// createFineHandler handles POST /v1/fines.
// The referenced loan must exist (404 with a specific message otherwise) and
// must not already carry a fine (409). New fines always start unpaid.
func (app *applicationDependencies) createFineHandler(w http.ResponseWriter, r *http.Request) {
	var input data.CreateFineInput

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(input.LoanID > 0, "loan_id", "must be a positive integer")
	v.Check(input.Amount != nil, "fine_amt", "must be provided")
	v.Check(input.Amount == nil || *input.Amount >= 0, "fine_amt", "must not be negative")

	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	_, err = app.models.Loans.Get(r.Context(), input.LoanID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundMessageResponse(w, r, "the loan with this id could not be found")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	fine := &data.Fine{
		LoanID: input.LoanID,
		Amount: *input.Amount,
	}

	err = app.models.Fines.Insert(r.Context(), fine)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrDuplicateFine):
			app.conflictResponse(w, r, "a fine for this loan already exists")
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundMessageResponse(w, r, "the loan with this id could not be found")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"fine": fine}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// listFinesHandler handles GET /v1/fines.
// Filters: paid (true/false) and card_id (fines owed by one borrower).
func (app *applicationDependencies) listFinesHandler(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	v := validator.New()

	paid := app.readBool(qs, "paid", v)
	cardID := int64(app.readInt(qs, "card_id", 0, v))
	filters := app.readFilters(qs, v)

	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	fines, count, err := app.models.Fines.GetAll(r.Context(), paid, cardID, filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"data": fines, "count": count}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showFineHandler handles GET /v1/fines/:loan_id.
func (app *applicationDependencies) showFineHandler(w http.ResponseWriter, r *http.Request) {
	loanID, err := app.readIDParam(r, "loan_id")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	fine, err := app.models.Fines.Get(r.Context(), loanID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"fine": fine}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// payFineHandler handles PATCH /v1/fines/:loan_id/pay.
// Settling is idempotent: paying an already-paid fine simply returns it.
func (app *applicationDependencies) payFineHandler(w http.ResponseWriter, r *http.Request) {
	loanID, err := app.readIDParam(r, "loan_id")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	fine, err := app.models.Fines.MarkPaid(r.Context(), loanID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"fine": fine}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateFineHandler handles PATCH /v1/fines/:loan_id.
// Adjusts the amount or the paid flag; only fields present in the body change.
func (app *applicationDependencies) updateFineHandler(w http.ResponseWriter, r *http.Request) {
	loanID, err := app.readIDParam(r, "loan_id")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input data.UpdateFineInput
	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(input.Amount == nil || *input.Amount >= 0, "fine_amt", "must not be negative")

	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	fine, err := app.models.Fines.Get(r.Context(), loanID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if input.Amount != nil {
		fine.Amount = *input.Amount
	}
	if input.Paid != nil {
		fine.Paid = *input.Paid
	}

	err = app.models.Fines.Update(r.Context(), fine)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"fine": fine}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteFineHandler handles DELETE /v1/fines/:loan_id, waiving a fine.
func (app *applicationDependencies) deleteFineHandler(w http.ResponseWriter, r *http.Request) {
	loanID, err := app.readIDParam(r, "loan_id")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.models.Fines.Delete(r.Context(), loanID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "fine successfully deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
