// cmd/api/borrowers.go
// HTTP handlers for the borrowers resource. Borrower profiles are entirely
// optional fields around a database-assigned card number.
package main

import (
	"errors"
	"net/http"

	"github.com/sthapa66/Library-Management-Full-Stack/internal/data"
	"github.com/sthapa66/Library-Management-Full-Stack/internal/validator"
)

// validateBorrowerFields records a validation error for any provided profile
// field that exceeds its column width. Absent (nil) fields are fine.
func validateBorrowerFields(v *validator.Validator, ssn, name, address, phone *string) {
	v.Check(ssn == nil || len(*ssn) <= 255, "ssn", "must not be more than 255 characters long")
	v.Check(name == nil || len(*name) <= 255, "bname", "must not be more than 255 characters long")
	v.Check(address == nil || len(*address) <= 255, "address", "must not be more than 255 characters long")
	v.Check(phone == nil || len(*phone) <= 255, "phone", "must not be more than 255 characters long")
}

// createBorrowerHandler handles POST /v1/borrowers.
// Every profile field is optional; the response carries the assigned card number.
func (app *applicationDependencies) createBorrowerHandler(w http.ResponseWriter, r *http.Request) {
	var input data.CreateBorrowerInput

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	validateBorrowerFields(v, input.SSN, input.Name, input.Address, input.Phone)

	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	borrower := &data.Borrower{
		SSN:     input.SSN,
		Name:    input.Name,
		Address: input.Address,
		Phone:   input.Phone,
	}

	err = app.models.Borrowers.Insert(r.Context(), borrower)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"borrower": borrower}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// listBorrowersHandler handles GET /v1/borrowers.
// Supports a case-insensitive name substring filter and an exact SSN filter.
func (app *applicationDependencies) listBorrowersHandler(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	v := validator.New()

	name := app.readString(qs, "name", "")
	ssn := app.readString(qs, "ssn", "")
	filters := app.readFilters(qs, v)

	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	borrowers, count, err := app.models.Borrowers.GetAll(r.Context(), name, ssn, filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"data": borrowers, "count": count}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showBorrowerHandler handles GET /v1/borrowers/:card_id.
func (app *applicationDependencies) showBorrowerHandler(w http.ResponseWriter, r *http.Request) {
	cardID, err := app.readIDParam(r, "card_id")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	borrower, err := app.models.Borrowers.Get(r.Context(), cardID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"borrower": borrower}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateBorrowerHandler handles PATCH /v1/borrowers/:card_id.
// Only the fields present in the body are changed.
func (app *applicationDependencies) updateBorrowerHandler(w http.ResponseWriter, r *http.Request) {
	cardID, err := app.readIDParam(r, "card_id")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input data.UpdateBorrowerInput
	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	validateBorrowerFields(v, input.SSN, input.Name, input.Address, input.Phone)

	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	borrower, err := app.models.Borrowers.Get(r.Context(), cardID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if input.SSN != nil {
		borrower.SSN = input.SSN
	}
	if input.Name != nil {
		borrower.Name = input.Name
	}
	if input.Address != nil {
		borrower.Address = input.Address
	}
	if input.Phone != nil {
		borrower.Phone = input.Phone
	}

	err = app.models.Borrowers.Update(r.Context(), borrower)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"borrower": borrower}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteBorrowerHandler handles DELETE /v1/borrowers/:card_id.
// Responds 409 if the borrower still has loan history on file.
func (app *applicationDependencies) deleteBorrowerHandler(w http.ResponseWriter, r *http.Request) {
	cardID, err := app.readIDParam(r, "card_id")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.models.Borrowers.Delete(r.Context(), cardID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, data.ErrRecordInUse):
			app.conflictResponse(w, r, "the borrower cannot be deleted while loan records reference them")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "borrower successfully deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
