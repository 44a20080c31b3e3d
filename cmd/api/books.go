// cmd/api/books.go
// HTTP handlers for the books resource: the catalog search plus the
// create-with-author, update, and delete workflows.
package main

import (
	"errors"
	"net/http"

	"github.com/sthapa66/Library-Management-Full-Stack/internal/data"
	"github.com/sthapa66/Library-Management-Full-Stack/internal/validator"
)

// searchBooksHandler handles GET /v1/books/search.
// It returns one page of books matching the keyword, each with its aggregated
// author list and current IN/OUT availability, plus the total match count.
// When the query parameter is absent the whole catalog matches.
func (app *applicationDependencies) searchBooksHandler(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	v := validator.New()

	query := app.readSearchQuery(qs, "query")
	filters := app.readFilters(qs, v)

	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	results, count, err := app.models.Books.Search(r.Context(), query, filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"data": results, "count": count}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// listBooksHandler handles GET /v1/books.
// It returns one page of plain book records (no author aggregation) plus the
// total number of books on file.
func (app *applicationDependencies) listBooksHandler(w http.ResponseWriter, r *http.Request) {
	v := validator.New()
	filters := app.readFilters(r.URL.Query(), v)

	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	books, count, err := app.models.Books.GetAll(r.Context(), filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"data": books, "count": count}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// createBookHandler handles POST /v1/books.
// It creates a book together with its author in one transaction. The author
// is reused when one with exactly the given name already exists. Responds
// 400 when a book with the same ISBN is already on file.
func (app *applicationDependencies) createBookHandler(w http.ResponseWriter, r *http.Request) {
	var input data.CreateBookInput

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(input.ISBN != "", "isbn", "must be provided")
	v.Check(len(input.ISBN) <= 255, "isbn", "must not be more than 255 characters long")
	v.Check(input.Title != "", "title", "must be provided")
	v.Check(len(input.Title) <= 255, "title", "must not be more than 255 characters long")
	v.Check(input.AuthorName != "", "author_name", "must be provided")
	v.Check(len(input.AuthorName) <= 255, "author_name", "must not be more than 255 characters long")

	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	book := &data.Book{
		ISBN:  input.ISBN,
		Title: input.Title,
	}

	err = app.models.Books.InsertWithAuthor(r.Context(), book, input.AuthorName)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrDuplicateISBN):
			app.badRequestResponse(w, r, errors.New("a book with this ISBN already exists"))
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"book": book}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateBookHandler handles PATCH /v1/books/:isbn.
// It applies a partial update to the book's title. The ISBN is the primary
// key and cannot be changed. Responds 404 if the book does not exist.
func (app *applicationDependencies) updateBookHandler(w http.ResponseWriter, r *http.Request) {
	isbn, err := app.readISBNParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input data.UpdateBookInput
	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	book, err := app.models.Books.Get(r.Context(), isbn)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	// Apply only the fields that were actually provided in the request body.
	if input.Title != nil {
		book.Title = *input.Title
	}

	v := validator.New()
	v.Check(book.Title != "", "title", "must be provided")
	v.Check(len(book.Title) <= 255, "title", "must not be more than 255 characters long")

	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	err = app.models.Books.Update(r.Context(), book)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"book": book}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteBookHandler handles DELETE /v1/books/:isbn.
// It removes the book and responds with the deleted record. Responds 404 if
// no such book exists and 409 if loan history still references it.
func (app *applicationDependencies) deleteBookHandler(w http.ResponseWriter, r *http.Request) {
	isbn, err := app.readISBNParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	book, err := app.models.Books.Delete(r.Context(), isbn)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, data.ErrRecordInUse):
			app.conflictResponse(w, r, "the book cannot be deleted while loan records reference it")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"book": book}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
