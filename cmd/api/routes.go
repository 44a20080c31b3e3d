// cmd/api/routes.go
package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// routes registers all HTTP endpoints and returns the configured router wrapped
// in the application middleware.
//
// Middleware chain (outermost → innermost):
//
//	recoverPanic → requestID → rateLimit → router
//
// A single-book GET is intentionally absent: books are looked up through the
// search endpoint, and httprouter cannot register a ":isbn" wildcard next to
// the static "search" segment in the same method tree anyway.
func (app *applicationDependencies) routes() http.Handler {
	router := httprouter.New()

	// Override the default httprouter error handlers to return JSON responses.
	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthcheckHandler)

	// Books: keyword search (the catalog view) plus the record-keeping CRUD.
	router.HandlerFunc(http.MethodGet, "/v1/books/search", app.searchBooksHandler)
	router.HandlerFunc(http.MethodGet, "/v1/books", app.listBooksHandler)
	router.HandlerFunc(http.MethodPost, "/v1/books", app.createBookHandler)
	router.HandlerFunc(http.MethodPatch, "/v1/books/:isbn", app.updateBookHandler)
	router.HandlerFunc(http.MethodDelete, "/v1/books/:isbn", app.deleteBookHandler)

	// Authors
	router.HandlerFunc(http.MethodPost, "/v1/authors", app.createAuthorHandler)
	router.HandlerFunc(http.MethodGet, "/v1/authors", app.listAuthorsHandler)
	router.HandlerFunc(http.MethodGet, "/v1/authors/:id", app.showAuthorHandler)
	router.HandlerFunc(http.MethodPatch, "/v1/authors/:id", app.updateAuthorHandler)
	router.HandlerFunc(http.MethodDelete, "/v1/authors/:id", app.deleteAuthorHandler)

	// Borrowers
	router.HandlerFunc(http.MethodPost, "/v1/borrowers", app.createBorrowerHandler)
	router.HandlerFunc(http.MethodGet, "/v1/borrowers", app.listBorrowersHandler)
	router.HandlerFunc(http.MethodGet, "/v1/borrowers/:card_id", app.showBorrowerHandler)
	router.HandlerFunc(http.MethodPatch, "/v1/borrowers/:card_id", app.updateBorrowerHandler)
	router.HandlerFunc(http.MethodDelete, "/v1/borrowers/:card_id", app.deleteBorrowerHandler)

	// Loans: checkout, listing with filters, return, administrative correction.
	router.HandlerFunc(http.MethodPost, "/v1/loans", app.createLoanHandler)
	router.HandlerFunc(http.MethodGet, "/v1/loans", app.listLoansHandler)
	router.HandlerFunc(http.MethodGet, "/v1/loans/:id", app.showLoanHandler)
	router.HandlerFunc(http.MethodPatch, "/v1/loans/:id", app.updateLoanHandler)
	router.HandlerFunc(http.MethodPatch, "/v1/loans/:id/return", app.returnLoanHandler)
	router.HandlerFunc(http.MethodDelete, "/v1/loans/:id", app.deleteLoanHandler)

	// Fines: keyed by loan, settled through the pay endpoint.
	router.HandlerFunc(http.MethodPost, "/v1/fines", app.createFineHandler)
	router.HandlerFunc(http.MethodGet, "/v1/fines", app.listFinesHandler)
	router.HandlerFunc(http.MethodGet, "/v1/fines/:loan_id", app.showFineHandler)
	router.HandlerFunc(http.MethodPatch, "/v1/fines/:loan_id", app.updateFineHandler)
	router.HandlerFunc(http.MethodPatch, "/v1/fines/:loan_id/pay", app.payFineHandler)
	router.HandlerFunc(http.MethodDelete, "/v1/fines/:loan_id", app.deleteFineHandler)

	// Wrap with middleware: recoverPanic is outermost so it catches panics
	// from the other middleware and the router alike.
	return app.recoverPanic(app.requestID(app.rateLimit(router)))
}
