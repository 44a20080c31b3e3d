// cmd/api/helpers.go
// This file contains general-purpose helper functions for the application.
// Error-response helpers live in errors.go; only non-error utilities are here.
package main

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/julienschmidt/httprouter"

	"github.com/sthapa66/Library-Management-Full-Stack/internal/data"
	"github.com/sthapa66/Library-Management-Full-Stack/internal/validator"
)

// json is a drop-in replacement for encoding/json backed by json-iterator.
// It keeps the standard library's semantics (field tags, unknown-field
// checks, MarshalIndent) while decoding request bodies faster.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// envelope is the top-level JSON wrapper type used for all API responses.
// Every response body is a JSON object with at least one named key,
// e.g. {"book": {...}} or {"data": [...], "count": 3}.
type envelope map[string]any

// readIDParam extracts and validates a numeric URL parameter added by
// httprouter, e.g. ":id" or ":loan_id". Returns an error if the value is
// missing, non-numeric, or less than 1.
func (app *applicationDependencies) readIDParam(r *http.Request, name string) (int64, error) {
	params := httprouter.ParamsFromContext(r.Context())
	id, err := strconv.ParseInt(params.ByName(name), 10, 64)
	if err != nil || id < 1 {
		return 0, errors.New("invalid " + name + " parameter")
	}
	return id, nil
}

// readISBNParam extracts the ":isbn" URL parameter. ISBNs are opaque strings,
// so the only invalid value is an empty one.
func (app *applicationDependencies) readISBNParam(r *http.Request) (string, error) {
	params := httprouter.ParamsFromContext(r.Context())
	isbn := params.ByName("isbn")
	if isbn == "" {
		return "", errors.New("invalid isbn parameter")
	}
	return isbn, nil
}

// readString reads a string query parameter from qs, returning defaultValue
// if the key is absent or empty.
func (app *applicationDependencies) readString(qs url.Values, key, defaultValue string) string {
	s := qs.Get(key)
	if s == "" {
		return defaultValue
	}
	return s
}

// readInt reads an integer query parameter from qs, returning defaultValue if
// the key is absent. A value that cannot be parsed as an integer is recorded
// as a validation error.
func (app *applicationDependencies) readInt(qs url.Values, key string, defaultValue int, v *validator.Validator) int {
	s := qs.Get(key)
	if s == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		v.AddError(key, "must be an integer value")
		return defaultValue
	}
	return i
}

// readBool reads an optional boolean query parameter from qs. It returns nil
// when the key is absent, so callers can tell "not filtered" apart from
// "filtered to false". A value that is not a boolean is recorded as a
// validation error.
func (app *applicationDependencies) readBool(qs url.Values, key string, v *validator.Validator) *bool {
	s := qs.Get(key)
	if s == "" {
		return nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		v.AddError(key, "must be a boolean value")
		return nil
	}
	return &b
}

// readSearchQuery returns nil when the query parameter is absent from the
// URL, and a pointer to its (possibly empty) value when present. An absent
// parameter skips keyword filtering entirely; a present-but-empty value runs
// the filter with an empty keyword, which also matches every row.
func (app *applicationDependencies) readSearchQuery(qs url.Values, key string) *string {
	if !qs.Has(key) {
		return nil
	}
	value := qs.Get(key)
	return &value
}

// readFilters reads the shared skip/limit pagination parameters and validates
// their ranges.
func (app *applicationDependencies) readFilters(qs url.Values, v *validator.Validator) data.Filters {
	filters := data.Filters{
		Skip:  app.readInt(qs, "skip", 0, v),
		Limit: app.readInt(qs, "limit", 100, v),
	}
	data.ValidateFilters(v, filters)
	return filters
}

// writeJSON marshals data to indented JSON, applies any custom headers,
// sets Content-Type to "application/json", writes the status code, and
// streams the body to the client.
func (app *applicationDependencies) writeJSON(w http.ResponseWriter, status int, data envelope, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n') // Trailing newline makes curl output nicer.

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)
	return nil
}

// readJSON decodes a single JSON value from the request body into dst.
// It enforces a 1 MB size limit, rejects unknown fields, and ensures the
// body contains exactly one JSON value (no trailing data).
func (app *applicationDependencies) readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	// Cap the request body to 1 MB to prevent large-payload attacks.
	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields() // Reject fields not present in dst.

	err := dec.Decode(dst)
	if err != nil {
		return err
	}

	// Ensure there is no second JSON value in the body.
	err = dec.Decode(&struct{}{})
	if err != io.EOF {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}
