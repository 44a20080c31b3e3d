package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sthapa66/Library-Management-Full-Stack/internal/validator"
)

// newTestApplication returns an application with a discarded log stream and
// no database. That is enough for the helpers, middleware, and every handler
// path that fails before reaching the model layer.
func newTestApplication() *applicationDependencies {
	return &applicationDependencies{
		config: serverConfig{environment: "testing"},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// paramsRequest builds a request carrying httprouter URL parameters, the way
// the router hands them to a handler.
func paramsRequest(params httprouter.Params) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	return r.WithContext(context.WithValue(r.Context(), httprouter.ParamsKey, params))
}

func TestWriteJSON(t *testing.T) {
	app := newTestApplication()
	w := httptest.NewRecorder()

	headers := http.Header{}
	headers.Set("Location", "/v1/books/123")

	err := app.writeJSON(w, http.StatusCreated, envelope{"message": "created"}, headers)
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "/v1/books/123", w.Header().Get("Location"))

	body := w.Body.String()
	assert.True(t, strings.HasSuffix(body, "\n"), "body should end with a newline")
	assert.Contains(t, body, "\t\"message\": \"created\"")
}

func TestReadJSON(t *testing.T) {
	app := newTestApplication()

	decode := func(body string) (struct {
		Title string `json:"title"`
	}, error) {
		var input struct {
			Title string `json:"title"`
		}
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		err := app.readJSON(w, r, &input)
		return input, err
	}

	t.Run("well_formed_body_decodes", func(t *testing.T) {
		input, err := decode(`{"title": "Dune"}`)
		require.NoError(t, err)
		assert.Equal(t, "Dune", input.Title)
	})

	t.Run("unknown_field_is_rejected", func(t *testing.T) {
		_, err := decode(`{"title": "Dune", "rating": 5}`)
		assert.Error(t, err)
	})

	t.Run("malformed_body_is_rejected", func(t *testing.T) {
		_, err := decode(`{"title": }`)
		assert.Error(t, err)
	})

	t.Run("second_json_value_is_rejected", func(t *testing.T) {
		_, err := decode(`{"title": "Dune"}{"title": "Messiah"}`)
		require.Error(t, err)
		assert.Equal(t, "body must only contain a single JSON value", err.Error())
	})

	t.Run("oversized_body_is_rejected", func(t *testing.T) {
		_, err := decode(`{"title": "` + strings.Repeat("a", 1_100_000) + `"}`)
		assert.Error(t, err)
	})
}

func TestReadIDParam(t *testing.T) {
	app := newTestApplication()

	tests := []struct {
		name    string
		value   string
		want    int64
		wantErr bool
	}{
		{name: "positive_integer", value: "42", want: 42},
		{name: "zero_is_invalid", value: "0", wantErr: true},
		{name: "negative_is_invalid", value: "-3", wantErr: true},
		{name: "non_numeric_is_invalid", value: "abc", wantErr: true},
		{name: "missing_is_invalid", value: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := paramsRequest(httprouter.Params{{Key: "id", Value: tt.value}})

			id, err := app.readIDParam(r, "id")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestReadISBNParam(t *testing.T) {
	app := newTestApplication()

	r := paramsRequest(httprouter.Params{{Key: "isbn", Value: "9780441013593"}})
	isbn, err := app.readISBNParam(r)
	require.NoError(t, err)
	assert.Equal(t, "9780441013593", isbn)

	r = paramsRequest(httprouter.Params{})
	_, err = app.readISBNParam(r)
	assert.Error(t, err)
}

func TestReadString(t *testing.T) {
	app := newTestApplication()
	qs := url.Values{"name": []string{"herbert"}}

	assert.Equal(t, "herbert", app.readString(qs, "name", ""))
	assert.Equal(t, "fallback", app.readString(qs, "missing", "fallback"))
}

func TestReadInt(t *testing.T) {
	app := newTestApplication()

	t.Run("parses_a_valid_integer", func(t *testing.T) {
		v := validator.New()
		got := app.readInt(url.Values{"card_id": []string{"7"}}, "card_id", 0, v)
		assert.Equal(t, 7, got)
		assert.True(t, v.Valid())
	})

	t.Run("falls_back_when_absent", func(t *testing.T) {
		v := validator.New()
		got := app.readInt(url.Values{}, "card_id", 99, v)
		assert.Equal(t, 99, got)
		assert.True(t, v.Valid())
	})

	t.Run("records_an_error_for_garbage", func(t *testing.T) {
		v := validator.New()
		got := app.readInt(url.Values{"card_id": []string{"seven"}}, "card_id", 99, v)
		assert.Equal(t, 99, got)
		assert.Equal(t, "must be an integer value", v.Errors["card_id"])
	})
}

func TestReadBool(t *testing.T) {
	app := newTestApplication()

	t.Run("absent_means_no_filter", func(t *testing.T) {
		v := validator.New()
		assert.Nil(t, app.readBool(url.Values{}, "paid", v))
		assert.True(t, v.Valid())
	})

	t.Run("parses_true_and_false", func(t *testing.T) {
		v := validator.New()

		got := app.readBool(url.Values{"paid": []string{"true"}}, "paid", v)
		require.NotNil(t, got)
		assert.True(t, *got)

		got = app.readBool(url.Values{"paid": []string{"false"}}, "paid", v)
		require.NotNil(t, got)
		assert.False(t, *got)

		assert.True(t, v.Valid())
	})

	t.Run("records_an_error_for_garbage", func(t *testing.T) {
		v := validator.New()
		got := app.readBool(url.Values{"paid": []string{"banana"}}, "paid", v)
		assert.Nil(t, got)
		assert.Equal(t, "must be a boolean value", v.Errors["paid"])
	})
}

func TestReadSearchQuery(t *testing.T) {
	app := newTestApplication()

	t.Run("absent_parameter_is_nil", func(t *testing.T) {
		assert.Nil(t, app.readSearchQuery(url.Values{}, "query"))
	})

	t.Run("present_but_empty_is_an_empty_string", func(t *testing.T) {
		qs, err := url.ParseQuery("query=")
		require.NoError(t, err)

		got := app.readSearchQuery(qs, "query")
		require.NotNil(t, got)
		assert.Equal(t, "", *got)
	})

	t.Run("present_value_is_returned", func(t *testing.T) {
		got := app.readSearchQuery(url.Values{"query": []string{"dune"}}, "query")
		require.NotNil(t, got)
		assert.Equal(t, "dune", *got)
	})
}

func TestReadFilters(t *testing.T) {
	app := newTestApplication()

	tests := []struct {
		name      string
		rawQuery  string
		wantSkip  int
		wantLimit int
		wantError string // key of the expected validation error, empty for none
	}{
		{name: "defaults", rawQuery: "", wantSkip: 0, wantLimit: 100},
		{name: "explicit_values", rawQuery: "skip=20&limit=10", wantSkip: 20, wantLimit: 10},
		{name: "negative_skip", rawQuery: "skip=-1", wantError: "skip"},
		{name: "zero_limit", rawQuery: "limit=0", wantError: "limit"},
		{name: "limit_above_maximum", rawQuery: "limit=500", wantError: "limit"},
		{name: "non_integer_skip", rawQuery: "skip=abc", wantError: "skip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qs, err := url.ParseQuery(tt.rawQuery)
			require.NoError(t, err)

			v := validator.New()
			filters := app.readFilters(qs, v)

			if tt.wantError != "" {
				assert.False(t, v.Valid())
				assert.Contains(t, v.Errors, tt.wantError)
				return
			}

			assert.True(t, v.Valid())
			assert.Equal(t, tt.wantSkip, filters.Skip)
			assert.Equal(t, tt.wantLimit, filters.Limit)
		})
	}
}
