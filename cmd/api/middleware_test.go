package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestID(t *testing.T) {
	app := newTestApplication()

	t.Run("generates_an_id_when_none_is_supplied", func(t *testing.T) {
		var seenInContext string
		handler := app.requestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seenInContext, _ = r.Context().Value(requestIDContextKey).(string)
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		id := w.Header().Get("X-Request-ID")
		require.NotEmpty(t, id)
		_, err := uuid.Parse(id)
		assert.NoError(t, err, "generated IDs should be UUIDs")

		assert.Equal(t, id, seenInContext, "the context and the response header should carry the same ID")
	})

	t.Run("honors_an_incoming_id", func(t *testing.T) {
		handler := app.requestID(okHandler())

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-Request-ID", "upstream-id-123")

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Equal(t, "upstream-id-123", w.Header().Get("X-Request-ID"))
	})
}

func TestRateLimit(t *testing.T) {
	app := newTestApplication()
	handler := app.rateLimit(okHandler())

	send := func(remoteAddr string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = remoteAddr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w
	}

	t.Run("allows_bursts_up_to_four_requests", func(t *testing.T) {
		for i := 1; i <= 4; i++ {
			w := send("10.0.0.1:5000")
			assert.Equal(t, http.StatusOK, w.Code, "request %d should be allowed", i)
		}

		w := send("10.0.0.1:5000")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)

		var body struct {
			Error string `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "rate limit exceeded", body.Error)
	})

	t.Run("limits_each_ip_independently", func(t *testing.T) {
		// The first IP's bucket is empty; a new IP still gets through.
		w := send("10.0.0.2:5000")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects_an_unparseable_remote_address", func(t *testing.T) {
		w := send("no-port-here")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestRecoverPanic(t *testing.T) {
	app := newTestApplication()
	handler := app.recoverPanic(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("something went wrong")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "close", w.Header().Get("Connection"))

	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "the server encountered a problem and could not process your request", body.Error)
}
