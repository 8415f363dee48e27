package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestMiddlewaresStacks ensures public endpoints are gated by the
// maintenance check while ops endpoints never are.
func TestMiddlewaresStacks(t *testing.T) {
	api := newTestAPIHandler(nil)
	public, ops := api.MiddlewaresStacks()
	assert.Len(t, *public, 7)
	assert.Len(t, *ops, 6)
}

// TestChain ensures middlewares wrap the handler outermost first.
func TestChain(t *testing.T) {
	var order []string
	tag := func(name string) MiddlewareFunc {
		return func(next httprouter.Handle) httprouter.Handle {
			return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
				order = append(order, name)
				next(w, r, ps)
			}
		}
	}
	m := Middlewares{tag("first"), tag("second"), tag("third")}
	handle := m.Chain(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		order = append(order, "handler")
	})

	handle(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Equal(t, []string{"first", "second", "third", "handler"}, order)
}

// TestChain_Empty ensures an empty stack passes the handler through.
func TestChain_Empty(t *testing.T) {
	called := false
	m := Middlewares{}
	handle := m.Chain(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		called = true
	})
	handle(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.True(t, called)
}

// TestRequestIDMiddleware ensures each request gets an id in context.
func TestRequestIDMiddleware(t *testing.T) {
	api := newTestAPIHandler(nil)
	var got string
	handle := api.RequestIDMiddleware(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		got = GetValueFromContext(r.Context(), RequestIDContextKey)
	})
	handle(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/books", nil), nil)
	assert.Equal(t, "r:abc", got)
}

// TestRequestsCounterMiddleware ensures the global counter moves and
// lands in the request context.
func TestRequestsCounterMiddleware(t *testing.T) {
	api := newTestAPIHandler(nil)
	var nums []uint64
	handle := api.RequestsCounterMiddleware(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		nums = append(nums, GetRequestNumberFromContext(r.Context()))
	})
	handle(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/books", nil), nil)
	handle(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/books", nil), nil)
	assert.Equal(t, []uint64{1, 2}, nums)
}

// TestStatsMiddleware ensures the final status code of each request is
// recorded into the per-code counters.
func TestStatsMiddleware(t *testing.T) {
	api := newTestAPIHandler(nil)
	handle := api.StatsMiddleware(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		w.WriteHeader(http.StatusTeapot)
	})
	handle(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/books", nil), nil)
	handle(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/books", nil), nil)

	api.stats.mu.RLock()
	defer api.stats.mu.RUnlock()
	assert.Equal(t, uint64(2), api.stats.status[http.StatusTeapot])
}

// TestCORSMiddleware ensures permissive cors headers are applied.
func TestCORSMiddleware(t *testing.T) {
	handle := CORSMiddleware(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {})
	w := httptest.NewRecorder()
	handle(w, httptest.NewRequest(http.MethodGet, "/books", nil), nil)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "DELETE")
}

// TestMaintenanceCheckMiddleware ensures the gate fences public
// traffic off only while the mode is enabled.
func TestMaintenanceCheckMiddleware(t *testing.T) {
	api := newTestAPIHandler(nil)
	called := false
	handle := api.MaintenanceCheckMiddleware(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		called = true
	})

	t.Run("mode off lets the request through", func(t *testing.T) {
		w := httptest.NewRecorder()
		handle(w, httptest.NewRequest(http.MethodGet, "/books", nil), nil)
		assert.True(t, called)
	})

	t.Run("mode on answers 503 with the operator message", func(t *testing.T) {
		called = false
		api.mode.message = "catalog reindexing in progress"
		api.mode.started = NewMockClocker().Now()
		api.mode.enabled.Store(true)

		w := httptest.NewRecorder()
		handle(w, httptest.NewRequest(http.MethodGet, "/books", nil), nil)

		assert.False(t, called)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var payload map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
		assert.Equal(t, "service currently unavailable.", payload["message"])
		assert.Equal(t, "catalog reindexing in progress", payload["reason"])
	})
}

// TestPanicRecoveryMiddleware ensures a panicking handler is turned
// into a json 500 and that the stack trace stays out of production.
func TestPanicRecoveryMiddleware(t *testing.T) {
	boom := func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		panic("boom")
	}

	t.Run("outside production the stack is included", func(t *testing.T) {
		api := newTestAPIHandler(nil)
		w := httptest.NewRecorder()
		api.PanicRecoveryMiddleware(boom)(w, httptest.NewRequest(http.MethodGet, "/books", nil), nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		var resp FailureResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, "failed to process the request.", resp.Message)
		assert.NotEmpty(t, resp.Stack)
	})

	t.Run("in production the stack is hidden", func(t *testing.T) {
		api := NewAPIHandler(
			zap.NewNop(),
			&Config{IsProduction: true},
			&Statistics{},
			NewMockClocker(),
			NewMockUIDHandler("abc", true),
			nil,
		)
		w := httptest.NewRecorder()
		api.PanicRecoveryMiddleware(boom)(w, httptest.NewRequest(http.MethodGet, "/books", nil), nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		var resp FailureResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Empty(t, resp.Stack)
	})
}
