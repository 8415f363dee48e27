package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestValidateCreateBookRequest ensures every required field of a
// creation payload is enforced in a stable order.
func TestValidateCreateBookRequest(t *testing.T) {
	price := 9.99
	valid := CreateBookRequest{
		Title:       "T",
		Author:      "A",
		Price:       &price,
		Description: "D",
		Category:    "C",
	}
	assert.NoError(t, ValidateCreateBookRequest(&valid))

	t.Run("each missing field has its own error", func(t *testing.T) {
		testCases := []struct {
			name   string
			mutate func(r *CreateBookRequest)
			errMsg string
		}{
			{"title", func(r *CreateBookRequest) { r.Title = "" }, "title is required"},
			{"author", func(r *CreateBookRequest) { r.Author = "" }, "author is required"},
			{"price", func(r *CreateBookRequest) { r.Price = nil }, "price is required"},
			{"description", func(r *CreateBookRequest) { r.Description = "" }, "description is required"},
			{"category", func(r *CreateBookRequest) { r.Category = "" }, "category is required"},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				req := valid
				tc.mutate(&req)
				err := ValidateCreateBookRequest(&req)
				require.Error(t, err)
				assert.Equal(t, tc.errMsg, err.Error())
			})
		}
	})

	t.Run("zero price passes", func(t *testing.T) {
		zero := 0.0
		req := valid
		req.Price = &zero
		assert.NoError(t, ValidateCreateBookRequest(&req))
	})
}

// TestApplyUpdateBookRequest ensures absent fields leave the stored
// values untouched.
func TestApplyUpdateBookRequest(t *testing.T) {
	base := Book{ID: "b:abc", Title: "Old", Author: "A", Price: 10, Category: "Fiction"}

	t.Run("all mutable fields", func(t *testing.T) {
		book := base
		title, author, price := "New", "B", 20.5
		ApplyUpdateBookRequest(&book, &UpdateBookRequest{Title: &title, Author: &author, Price: &price})
		assert.Equal(t, "New", book.Title)
		assert.Equal(t, "B", book.Author)
		assert.Equal(t, 20.5, book.Price)
		assert.Equal(t, "Fiction", book.Category)
	})

	t.Run("empty payload changes nothing", func(t *testing.T) {
		book := base
		ApplyUpdateBookRequest(&book, &UpdateBookRequest{})
		assert.Equal(t, base, book)
	})

	t.Run("single field", func(t *testing.T) {
		book := base
		price := 0.0
		ApplyUpdateBookRequest(&book, &UpdateBookRequest{Price: &price})
		assert.Equal(t, 0.0, book.Price)
		assert.Equal(t, "Old", book.Title)
	})
}

// TestDecodeRequestBody ensures decoding failures and nil bodies are reported.
func TestDecodeRequestBody(t *testing.T) {
	var req CreateBookRequest

	r := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(`{"title":"T"}`))
	require.NoError(t, DecodeRequestBody(r, &req))
	assert.Equal(t, "T", req.Title)

	r = httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(`{"title":`))
	assert.Error(t, DecodeRequestBody(r, &req))

	r = &http.Request{Body: nil}
	assert.Error(t, DecodeRequestBody(r, &req))
}

// TestGetValueFromContext ensures safe retrieval of string context values.
func TestGetValueFromContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), RequestIDContextKey, "r:abc")
	assert.Equal(t, "r:abc", GetValueFromContext(ctx, RequestIDContextKey))
	assert.Equal(t, "", GetValueFromContext(context.Background(), RequestIDContextKey))
}

// TestGetRequestSourceIP ensures the proxy headers take precedence
// over the remote address.
func TestGetRequestSourceIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/books", nil)
	r.RemoteAddr = "10.0.0.1:53000"
	assert.Equal(t, "10.0.0.1", GetRequestSourceIP(r))

	r.Header.Set("X-FORWARDED-FOR", "203.0.113.5")
	assert.Equal(t, "203.0.113.5", GetRequestSourceIP(r))

	r.Header.Set("X-REAL-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", GetRequestSourceIP(r))
}

// TestIDsHandler ensures generated ids carry the prefix and validate back.
func TestIDsHandler(t *testing.T) {
	idh := NewIDsHandler()
	bookID := idh.Generate(BookIDPrefix)
	assert.True(t, strings.HasPrefix(bookID, BookIDPrefix+":"))
	assert.True(t, idh.IsValid(bookID, BookIDPrefix))
	assert.False(t, idh.IsValid("b:not-a-uuid", BookIDPrefix))

	requestID := idh.Generate(RequestIDPrefix)
	assert.NotEqual(t, bookID, requestID)
}

// TestCustomResponseWriter ensures status recording and the abort guard.
func TestCustomResponseWriter(t *testing.T) {
	t.Run("records the status and body size", func(t *testing.T) {
		rec := httptest.NewRecorder()
		cw := NewCustomResponseWriter(rec, nil)
		cw.WriteHeader(http.StatusTeapot)
		n, err := cw.Write([]byte("hello"))
		require.NoError(t, err)
		assert.Equal(t, 5, n)
		assert.Equal(t, http.StatusTeapot, cw.Status())
		assert.Equal(t, 5, cw.Bytes())
		assert.Equal(t, http.StatusTeapot, rec.Code)
	})

	t.Run("defaults to 200 on implicit write", func(t *testing.T) {
		rec := httptest.NewRecorder()
		cw := NewCustomResponseWriter(rec, nil)
		_, err := cw.Write([]byte("ok"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, cw.Status())
	})

	t.Run("aborted requests never reach the wire", func(t *testing.T) {
		rec := httptest.NewRecorder()
		cw := NewCustomResponseWriter(rec, nil)
		cw.Header().Set("X-BCAT-ABORTED", "1")
		cw.WriteHeader(http.StatusOK)
		_, err := cw.Write([]byte("late"))
		assert.Error(t, err)
		assert.Equal(t, 0, rec.Body.Len())
	})

	t.Run("no deadline control without a connection", func(t *testing.T) {
		cw := NewCustomResponseWriter(httptest.NewRecorder(), nil)
		assert.Error(t, cw.SetWriteDeadline(NewMockClocker().Now()))
		assert.Error(t, cw.SetReadDeadline(NewMockClocker().Now()))
	})
}

// TestWriteResponse ensures the json envelope and the cancelled
// request reporting.
func TestWriteResponse(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		rec := httptest.NewRecorder()
		err := WriteResponse(context.Background(), rec, http.StatusCreated, &MessageResponse{Message: "done"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "application/json; charset=UTF-8", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"message":"done"}`, rec.Body.String())
	})

	t.Run("client gone", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		rec := httptest.NewRecorder()
		err := WriteResponse(ctx, rec, http.StatusOK, &MessageResponse{Message: "done"})
		assert.Error(t, err)
		assert.Equal(t, 499, rec.Code)
	})

	t.Run("processing timed out", func(t *testing.T) {
		ctx, cancel := context.WithDeadline(context.Background(), NewMockClocker().Now())
		defer cancel()
		rec := httptest.NewRecorder()
		err := WriteResponse(ctx, rec, http.StatusOK, &MessageResponse{Message: "done"})
		assert.Error(t, err)
		assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	})
}
