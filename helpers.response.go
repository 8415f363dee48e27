package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// CustomResponseWriter is a wrapper for http.ResponseWriter. It is
// used to record response details like status code and body size.
// The underlying network connection is tracked for dynamic read/write
// deadline setup.
type CustomResponseWriter struct {
	http.ResponseWriter
	conn  net.Conn
	code  int
	bytes int
	wrote bool
}

// NewCustomResponseWriter provides CustomResponseWriter with 200 as status code.
func NewCustomResponseWriter(rw http.ResponseWriter, c net.Conn) *CustomResponseWriter {
	return &CustomResponseWriter{
		ResponseWriter: rw,
		conn:           c,
		code:           200,
	}
}

// Header implements http.Header interface.
func (cw *CustomResponseWriter) Header() http.Header {
	return cw.ResponseWriter.Header()
}

// WriteHeader implements http.WriteHeader interface.
func (cw *CustomResponseWriter) WriteHeader(code int) {
	if cw.Header().Get("X-BCAT-ABORTED") != "" {
		cw.code = code
		cw.wrote = true
		return
	}

	if !cw.wrote {
		cw.code = code
		cw.wrote = true
		cw.ResponseWriter.WriteHeader(code)
	}
}

// Write implements http.Write interface. If the header X-BCAT-ABORTED was set
// that means the timeout middleware was already triggered so the final handler
// should not send any response to client.
func (cw *CustomResponseWriter) Write(bytes []byte) (int, error) {
	if cw.Header().Get("X-BCAT-ABORTED") != "" {
		return 0, fmt.Errorf("handler: request timed out or cancelled")
	}

	if !cw.wrote {
		cw.WriteHeader(cw.code)
	}

	n, err := cw.ResponseWriter.Write(bytes)
	cw.bytes += n
	return n, err
}

// Status returns the written status code.
func (cw *CustomResponseWriter) Status() int {
	return cw.code
}

// Bytes returns bytes written as response body.
func (cw *CustomResponseWriter) Bytes() int {
	return cw.bytes
}

// Unwrap returns native response writer and used by
// the http.ResponseController during its operation.
func (cw *CustomResponseWriter) Unwrap() http.ResponseWriter {
	return cw.ResponseWriter
}

// SetWriteDeadline rewrites the underlying connection write deadline.
// This is called by http.ResponseController SetWriteDeadline method.
func (cw *CustomResponseWriter) SetWriteDeadline(t time.Time) error {
	if cw.conn == nil {
		return fmt.Errorf("response writer: no underlying connection")
	}
	return cw.conn.SetWriteDeadline(t)
}

// SetReadDeadline rewrites the underlying connection read deadline.
// This is called by http.ResponseController SetReadDeadline method.
func (cw *CustomResponseWriter) SetReadDeadline(t time.Time) error {
	if cw.conn == nil {
		return fmt.Errorf("response writer: no underlying connection")
	}
	return cw.conn.SetReadDeadline(t)
}

// ListBooksResponse is the data model sent for a catalog page request.
type ListBooksResponse struct {
	Books       []Book `json:"books"`
	TotalPages  int    `json:"totalPages"`
	CurrentPage int    `json:"currentPage"`
	TotalBooks  int    `json:"totalBooks"`
}

// FiltersResponse carries the distinct values used to populate the
// filter dropdowns of the storefront.
type FiltersResponse struct {
	Categories []string `json:"categories"`
	Authors    []string `json:"authors"`
}

// BookResponse is the data model sent when a mutation succeeds.
type BookResponse struct {
	Message string `json:"message"`
	Book    Book   `json:"book"`
}

// MessageResponse is the data model sent when an operation outcome
// carries no record, like a deletion or a not-found miss.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the data model sent when a request fails. Details
// holds the human-readable cause when one is safe to share.
type ErrorResponse struct {
	Message string `json:"message"`
	Details string `json:"error,omitempty"`
}

// FailureResponse is the data model sent by the catch-all recovery
// boundary. The stack is only populated outside production.
type FailureResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// StatusResponse is the data model sent when status endpoint is called.
type StatusResponse struct {
	RequestID string `json:"requestid"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

// WriteResponse is used to send a json response to client with the given status
// code. In case the client closes the request, it reports the Nginx non standard
// status code 499 (Client Closed Request). This means the timeout middleware
// already kicked-in and did send the response. In case of request processing
// timeout we set the status code to 504 which will be used to log the stats.
func WriteResponse(ctx context.Context, w http.ResponseWriter, status int, payload interface{}) error {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			w.WriteHeader(http.StatusGatewayTimeout)
		} else {
			w.WriteHeader(499)
		}
		return ctx.Err()
	}
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(payload)
}
