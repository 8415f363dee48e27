package main

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"strings"
)

var ErrBookNotFound = errors.New("book not found")

type (
	ContextKey        string
	missingFieldError string
)

const (
	BookIDPrefix            string     = "b"
	RequestIDPrefix         string     = "r"
	RequestIDContextKey     ContextKey = "request.id"
	RequestNumberContextKey ContextKey = "request.number"
	ConnContextKey          ContextKey = "http-conn"
)

func (m missingFieldError) Error() string {
	return string(m) + " is required"
}

// CreateBookRequest is the payload of a book creation call. Price is
// a pointer so a missing field can be told apart from a zero price.
type CreateBookRequest struct {
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Price       *float64 `json:"price"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
}

// UpdateBookRequest is the payload of a partial book update. Only
// title, author and price are mutable through the contract; absent
// fields leave the stored values untouched.
type UpdateBookRequest struct {
	Title  *string  `json:"title"`
	Author *string  `json:"author"`
	Price  *float64 `json:"price"`
}

// GetValueFromContext returns the value of a given key in the context
// if this key is not available, it returns an empty string.
func GetValueFromContext(ctx context.Context, contextKey ContextKey) string {
	if val := ctx.Value(contextKey); val != nil {
		return val.(string)
	}
	return ""
}

// GetRequestNumberFromContext returns the request number set in
// the context. if not previously set then it returns 0.
func GetRequestNumberFromContext(ctx context.Context) uint64 {
	if val := ctx.Value(RequestNumberContextKey); val != nil {
		return val.(uint64)
	}
	return 0
}

// DecodeRequestBody is a helper function to read the json content of a book creation or update request.
func DecodeRequestBody(r *http.Request, into interface{}) error {
	if r.Body == nil {
		return errors.New("invalid request body")
	}
	return json.NewDecoder(r.Body).Decode(into)
}

// ValidateCreateBookRequest checks that all required fields of a book creation request are present.
func ValidateCreateBookRequest(req *CreateBookRequest) error {
	if len(req.Title) == 0 {
		return missingFieldError("title")
	}

	if len(req.Author) == 0 {
		return missingFieldError("author")
	}

	if req.Price == nil {
		return missingFieldError("price")
	}

	if len(req.Description) == 0 {
		return missingFieldError("description")
	}

	if len(req.Category) == 0 {
		return missingFieldError("category")
	}

	return nil
}

// ApplyUpdateBookRequest overwrites the mutable fields of a book with
// the values carried by a partial update request.
func ApplyUpdateBookRequest(book *Book, req *UpdateBookRequest) {
	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Author != nil {
		book.Author = *req.Author
	}
	if req.Price != nil {
		book.Price = *req.Price
	}
}

// GetRequestSourceIP helps find the source IP of the caller.
func GetRequestSourceIP(r *http.Request) string {
	// Get IP from the X-REAL-IP header
	ip := r.Header.Get("X-REAL-IP")
	netIP := net.ParseIP(ip)
	if netIP != nil {
		return ip
	}

	// Get IP from X-FORWARDED-FOR header
	ips := r.Header.Get("X-FORWARDED-FOR")
	splitIps := strings.Split(ips, ",")
	for _, ip := range splitIps {
		netIP = net.ParseIP(ip)
		if netIP != nil {
			return ip
		}
	}

	// Get IP from RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return ""
	}
	netIP = net.ParseIP(ip)
	if netIP != nil {
		return ip
	}
	return ""
}

// IsAppRunningInDocker checks the existence of the .dockerenv
// file at the root directory and returns a boolean result. This
// helps know if the App is running in a docker container or not.
func IsAppRunningInDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}

// SaveConnInContext is the hook used by the server under ConnContext.
// It sets the underlying connection into the request context for later
// use by ReadDeadline or WriteDeadline method on *CustomResponseWriter.
func SaveConnInContext(ctx context.Context, c net.Conn) context.Context {
	return context.WithValue(ctx, ConnContextKey, c)
}

// GetConnFromContext returns the connection saved into the context.
// It returns nil when no connection was recorded, which is the case
// for requests forged with httptest during unit testing.
func GetConnFromContext(ctx context.Context) net.Conn {
	conn, _ := ctx.Value(ConnContextKey).(net.Conn)
	return conn
}
