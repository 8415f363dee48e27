package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// ListBooks serves one page of the catalog. The page number defaults
// to 1 when absent or unparsable, never rejects. A page beyond the
// last one yields an empty list with correct metadata.
//
//nolint:bodyclose
func (api *APIHandler) ListBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	// listing scans the whole catalog, give the response write a longer deadline.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Now().Add(api.config.Server.LongRequestWriteTimeout)); err != nil {
		api.logger.Error("http: failed to update the write deadline", zap.String("request.id", requestID), zap.Error(err))
	}

	q := r.URL.Query()
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	result, err := api.bookService.Page(r.Context(), PageQuery{
		Page:     page,
		Title:    q.Get("title"),
		Category: q.Get("category"),
		Author:   q.Get("author"),
		Sort:     ParseSortOrder(q.Get("sort")),
	})
	if err != nil {
		api.logger.Error("failed to list books", zap.String("request.id", requestID), zap.Error(err))
		if err = WriteResponse(r.Context(), w, http.StatusInternalServerError, &ErrorResponse{Message: "Error fetching books"}); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	api.logger.Info("success to list books",
		zap.String("request.id", requestID),
		zap.Int("page", result.CurrentPage),
		zap.Int("total", result.TotalBooks),
	)
	resp := &ListBooksResponse{
		Books:       result.Books,
		TotalPages:  result.TotalPages,
		CurrentPage: result.CurrentPage,
		TotalBooks:  result.TotalBooks,
	}
	if err = WriteResponse(r.Context(), w, http.StatusOK, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// GetFilters serves the distinct category and author values used to
// populate the storefront filter dropdowns.
func (api *APIHandler) GetFilters(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	values, err := api.bookService.FilterValues(r.Context())
	if err != nil {
		api.logger.Error("failed to get filters values", zap.String("request.id", requestID), zap.Error(err))
		if err = WriteResponse(r.Context(), w, http.StatusInternalServerError, &ErrorResponse{Message: "Error fetching filters"}); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	api.logger.Info("success to get filters values", zap.String("request.id", requestID))
	resp := &FiltersResponse{Categories: values.Categories, Authors: values.Authors}
	if err = WriteResponse(r.Context(), w, http.StatusOK, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

func (api *APIHandler) CreateBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req CreateBookRequest
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	err := DecodeRequestBody(r, &req)
	if err != nil {
		api.logger.Error("failed to create book", zap.String("request.id", requestID), zap.Error(err))
		if err = WriteResponse(r.Context(), w, http.StatusBadRequest, &ErrorResponse{Message: "Failed to add book", Details: "invalid request body"}); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	err = ValidateCreateBookRequest(&req)
	if err != nil {
		api.logger.Error("failed to create book", zap.String("request.id", requestID), zap.Error(err))
		if err = WriteResponse(r.Context(), w, http.StatusBadRequest, &ErrorResponse{Message: "Failed to add book", Details: err.Error()}); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	now := api.clock.Now().UTC().String()
	book := Book{
		ID:          api.idsHandler.Generate(BookIDPrefix),
		Title:       req.Title,
		Author:      req.Author,
		Price:       *req.Price,
		Description: req.Description,
		Category:    req.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = api.bookService.Add(r.Context(), book.ID, book)
	if err != nil {
		api.logger.Error("failed to create book", zap.String("request.id", requestID), zap.Error(err))
		if err = WriteResponse(r.Context(), w, http.StatusInternalServerError, &ErrorResponse{Message: "Failed to add book"}); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	api.logger.Info("success to create book", zap.String("book.id", book.ID), zap.String("request.id", requestID))
	resp := &BookResponse{Message: "Book added successfully", Book: book}
	if err = WriteResponse(r.Context(), w, http.StatusCreated, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

func (api *APIHandler) UpdateBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req UpdateBookRequest
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	id := ps.ByName("id")
	err := DecodeRequestBody(r, &req)
	if err != nil {
		api.logger.Error("failed to update book", zap.String("book.id", id), zap.String("request.id", requestID), zap.Error(err))
		if err = WriteResponse(r.Context(), w, http.StatusBadRequest, &ErrorResponse{Message: "Failed to update book", Details: "invalid request body"}); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	book, err := api.bookService.Update(r.Context(), id, &req)
	if errors.Is(err, ErrBookNotFound) {
		api.logger.Error("book does not exist", zap.String("book.id", id), zap.String("request.id", requestID))
		if err = WriteResponse(r.Context(), w, http.StatusNotFound, &MessageResponse{Message: "Book not found"}); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	if err != nil {
		api.logger.Error("failed to update book", zap.String("book.id", id), zap.String("request.id", requestID), zap.Error(err))
		if err = WriteResponse(r.Context(), w, http.StatusInternalServerError, &ErrorResponse{Message: "Failed to update book"}); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	api.logger.Info("success to update book", zap.String("book.id", id), zap.String("request.id", requestID))
	resp := &BookResponse{Message: "Book updated successfully", Book: book}
	if err = WriteResponse(r.Context(), w, http.StatusOK, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

func (api *APIHandler) DeleteBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	id := ps.ByName("id")
	err := api.bookService.Delete(r.Context(), id)
	if errors.Is(err, ErrBookNotFound) {
		api.logger.Error("book does not exist", zap.String("book.id", id), zap.String("request.id", requestID))
		if err = WriteResponse(r.Context(), w, http.StatusNotFound, &MessageResponse{Message: "Book not found"}); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	if err != nil {
		api.logger.Error("failed to delete book", zap.String("book.id", id), zap.String("request.id", requestID), zap.Error(err))
		if err = WriteResponse(r.Context(), w, http.StatusInternalServerError, &ErrorResponse{Message: "Failed to delete book"}); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	api.logger.Info("success to delete book", zap.String("book.id", id), zap.String("request.id", requestID))
	if err = WriteResponse(r.Context(), w, http.StatusOK, &MessageResponse{Message: "Book deleted successfully"}); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}
