package main

import (
	"github.com/julienschmidt/httprouter"
)

// SetupBookRoutes injects the catalog related api endpoints. There is
// no GET by id route: the storefront only consumes paginated listings,
// which also keeps `/books/filters` free of a wildcard conflict.
func (api *APIHandler) SetupBookRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.RedirectTrailingSlash = true
	router.GET("/", m.public(api.Index))
	router.GET("/status", m.public(api.Status))
	router.GET("/books", m.public(api.ListBooks))
	router.GET("/books/filters", m.public(api.GetFilters))
	router.POST("/books", m.public(api.CreateBook))
	router.PUT("/books/:id", m.public(api.UpdateBook))
	router.DELETE("/books/:id", m.public(api.DeleteBook))
	return router
}
