package main

import "context"

// PageSize is the fixed number of books returned per catalog page.
// The caller cannot change it: the storefront UI renders a 2x3 grid
// and the pagination contract is built around that value.
const PageSize = 6

// Book represents a book entity.
type Book struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

// CatalogStorage defines possible operations on the books collection.
// List and Count interpret the same filter specification so a page and
// its total are derived from identical constraints. They remain two
// independent round trips to the store, so a concurrent write can
// desynchronize a page from its count.
type CatalogStorage interface {
	Add(ctx context.Context, id string, book Book) error
	GetOne(ctx context.Context, id string) (Book, error)
	Delete(ctx context.Context, id string) error
	Update(ctx context.Context, id string, book Book) (Book, error)
	List(ctx context.Context, spec FilterSpec, order SortOrder, skip, limit int) ([]Book, error)
	Count(ctx context.Context, spec FilterSpec) (int, error)
	Distinct(ctx context.Context, field Field) ([]string, error)
}
