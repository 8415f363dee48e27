package main

import (
	"context"

	"go.uber.org/zap"
)

// PageQuery carries the already validated listing criteria of one
// catalog page request.
type PageQuery struct {
	Page     int
	Title    string
	Category string
	Author   string
	Sort     SortOrder
}

// PageResult is one bounded, ordered slice of the catalog plus its
// pagination metadata.
type PageResult struct {
	Books       []Book
	TotalPages  int
	CurrentPage int
	TotalBooks  int
}

// FilterValues holds the distinct values available for the exact-match
// listing criteria.
type FilterValues struct {
	Categories []string
	Authors    []string
}

type BookServiceProvider interface {
	Page(ctx context.Context, q PageQuery) (PageResult, error)
	FilterValues(ctx context.Context) (FilterValues, error)
	Add(ctx context.Context, id string, book Book) error
	GetOne(ctx context.Context, id string) (Book, error)
	Update(ctx context.Context, id string, req *UpdateBookRequest) (Book, error)
	Delete(ctx context.Context, id string) error
}

type BookService struct {
	logger  *zap.Logger
	config  *Config
	clock   Clocker
	storage CatalogStorage
	queue   Queuer
}

func NewBookService(logger *zap.Logger, config *Config, clock Clocker, storage CatalogStorage, queue Queuer) BookServiceProvider {
	return &BookService{
		logger:  logger,
		config:  config,
		clock:   clock,
		storage: storage,
		queue:   queue,
	}
}

// Page translates the page request into a filter specification, then
// fetches the matching window and the total count. The two storage
// calls are independent round trips: a concurrent write in between can
// leave totalPages out of step with the returned slice. Accepted
// limitation of skip-based pagination without snapshot isolation.
func (bs *BookService) Page(ctx context.Context, q PageQuery) (PageResult, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	spec := BuildFilterSpec(q.Title, q.Category, q.Author)
	skip := (q.Page - 1) * PageSize

	books, err := bs.storage.List(ctx, spec, q.Sort, skip, PageSize)
	if err != nil {
		return PageResult{}, err
	}
	total, err := bs.storage.Count(ctx, spec)
	if err != nil {
		return PageResult{}, err
	}
	return PageResult{
		Books:       books,
		TotalPages:  TotalPages(total, PageSize),
		CurrentPage: q.Page,
		TotalBooks:  total,
	}, nil
}

// FilterValues enumerates the distinct categories and authors present
// across the whole catalog.
func (bs *BookService) FilterValues(ctx context.Context) (FilterValues, error) {
	categories, err := bs.storage.Distinct(ctx, FieldCategory)
	if err != nil {
		return FilterValues{}, err
	}
	authors, err := bs.storage.Distinct(ctx, FieldAuthor)
	if err != nil {
		return FilterValues{}, err
	}
	return FilterValues{Categories: categories, Authors: authors}, nil
}

func (bs *BookService) Add(ctx context.Context, id string, book Book) error {
	if err := bs.queue.Push(ctx, CreateQueue, book); err != nil {
		bs.logger.Error("service: failed to push book to queue", zap.String("qid", CreateQueue), zap.Error(err))
	}
	return bs.storage.Add(ctx, id, book)
}

func (bs *BookService) GetOne(ctx context.Context, id string) (Book, error) {
	book, err := bs.storage.GetOne(ctx, id)
	return book, err
}

// Update overwrites the mutable fields of an existing record. A miss
// on the target id surfaces as ErrBookNotFound. Last write wins, there
// is no version field guarding concurrent updates.
func (bs *BookService) Update(ctx context.Context, id string, req *UpdateBookRequest) (Book, error) {
	book, err := bs.storage.GetOne(ctx, id)
	if err != nil {
		return book, err
	}

	ApplyUpdateBookRequest(&book, req)
	book.UpdatedAt = bs.clock.Now().UTC().String()

	book, err = bs.storage.Update(ctx, id, book)
	if err != nil {
		return book, err
	}
	if err := bs.queue.Push(ctx, UpdateQueue, book); err != nil {
		bs.logger.Error("service: failed to push to queue", zap.String("qid", UpdateQueue), zap.Error(err))
	}
	return book, nil
}

func (bs *BookService) Delete(ctx context.Context, id string) error {
	if err := bs.storage.Delete(ctx, id); err != nil {
		return err
	}
	if err := bs.queue.Push(ctx, DeleteQueue, Book{ID: id}); err != nil {
		bs.logger.Error("service: failed to push to queue", zap.String("qid", DeleteQueue), zap.Error(err))
	}
	return nil
}
