package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestBookService(storage CatalogStorage, queue Queuer) BookServiceProvider {
	return NewBookService(zap.NewNop(), &Config{}, NewMockClocker(), storage, queue)
}

// TestBookServicePage ensures the page request maps onto the right
// storage window and that the metadata mirrors the catalog totals.
func TestBookServicePage(t *testing.T) {
	storage := NewFakeCatalogStorage(newTestCatalog(7))
	bs := newTestBookService(storage, NewNopQueuer())

	t.Run("first page by default", func(t *testing.T) {
		result, err := bs.Page(context.Background(), PageQuery{})
		require.NoError(t, err)
		assert.Len(t, result.Books, PageSize)
		assert.Equal(t, 1, result.CurrentPage)
		assert.Equal(t, 2, result.TotalPages)
		assert.Equal(t, 7, result.TotalBooks)
		assert.Equal(t, "b:007", result.Books[0].ID)
	})

	t.Run("second page holds the remainder", func(t *testing.T) {
		result, err := bs.Page(context.Background(), PageQuery{Page: 2})
		require.NoError(t, err)
		assert.Len(t, result.Books, 1)
		assert.Equal(t, 2, result.CurrentPage)
		assert.Equal(t, "b:001", result.Books[0].ID)
	})

	t.Run("page beyond the catalog is empty with intact metadata", func(t *testing.T) {
		result, err := bs.Page(context.Background(), PageQuery{Page: 9})
		require.NoError(t, err)
		assert.NotNil(t, result.Books)
		assert.Len(t, result.Books, 0)
		assert.Equal(t, 9, result.CurrentPage)
		assert.Equal(t, 2, result.TotalPages)
		assert.Equal(t, 7, result.TotalBooks)
	})

	t.Run("non-positive page clamps to one", func(t *testing.T) {
		result, err := bs.Page(context.Background(), PageQuery{Page: -3})
		require.NoError(t, err)
		assert.Equal(t, 1, result.CurrentPage)
		assert.Len(t, result.Books, PageSize)
	})

	t.Run("filters narrow the totals", func(t *testing.T) {
		result, err := bs.Page(context.Background(), PageQuery{Page: 1, Category: "Category 4"})
		require.NoError(t, err)
		assert.Len(t, result.Books, 1)
		assert.Equal(t, 1, result.TotalPages)
		assert.Equal(t, 1, result.TotalBooks)
	})

	t.Run("ascending sort", func(t *testing.T) {
		result, err := bs.Page(context.Background(), PageQuery{Page: 1, Sort: SortAscending})
		require.NoError(t, err)
		assert.Equal(t, "b:001", result.Books[0].ID)
	})
}

// TestBookServicePage_StorageFailure ensures storage errors bubble up.
func TestBookServicePage_StorageFailure(t *testing.T) {
	failure := errors.New("connection refused")
	storage := &MockCatalogStorage{
		ListFunc: func(ctx context.Context, spec FilterSpec, order SortOrder, skip, limit int) ([]Book, error) {
			return nil, failure
		},
	}
	bs := newTestBookService(storage, NewNopQueuer())
	_, err := bs.Page(context.Background(), PageQuery{Page: 1})
	assert.ErrorIs(t, err, failure)
}

// TestBookServiceFilterValues ensures both distinct sets are collected.
func TestBookServiceFilterValues(t *testing.T) {
	storage := NewFakeCatalogStorage([]Book{
		{ID: "b:001", Category: "Fiction", Author: "Ama Ata Aidoo"},
		{ID: "b:002", Category: "Fiction", Author: "Chinua Achebe"},
		{ID: "b:003", Category: "History", Author: "Ama Ata Aidoo"},
	})
	bs := newTestBookService(storage, NewNopQueuer())

	values, err := bs.FilterValues(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Fiction", "History"}, values.Categories)
	assert.Equal(t, []string{"Ama Ata Aidoo", "Chinua Achebe"}, values.Authors)
}

// TestBookServiceAdd ensures the record lands in storage and that the
// creation event is pushed for replication.
func TestBookServiceAdd(t *testing.T) {
	var storedID, pushedQueue string
	storage := &MockCatalogStorage{
		AddFunc: func(ctx context.Context, id string, book Book) error {
			storedID = id
			return nil
		},
	}
	queue := &MockQueuer{
		PushFunc: func(ctx context.Context, qid string, book Book) error {
			pushedQueue = qid
			return nil
		},
	}
	bs := newTestBookService(storage, queue)

	err := bs.Add(context.Background(), "b:abc", Book{ID: "b:abc", Title: "Things Fall Apart"})
	require.NoError(t, err)
	assert.Equal(t, "b:abc", storedID)
	assert.Equal(t, CreateQueue, pushedQueue)
}

// TestBookServiceAdd_QueueFailure ensures a replication push failure
// does not abort the primary write.
func TestBookServiceAdd_QueueFailure(t *testing.T) {
	storage := &MockCatalogStorage{
		AddFunc: func(ctx context.Context, id string, book Book) error {
			return nil
		},
	}
	queue := &MockQueuer{
		PushFunc: func(ctx context.Context, qid string, book Book) error {
			return errors.New("queue unavailable")
		},
	}
	bs := newTestBookService(storage, queue)
	assert.NoError(t, bs.Add(context.Background(), "b:abc", Book{ID: "b:abc"}))
}

// TestBookServiceUpdate ensures only provided fields change and the
// update timestamp moves to the mocked clock.
func TestBookServiceUpdate(t *testing.T) {
	existing := Book{
		ID:        "b:abc",
		Title:     "Old title",
		Author:    "Old author",
		Price:     10,
		Category:  "Fiction",
		CreatedAt: "2023-07-01 00:00:00 +0000 UTC",
		UpdatedAt: "2023-07-01 00:00:00 +0000 UTC",
	}
	var updated Book
	var pushedQueue string
	storage := &MockCatalogStorage{
		GetOneFunc: func(ctx context.Context, id string) (Book, error) {
			return existing, nil
		},
		UpdateFunc: func(ctx context.Context, id string, book Book) (Book, error) {
			updated = book
			return book, nil
		},
	}
	queue := &MockQueuer{
		PushFunc: func(ctx context.Context, qid string, book Book) error {
			pushedQueue = qid
			return nil
		},
	}
	bs := newTestBookService(storage, queue)

	price := 25.5
	book, err := bs.Update(context.Background(), "b:abc", &UpdateBookRequest{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 25.5, updated.Price)
	assert.Equal(t, "Old title", updated.Title)
	assert.Equal(t, "Old author", updated.Author)
	assert.Equal(t, "2023-07-01 00:00:00 +0000 UTC", updated.CreatedAt)
	assert.Equal(t, "2023-07-02 00:00:00 +0000 UTC", updated.UpdatedAt)
	assert.Equal(t, UpdateQueue, pushedQueue)
	assert.Equal(t, updated, book)
}

// TestBookServiceUpdate_NotFound ensures a missing target id surfaces
// as ErrBookNotFound without hitting the update path.
func TestBookServiceUpdate_NotFound(t *testing.T) {
	storage := &MockCatalogStorage{
		GetOneFunc: func(ctx context.Context, id string) (Book, error) {
			return Book{}, ErrBookNotFound
		},
	}
	bs := newTestBookService(storage, NewNopQueuer())

	title := "New title"
	_, err := bs.Update(context.Background(), "b:missing", &UpdateBookRequest{Title: &title})
	assert.ErrorIs(t, err, ErrBookNotFound)
}

// TestBookServiceDelete ensures the deletion event is pushed only
// after the primary removal succeeds.
func TestBookServiceDelete(t *testing.T) {
	t.Run("success pushes the deletion event", func(t *testing.T) {
		var pushedQueue string
		storage := &MockCatalogStorage{
			DeleteFunc: func(ctx context.Context, id string) error {
				return nil
			},
		}
		queue := &MockQueuer{
			PushFunc: func(ctx context.Context, qid string, book Book) error {
				pushedQueue = qid
				return nil
			},
		}
		bs := newTestBookService(storage, queue)
		require.NoError(t, bs.Delete(context.Background(), "b:abc"))
		assert.Equal(t, DeleteQueue, pushedQueue)
	})

	t.Run("miss does not push", func(t *testing.T) {
		pushed := false
		storage := &MockCatalogStorage{
			DeleteFunc: func(ctx context.Context, id string) error {
				return ErrBookNotFound
			},
		}
		queue := &MockQueuer{
			PushFunc: func(ctx context.Context, qid string, book Book) error {
				pushed = true
				return nil
			},
		}
		bs := newTestBookService(storage, queue)
		assert.ErrorIs(t, bs.Delete(context.Background(), "b:missing"), ErrBookNotFound)
		assert.False(t, pushed)
	})
}
