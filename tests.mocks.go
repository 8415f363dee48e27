package main

import (
	"context"
	"time"
)

// This file contains mocks definitions needed to perform unit tests.

type MockCatalogStorage struct {
	AddFunc      func(ctx context.Context, id string, book Book) error
	GetOneFunc   func(ctx context.Context, id string) (Book, error)
	DeleteFunc   func(ctx context.Context, id string) error
	UpdateFunc   func(ctx context.Context, id string, book Book) (Book, error)
	ListFunc     func(ctx context.Context, spec FilterSpec, order SortOrder, skip, limit int) ([]Book, error)
	CountFunc    func(ctx context.Context, spec FilterSpec) (int, error)
	DistinctFunc func(ctx context.Context, field Field) ([]string, error)
}

// Add mocks the behavior of book creation by the repository.
func (m *MockCatalogStorage) Add(ctx context.Context, id string, book Book) error {
	return m.AddFunc(ctx, id, book)
}

// GetOne mocks the behavior of retrieving a book by the repository.
func (m *MockCatalogStorage) GetOne(ctx context.Context, id string) (Book, error) {
	return m.GetOneFunc(ctx, id)
}

// Delete mocks the behavior of deleting a book by the repository.
func (m *MockCatalogStorage) Delete(ctx context.Context, id string) error {
	return m.DeleteFunc(ctx, id)
}

// Update mocks the behavior of updating a book by the repository.
func (m *MockCatalogStorage) Update(ctx context.Context, id string, book Book) (Book, error) {
	return m.UpdateFunc(ctx, id, book)
}

// List mocks the behavior of listing a catalog page by the repository.
func (m *MockCatalogStorage) List(ctx context.Context, spec FilterSpec, order SortOrder, skip, limit int) ([]Book, error) {
	return m.ListFunc(ctx, spec, order, skip, limit)
}

// Count mocks the behavior of counting matching books by the repository.
func (m *MockCatalogStorage) Count(ctx context.Context, spec FilterSpec) (int, error) {
	return m.CountFunc(ctx, spec)
}

// Distinct mocks the behavior of enumerating distinct field values by the repository.
func (m *MockCatalogStorage) Distinct(ctx context.Context, field Field) ([]string, error) {
	return m.DistinctFunc(ctx, field)
}

// NewFakeCatalogStorage returns a MockCatalogStorage whose listing
// operations interpret the filter specification over the given fixture
// records, like a real store scan would.
func NewFakeCatalogStorage(books []Book) *MockCatalogStorage {
	return &MockCatalogStorage{
		ListFunc: func(ctx context.Context, spec FilterSpec, order SortOrder, skip, limit int) ([]Book, error) {
			return SelectPage(books, spec, order, skip, limit), nil
		},
		CountFunc: func(ctx context.Context, spec FilterSpec) (int, error) {
			return CountMatching(books, spec), nil
		},
		DistinctFunc: func(ctx context.Context, field Field) ([]string, error) {
			return DistinctValues(books, field), nil
		},
	}
}

// MockQueuer implements a fake Queuer.
type MockQueuer struct {
	PushFunc func(ctx context.Context, qid string, book Book) error
	PopFunc  func(ctx context.Context, qids ...string) (string, Book, error)
}

// Push mocks the enqueuing of a book mutation.
func (m *MockQueuer) Push(ctx context.Context, qid string, book Book) error {
	return m.PushFunc(ctx, qid, book)
}

// Pop mocks the dequeuing of a book mutation.
func (m *MockQueuer) Pop(ctx context.Context, qids ...string) (string, Book, error) {
	return m.PopFunc(ctx, qids...)
}

// NewNopQueuer returns a MockQueuer which accepts every push.
func NewNopQueuer() *MockQueuer {
	return &MockQueuer{
		PushFunc: func(ctx context.Context, qid string, book Book) error {
			return nil
		},
	}
}

// MockClocker implements a fake Clocker.
type MockClocker struct {
	MockNow time.Time
}

// NewMockClocker returns a mocked instance with fixed time.
func NewMockClocker() *MockClocker {
	return &MockClocker{time.Date(2023, 0o7, 0o2, 0o0, 0o0, 0o0, 0o00000000, time.UTC)}
}

// Now returns an already defined time to be used as mock. This
// equals to `Sun, 02 Jul 2023 00:00:00 UTC` in time.RFC1123 format.
// equals to `2023-07-02 00:00:00 +0000 UTC` in String format.
func (mck *MockClocker) Now() time.Time {
	return mck.MockNow
}

// MockUIDHandler implements a fake UIDHandler.
type MockUIDHandler struct {
	MockedUID string
	Valid     bool
}

// NewMockUIDHandler returns a mocked instance with predictable id.
func NewMockUIDHandler(id string, valid bool) *MockUIDHandler {
	return &MockUIDHandler{MockedUID: id, Valid: valid}
}

// Generate constructs a predictable id to be used as mock.
func (muid *MockUIDHandler) Generate(prefix string) string {
	return prefix + ":" + muid.MockedUID
}

// IsValid mocks IsValid behavior by providing configured status.
func (muid *MockUIDHandler) IsValid(_, _ string) bool {
	return muid.Valid
}
