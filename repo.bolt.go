package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/boltdb/bolt"
	"go.uber.org/zap"
)

type boltCatalogStorage struct {
	logger *zap.Logger
	client *bolt.DB
	config *BoltDBConfig
}

// GetBoltDBClient setup the database and the bucket then provides a ready to use client.
func GetBoltDBClient(config *Config) (*bolt.DB, error) {
	db, err := bolt.Open(config.BoltDB.FilePath, 0o600, &bolt.Options{Timeout: config.BoltDB.Timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open the database, %v", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, errB := tx.CreateBucketIfNotExists([]byte(config.BoltDB.BucketName)); errB != nil {
			return fmt.Errorf("failed to create %s bucket: %v", config.BoltDB.BucketName, errB)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up bucket: %v", err)
	}
	return db, nil
}

// NewBoltCatalogStorage provides an instance of bolt-based catalog storage.
func NewBoltCatalogStorage(logger *zap.Logger, boltConfig *BoltDBConfig, client *bolt.DB) CatalogStorage {
	return &boltCatalogStorage{
		logger: logger,
		client: client,
		config: boltConfig,
	}
}

// Close shuts down the bolt-based catalog storage.
func (bs *boltCatalogStorage) Close() error {
	return bs.client.Close()
}

// Add inserts a new book record into the boltdb store.
func (bs *boltCatalogStorage) Add(_ context.Context, id string, book Book) error {
	bookBytes, err := json.Marshal(book)
	if err != nil {
		return err
	}
	err = bs.client.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bs.config.BucketName)).Put([]byte(id), bookBytes)
	})
	return err
}

// GetOne retrieves a book record based on its ID from the boltdb store.
func (bs *boltCatalogStorage) GetOne(_ context.Context, id string) (Book, error) {
	var book Book
	// initialize a readable transaction.
	tx, err := bs.client.Begin(false)
	if err != nil {
		return book, err
	}
	defer tx.Rollback()

	result := tx.Bucket([]byte(bs.config.BucketName)).Get([]byte(id))
	if result == nil {
		return book, ErrBookNotFound
	}
	err = json.Unmarshal(result, &book)
	return book, err
}

// Delete removes a book record based on its ID from the boltdb store.
func (bs *boltCatalogStorage) Delete(_ context.Context, id string) error {
	return bs.client.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bs.config.BucketName))
		if b.Get([]byte(id)) == nil {
			return ErrBookNotFound
		}
		return b.Delete([]byte(id))
	})
}

// Update replaces existing book record data in place.
func (bs *boltCatalogStorage) Update(_ context.Context, id string, book Book) (Book, error) {
	bookBytes, err := json.Marshal(book)
	if err != nil {
		return book, err
	}
	err = bs.client.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bs.config.BucketName)).Put([]byte(id), bookBytes)
	})
	return book, err
}

// getAll retrieves every book stored in the bolt bucket. Like the
// redis store, filtering happens on the scanned records.
func (bs *boltCatalogStorage) getAll(_ context.Context) ([]Book, error) {
	tx, err := bs.client.Begin(false)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Create a cursor on the books' bucket.
	c := tx.Bucket([]byte(bs.config.BucketName)).Cursor()

	books := []Book{}
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var book Book
		if err = json.Unmarshal(v, &book); err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, nil
}

// List retrieves an ordered window of the books matching the spec.
func (bs *boltCatalogStorage) List(ctx context.Context, spec FilterSpec, order SortOrder, skip, limit int) ([]Book, error) {
	books, err := bs.getAll(ctx)
	if err != nil {
		return nil, err
	}
	return SelectPage(books, spec, order, skip, limit), nil
}

// Count returns the number of books matching the spec.
func (bs *boltCatalogStorage) Count(ctx context.Context, spec FilterSpec) (int, error) {
	books, err := bs.getAll(ctx)
	if err != nil {
		return 0, err
	}
	return CountMatching(books, spec), nil
}

// Distinct enumerates the unique values of a field across the catalog.
func (bs *boltCatalogStorage) Distinct(ctx context.Context, field Field) ([]string, error) {
	books, err := bs.getAll(ctx)
	if err != nil {
		return nil, err
	}
	return DistinctValues(books, field), nil
}
