package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// HBooks is the redis hash holding the whole catalog, keyed by book id.
const HBooks string = "books"

type redisCatalogStorage struct {
	logger *zap.Logger
	client *redis.Client
}

// NewRedisCatalogStorage provides an instance of redis-based catalog storage.
func NewRedisCatalogStorage(logger *zap.Logger, client *redis.Client) CatalogStorage {
	return &redisCatalogStorage{
		logger: logger,
		client: client,
	}
}

// GetRedisClient provides a ready to use redis client.
func GetRedisClient(config *Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", config.Redis.Host, config.Redis.Port),
		DialTimeout:  config.Redis.DialTimeout,
		ReadTimeout:  config.Redis.ReadTimeout,
		WriteTimeout: config.Redis.WriteTimeout,
		PoolSize:     config.Redis.PoolSize,
		PoolTimeout:  config.Redis.PoolTimeout,
		Password:     config.Redis.Password,
		Username:     config.Redis.Username,
		DB:           config.Redis.DatabaseIndex,
	})

	// test connection.
	if pong, err := client.Ping(context.Background()).Result(); pong != "PONG" || err != nil {
		return client, fmt.Errorf("test connection failed: %v", err)
	}
	return client, nil
}

// Add inserts a new book record.
func (rs *redisCatalogStorage) Add(ctx context.Context, id string, book Book) error {
	bookBytes, err := json.Marshal(book)
	if err != nil {
		return err
	}
	return rs.client.HSet(ctx, HBooks, id, bookBytes).Err()
}

// GetOne retrieves a book record based on its ID.
func (rs *redisCatalogStorage) GetOne(ctx context.Context, id string) (Book, error) {
	var book Book
	bookJSONString, err := rs.client.HGet(ctx, HBooks, id).Result()
	if err == redis.Nil {
		return book, ErrBookNotFound
	}
	if err != nil {
		return book, err
	}
	err = json.Unmarshal([]byte(bookJSONString), &book)
	return book, err
}

// Delete removes a book record based on its ID. The HDEL reply tells
// how many fields were removed, so a miss surfaces as a distinct
// not-found outcome rather than a silent no-op.
func (rs *redisCatalogStorage) Delete(ctx context.Context, id string) error {
	removed, err := rs.client.HDel(ctx, HBooks, id).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return ErrBookNotFound
	}
	return nil
}

// Update replaces existing book record data in place.
func (rs *redisCatalogStorage) Update(ctx context.Context, id string, book Book) (Book, error) {
	bookBytes, err := json.Marshal(book)
	if err != nil {
		return book, err
	}
	err = rs.client.HSet(ctx, HBooks, id, bookBytes).Err()
	return book, err
}

// getAll scans the catalog hash and decodes every stored record. The
// filter specification is interpreted on the scanned records since a
// redis hash offers no server-side predicates. The catalog stays small
// enough for that trade-off.
func (rs *redisCatalogStorage) getAll(ctx context.Context) ([]Book, error) {
	mapBooks, err := rs.client.HVals(ctx, HBooks).Result()
	if err != nil {
		return nil, err
	}
	books := []Book{}
	for _, bookJSONString := range mapBooks {
		var book Book
		if err = json.Unmarshal([]byte(bookJSONString), &book); err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, nil
}

// List retrieves an ordered window of the books matching the spec.
func (rs *redisCatalogStorage) List(ctx context.Context, spec FilterSpec, order SortOrder, skip, limit int) ([]Book, error) {
	books, err := rs.getAll(ctx)
	if err != nil {
		return nil, err
	}
	return SelectPage(books, spec, order, skip, limit), nil
}

// Count returns the number of books matching the spec.
func (rs *redisCatalogStorage) Count(ctx context.Context, spec FilterSpec) (int, error) {
	books, err := rs.getAll(ctx)
	if err != nil {
		return 0, err
	}
	return CountMatching(books, spec), nil
}

// Distinct enumerates the unique values of a field across the catalog.
func (rs *redisCatalogStorage) Distinct(ctx context.Context, field Field) ([]string, error) {
	books, err := rs.getAll(ctx)
	if err != nil {
		return nil, err
	}
	return DistinctValues(books, field), nil
}
