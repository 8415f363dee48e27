package main

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// queueEvent is one fake dequeued mutation fed to the consumer.
type queueEvent struct {
	qid  string
	book Book
}

// newScriptedQueuer returns a MockQueuer whose Pop replays the given
// events in order, then blocks until the context is cancelled like a
// real blocking dequeue would.
func newScriptedQueuer(events []queueEvent) *MockQueuer {
	feed := make(chan queueEvent, len(events))
	for _, e := range events {
		feed <- e
	}
	return &MockQueuer{
		PopFunc: func(ctx context.Context, qids ...string) (string, Book, error) {
			select {
			case e := <-feed:
				return e.qid, e.book, nil
			case <-ctx.Done():
				return "", Book{}, ctx.Err()
			}
		},
	}
}

// TestBoltDBConsumer ensures each mutation event is replayed on the
// replica store and that the loop exits on context cancellation.
func TestBoltDBConsumer(t *testing.T) {
	bs, err := newTestBoltStore()
	require.NoError(t, err, "failed in creating a test bolt store")
	defer bs.closeTestBoltStore()

	require.NoError(t, bs.Add(context.Background(), "b:2", Book{ID: "b:2", Title: "Old", Price: 5}))

	queue := newScriptedQueuer([]queueEvent{
		{CreateQueue, Book{ID: "b:1", Title: "Created", Price: 10}},
		{UpdateQueue, Book{ID: "b:2", Title: "Updated", Price: 15}},
		{DeleteQueue, Book{ID: "b:1"}},
		{DeleteQueue, Book{ID: "b:missing"}},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	consumer := NewBoltDBConsumer(zap.NewNop(), queue, bs)
	err = consumer.Consume(ctx, CreateQueue, UpdateQueue, DeleteQueue)
	assert.NoError(t, err)

	// the created record was replayed then removed again.
	_, err = bs.GetOne(context.Background(), "b:1")
	assert.ErrorIs(t, err, ErrBookNotFound)

	book, err := bs.GetOne(context.Background(), "b:2")
	assert.NoError(t, err)
	assert.Equal(t, "Updated", book.Title)
	assert.Equal(t, 15.0, book.Price)
}

// TestRedisQueue ensures pushed mutations come back in order with the
// queue id they were enqueued on.
func TestRedisQueue(t *testing.T) {
	addr, destroyFunc := startRedisDockerContainer(t)
	defer destroyFunc()
	queue := NewRedisQueue(redis.NewClient(&redis.Options{Addr: addr}))

	first := Book{ID: "b:1", Title: "First", Price: 10}
	second := Book{ID: "b:2", Title: "Second", Price: 20}
	require.NoError(t, queue.Push(context.Background(), CreateQueue, first))
	require.NoError(t, queue.Push(context.Background(), CreateQueue, second))
	require.NoError(t, queue.Push(context.Background(), DeleteQueue, first))

	qid, book, err := queue.Pop(context.Background(), CreateQueue, DeleteQueue)
	require.NoError(t, err)
	assert.Equal(t, CreateQueue, qid)
	assert.Equal(t, first, book)

	qid, book, err = queue.Pop(context.Background(), CreateQueue, DeleteQueue)
	require.NoError(t, err)
	assert.Equal(t, CreateQueue, qid)
	assert.Equal(t, second, book)

	qid, book, err = queue.Pop(context.Background(), CreateQueue, DeleteQueue)
	require.NoError(t, err)
	assert.Equal(t, DeleteQueue, qid)
	assert.Equal(t, first, book)
}
