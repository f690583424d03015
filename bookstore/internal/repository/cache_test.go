package repository

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/bookstore/bookstore/internal/model"
	"github.com/Astemirdum/bookstore/pkg/circuit_breaker"
)

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	fail bool
	gets int
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.fail {
		return nil, errors.New("redis down")
	}
	v, ok := m.data[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return v, nil
}

func (m *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memCache) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, _ := strconv.ParseInt(string(m.data[key]), 10, 64)
	n++
	m.data[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

type countingBooks struct {
	BookRepository
	books  map[uuid.UUID]model.BookDetails
	reads  int
	getAll int
}

func (c *countingBooks) GetByID(_ context.Context, id uuid.UUID) (model.BookDetails, error) {
	c.reads++
	b, ok := c.books[id]
	if !ok {
		return model.BookDetails{}, errors.New("not found")
	}
	return b, nil
}

func (c *countingBooks) GetAll(context.Context) ([]model.BookDetails, error) {
	c.getAll++
	res := make([]model.BookDetails, 0, len(c.books))
	for _, b := range c.books {
		res = append(res, b)
	}
	return res, nil
}

func (c *countingBooks) Update(_ context.Context, b model.Book) error {
	d := c.books[b.ID]
	d.Book = b
	c.books[b.ID] = d
	return nil
}

type nopAuthors struct{ AuthorRepository }

func (nopAuthors) Delete(context.Context, uuid.UUID) error { return nil }

func newCachedRepo(t *testing.T, cache Cache) (*Repository, *countingBooks, model.Book) {
	t.Helper()
	book := model.Book{ID: uuid.New(), Title: "Dune", Price: decimal.NewFromFloat(9.99), AuthorID: uuid.New(), CategoryID: uuid.New()}
	inner := &countingBooks{books: map[uuid.UUID]model.BookDetails{
		book.ID: {Book: book, Author: model.Author{ID: book.AuthorID, Name: "Frank"}},
	}}
	repo := WithCache(&Repository{Books: inner, Authors: nopAuthors{}}, cache, time.Minute, zap.NewNop())
	return repo, inner, book
}

func TestCachedBooks_ReadThrough(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, inner, book := newCachedRepo(t, newMemCache())

	for i := 0; i < 3; i++ {
		got, err := repo.Books.GetByID(ctx, book.ID)
		require.NoError(t, err)
		require.Equal(t, "Dune", got.Title)
		require.Equal(t, "Frank", got.Author.Name)
		require.True(t, book.Price.Equal(got.Price))
	}
	require.Equal(t, 1, inner.reads)

	for i := 0; i < 2; i++ {
		all, err := repo.Books.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
	}
	require.Equal(t, 1, inner.getAll)
}

func TestCachedBooks_InvalidateOnWrite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, inner, book := newCachedRepo(t, newMemCache())

	_, err := repo.Books.GetByID(ctx, book.ID)
	require.NoError(t, err)

	book.Title = "Dune Messiah"
	require.NoError(t, repo.Books.Update(ctx, book))

	got, err := repo.Books.GetByID(ctx, book.ID)
	require.NoError(t, err)
	require.Equal(t, "Dune Messiah", got.Title)
	require.Equal(t, 2, inner.reads)

	require.NoError(t, repo.Authors.Delete(ctx, book.AuthorID))
	_, err = repo.Books.GetByID(ctx, book.ID)
	require.NoError(t, err)
	require.Equal(t, 3, inner.reads)
}

func TestCachedBooks_CacheDown(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cache := newMemCache()
	cache.fail = true
	repo, inner, book := newCachedRepo(t, cache)

	for i := 0; i < 2; i++ {
		_, err := repo.Books.GetByID(ctx, book.ID)
		require.NoError(t, err)
	}
	require.Equal(t, 2, inner.reads)
}

func TestGuardedCache(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mem := newMemCache()
	cache := NewGuardedCache(mem, circuit_breaker.Config{Window: 2, Ratio: 1, Cooldown: time.Hour, Probes: 1})

	for i := 0; i < 5; i++ {
		_, err := cache.Get(ctx, "missing")
		require.ErrorIs(t, err, ErrCacheMiss)
	}

	mem.fail = true
	for i := 0; i < 2; i++ {
		_, err := cache.Get(ctx, "k")
		require.Error(t, err)
	}
	_, err := cache.Get(ctx, "k")
	require.ErrorIs(t, err, circuit_breaker.ErrOpen)
	require.ErrorIs(t, cache.Set(ctx, "k", []byte("v"), time.Minute), circuit_breaker.ErrOpen)
	require.Equal(t, 7, mem.gets)

	n, err := cache.Incr(ctx, catalogGenerationKey)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestCachedBooks_BreakerOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mem := newMemCache()
	mem.fail = true
	guarded := NewGuardedCache(mem, circuit_breaker.Config{Window: 1, Ratio: 1, Cooldown: time.Hour, Probes: 1})
	repo, inner, book := newCachedRepo(t, guarded)

	for i := 0; i < 4; i++ {
		_, err := repo.Books.GetByID(ctx, book.ID)
		require.NoError(t, err)
	}
	require.Equal(t, 4, inner.reads)
	require.Equal(t, 1, mem.gets)
}
