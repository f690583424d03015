package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Astemirdum/bookstore/bookstore/internal/model"
	"github.com/Astemirdum/bookstore/pkg/circuit_breaker"
)

var ErrCacheMiss = errors.New("cache miss")

// Cache is the subset of a key-value store the catalog cache needs.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
}

type redisCache struct {
	rdb redis.UniversalClient
}

func NewRedisCache(rdb redis.UniversalClient) Cache {
	return &redisCache{rdb: rdb}
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return b, err
}

func (c *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

func (c *redisCache) Incr(ctx context.Context, key string) (int64, error) {
	return c.rdb.Incr(ctx, key).Result()
}

// guardedCache short-circuits calls to an unhealthy cache so reads fall
// through to postgres without waiting on cache timeouts.
type guardedCache struct {
	cache Cache
	cb    *circuit_breaker.Breaker
}

func NewGuardedCache(cache Cache, cfg circuit_breaker.Config) Cache {
	return &guardedCache{
		cache: cache,
		cb:    circuit_breaker.New(cfg, circuit_breaker.WithIgnored(ErrCacheMiss)),
	}
}

func (g *guardedCache) Get(ctx context.Context, key string) (b []byte, err error) {
	err = g.cb.Do(func() error {
		b, err = g.cache.Get(ctx, key)
		return err
	})
	return b, err
}

func (g *guardedCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return g.cb.Do(func() error {
		return g.cache.Set(ctx, key, value, ttl)
	})
}

// Incr bypasses the breaker: a dropped invalidation would leave stale projections
// readable once the cache recovers.
func (g *guardedCache) Incr(ctx context.Context, key string) (int64, error) {
	return g.cache.Incr(ctx, key)
}

const catalogGenerationKey = "bookstore:catalog:gen"

// catalogCache namespaces keys by a generation counter. Bumping the counter
// orphans every cached projection at once; orphans expire via ttl.
type catalogCache struct {
	cache Cache
	ttl   time.Duration
	log   *zap.Logger
}

func (c *catalogCache) key(ctx context.Context, suffix string) (string, error) {
	raw, err := c.cache.Get(ctx, catalogGenerationKey)
	gen := "0"
	switch {
	case err == nil:
		gen = string(raw)
	case !errors.Is(err, ErrCacheMiss):
		return "", err
	}
	return fmt.Sprintf("bookstore:catalog:%s:%s", gen, suffix), nil
}

func (c *catalogCache) load(ctx context.Context, suffix string, v any) (string, bool) {
	key, err := c.key(ctx, suffix)
	if err != nil {
		c.log.Warn("cache key", zap.Error(err))
		return "", false
	}
	raw, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.log.Warn("cache get", zap.String("key", key), zap.Error(err))
		}
		return key, false
	}
	if err = json.Unmarshal(raw, v); err != nil {
		c.log.Warn("cache decode", zap.String("key", key), zap.Error(err))
		return key, false
	}
	return key, true
}

func (c *catalogCache) store(ctx context.Context, key string, v any) {
	if key == "" {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		c.log.Warn("cache encode", zap.String("key", key), zap.Error(err))
		return
	}
	if err = c.cache.Set(ctx, key, raw, c.ttl); err != nil {
		c.log.Warn("cache set", zap.String("key", key), zap.Error(err))
	}
}

func (c *catalogCache) invalidate(ctx context.Context) {
	if _, err := c.cache.Incr(ctx, catalogGenerationKey); err != nil {
		c.log.Error("cache invalidate", zap.Error(err))
	}
}

// WithCache wraps the catalog repositories of repo with cache-aside reads of books.
// Any catalog write invalidates the cached book projections.
func WithCache(repo *Repository, cache Cache, ttl time.Duration, log *zap.Logger) *Repository {
	cc := &catalogCache{cache: cache, ttl: ttl, log: log.Named("cache")}
	return &Repository{
		Authors:    &invalidatingAuthors{AuthorRepository: repo.Authors, cc: cc},
		Categories: &invalidatingCategories{CategoryRepository: repo.Categories, cc: cc},
		Books:      &cachedBooks{BookRepository: repo.Books, cc: cc},
		Users:      repo.Users,
		Cart:       repo.Cart,
	}
}

type cachedBooks struct {
	BookRepository
	cc *catalogCache
}

func (b *cachedBooks) GetAll(ctx context.Context) ([]model.BookDetails, error) {
	var books []model.BookDetails
	key, ok := b.cc.load(ctx, "books", &books)
	if ok {
		return books, nil
	}
	books, err := b.BookRepository.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	b.cc.store(ctx, key, books)
	return books, nil
}

func (b *cachedBooks) GetByID(ctx context.Context, id uuid.UUID) (model.BookDetails, error) {
	var book model.BookDetails
	key, ok := b.cc.load(ctx, "book:"+id.String(), &book)
	if ok {
		return book, nil
	}
	book, err := b.BookRepository.GetByID(ctx, id)
	if err != nil {
		return model.BookDetails{}, err
	}
	b.cc.store(ctx, key, book)
	return book, nil
}

func (b *cachedBooks) Create(ctx context.Context, book model.Book) error {
	if err := b.BookRepository.Create(ctx, book); err != nil {
		return err
	}
	b.cc.invalidate(ctx)
	return nil
}

func (b *cachedBooks) Update(ctx context.Context, book model.Book) error {
	if err := b.BookRepository.Update(ctx, book); err != nil {
		return err
	}
	b.cc.invalidate(ctx)
	return nil
}

func (b *cachedBooks) SetImage(ctx context.Context, id uuid.UUID, imageURL *string) (*string, error) {
	prev, err := b.BookRepository.SetImage(ctx, id, imageURL)
	if err != nil {
		return nil, err
	}
	b.cc.invalidate(ctx)
	return prev, nil
}

func (b *cachedBooks) Delete(ctx context.Context, id uuid.UUID) error {
	if err := b.BookRepository.Delete(ctx, id); err != nil {
		return err
	}
	b.cc.invalidate(ctx)
	return nil
}

type invalidatingAuthors struct {
	AuthorRepository
	cc *catalogCache
}

func (a *invalidatingAuthors) Update(ctx context.Context, author model.Author) error {
	if err := a.AuthorRepository.Update(ctx, author); err != nil {
		return err
	}
	a.cc.invalidate(ctx)
	return nil
}

func (a *invalidatingAuthors) Delete(ctx context.Context, id uuid.UUID) error {
	if err := a.AuthorRepository.Delete(ctx, id); err != nil {
		return err
	}
	a.cc.invalidate(ctx)
	return nil
}

type invalidatingCategories struct {
	CategoryRepository
	cc *catalogCache
}

func (c *invalidatingCategories) Update(ctx context.Context, category model.Category) error {
	if err := c.CategoryRepository.Update(ctx, category); err != nil {
		return err
	}
	c.cc.invalidate(ctx)
	return nil
}

func (c *invalidatingCategories) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.CategoryRepository.Delete(ctx, id); err != nil {
		return err
	}
	c.cc.invalidate(ctx)
	return nil
}
