package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrCacheMiss is returned by Get when no entry exists for the given id.
var ErrCacheMiss = errors.New("store: cache entry not found")

// CacheStore is the append-only response cache contract the orchestrator
// (C7) depends on. Cache is the GORM-backed production implementation;
// tests substitute an in-memory fake.
type CacheStore interface {
	Put(ctx context.Context, kind string, payload []byte) (string, error)
	Get(ctx context.Context, id string) ([]byte, error)
}

// Cache is the append-only response cache (spec C11): every search result is
// persisted once under a fresh id and never mutated afterward.
type Cache struct {
	db *gorm.DB
}

func NewCache(db *gorm.DB) *Cache {
	return &Cache{db: db}
}

// Put stores payload under a newly minted id and returns it.
func (c *Cache) Put(ctx context.Context, kind string, payload []byte) (string, error) {
	id := uuid.NewString()
	entry := CacheEntry{ID: id, Kind: kind, Payload: payload, CreatedAt: time.Now()}
	if err := c.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return "", err
	}
	return id, nil
}

// Get retrieves a previously cached payload by id.
func (c *Cache) Get(ctx context.Context, id string) ([]byte, error) {
	var entry CacheEntry
	err := c.db.WithContext(ctx).Where("id = ?", id).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return entry.Payload, nil
}
