package storage

import (
	"context"
	"errors"
	"time"

	"oyna-console/internal/cache"
	"oyna-console/internal/repository"
)

// CacheStore keeps entries in a cache.Cache (memory or Redis) with a
// sliding TTL refreshed on every write.
type CacheStore struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewCacheStore wraps c. ttl <= 0 keeps entries until removed.
func NewCacheStore(c cache.Cache, ttl time.Duration) *CacheStore {
	return &CacheStore{cache: c, ttl: ttl}
}

func (s *CacheStore) Get(ctx context.Context, key string) (string, bool, error) {
	data, err := s.cache.Get(ctx, key)
	if errors.Is(err, cache.ErrCacheMiss) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

func (s *CacheStore) Set(ctx context.Context, key, value string) error {
	return s.cache.Set(ctx, key, []byte(value), s.ttl)
}

func (s *CacheStore) Remove(ctx context.Context, key string) error {
	return s.cache.Delete(ctx, key)
}

// RepositoryStore keeps entries in a SQL key/value repository.
type RepositoryStore struct {
	repo repository.KeyValueRepository
	ttl  time.Duration
	now  func() time.Time
}

// NewRepositoryStore wraps repo. ttl <= 0 keeps entries until removed.
func NewRepositoryStore(repo repository.KeyValueRepository, ttl time.Duration) *RepositoryStore {
	return &RepositoryStore{repo: repo, ttl: ttl, now: time.Now}
}

func (s *RepositoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	sv, err := s.repo.Get(ctx, key, s.now())
	if err != nil || sv == nil {
		return "", false, err
	}
	return sv.Value, true, nil
}

func (s *RepositoryStore) Set(ctx context.Context, key, value string) error {
	var expiresAt time.Time
	if s.ttl > 0 {
		expiresAt = s.now().Add(s.ttl)
	}
	return s.repo.Put(ctx, key, value, expiresAt)
}

func (s *RepositoryStore) Remove(ctx context.Context, key string) error {
	return s.repo.Delete(ctx, key)
}

var (
	_ Storage = Nop{}
	_ Storage = (*CacheStore)(nil)
	_ Storage = (*RepositoryStore)(nil)
)
