package service

import (
	"context"
	"errors"

	"github.com/yndnr/hashguard/internal/core/domain"
	"github.com/yndnr/hashguard/internal/telemetry/logger"
	"github.com/yndnr/hashguard/pkg/cmap"
	"github.com/yndnr/hashguard/pkg/securemap"
)

// Store is the key/value store behind CacheService. *cmap.Map[string]
// implements it.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) bool
	Count() int
	Stats() []cmap.ShardStats
	Totals() securemap.Stats
	RehashAll() error
}

// StatsReport is the store summary returned by CacheService.Stats.
type StatsReport struct {
	Totals securemap.Stats   `json:"totals"`
	Shards []cmap.ShardStats `json:"shards,omitempty"`
}

// CacheService exposes the store to the transport layers.
type CacheService struct {
	store  Store
	limits domain.Limits
}

// NewCacheService creates a CacheService.
func NewCacheService(store Store, limits domain.Limits) *CacheService {
	return &CacheService{store: store, limits: limits}
}

// Get returns the value stored under key or domain.ErrKeyNotFound.
func (s *CacheService) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := s.limits.ValidateKey(key); err != nil {
		return "", err
	}
	v, ok := s.store.Get(key)
	if !ok {
		return "", domain.ErrKeyNotFound
	}
	return v, nil
}

// Exists reports whether key is stored.
func (s *CacheService) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.Get(ctx, key)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Set stores value under key.
func (s *CacheService) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.limits.Validate(domain.Entry{Key: key, Value: value}); err != nil {
		return err
	}
	if err := s.store.Set(key, value); err != nil {
		return s.storeError(ctx, "set", err)
	}
	return nil
}

// Delete removes key. It returns domain.ErrKeyNotFound when key was absent.
func (s *CacheService) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.limits.ValidateKey(key); err != nil {
		return err
	}
	if !s.store.Delete(key) {
		return domain.ErrKeyNotFound
	}
	return nil
}

// Count returns the number of stored keys.
func (s *CacheService) Count(_ context.Context) int {
	return s.store.Count()
}

// Stats returns aggregated store statistics, with per-shard detail when
// perShard is set.
func (s *CacheService) Stats(_ context.Context, perShard bool) StatsReport {
	r := StatsReport{Totals: s.store.Totals()}
	if perShard {
		r.Shards = s.store.Stats()
	}
	return r
}

// Rehash reseeds every shard of the store.
func (s *CacheService) Rehash(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.store.RehashAll(); err != nil {
		return s.storeError(ctx, "rehash", err)
	}
	logger.L(ctx).Info("store rehashed on request")
	return nil
}

func (s *CacheService) storeError(ctx context.Context, op string, err error) error {
	if errors.Is(err, securemap.ErrEntropyUnavailable) {
		logger.L(ctx).Error("store refused to rehash without entropy", "op", op, "error", err)
		return domain.ErrEntropyUnavailable.Wrap(err)
	}
	logger.L(ctx).Error("store operation failed", "op", op, "error", err)
	return domain.ErrInternal.Wrap(err)
}
