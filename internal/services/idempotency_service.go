package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/xevon/studio-backend/internal/repo"
)

// Idempotency scopes, one per replayable write.
const (
	ScopeChat    = "chat"
	ScopeOrders  = "orders"
	ScopeReviews = "reviews"
)

// IdempotencyService remembers which resource an Idempotency-Key produced
// so a retried write can be answered with the original result.
type IdempotencyService struct {
	DB  *gorm.DB
	TTL time.Duration
}

// NewIdempotencyService constructs an IdempotencyService; ttl <= 0 means 24h.
func NewIdempotencyService(db *gorm.DB, ttl time.Duration) *IdempotencyService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyService{DB: db, TTL: ttl}
}

// Lookup returns the resource id recorded for key, if still valid.
func (s *IdempotencyService) Lookup(ctx context.Context, visitorID, scope, key string) (string, bool, error) {
	rec, err := repo.GetIdempotency(ctx, s.DB, visitorID, scope, key, time.Now().UTC())
	if errors.Is(err, repo.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return rec.ResourceID, true, nil
}

// Remember records that key produced resourceID. A concurrent writer that
// already recorded the key wins.
func (s *IdempotencyService) Remember(ctx context.Context, visitorID, scope, key, resourceID string, status int) error {
	_, err := repo.CreateIdempotency(ctx, s.DB, visitorID, scope, key, resourceID, status, s.TTL)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil
	}
	return err
}

// Purge deletes expired records.
func (s *IdempotencyService) Purge(ctx context.Context) (int64, error) {
	return repo.PurgeExpiredIdempotency(ctx, s.DB, time.Now().UTC())
}
