package stores

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrRefreshAbsent reports that no current refresh token exists for the
	// account: either none was ever stored or the slot's TTL elapsed. The
	// two cases are deliberately indistinguishable.
	ErrRefreshAbsent = errors.New("refresh token absent")
	// ErrRedisUnavailable wraps transport failures, including op-timeout
	// expiry. Never a verdict about the token itself.
	ErrRedisUnavailable = errors.New("refresh store unavailable")
)

// RefreshTokenStore keeps the single authoritative refresh token per
// account. One key per account id; Put overwrites unconditionally, so at
// most one refresh token is valid for an account at any time. Concurrent
// Put/Get on different accounts never interfere; same-account races resolve
// by last-write-wins, which is what makes stale-token reuse detectable.
type RefreshTokenStore struct {
	redis     redis.UniversalClient
	prefix    string
	opTimeout time.Duration
}

// NewRefreshTokenStore returns a store namespaced by prefix. Each operation
// is bounded by opTimeout on top of the caller's context.
func NewRefreshTokenStore(redisClient redis.UniversalClient, prefix string, opTimeout time.Duration) *RefreshTokenStore {
	if prefix == "" {
		prefix = "RT"
	}
	return &RefreshTokenStore{
		redis:     redisClient,
		prefix:    prefix,
		opTimeout: opTimeout,
	}
}

func (s *RefreshTokenStore) key(accountID int64) string {
	return s.prefix + ":" + strconv.FormatInt(accountID, 10)
}

func (s *RefreshTokenStore) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opTimeout)
}

// Put replaces the account's refresh token and restarts the TTL countdown.
// The replacement is atomic: a concurrent Get sees either the old value or
// the new one, never a mix.
func (s *RefreshTokenStore) Put(ctx context.Context, accountID int64, token string, ttl time.Duration) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	if err := s.redis.Set(ctx, s.key(accountID), token, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Get returns the account's current refresh token, or ErrRefreshAbsent.
func (s *RefreshTokenStore) Get(ctx context.Context, accountID int64) (string, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	val, err := s.redis.Get(ctx, s.key(accountID)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", ErrRefreshAbsent
	case err != nil:
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return val, nil
}
