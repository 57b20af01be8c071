package attendance

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cppla/gymcheckin/domain"
	"github.com/cppla/gymcheckin/models"
)

// DefaultCooldown is the minimum interval between two check-ins of one member.
const DefaultCooldown = 60 * time.Second

// LatestFinder finds a member's newest check-in in a window.
type LatestFinder interface {
	LatestCheckin(ctx context.Context, memberID string, since time.Time) (*models.Checkin, error)
}

// ClaimStore is the subset of the redis client used for atomic cooldown claims.
type ClaimStore interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	PTTL(ctx context.Context, key string) *redis.DurationCmd
}

// Guard rejects check-ins that arrive within the cooldown interval of the previous one.
//
// The store lookup followed by the insert is a read-then-write: two concurrent submissions
// for one member can both pass. When a ClaimStore is configured the first submission also
// claims a key with SET NX, which closes that window across processes.
type Guard struct {
	store    LatestFinder
	interval time.Duration
	claims   ClaimStore
	logger   *zap.Logger
}

// GuardOption customises a Guard.
type GuardOption func(*Guard)

// WithClaimStore enables the atomic redis claim.
func WithClaimStore(cs ClaimStore) GuardOption {
	return func(g *Guard) { g.claims = cs }
}

// WithGuardLogger sets the logger used for fail-open warnings.
func WithGuardLogger(l *zap.Logger) GuardOption {
	return func(g *Guard) { g.logger = l }
}

// NewGuard creates a Guard. A non-positive interval disables the check.
func NewGuard(store LatestFinder, interval time.Duration, opts ...GuardOption) *Guard {
	g := &Guard{store: store, interval: interval, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Interval returns the configured cooldown.
func (g *Guard) Interval() time.Duration { return g.interval }

// Check fails with *domain.CooldownError when memberID checked in after now-interval.
func (g *Guard) Check(ctx context.Context, memberID string, now time.Time) error {
	if g.interval <= 0 {
		return nil
	}

	last, err := g.store.LatestCheckin(ctx, memberID, now.Add(-g.interval))
	if err != nil {
		return err
	}
	if last != nil {
		return cooldownError(memberID, last.CheckedInAt.Add(g.interval).Sub(now))
	}

	if g.claims == nil {
		return nil
	}
	key := "checkin:cooldown:" + memberID
	ok, err := g.claims.SetNX(ctx, key, now.UnixMilli(), g.interval).Result()
	if err != nil {
		// fail-open: the store check above already ran
		g.logger.Warn("cooldown claim failed", zap.String("member_id", memberID), zap.Error(err))
		return nil
	}
	if ok {
		return nil
	}
	ttl, err := g.claims.PTTL(ctx, key).Result()
	if err != nil || ttl <= 0 {
		ttl = g.interval
	}
	return cooldownError(memberID, ttl)
}

// cooldownError floors the wait to whole seconds. Anything under a second reports 1s.
func cooldownError(memberID string, remaining time.Duration) error {
	remaining = remaining.Truncate(time.Second)
	if remaining < time.Second {
		remaining = time.Second
	}
	return &domain.CooldownError{MemberID: memberID, Remaining: remaining}
}
