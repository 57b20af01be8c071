package attendance

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cppla/gymcheckin/domain"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newCheckinService(t *testing.T, clock *manualClock) (*CheckinService, *Store) {
	t.Helper()
	db := newTestDB(t, true)
	seedMember(t, db, "GYM-001", ptr("Ada"))
	store := NewStore(db, WithStoreClock(clock.Now))
	guard := NewGuard(store, DefaultCooldown)
	return NewCheckinService(store, guard, clock.Now, zap.NewNop()), store
}

func TestCheckinService_CooldownBetweenSubmits(t *testing.T) {
	t.Parallel()

	clock := &manualClock{now: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)}
	svc, store := newCheckinService(t, clock)
	ctx := context.Background()

	member, err := svc.Submit(ctx, "GYM-001")
	require.NoError(t, err)
	assert.Equal(t, "GYM-001", member.MemberID)

	clock.Advance(12 * time.Second)
	_, err = svc.Submit(ctx, "GYM-001")

	var cd *domain.CooldownError
	require.ErrorAs(t, err, &cd)
	assert.Equal(t, int64(48), cd.RetryAfterSeconds())
	assert.Greater(t, cd.RetryAfterSeconds(), int64(0))
	assert.Less(t, cd.RetryAfterSeconds(), int64(60))

	n, err := store.CountCheckins(ctx, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	clock.Advance(DefaultCooldown)
	_, err = svc.Submit(ctx, "GYM-001")
	require.NoError(t, err)
}

func TestCheckinService_UnknownMember(t *testing.T) {
	t.Parallel()

	clock := &manualClock{now: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)}
	svc, store := newCheckinService(t, clock)
	ctx := context.Background()

	_, err := svc.Submit(ctx, "GYM-404")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	n, err := store.CountCheckins(ctx, time.Time{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCheckinService_Validation(t *testing.T) {
	t.Parallel()

	clock := &manualClock{now: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)}
	svc, _ := newCheckinService(t, clock)

	_, err := svc.Submit(context.Background(), "")

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Member ID is required.", ve.Message)
}
