package attendance

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cppla/gymcheckin/domain"
	"github.com/cppla/gymcheckin/models"
)

var dbSeq atomic.Int64

// newTestDB opens a private in-memory sqlite database. withNames controls whether the
// members table has the optional name column.
func newTestDB(t *testing.T, withNames bool) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:attendance_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if withNames {
		require.NoError(t, db.AutoMigrate(&models.Member{}))
	} else {
		require.NoError(t, db.Exec("CREATE TABLE members (member_id TEXT PRIMARY KEY)").Error)
	}
	require.NoError(t, db.AutoMigrate(&models.Checkin{}))
	return db
}

func seedMember(t *testing.T, db *gorm.DB, id string, name *string) {
	t.Helper()
	if name == nil {
		require.NoError(t, db.Exec("INSERT INTO members (member_id) VALUES (?)", id).Error)
		return
	}
	require.NoError(t, db.Create(&models.Member{MemberID: id, Name: name}).Error)
}

func ptr[T any](v T) *T { return &v }

// steppingClock returns base, base+step, base+2*step...
func steppingClock(base time.Time, step time.Duration) func() time.Time {
	var n atomic.Int64
	return func() time.Time {
		return base.Add(time.Duration(n.Add(1)-1) * step)
	}
}

func countRows(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Checkin{}).Count(&n).Error)
	return n
}

func TestStore_CapabilityFlag(t *testing.T) {
	t.Parallel()

	assert.True(t, NewStore(newTestDB(t, true)).MemberNames())
	assert.False(t, NewStore(newTestDB(t, false)).MemberNames())
}

func TestNormalizeMemberID(t *testing.T) {
	t.Parallel()

	id, err := NormalizeMemberID("  GYM-001 \n")
	require.NoError(t, err)
	assert.Equal(t, "GYM-001", id)

	for _, raw := range []string{"", "   ", strings.Repeat("x", maxMemberIDLen+1), "ab\x00cd"} {
		_, err := NormalizeMemberID(raw)
		assert.ErrorIs(t, err, domain.ErrValidation, "input %q", raw)
	}
}

func TestStore_RecordCheckin_UnknownMemberNoWrite(t *testing.T) {
	t.Parallel()

	db := newTestDB(t, true)
	seedMember(t, db, "GYM-001", ptr("Ada"))
	s := NewStore(db)

	for _, id := range []string{"nobody", "GYM-002", "gym-001"} {
		_, err := s.RecordCheckin(context.Background(), id)
		assert.ErrorIs(t, err, domain.ErrNotFound, "id %q", id)
	}
	assert.Zero(t, countRows(t, db))
}

func TestStore_RecordCheckin_EmptyIsValidation(t *testing.T) {
	t.Parallel()

	db := newTestDB(t, true)
	s := NewStore(db)

	_, err := s.RecordCheckin(context.Background(), "  ")

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, countRows(t, db))
}

func TestStore_RecordCheckin_Success(t *testing.T) {
	t.Parallel()

	db := newTestDB(t, true)
	seedMember(t, db, "GYM-001", ptr("Ada"))
	stamp := time.Date(2026, 10, 19, 14, 0, 0, 0, time.UTC)
	s := NewStore(db, WithStoreClock(fixedClock(stamp)))

	member, err := s.RecordCheckin(context.Background(), " GYM-001 ")

	require.NoError(t, err)
	assert.Equal(t, "Ada", member.DisplayName())

	var rec models.Checkin
	require.NoError(t, db.First(&rec).Error)
	assert.Equal(t, "GYM-001", rec.MemberID)
	assert.True(t, stamp.Equal(rec.CheckedInAt))
}

func TestStore_RecordCheckin_PreconditionBlocksWrite(t *testing.T) {
	t.Parallel()

	db := newTestDB(t, true)
	seedMember(t, db, "GYM-001", nil)
	s := NewStore(db)
	blocked := &domain.CooldownError{MemberID: "GYM-001", Remaining: 30 * time.Second}

	_, err := s.RecordCheckin(context.Background(), "GYM-001", func(_ context.Context, id string) error {
		assert.Equal(t, "GYM-001", id)
		return blocked
	})

	assert.ErrorIs(t, err, domain.ErrCooldown)
	assert.Zero(t, countRows(t, db))
}

func TestStore_CountAndQuery(t *testing.T) {
	t.Parallel()

	db := newTestDB(t, true)
	seedMember(t, db, "GYM-001", nil)
	seedMember(t, db, "GYM-002", nil)
	base := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	s := NewStore(db, WithStoreClock(steppingClock(base, time.Hour)))

	for _, id := range []string{"GYM-001", "GYM-002", "GYM-001", "GYM-002"} {
		_, err := s.RecordCheckin(context.Background(), id)
		require.NoError(t, err)
	}

	ctx := context.Background()
	n, err := s.CountCheckins(ctx, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	until := base.Add(3 * time.Hour)
	var got []time.Time
	for c, err := range s.QueryCheckins(ctx, base.Add(time.Hour), &until, true) {
		require.NoError(t, err)
		got = append(got, c.CheckedInAt.UTC())
	}
	assert.Equal(t, []time.Time{base.Add(time.Hour), base.Add(2 * time.Hour)}, got)

	got = got[:0]
	for c, err := range s.QueryCheckins(ctx, base, nil, false) {
		require.NoError(t, err)
		got = append(got, c.CheckedInAt.UTC())
	}
	require.Len(t, got, 4)
	assert.Equal(t, base.Add(3*time.Hour), got[0])
	assert.Equal(t, base, got[3])
}

func TestStore_QueryCheckins_NotRestartable(t *testing.T) {
	t.Parallel()

	db := newTestDB(t, true)
	seedMember(t, db, "GYM-001", nil)
	s := NewStore(db)
	_, err := s.RecordCheckin(context.Background(), "GYM-001")
	require.NoError(t, err)

	seq := s.QueryCheckins(context.Background(), time.Time{}, nil, true)
	first := 0
	for _, err := range seq {
		require.NoError(t, err)
		first++
	}
	assert.Equal(t, 1, first)

	var secondErr error
	for _, err := range seq {
		secondErr = err
	}
	assert.ErrorIs(t, secondErr, errSequenceConsumed)
}

func TestStore_LatestCheckin(t *testing.T) {
	t.Parallel()

	db := newTestDB(t, true)
	seedMember(t, db, "GYM-001", nil)
	base := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	s := NewStore(db, WithStoreClock(steppingClock(base, 10*time.Second)))
	ctx := context.Background()

	last, err := s.LatestCheckin(ctx, "GYM-001", base.Add(-time.Minute))
	require.NoError(t, err)
	assert.Nil(t, last)

	for i := 0; i < 3; i++ {
		_, err := s.RecordCheckin(ctx, "GYM-001")
		require.NoError(t, err)
	}

	last, err = s.LatestCheckin(ctx, "GYM-001", base)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.True(t, base.Add(20*time.Second).Equal(last.CheckedInAt))

	last, err = s.LatestCheckin(ctx, "GYM-001", base.Add(time.Minute))
	require.NoError(t, err)
	assert.Nil(t, last)
}

func TestStore_RecentCheckins_WithNames(t *testing.T) {
	t.Parallel()

	db := newTestDB(t, true)
	seedMember(t, db, "GYM-001", ptr("Ada"))
	seedMember(t, db, "GYM-002", nil)
	base := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	s := NewStore(db, WithStoreClock(steppingClock(base, time.Minute)))
	ctx := context.Background()
	for _, id := range []string{"GYM-001", "GYM-002", "GYM-001"} {
		_, err := s.RecordCheckin(ctx, id)
		require.NoError(t, err)
	}

	rows, err := s.RecentCheckins(ctx, 2)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "GYM-001", rows[0].MemberID)
	require.NotNil(t, rows[0].MemberName)
	assert.Equal(t, "Ada", *rows[0].MemberName)
	assert.Equal(t, "GYM-002", rows[1].MemberID)
	assert.Nil(t, rows[1].MemberName)
}

func TestStore_RecentCheckins_WithoutNameColumn(t *testing.T) {
	t.Parallel()

	db := newTestDB(t, false)
	seedMember(t, db, "GYM-001", nil)
	s := NewStore(db)
	ctx := context.Background()

	member, err := s.RecordCheckin(ctx, "GYM-001")
	require.NoError(t, err)
	assert.Empty(t, member.DisplayName())

	rows, err := s.RecentCheckins(ctx, 30)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "GYM-001", rows[0].MemberID)
	assert.Nil(t, rows[0].MemberName)
}
