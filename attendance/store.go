package attendance

import (
	"context"
	"errors"
	"iter"
	"strings"
	"time"
	"unicode"

	"gorm.io/gorm"

	"github.com/cppla/gymcheckin/domain"
	"github.com/cppla/gymcheckin/models"
)

const maxMemberIDLen = 64

var errSequenceConsumed = errors.New("check-in sequence already consumed")

// Precondition runs after the member is known and before the check-in row is written.
type Precondition func(ctx context.Context, memberID string) error

// Store reads and appends attendance records. It holds no state besides the shared handle.
type Store struct {
	db          *gorm.DB
	now         func() time.Time
	memberNames bool
}

// StoreOption customises a Store.
type StoreOption func(*Store)

// WithStoreClock overrides the clock used for server-assigned timestamps.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore wraps the process-wide gorm handle. Whether members carry a name column is
// resolved here once, so queries never fall back at request time.
func NewStore(db *gorm.DB, opts ...StoreOption) *Store {
	s := &Store{
		db:          db,
		now:         time.Now,
		memberNames: db.Migrator().HasColumn(&models.Member{}, "name"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MemberNames reports whether the members table has a name column.
func (s *Store) MemberNames() bool { return s.memberNames }

// NormalizeMemberID trims the raw input and rejects empty or malformed identifiers.
func NormalizeMemberID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", domain.NewValidationError("memberId", "Member ID is required.")
	}
	if len(id) > maxMemberIDLen {
		return "", domain.NewValidationError("memberId", "Member ID is too long.")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return "", domain.NewValidationError("memberId", "Member ID contains invalid characters.")
		}
	}
	return id, nil
}

// LookupMember returns the member or domain.ErrNotFound.
func (s *Store) LookupMember(ctx context.Context, memberID string) (models.Member, error) {
	var m models.Member
	q := s.db.WithContext(ctx).Model(&models.Member{})
	if !s.memberNames {
		q = q.Select("member_id")
	}
	err := q.Where("member_id = ?", memberID).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Member{}, domain.ErrNotFound
	}
	if err != nil {
		return models.Member{}, domain.NewStoreError("lookup member", err)
	}
	return m, nil
}

// RecordCheckin validates the id, checks the member exists, runs the preconditions and
// appends one record stamped with the server clock. Unknown members cause no write.
func (s *Store) RecordCheckin(ctx context.Context, rawID string, preconditions ...Precondition) (models.Member, error) {
	memberID, err := NormalizeMemberID(rawID)
	if err != nil {
		return models.Member{}, err
	}

	member, err := s.LookupMember(ctx, memberID)
	if err != nil {
		return models.Member{}, err
	}

	for _, check := range preconditions {
		if err := check(ctx, memberID); err != nil {
			return member, err
		}
	}

	record := models.Checkin{MemberID: memberID, CheckedInAt: s.now().UTC()}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return member, domain.NewStoreError("insert checkin", err)
	}
	return member, nil
}

// CountCheckins returns the exact number of records at or after since.
func (s *Store) CountCheckins(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Checkin{}).
		Where("checked_in_at >= ?", since.UTC()).
		Count(&n).Error
	if err != nil {
		return 0, domain.NewStoreError("count checkins", err)
	}
	return n, nil
}

// QueryCheckins streams records in [since, until) ordered by timestamp. The query runs when
// the sequence is first ranged over; ranging a second time yields an error.
func (s *Store) QueryCheckins(ctx context.Context, since time.Time, until *time.Time, ascending bool) iter.Seq2[models.Checkin, error] {
	consumed := false
	return func(yield func(models.Checkin, error) bool) {
		if consumed {
			yield(models.Checkin{}, errSequenceConsumed)
			return
		}
		consumed = true

		q := s.db.WithContext(ctx).Model(&models.Checkin{}).Where("checked_in_at >= ?", since.UTC())
		if until != nil {
			q = q.Where("checked_in_at < ?", until.UTC())
		}
		if ascending {
			q = q.Order("checked_in_at ASC").Order("id ASC")
		} else {
			q = q.Order("checked_in_at DESC").Order("id DESC")
		}

		rows, err := q.Rows()
		if err != nil {
			yield(models.Checkin{}, domain.NewStoreError("query checkins", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var c models.Checkin
			if err := q.ScanRows(rows, &c); err != nil {
				yield(models.Checkin{}, domain.NewStoreError("scan checkin", err))
				return
			}
			if !yield(c, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(models.Checkin{}, domain.NewStoreError("iterate checkins", err))
		}
	}
}

// LatestCheckin returns the member's newest record at or after since, or nil when there is none.
func (s *Store) LatestCheckin(ctx context.Context, memberID string, since time.Time) (*models.Checkin, error) {
	var c models.Checkin
	err := s.db.WithContext(ctx).
		Where("member_id = ? AND checked_in_at >= ?", memberID, since.UTC()).
		Order("checked_in_at DESC").
		Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewStoreError("latest checkin", err)
	}
	return &c, nil
}

// RecentCheckins returns the newest records first, with member names when the schema has them.
func (s *Store) RecentCheckins(ctx context.Context, limit int) ([]models.RecentCheckin, error) {
	rows := make([]models.RecentCheckin, 0, limit)
	q := s.db.WithContext(ctx).Table("checkins")
	if s.memberNames {
		q = q.Select("checkins.member_id AS member_id, members.name AS member_name, checkins.checked_in_at AS checked_in_at").
			Joins("LEFT JOIN members ON members.member_id = checkins.member_id")
	} else {
		q = q.Select("checkins.member_id AS member_id, checkins.checked_in_at AS checked_in_at")
	}
	err := q.Order("checkins.checked_in_at DESC").Order("checkins.id DESC").Limit(limit).Scan(&rows).Error
	if err != nil {
		return nil, domain.NewStoreError("recent checkins", err)
	}
	return rows, nil
}
