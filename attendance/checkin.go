package attendance

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/cppla/gymcheckin/domain"
	"github.com/cppla/gymcheckin/models"
)

// Recorder appends validated check-ins.
type Recorder interface {
	RecordCheckin(ctx context.Context, rawID string, preconditions ...Precondition) (models.Member, error)
}

// CheckinService runs the submit flow: validate, look up member, cooldown, insert.
// Lookup and insert are separate round trips; no transaction spans them.
type CheckinService struct {
	store  Recorder
	guard  *Guard
	now    func() time.Time
	logger *zap.Logger
}

// NewCheckinService wires the flow. now must be the same clock the store stamps records with.
func NewCheckinService(store Recorder, guard *Guard, now func() time.Time, logger *zap.Logger) *CheckinService {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckinService{store: store, guard: guard, now: now, logger: logger}
}

// Submit records one check-in for rawID and returns the member.
func (s *CheckinService) Submit(ctx context.Context, rawID string) (models.Member, error) {
	member, err := s.store.RecordCheckin(ctx, rawID, func(ctx context.Context, memberID string) error {
		return s.guard.Check(ctx, memberID, s.now())
	})
	if err != nil {
		var cd *domain.CooldownError
		switch {
		case errors.As(err, &cd):
			s.logger.Info("checkin rejected by cooldown",
				zap.String("member_id", cd.MemberID),
				zap.Int64("retry_after_s", cd.RetryAfterSeconds()))
		case errors.Is(err, domain.ErrStore):
			s.logger.Error("checkin failed", zap.Error(err))
		}
		return models.Member{}, err
	}

	s.logger.Info("checkin recorded", zap.String("member_id", member.MemberID))
	return member, nil
}
