package service

import (
	"context"
	"time"

	"github.com/tutorpilot/tutorpilot/internal/cache"
	"github.com/tutorpilot/tutorpilot/internal/config"
	"github.com/tutorpilot/tutorpilot/internal/domain/lesson"
	"github.com/tutorpilot/tutorpilot/internal/domain/payment"
	"github.com/tutorpilot/tutorpilot/internal/domain/student"
	"github.com/tutorpilot/tutorpilot/internal/logger"
	"github.com/tutorpilot/tutorpilot/internal/types"
)

// ServiceParams bundles the dependencies shared by all services.
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     types.TxRunner
	Cache  cache.Cache

	// Clock supplies the current time; nil means time.Now. Injected so the
	// time-dependent rules stay deterministic under test.
	Clock func() time.Time

	LessonRepo  lesson.Repository
	PaymentRepo payment.Repository
	StudentRepo student.Repository
}

func (p ServiceParams) now() time.Time {
	if p.Clock != nil {
		return p.Clock().UTC()
	}
	return time.Now().UTC()
}

// lockLesson serializes flag writes to one lesson. Must run inside a
// transaction; the lock is held until commit.
func (p ServiceParams) lockLesson(ctx context.Context, lessonID string) error {
	locker, ok := p.DB.(types.AdvisoryLocker)
	if !ok {
		return nil
	}
	key := types.GenerateLockKey(types.LockScopeLesson, map[string]interface{}{
		"lesson_id": lessonID,
	})
	return locker.LockKey(ctx, key)
}

// lockSchedule serializes conflict checks against concurrent lesson writes
// over the shared calendar. Must run inside a transaction.
func (p ServiceParams) lockSchedule(ctx context.Context) error {
	locker, ok := p.DB.(types.AdvisoryLocker)
	if !ok {
		return nil
	}
	return locker.LockKey(ctx, types.GenerateLockKey(types.LockScopeSchedule, nil))
}
