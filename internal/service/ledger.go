package service

import (
	"context"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/tutorpilot/tutorpilot/internal/api/dto"
	"github.com/tutorpilot/tutorpilot/internal/cache"
	"github.com/tutorpilot/tutorpilot/internal/domain/ledger"
	"github.com/tutorpilot/tutorpilot/internal/domain/lesson"
	ierr "github.com/tutorpilot/tutorpilot/internal/errors"
	"github.com/tutorpilot/tutorpilot/internal/types"
)

// balanceSyncWorkers bounds the concurrency of a full balance resync.
const balanceSyncWorkers = 8

// LedgerService exposes student balance computation and the ledger history
// view. Balances are always recomputed from the full lesson set; the cached
// figure on the student row is a convenience, never the source of truth.
type LedgerService interface {
	GetBalance(ctx context.Context, studentID string) (*dto.BalanceResponse, error)
	GetLedger(ctx context.Context, studentID string) (*dto.LedgerResponse, error)
	SyncStudentBalance(ctx context.Context, studentID string) (ledger.Balance, error)
	SyncAllBalances(ctx context.Context) (int, error)
}

type ledgerService struct {
	ServiceParams
}

func NewLedgerService(params ServiceParams) LedgerService {
	return &ledgerService{ServiceParams: params}
}

func (s *ledgerService) GetBalance(ctx context.Context, studentID string) (*dto.BalanceResponse, error) {
	if studentID == "" {
		return nil, ierr.NewError("student id is required").
			WithHint("Please provide a valid student ID").
			Mark(ierr.ErrValidation)
	}

	if s.Cache != nil {
		if value, found := s.Cache.Get(ctx, cache.PrefixStudentBalance+studentID); found {
			if cb, ok := cache.UnmarshalCacheValue[cachedBalance](value); ok && !cb.stale(s.now()) {
				return &dto.BalanceResponse{StudentID: studentID, Balance: cb.Balance}, nil
			}
		}
	}

	bal, err := s.SyncStudentBalance(ctx, studentID)
	if err != nil {
		return nil, err
	}

	return &dto.BalanceResponse{StudentID: studentID, Balance: bal}, nil
}

func (s *ledgerService) GetLedger(ctx context.Context, studentID string) (*dto.LedgerResponse, error) {
	if _, err := s.StudentRepo.Get(ctx, studentID); err != nil {
		return nil, err
	}

	// Advance overdue lessons first so the history reflects current states.
	lessons, err := s.advanceStudentLessons(ctx, studentID)
	if err != nil {
		return nil, err
	}

	payments, err := s.PaymentRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	bal := ledger.ComputeBalance(lessons)
	if err := s.writeBalance(ctx, studentID, bal, nextDueAt(s.now(), lessons)); err != nil {
		return nil, err
	}

	return &dto.LedgerResponse{
		StudentID: studentID,
		Balance:   bal,
		Entries:   ledger.BuildHistory(lessons, payments),
	}, nil
}

// SyncStudentBalance recomputes the balance from the student's full lesson
// set and writes it back to the cached student field. Overdue lessons are
// advanced first, defensively, so a balance read never depends on the
// periodic sweep having run.
func (s *ledgerService) SyncStudentBalance(ctx context.Context, studentID string) (ledger.Balance, error) {
	if _, err := s.StudentRepo.Get(ctx, studentID); err != nil {
		return ledger.Balance{}, err
	}

	var bal ledger.Balance
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		// Serialize concurrent recomputations of the same student.
		if locker, ok := s.DB.(types.AdvisoryLocker); ok {
			key := types.GenerateLockKey(types.LockScopeStudentBalance, map[string]interface{}{
				"student_id": studentID,
			})
			if err := locker.LockKey(ctx, key); err != nil {
				return err
			}
		}

		lessons, err := s.advanceStudentLessons(ctx, studentID)
		if err != nil {
			return err
		}

		bal = ledger.ComputeBalance(lessons)
		return s.writeBalance(ctx, studentID, bal, nextDueAt(s.now(), lessons))
	})
	if err != nil {
		return ledger.Balance{}, err
	}
	return bal, nil
}

// SyncAllBalances recomputes every student's balance and returns how many
// students were synced. Used to correct any cached drift in one pass.
func (s *ledgerService) SyncAllBalances(ctx context.Context) (int, error) {
	ids, err := s.StudentRepo.ListIDs(ctx)
	if err != nil {
		return 0, err
	}

	p := pool.New().WithErrors().WithMaxGoroutines(balanceSyncWorkers)
	for _, id := range ids {
		id := id
		p.Go(func() error {
			_, err := s.SyncStudentBalance(ctx, id)
			return err
		})
	}
	if err := p.Wait(); err != nil {
		return 0, err
	}

	s.Logger.Infow("synced all student balances", "count", len(ids))
	return len(ids), nil
}

// advanceStudentLessons runs the auto-advance rule over one student's
// lessons, persists any changes, and returns the up-to-date lesson set.
func (s *ledgerService) advanceStudentLessons(ctx context.Context, studentID string) ([]*lesson.Lesson, error) {
	lessons, err := s.LessonRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	changes := lesson.Sweep(s.now(), lessons)
	if len(changes) == 0 {
		return lessons, nil
	}

	if err := applyStateChanges(ctx, s.LessonRepo, lessons, changes); err != nil {
		return nil, err
	}
	return lessons, nil
}

// cachedBalance pairs a computed balance with the moment it stops being
// trustworthy: the next time one of the student's lessons falls due and the
// auto-advance rule would move it.
type cachedBalance struct {
	Balance ledger.Balance
	StaleAt *time.Time
}

func (c cachedBalance) stale(now time.Time) bool {
	return c.StaleAt != nil && !now.Before(*c.StaleAt)
}

// nextDueAt returns the earliest future start among lessons the auto-advance
// rule will eventually move, or nil when none are pending.
func nextDueAt(now time.Time, lessons []*lesson.Lesson) *time.Time {
	var next *time.Time
	for _, l := range lessons {
		if l.State.IsCompleted() || l.State.IsTerminal() {
			continue
		}
		if !l.StartTime.After(now) {
			continue
		}
		if next == nil || l.StartTime.Before(*next) {
			t := l.StartTime
			next = &t
		}
	}
	return next
}

func (s *ledgerService) writeBalance(ctx context.Context, studentID string, bal ledger.Balance, staleAt *time.Time) error {
	if err := s.StudentRepo.UpdateBalance(ctx, studentID, bal.Balance); err != nil {
		return err
	}
	if s.Cache != nil {
		s.Cache.Set(ctx, cache.PrefixStudentBalance+studentID, cachedBalance{Balance: bal, StaleAt: staleAt}, s.Config.Cache.BalanceExpiry)
	}
	return nil
}

// invalidateBalance drops the cached balance after any lesson or payment
// mutation touching the student.
func invalidateBalance(ctx context.Context, p ServiceParams, studentID string) {
	if p.Cache != nil {
		p.Cache.Delete(ctx, cache.PrefixStudentBalance+studentID)
	}
}

// applyStateChanges persists sweep-computed state changes and mutates the
// passed lesson copies to match, so callers can keep working on a fresh view.
func applyStateChanges(ctx context.Context, repo lesson.Repository, lessons []*lesson.Lesson, changes []lesson.StateChange) error {
	byID := make(map[string]*lesson.Lesson, len(lessons))
	for _, l := range lessons {
		byID[l.ID] = l
	}

	for _, ch := range changes {
		l, ok := byID[ch.LessonID]
		if !ok {
			continue
		}
		l.State = ch.NewState
		if _, err := repo.Update(ctx, l); err != nil {
			return err
		}
	}
	return nil
}
