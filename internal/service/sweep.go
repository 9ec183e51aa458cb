package service

import (
	"context"

	"github.com/samber/lo"

	"github.com/tutorpilot/tutorpilot/internal/api/dto"
	"github.com/tutorpilot/tutorpilot/internal/domain/lesson"
)

// SweepService advances lessons whose scheduled time has passed: prepaid
// lessons become completed, unpaid ones become debt. Safe to re-run on a
// schedule or on demand; a second run over the same data changes nothing.
type SweepService interface {
	Run(ctx context.Context) (*dto.SweepResponse, error)
}

type sweepService struct {
	ServiceParams
	ledger LedgerService
}

func NewSweepService(params ServiceParams) SweepService {
	return &sweepService{
		ServiceParams: params,
		ledger:        NewLedgerService(params),
	}
}

func (s *sweepService) Run(ctx context.Context) (*dto.SweepResponse, error) {
	now := s.now()

	due, err := s.LessonRepo.ListDue(ctx, now)
	if err != nil {
		return nil, err
	}

	changes := lesson.Sweep(now, due)
	if len(changes) == 0 {
		return &dto.SweepResponse{RanAt: now, Changes: []lesson.StateChange{}}, nil
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		return applyStateChanges(ctx, s.LessonRepo, due, changes)
	})
	if err != nil {
		return nil, err
	}

	// Resync each affected student once, however many lessons advanced.
	studentIDs := lo.Uniq(lo.Map(changes, func(ch lesson.StateChange, _ int) string {
		return ch.StudentID
	}))
	for _, id := range studentIDs {
		if _, err := s.ledger.SyncStudentBalance(ctx, id); err != nil {
			return nil, err
		}
	}

	s.Logger.Infow("auto-advance sweep completed",
		"ran_at", now,
		"advanced", len(changes),
		"students", len(studentIDs),
	)

	return &dto.SweepResponse{
		RanAt:         now,
		AdvancedCount: len(changes),
		Changes:       changes,
	}, nil
}
