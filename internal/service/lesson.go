package service

import (
	"context"

	"github.com/samber/lo"

	"github.com/tutorpilot/tutorpilot/internal/api/dto"
	"github.com/tutorpilot/tutorpilot/internal/domain/lesson"
	"github.com/tutorpilot/tutorpilot/internal/domain/schedule"
	ierr "github.com/tutorpilot/tutorpilot/internal/errors"
	"github.com/tutorpilot/tutorpilot/internal/types"
)

// LessonService manages the lesson lifecycle: creation behind the conflict
// detector, flag transitions behind the transition rules, and cancellation
// behind the refund policy.
type LessonService interface {
	CreateLesson(ctx context.Context, req *dto.CreateLessonRequest) (*dto.LessonResponse, error)
	GetLesson(ctx context.Context, id string) (*dto.LessonResponse, error)
	ListLessons(ctx context.Context, filter *types.LessonFilter) (*dto.ListLessonsResponse, error)
	UpdateLesson(ctx context.Context, id string, req *dto.UpdateLessonRequest) (*dto.LessonResponse, error)
	CompleteLesson(ctx context.Context, id string) (*dto.LessonResponse, error)
	CancelLesson(ctx context.Context, id string) (*dto.CancelLessonResponse, error)
	DeleteLesson(ctx context.Context, id string) error
}

type lessonService struct {
	ServiceParams
	ledger LedgerService
}

func NewLessonService(params ServiceParams) LessonService {
	return &lessonService{
		ServiceParams: params,
		ledger:        NewLedgerService(params),
	}
}

func (s *lessonService) CreateLesson(ctx context.Context, req *dto.CreateLessonRequest) (*dto.LessonResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.StudentRepo.Get(ctx, req.StudentID); err != nil {
		return nil, err
	}

	l := req.ToLesson(ctx)
	if err := l.Validate(); err != nil {
		return nil, err
	}

	candidate := schedule.Slot{Start: l.StartTime, End: l.EndTime}

	var created *lesson.Lesson
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		// Snapshot the occupied calendar inside the creating transaction,
		// under the same schedule lock the bulk path takes, so two creates
		// over the same window cannot both pass the conflict check.
		if err := s.lockSchedule(ctx); err != nil {
			return err
		}
		existing, err := s.LessonRepo.ListOverlapping(ctx, l.StartTime, l.EffectiveEnd())
		if err != nil {
			return err
		}
		if res := schedule.FindConflicts(candidate, existing); res.HasConflict {
			return scheduleConflictError(res.ConflictingLessons)
		}

		created, err = s.LessonRepo.Create(ctx, l)
		return err
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.ledger.SyncStudentBalance(ctx, created.StudentID); err != nil {
		return nil, err
	}

	s.Logger.Infow("created lesson",
		"lesson_id", created.ID,
		"student_id", created.StudentID,
		"start_time", created.StartTime,
		"state", created.State,
	)

	return &dto.LessonResponse{Lesson: created}, nil
}

func (s *lessonService) GetLesson(ctx context.Context, id string) (*dto.LessonResponse, error) {
	if id == "" {
		return nil, ierr.NewError("lesson id is required").
			WithHint("Please provide a valid lesson ID").
			Mark(ierr.ErrValidation)
	}

	l, err := s.LessonRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.LessonResponse{Lesson: l}, nil
}

func (s *lessonService) ListLessons(ctx context.Context, filter *types.LessonFilter) (*dto.ListLessonsResponse, error) {
	if filter == nil {
		filter = &types.LessonFilter{}
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}

	lessons, err := s.LessonRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.LessonRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &dto.ListLessonsResponse{
		Items: lo.Map(lessons, func(l *lesson.Lesson, _ int) *dto.LessonResponse {
			return &dto.LessonResponse{Lesson: l}
		}),
		Pagination: types.PaginationResponse{
			Limit:  filter.GetLimit(),
			Offset: filter.GetOffset(),
			Total:  total,
		},
	}, nil
}

func (s *lessonService) UpdateLesson(ctx context.Context, id string, req *dto.UpdateLessonRequest) (*dto.LessonResponse, error) {
	change := req.ToChange()

	// Cancellation goes through the refund policy, not a bare flag write.
	if change.Cancelled != nil && *change.Cancelled {
		resp, err := s.CancelLesson(ctx, id)
		if err != nil {
			return nil, err
		}
		return resp.Lesson, nil
	}

	// Read, validate and write in one transaction under a per-lesson lock
	// so the transition is checked against the committed state, not a
	// snapshot a concurrent writer may have overtaken.
	var updated *lesson.Lesson
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.lockLesson(ctx, id); err != nil {
			return err
		}
		l, err := s.LessonRepo.Get(ctx, id)
		if err != nil {
			return err
		}

		if !change.IsEmpty() {
			newState, err := lesson.ValidateTransition(l.State, change)
			if err != nil {
				return err
			}
			l.State = newState
		}
		if req.Notes != nil {
			l.Notes = *req.Notes
		}
		l.UpdatedAt = s.now()
		l.UpdatedBy = types.GetUserID(ctx)

		updated, err = s.LessonRepo.Update(ctx, l)
		return err
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.ledger.SyncStudentBalance(ctx, updated.StudentID); err != nil {
		return nil, err
	}

	return &dto.LessonResponse{Lesson: updated}, nil
}

func (s *lessonService) CompleteLesson(ctx context.Context, id string) (*dto.LessonResponse, error) {
	completed := true
	return s.UpdateLesson(ctx, id, &dto.UpdateLessonRequest{Completed: &completed})
}

func (s *lessonService) CancelLesson(ctx context.Context, id string) (*dto.CancelLessonResponse, error) {
	// The refund outcome depends on the paid flag at the moment of
	// cancellation, so the read and the decision run in the writing
	// transaction under a per-lesson lock. A payment committed just before
	// us is then seen; one racing us waits.
	var updated *lesson.Lesson
	var decision lesson.CancellationDecision
	var outcome types.CancellationOutcome
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.lockLesson(ctx, id); err != nil {
			return err
		}
		l, err := s.LessonRepo.Get(ctx, id)
		if err != nil {
			return err
		}

		cancelled := true
		newState, err := lesson.ValidateTransition(l.State, lesson.Change{Cancelled: &cancelled})
		if err != nil {
			return err
		}

		now := s.now()
		decision = lesson.DecideCancellation(l.StartTime, now, l.Cost)
		outcome = lesson.OutcomeFor(l.State, decision)

		l.State = newState
		l.CancelledAt = &now
		l.Cancellation = outcome
		l.UpdatedAt = now
		l.UpdatedBy = types.GetUserID(ctx)

		updated, err = s.LessonRepo.Update(ctx, l)
		return err
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.ledger.SyncStudentBalance(ctx, updated.StudentID); err != nil {
		return nil, err
	}

	s.Logger.Infow("cancelled lesson",
		"lesson_id", updated.ID,
		"student_id", updated.StudentID,
		"refundable", decision.Refundable,
		"outcome", outcome,
	)

	return &dto.CancelLessonResponse{
		Lesson:     &dto.LessonResponse{Lesson: updated},
		Refundable: decision.Refundable,
		Amount:     decision.Amount.String(),
	}, nil
}

func (s *lessonService) DeleteLesson(ctx context.Context, id string) error {
	l, err := s.LessonRepo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.LessonRepo.Delete(ctx, id); err != nil {
		return err
	}

	invalidateBalance(ctx, s.ServiceParams, l.StudentID)
	_, err = s.ledger.SyncStudentBalance(ctx, l.StudentID)
	return err
}

func scheduleConflictError(conflicting []*lesson.Lesson) error {
	ids := lo.Map(conflicting, func(l *lesson.Lesson, _ int) string {
		return l.ID
	})
	return ierr.NewError("lesson time conflicts with existing lessons").
		WithHint("Choose a time slot that does not overlap existing lessons").
		WithReportableDetails(map[string]interface{}{
			"conflicting_lesson_ids": ids,
		}).
		Mark(ierr.ErrScheduleConflict)
}
