package service

import (
	"context"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/tutorpilot/tutorpilot/internal/api/dto"
	"github.com/tutorpilot/tutorpilot/internal/domain/lesson"
	"github.com/tutorpilot/tutorpilot/internal/domain/schedule"
	"github.com/tutorpilot/tutorpilot/internal/types"
)

// ScheduleService expands recurring lesson patterns and creates the
// non-conflicting subset. Partial success is the expected outcome: the
// response lists what was created and what collided.
type ScheduleService interface {
	CheckConflict(ctx context.Context, req *dto.CheckConflictRequest) (*dto.CheckConflictResponse, error)
	BulkCreateLessons(ctx context.Context, req *dto.BulkCreateLessonsRequest) (*dto.BulkCreateLessonsResponse, error)
}

type scheduleService struct {
	ServiceParams
	ledger LedgerService
}

func NewScheduleService(params ServiceParams) ScheduleService {
	return &scheduleService{
		ServiceParams: params,
		ledger:        NewLedgerService(params),
	}
}

// CheckConflict answers whether a single candidate slot would collide with
// the existing calendar, without booking anything.
func (s *scheduleService) CheckConflict(ctx context.Context, req *dto.CheckConflictRequest) (*dto.CheckConflictResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	candidate := req.ToSlot()
	existing, err := s.LessonRepo.ListOverlapping(ctx, candidate.Start, candidate.EffectiveEnd())
	if err != nil {
		return nil, err
	}

	res := schedule.FindConflicts(candidate, existing)
	return &dto.CheckConflictResponse{
		HasConflict: res.HasConflict,
		ConflictingLessonIDs: lo.Map(res.ConflictingLessons, func(l *lesson.Lesson, _ int) string {
			return l.ID
		}),
	}, nil
}

func (s *scheduleService) BulkCreateLessons(ctx context.Context, req *dto.BulkCreateLessonsRequest) (*dto.BulkCreateLessonsResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.StudentRepo.Get(ctx, req.StudentID); err != nil {
		return nil, err
	}

	candidates, err := req.ToRecurrence().Expand()
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return &dto.BulkCreateLessonsResponse{Created: []*dto.LessonResponse{}}, nil
	}

	cost, _ := decimal.NewFromString(req.Cost)

	var created []*lesson.Lesson
	var conflicts []schedule.BatchConflict

	// The whole check-and-create runs in one transaction so the conflict
	// snapshot cannot race a concurrent bulk create over the same window.
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		// Serialize creates so the conflict snapshot below stays valid for
		// the duration of the inserts.
		if err := s.lockSchedule(ctx); err != nil {
			return err
		}

		from, to := batchWindow(candidates)
		existing, err := s.LessonRepo.ListOverlapping(ctx, from, to)
		if err != nil {
			return err
		}

		accepted, rejected := schedule.PartitionBatch(candidates, existing)
		conflicts = rejected

		for _, slot := range accepted {
			l := &lesson.Lesson{
				ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LESSON),
				StudentID:    req.StudentID,
				StartTime:    slot.Start.UTC(),
				EndTime:      slot.End,
				Cost:         cost,
				Notes:        req.Notes,
				State:        types.LessonStateScheduled,
				Cancellation: types.CancellationOutcomeNone,
				BaseModel:    types.GetDefaultBaseModel(ctx),
			}
			stored, err := s.LessonRepo.Create(ctx, l)
			if err != nil {
				return err
			}
			created = append(created, stored)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.ledger.SyncStudentBalance(ctx, req.StudentID); err != nil {
		return nil, err
	}

	s.Logger.Infow("bulk created lessons",
		"student_id", req.StudentID,
		"created", len(created),
		"conflicts", len(conflicts),
	)

	return &dto.BulkCreateLessonsResponse{
		Created: lo.Map(created, func(l *lesson.Lesson, _ int) *dto.LessonResponse {
			return &dto.LessonResponse{Lesson: l}
		}),
		Conflicts: lo.Map(conflicts, func(bc schedule.BatchConflict, _ int) dto.ConflictDetail {
			return dto.ConflictDetail{
				Start: bc.Candidate.Start,
				End:   bc.Candidate.End,
				ConflictingLessonIDs: lo.Map(bc.ConflictingLessons, func(l *lesson.Lesson, _ int) string {
					return l.ID
				}),
				SiblingStarts: bc.SiblingStarts,
			}
		}),
	}, nil
}

// batchWindow returns the smallest interval covering every candidate slot.
func batchWindow(candidates []schedule.Slot) (time.Time, time.Time) {
	from := candidates[0].Start
	to := candidates[0].Start.Add(lesson.DefaultDuration)
	for _, c := range candidates {
		if c.Start.Before(from) {
			from = c.Start
		}
		end := c.Start.Add(lesson.DefaultDuration)
		if c.End != nil {
			end = *c.End
		}
		if end.After(to) {
			to = end
		}
	}
	return from, to
}
