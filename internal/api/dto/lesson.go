package dto

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tutorpilot/tutorpilot/internal/domain/lesson"
	ierr "github.com/tutorpilot/tutorpilot/internal/errors"
	"github.com/tutorpilot/tutorpilot/internal/types"
	"github.com/tutorpilot/tutorpilot/internal/validator"
)

type CreateLessonRequest struct {
	StudentID string     `json:"student_id" validate:"required"`
	StartTime time.Time  `json:"start_time" validate:"required"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Cost      string     `json:"cost" validate:"required"`
	Notes     string     `json:"notes,omitempty"`
	Paid      bool       `json:"paid,omitempty"`
}

func (r *CreateLessonRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}

	cost, err := decimal.NewFromString(r.Cost)
	if err != nil {
		return ierr.NewError("invalid cost format").
			WithHint("Cost must be a valid decimal number").
			WithReportableDetails(map[string]interface{}{
				"cost": r.Cost,
			}).
			Mark(ierr.ErrValidation)
	}
	if cost.IsNegative() {
		return ierr.NewError("cost must be non-negative").
			WithHint("Cost cannot be negative").
			WithReportableDetails(map[string]interface{}{
				"cost": r.Cost,
			}).
			Mark(ierr.ErrValidation)
	}
	if r.EndTime != nil && !r.EndTime.After(r.StartTime) {
		return ierr.NewError("end time must be after start time").
			WithHint("End time must be after start time").
			Mark(ierr.ErrValidation)
	}

	return nil
}

func (r *CreateLessonRequest) ToLesson(ctx context.Context) *lesson.Lesson {
	cost, _ := decimal.NewFromString(r.Cost)
	state := types.LessonStateScheduled
	if r.Paid {
		state = types.LessonStatePrepaid
	}
	return &lesson.Lesson{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LESSON),
		StudentID:    r.StudentID,
		StartTime:    r.StartTime.UTC(),
		EndTime:      r.EndTime,
		Cost:         cost,
		Notes:        r.Notes,
		State:        state,
		Cancellation: types.CancellationOutcomeNone,
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}
}

// UpdateLessonRequest proposes flag-level changes and/or a notes edit. Flag
// changes go through the transition rules; nil fields are untouched.
type UpdateLessonRequest struct {
	Completed *bool   `json:"completed,omitempty"`
	Paid      *bool   `json:"paid,omitempty"`
	Cancelled *bool   `json:"cancelled,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

func (r *UpdateLessonRequest) ToChange() lesson.Change {
	return lesson.Change{
		Completed: r.Completed,
		Paid:      r.Paid,
		Cancelled: r.Cancelled,
	}
}

type LessonResponse struct {
	*lesson.Lesson
}

type ListLessonsResponse struct {
	Items      []*LessonResponse        `json:"items"`
	Pagination types.PaginationResponse `json:"pagination"`
}

// CancelLessonResponse reports the financial outcome of a cancellation.
type CancelLessonResponse struct {
	Lesson     *LessonResponse `json:"lesson"`
	Refundable bool            `json:"refundable"`
	Amount     string          `json:"amount"`
}
