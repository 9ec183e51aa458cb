package lesson

import (
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	ierr "github.com/tutorpilot/tutorpilot/internal/errors"
	"github.com/tutorpilot/tutorpilot/internal/types"
)

// DefaultDuration is assumed for lessons created without an explicit end time.
const DefaultDuration = time.Hour

// Lesson is one scheduled teaching session tied to a student. State is the
// canonical representation; the three storage flags exist only at the
// repository boundary (see Flags).
type Lesson struct {
	ID        string            `json:"id"`
	StudentID string            `json:"student_id"`
	StartTime time.Time         `json:"start_time"`
	EndTime   *time.Time        `json:"end_time,omitempty"`
	Cost      decimal.Decimal   `json:"cost"`
	Notes     string            `json:"notes,omitempty"`
	State     types.LessonState `json:"state"`

	// Cancellation bookkeeping, set only when State is cancelled.
	CancelledAt  *time.Time                `json:"cancelled_at,omitempty"`
	Cancellation types.CancellationOutcome `json:"cancellation,omitempty"`

	types.BaseModel
}

// EffectiveEnd returns the end of the occupied interval, defaulting to one
// hour after the start when no end time was recorded.
func (l *Lesson) EffectiveEnd() time.Time {
	if l.EndTime != nil {
		return *l.EndTime
	}
	return l.StartTime.Add(DefaultDuration)
}

// Validate checks the structural invariants fixed at creation time.
func (l *Lesson) Validate() error {
	if l.StudentID == "" {
		return ierr.NewError("lesson student id is required").
			WithHint("Every lesson must belong to a student").
			Mark(ierr.ErrValidation)
	}
	if l.StartTime.IsZero() {
		return ierr.NewError("lesson start time is required").
			WithHint("Please provide a scheduled start time").
			Mark(ierr.ErrValidation)
	}
	if l.EndTime != nil && !l.EndTime.After(l.StartTime) {
		return ierr.NewError("lesson end time must be after start time").
			WithHint("End time must be after start time").
			WithReportableDetails(map[string]interface{}{
				"start_time": l.StartTime,
				"end_time":   *l.EndTime,
			}).
			Mark(ierr.ErrValidation)
	}
	if l.Cost.IsNegative() {
		return ierr.NewError("lesson cost must be non-negative").
			WithHint("Cost cannot be negative").
			WithReportableDetails(map[string]interface{}{
				"cost": l.Cost.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	if !l.State.Validate() {
		return ierr.NewError("unknown lesson state").
			WithReportableDetails(map[string]interface{}{
				"state": string(l.State),
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Copy returns a deep copy of the lesson.
func (l *Lesson) Copy() *Lesson {
	if l == nil {
		return nil
	}
	c := *l
	c.EndTime = copyTime(l.EndTime)
	c.CancelledAt = copyTime(l.CancelledAt)
	return &c
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// CopyList deep-copies a slice of lessons.
func CopyList(lessons []*Lesson) []*Lesson {
	return lo.Map(lessons, func(l *Lesson, _ int) *Lesson {
		return l.Copy()
	})
}
