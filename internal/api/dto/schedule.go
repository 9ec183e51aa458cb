package dto

import (
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/tutorpilot/tutorpilot/internal/domain/schedule"
	ierr "github.com/tutorpilot/tutorpilot/internal/errors"
	"github.com/tutorpilot/tutorpilot/internal/validator"
)

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// BulkCreateLessonsRequest expands a weekly recurrence into concrete lessons,
// e.g. every Monday and Wednesday at 10:00 for eight weeks.
type BulkCreateLessonsRequest struct {
	StudentID       string    `json:"student_id" validate:"required"`
	Weekdays        []string  `json:"weekdays" validate:"required,min=1"`
	Hour            int       `json:"hour" validate:"min=0,max=23"`
	Minute          int       `json:"minute" validate:"min=0,max=59"`
	DurationMinutes int       `json:"duration_minutes" validate:"min=0"`
	StartDate       time.Time `json:"start_date" validate:"required"`
	EndDate         time.Time `json:"end_date" validate:"required"`
	Cost            string    `json:"cost" validate:"required"`
	Timezone        string    `json:"timezone,omitempty"`
	Notes           string    `json:"notes,omitempty"`
}

func (r *BulkCreateLessonsRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}

	for _, name := range r.Weekdays {
		if _, ok := weekdayNames[strings.ToLower(name)]; !ok {
			return ierr.NewError("unknown weekday").
				WithHint("Weekdays must be full English day names").
				WithReportableDetails(map[string]interface{}{
					"weekday": name,
				}).
				Mark(ierr.ErrValidation)
		}
	}

	cost, err := decimal.NewFromString(r.Cost)
	if err != nil || cost.IsNegative() {
		return ierr.NewError("invalid cost").
			WithHint("Cost must be a non-negative decimal number").
			WithReportableDetails(map[string]interface{}{
				"cost": r.Cost,
			}).
			Mark(ierr.ErrValidation)
	}

	if r.Timezone != "" {
		if _, err := time.LoadLocation(r.Timezone); err != nil {
			return ierr.NewError("unknown timezone").
				WithHint("Timezone must be an IANA location name").
				WithReportableDetails(map[string]interface{}{
					"timezone": r.Timezone,
				}).
				Mark(ierr.ErrValidation)
		}
	}

	return nil
}

// ToRecurrence converts the request into the domain recurrence pattern.
// Validate must have been called first.
func (r *BulkCreateLessonsRequest) ToRecurrence() schedule.Recurrence {
	loc := time.UTC
	if r.Timezone != "" {
		loc, _ = time.LoadLocation(r.Timezone)
	}
	return schedule.Recurrence{
		Weekdays: lo.Map(r.Weekdays, func(name string, _ int) time.Weekday {
			return weekdayNames[strings.ToLower(name)]
		}),
		Hour:     r.Hour,
		Minute:   r.Minute,
		Duration: time.Duration(r.DurationMinutes) * time.Minute,
		From:     r.StartDate,
		To:       r.EndDate,
		Location: loc,
	}
}

// CheckConflictRequest probes the calendar for a single candidate slot.
type CheckConflictRequest struct {
	StartTime time.Time  `json:"start_time" form:"start_time" validate:"required"`
	EndTime   *time.Time `json:"end_time,omitempty" form:"end_time"`
}

func (r *CheckConflictRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.EndTime != nil && !r.EndTime.After(r.StartTime) {
		return ierr.NewError("end time must be after start time").
			WithHint("End time must be after start time").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (r *CheckConflictRequest) ToSlot() schedule.Slot {
	return schedule.Slot{Start: r.StartTime.UTC(), End: r.EndTime}
}

type CheckConflictResponse struct {
	HasConflict          bool     `json:"has_conflict"`
	ConflictingLessonIDs []string `json:"conflicting_lesson_ids,omitempty"`
}

// ConflictDetail describes one rejected candidate of a bulk request.
type ConflictDetail struct {
	Start                time.Time   `json:"start"`
	End                  *time.Time  `json:"end,omitempty"`
	ConflictingLessonIDs []string    `json:"conflicting_lesson_ids,omitempty"`
	SiblingStarts        []time.Time `json:"sibling_starts,omitempty"`
}

// BulkCreateLessonsResponse reports the partial outcome of a bulk request:
// the created subset and the conflicts that were skipped.
type BulkCreateLessonsResponse struct {
	Created   []*LessonResponse `json:"created"`
	Conflicts []ConflictDetail  `json:"conflicts,omitempty"`
}
