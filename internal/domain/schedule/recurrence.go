package schedule

import (
	"time"

	ierr "github.com/tutorpilot/tutorpilot/internal/errors"
)

// maxRecurrenceDays caps how far a recurrence may expand, to bound the size
// of a bulk request.
const maxRecurrenceDays = 366

// Recurrence describes a weekly repeating lesson pattern: a set of weekdays,
// a time of day, and a date range. Times of day are interpreted in Location.
type Recurrence struct {
	Weekdays []time.Weekday `json:"weekdays"`
	Hour     int            `json:"hour"`
	Minute   int            `json:"minute"`
	Duration time.Duration  `json:"duration"`
	From     time.Time      `json:"from"`
	To       time.Time      `json:"to"`
	Location *time.Location `json:"-"`
}

// Validate checks the pattern before expansion.
func (r Recurrence) Validate() error {
	if len(r.Weekdays) == 0 {
		return ierr.NewError("recurrence needs at least one weekday").
			WithHint("Select the weekdays the lesson repeats on").
			Mark(ierr.ErrValidation)
	}
	if r.Hour < 0 || r.Hour > 23 || r.Minute < 0 || r.Minute > 59 {
		return ierr.NewError("invalid time of day").
			WithReportableDetails(map[string]interface{}{
				"hour":   r.Hour,
				"minute": r.Minute,
			}).
			Mark(ierr.ErrValidation)
	}
	if r.To.Before(r.From) {
		return ierr.NewError("recurrence range end precedes its start").
			WithHint("The end date must not be before the start date").
			Mark(ierr.ErrValidation)
	}
	if r.To.Sub(r.From) > maxRecurrenceDays*24*time.Hour {
		return ierr.NewErrorf("recurrence range exceeds %d days", maxRecurrenceDays).
			WithHint("Split very long schedules into smaller ranges").
			Mark(ierr.ErrValidation)
	}
	if r.Duration < 0 {
		return ierr.NewError("recurrence duration must not be negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Expand generates the concrete slots of the pattern: for every day in
// [From, To] whose weekday is in the set, one slot at the configured time of
// day. Expansion is deterministic and does no I/O.
func (r Recurrence) Expand() ([]Slot, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}

	wanted := make(map[time.Weekday]bool, len(r.Weekdays))
	for _, wd := range r.Weekdays {
		wanted[wd] = true
	}

	var slots []Slot
	day := time.Date(r.From.Year(), r.From.Month(), r.From.Day(), 0, 0, 0, 0, loc)
	last := time.Date(r.To.Year(), r.To.Month(), r.To.Day(), 0, 0, 0, 0, loc)

	for !day.After(last) {
		if wanted[day.Weekday()] {
			start := time.Date(day.Year(), day.Month(), day.Day(), r.Hour, r.Minute, 0, 0, loc)
			slot := Slot{Start: start}
			if r.Duration > 0 {
				end := start.Add(r.Duration)
				slot.End = &end
			}
			slots = append(slots, slot)
		}
		day = day.AddDate(0, 0, 1)
	}

	return slots, nil
}
