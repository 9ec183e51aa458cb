package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	ierr "github.com/tutorpilot/tutorpilot/internal/errors"
)

func TestRecurrenceExpand(t *testing.T) {
	// Every Monday and Wednesday at 10:00 for four weeks starting Monday
	// 2025-03-03.
	r := Recurrence{
		Weekdays: []time.Weekday{time.Monday, time.Wednesday},
		Hour:     10,
		Minute:   0,
		Duration: 90 * time.Minute,
		From:     time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		To:       time.Date(2025, 3, 30, 0, 0, 0, 0, time.UTC),
	}

	slots, err := r.Expand()
	assert.NoError(t, err)
	assert.Len(t, slots, 8)

	first := slots[0]
	assert.Equal(t, time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC), first.Start)
	assert.NotNil(t, first.End)
	assert.Equal(t, first.Start.Add(90*time.Minute), *first.End)

	for _, s := range slots {
		wd := s.Start.Weekday()
		assert.True(t, wd == time.Monday || wd == time.Wednesday)
		assert.Equal(t, 10, s.Start.Hour())
	}
}

func TestRecurrenceExpandRangeBoundaries(t *testing.T) {
	// A single-day range matching the weekday yields exactly one slot.
	day := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC) // a Wednesday
	r := Recurrence{
		Weekdays: []time.Weekday{time.Wednesday},
		Hour:     18,
		Minute:   30,
		From:     day,
		To:       day,
	}

	slots, err := r.Expand()
	assert.NoError(t, err)
	assert.Len(t, slots, 1)
	assert.Equal(t, time.Date(2025, 3, 5, 18, 30, 0, 0, time.UTC), slots[0].Start)
	assert.Nil(t, slots[0].End)
}

func TestRecurrenceValidate(t *testing.T) {
	base := Recurrence{
		Weekdays: []time.Weekday{time.Monday},
		Hour:     10,
		From:     time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		To:       time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
	}

	r := base
	r.Weekdays = nil
	assert.True(t, ierr.IsValidation(r.Validate()))

	r = base
	r.Hour = 24
	assert.True(t, ierr.IsValidation(r.Validate()))

	r = base
	r.To = r.From.AddDate(0, 0, -1)
	assert.True(t, ierr.IsValidation(r.Validate()))

	r = base
	r.To = r.From.AddDate(2, 0, 0)
	assert.True(t, ierr.IsValidation(r.Validate()))

	assert.NoError(t, base.Validate())
}
