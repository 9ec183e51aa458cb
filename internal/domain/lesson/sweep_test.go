package lesson

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tutorpilot/tutorpilot/internal/types"
)

func sweepLesson(id string, start time.Time, state types.LessonState) *Lesson {
	return &Lesson{
		ID:        id,
		StudentID: "student_1",
		StartTime: start,
		Cost:      decimal.NewFromInt(1000),
		State:     state,
	}
}

func TestSweep(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-2 * time.Hour)
	future := now.Add(2 * time.Hour)

	lessons := []*Lesson{
		sweepLesson("lesson_past_unpaid", past, types.LessonStateScheduled),
		sweepLesson("lesson_past_prepaid", past, types.LessonStatePrepaid),
		sweepLesson("lesson_past_cancelled", past, types.LessonStateCancelled),
		sweepLesson("lesson_past_completed", past, types.LessonStateCompleted),
		sweepLesson("lesson_past_debt", past, types.LessonStateDebt),
		sweepLesson("lesson_future", future, types.LessonStateScheduled),
		sweepLesson("lesson_starting_now", now, types.LessonStateScheduled),
	}

	changes := Sweep(now, lessons)
	assert.Len(t, changes, 2)

	byID := map[string]StateChange{}
	for _, ch := range changes {
		byID[ch.LessonID] = ch
	}

	assert.Equal(t, types.LessonStateDebt, byID["lesson_past_unpaid"].NewState)
	assert.Equal(t, types.LessonStateScheduled, byID["lesson_past_unpaid"].PreviousState)
	assert.Equal(t, types.LessonStateCompleted, byID["lesson_past_prepaid"].NewState)

	// Input is never mutated.
	assert.Equal(t, types.LessonStateScheduled, lessons[0].State)
}

func TestSweepIdempotent(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	lessons := []*Lesson{
		sweepLesson("lesson_1", now.Add(-time.Hour), types.LessonStateScheduled),
		sweepLesson("lesson_2", now.Add(-time.Hour), types.LessonStatePrepaid),
	}

	first := Sweep(now, lessons)
	assert.Len(t, first, 2)

	// Apply the first run, then sweep again: nothing further changes.
	for _, ch := range first {
		for _, l := range lessons {
			if l.ID == ch.LessonID {
				l.State = ch.NewState
			}
		}
	}

	second := Sweep(now, lessons)
	assert.Empty(t, second)
}
