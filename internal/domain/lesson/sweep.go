package lesson

import (
	"time"

	"github.com/tutorpilot/tutorpilot/internal/types"
)

// StateChange records one lesson advanced by the sweep.
type StateChange struct {
	LessonID      string            `json:"lesson_id"`
	StudentID     string            `json:"student_id"`
	PreviousState types.LessonState `json:"previous_state"`
	NewState      types.LessonState `json:"new_state"`
}

// Sweep selects lessons whose scheduled start has passed and which are
// neither completed nor cancelled, and computes their advancement under the
// completion rule: prepaid becomes completed, unpaid scheduled becomes debt.
// The input is not mutated. Idempotent: the selection predicate excludes
// everything a previous run advanced, so a second run over the same data
// yields no changes.
func Sweep(now time.Time, lessons []*Lesson) []StateChange {
	changes := make([]StateChange, 0)
	for _, l := range lessons {
		if !l.StartTime.Before(now) {
			continue
		}
		if l.State.IsCompleted() || l.State.IsTerminal() {
			continue
		}

		newState, err := Complete(l.State)
		if err != nil {
			// Unreachable for the selected states; skip rather than fail the
			// whole batch.
			continue
		}

		changes = append(changes, StateChange{
			LessonID:      l.ID,
			StudentID:     l.StudentID,
			PreviousState: l.State,
			NewState:      newState,
		})
	}
	return changes
}
