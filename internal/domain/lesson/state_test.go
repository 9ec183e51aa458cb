package lesson

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tutorpilot/tutorpilot/internal/types"
)

func TestDeriveState(t *testing.T) {
	tests := []struct {
		name      string
		completed bool
		paid      bool
		cancelled bool
		want      types.LessonState
	}{
		{"all false", false, false, false, types.LessonStateScheduled},
		{"paid only", false, true, false, types.LessonStatePrepaid},
		{"completed only", true, false, false, types.LessonStateDebt},
		{"completed and paid", true, true, false, types.LessonStateCompleted},
		{"cancelled", false, false, true, types.LessonStateCancelled},
		{"cancelled absorbs paid", false, true, true, types.LessonStateCancelled},
		{"cancelled absorbs completed", true, false, true, types.LessonStateCancelled},
		{"cancelled absorbs both", true, true, true, types.LessonStateCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveState(tt.completed, tt.paid, tt.cancelled)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Validate())
		})
	}
}

func TestDeriveStateTotality(t *testing.T) {
	// Every flag combination maps to exactly one defined state, and
	// cancelled always wins.
	for _, completed := range []bool{false, true} {
		for _, paid := range []bool{false, true} {
			for _, cancelled := range []bool{false, true} {
				got := DeriveState(completed, paid, cancelled)
				assert.True(t, got.Validate())
				if cancelled {
					assert.Equal(t, types.LessonStateCancelled, got)
				}
			}
		}
	}
}

func TestStateFlagsRoundTrip(t *testing.T) {
	for _, state := range []types.LessonState{
		types.LessonStateScheduled,
		types.LessonStatePrepaid,
		types.LessonStateCompleted,
		types.LessonStateDebt,
		types.LessonStateCancelled,
	} {
		flags := StateToFlags(state)
		assert.Equal(t, state, StateFromFlags(flags))
	}
}
