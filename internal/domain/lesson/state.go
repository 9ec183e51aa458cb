package lesson

import (
	"github.com/tutorpilot/tutorpilot/internal/types"
)

// Flags is the storage-level representation of a lesson's lifecycle: three
// independent booleans as persisted by the lessons table. It never appears in
// the domain model; DeriveState and StateToFlags convert at the repository
// boundary.
type Flags struct {
	Completed bool
	Paid      bool
	Cancelled bool
}

// DeriveState maps the three storage flags to the canonical lifecycle state.
// Total over all 8 flag combinations; cancelled absorbs four of them.
func DeriveState(completed, paid, cancelled bool) types.LessonState {
	switch {
	case cancelled:
		return types.LessonStateCancelled
	case completed && paid:
		return types.LessonStateCompleted
	case completed && !paid:
		return types.LessonStateDebt
	case !completed && paid:
		return types.LessonStatePrepaid
	default:
		return types.LessonStateScheduled
	}
}

// StateFromFlags is DeriveState over a Flags value.
func StateFromFlags(f Flags) types.LessonState {
	return DeriveState(f.Completed, f.Paid, f.Cancelled)
}

// StateToFlags converts the canonical state back to storage flags. A
// cancelled lesson stores no payment flag; its financial outcome lives in the
// refunded marker, and the payment record itself keeps the history.
func StateToFlags(s types.LessonState) Flags {
	switch s {
	case types.LessonStateCancelled:
		return Flags{Cancelled: true}
	case types.LessonStateCompleted:
		return Flags{Completed: true, Paid: true}
	case types.LessonStateDebt:
		return Flags{Completed: true}
	case types.LessonStatePrepaid:
		return Flags{Paid: true}
	default:
		return Flags{}
	}
}
