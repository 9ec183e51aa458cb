package types

// LessonState is the derived lifecycle state of a lesson. It is the canonical
// in-memory representation; the three storage flags (completed, paid,
// cancelled) exist only at the persistence boundary.
type LessonState string

const (
	// LessonStateScheduled is a future lesson with no payment recorded.
	LessonStateScheduled LessonState = "scheduled"
	// LessonStatePrepaid is a lesson paid for before it took place.
	LessonStatePrepaid LessonState = "prepaid"
	// LessonStateCompleted is a delivered and paid lesson (realized revenue).
	LessonStateCompleted LessonState = "completed"
	// LessonStateDebt is a delivered lesson whose payment is outstanding.
	LessonStateDebt LessonState = "debt"
	// LessonStateCancelled is terminal; no further flag changes are allowed.
	LessonStateCancelled LessonState = "cancelled"
)

func (s LessonState) String() string {
	return string(s)
}

func (s LessonState) Validate() bool {
	switch s {
	case LessonStateScheduled, LessonStatePrepaid, LessonStateCompleted,
		LessonStateDebt, LessonStateCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from s.
func (s LessonState) IsTerminal() bool {
	return s == LessonStateCancelled
}

// IsCompleted reports whether the lesson has been delivered.
func (s LessonState) IsCompleted() bool {
	return s == LessonStateCompleted || s == LessonStateDebt
}

// IsPaid reports whether payment has been received for the lesson.
func (s LessonState) IsPaid() bool {
	return s == LessonStatePrepaid || s == LessonStateCompleted
}

// CancellationOutcome records what happened to the money when a lesson was
// cancelled.
type CancellationOutcome string

const (
	// CancellationOutcomeNone means no payment was involved; the lesson was
	// cancelled before any money changed hands.
	CancellationOutcomeNone CancellationOutcome = "none"
	// CancellationOutcomeRefunded means the cost returned to the student's
	// prepaid credit pool.
	CancellationOutcomeRefunded CancellationOutcome = "refunded"
	// CancellationOutcomeRetained means the cost was kept as realized
	// revenue (late cancellation of a prepaid lesson).
	CancellationOutcomeRetained CancellationOutcome = "retained"
)
