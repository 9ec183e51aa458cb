package lesson

import (
	ierr "github.com/tutorpilot/tutorpilot/internal/errors"
	"github.com/tutorpilot/tutorpilot/internal/types"
)

// Change is a proposed set of flag-level changes to a lesson. Nil fields are
// left untouched.
type Change struct {
	Completed *bool `json:"completed,omitempty"`
	Paid      *bool `json:"paid,omitempty"`
	Cancelled *bool `json:"cancelled,omitempty"`
}

// IsEmpty reports whether the change proposes nothing.
func (c Change) IsEmpty() bool {
	return c.Completed == nil && c.Paid == nil && c.Cancelled == nil
}

// ValidateTransition checks a proposed change against the current state and
// returns the resulting state. Rejections are marked ErrInvalidTransition and
// carry the specific rule that was violated.
func ValidateTransition(current types.LessonState, change Change) (types.LessonState, error) {
	if current == types.LessonStateCancelled && !change.IsEmpty() {
		return current, ierr.NewError("lesson is cancelled").
			WithHint("A cancelled lesson cannot be modified").
			Mark(ierr.ErrInvalidTransition)
	}

	completed := current.IsCompleted()
	paid := current.IsPaid()
	cancelled := false

	if change.Completed != nil {
		if completed && !*change.Completed {
			return current, ierr.NewError("lesson is already completed").
				WithHint("A completed lesson cannot be reverted to scheduled").
				Mark(ierr.ErrInvalidTransition)
		}
		completed = *change.Completed
	}

	if change.Paid != nil {
		if current.IsCompleted() && current.IsPaid() && !*change.Paid {
			return current, ierr.NewError("payment is already realized").
				WithHint("Payment cannot be removed from a completed lesson").
				Mark(ierr.ErrInvalidTransition)
		}
		paid = *change.Paid
	}

	if change.Cancelled != nil {
		if !*change.Cancelled {
			return current, ierr.NewError("cancellation cannot be reverted").
				WithHint("Recreate the lesson instead of un-cancelling it").
				Mark(ierr.ErrInvalidTransition)
		}
		if completed {
			return current, ierr.NewError("lesson is already completed").
				WithHint("A delivered lesson cannot be cancelled").
				Mark(ierr.ErrInvalidTransition)
		}
		cancelled = true
	}

	return DeriveState(completed, paid, cancelled), nil
}

// Complete applies the completion rule: a prepaid lesson becomes completed,
// an unpaid one becomes debt. This is the only path into completed or debt.
func Complete(current types.LessonState) (types.LessonState, error) {
	completed := true
	return ValidateTransition(current, Change{Completed: &completed})
}

// MarkPaid applies a payment to a lesson: scheduled becomes prepaid, debt
// becomes completed (the sole legal way to clear a debt).
func MarkPaid(current types.LessonState) (types.LessonState, error) {
	paid := true
	return ValidateTransition(current, Change{Paid: &paid})
}

// ReversePayment undoes the effect a payment had on a lesson, as happens when
// the payment itself is deleted. Unlike a user-requested flag change this may
// take a completed lesson back to debt: the reversal is the exact inverse of
// the payment application, so the ledger ends up where it would have been had
// the payment never existed.
func ReversePayment(current types.LessonState) (types.LessonState, error) {
	switch current {
	case types.LessonStatePrepaid:
		return types.LessonStateScheduled, nil
	case types.LessonStateCompleted:
		return types.LessonStateDebt, nil
	case types.LessonStateCancelled:
		// The cancelled lesson no longer counts toward any balance; nothing
		// to reverse.
		return current, nil
	default:
		return current, ierr.NewError("lesson has no payment to reverse").
			WithReportableDetails(map[string]interface{}{
				"state": string(current),
			}).
			Mark(ierr.ErrInvalidTransition)
	}
}
