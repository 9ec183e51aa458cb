// Package ledger computes student balances from lesson and payment history.
// Every figure is recomputed from scratch rather than maintained by deltas,
// so a stale cached balance is never more than one recomputation away from
// correct.
package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tutorpilot/tutorpilot/internal/domain/lesson"
	"github.com/tutorpilot/tutorpilot/internal/domain/payment"
	"github.com/tutorpilot/tutorpilot/internal/types"
)

// Balance is the aggregate financial position of one student.
type Balance struct {
	// Balance is PrepaidAmount minus DebtAmount.
	Balance decimal.Decimal `json:"balance"`
	// PrepaidAmount is the cost of lessons paid for but not yet delivered.
	PrepaidAmount decimal.Decimal `json:"prepaid_amount"`
	// DebtAmount is the cost of delivered lessons awaiting payment.
	DebtAmount decimal.Decimal `json:"debt_amount"`
}

// ComputeBalance derives a student's balance from their lessons. Only the
// prepaid and debt states carry financial weight: completed lessons are
// settled and cancelled lessons contribute nothing.
func ComputeBalance(lessons []*lesson.Lesson) Balance {
	prepaid := decimal.Zero
	debt := decimal.Zero

	for _, l := range lessons {
		switch l.State {
		case types.LessonStatePrepaid:
			prepaid = prepaid.Add(l.Cost)
		case types.LessonStateDebt:
			debt = debt.Add(l.Cost)
		}
	}

	return Balance{
		Balance:       prepaid.Sub(debt),
		PrepaidAmount: prepaid,
		DebtAmount:    debt,
	}
}

// EntryKind distinguishes ledger history entries.
type EntryKind string

const (
	EntryKindLesson  EntryKind = "lesson"
	EntryKindPayment EntryKind = "payment"
	EntryKindRefund  EntryKind = "refund"
)

// Entry is one row of a student's ledger history: a delivered or scheduled
// lesson (a charge), a recorded payment (a credit), or a refunded
// cancellation.
type Entry struct {
	Kind        EntryKind       `json:"kind"`
	RefID       string          `json:"ref_id"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

// BuildHistory merges lessons and payments into a single chronological view.
// Cancelled lessons appear only when refunded, as refund entries.
func BuildHistory(lessons []*lesson.Lesson, payments []*payment.Payment) []Entry {
	entries := make([]Entry, 0, len(lessons)+len(payments))

	for _, l := range lessons {
		switch {
		case l.State == types.LessonStateCancelled && l.Cancellation == types.CancellationOutcomeRefunded:
			occurredAt := l.StartTime
			if l.CancelledAt != nil {
				occurredAt = *l.CancelledAt
			}
			entries = append(entries, Entry{
				Kind:       EntryKindRefund,
				RefID:      l.ID,
				OccurredAt: occurredAt,
				Amount:     l.Cost,
			})
		case l.State == types.LessonStateCancelled:
			// Non-refundable cancellation: retained as revenue, not shown
			// as an open charge.
		default:
			entries = append(entries, Entry{
				Kind:        EntryKindLesson,
				RefID:       l.ID,
				OccurredAt:  l.StartTime,
				Amount:      l.Cost.Neg(),
				Description: l.Notes,
			})
		}
	}

	for _, p := range payments {
		entries = append(entries, Entry{
			Kind:        EntryKindPayment,
			RefID:       p.ID,
			OccurredAt:  p.PaymentDate,
			Amount:      p.Amount,
			Description: p.Description,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].OccurredAt.Before(entries[j].OccurredAt)
	})

	return entries
}
