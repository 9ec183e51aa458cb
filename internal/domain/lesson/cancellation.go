package lesson

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tutorpilot/tutorpilot/internal/types"
)

// RefundWindow is the minimum notice before the scheduled start for a
// cancellation to return the lesson cost to the student's prepaid credit.
// Anything later, including lessons already in progress or past, converts the
// cost to realized revenue. The asymmetry discourages late cancellations
// without penalizing advance notice.
const RefundWindow = 5 * time.Hour

// CancellationDecision is the financial outcome of cancelling a lesson.
type CancellationDecision struct {
	Refundable bool            `json:"refundable"`
	Amount     decimal.Decimal `json:"amount"`
}

// DecideCancellation applies the refund policy. Exactly RefundWindow of
// notice still qualifies for a refund; one minute less does not.
func DecideCancellation(scheduledStart, now time.Time, cost decimal.Decimal) CancellationDecision {
	refundable := scheduledStart.Sub(now) >= RefundWindow
	amount := decimal.Zero
	if refundable {
		amount = cost
	}
	return CancellationDecision{
		Refundable: refundable,
		Amount:     amount,
	}
}

// OutcomeFor records what happened to the money: only a prepaid lesson has
// money in play, and the refund decision splits it between returned credit
// and retained revenue.
func OutcomeFor(prior types.LessonState, decision CancellationDecision) types.CancellationOutcome {
	if prior != types.LessonStatePrepaid {
		return types.CancellationOutcomeNone
	}
	if decision.Refundable {
		return types.CancellationOutcomeRefunded
	}
	return types.CancellationOutcomeRetained
}
