package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tutorpilot/tutorpilot/internal/domain/lesson"
	"github.com/tutorpilot/tutorpilot/internal/domain/payment"
	"github.com/tutorpilot/tutorpilot/internal/types"
)

func ledgerLesson(id string, cost int64, state types.LessonState) *lesson.Lesson {
	return &lesson.Lesson{
		ID:        id,
		StudentID: "student_1",
		StartTime: time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
		Cost:      decimal.NewFromInt(cost),
		State:     state,
	}
}

func TestComputeBalance(t *testing.T) {
	lessons := []*lesson.Lesson{
		ledgerLesson("lesson_1", 1500, types.LessonStatePrepaid),
		ledgerLesson("lesson_2", 2000, types.LessonStatePrepaid),
		ledgerLesson("lesson_3", 1000, types.LessonStateDebt),
		ledgerLesson("lesson_4", 9000, types.LessonStateCompleted),
		ledgerLesson("lesson_5", 500, types.LessonStateScheduled),
		ledgerLesson("lesson_6", 700, types.LessonStateCancelled),
	}

	bal := ComputeBalance(lessons)
	assert.True(t, bal.PrepaidAmount.Equal(decimal.NewFromInt(3500)))
	assert.True(t, bal.DebtAmount.Equal(decimal.NewFromInt(1000)))
	assert.True(t, bal.Balance.Equal(decimal.NewFromInt(2500)))
}

func TestComputeBalanceInvariant(t *testing.T) {
	// balance == prepaid - debt over arbitrary state mixes.
	lessons := []*lesson.Lesson{
		ledgerLesson("lesson_1", 1200, types.LessonStateDebt),
		ledgerLesson("lesson_2", 800, types.LessonStateDebt),
	}
	bal := ComputeBalance(lessons)
	assert.True(t, bal.Balance.Equal(bal.PrepaidAmount.Sub(bal.DebtAmount)))
	assert.True(t, bal.Balance.Equal(decimal.NewFromInt(-2000)))

	bal = ComputeBalance(nil)
	assert.True(t, bal.Balance.IsZero())
}

func TestBuildHistory(t *testing.T) {
	cancelledAt := time.Date(2025, 3, 8, 9, 0, 0, 0, time.UTC)
	refunded := ledgerLesson("lesson_refunded", 900, types.LessonStateCancelled)
	refunded.Cancellation = types.CancellationOutcomeRefunded
	refunded.CancelledAt = &cancelledAt

	retained := ledgerLesson("lesson_retained", 400, types.LessonStateCancelled)
	retained.Cancellation = types.CancellationOutcomeRetained

	lessons := []*lesson.Lesson{
		ledgerLesson("lesson_1", 1500, types.LessonStateDebt),
		refunded,
		retained,
	}
	payments := []*payment.Payment{
		{
			ID:          "payment_1",
			StudentID:   "student_1",
			Amount:      decimal.NewFromInt(3000),
			PaymentDate: time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC),
		},
	}

	entries := BuildHistory(lessons, payments)
	assert.Len(t, entries, 3)

	// Chronological: refund, payment, lesson charge.
	assert.Equal(t, EntryKindRefund, entries[0].Kind)
	assert.True(t, entries[0].Amount.Equal(decimal.NewFromInt(900)))
	assert.Equal(t, EntryKindPayment, entries[1].Kind)
	assert.Equal(t, EntryKindLesson, entries[2].Kind)
	assert.True(t, entries[2].Amount.Equal(decimal.NewFromInt(-1500)))
}
