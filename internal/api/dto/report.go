package dto

import (
	"time"

	"github.com/tutorpilot/tutorpilot/internal/domain/lesson"
)

// FinanceReportRequest bounds the report to an optional date range over
// lesson start times.
type FinanceReportRequest struct {
	From *time.Time `json:"from,omitempty" form:"from"`
	To   *time.Time `json:"to,omitempty" form:"to"`
}

// FinanceReportResponse is the center-wide financial summary. The sweep runs
// before the report so the figures reflect up-to-date lesson states.
type FinanceReportResponse struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`

	RealizedRevenue string `json:"realized_revenue"`
	OutstandingDebt string `json:"outstanding_debt"`
	PrepaidCredit   string `json:"prepaid_credit"`
	RefundedAmount  string `json:"refunded_amount"`
	RetainedAmount  string `json:"retained_amount"`

	CompletedLessons int `json:"completed_lessons"`
	DebtLessons      int `json:"debt_lessons"`
	PrepaidLessons   int `json:"prepaid_lessons"`
	ScheduledLessons int `json:"scheduled_lessons"`
	CancelledLessons int `json:"cancelled_lessons"`
}

// SweepResponse reports the lessons advanced by an auto-advance run.
type SweepResponse struct {
	RanAt         time.Time            `json:"ran_at"`
	AdvancedCount int                  `json:"advanced_count"`
	Changes       []lesson.StateChange `json:"changes"`
}
