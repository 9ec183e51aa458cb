package payment

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tutorpilot/tutorpilot/internal/domain/lesson"
	ierr "github.com/tutorpilot/tutorpilot/internal/errors"
	"github.com/tutorpilot/tutorpilot/internal/types"
)

// Payment is a discrete monetary transaction recorded against a student. A
// payment may be linked to specific lessons, marking them paid; an unlinked
// payment is general credit.
type Payment struct {
	ID          string          `json:"id"`
	StudentID   string          `json:"student_id"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"payment_date"`
	LessonIDs   []string        `json:"lesson_ids,omitempty"`
	Description string          `json:"description,omitempty"`

	types.BaseModel
}

// Validate checks the payment's own invariants.
func (p *Payment) Validate() error {
	if p.StudentID == "" {
		return ierr.NewError("payment student id is required").
			WithHint("Every payment must belong to a student").
			Mark(ierr.ErrValidation)
	}
	if !p.Amount.IsPositive() {
		return ierr.NewError("payment amount must be positive").
			WithReportableDetails(map[string]interface{}{
				"amount": p.Amount.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ValidateAllocation checks the payment against the lessons it links to: the
// lessons must belong to the same student and their combined cost must not
// exceed the payment amount.
func (p *Payment) ValidateAllocation(lessons []*lesson.Lesson) error {
	allocated := decimal.Zero
	for _, l := range lessons {
		if l.StudentID != p.StudentID {
			return ierr.NewError("linked lesson belongs to a different student").
				WithHint("A payment can only cover lessons of the same student").
				WithReportableDetails(map[string]interface{}{
					"payment_student_id": p.StudentID,
					"lesson_id":          l.ID,
					"lesson_student_id":  l.StudentID,
				}).
				Mark(ierr.ErrInconsistentPayment)
		}
		allocated = allocated.Add(l.Cost)
	}

	if allocated.GreaterThan(p.Amount) {
		return ierr.NewError("lesson allocation exceeds payment amount").
			WithHint("The linked lessons cost more than the payment covers").
			WithReportableDetails(map[string]interface{}{
				"amount":    p.Amount.String(),
				"allocated": allocated.String(),
			}).
			Mark(ierr.ErrInconsistentPayment)
	}

	return nil
}

// Copy returns a deep copy of the payment.
func (p *Payment) Copy() *Payment {
	if p == nil {
		return nil
	}
	c := *p
	c.LessonIDs = append([]string(nil), p.LessonIDs...)
	return &c
}
