package student

import (
	"github.com/shopspring/decimal"

	ierr "github.com/tutorpilot/tutorpilot/internal/errors"
	"github.com/tutorpilot/tutorpilot/internal/types"
)

// Student owns a collection of lessons and payments. Balance is a cached
// aggregate maintained by the ledger service; it is never the source of
// truth and can always be corrected by recomputation.
type Student struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Phone   string          `json:"phone,omitempty"`
	Email   string          `json:"email,omitempty"`
	Notes   string          `json:"notes,omitempty"`
	Balance decimal.Decimal `json:"balance"`

	types.BaseModel
}

func (s *Student) Validate() error {
	if s.Name == "" {
		return ierr.NewError("student name is required").
			WithHint("Please provide the student's name").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Copy returns a copy of the student.
func (s *Student) Copy() *Student {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
