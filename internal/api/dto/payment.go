package dto

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tutorpilot/tutorpilot/internal/domain/payment"
	ierr "github.com/tutorpilot/tutorpilot/internal/errors"
	"github.com/tutorpilot/tutorpilot/internal/types"
	"github.com/tutorpilot/tutorpilot/internal/validator"
)

type CreatePaymentRequest struct {
	StudentID   string     `json:"student_id" validate:"required"`
	Amount      string     `json:"amount" validate:"required"`
	PaymentDate *time.Time `json:"payment_date,omitempty"`
	LessonIDs   []string   `json:"lesson_ids,omitempty"`
	Description string     `json:"description,omitempty"`
}

func (r *CreatePaymentRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}

	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return ierr.NewError("invalid amount format").
			WithHint("Amount must be a valid decimal number").
			WithReportableDetails(map[string]interface{}{
				"amount": r.Amount,
			}).
			Mark(ierr.ErrValidation)
	}
	if !amount.IsPositive() {
		return ierr.NewError("amount must be positive").
			WithHint("Payment amount must be greater than zero").
			WithReportableDetails(map[string]interface{}{
				"amount": r.Amount,
			}).
			Mark(ierr.ErrValidation)
	}

	return nil
}

func (r *CreatePaymentRequest) ToPayment(ctx context.Context) *payment.Payment {
	amount, _ := decimal.NewFromString(r.Amount)
	paymentDate := time.Now().UTC()
	if r.PaymentDate != nil {
		paymentDate = r.PaymentDate.UTC()
	}
	return &payment.Payment{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
		StudentID:   r.StudentID,
		Amount:      amount,
		PaymentDate: paymentDate,
		LessonIDs:   r.LessonIDs,
		Description: r.Description,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
}

type PaymentResponse struct {
	*payment.Payment
}

type ListPaymentsResponse struct {
	Items      []*PaymentResponse       `json:"items"`
	Pagination types.PaginationResponse `json:"pagination"`
}
