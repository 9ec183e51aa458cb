package payment

import (
	"context"

	"github.com/tutorpilot/tutorpilot/internal/types"
)

// Repository defines the interface for payment persistence
type Repository interface {
	// Create creates a new payment and returns the created payment
	Create(ctx context.Context, payment *Payment) (*Payment, error)

	// Get fetches a payment by its ID
	Get(ctx context.Context, id string) (*Payment, error)

	// List returns payments matching the filter, newest first
	List(ctx context.Context, filter *types.PaymentFilter) ([]*Payment, error)

	// Count returns the number of payments matching the filter
	Count(ctx context.Context, filter *types.PaymentFilter) (int, error)

	// Delete removes a payment by its ID
	Delete(ctx context.Context, id string) error

	// ListByStudent returns all payments recorded for a student
	ListByStudent(ctx context.Context, studentID string) ([]*Payment, error)
}
