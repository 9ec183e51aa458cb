package student

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/tutorpilot/tutorpilot/internal/types"
)

// Repository defines the interface for student persistence
type Repository interface {
	// Create creates a new student and returns the created student
	Create(ctx context.Context, student *Student) (*Student, error)

	// Get fetches a student by its ID
	Get(ctx context.Context, id string) (*Student, error)

	// List returns students matching the filter
	List(ctx context.Context, filter *types.StudentFilter) ([]*Student, error)

	// Count returns the number of students matching the filter
	Count(ctx context.Context, filter *types.StudentFilter) (int, error)

	// Update persists the student's mutable fields and returns the result
	Update(ctx context.Context, student *Student) (*Student, error)

	// Delete removes a student by its ID
	Delete(ctx context.Context, id string) error

	// UpdateBalance writes the recomputed cached balance
	UpdateBalance(ctx context.Context, id string, balance decimal.Decimal) error

	// ListIDs returns the IDs of all active students; used by the full
	// balance resync
	ListIDs(ctx context.Context) ([]string, error)
}
