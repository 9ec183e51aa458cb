package lesson

import (
	"context"
	"time"

	"github.com/tutorpilot/tutorpilot/internal/types"
)

// Repository defines the interface for lesson persistence
type Repository interface {
	// Create creates a new lesson and returns the created lesson
	Create(ctx context.Context, lesson *Lesson) (*Lesson, error)

	// Get fetches a lesson by its ID
	Get(ctx context.Context, id string) (*Lesson, error)

	// List returns lessons matching the filter, ordered by start time
	List(ctx context.Context, filter *types.LessonFilter) ([]*Lesson, error)

	// Count returns the number of lessons matching the filter
	Count(ctx context.Context, filter *types.LessonFilter) (int, error)

	// Update persists the lesson's mutable fields and returns the result
	Update(ctx context.Context, lesson *Lesson) (*Lesson, error)

	// Delete removes a lesson by its ID
	Delete(ctx context.Context, id string) error

	// ListByStudent returns all lessons owned by a student
	ListByStudent(ctx context.Context, studentID string) ([]*Lesson, error)

	// ListOverlapping returns non-cancelled lessons whose occupied interval
	// intersects [from, to); used for conflict detection
	ListOverlapping(ctx context.Context, from, to time.Time) ([]*Lesson, error)

	// ListDue returns lessons eligible for the auto-advance sweep:
	// started before now, not completed, not cancelled
	ListDue(ctx context.Context, now time.Time) ([]*Lesson, error)
}
