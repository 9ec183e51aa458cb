package testutil

import (
	"context"
	"sort"

	"github.com/samber/lo"

	"github.com/tutorpilot/tutorpilot/internal/domain/payment"
	ierr "github.com/tutorpilot/tutorpilot/internal/errors"
	"github.com/tutorpilot/tutorpilot/internal/types"
)

// InMemoryPaymentStore implements payment.Repository
type InMemoryPaymentStore struct {
	*InMemoryStore[*payment.Payment]
}

// NewInMemoryPaymentStore creates a new in-memory payment store
func NewInMemoryPaymentStore() *InMemoryPaymentStore {
	return &InMemoryPaymentStore{
		InMemoryStore: NewInMemoryStore[*payment.Payment](),
	}
}

func (s *InMemoryPaymentStore) Create(ctx context.Context, p *payment.Payment) (*payment.Payment, error) {
	if p == nil {
		return nil, ierr.NewError("payment cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if err := s.InMemoryStore.Create(ctx, p.ID, p.Copy()); err != nil {
		return nil, err
	}
	return p.Copy(), nil
}

func (s *InMemoryPaymentStore) Get(ctx context.Context, id string) (*payment.Payment, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Payment with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return p.Copy(), nil
}

func (s *InMemoryPaymentStore) List(ctx context.Context, filter *types.PaymentFilter) ([]*payment.Payment, error) {
	payments := s.InMemoryStore.List(ctx, paymentFilterFn(filter))
	sortPayments(payments)
	payments = paginate(payments, filter.GetLimit(), filter.GetOffset())
	return lo.Map(payments, func(p *payment.Payment, _ int) *payment.Payment {
		return p.Copy()
	}), nil
}

func (s *InMemoryPaymentStore) Count(ctx context.Context, filter *types.PaymentFilter) (int, error) {
	return len(s.InMemoryStore.List(ctx, paymentFilterFn(filter))), nil
}

func (s *InMemoryPaymentStore) Delete(ctx context.Context, id string) error {
	return s.InMemoryStore.Delete(ctx, id)
}

func (s *InMemoryPaymentStore) ListByStudent(ctx context.Context, studentID string) ([]*payment.Payment, error) {
	payments := s.InMemoryStore.List(ctx, func(p *payment.Payment) bool {
		return p.StudentID == studentID
	})
	sortPayments(payments)
	return lo.Map(payments, func(p *payment.Payment, _ int) *payment.Payment {
		return p.Copy()
	}), nil
}

func paymentFilterFn(filter *types.PaymentFilter) func(*payment.Payment) bool {
	return func(p *payment.Payment) bool {
		if filter == nil {
			return true
		}
		if filter.StudentID != "" && p.StudentID != filter.StudentID {
			return false
		}
		if filter.From != nil && p.PaymentDate.Before(*filter.From) {
			return false
		}
		if filter.To != nil && p.PaymentDate.After(*filter.To) {
			return false
		}
		return true
	}
}

func sortPayments(payments []*payment.Payment) {
	sort.Slice(payments, func(i, j int) bool {
		return payments[i].PaymentDate.After(payments[j].PaymentDate)
	})
}
