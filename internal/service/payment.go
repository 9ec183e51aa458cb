package service

import (
	"context"

	"github.com/samber/lo"

	"github.com/tutorpilot/tutorpilot/internal/api/dto"
	"github.com/tutorpilot/tutorpilot/internal/domain/lesson"
	"github.com/tutorpilot/tutorpilot/internal/domain/payment"
	ierr "github.com/tutorpilot/tutorpilot/internal/errors"
	"github.com/tutorpilot/tutorpilot/internal/types"
)

// PaymentService records and reverses payments. Linking a payment to lessons
// marks them paid in the same transaction; deleting a payment undoes exactly
// the effect it had.
type PaymentService interface {
	RecordPayment(ctx context.Context, req *dto.CreatePaymentRequest) (*dto.PaymentResponse, error)
	GetPayment(ctx context.Context, id string) (*dto.PaymentResponse, error)
	ListPayments(ctx context.Context, filter *types.PaymentFilter) (*dto.ListPaymentsResponse, error)
	DeletePayment(ctx context.Context, id string) error
}

type paymentService struct {
	ServiceParams
	ledger LedgerService
}

func NewPaymentService(params ServiceParams) PaymentService {
	return &paymentService{
		ServiceParams: params,
		ledger:        NewLedgerService(params),
	}
}

func (s *paymentService) RecordPayment(ctx context.Context, req *dto.CreatePaymentRequest) (*dto.PaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.StudentRepo.Get(ctx, req.StudentID); err != nil {
		return nil, err
	}

	p := req.ToPayment(ctx)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	// Fetch and transition the linked lessons inside the recording
	// transaction, each under its per-lesson lock, so the allocation and
	// paid transitions are checked against committed state. A rejection
	// rolls the whole payment back.
	var created *payment.Payment
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		linked := make([]*lesson.Lesson, 0, len(p.LessonIDs))
		for _, lessonID := range p.LessonIDs {
			if err := s.lockLesson(ctx, lessonID); err != nil {
				return err
			}
			l, err := s.LessonRepo.Get(ctx, lessonID)
			if err != nil {
				return err
			}
			linked = append(linked, l)
		}

		if err := p.ValidateAllocation(linked); err != nil {
			return err
		}

		// Compute the transitions before the first write so a rejection
		// leaves nothing half-applied.
		newStates := make(map[string]types.LessonState, len(linked))
		for _, l := range linked {
			newState, err := lesson.MarkPaid(l.State)
			if err != nil {
				return err
			}
			newStates[l.ID] = newState
		}

		var err error
		created, err = s.PaymentRepo.Create(ctx, p)
		if err != nil {
			return err
		}
		for _, l := range linked {
			l.State = newStates[l.ID]
			l.UpdatedAt = s.now()
			l.UpdatedBy = types.GetUserID(ctx)
			if _, err := s.LessonRepo.Update(ctx, l); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.ledger.SyncStudentBalance(ctx, created.StudentID); err != nil {
		return nil, err
	}

	s.Logger.Infow("recorded payment",
		"payment_id", created.ID,
		"student_id", created.StudentID,
		"amount", created.Amount,
		"linked_lessons", len(created.LessonIDs),
	)

	return &dto.PaymentResponse{Payment: created}, nil
}

func (s *paymentService) GetPayment(ctx context.Context, id string) (*dto.PaymentResponse, error) {
	if id == "" {
		return nil, ierr.NewError("payment id is required").
			WithHint("Please provide a valid payment ID").
			Mark(ierr.ErrValidation)
	}

	p, err := s.PaymentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.PaymentResponse{Payment: p}, nil
}

func (s *paymentService) ListPayments(ctx context.Context, filter *types.PaymentFilter) (*dto.ListPaymentsResponse, error) {
	if filter == nil {
		filter = &types.PaymentFilter{}
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}

	payments, err := s.PaymentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.PaymentRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &dto.ListPaymentsResponse{
		Items: lo.Map(payments, func(p *payment.Payment, _ int) *dto.PaymentResponse {
			return &dto.PaymentResponse{Payment: p}
		}),
		Pagination: types.PaginationResponse{
			Limit:  filter.GetLimit(),
			Offset: filter.GetOffset(),
			Total:  total,
		},
	}, nil
}

// DeletePayment removes a payment and returns its linked lessons to unpaid.
// The balance is recomputed from the full remaining history rather than by
// applying an inverse delta, so repeated deletions can never drift.
func (s *paymentService) DeletePayment(ctx context.Context, id string) error {
	p, err := s.PaymentRepo.Get(ctx, id)
	if err != nil {
		return err
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		for _, lessonID := range p.LessonIDs {
			if err := s.lockLesson(ctx, lessonID); err != nil {
				return err
			}
			l, err := s.LessonRepo.Get(ctx, lessonID)
			if err != nil {
				if ierr.IsNotFound(err) {
					continue
				}
				return err
			}
			newState, err := lesson.ReversePayment(l.State)
			if err != nil {
				// Already unpaid, e.g. a manual correction beat us to it.
				if ierr.IsInvalidTransition(err) {
					continue
				}
				return err
			}
			if newState == l.State {
				continue
			}
			l.State = newState
			l.UpdatedAt = s.now()
			l.UpdatedBy = types.GetUserID(ctx)
			if _, err := s.LessonRepo.Update(ctx, l); err != nil {
				return err
			}
		}
		return s.PaymentRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	invalidateBalance(ctx, s.ServiceParams, p.StudentID)
	_, err = s.ledger.SyncStudentBalance(ctx, p.StudentID)
	return err
}
