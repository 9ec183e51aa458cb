package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/tutorpilot/tutorpilot/internal/api/dto"
	"github.com/tutorpilot/tutorpilot/internal/types"
)

// ReportService produces the center-wide financial summary. It always runs
// the auto-advance sweep first so the figures are computed over up-to-date
// lesson states.
type ReportService interface {
	FinanceReport(ctx context.Context, req *dto.FinanceReportRequest) (*dto.FinanceReportResponse, error)
}

type reportService struct {
	ServiceParams
	sweep SweepService
}

func NewReportService(params ServiceParams) ReportService {
	return &reportService{
		ServiceParams: params,
		sweep:         NewSweepService(params),
	}
}

func (s *reportService) FinanceReport(ctx context.Context, req *dto.FinanceReportRequest) (*dto.FinanceReportResponse, error) {
	if req == nil {
		req = &dto.FinanceReportRequest{}
	}

	if _, err := s.sweep.Run(ctx); err != nil {
		return nil, err
	}

	filter := &types.LessonFilter{
		QueryFilter: types.NewNoLimitQueryFilter(),
		StartAfter:  req.From,
		StartBefore: req.To,
	}
	lessons, err := s.LessonRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := &dto.FinanceReportResponse{From: req.From, To: req.To}
	realized := decimal.Zero
	debt := decimal.Zero
	prepaid := decimal.Zero
	refunded := decimal.Zero
	retained := decimal.Zero

	for _, l := range lessons {
		switch l.State {
		case types.LessonStateCompleted:
			realized = realized.Add(l.Cost)
			resp.CompletedLessons++
		case types.LessonStateDebt:
			debt = debt.Add(l.Cost)
			resp.DebtLessons++
		case types.LessonStatePrepaid:
			prepaid = prepaid.Add(l.Cost)
			resp.PrepaidLessons++
		case types.LessonStateScheduled:
			resp.ScheduledLessons++
		case types.LessonStateCancelled:
			resp.CancelledLessons++
			switch l.Cancellation {
			case types.CancellationOutcomeRefunded:
				refunded = refunded.Add(l.Cost)
			case types.CancellationOutcomeRetained:
				retained = retained.Add(l.Cost)
				realized = realized.Add(l.Cost)
			}
		}
	}

	resp.RealizedRevenue = realized.String()
	resp.OutstandingDebt = debt.String()
	resp.PrepaidCredit = prepaid.String()
	resp.RefundedAmount = refunded.String()
	resp.RetainedAmount = retained.String()

	return resp, nil
}
