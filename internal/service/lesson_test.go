package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/tutorpilot/tutorpilot/internal/api/dto"
	"github.com/tutorpilot/tutorpilot/internal/domain/student"
	ierr "github.com/tutorpilot/tutorpilot/internal/errors"
	"github.com/tutorpilot/tutorpilot/internal/testutil"
	"github.com/tutorpilot/tutorpilot/internal/types"
)

type LessonServiceTestSuite struct {
	testutil.BaseServiceTestSuite
	lessonService  LessonService
	paymentService PaymentService
	ledgerService  LedgerService
	sweepService   SweepService

	now      time.Time
	testData struct {
		student *student.Student
	}
}

func TestLessonService(t *testing.T) {
	suite.Run(t, new(LessonServiceTestSuite))
}

func (s *LessonServiceTestSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	params := s.paramsWithDB(types.NoopTxRunner{})
	s.lessonService = NewLessonService(params)
	s.paymentService = NewPaymentService(params)
	s.ledgerService = NewLedgerService(params)
	s.sweepService = NewSweepService(params)

	st := &student.Student{
		ID:        "student_test",
		Name:      "Test Student",
		BaseModel: types.BaseModel{Status: types.StatusActive},
	}
	created, err := s.GetStores().StudentRepo.Create(s.GetContext(), st)
	s.Require().NoError(err)
	s.testData.student = created
}

func (s *LessonServiceTestSuite) paramsWithDB(db types.TxRunner) ServiceParams {
	return ServiceParams{
		Logger:      s.GetLogger(),
		Config:      s.GetConfig(),
		DB:          db,
		Clock:       func() time.Time { return s.now },
		LessonRepo:  s.GetStores().LessonRepo,
		PaymentRepo: s.GetStores().PaymentRepo,
		StudentRepo: s.GetStores().StudentRepo,
	}
}

func (s *LessonServiceTestSuite) createLesson(start time.Time, cost string, paid bool) *dto.LessonResponse {
	resp, err := s.lessonService.CreateLesson(s.GetContext(), &dto.CreateLessonRequest{
		StudentID: s.testData.student.ID,
		StartTime: start,
		Cost:      cost,
		Paid:      paid,
	})
	s.Require().NoError(err)
	return resp
}

func (s *LessonServiceTestSuite) balance() decimal.Decimal {
	bal, err := s.ledgerService.SyncStudentBalance(s.GetContext(), s.testData.student.ID)
	s.Require().NoError(err)
	return bal.Balance
}

func (s *LessonServiceTestSuite) TestCreateLesson() {
	start := s.now.Add(24 * time.Hour)
	resp := s.createLesson(start, "1500", false)

	s.Equal(types.LessonStateScheduled, resp.State)
	s.Equal(s.testData.student.ID, resp.StudentID)
	s.True(resp.Cost.Equal(decimal.NewFromInt(1500)))
	s.Equal(types.CancellationOutcomeNone, resp.Cancellation)
}

func (s *LessonServiceTestSuite) TestCreateLessonUnknownStudent() {
	_, err := s.lessonService.CreateLesson(s.GetContext(), &dto.CreateLessonRequest{
		StudentID: "student_missing",
		StartTime: s.now.Add(time.Hour),
		Cost:      "1000",
	})
	s.True(ierr.IsNotFound(err))
}

func (s *LessonServiceTestSuite) TestCreateLessonConflict() {
	start := s.now.Add(24 * time.Hour)
	first := s.createLesson(start, "1000", false)

	_, err := s.lessonService.CreateLesson(s.GetContext(), &dto.CreateLessonRequest{
		StudentID: s.testData.student.ID,
		StartTime: start.Add(30 * time.Minute),
		Cost:      "1000",
	})
	s.True(ierr.IsScheduleConflict(err))
	details := ierr.Details(err)
	s.Contains(details["conflicting_lesson_ids"], first.ID)

	// Back to back does not conflict.
	_, err = s.lessonService.CreateLesson(s.GetContext(), &dto.CreateLessonRequest{
		StudentID: s.testData.student.ID,
		StartTime: start.Add(time.Hour),
		Cost:      "1000",
	})
	s.NoError(err)
}

func (s *LessonServiceTestSuite) TestCancelledLessonFreesSlot() {
	start := s.now.Add(24 * time.Hour)
	first := s.createLesson(start, "1000", false)

	_, err := s.lessonService.CancelLesson(s.GetContext(), first.ID)
	s.Require().NoError(err)

	_, err = s.lessonService.CreateLesson(s.GetContext(), &dto.CreateLessonRequest{
		StudentID: s.testData.student.ID,
		StartTime: start,
		Cost:      "1000",
	})
	s.NoError(err)
}

func (s *LessonServiceTestSuite) TestUpdateLessonTransitions() {
	resp := s.createLesson(s.now.Add(time.Hour), "1000", true)
	s.Equal(types.LessonStatePrepaid, resp.State)

	// Completing a prepaid lesson realizes the revenue.
	completed, err := s.lessonService.CompleteLesson(s.GetContext(), resp.ID)
	s.Require().NoError(err)
	s.Equal(types.LessonStateCompleted, completed.State)

	// Un-completing is rejected.
	uncomplete := false
	_, err = s.lessonService.UpdateLesson(s.GetContext(), resp.ID, &dto.UpdateLessonRequest{
		Completed: &uncomplete,
	})
	s.True(ierr.IsInvalidTransition(err))

	// Removing realized payment is rejected.
	unpaid := false
	_, err = s.lessonService.UpdateLesson(s.GetContext(), resp.ID, &dto.UpdateLessonRequest{
		Paid: &unpaid,
	})
	s.True(ierr.IsInvalidTransition(err))
}

func (s *LessonServiceTestSuite) TestCancelRefundBoundary() {
	// Lesson at 15:00; a cancellation at 10:00 sharp is refundable, at
	// 10:01 it is not.
	start := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

	s.now = time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	refundable := s.createLesson(start, "1500", true)
	resp, err := s.lessonService.CancelLesson(s.GetContext(), refundable.ID)
	s.Require().NoError(err)
	s.True(resp.Refundable)
	s.Equal("1500", resp.Amount)
	s.Equal(types.CancellationOutcomeRefunded, resp.Lesson.Cancellation)

	// The cancelled lesson freed the slot, so the same time can be rebooked.
	s.now = time.Date(2025, 3, 10, 10, 1, 0, 0, time.UTC)
	late := s.createLesson(start, "1500", true)

	resp, err = s.lessonService.CancelLesson(s.GetContext(), late.ID)
	s.Require().NoError(err)
	s.False(resp.Refundable)
	s.Equal("0", resp.Amount)
	s.Equal(types.CancellationOutcomeRetained, resp.Lesson.Cancellation)
}

func (s *LessonServiceTestSuite) TestCancelledLessonImmutable() {
	resp := s.createLesson(s.now.Add(24*time.Hour), "1000", false)

	_, err := s.lessonService.CancelLesson(s.GetContext(), resp.ID)
	s.Require().NoError(err)

	paid := true
	_, err = s.lessonService.UpdateLesson(s.GetContext(), resp.ID, &dto.UpdateLessonRequest{
		Paid: &paid,
	})
	s.True(ierr.IsInvalidTransition(err))

	_, err = s.lessonService.CancelLesson(s.GetContext(), resp.ID)
	s.True(ierr.IsInvalidTransition(err))
}

func (s *LessonServiceTestSuite) TestLifecycleScenario() {
	// Unpaid lesson tomorrow, cost 1500: scheduled, balance unchanged.
	start := s.now.Add(24 * time.Hour)
	resp := s.createLesson(start, "1500", false)
	s.Equal(types.LessonStateScheduled, resp.State)
	s.True(s.balance().IsZero())

	// A day after the lesson the sweep advances it to debt.
	s.now = start.Add(24 * time.Hour)
	sweepResp, err := s.sweepService.Run(s.GetContext())
	s.Require().NoError(err)
	s.Equal(1, sweepResp.AdvancedCount)
	s.Equal(types.LessonStateDebt, sweepResp.Changes[0].NewState)
	s.True(s.balance().Equal(decimal.NewFromInt(-1500)))

	// Sweep is idempotent.
	sweepResp, err = s.sweepService.Run(s.GetContext())
	s.Require().NoError(err)
	s.Zero(sweepResp.AdvancedCount)

	// A linked payment clears the debt and restores the balance.
	_, err = s.paymentService.RecordPayment(s.GetContext(), &dto.CreatePaymentRequest{
		StudentID: s.testData.student.ID,
		Amount:    "1500",
		LessonIDs: []string{resp.ID},
	})
	s.Require().NoError(err)

	updated, err := s.lessonService.GetLesson(s.GetContext(), resp.ID)
	s.Require().NoError(err)
	s.Equal(types.LessonStateCompleted, updated.State)
	s.True(s.balance().IsZero())
}

// hookTxRunner runs a side effect once before the first unit of work, to
// model a writer whose transaction commits just ahead of the caller's.
type hookTxRunner struct {
	once   sync.Once
	before func()
}

func (r *hookTxRunner) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.once.Do(func() {
		if r.before != nil {
			r.before()
		}
	})
	return fn(ctx)
}

// lockRecordingTxRunner records which advisory lock keys a unit of work
// acquires.
type lockRecordingTxRunner struct {
	keys []string
}

func (r *lockRecordingTxRunner) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (r *lockRecordingTxRunner) LockKey(_ context.Context, key string) error {
	r.keys = append(r.keys, key)
	return nil
}

func (s *LessonServiceTestSuite) TestCancelSeesPaymentCommittedFirst() {
	resp := s.createLesson(s.now.Add(24*time.Hour), "1500", false)

	// A linked payment commits between the cancel request and the cancel
	// transaction. The cancel must decide the outcome from the committed
	// paid state, so the refund is owed rather than silently dropped.
	db := &hookTxRunner{before: func() {
		_, err := s.paymentService.RecordPayment(s.GetContext(), &dto.CreatePaymentRequest{
			StudentID: s.testData.student.ID,
			Amount:    "1500",
			LessonIDs: []string{resp.ID},
		})
		s.Require().NoError(err)
	}}
	racing := NewLessonService(s.paramsWithDB(db))

	cancelled, err := racing.CancelLesson(s.GetContext(), resp.ID)
	s.Require().NoError(err)
	s.True(cancelled.Refundable)
	s.Equal("1500", cancelled.Amount)
	s.Equal(types.CancellationOutcomeRefunded, cancelled.Lesson.Cancellation)
}

func (s *LessonServiceTestSuite) TestPaymentRejectedWhenCancelCommitsFirst() {
	resp := s.createLesson(s.now.Add(24*time.Hour), "1500", false)

	// The lesson is cancelled just before the payment transaction runs;
	// paying a cancelled lesson must be rejected, not applied blindly.
	db := &hookTxRunner{before: func() {
		_, err := s.lessonService.CancelLesson(s.GetContext(), resp.ID)
		s.Require().NoError(err)
	}}
	racing := NewPaymentService(s.paramsWithDB(db))

	_, err := racing.RecordPayment(s.GetContext(), &dto.CreatePaymentRequest{
		StudentID: s.testData.student.ID,
		Amount:    "1500",
		LessonIDs: []string{resp.ID},
	})
	s.True(ierr.IsInvalidTransition(err))
}

func (s *LessonServiceTestSuite) TestMutationsTakeAdvisoryLocks() {
	db := &lockRecordingTxRunner{}
	svc := NewLessonService(s.paramsWithDB(db))

	resp, err := svc.CreateLesson(s.GetContext(), &dto.CreateLessonRequest{
		StudentID: s.testData.student.ID,
		StartTime: s.now.Add(24 * time.Hour),
		Cost:      "1000",
	})
	s.Require().NoError(err)
	s.Contains(db.keys, types.GenerateLockKey(types.LockScopeSchedule, nil))

	_, err = svc.CancelLesson(s.GetContext(), resp.ID)
	s.Require().NoError(err)
	s.Contains(db.keys, types.GenerateLockKey(types.LockScopeLesson, map[string]interface{}{
		"lesson_id": resp.ID,
	}))
}
