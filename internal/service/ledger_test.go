package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/tutorpilot/tutorpilot/internal/api/dto"
	"github.com/tutorpilot/tutorpilot/internal/cache"
	"github.com/tutorpilot/tutorpilot/internal/domain/ledger"
	"github.com/tutorpilot/tutorpilot/internal/domain/student"
	ierr "github.com/tutorpilot/tutorpilot/internal/errors"
	"github.com/tutorpilot/tutorpilot/internal/testutil"
	"github.com/tutorpilot/tutorpilot/internal/types"
)

type LedgerServiceTestSuite struct {
	testutil.BaseServiceTestSuite
	ledgerService  LedgerService
	lessonService  LessonService
	paymentService PaymentService

	now     time.Time
	student *student.Student
}

func TestLedgerService(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

func (s *LedgerServiceTestSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	params := ServiceParams{
		Logger:      s.GetLogger(),
		Config:      s.GetConfig(),
		DB:          types.NoopTxRunner{},
		Clock:       func() time.Time { return s.now },
		LessonRepo:  s.GetStores().LessonRepo,
		PaymentRepo: s.GetStores().PaymentRepo,
		StudentRepo: s.GetStores().StudentRepo,
	}
	s.ledgerService = NewLedgerService(params)
	s.lessonService = NewLessonService(params)
	s.paymentService = NewPaymentService(params)

	created, err := s.GetStores().StudentRepo.Create(s.GetContext(), &student.Student{
		ID:        "student_test",
		Name:      "Test Student",
		BaseModel: types.BaseModel{Status: types.StatusActive},
	})
	s.Require().NoError(err)
	s.student = created
}

func (s *LedgerServiceTestSuite) createLesson(start time.Time, cost string, paid bool) *dto.LessonResponse {
	resp, err := s.lessonService.CreateLesson(s.GetContext(), &dto.CreateLessonRequest{
		StudentID: s.student.ID,
		StartTime: start,
		Cost:      cost,
		Paid:      paid,
	})
	s.Require().NoError(err)
	return resp
}

func (s *LedgerServiceTestSuite) balance() ledger.Balance {
	bal, err := s.ledgerService.SyncStudentBalance(s.GetContext(), s.student.ID)
	s.Require().NoError(err)
	return bal
}

func (s *LedgerServiceTestSuite) TestBalanceConservation() {
	// balance == prepaid - debt after every operation.
	s.createLesson(s.now.Add(24*time.Hour), "1500", true)
	bal := s.balance()
	s.True(bal.Balance.Equal(bal.PrepaidAmount.Sub(bal.DebtAmount)))
	s.True(bal.Balance.Equal(decimal.NewFromInt(1500)))

	s.createLesson(s.now.Add(26*time.Hour), "2000", false)
	bal = s.balance()
	s.True(bal.Balance.Equal(bal.PrepaidAmount.Sub(bal.DebtAmount)))
	s.True(bal.Balance.Equal(decimal.NewFromInt(1500)))

	// Time passes; both lessons advance.
	s.now = s.now.Add(48 * time.Hour)
	bal = s.balance()
	s.True(bal.Balance.Equal(bal.PrepaidAmount.Sub(bal.DebtAmount)))
	s.True(bal.PrepaidAmount.IsZero())
	s.True(bal.DebtAmount.Equal(decimal.NewFromInt(2000)))
	s.True(bal.Balance.Equal(decimal.NewFromInt(-2000)))
}

func (s *LedgerServiceTestSuite) TestDebtClearance() {
	// A debt lesson of cost 2000, once paid, becomes completed and the
	// balance increases by exactly 2000.
	resp := s.createLesson(s.now.Add(time.Hour), "2000", false)
	s.now = s.now.Add(24 * time.Hour)

	before := s.balance()
	s.True(before.Balance.Equal(decimal.NewFromInt(-2000)))

	_, err := s.paymentService.RecordPayment(s.GetContext(), &dto.CreatePaymentRequest{
		StudentID: s.student.ID,
		Amount:    "2000",
		LessonIDs: []string{resp.ID},
	})
	s.Require().NoError(err)

	updated, err := s.lessonService.GetLesson(s.GetContext(), resp.ID)
	s.Require().NoError(err)
	s.Equal(types.LessonStateCompleted, updated.State)

	after := s.balance()
	s.True(after.Balance.Sub(before.Balance).Equal(decimal.NewFromInt(2000)))
}

func (s *LedgerServiceTestSuite) TestPaymentDeletionReversal() {
	// Deleting a payment restores the balance to the value it would have
	// had without the payment.
	lesson1 := s.createLesson(s.now.Add(time.Hour), "1200", false)
	s.now = s.now.Add(24 * time.Hour)

	before := s.balance()

	pay, err := s.paymentService.RecordPayment(s.GetContext(), &dto.CreatePaymentRequest{
		StudentID: s.student.ID,
		Amount:    "1200",
		LessonIDs: []string{lesson1.ID},
	})
	s.Require().NoError(err)
	s.True(s.balance().Balance.Equal(before.Balance.Add(decimal.NewFromInt(1200))))

	err = s.paymentService.DeletePayment(s.GetContext(), pay.ID)
	s.Require().NoError(err)

	restored := s.balance()
	s.True(restored.Balance.Equal(before.Balance))

	reverted, err := s.lessonService.GetLesson(s.GetContext(), lesson1.ID)
	s.Require().NoError(err)
	s.Equal(types.LessonStateDebt, reverted.State)
}

func (s *LedgerServiceTestSuite) TestInconsistentPaymentRejected() {
	lesson1 := s.createLesson(s.now.Add(time.Hour), "1500", false)

	// Allocation exceeding the amount is rejected.
	_, err := s.paymentService.RecordPayment(s.GetContext(), &dto.CreatePaymentRequest{
		StudentID: s.student.ID,
		Amount:    "1000",
		LessonIDs: []string{lesson1.ID},
	})
	s.True(ierr.IsInconsistentPayment(err))

	// A lesson of another student cannot be covered.
	other, err := s.GetStores().StudentRepo.Create(s.GetContext(), &student.Student{
		ID:        "student_other",
		Name:      "Other Student",
		BaseModel: types.BaseModel{Status: types.StatusActive},
	})
	s.Require().NoError(err)

	_, err = s.paymentService.RecordPayment(s.GetContext(), &dto.CreatePaymentRequest{
		StudentID: other.ID,
		Amount:    "5000",
		LessonIDs: []string{lesson1.ID},
	})
	s.True(ierr.IsInconsistentPayment(err))
}

func (s *LedgerServiceTestSuite) TestGetLedgerHistory() {
	lesson1 := s.createLesson(s.now.Add(time.Hour), "1500", false)
	s.now = s.now.Add(24 * time.Hour)

	_, err := s.paymentService.RecordPayment(s.GetContext(), &dto.CreatePaymentRequest{
		StudentID: s.student.ID,
		Amount:    "1500",
		LessonIDs: []string{lesson1.ID},
	})
	s.Require().NoError(err)

	resp, err := s.ledgerService.GetLedger(s.GetContext(), s.student.ID)
	s.Require().NoError(err)
	s.Len(resp.Entries, 2)
	s.True(resp.Balance.Balance.IsZero())
}

func (s *LedgerServiceTestSuite) TestCachedBalanceExpiresWhenLessonFallsDue() {
	c := cache.GetInMemoryCache()
	c.Flush(s.GetContext())

	cached := NewLedgerService(ServiceParams{
		Logger:      s.GetLogger(),
		Config:      s.GetConfig(),
		DB:          types.NoopTxRunner{},
		Cache:       c,
		Clock:       func() time.Time { return s.now },
		LessonRepo:  s.GetStores().LessonRepo,
		PaymentRepo: s.GetStores().PaymentRepo,
		StudentRepo: s.GetStores().StudentRepo,
	})

	start := s.now.Add(2 * time.Hour)
	s.createLesson(start, "1500", true)

	// First read computes and caches the prepaid balance.
	resp, err := cached.GetBalance(s.GetContext(), s.student.ID)
	s.Require().NoError(err)
	s.True(resp.Balance.Balance.Equal(decimal.NewFromInt(1500)))

	// The cached figure only holds until the lesson falls due; a read past
	// the start must advance the lesson and realize the prepaid amount.
	s.now = start.Add(time.Minute)
	resp, err = cached.GetBalance(s.GetContext(), s.student.ID)
	s.Require().NoError(err)
	s.True(resp.Balance.Balance.IsZero())
	s.True(resp.Balance.PrepaidAmount.IsZero())
}

func (s *LedgerServiceTestSuite) TestSyncAllBalances() {
	s.createLesson(s.now.Add(time.Hour), "1000", true)

	count, err := s.ledgerService.SyncAllBalances(s.GetContext())
	s.Require().NoError(err)
	s.Equal(1, count)

	st, err := s.GetStores().StudentRepo.Get(s.GetContext(), s.student.ID)
	s.Require().NoError(err)
	s.True(st.Balance.Equal(decimal.NewFromInt(1000)))
}
