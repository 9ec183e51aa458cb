package service

import (
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

type PaymentServiceTestSuite struct {
	testutil.BaseServiceTestSuite
	paymentService PaymentService
	lessonService  LessonService

	now     time.Time
	student *student.Student
}

func TestPaymentService(t *testing.T) {
	suite.Run(t, new(PaymentServiceTestSuite))
}

func (s *PaymentServiceTestSuite) SetupTest() {
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
	s.paymentService = NewPaymentService(params)
	s.lessonService = NewLessonService(params)

	created, err := s.GetStores().StudentRepo.Create(s.GetContext(), &student.Student{
		ID:        "student_test",
		Name:      "Test Student",
		BaseModel: types.BaseModel{Status: types.StatusActive},
	})
	s.Require().NoError(err)
	s.student = created
}

func (s *PaymentServiceTestSuite) TestRecordLinkedPayment() {
	l, err := s.lessonService.CreateLesson(s.GetContext(), &dto.CreateLessonRequest{
		StudentID: s.student.ID,
		StartTime: s.now.Add(time.Hour),
		Cost:      "1500",
	})
	s.Require().NoError(err)

	resp, err := s.paymentService.RecordPayment(s.GetContext(), &dto.CreatePaymentRequest{
		StudentID: s.student.ID,
		Amount:    "1500",
		LessonIDs: []string{l.ID},
	})
	s.Require().NoError(err)
	s.True(resp.Amount.Equal(decimal.NewFromInt(1500)))

	// The linked lesson picks up the payment.
	paid, err := s.lessonService.GetLesson(s.GetContext(), l.ID)
	s.Require().NoError(err)
	s.Equal(types.LessonStatePrepaid, paid.State)
}

func (s *PaymentServiceTestSuite) TestRecordUnlinkedPayment() {
	// A payment without lesson links is a general credit on record; it does
	// not change any lesson's state.
	l, err := s.lessonService.CreateLesson(s.GetContext(), &dto.CreateLessonRequest{
		StudentID: s.student.ID,
		StartTime: s.now.Add(time.Hour),
		Cost:      "1500",
	})
	s.Require().NoError(err)

	_, err = s.paymentService.RecordPayment(s.GetContext(), &dto.CreatePaymentRequest{
		StudentID:   s.student.ID,
		Amount:      "5000",
		Description: "advance for march",
	})
	s.Require().NoError(err)

	unchanged, err := s.lessonService.GetLesson(s.GetContext(), l.ID)
	s.Require().NoError(err)
	s.Equal(types.LessonStateScheduled, unchanged.State)
}

func (s *PaymentServiceTestSuite) TestRecordPaymentValidation() {
	_, err := s.paymentService.RecordPayment(s.GetContext(), &dto.CreatePaymentRequest{
		StudentID: s.student.ID,
		Amount:    "-100",
	})
	s.True(ierr.IsValidation(err))

	_, err = s.paymentService.RecordPayment(s.GetContext(), &dto.CreatePaymentRequest{
		StudentID: "student_missing",
		Amount:    "1000",
	})
	s.True(ierr.IsNotFound(err))
}

func (s *PaymentServiceTestSuite) TestListPayments() {
	for _, amount := range []string{"1000", "2000"} {
		_, err := s.paymentService.RecordPayment(s.GetContext(), &dto.CreatePaymentRequest{
			StudentID: s.student.ID,
			Amount:    amount,
		})
		s.Require().NoError(err)
	}

	resp, err := s.paymentService.ListPayments(s.GetContext(), &types.PaymentFilter{
		QueryFilter: types.NewDefaultQueryFilter(),
		StudentID:   s.student.ID,
	})
	s.Require().NoError(err)
	s.Len(resp.Items, 2)
	s.Equal(2, resp.Pagination.Total)
}

func (s *PaymentServiceTestSuite) TestDeletePaymentNotFound() {
	err := s.paymentService.DeletePayment(s.GetContext(), "payment_missing")
	s.True(ierr.IsNotFound(err))
}
