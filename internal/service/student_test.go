package service

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"

	"github.com/tutorpilot/tutorpilot/internal/api/dto"
	ierr "github.com/tutorpilot/tutorpilot/internal/errors"
	"github.com/tutorpilot/tutorpilot/internal/testutil"
	"github.com/tutorpilot/tutorpilot/internal/types"
)

type StudentServiceTestSuite struct {
	testutil.BaseServiceTestSuite
	studentService StudentService
	lessonService  LessonService
}

func TestStudentService(t *testing.T) {
	suite.Run(t, new(StudentServiceTestSuite))
}

func (s *StudentServiceTestSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	params := ServiceParams{
		Logger:      s.GetLogger(),
		Config:      s.GetConfig(),
		DB:          types.NoopTxRunner{},
		LessonRepo:  s.GetStores().LessonRepo,
		PaymentRepo: s.GetStores().PaymentRepo,
		StudentRepo: s.GetStores().StudentRepo,
	}
	s.studentService = NewStudentService(params)
	s.lessonService = NewLessonService(params)
}

func (s *StudentServiceTestSuite) TestStudentLifecycle() {
	created, err := s.studentService.CreateStudent(s.GetContext(), &dto.CreateStudentRequest{
		Name:  "Alice",
		Email: "alice@example.com",
	})
	s.Require().NoError(err)
	s.NotEmpty(created.ID)

	got, err := s.studentService.GetStudent(s.GetContext(), created.ID)
	s.Require().NoError(err)
	s.Equal("Alice", got.Name)

	updated, err := s.studentService.UpdateStudent(s.GetContext(), created.ID, &dto.UpdateStudentRequest{
		Phone: lo.ToPtr("555-0101"),
	})
	s.Require().NoError(err)
	s.Equal("555-0101", updated.Phone)
	s.Equal("Alice", updated.Name)

	err = s.studentService.DeleteStudent(s.GetContext(), created.ID)
	s.Require().NoError(err)

	_, err = s.studentService.GetStudent(s.GetContext(), created.ID)
	s.True(ierr.IsNotFound(err))
}

func (s *StudentServiceTestSuite) TestCreateStudentValidation() {
	_, err := s.studentService.CreateStudent(s.GetContext(), &dto.CreateStudentRequest{})
	s.True(ierr.IsValidation(err))

	_, err = s.studentService.CreateStudent(s.GetContext(), &dto.CreateStudentRequest{
		Name:  "Bob",
		Email: "not-an-email",
	})
	s.True(ierr.IsValidation(err))
}

func (s *StudentServiceTestSuite) TestDeleteStudentWithLessonsRefused() {
	created, err := s.studentService.CreateStudent(s.GetContext(), &dto.CreateStudentRequest{
		Name: "Carol",
	})
	s.Require().NoError(err)

	_, err = s.lessonService.CreateLesson(s.GetContext(), &dto.CreateLessonRequest{
		StudentID: created.ID,
		StartTime: time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC),
		Cost:      "1500",
	})
	s.Require().NoError(err)

	err = s.studentService.DeleteStudent(s.GetContext(), created.ID)
	s.True(ierr.IsInvalidOperation(err))
}
