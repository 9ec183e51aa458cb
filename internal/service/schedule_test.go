package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/tutorpilot/tutorpilot/internal/api/dto"
	"github.com/tutorpilot/tutorpilot/internal/domain/student"
	ierr "github.com/tutorpilot/tutorpilot/internal/errors"
	"github.com/tutorpilot/tutorpilot/internal/testutil"
	"github.com/tutorpilot/tutorpilot/internal/types"
)

type ScheduleServiceTestSuite struct {
	testutil.BaseServiceTestSuite
	scheduleService ScheduleService
	lessonService   LessonService

	now     time.Time
	student *student.Student
}

func TestScheduleService(t *testing.T) {
	suite.Run(t, new(ScheduleServiceTestSuite))
}

func (s *ScheduleServiceTestSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.now = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	params := ServiceParams{
		Logger:      s.GetLogger(),
		Config:      s.GetConfig(),
		DB:          types.NoopTxRunner{},
		Clock:       func() time.Time { return s.now },
		LessonRepo:  s.GetStores().LessonRepo,
		PaymentRepo: s.GetStores().PaymentRepo,
		StudentRepo: s.GetStores().StudentRepo,
	}
	s.scheduleService = NewScheduleService(params)
	s.lessonService = NewLessonService(params)

	created, err := s.GetStores().StudentRepo.Create(s.GetContext(), &student.Student{
		ID:        "student_test",
		Name:      "Test Student",
		BaseModel: types.BaseModel{Status: types.StatusActive},
	})
	s.Require().NoError(err)
	s.student = created
}

func (s *ScheduleServiceTestSuite) TestBulkCreateLessons() {
	// Mondays and Wednesdays at 10:00 over two weeks: 2025-03-03 .. 2025-03-14.
	resp, err := s.scheduleService.BulkCreateLessons(s.GetContext(), &dto.BulkCreateLessonsRequest{
		StudentID:       s.student.ID,
		Weekdays:        []string{"monday", "wednesday"},
		Hour:            10,
		Minute:          0,
		DurationMinutes: 60,
		StartDate:       time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		Cost:            "1500",
	})
	s.Require().NoError(err)
	s.Len(resp.Created, 4)
	s.Empty(resp.Conflicts)

	for _, l := range resp.Created {
		s.Equal(10, l.StartTime.Hour())
		s.Equal(types.LessonStateScheduled, l.State)
	}
}

func (s *ScheduleServiceTestSuite) TestBulkCreatePartialSuccess() {
	// Occupy Wednesday 2025-03-05 at 10:30, overlapping the recurrence slot.
	_, err := s.lessonService.CreateLesson(s.GetContext(), &dto.CreateLessonRequest{
		StudentID: s.student.ID,
		StartTime: time.Date(2025, 3, 5, 10, 30, 0, 0, time.UTC),
		Cost:      "1500",
	})
	s.Require().NoError(err)

	resp, err := s.scheduleService.BulkCreateLessons(s.GetContext(), &dto.BulkCreateLessonsRequest{
		StudentID:       s.student.ID,
		Weekdays:        []string{"monday", "wednesday"},
		Hour:            10,
		Minute:          0,
		DurationMinutes: 60,
		StartDate:       time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		Cost:            "1500",
	})
	s.Require().NoError(err)

	// The conflicting Wednesday is skipped, the other three are created.
	s.Len(resp.Created, 3)
	s.Require().Len(resp.Conflicts, 1)
	s.Equal(time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC), resp.Conflicts[0].Start)
	s.NotEmpty(resp.Conflicts[0].ConflictingLessonIDs)
}

func (s *ScheduleServiceTestSuite) TestCheckConflict() {
	_, err := s.lessonService.CreateLesson(s.GetContext(), &dto.CreateLessonRequest{
		StudentID: s.student.ID,
		StartTime: time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC),
		Cost:      "1500",
	})
	s.Require().NoError(err)

	resp, err := s.scheduleService.CheckConflict(s.GetContext(), &dto.CheckConflictRequest{
		StartTime: time.Date(2025, 3, 5, 10, 30, 0, 0, time.UTC),
	})
	s.Require().NoError(err)
	s.True(resp.HasConflict)
	s.Len(resp.ConflictingLessonIDs, 1)

	// Back-to-back slot is free.
	resp, err = s.scheduleService.CheckConflict(s.GetContext(), &dto.CheckConflictRequest{
		StartTime: time.Date(2025, 3, 5, 11, 0, 0, 0, time.UTC),
	})
	s.Require().NoError(err)
	s.False(resp.HasConflict)
}

func (s *ScheduleServiceTestSuite) TestBulkCreateValidation() {
	_, err := s.scheduleService.BulkCreateLessons(s.GetContext(), &dto.BulkCreateLessonsRequest{
		StudentID:       s.student.ID,
		Weekdays:        []string{"funday"},
		Hour:            10,
		DurationMinutes: 60,
		StartDate:       time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		Cost:            "1500",
	})
	s.True(ierr.IsValidation(err))

	// Inverted range is rejected by the recurrence itself.
	_, err = s.scheduleService.BulkCreateLessons(s.GetContext(), &dto.BulkCreateLessonsRequest{
		StudentID:       s.student.ID,
		Weekdays:        []string{"monday"},
		Hour:            10,
		DurationMinutes: 60,
		StartDate:       time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		Cost:            "1500",
	})
	s.True(ierr.IsValidation(err))
}

func (s *ScheduleServiceTestSuite) TestBulkCreateUnknownStudent() {
	_, err := s.scheduleService.BulkCreateLessons(s.GetContext(), &dto.BulkCreateLessonsRequest{
		StudentID:       "student_missing",
		Weekdays:        []string{"monday"},
		Hour:            10,
		DurationMinutes: 60,
		StartDate:       time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		Cost:            "1500",
	})
	s.True(ierr.IsNotFound(err))
}
