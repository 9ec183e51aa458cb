package service

import (
	"context"

	"github.com/samber/lo"

	"github.com/tutorpilot/tutorpilot/internal/api/dto"
	"github.com/tutorpilot/tutorpilot/internal/domain/student"
	ierr "github.com/tutorpilot/tutorpilot/internal/errors"
	"github.com/tutorpilot/tutorpilot/internal/types"
)

// StudentService manages the student roster.
type StudentService interface {
	CreateStudent(ctx context.Context, req *dto.CreateStudentRequest) (*dto.StudentResponse, error)
	GetStudent(ctx context.Context, id string) (*dto.StudentResponse, error)
	ListStudents(ctx context.Context, filter *types.StudentFilter) (*dto.ListStudentsResponse, error)
	UpdateStudent(ctx context.Context, id string, req *dto.UpdateStudentRequest) (*dto.StudentResponse, error)
	DeleteStudent(ctx context.Context, id string) error
}

type studentService struct {
	ServiceParams
}

func NewStudentService(params ServiceParams) StudentService {
	return &studentService{ServiceParams: params}
}

func (s *studentService) CreateStudent(ctx context.Context, req *dto.CreateStudentRequest) (*dto.StudentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	st := req.ToStudent(ctx)
	if err := st.Validate(); err != nil {
		return nil, err
	}

	created, err := s.StudentRepo.Create(ctx, st)
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("created student", "student_id", created.ID)
	return &dto.StudentResponse{Student: created}, nil
}

func (s *studentService) GetStudent(ctx context.Context, id string) (*dto.StudentResponse, error) {
	if id == "" {
		return nil, ierr.NewError("student id is required").
			WithHint("Please provide a valid student ID").
			Mark(ierr.ErrValidation)
	}

	st, err := s.StudentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.StudentResponse{Student: st}, nil
}

func (s *studentService) ListStudents(ctx context.Context, filter *types.StudentFilter) (*dto.ListStudentsResponse, error) {
	if filter == nil {
		filter = &types.StudentFilter{}
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}

	students, err := s.StudentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.StudentRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &dto.ListStudentsResponse{
		Items: lo.Map(students, func(st *student.Student, _ int) *dto.StudentResponse {
			return &dto.StudentResponse{Student: st}
		}),
		Pagination: types.PaginationResponse{
			Limit:  filter.GetLimit(),
			Offset: filter.GetOffset(),
			Total:  total,
		},
	}, nil
}

func (s *studentService) UpdateStudent(ctx context.Context, id string, req *dto.UpdateStudentRequest) (*dto.StudentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	st, err := s.StudentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		st.Name = *req.Name
	}
	if req.Phone != nil {
		st.Phone = *req.Phone
	}
	if req.Email != nil {
		st.Email = *req.Email
	}
	if req.Notes != nil {
		st.Notes = *req.Notes
	}
	st.UpdatedAt = s.now()
	st.UpdatedBy = types.GetUserID(ctx)

	updated, err := s.StudentRepo.Update(ctx, st)
	if err != nil {
		return nil, err
	}
	return &dto.StudentResponse{Student: updated}, nil
}

func (s *studentService) DeleteStudent(ctx context.Context, id string) error {
	if _, err := s.StudentRepo.Get(ctx, id); err != nil {
		return err
	}

	lessons, err := s.LessonRepo.ListByStudent(ctx, id)
	if err != nil {
		return err
	}
	if len(lessons) > 0 {
		return ierr.NewError("student still has lessons").
			WithHint("Delete or reassign the student's lessons first").
			WithReportableDetails(map[string]interface{}{
				"lesson_count": len(lessons),
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	invalidateBalance(ctx, s.ServiceParams, id)
	return s.StudentRepo.Delete(ctx, id)
}
