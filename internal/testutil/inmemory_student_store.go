package testutil

import (
	"context"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/tutorpilot/tutorpilot/internal/domain/student"
	ierr "github.com/tutorpilot/tutorpilot/internal/errors"
	"github.com/tutorpilot/tutorpilot/internal/types"
)

// InMemoryStudentStore implements student.Repository
type InMemoryStudentStore struct {
	*InMemoryStore[*student.Student]
}

// NewInMemoryStudentStore creates a new in-memory student store
func NewInMemoryStudentStore() *InMemoryStudentStore {
	return &InMemoryStudentStore{
		InMemoryStore: NewInMemoryStore[*student.Student](),
	}
}

func (s *InMemoryStudentStore) Create(ctx context.Context, st *student.Student) (*student.Student, error) {
	if st == nil {
		return nil, ierr.NewError("student cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if err := s.InMemoryStore.Create(ctx, st.ID, st.Copy()); err != nil {
		return nil, err
	}
	return st.Copy(), nil
}

func (s *InMemoryStudentStore) Get(ctx context.Context, id string) (*student.Student, error) {
	st, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Student with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return st.Copy(), nil
}

func (s *InMemoryStudentStore) List(ctx context.Context, filter *types.StudentFilter) ([]*student.Student, error) {
	students := s.InMemoryStore.List(ctx, studentFilterFn(filter))
	sort.Slice(students, func(i, j int) bool {
		return students[i].Name < students[j].Name
	})
	students = paginate(students, filter.GetLimit(), filter.GetOffset())
	return lo.Map(students, func(st *student.Student, _ int) *student.Student {
		return st.Copy()
	}), nil
}

func (s *InMemoryStudentStore) Count(ctx context.Context, filter *types.StudentFilter) (int, error) {
	return len(s.InMemoryStore.List(ctx, studentFilterFn(filter))), nil
}

func (s *InMemoryStudentStore) Update(ctx context.Context, st *student.Student) (*student.Student, error) {
	if st == nil {
		return nil, ierr.NewError("student cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if err := s.InMemoryStore.Update(ctx, st.ID, st.Copy()); err != nil {
		return nil, err
	}
	return st.Copy(), nil
}

func (s *InMemoryStudentStore) Delete(ctx context.Context, id string) error {
	return s.InMemoryStore.Delete(ctx, id)
}

func (s *InMemoryStudentStore) UpdateBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	st, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return ierr.WithError(err).
			WithHintf("Student with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	updated := st.Copy()
	updated.Balance = balance
	return s.InMemoryStore.Update(ctx, id, updated)
}

func (s *InMemoryStudentStore) ListIDs(ctx context.Context) ([]string, error) {
	students := s.InMemoryStore.List(ctx, func(st *student.Student) bool {
		return st.Status == types.StatusActive
	})
	ids := lo.Map(students, func(st *student.Student, _ int) string {
		return st.ID
	})
	sort.Strings(ids)
	return ids, nil
}

func studentFilterFn(filter *types.StudentFilter) func(*student.Student) bool {
	return func(st *student.Student) bool {
		if filter == nil {
			return true
		}
		if filter.Search != "" &&
			!strings.Contains(strings.ToLower(st.Name), strings.ToLower(filter.Search)) {
			return false
		}
		return true
	}
}
