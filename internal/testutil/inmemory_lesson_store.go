package testutil

import (
	"context"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/tutorpilot/tutorpilot/internal/domain/lesson"
	"github.com/tutorpilot/tutorpilot/internal/domain/schedule"
	ierr "github.com/tutorpilot/tutorpilot/internal/errors"
	"github.com/tutorpilot/tutorpilot/internal/types"
)

// InMemoryLessonStore implements lesson.Repository
type InMemoryLessonStore struct {
	*InMemoryStore[*lesson.Lesson]
}

// NewInMemoryLessonStore creates a new in-memory lesson store
func NewInMemoryLessonStore() *InMemoryLessonStore {
	return &InMemoryLessonStore{
		InMemoryStore: NewInMemoryStore[*lesson.Lesson](),
	}
}

func (s *InMemoryLessonStore) Create(ctx context.Context, l *lesson.Lesson) (*lesson.Lesson, error) {
	if l == nil {
		return nil, ierr.NewError("lesson cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if err := s.InMemoryStore.Create(ctx, l.ID, l.Copy()); err != nil {
		return nil, err
	}
	return l.Copy(), nil
}

func (s *InMemoryLessonStore) Get(ctx context.Context, id string) (*lesson.Lesson, error) {
	l, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Lesson with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return l.Copy(), nil
}

func (s *InMemoryLessonStore) List(ctx context.Context, filter *types.LessonFilter) ([]*lesson.Lesson, error) {
	lessons := s.InMemoryStore.List(ctx, lessonFilterFn(filter))
	sortLessons(lessons)
	lessons = paginate(lessons, filter.GetLimit(), filter.GetOffset())
	return lesson.CopyList(lessons), nil
}

func (s *InMemoryLessonStore) Count(ctx context.Context, filter *types.LessonFilter) (int, error) {
	return len(s.InMemoryStore.List(ctx, lessonFilterFn(filter))), nil
}

func (s *InMemoryLessonStore) Update(ctx context.Context, l *lesson.Lesson) (*lesson.Lesson, error) {
	if l == nil {
		return nil, ierr.NewError("lesson cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if err := s.InMemoryStore.Update(ctx, l.ID, l.Copy()); err != nil {
		return nil, err
	}
	return l.Copy(), nil
}

func (s *InMemoryLessonStore) Delete(ctx context.Context, id string) error {
	return s.InMemoryStore.Delete(ctx, id)
}

func (s *InMemoryLessonStore) ListByStudent(ctx context.Context, studentID string) ([]*lesson.Lesson, error) {
	lessons := s.InMemoryStore.List(ctx, func(l *lesson.Lesson) bool {
		return l.StudentID == studentID
	})
	sortLessons(lessons)
	return lesson.CopyList(lessons), nil
}

func (s *InMemoryLessonStore) ListOverlapping(ctx context.Context, from, to time.Time) ([]*lesson.Lesson, error) {
	lessons := s.InMemoryStore.List(ctx, func(l *lesson.Lesson) bool {
		if l.State.IsTerminal() {
			return false
		}
		return schedule.Overlaps(from, to, l.StartTime, l.EffectiveEnd())
	})
	sortLessons(lessons)
	return lesson.CopyList(lessons), nil
}

func (s *InMemoryLessonStore) ListDue(ctx context.Context, now time.Time) ([]*lesson.Lesson, error) {
	lessons := s.InMemoryStore.List(ctx, func(l *lesson.Lesson) bool {
		return l.StartTime.Before(now) && !l.State.IsCompleted() && !l.State.IsTerminal()
	})
	sortLessons(lessons)
	return lesson.CopyList(lessons), nil
}

func lessonFilterFn(filter *types.LessonFilter) func(*lesson.Lesson) bool {
	return func(l *lesson.Lesson) bool {
		if filter == nil {
			return true
		}
		if filter.StudentID != "" && l.StudentID != filter.StudentID {
			return false
		}
		if len(filter.States) > 0 && !lo.Contains(filter.States, l.State) {
			return false
		}
		if filter.StartAfter != nil && !l.StartTime.After(*filter.StartAfter) {
			return false
		}
		if filter.StartBefore != nil && !l.StartTime.Before(*filter.StartBefore) {
			return false
		}
		return true
	}
}

func sortLessons(lessons []*lesson.Lesson) {
	sort.Slice(lessons, func(i, j int) bool {
		return lessons[i].StartTime.Before(lessons[j].StartTime)
	})
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit < len(items) {
		items = items[:limit]
	}
	return items
}
