package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tutorpilot/tutorpilot/internal/domain/lesson"
	ierr "github.com/tutorpilot/tutorpilot/internal/errors"
	"github.com/tutorpilot/tutorpilot/internal/types"
)

// lessonRepository persists lessons as three boolean lifecycle flags plus
// the cancellation outcome; the canonical state is derived on every read.
type lessonRepository struct {
	client *Client
}

func NewLessonRepository(client *Client) lesson.Repository {
	return &lessonRepository{client: client}
}

const lessonColumns = `id, student_id, start_time, end_time, cost, notes,
	completed, paid, cancelled, cancelled_at, cancellation,
	status, created_at, updated_at, created_by, updated_by`

func scanLesson(row pgx.Row) (*lesson.Lesson, error) {
	var l lesson.Lesson
	var flags lesson.Flags
	err := row.Scan(
		&l.ID, &l.StudentID, &l.StartTime, &l.EndTime, &l.Cost, &l.Notes,
		&flags.Completed, &flags.Paid, &flags.Cancelled, &l.CancelledAt, &l.Cancellation,
		&l.BaseModel.Status, &l.CreatedAt, &l.UpdatedAt, &l.CreatedBy, &l.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	l.State = lesson.StateFromFlags(flags)
	return &l, nil
}

func scanLessons(rows pgx.Rows) ([]*lesson.Lesson, error) {
	defer rows.Close()
	var lessons []*lesson.Lesson
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}

func (r *lessonRepository) Create(ctx context.Context, l *lesson.Lesson) (*lesson.Lesson, error) {
	flags := lesson.StateToFlags(l.State)

	_, err := r.client.conn(ctx).Exec(ctx, `
		INSERT INTO lessons (id, student_id, start_time, end_time, cost, notes,
			completed, paid, cancelled, cancelled_at, cancellation,
			status, created_at, updated_at, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		l.ID, l.StudentID, l.StartTime, l.EndTime, l.Cost, l.Notes,
		flags.Completed, flags.Paid, flags.Cancelled, l.CancelledAt, l.Cancellation,
		l.BaseModel.Status, l.CreatedAt, l.UpdatedAt, l.CreatedBy, l.UpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ierr.WithError(err).
				WithHint("A lesson with this ID already exists").
				Mark(ierr.ErrAlreadyExists)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to create lesson").
			Mark(ierr.ErrDatabase)
	}
	return l, nil
}

func (r *lessonRepository) Get(ctx context.Context, id string) (*lesson.Lesson, error) {
	row := r.client.conn(ctx).QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM lessons WHERE id = $1`, lessonColumns), id)

	l, err := scanLesson(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ierr.NewError("lesson not found").
				WithHint("The requested lesson does not exist").
				WithReportableDetails(map[string]interface{}{
					"lesson_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get lesson").
			Mark(ierr.ErrDatabase)
	}
	return l, nil
}

// lessonFilterClause renders the filter as a WHERE clause with positional args.
func lessonFilterClause(filter *types.LessonFilter) (string, []any) {
	clause := " WHERE 1=1"
	var args []any

	if filter == nil {
		return clause, args
	}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		clause += fmt.Sprintf(" AND student_id = $%d", len(args))
	}
	if filter.StartAfter != nil {
		args = append(args, *filter.StartAfter)
		clause += fmt.Sprintf(" AND start_time >= $%d", len(args))
	}
	if filter.StartBefore != nil {
		args = append(args, *filter.StartBefore)
		clause += fmt.Sprintf(" AND start_time <= $%d", len(args))
	}
	if len(filter.States) > 0 {
		// State is derived, so filter on the flag combinations that map to
		// each requested state.
		sub := ""
		for _, s := range filter.States {
			if sub != "" {
				sub += " OR "
			}
			flags := lesson.StateToFlags(s)
			if s == types.LessonStateCancelled {
				sub += "(cancelled)"
			} else {
				sub += fmt.Sprintf("(NOT cancelled AND completed = %t AND paid = %t)", flags.Completed, flags.Paid)
			}
		}
		clause += " AND (" + sub + ")"
	}
	return clause, args
}

func (r *lessonRepository) List(ctx context.Context, filter *types.LessonFilter) ([]*lesson.Lesson, error) {
	if filter == nil {
		filter = &types.LessonFilter{QueryFilter: types.NewDefaultQueryFilter()}
	}
	clause, args := lessonFilterClause(filter)

	query := fmt.Sprintf(`SELECT %s FROM lessons%s ORDER BY start_time`, lessonColumns, clause)
	args = append(args, filter.GetLimit(), filter.GetOffset())
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.client.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list lessons").
			Mark(ierr.ErrDatabase)
	}
	return scanLessons(rows)
}

func (r *lessonRepository) Count(ctx context.Context, filter *types.LessonFilter) (int, error) {
	clause, args := lessonFilterClause(filter)

	var count int
	err := r.client.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM lessons`+clause, args...).Scan(&count)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count lessons").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func (r *lessonRepository) Update(ctx context.Context, l *lesson.Lesson) (*lesson.Lesson, error) {
	flags := lesson.StateToFlags(l.State)

	ct, err := r.client.conn(ctx).Exec(ctx, `
		UPDATE lessons
		SET start_time = $2, end_time = $3, cost = $4, notes = $5,
			completed = $6, paid = $7, cancelled = $8, cancelled_at = $9, cancellation = $10,
			updated_at = $11, updated_by = $12
		WHERE id = $1`,
		l.ID, l.StartTime, l.EndTime, l.Cost, l.Notes,
		flags.Completed, flags.Paid, flags.Cancelled, l.CancelledAt, l.Cancellation,
		time.Now().UTC(), types.GetUserID(ctx),
	)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to update lesson").
			Mark(ierr.ErrDatabase)
	}
	if ct.RowsAffected() == 0 {
		return nil, ierr.NewError("lesson not found").
			WithHint("The requested lesson does not exist").
			WithReportableDetails(map[string]interface{}{
				"lesson_id": l.ID,
			}).
			Mark(ierr.ErrNotFound)
	}
	return l, nil
}

func (r *lessonRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.client.conn(ctx).Exec(ctx, `DELETE FROM lessons WHERE id = $1`, id)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete lesson").
			Mark(ierr.ErrDatabase)
	}
	if ct.RowsAffected() == 0 {
		return ierr.NewError("lesson not found").
			WithHint("The requested lesson does not exist").
			WithReportableDetails(map[string]interface{}{
				"lesson_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *lessonRepository) ListByStudent(ctx context.Context, studentID string) ([]*lesson.Lesson, error) {
	rows, err := r.client.conn(ctx).Query(ctx,
		fmt.Sprintf(`SELECT %s FROM lessons WHERE student_id = $1 ORDER BY start_time`, lessonColumns),
		studentID)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list lessons").
			Mark(ierr.ErrDatabase)
	}
	return scanLessons(rows)
}

func (r *lessonRepository) ListOverlapping(ctx context.Context, from, to time.Time) ([]*lesson.Lesson, error) {
	// Half-open interval overlap; a lesson without end_time occupies one
	// hour from its start.
	rows, err := r.client.conn(ctx).Query(ctx,
		fmt.Sprintf(`
			SELECT %s FROM lessons
			WHERE NOT cancelled
			  AND start_time < $2
			  AND COALESCE(end_time, start_time + INTERVAL '1 hour') > $1
			ORDER BY start_time`, lessonColumns),
		from, to)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list overlapping lessons").
			Mark(ierr.ErrDatabase)
	}
	return scanLessons(rows)
}

func (r *lessonRepository) ListDue(ctx context.Context, now time.Time) ([]*lesson.Lesson, error) {
	rows, err := r.client.conn(ctx).Query(ctx,
		fmt.Sprintf(`
			SELECT %s FROM lessons
			WHERE start_time < $1 AND NOT completed AND NOT cancelled
			ORDER BY start_time`, lessonColumns),
		now)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list due lessons").
			Mark(ierr.ErrDatabase)
	}
	return scanLessons(rows)
}
