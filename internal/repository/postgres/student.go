package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/tutorpilot/tutorpilot/internal/domain/student"
	ierr "github.com/tutorpilot/tutorpilot/internal/errors"
	"github.com/tutorpilot/tutorpilot/internal/types"
)

type studentRepository struct {
	client *Client
}

func NewStudentRepository(client *Client) student.Repository {
	return &studentRepository{client: client}
}

const studentColumns = `id, name, phone, email, notes, balance,
	status, created_at, updated_at, created_by, updated_by`

func scanStudent(row pgx.Row) (*student.Student, error) {
	var s student.Student
	err := row.Scan(
		&s.ID, &s.Name, &s.Phone, &s.Email, &s.Notes, &s.Balance,
		&s.Status, &s.CreatedAt, &s.UpdatedAt, &s.CreatedBy, &s.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *studentRepository) Create(ctx context.Context, s *student.Student) (*student.Student, error) {
	_, err := r.client.conn(ctx).Exec(ctx, `
		INSERT INTO students (id, name, phone, email, notes, balance,
			status, created_at, updated_at, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		s.ID, s.Name, s.Phone, s.Email, s.Notes, s.Balance,
		s.Status, s.CreatedAt, s.UpdatedAt, s.CreatedBy, s.UpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ierr.WithError(err).
				WithHint("A student with this ID already exists").
				Mark(ierr.ErrAlreadyExists)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to create student").
			Mark(ierr.ErrDatabase)
	}
	return s, nil
}

func (r *studentRepository) Get(ctx context.Context, id string) (*student.Student, error) {
	row := r.client.conn(ctx).QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM students WHERE id = $1`, studentColumns), id)

	s, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ierr.NewError("student not found").
				WithHint("The requested student does not exist").
				WithReportableDetails(map[string]interface{}{
					"student_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get student").
			Mark(ierr.ErrDatabase)
	}
	return s, nil
}

func studentFilterClause(filter *types.StudentFilter) (string, []any) {
	clause := " WHERE status != 'deleted'"
	var args []any

	if filter != nil && filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		clause += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d)", len(args), len(args))
	}
	return clause, args
}

func (r *studentRepository) List(ctx context.Context, filter *types.StudentFilter) ([]*student.Student, error) {
	if filter == nil {
		filter = &types.StudentFilter{QueryFilter: types.NewDefaultQueryFilter()}
	}
	clause, args := studentFilterClause(filter)

	query := fmt.Sprintf(`SELECT %s FROM students%s ORDER BY name`, studentColumns, clause)
	args = append(args, filter.GetLimit(), filter.GetOffset())
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.client.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list students").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var students []*student.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

func (r *studentRepository) Count(ctx context.Context, filter *types.StudentFilter) (int, error) {
	clause, args := studentFilterClause(filter)

	var count int
	err := r.client.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM students`+clause, args...).Scan(&count)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count students").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func (r *studentRepository) Update(ctx context.Context, s *student.Student) (*student.Student, error) {
	ct, err := r.client.conn(ctx).Exec(ctx, `
		UPDATE students
		SET name = $2, phone = $3, email = $4, notes = $5,
			updated_at = $6, updated_by = $7
		WHERE id = $1`,
		s.ID, s.Name, s.Phone, s.Email, s.Notes,
		time.Now().UTC(), types.GetUserID(ctx),
	)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to update student").
			Mark(ierr.ErrDatabase)
	}
	if ct.RowsAffected() == 0 {
		return nil, ierr.NewError("student not found").
			WithHint("The requested student does not exist").
			WithReportableDetails(map[string]interface{}{
				"student_id": s.ID,
			}).
			Mark(ierr.ErrNotFound)
	}
	return s, nil
}

func (r *studentRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.client.conn(ctx).Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete student").
			Mark(ierr.ErrDatabase)
	}
	if ct.RowsAffected() == 0 {
		return ierr.NewError("student not found").
			WithHint("The requested student does not exist").
			WithReportableDetails(map[string]interface{}{
				"student_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *studentRepository) UpdateBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	ct, err := r.client.conn(ctx).Exec(ctx, `
		UPDATE students SET balance = $2, updated_at = $3 WHERE id = $1`,
		id, balance, time.Now().UTC(),
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update student balance").
			Mark(ierr.ErrDatabase)
	}
	if ct.RowsAffected() == 0 {
		return ierr.NewError("student not found").
			WithHint("The requested student does not exist").
			WithReportableDetails(map[string]interface{}{
				"student_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *studentRepository) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.client.conn(ctx).Query(ctx,
		`SELECT id FROM students WHERE status = 'active' ORDER BY id`)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list student IDs").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
