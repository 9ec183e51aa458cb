package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tutorpilot/tutorpilot/internal/domain/payment"
	ierr "github.com/tutorpilot/tutorpilot/internal/errors"
	"github.com/tutorpilot/tutorpilot/internal/types"
)

type paymentRepository struct {
	client *Client
}

func NewPaymentRepository(client *Client) payment.Repository {
	return &paymentRepository{client: client}
}

const paymentColumns = `id, student_id, amount, payment_date, lesson_ids, description,
	status, created_at, updated_at, created_by, updated_by`

func scanPayment(row pgx.Row) (*payment.Payment, error) {
	var p payment.Payment
	err := row.Scan(
		&p.ID, &p.StudentID, &p.Amount, &p.PaymentDate, &p.LessonIDs, &p.Description,
		&p.Status, &p.CreatedAt, &p.UpdatedAt, &p.CreatedBy, &p.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPayments(rows pgx.Rows) ([]*payment.Payment, error) {
	defer rows.Close()
	var payments []*payment.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *paymentRepository) Create(ctx context.Context, p *payment.Payment) (*payment.Payment, error) {
	_, err := r.client.conn(ctx).Exec(ctx, `
		INSERT INTO payments (id, student_id, amount, payment_date, lesson_ids, description,
			status, created_at, updated_at, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.StudentID, p.Amount, p.PaymentDate, p.LessonIDs, p.Description,
		p.Status, p.CreatedAt, p.UpdatedAt, p.CreatedBy, p.UpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ierr.WithError(err).
				WithHint("A payment with this ID already exists").
				Mark(ierr.ErrAlreadyExists)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to create payment").
			Mark(ierr.ErrDatabase)
	}
	return p, nil
}

func (r *paymentRepository) Get(ctx context.Context, id string) (*payment.Payment, error) {
	row := r.client.conn(ctx).QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM payments WHERE id = $1`, paymentColumns), id)

	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ierr.NewError("payment not found").
				WithHint("The requested payment does not exist").
				WithReportableDetails(map[string]interface{}{
					"payment_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get payment").
			Mark(ierr.ErrDatabase)
	}
	return p, nil
}

func paymentFilterClause(filter *types.PaymentFilter) (string, []any) {
	clause := " WHERE 1=1"
	var args []any

	if filter == nil {
		return clause, args
	}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		clause += fmt.Sprintf(" AND student_id = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		clause += fmt.Sprintf(" AND payment_date >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		clause += fmt.Sprintf(" AND payment_date <= $%d", len(args))
	}
	return clause, args
}

func (r *paymentRepository) List(ctx context.Context, filter *types.PaymentFilter) ([]*payment.Payment, error) {
	if filter == nil {
		filter = &types.PaymentFilter{QueryFilter: types.NewDefaultQueryFilter()}
	}
	clause, args := paymentFilterClause(filter)

	query := fmt.Sprintf(`SELECT %s FROM payments%s ORDER BY payment_date DESC`, paymentColumns, clause)
	args = append(args, filter.GetLimit(), filter.GetOffset())
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.client.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list payments").
			Mark(ierr.ErrDatabase)
	}
	return scanPayments(rows)
}

func (r *paymentRepository) Count(ctx context.Context, filter *types.PaymentFilter) (int, error) {
	clause, args := paymentFilterClause(filter)

	var count int
	err := r.client.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM payments`+clause, args...).Scan(&count)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count payments").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func (r *paymentRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.client.conn(ctx).Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete payment").
			Mark(ierr.ErrDatabase)
	}
	if ct.RowsAffected() == 0 {
		return ierr.NewError("payment not found").
			WithHint("The requested payment does not exist").
			WithReportableDetails(map[string]interface{}{
				"payment_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *paymentRepository) ListByStudent(ctx context.Context, studentID string) ([]*payment.Payment, error) {
	rows, err := r.client.conn(ctx).Query(ctx,
		fmt.Sprintf(`SELECT %s FROM payments WHERE student_id = $1 ORDER BY payment_date`, paymentColumns),
		studentID)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list payments").
			Mark(ierr.ErrDatabase)
	}
	return scanPayments(rows)
}
