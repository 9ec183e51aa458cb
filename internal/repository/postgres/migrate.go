package postgres

import "context"

// Migrate applies the schema. Idempotent; intended for startup and tooling,
// not for production migration management.
func (c *Client) Migrate(ctx context.Context) error {
	_, err := c.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS students (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			balance NUMERIC(12,2) NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'active',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			created_by TEXT NOT NULL DEFAULT '',
			updated_by TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS lessons (
			id TEXT PRIMARY KEY,
			student_id TEXT NOT NULL REFERENCES students(id),
			start_time TIMESTAMPTZ NOT NULL,
			end_time TIMESTAMPTZ,
			cost NUMERIC(12,2) NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			completed BOOLEAN NOT NULL DEFAULT FALSE,
			paid BOOLEAN NOT NULL DEFAULT FALSE,
			cancelled BOOLEAN NOT NULL DEFAULT FALSE,
			cancelled_at TIMESTAMPTZ,
			cancellation TEXT NOT NULL DEFAULT 'none',
			status TEXT NOT NULL DEFAULT 'active',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			created_by TEXT NOT NULL DEFAULT '',
			updated_by TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_lessons_student_id ON lessons(student_id);
		CREATE INDEX IF NOT EXISTS idx_lessons_start_time ON lessons(start_time);

		CREATE TABLE IF NOT EXISTS payments (
			id TEXT PRIMARY KEY,
			student_id TEXT NOT NULL REFERENCES students(id),
			amount NUMERIC(12,2) NOT NULL,
			payment_date TIMESTAMPTZ NOT NULL,
			lesson_ids TEXT[] NOT NULL DEFAULT '{}',
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'active',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			created_by TEXT NOT NULL DEFAULT '',
			updated_by TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_payments_student_id ON payments(student_id);
	`)
	return err
}
