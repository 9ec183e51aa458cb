package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tutorpilot/tutorpilot/internal/config"
	ierr "github.com/tutorpilot/tutorpilot/internal/errors"
	"github.com/tutorpilot/tutorpilot/internal/logger"
	"github.com/tutorpilot/tutorpilot/internal/types"
)

type txKey struct{}

// Client wraps a pgx pool and carries the active transaction through the
// context so repositories inside WithTx share it transparently.
type Client struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

var _ types.TxRunner = (*Client)(nil)

func NewClient(ctx context.Context, cfg *config.Configuration, log *logger.Logger) (*Client, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.Postgres.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.Postgres.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Client{pool: pool, logger: log}, nil
}

func (c *Client) Close() {
	c.pool.Close()
}

// querier is the subset of pgx shared by pools and transactions.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// conn returns the transaction carried by the context, or the pool.
func (c *Client) conn(ctx context.Context) querier {
	if tx := c.TxFromContext(ctx); tx != nil {
		return tx
	}
	return c.pool
}

// TxFromContext returns the active transaction, or nil outside WithTx.
func (c *Client) TxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey{}).(pgx.Tx)
	return tx
}

// WithTx runs fn inside a transaction. A nested call joins the transaction
// already carried by the context instead of opening a new one.
func (c *Client) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if c.TxFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to start transaction").
			Mark(ierr.ErrDatabase)
	}

	ctx = context.WithValue(ctx, txKey{}, tx)

	if err := fn(ctx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			c.logger.Errorw("failed to rollback transaction", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to commit transaction").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

// LockKey acquires a transaction-scoped advisory lock for the given key.
// Auto released on commit/rollback. Must be called inside WithTx.
func (c *Client) LockKey(ctx context.Context, key string) error {
	tx := c.TxFromContext(ctx)
	if tx == nil {
		return fmt.Errorf("LockKey must be called inside transaction")
	}

	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to acquire advisory lock").
			WithReportableDetails(map[string]interface{}{
				"key": key,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

// isUniqueViolation reports whether err is a unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
