package types

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// TxRunner wraps a unit of work in a single database transaction. Nested
// calls join the transaction already carried by the context.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// NoopTxRunner runs the unit of work without any transaction; used by tests
// and tools backed by in-memory stores.
type NoopTxRunner struct{}

func (NoopTxRunner) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// AdvisoryLocker acquires transaction-scoped advisory locks. Implemented by
// the postgres client; in-memory backends simply don't implement it.
type AdvisoryLocker interface {
	LockKey(ctx context.Context, key string) error
}

// LockScope represents the scope of a database advisory lock
type LockScope string

const (
	// LockScopeStudentBalance serializes balance recomputation per student
	LockScopeStudentBalance LockScope = "student_balance"
	// LockScopeSchedule serializes lesson creation against the conflict
	// snapshot it was checked on
	LockScopeSchedule LockScope = "schedule"
	// LockScopeLesson serializes flag writes to a single lesson
	LockScopeLesson LockScope = "lesson"
)

// GenerateLockKey builds a deterministic advisory lock key from a scope and
// parameters. Postgres hashes the string internally (hashtext), so the key
// only needs to be stable, not short.
func GenerateLockKey(scope LockScope, params map[string]interface{}) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(string(scope))
	for _, k := range keys {
		b.WriteString(fmt.Sprintf(":%s=%v", k, params[k]))
	}
	return b.String()
}
