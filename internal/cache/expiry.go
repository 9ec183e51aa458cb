package cache

import "time"

const (
	ExpiryDefaultInMemory = 30 * time.Minute
	ExpiryCleanupInterval = 10 * time.Minute

	// PrefixStudentBalance namespaces cached student balances.
	PrefixStudentBalance = "student_balance:"
)
