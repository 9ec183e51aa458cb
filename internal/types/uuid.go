package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	UUID_PREFIX_STUDENT = "student"
	UUID_PREFIX_LESSON  = "lesson"
	UUID_PREFIX_PAYMENT = "payment"
	UUID_PREFIX_REQUEST = "req"
)

// GenerateUUID returns a lowercase ULID, sortable by creation time.
func GenerateUUID() string {
	id := ulid.MustNew(ulid.Timestamp(time.Now().UTC()), ulid.DefaultEntropy())
	return strings.ToLower(id.String())
}

// GenerateUUIDWithPrefix returns a prefixed ULID ex lesson_01h2xcejqtf2nbrexx3vqjhp41
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}
