package types

import (
	"context"
	"time"
)

// Status is the row-level status shared by all persisted entities.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
	StatusDeleted  Status = "deleted"
)

// BaseModel holds the audit fields common to all entities.
type BaseModel struct {
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedBy string    `json:"created_by,omitempty"`
	UpdatedBy string    `json:"updated_by,omitempty"`
}

// GetDefaultBaseModel returns a BaseModel stamped with the current time and
// the acting user from the context.
func GetDefaultBaseModel(ctx context.Context) BaseModel {
	now := time.Now().UTC()
	userID := GetUserID(ctx)
	return BaseModel{
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: userID,
		UpdatedBy: userID,
	}
}

// Metadata is a free-form string map attached to entities.
type Metadata map[string]string
