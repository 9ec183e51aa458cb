package types

import "time"

const (
	defaultFilterLimit = 50
	maxFilterLimit     = 1000
)

// QueryFilter carries the common pagination knobs.
type QueryFilter struct {
	Limit  *int `json:"limit,omitempty" form:"limit"`
	Offset *int `json:"offset,omitempty" form:"offset"`
}

func NewDefaultQueryFilter() *QueryFilter {
	limit := defaultFilterLimit
	offset := 0
	return &QueryFilter{Limit: &limit, Offset: &offset}
}

// NewNoLimitQueryFilter is used by internal aggregations that must see the
// whole result set.
func NewNoLimitQueryFilter() *QueryFilter {
	limit := maxFilterLimit
	offset := 0
	return &QueryFilter{Limit: &limit, Offset: &offset}
}

func (f *QueryFilter) GetLimit() int {
	if f == nil || f.Limit == nil {
		return defaultFilterLimit
	}
	if *f.Limit > maxFilterLimit {
		return maxFilterLimit
	}
	return *f.Limit
}

func (f *QueryFilter) GetOffset() int {
	if f == nil || f.Offset == nil {
		return 0
	}
	return *f.Offset
}

// PaginationResponse echoes the applied pagination back to the caller.
type PaginationResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// LessonFilter narrows lesson listings.
type LessonFilter struct {
	*QueryFilter
	StudentID   string        `json:"student_id,omitempty" form:"student_id"`
	States      []LessonState `json:"states,omitempty" form:"states"`
	StartAfter  *time.Time    `json:"start_after,omitempty" form:"start_after"`
	StartBefore *time.Time    `json:"start_before,omitempty" form:"start_before"`
}

// PaymentFilter narrows payment listings.
type PaymentFilter struct {
	*QueryFilter
	StudentID string     `json:"student_id,omitempty" form:"student_id"`
	From      *time.Time `json:"from,omitempty" form:"from"`
	To        *time.Time `json:"to,omitempty" form:"to"`
}

// StudentFilter narrows student listings.
type StudentFilter struct {
	*QueryFilter
	Search string `json:"search,omitempty" form:"search"`
}
