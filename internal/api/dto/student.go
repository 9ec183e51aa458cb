package dto

import (
	"context"

	"github.com/tutorpilot/tutorpilot/internal/domain/ledger"
	"github.com/tutorpilot/tutorpilot/internal/domain/student"
	"github.com/tutorpilot/tutorpilot/internal/types"
	"github.com/tutorpilot/tutorpilot/internal/validator"
)

type CreateStudentRequest struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	Notes string `json:"notes,omitempty"`
}

func (r *CreateStudentRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *CreateStudentRequest) ToStudent(ctx context.Context) *student.Student {
	return &student.Student{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_STUDENT),
		Name:      r.Name,
		Phone:     r.Phone,
		Email:     r.Email,
		Notes:     r.Notes,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
}

type UpdateStudentRequest struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
	Notes *string `json:"notes,omitempty"`
}

func (r *UpdateStudentRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type StudentResponse struct {
	*student.Student
}

type ListStudentsResponse struct {
	Items      []*StudentResponse       `json:"items"`
	Pagination types.PaginationResponse `json:"pagination"`
}

// BalanceResponse is the recomputed financial position of one student.
type BalanceResponse struct {
	StudentID string `json:"student_id"`
	ledger.Balance
}

// LedgerResponse is the balance plus the chronological history behind it.
type LedgerResponse struct {
	StudentID string         `json:"student_id"`
	Balance   ledger.Balance `json:"balance"`
	Entries   []ledger.Entry `json:"entries"`
}
