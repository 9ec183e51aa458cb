package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutorpilot/tutorpilot/internal/api/dto"
	ierr "github.com/tutorpilot/tutorpilot/internal/errors"
	"github.com/tutorpilot/tutorpilot/internal/logger"
	"github.com/tutorpilot/tutorpilot/internal/service"
	"github.com/tutorpilot/tutorpilot/internal/types"
)

type StudentHandler struct {
	service service.StudentService
	ledger  service.LedgerService
	log     *logger.Logger
}

func NewStudentHandler(service service.StudentService, ledger service.LedgerService, log *logger.Logger) *StudentHandler {
	return &StudentHandler{service: service, ledger: ledger, log: log}
}

// @Summary Create a new student
// @Description Register a student with the center
// @Tags Students
// @Accept json
// @Produce json
// @Param student body dto.CreateStudentRequest true "Student details"
// @Success 201 {object} dto.StudentResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /students [post]
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	var req dto.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateStudent(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to create student", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get a student by ID
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} dto.StudentResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /students/{id} [get]
func (h *StudentHandler) GetStudent(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Student ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetStudent(c.Request.Context(), id)
	if err != nil {
		h.log.Error("Failed to get student", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List students
// @Description List students with optional filtering
// @Tags Students
// @Produce json
// @Param filter query types.StudentFilter false "Filter"
// @Success 200 {object} dto.ListStudentsResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /students [get]
func (h *StudentHandler) ListStudents(c *gin.Context) {
	var filter types.StudentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.log.Error("Failed to bind query parameters", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}

	resp, err := h.service.ListStudents(c.Request.Context(), &filter)
	if err != nil {
		h.log.Error("Failed to list students", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Update a student
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param student body dto.UpdateStudentRequest true "Fields to update"
// @Success 200 {object} dto.StudentResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /students/{id} [put]
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Student ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	var req dto.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdateStudent(c.Request.Context(), id, &req)
	if err != nil {
		h.log.Error("Failed to update student", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Delete a student
// @Description Delete a student that has no lessons on record
// @Tags Students
// @Param id path string true "Student ID"
// @Success 204
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /students/{id} [delete]
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Student ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	if err := h.service.DeleteStudent(c.Request.Context(), id); err != nil {
		h.log.Error("Failed to delete student", "error", err)
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Get a student's balance
// @Description Current balance with its prepaid and debt components
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} dto.BalanceResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /students/{id}/balance [get]
func (h *StudentHandler) GetBalance(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Student ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.ledger.GetBalance(c.Request.Context(), id)
	if err != nil {
		h.log.Error("Failed to get balance", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Get a student's ledger
// @Description Chronological history of lessons, payments and refunds
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} dto.LedgerResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /students/{id}/ledger [get]
func (h *StudentHandler) GetLedger(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Student ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.ledger.GetLedger(c.Request.Context(), id)
	if err != nil {
		h.log.Error("Failed to get ledger", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
