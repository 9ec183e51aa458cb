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

type LessonHandler struct {
	service  service.LessonService
	schedule service.ScheduleService
	log      *logger.Logger
}

func NewLessonHandler(service service.LessonService, schedule service.ScheduleService, log *logger.Logger) *LessonHandler {
	return &LessonHandler{service: service, schedule: schedule, log: log}
}

// @Summary Book a lesson
// @Description Book a lesson for a student, rejecting schedule conflicts
// @Tags Lessons
// @Accept json
// @Produce json
// @Param lesson body dto.CreateLessonRequest true "Lesson details"
// @Success 201 {object} dto.LessonResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Router /lessons [post]
func (h *LessonHandler) CreateLesson(c *gin.Context) {
	var req dto.CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateLesson(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to create lesson", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Book recurring lessons
// @Description Expand a weekly pattern into lessons; conflicting slots are skipped and reported
// @Tags Lessons
// @Accept json
// @Produce json
// @Param pattern body dto.BulkCreateLessonsRequest true "Recurrence pattern"
// @Success 201 {object} dto.BulkCreateLessonsResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /lessons/bulk [post]
func (h *LessonHandler) BulkCreateLessons(c *gin.Context) {
	var req dto.BulkCreateLessonsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.schedule.BulkCreateLessons(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to bulk create lessons", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Check a time slot for conflicts
// @Description Probe the calendar for a candidate slot without booking it
// @Tags Lessons
// @Produce json
// @Param slot query dto.CheckConflictRequest true "Candidate slot"
// @Success 200 {object} dto.CheckConflictResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /lessons/conflicts [get]
func (h *LessonHandler) CheckConflict(c *gin.Context) {
	var req dto.CheckConflictRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.log.Error("Failed to bind query parameters", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid slot parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.schedule.CheckConflict(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to check conflicts", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Get a lesson by ID
// @Tags Lessons
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 200 {object} dto.LessonResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /lessons/{id} [get]
func (h *LessonHandler) GetLesson(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Lesson ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetLesson(c.Request.Context(), id)
	if err != nil {
		h.log.Error("Failed to get lesson", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List lessons
// @Description List lessons with optional filtering by student, state and date range
// @Tags Lessons
// @Produce json
// @Param filter query types.LessonFilter false "Filter"
// @Success 200 {object} dto.ListLessonsResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /lessons [get]
func (h *LessonHandler) ListLessons(c *gin.Context) {
	var filter types.LessonFilter
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

	resp, err := h.service.ListLessons(c.Request.Context(), &filter)
	if err != nil {
		h.log.Error("Failed to list lessons", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Update a lesson
// @Description Apply completion, payment or cancellation flag changes
// @Tags Lessons
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param lesson body dto.UpdateLessonRequest true "Flag changes"
// @Success 200 {object} dto.LessonResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /lessons/{id} [put]
func (h *LessonHandler) UpdateLesson(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Lesson ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	var req dto.UpdateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdateLesson(c.Request.Context(), id, &req)
	if err != nil {
		h.log.Error("Failed to update lesson", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Mark a lesson as completed
// @Tags Lessons
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 200 {object} dto.LessonResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /lessons/{id}/complete [post]
func (h *LessonHandler) CompleteLesson(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Lesson ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CompleteLesson(c.Request.Context(), id)
	if err != nil {
		h.log.Error("Failed to complete lesson", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Cancel a lesson
// @Description Cancel a lesson; the refund decision follows the cancellation window
// @Tags Lessons
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 200 {object} dto.CancelLessonResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /lessons/{id}/cancel [post]
func (h *LessonHandler) CancelLesson(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Lesson ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CancelLesson(c.Request.Context(), id)
	if err != nil {
		h.log.Error("Failed to cancel lesson", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Delete a lesson
// @Tags Lessons
// @Param id path string true "Lesson ID"
// @Success 204
// @Failure 404 {object} ierr.ErrorResponse
// @Router /lessons/{id} [delete]
func (h *LessonHandler) DeleteLesson(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Lesson ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	if err := h.service.DeleteLesson(c.Request.Context(), id); err != nil {
		h.log.Error("Failed to delete lesson", "error", err)
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
