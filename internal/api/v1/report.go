package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutorpilot/tutorpilot/internal/api/dto"
	ierr "github.com/tutorpilot/tutorpilot/internal/errors"
	"github.com/tutorpilot/tutorpilot/internal/logger"
	"github.com/tutorpilot/tutorpilot/internal/service"
)

type ReportHandler struct {
	service service.ReportService
	log     *logger.Logger
}

func NewReportHandler(service service.ReportService, log *logger.Logger) *ReportHandler {
	return &ReportHandler{service: service, log: log}
}

// @Summary Finance report
// @Description Center-wide revenue, debt and prepaid summary over an optional date range
// @Tags Reports
// @Produce json
// @Param range query dto.FinanceReportRequest false "Date range"
// @Success 200 {object} dto.FinanceReportResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /reports/finance [get]
func (h *ReportHandler) FinanceReport(c *gin.Context) {
	var req dto.FinanceReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.log.Error("Failed to bind query parameters", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid date range parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.FinanceReport(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to build finance report", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
