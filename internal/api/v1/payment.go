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

type PaymentHandler struct {
	service service.PaymentService
	log     *logger.Logger
}

func NewPaymentHandler(service service.PaymentService, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{service: service, log: log}
}

// @Summary Record a payment
// @Description Record a payment, optionally covering specific lessons
// @Tags Payments
// @Accept json
// @Produce json
// @Param payment body dto.CreatePaymentRequest true "Payment details"
// @Success 201 {object} dto.PaymentResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /payments [post]
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.RecordPayment(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to record payment", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get a payment by ID
// @Tags Payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} dto.PaymentResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /payments/{id} [get]
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Payment ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetPayment(c.Request.Context(), id)
	if err != nil {
		h.log.Error("Failed to get payment", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List payments
// @Description List payments with optional filtering by student and date range
// @Tags Payments
// @Produce json
// @Param filter query types.PaymentFilter false "Filter"
// @Success 200 {object} dto.ListPaymentsResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /payments [get]
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	var filter types.PaymentFilter
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

	resp, err := h.service.ListPayments(c.Request.Context(), &filter)
	if err != nil {
		h.log.Error("Failed to list payments", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Delete a payment
// @Description Delete a payment and reverse its effect on covered lessons
// @Tags Payments
// @Param id path string true "Payment ID"
// @Success 204
// @Failure 404 {object} ierr.ErrorResponse
// @Router /payments/{id} [delete]
func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Payment ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	if err := h.service.DeletePayment(c.Request.Context(), id); err != nil {
		h.log.Error("Failed to delete payment", "error", err)
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
