package cron

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutorpilot/tutorpilot/internal/logger"
	"github.com/tutorpilot/tutorpilot/internal/service"
)

// LessonCronHandler handles lesson related cron jobs
type LessonCronHandler struct {
	sweepService  service.SweepService
	ledgerService service.LedgerService
	logger        *logger.Logger
}

// NewLessonCronHandler creates a new lesson cron handler
func NewLessonCronHandler(
	sweepService service.SweepService,
	ledgerService service.LedgerService,
	logger *logger.Logger,
) *LessonCronHandler {
	return &LessonCronHandler{
		sweepService:  sweepService,
		ledgerService: ledgerService,
		logger:        logger,
	}
}

// SweepLessons advances every lesson whose scheduled time has passed.
func (h *LessonCronHandler) SweepLessons(c *gin.Context) {
	h.logger.Infow("starting lesson sweep cron job")

	resp, err := h.sweepService.Run(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to run lesson sweep", "error", err)
		c.Error(err)
		return
	}

	h.logger.Infow("completed lesson sweep cron job", "advanced", resp.AdvancedCount)
	c.JSON(http.StatusOK, resp)
}

// SyncBalances recomputes the stored balance of every student.
func (h *LessonCronHandler) SyncBalances(c *gin.Context) {
	h.logger.Infow("starting balance sync cron job")

	count, err := h.ledgerService.SyncAllBalances(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to sync balances", "error", err)
		c.Error(err)
		return
	}

	h.logger.Infow("completed balance sync cron job", "students", count)
	c.JSON(http.StatusOK, gin.H{"status": "success", "synced": count})
}
