package api

import (
	"github.com/gin-gonic/gin"

	"github.com/tutorpilot/tutorpilot/internal/api/cron"
	v1 "github.com/tutorpilot/tutorpilot/internal/api/v1"
	"github.com/tutorpilot/tutorpilot/internal/config"
	"github.com/tutorpilot/tutorpilot/internal/logger"
	"github.com/tutorpilot/tutorpilot/internal/rest/middleware"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Student    *v1.StudentHandler
	Lesson     *v1.LessonHandler
	Payment    *v1.PaymentHandler
	Report     *v1.ReportHandler
	LessonCron *cron.LessonCronHandler
}

// NewRouter wires the middleware chain and mounts all routes.
func NewRouter(handlers Handlers, cfg *config.Configuration, log *logger.Logger) *gin.Engine {
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.LoggingMiddleware(log),
		middleware.ErrorHandler(log),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	apiV1 := router.Group("/v1")

	students := apiV1.Group("/students")
	{
		students.POST("", handlers.Student.CreateStudent)
		students.GET("", handlers.Student.ListStudents)
		students.GET("/:id", handlers.Student.GetStudent)
		students.PUT("/:id", handlers.Student.UpdateStudent)
		students.DELETE("/:id", handlers.Student.DeleteStudent)
		students.GET("/:id/balance", handlers.Student.GetBalance)
		students.GET("/:id/ledger", handlers.Student.GetLedger)
	}

	lessons := apiV1.Group("/lessons")
	{
		lessons.POST("", handlers.Lesson.CreateLesson)
		lessons.POST("/bulk", handlers.Lesson.BulkCreateLessons)
		lessons.GET("/conflicts", handlers.Lesson.CheckConflict)
		lessons.GET("", handlers.Lesson.ListLessons)
		lessons.GET("/:id", handlers.Lesson.GetLesson)
		lessons.PUT("/:id", handlers.Lesson.UpdateLesson)
		lessons.POST("/:id/complete", handlers.Lesson.CompleteLesson)
		lessons.POST("/:id/cancel", handlers.Lesson.CancelLesson)
		lessons.DELETE("/:id", handlers.Lesson.DeleteLesson)
	}

	payments := apiV1.Group("/payments")
	{
		payments.POST("", handlers.Payment.RecordPayment)
		payments.GET("", handlers.Payment.ListPayments)
		payments.GET("/:id", handlers.Payment.GetPayment)
		payments.DELETE("/:id", handlers.Payment.DeletePayment)
	}

	reports := apiV1.Group("/reports")
	{
		reports.GET("/finance", handlers.Report.FinanceReport)
	}

	// On-demand triggers for the jobs that otherwise run on a ticker.
	cronGroup := router.Group("/cron")
	{
		cronGroup.POST("/lessons/sweep", handlers.LessonCron.SweepLessons)
		cronGroup.POST("/students/sync-balances", handlers.LessonCron.SyncBalances)
	}

	return router
}
