package main

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/fx"

	"github.com/tutorpilot/tutorpilot/internal/api"
	"github.com/tutorpilot/tutorpilot/internal/api/cron"
	v1 "github.com/tutorpilot/tutorpilot/internal/api/v1"
	"github.com/tutorpilot/tutorpilot/internal/cache"
	"github.com/tutorpilot/tutorpilot/internal/config"
	"github.com/tutorpilot/tutorpilot/internal/domain/lesson"
	"github.com/tutorpilot/tutorpilot/internal/domain/payment"
	"github.com/tutorpilot/tutorpilot/internal/domain/student"
	"github.com/tutorpilot/tutorpilot/internal/logger"
	"github.com/tutorpilot/tutorpilot/internal/repository/postgres"
	"github.com/tutorpilot/tutorpilot/internal/service"
)

func main() {
	app := fx.New(
		fx.Provide(
			config.NewConfig,
			logger.NewLogger,
			cache.Initialize,
			newPostgresClient,
			postgres.NewLessonRepository,
			postgres.NewPaymentRepository,
			postgres.NewStudentRepository,
			newServiceParams,
			service.NewStudentService,
			service.NewLessonService,
			service.NewPaymentService,
			service.NewLedgerService,
			service.NewScheduleService,
			service.NewSweepService,
			service.NewReportService,
			v1.NewStudentHandler,
			v1.NewLessonHandler,
			v1.NewPaymentHandler,
			v1.NewReportHandler,
			cron.NewLessonCronHandler,
			newRouter,
		),
		fx.Invoke(
			startServer,
			startSweepTicker,
		),
	)

	app.Run()
}

func newPostgresClient(lc fx.Lifecycle, cfg *config.Configuration, log *logger.Logger) (*postgres.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := postgres.NewClient(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	if err := client.Migrate(ctx); err != nil {
		client.Close()
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			client.Close()
			return nil
		},
	})
	return client, nil
}

func newServiceParams(
	cfg *config.Configuration,
	log *logger.Logger,
	client *postgres.Client,
	c cache.Cache,
	lessonRepo lesson.Repository,
	paymentRepo payment.Repository,
	studentRepo student.Repository,
) service.ServiceParams {
	return service.ServiceParams{
		Logger:      log,
		Config:      cfg,
		DB:          client,
		Cache:       c,
		LessonRepo:  lessonRepo,
		PaymentRepo: paymentRepo,
		StudentRepo: studentRepo,
	}
}

func newRouter(
	studentHandler *v1.StudentHandler,
	lessonHandler *v1.LessonHandler,
	paymentHandler *v1.PaymentHandler,
	reportHandler *v1.ReportHandler,
	lessonCron *cron.LessonCronHandler,
	cfg *config.Configuration,
	log *logger.Logger,
) *http.Server {
	router := api.NewRouter(api.Handlers{
		Student:    studentHandler,
		Lesson:     lessonHandler,
		Payment:    paymentHandler,
		Report:     reportHandler,
		LessonCron: lessonCron,
	}, cfg, log)

	return &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}
}

func startServer(lc fx.Lifecycle, srv *http.Server, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Infow("starting server", "address", srv.Addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalw("server failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("shutting down server")
			return srv.Shutdown(ctx)
		},
	})
}

// startSweepTicker runs the lesson auto-advance sweep on a fixed interval.
// The sweep also runs inside balance reads and reports, so the ticker only
// bounds how stale an untouched lesson can get.
func startSweepTicker(lc fx.Lifecycle, sweep service.SweepService, cfg *config.Configuration, log *logger.Logger) {
	if !cfg.Sweep.Enabled {
		log.Infow("lesson sweep disabled")
		return
	}

	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ticker := time.NewTicker(cfg.Sweep.Interval)
			go func() {
				defer ticker.Stop()
				for {
					select {
					case <-ticker.C:
						if _, err := sweep.Run(context.Background()); err != nil {
							log.Errorw("lesson sweep failed", "error", err)
						}
					case <-done:
						return
					}
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			close(done)
			return nil
		},
	})
}
