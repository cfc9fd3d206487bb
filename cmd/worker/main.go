package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/policyatlas/evidence-engine/internal/bootstrap"
	"github.com/policyatlas/evidence-engine/internal/config"
	"github.com/policyatlas/evidence-engine/internal/observability/logging"
	"github.com/policyatlas/evidence-engine/internal/observability/metrics"
)

const workerService = "evidence-worker"

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := logging.Setup(workerService, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics(workerService)
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics_server_error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeReviewSubmitted(ctx, func(handlerCtx context.Context, reviewID string) error {
		received := time.Now()
		workerMetrics.StartReview()

		processCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		if review, _, err := app.Reviews.GetByID(processCtx, reviewID); err == nil {
			workerMetrics.ObserveQueueLag(workerService, received.Sub(review.CreatedAt))
		}

		processErr := app.Reviews.ProcessByID(processCtx, reviewID)
		workerMetrics.FinishReview(workerService, time.Since(received), processErr)
		return processErr
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
