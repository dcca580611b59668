package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"bookline.app/core/common/id"
	"bookline.app/core/common/logger"
	"bookline.app/core/common/otel"
	"bookline.app/core/core/config"
	"bookline.app/core/core/db"
	"bookline.app/core/internal/automation"
	"bookline.app/core/internal/bus"
	"bookline.app/core/internal/notify"
	"bookline.app/core/internal/queue"
	"bookline.app/core/internal/store"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeWorker)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	slog.InfoContext(ctx, "bookline worker starting",
		"env", cfg.Env,
		"queue", cfg.Queue.Queue,
		"concurrency", cfg.Queue.Concurrency)

	// Distinct node id from the server so ids never collide.
	if err := id.Init(2); err != nil {
		slog.ErrorContext(ctx, "failed to initialize id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	redisOpts, err := redis.ParseURL(cfg.Queue.RedisURL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}

	// Unlike the API server, the worker exists only to drain the queue, so a
	// dead broker at startup is fatal here.
	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	slog.InfoContext(ctx, "redis connected", "queue", cfg.Queue.Queue)

	jobQueue := queue.NewRedis(redisClient, queue.RedisConfig{
		PollBlock: cfg.Queue.PollBlock,
	})

	stores := store.NewStores(database.Querier())
	eventBus := bus.New()
	eventBus.Use(bus.Logging())

	gateway := notify.NewGateway(stores, senders(cfg), cfg.Notify)
	engine := automation.NewEngine(stores, jobQueue, cfg.Queue.Queue, eventBus, gateway, cfg.Automation)

	// Processors emit follow-up events (pending forms, overdue forms); those
	// are handled in-process here, so the worker registers the same handlers
	// as the server.
	engine.Register()

	w := queue.NewWorker(jobQueue, cfg.Queue.Queue, engine.Processors(), queue.WorkerConfig{
		Concurrency:     cfg.Queue.Concurrency,
		PromoteInterval: cfg.Queue.PromoteInterval,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- w.Run(ctx)
	}()

	slog.InfoContext(ctx, "worker initialized and running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down worker...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	w.Stop()

	select {
	case err := <-errCh:
		if err != nil {
			slog.ErrorContext(shutdownCtx, "worker exited with error", "error", err)
		}
	case <-shutdownCtx.Done():
		slog.WarnContext(shutdownCtx, "shutdown timeout exceeded")
	}

	if err := jobQueue.Close(); err != nil {
		slog.ErrorContext(shutdownCtx, "queue close error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "worker shutdown complete")
}

func senders(cfg config.Config) map[string]notify.Sender {
	if cfg.IsDevelopment() {
		logSender := &notify.LogSender{}
		return map[string]notify.Sender{
			"smtp": logSender,
			"http": logSender,
			"log":  logSender,
		}
	}
	return map[string]notify.Sender{
		"smtp": &notify.SMTPSender{},
		"http": notify.NewHTTPSender(cfg.Notify.HTTPEndpoint),
		"log":  &notify.LogSender{},
	}
}
