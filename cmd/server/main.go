package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"bookline.app/core/common/id"
	"bookline.app/core/common/logger"
	"bookline.app/core/common/otel"
	"bookline.app/core/core/config"
	"bookline.app/core/core/db"
	"bookline.app/core/internal/automation"
	"bookline.app/core/internal/bus"
	"bookline.app/core/internal/http/middleware"
	httprouter "bookline.app/core/internal/http/router"
	"bookline.app/core/internal/notify"
	"bookline.app/core/internal/queue"
	"bookline.app/core/internal/service"
	"bookline.app/core/internal/store"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		// Can't use slog yet — OTel failed before logger setup
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "bookline server starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
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
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	// A broker outage at startup is not fatal for the API: bookings still
	// commit, automation degrades to not-scheduled until Redis returns.
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.WarnContext(ctx, "redis unreachable, automation degraded", "error", err)
	} else {
		slog.InfoContext(ctx, "redis connected", "queue", cfg.Queue.Queue)
	}

	jobQueue := queue.NewRedis(redisClient, queue.RedisConfig{
		PollBlock: cfg.Queue.PollBlock,
	})

	stores := store.NewStores(database.Querier())
	eventBus := bus.New()
	eventBus.Use(bus.Logging())

	gateway := notify.NewGateway(stores, senders(cfg), cfg.Notify)
	engine := automation.NewEngine(stores, jobQueue, cfg.Queue.Queue, eventBus, gateway, cfg.Automation)
	engine.Register()

	services := service.NewServices(stores, service.NewTxRunner(database), eventBus, jobQueue, cfg)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

// senders builds the provider registry. Development gets the log sender for
// every provider so the full automation flow runs without accounts.
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

func setupRouter(cfg config.Config, services *service.Services) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services)

	return router
}

const banner = `
██████╗  ██████╗  ██████╗ ██╗  ██╗██╗     ██╗███╗   ██╗███████╗
██╔══██╗██╔═══██╗██╔═══██╗██║ ██╔╝██║     ██║████╗  ██║██╔════╝
██████╔╝██║   ██║██║   ██║█████╔╝ ██║     ██║██╔██╗ ██║█████╗
██╔══██╗██║   ██║██║   ██║██╔═██╗ ██║     ██║██║╚██╗██║██╔══╝
██████╔╝╚██████╔╝╚██████╔╝██║  ██╗███████╗██║██║ ╚████║███████╗
╚═════╝  ╚═════╝  ╚═════╝ ╚═╝  ╚═╝╚══════╝╚═╝╚═╝  ╚═══╝╚══════╝
`
