package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mohitdudhat22/Task-Management-App/internal/config"
	"github.com/mohitdudhat22/Task-Management-App/internal/db"
	httpServer "github.com/mohitdudhat22/Task-Management-App/internal/http"
	"github.com/mohitdudhat22/Task-Management-App/internal/http/handlers"
	"github.com/mohitdudhat22/Task-Management-App/internal/http/middleware"
	"github.com/mohitdudhat22/Task-Management-App/internal/logger"
	"github.com/mohitdudhat22/Task-Management-App/internal/notify"
	"github.com/mohitdudhat22/Task-Management-App/internal/repository"
	"github.com/mohitdudhat22/Task-Management-App/internal/service"
	"github.com/mohitdudhat22/Task-Management-App/internal/ws"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checks := map[string]handlers.Check{}

	var (
		taskStore  service.TaskStore
		statsStore service.StatsStore
		userStore  service.UserStore
		auditStore service.AuditRepository
	)
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		mem := repository.NewMemoryStore()
		taskStore, userStore, auditStore = mem.Tasks(), mem.Users(), mem.Audit()
		statsStore = mem.Tasks()
		logger.Warn("using in-memory store, data is lost on restart")
	default:
		dbPool := db.MustConnect(ctx, cfg.DatabaseURL)
		defer dbPool.Close()
		taskRepo := repository.NewTaskRepository(dbPool)
		taskStore, statsStore = taskRepo, taskRepo
		userStore = repository.NewUserRepository(dbPool)
		auditStore = repository.NewAuditRepository(dbPool)
		checks["database"] = dbPool.Ping
	}

	rdb := middleware.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rdb != nil {
		defer rdb.Close()
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	hub := ws.NewHub()
	defer hub.Close()

	// With Redis every instance publishes to the shared channel and the relay
	// fans events back into the local hub.
	var publisher service.Publisher = hub
	var relay *ws.RedisRelay
	if rdb != nil {
		relay = ws.NewRedisRelay(rdb, cfg.EventsChannel, hub)
		publisher = relay
	}

	audit := service.NewAuditService(auditStore)
	tasks := service.NewTaskService(taskStore, userStore, publisher, service.WithAuditor(audit))

	r := gin.New()
	r.Use(gin.Recovery(), httpServer.CORS(cfg.AllowedOrigin))
	httpServer.RegisterRoutes(r, httpServer.Deps{
		Tasks:         tasks,
		Audit:         audit,
		Admin:         service.NewAdminService(statsStore),
		Notifier:      notify.New(cfg.NotifyWebhookURL),
		Hub:           hub,
		Limiter:       middleware.NewRateLimiter(rdb),
		Checks:        checks,
		Version:       cfg.AppVersion,
		AllowedOrigin: cfg.AllowedOrigin,
		RateLimit:     cfg.APIRateLimit,
		RateWindow:    cfg.APIRateWindow,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server started", "port", cfg.AppPort, "store", cfg.StoreDriver, "version", cfg.AppVersion)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if relay != nil {
		g.Go(func() error {
			if err := relay.Run(gctx); err != nil && gctx.Err() == nil {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("server exited")
}
