package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/KasumiMercury/primind-health-remind/internal/app"
	"github.com/KasumiMercury/primind-health-remind/internal/config"
	"github.com/KasumiMercury/primind-health-remind/internal/infra/handler"
	"github.com/KasumiMercury/primind-health-remind/internal/infra/lock"
	"github.com/KasumiMercury/primind-health-remind/internal/infra/notifier"
	"github.com/KasumiMercury/primind-health-remind/internal/infra/pubsub"
	"github.com/KasumiMercury/primind-health-remind/internal/infra/repository"
	"github.com/KasumiMercury/primind-health-remind/internal/observability"
	"github.com/KasumiMercury/primind-health-remind/internal/observability/logging"
	"github.com/KasumiMercury/primind-health-remind/internal/observability/middleware"
	"github.com/KasumiMercury/primind-health-remind/internal/scheduler"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

const (
	apiPrefix          = "/api/v1"
	slowQueryThreshold = 200 * time.Millisecond
	shutdownTimeout    = 30 * time.Second
)

func main() {
	os.Exit(run())
}

func run() int {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)

		return 1
	}

	ctx := context.Background()

	obs, err := initObservability(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize observability", "error", err)

		return 1
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := obs.Shutdown(shutdownCtx); err != nil {
			slog.Warn("failed to shutdown observability", "error", err)
		}
	}()

	db, err := initDatabase(cfg.Database, logging.ParseLevel(cfg.Log.Level))
	if err != nil {
		slog.Error("failed to initialize database", "error", err)

		return 1
	}

	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("failed to get underlying sql.DB", "error", err)

		return 1
	}

	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("failed to close database connection", "error", err)
		}
	}()

	publisher, err := initPublisher(ctx, cfg)
	if err != nil {
		slog.Error("failed to create event publisher", "error", err)

		return 1
	}

	if publisher != nil {
		defer func() {
			if err := publisher.Close(); err != nil {
				slog.Warn("failed to close publisher", "error", err)
			}
		}()
	}

	broadcaster := notifier.NewBroadcaster(0)

	channels, err := buildChannels(cfg, broadcaster, publisher)
	if err != nil {
		slog.Error("failed to initialize notification channels", "error", err)

		return 1
	}

	dispatcher := notifier.NewDispatcher(cfg.Dispatch.ChannelTimeout, obs.ReminderMetrics, channels...)

	reminderRepo := repository.NewReminderRepository(db, cfg.Reminder.Location)

	dispatchUseCase := app.NewDispatchUseCase(reminderRepo, dispatcher, publisher, app.DispatchUseCaseConfig{
		CatchUp:          cfg.Scheduler.CatchUp,
		DeleteOnComplete: cfg.Reminder.DeleteOnComplete,
		Metrics:          obs.ReminderMetrics,
	})

	var locker scheduler.Locker

	if cfg.Redis.Enabled() {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		defer func() {
			if err := redisClient.Close(); err != nil {
				slog.Warn("failed to close redis client", "error", err)
			}
		}()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			slog.Error("failed to connect to redis", "error", err, "addr", cfg.Redis.Addr)

			return 1
		}

		locker = lock.NewRedisLocker(redisClient, lock.DefaultKey, cfg.Scheduler.LockTTL)

		slog.Info("scheduler tick lease enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Scheduler.LockTTL)
	}

	sched := scheduler.New(dispatchUseCase, scheduler.Config{
		Interval: cfg.Scheduler.Interval,
		Locker:   locker,
		Metrics:  obs.ReminderMetrics,
	})

	reminderUseCase := app.NewReminderUseCase(reminderRepo, publisher, sched, app.ReminderUseCaseConfig{
		Location:         cfg.Reminder.Location,
		CatchUp:          cfg.Scheduler.CatchUp,
		DeleteOnComplete: cfg.Reminder.DeleteOnComplete,
	})

	reminderHandler := handler.NewReminderHandler(reminderUseCase, broadcaster)

	router := setupRouter(reminderHandler, obs)

	if err := sched.Start(ctx); err != nil {
		slog.Error("failed to start scheduler", "error", err)

		return 1
	}

	defer sched.Stop()

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)

	go func() {
		slog.Info("starting server",
			"address", cfg.Server.Address(),
			"channels", dispatcher.Channels(),
			"timezone", cfg.Reminder.Location.String(),
		)
		serverErr <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig.String())

		sched.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown server", "error", err)

			return 1
		}

		slog.Info("server exited properly")

		return 0

	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return 0
		}

		slog.Error("server exited with error", "error", err)

		return 1
	}
}

func initObservability(ctx context.Context, cfg *config.Config) (*observability.Resources, error) {
	version := cfg.Observability.ServiceVersion
	if version == "dev" {
		version = Version
	}

	return observability.Init(ctx, observability.Config{
		ServiceInfo: logging.ServiceInfo{
			Name:     cfg.Observability.ServiceName,
			Version:  version,
			Revision: cfg.Observability.Revision,
		},
		Environment:    logging.Environment(cfg.Observability.Environment),
		GCPProjectID:   cfg.PubSub.GCloudProjectID,
		SamplingRate:   cfg.Observability.SamplingRate,
		DefaultModule:  logging.ModuleReminder,
		LogLevel:       logging.ParseLevel(cfg.Log.Level),
		MetricsDisable: cfg.Observability.MetricsDisabled,
	})
}

func initDatabase(cfg config.DatabaseConfig, level slog.Level) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		dialector = postgres.Open(cfg.DSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logging.NewGormLogger(slowQueryThreshold, level),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if cfg.Driver == config.DriverSQLite {
		// SQLite serializes writers; one connection avoids SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := repository.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	slog.Info("database initialized", "driver", cfg.Driver)

	return db, nil
}

func buildChannels(cfg *config.Config, broadcaster *notifier.Broadcaster, publisher pubsub.Publisher) ([]notifier.Channel, error) {
	channels := []notifier.Channel{notifier.NewInAppChannel(broadcaster)}

	if cfg.Dispatch.LogChannel {
		channels = append(channels, notifier.NewLogChannel())
	}

	if publisher != nil {
		channels = append(channels, notifier.NewPubSubChannel(publisher))
	}

	if cfg.Telegram.Enabled() {
		telegram, err := notifier.NewTelegramChannel(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			return nil, fmt.Errorf("failed to create telegram channel: %w", err)
		}

		channels = append(channels, telegram)
	}

	return channels, nil
}

func setupRouter(reminderHandler *handler.ReminderHandler, obs *observability.Resources) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.PanicRecoveryGin(),
		middleware.Gin(middleware.GinConfig{
			SkipPaths:   []string{"/ping"},
			Module:      logging.ModuleReminder,
			TracerName:  obs.TracerName,
			HTTPMetrics: obs.HTTPMetrics,
			StreamPaths: []string{apiPrefix + "/reminders/stream"},
		}),
	)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	v1 := router.Group(apiPrefix)
	reminderHandler.RegisterRoutes(v1)

	return router
}
