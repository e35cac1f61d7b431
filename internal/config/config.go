package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/KasumiMercury/primind-health-remind/internal/domain"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Log           LogConfig
	Observability ObservabilityConfig
	Scheduler     SchedulerConfig
	Reminder      ReminderConfig
	Dispatch      DispatchConfig
	PubSub        PubSubConfig
	Redis         RedisConfig
	Telegram      TelegramConfig
}

type LogConfig struct {
	Level string
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Driver          string
	DSN             string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type ObservabilityConfig struct {
	Environment     string
	ServiceName     string
	ServiceVersion  string
	Revision        string
	SamplingRate    float64
	MetricsDisabled bool
}

type SchedulerConfig struct {
	Interval time.Duration
	CatchUp  domain.CatchUpPolicy
	LockTTL  time.Duration
}

type ReminderConfig struct {
	// Location interprets the wall-clock date and time of every reminder.
	Location         *time.Location
	DeleteOnComplete bool
}

type DispatchConfig struct {
	ChannelTimeout time.Duration
	LogChannel     bool
}

type PubSubConfig struct {
	NATSURL         string
	GCloudProjectID string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type TelegramConfig struct {
	Token  string
	ChatID int64
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present; real environment
// variables take precedence over it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded environment from .env")
	}

	serverPort, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	readTimeout, err := time.ParseDuration(getEnv("SERVER_READ_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := time.ParseDuration(getEnv("SERVER_WRITE_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_WRITE_TIMEOUT: %w", err)
	}

	database, err := loadDatabase()
	if err != nil {
		return nil, err
	}

	observability, err := loadObservability()
	if err != nil {
		return nil, err
	}

	scheduler, err := loadScheduler()
	if err != nil {
		return nil, err
	}

	reminder, err := loadReminder()
	if err != nil {
		return nil, err
	}

	dispatch, err := loadDispatch()
	if err != nil {
		return nil, err
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	telegram, err := loadTelegram()
	if err != nil {
		return nil, err
	}

	pubsub := PubSubConfig{
		NATSURL:         os.Getenv("NATS_URL"),
		GCloudProjectID: os.Getenv("GCLOUD_PROJECT_ID"),
	}
	if err := pubsub.Validate(); err != nil {
		return nil, err
	}

	return &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         serverPort,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
		Database: database,
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Observability: observability,
		Scheduler:     scheduler,
		Reminder:      reminder,
		Dispatch:      dispatch,
		PubSub:        pubsub,
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Telegram: telegram,
	}, nil
}

func loadDatabase() (DatabaseConfig, error) {
	maxOpenConns, err := strconv.Atoi(getEnv("DB_MAX_OPEN_CONNS", "25"))
	if err != nil {
		return DatabaseConfig{}, fmt.Errorf("invalid DB_MAX_OPEN_CONNS: %w", err)
	}

	maxIdleConns, err := strconv.Atoi(getEnv("DB_MAX_IDLE_CONNS", "25"))
	if err != nil {
		return DatabaseConfig{}, fmt.Errorf("invalid DB_MAX_IDLE_CONNS: %w", err)
	}

	connMaxLifetime, err := time.ParseDuration(getEnv("DB_CONN_MAX_LIFETIME", "5m"))
	if err != nil {
		return DatabaseConfig{}, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME: %w", err)
	}

	cfg := DatabaseConfig{
		Driver:          getEnv("DB_DRIVER", DriverPostgres),
		DSN:             os.Getenv("POSTGRES_DSN"),
		SQLitePath:      getEnv("SQLITE_PATH", "health-remind.db"),
		MaxOpenConns:    maxOpenConns,
		MaxIdleConns:    maxIdleConns,
		ConnMaxLifetime: connMaxLifetime,
	}

	switch cfg.Driver {
	case DriverPostgres:
		if cfg.DSN == "" {
			return DatabaseConfig{}, errors.New("POSTGRES_DSN environment variable is required")
		}
	case DriverSQLite:
	default:
		return DatabaseConfig{}, fmt.Errorf("invalid DB_DRIVER: %q (want %s or %s)", cfg.Driver, DriverPostgres, DriverSQLite)
	}

	return cfg, nil
}

func loadObservability() (ObservabilityConfig, error) {
	samplingRate, err := strconv.ParseFloat(getEnv("TRACE_SAMPLING_RATE", "1.0"), 64)
	if err != nil || samplingRate < 0 || samplingRate > 1 {
		return ObservabilityConfig{}, fmt.Errorf("invalid TRACE_SAMPLING_RATE: must be between 0 and 1")
	}

	metricsDisabled, err := strconv.ParseBool(getEnv("METRICS_DISABLED", "false"))
	if err != nil {
		return ObservabilityConfig{}, fmt.Errorf("invalid METRICS_DISABLED: %w", err)
	}

	env := getEnv("ENV", "local")
	switch env {
	case "local", "dev", "prod":
	default:
		return ObservabilityConfig{}, fmt.Errorf("invalid ENV: %q", env)
	}

	return ObservabilityConfig{
		Environment:     env,
		ServiceName:     getEnv("SERVICE_NAME", "primind-health-remind"),
		ServiceVersion:  getEnv("SERVICE_VERSION", "dev"),
		Revision:        os.Getenv("K_REVISION"),
		SamplingRate:    samplingRate,
		MetricsDisabled: metricsDisabled,
	}, nil
}

func loadScheduler() (SchedulerConfig, error) {
	interval, err := time.ParseDuration(getEnv("SCHEDULER_INTERVAL", "30s"))
	if err != nil {
		return SchedulerConfig{}, fmt.Errorf("invalid SCHEDULER_INTERVAL: %w", err)
	}

	if interval <= 0 {
		return SchedulerConfig{}, errors.New("invalid SCHEDULER_INTERVAL: must be positive")
	}

	catchUp, err := domain.NewCatchUpPolicy(os.Getenv("SCHEDULER_CATCH_UP"))
	if err != nil {
		return SchedulerConfig{}, fmt.Errorf("invalid SCHEDULER_CATCH_UP: %w", err)
	}

	lockTTL, err := time.ParseDuration(getEnv("SCHEDULER_LOCK_TTL", "25s"))
	if err != nil {
		return SchedulerConfig{}, fmt.Errorf("invalid SCHEDULER_LOCK_TTL: %w", err)
	}

	if lockTTL <= 0 {
		return SchedulerConfig{}, errors.New("invalid SCHEDULER_LOCK_TTL: must be positive")
	}

	return SchedulerConfig{
		Interval: interval,
		CatchUp:  catchUp,
		LockTTL:  lockTTL,
	}, nil
}

func loadReminder() (ReminderConfig, error) {
	loc, err := time.LoadLocation(getEnv("REMINDER_TIMEZONE", "Local"))
	if err != nil {
		return ReminderConfig{}, fmt.Errorf("invalid REMINDER_TIMEZONE: %w", err)
	}

	deleteOnComplete, err := strconv.ParseBool(getEnv("REMINDER_DELETE_ON_COMPLETE", "false"))
	if err != nil {
		return ReminderConfig{}, fmt.Errorf("invalid REMINDER_DELETE_ON_COMPLETE: %w", err)
	}

	return ReminderConfig{
		Location:         loc,
		DeleteOnComplete: deleteOnComplete,
	}, nil
}

func loadDispatch() (DispatchConfig, error) {
	timeout, err := time.ParseDuration(getEnv("DISPATCH_CHANNEL_TIMEOUT", "5s"))
	if err != nil {
		return DispatchConfig{}, fmt.Errorf("invalid DISPATCH_CHANNEL_TIMEOUT: %w", err)
	}

	if timeout <= 0 {
		return DispatchConfig{}, errors.New("invalid DISPATCH_CHANNEL_TIMEOUT: must be positive")
	}

	logChannel, err := strconv.ParseBool(getEnv("DISPATCH_LOG_CHANNEL", "true"))
	if err != nil {
		return DispatchConfig{}, fmt.Errorf("invalid DISPATCH_LOG_CHANNEL: %w", err)
	}

	return DispatchConfig{
		ChannelTimeout: timeout,
		LogChannel:     logChannel,
	}, nil
}

func loadTelegram() (TelegramConfig, error) {
	token := os.Getenv("TELEGRAM_TOKEN")
	if token == "" {
		return TelegramConfig{}, nil
	}

	chatID, err := strconv.ParseInt(os.Getenv("TELEGRAM_CHAT_ID"), 10, 64)
	if err != nil {
		return TelegramConfig{}, fmt.Errorf("invalid TELEGRAM_CHAT_ID: required when TELEGRAM_TOKEN is set: %w", err)
	}

	return TelegramConfig{
		Token:  token,
		ChatID: chatID,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *RedisConfig) Enabled() bool {
	return c.Addr != ""
}

func (c *TelegramConfig) Enabled() bool {
	return c.Token != ""
}
