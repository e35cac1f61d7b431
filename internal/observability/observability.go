package observability

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"

	"github.com/KasumiMercury/primind-health-remind/internal/observability/logging"
	"github.com/KasumiMercury/primind-health-remind/internal/observability/metrics"
	"github.com/KasumiMercury/primind-health-remind/internal/observability/tracing"
)

const instrumentationName = "github.com/KasumiMercury/primind-health-remind"

type Config struct {
	ServiceInfo    logging.ServiceInfo
	Environment    logging.Environment
	GCPProjectID   string
	SamplingRate   float64
	DefaultModule  logging.Module
	LogLevel       slog.Level
	MetricsDisable bool
}

// Resources holds everything Init installed so the caller can shut it down
// and hand the instruments to the components that record them.
type Resources struct {
	Tracing         *tracing.Provider
	Metrics         *metrics.Provider
	HTTPMetrics     *metrics.HTTPMetrics
	ReminderMetrics *metrics.ReminderMetrics
	TracerName      string
}

// Init installs the slog default logger, the global tracer and meter
// providers, and the text map propagator.
func Init(ctx context.Context, cfg Config) (*Resources, error) {
	slog.SetDefault(slog.New(logging.NewHandler(os.Stdout, logging.HandlerConfig{
		Level:         cfg.LogLevel,
		Service:       cfg.ServiceInfo,
		Environment:   cfg.Environment,
		GCPProjectID:  cfg.GCPProjectID,
		DefaultModule: cfg.DefaultModule,
	})))

	tp, err := tracing.NewProvider(ctx, tracing.Config{
		ServiceName:    cfg.ServiceInfo.Name,
		ServiceVersion: cfg.ServiceInfo.Version,
		Environment:    string(cfg.Environment),
		ProjectID:      cfg.GCPProjectID,
		SamplingRate:   cfg.SamplingRate,
	})
	if err != nil {
		return nil, err
	}

	otel.SetTracerProvider(tp.TracerProvider())
	tracing.SetupPropagator()

	mp, err := metrics.NewProvider(ctx, metrics.Config{
		ServiceName:    cfg.ServiceInfo.Name,
		ServiceVersion: cfg.ServiceInfo.Version,
		Environment:    string(cfg.Environment),
		ProjectID:      cfg.GCPProjectID,
		ExportDisabled: cfg.MetricsDisable,
	})
	if err != nil {
		_ = tp.Shutdown(ctx)

		return nil, err
	}

	otel.SetMeterProvider(mp.MeterProvider())

	meter := mp.Meter(instrumentationName)

	httpMetrics, err := metrics.NewHTTPMetrics(meter)
	if err != nil {
		return nil, errors.Join(err, tp.Shutdown(ctx), mp.Shutdown(ctx))
	}

	reminderMetrics, err := metrics.NewReminderMetrics(meter)
	if err != nil {
		return nil, errors.Join(err, tp.Shutdown(ctx), mp.Shutdown(ctx))
	}

	return &Resources{
		Tracing:         tp,
		Metrics:         mp,
		HTTPMetrics:     httpMetrics,
		ReminderMetrics: reminderMetrics,
		TracerName:      instrumentationName,
	}, nil
}

func (r *Resources) Shutdown(ctx context.Context) error {
	return errors.Join(
		r.Tracing.Shutdown(ctx),
		r.Metrics.Shutdown(ctx),
	)
}
