package middleware

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/KasumiMercury/primind-health-remind/internal/observability/logging"
	"github.com/KasumiMercury/primind-health-remind/internal/observability/metrics"
	"github.com/KasumiMercury/primind-health-remind/internal/observability/tracing"
)

const RequestIDHeader = "x-request-id"

type GinConfig struct {
	// SkipPaths bypass request logging, tracing and metrics.
	SkipPaths  []string
	Module     logging.Module
	TracerName string
	// HTTPMetrics is optional.
	HTTPMetrics *metrics.HTTPMetrics
	// StreamPaths are long-lived responses. Only their start is logged.
	StreamPaths []string
}

func Gin(cfg GinConfig) gin.HandlerFunc {
	skipSet := toSet(cfg.SkipPaths)
	streamSet := toSet(cfg.StreamPaths)

	return func(c *gin.Context) {
		if _, skip := skipSet[c.Request.URL.Path]; skip {
			c.Next()

			return
		}

		start := time.Now()

		requestID := logging.ValidateAndExtractRequestID(c.Request.Header.Get(RequestIDHeader))
		ctx := logging.WithRequestID(c.Request.Context(), requestID)

		if cfg.Module != "" {
			ctx = logging.WithModule(ctx, cfg.Module)
		}

		ctx = tracing.ExtractFromHTTPRequest(ctx, c.Request)

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		ctx, span := otel.Tracer(cfg.TracerName).Start(ctx, fmt.Sprintf("%s %s", c.Request.Method, path))
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Header(RequestIDHeader, requestID)

		if _, stream := streamSet[path]; stream {
			slog.LogAttrs(ctx, slog.LevelInfo, "stream opened",
				slog.String("event", "http.stream.start"),
				slog.String("path", c.Request.URL.Path),
				slog.String("remote_addr", c.ClientIP()),
			)
		}

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		span.SetAttributes(attribute.Int("http.response.status_code", status))

		if status >= 500 {
			span.SetStatus(codes.Error, fmt.Sprintf("status %d", status))
		}

		if cfg.HTTPMetrics != nil {
			cfg.HTTPMetrics.Record(ctx, c.Request.Method, path, status, duration)
		}

		slog.LogAttrs(ctx, slog.LevelInfo, "request completed",
			slog.String("event", "http.request.finish"),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("remote_addr", c.ClientIP()),
			slog.Int("status", status),
			slog.Duration("duration", duration),
		)
	}
}

func toSet(paths []string) map[string]struct{} {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}

	return set
}
