package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

type HandlerConfig struct {
	Level         slog.Level
	Service       ServiceInfo
	Environment   Environment
	GCPProjectID  string
	DefaultModule Module
}

// contextHandler decorates every record with the service identity and the
// request id and module carried by the context.
type contextHandler struct {
	inner slog.Handler
	cfg   HandlerConfig
}

func NewHandler(w io.Writer, cfg HandlerConfig) slog.Handler {
	inner := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       cfg.Level,
		ReplaceAttr: replaceAttr,
	})

	base := inner.WithAttrs([]slog.Attr{
		slog.Group("service",
			slog.String("name", cfg.Service.Name),
			slog.String("version", cfg.Service.Version),
			slog.String("revision", cfg.Service.Revision),
		),
		slog.String("env", string(cfg.Environment)),
	})

	return &contextHandler{inner: base, cfg: cfg}
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := RequestIDFrom(ctx); id != "" {
		r.AddAttrs(slog.String("request_id", id))
	}

	module := ModuleFrom(ctx)
	if module == "" {
		module = h.cfg.DefaultModule
	}

	if module != "" {
		r.AddAttrs(slog.String("module", string(module)))
	}

	r.AddAttrs(gcpTraceAttrs(ctx, h.cfg.GCPProjectID)...)

	return h.inner.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{inner: h.inner.WithAttrs(attrs), cfg: h.cfg}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{inner: h.inner.WithGroup(name), cfg: h.cfg}
}

// replaceAttr uses the field names Cloud Logging understands.
func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}

	switch a.Key {
	case slog.LevelKey:
		a.Key = "severity"
	case slog.MessageKey:
		a.Key = "message"
	}

	return a
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
