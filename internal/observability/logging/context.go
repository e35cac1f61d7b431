package logging

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type Module string

const (
	ModuleReminder  Module = "reminder"
	ModuleScheduler Module = "scheduler"
	ModuleDispatch  Module = "dispatch"
)

type Environment string

const (
	EnvLocal Environment = "local"
	EnvDev   Environment = "dev"
	EnvProd  Environment = "prod"
)

type ServiceInfo struct {
	Name     string
	Version  string
	Revision string
}

type ctxKey int

const (
	requestIDKey ctxKey = iota
	moduleKey
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)

	return id
}

func WithModule(ctx context.Context, module Module) context.Context {
	return context.WithValue(ctx, moduleKey, module)
}

func ModuleFrom(ctx context.Context) Module {
	m, _ := ctx.Value(moduleKey).(Module)

	return m
}

// ValidateAndExtractRequestID keeps a caller supplied UUID and replaces
// anything else with a fresh one.
func ValidateAndExtractRequestID(header string) string {
	header = strings.TrimSpace(header)
	if header != "" {
		if id, err := uuid.Parse(header); err == nil {
			return id.String()
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}
