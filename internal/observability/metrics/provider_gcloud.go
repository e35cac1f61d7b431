//go:build gcloud

package metrics

import (
	"context"

	mexporter "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// NewProvider exports to Cloud Monitoring unless export is disabled.
func NewProvider(_ context.Context, cfg Config) (*Provider, error) {
	if cfg.ExportDisabled {
		return newNoopProvider(cfg), nil
	}

	exporter, err := mexporter.New(mexporter.WithProjectID(cfg.ProjectID))
	if err != nil {
		return nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(newResource(cfg)),
	)

	return &Provider{mp: mp}, nil
}
