//go:build gcloud

package pubsub

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-googlecloud/pkg/googlecloud"
)

type GCloudPublisherConfig struct {
	ProjectID string
}

// NewPublisher publishes reminder events to Google Cloud Pub/Sub. Topics are
// created on first use.
func NewPublisher(_ context.Context, cfg GCloudPublisherConfig) (*EventPublisher, error) {
	publisher, err := googlecloud.NewPublisher(
		googlecloud.PublisherConfig{
			ProjectID: cfg.ProjectID,
		},
		watermill.NewSlogLogger(slog.Default()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Cloud publisher: %w", err)
	}

	return NewEventPublisher(publisher), nil
}
