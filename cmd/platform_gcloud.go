//go:build gcloud

package main

import (
	"context"
	"log/slog"

	"github.com/KasumiMercury/primind-health-remind/internal/config"
	"github.com/KasumiMercury/primind-health-remind/internal/infra/pubsub"
)

func initPublisher(ctx context.Context, cfg *config.Config) (pubsub.Publisher, error) {
	publisher, err := pubsub.NewPublisher(ctx, pubsub.GCloudPublisherConfig{
		ProjectID: cfg.PubSub.GCloudProjectID,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Google Cloud Pub/Sub publisher initialized",
		"project_id", cfg.PubSub.GCloudProjectID,
	)

	return publisher, nil
}
