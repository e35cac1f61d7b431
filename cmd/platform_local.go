//go:build !gcloud

package main

import (
	"context"
	"log/slog"

	"github.com/KasumiMercury/primind-health-remind/internal/config"
	"github.com/KasumiMercury/primind-health-remind/internal/infra/pubsub"
)

func initPublisher(ctx context.Context, cfg *config.Config) (pubsub.Publisher, error) {
	if !cfg.PubSub.Enabled() {
		slog.Warn("NATS_URL not set, event publishing disabled")

		return nil, nil
	}

	publisher, err := pubsub.NewPublisher(ctx, pubsub.NATSPublisherConfig{
		URL: cfg.PubSub.NATSURL,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("NATS publisher initialized", "url", cfg.PubSub.NATSURL)

	return publisher, nil
}
