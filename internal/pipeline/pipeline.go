// Package pipeline orchestrates one alert ingestion: flatten the
// metadata document, upsert the record, refresh the export snapshots.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alfredjeanlab/gwingest/internal/alert"
	"github.com/alfredjeanlab/gwingest/internal/config"
	"github.com/alfredjeanlab/gwingest/internal/events"
	"github.com/alfredjeanlab/gwingest/internal/export"
	"github.com/alfredjeanlab/gwingest/internal/flatten"
	"github.com/alfredjeanlab/gwingest/internal/store"
)

// Pipeline bundles the collaborators for one ingestion invocation. It
// is constructed per invocation and passed explicitly; no component
// reaches for global state.
type Pipeline struct {
	store     store.Store
	cfg       *config.Config
	logger    *slog.Logger
	publisher events.Publisher
}

func New(s store.Store, cfg *config.Config, logger *slog.Logger, pub events.Publisher) *Pipeline {
	return &Pipeline{store: s, cfg: cfg, logger: logger, publisher: pub}
}

// Ingest processes one alert directory end to end. The pipeline does
// no retrying: any unrecovered failure aborts this invocation, and the
// idempotent upsert makes re-invoking on the same directory safe.
func (p *Pipeline) Ingest(ctx context.Context, dir *alert.Dir) error {
	rec, err := flatten.Flatten(dir.Meta, dir.Files)
	if err != nil {
		return fmt.Errorf("flatten %s: %w", dir.Path, err)
	}

	if err := p.store.UpsertAlerts(ctx, []flatten.Record{rec}); err != nil {
		return fmt.Errorf("upsert alert: %w", err)
	}
	p.logger.Info("alert ingested",
		"superevent_id", rec.String("superevent_id"),
		"alert_type", rec.String("alert_type"),
		"alert_time", rec.String("alert_time"))

	// Ingest notifications are best effort; a dead broker must not
	// fail an alert that is already persisted.
	if err := p.publisher.Publish(ctx, events.TopicAlertIngested, events.AlertIngested{
		SupereventID: rec.String("superevent_id"),
		AlertType:    rec.String("alert_type"),
		AlertTime:    rec.String("alert_time"),
		Record:       rec,
	}); err != nil {
		p.logger.Error("publish ingest notification failed", "err", err)
	}

	return export.New(p.store, p.cfg, p.logger).Run(ctx)
}
