// Package events emits notifications about ingested alerts so that
// downstream tooling (exposure matching, coverage plotting) can react
// without polling the database.
package events

import (
	"context"

	"github.com/alfredjeanlab/gwingest/internal/flatten"
)

// TopicAlertIngested is published after a flattened alert record has
// been upserted into the alerts table.
const TopicAlertIngested = "gwingest.alert.ingested"

// AlertIngested carries the natural key of the stored row plus the
// full flattened record.
type AlertIngested struct {
	SupereventID string         `json:"superevent_id"`
	AlertType    string         `json:"alert_type"`
	AlertTime    string         `json:"alert_time"`
	Record       flatten.Record `json:"record"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
