// Package store defines the persistence interface for flattened alert
// records and the export queries over them.
package store

import (
	"context"

	"github.com/alfredjeanlab/gwingest/internal/flatten"
)

// AlertsTable is the destination table for flattened alert records.
const AlertsTable = "alerts"

// EventsView is the derived latest-state-per-superevent view. The
// database recomputes it on every query; it is never written directly.
const EventsView = "events"

// Filter narrows the export queries.
type Filter struct {
	// IDPrefix keeps rows whose superevent_id starts with the prefix:
	// "M" for mock events, "S" for real superevents.
	IDPrefix string
	// Significant filters on the significance flag; nil keeps all rows.
	Significant *bool
}

// ResultSet is a column-ordered query result rendered to strings,
// ready for the CSV and table exporters.
type ResultSet struct {
	Columns []string
	Rows    [][]string
}

// Store persists alert records and serves the export queries.
type Store interface {
	// UpsertAlerts writes the records to the alerts table, replacing
	// any existing row with the same (superevent_id, alert_time,
	// alert_type) key. The bookkeeping timestamps are managed by the
	// database, never by the caller.
	UpsertAlerts(ctx context.Context, recs []flatten.Record) error

	// QueryAlerts returns the filtered alerts table, newest alert first.
	QueryAlerts(ctx context.Context, f Filter) (*ResultSet, error)

	// QueryEvents returns the filtered events view in its natural order.
	QueryEvents(ctx context.Context, f Filter) (*ResultSet, error)

	Close() error
}
