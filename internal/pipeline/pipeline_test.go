package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/alfredjeanlab/gwingest/internal/alert"
	"github.com/alfredjeanlab/gwingest/internal/config"
	"github.com/alfredjeanlab/gwingest/internal/events"
	"github.com/alfredjeanlab/gwingest/internal/flatten"
	"github.com/alfredjeanlab/gwingest/internal/store"
)

type recordingStore struct {
	upserts [][]flatten.Record
	failAll bool
}

var errStoreDown = errors.New("store down")

func (s *recordingStore) UpsertAlerts(ctx context.Context, recs []flatten.Record) error {
	if s.failAll {
		return errStoreDown
	}
	s.upserts = append(s.upserts, recs)
	return nil
}

func (s *recordingStore) QueryAlerts(ctx context.Context, f store.Filter) (*store.ResultSet, error) {
	return &store.ResultSet{}, nil
}

func (s *recordingStore) QueryEvents(ctx context.Context, f store.Filter) (*store.ResultSet, error) {
	return &store.ResultSet{}, nil
}

func (s *recordingStore) Close() error { return nil }

type recordingPublisher struct {
	published []any
}

func (p *recordingPublisher) Publish(ctx context.Context, topic string, event any) error {
	p.published = append(p.published, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func testPipeline(st store.Store, pub events.Publisher, t *testing.T) *Pipeline {
	cfg := &config.Config{}
	cfg.LVK.ParseMockEvents = true
	cfg.LVK.ParseRealEvents = true
	cfg.LVK.DownloadDir = t.TempDir() // no partition dirs: export is a no-op
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(st, cfg, logger, pub)
}

func sampleDir() *alert.Dir {
	return &alert.Dir{
		Path: "/data/lvk/superevents/S230518h/3-Update",
		Files: []string{
			"/data/lvk/superevents/S230518h/3-Update/bayestar.fits",
			"/data/lvk/superevents/S230518h/3-Update/meta.yaml",
		},
		Meta: &alert.Metadata{Alert: map[string]any{
			"superevent_id": "S230518h",
			"alert_type":    alert.TypeUpdate,
			"time_created":  "2023-05-18T13:00:00Z",
			"event": map[string]any{
				"significant": true,
				"far":         9.1e-09,
			},
		}},
	}
}

func TestIngest(t *testing.T) {
	st := &recordingStore{}
	pub := &recordingPublisher{}
	p := testPipeline(st, pub, t)

	if err := p.Ingest(context.Background(), sampleDir()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(st.upserts) != 1 || len(st.upserts[0]) != 1 {
		t.Fatalf("upserts = %v", st.upserts)
	}
	rec := st.upserts[0][0]
	if rec["superevent_id"] != "S230518h" || rec["alert_type"] != "UPDATE" {
		t.Errorf("record = %v", rec)
	}
	if rec["alert_time"] != "2023-05-18T13:00:00Z" {
		t.Errorf("alert_time = %v", rec["alert_time"])
	}
	if rec["significant"] != 1 {
		t.Errorf("significant = %v", rec["significant"])
	}
	if rec["map"] != "/data/lvk/superevents/S230518h/3-Update/bayestar.fits" {
		t.Errorf("map = %v", rec["map"])
	}

	if len(pub.published) != 1 {
		t.Fatalf("published = %v", pub.published)
	}
	note, ok := pub.published[0].(events.AlertIngested)
	if !ok || note.SupereventID != "S230518h" || note.AlertType != "UPDATE" {
		t.Errorf("notification = %+v", pub.published[0])
	}
}

func TestIngestPropagatesStoreFailure(t *testing.T) {
	st := &recordingStore{failAll: true}
	p := testPipeline(st, &recordingPublisher{}, t)

	err := p.Ingest(context.Background(), sampleDir())
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("err = %v, want wrapped store failure", err)
	}
}

func TestIngestPropagatesMalformedMetadata(t *testing.T) {
	dir := sampleDir()
	// EXTRA without the required central coordinate is malformed.
	dir.Meta.Extra = map[string]any{"area90": 10.0}

	st := &recordingStore{}
	p := testPipeline(st, &recordingPublisher{}, t)

	if err := p.Ingest(context.Background(), dir); err == nil {
		t.Fatal("expected an error for malformed metadata")
	}
	if len(st.upserts) != 0 {
		t.Errorf("nothing should be persisted, got %v", st.upserts)
	}
}
