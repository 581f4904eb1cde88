package organize

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/alfredjeanlab/gwingest/internal/alert"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// eventTree builds parent/<event>/<alertDir> and returns both paths.
func eventTree(t *testing.T, event, alertName string) (eventDir, alertDir string) {
	t.Helper()
	parent := t.TempDir()
	eventDir = filepath.Join(parent, event)
	alertDir = filepath.Join(eventDir, alertName)
	if err := os.MkdirAll(alertDir, 0o755); err != nil {
		t.Fatal(err)
	}
	return eventDir, alertDir
}

func metaWithSignificant(v any) *alert.Metadata {
	return &alert.Metadata{Alert: map[string]any{
		"event": map[string]any{"significant": v},
	}}
}

func TestRunFilesSignificantEvent(t *testing.T) {
	eventDir, alertDir := eventTree(t, "S230518h", "3-Update")
	parent := filepath.Dir(eventDir)

	if err := Run(alertDir, metaWithSignificant(true), testLogger()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Both folders are provisioned regardless of the flag.
	for _, d := range []string{lowDir, highDir} {
		if info, err := os.Stat(filepath.Join(parent, d)); err != nil || !info.IsDir() {
			t.Errorf("missing folder %s: %v", d, err)
		}
	}

	link := filepath.Join(parent, highDir, "S230518h")
	target, err := os.Readlink(link)
	if err != nil {
		t.Fatalf("readlink: %v", err)
	}
	if target != eventDir {
		t.Errorf("link target = %q, want %q", target, eventDir)
	}
	if _, err := os.Lstat(filepath.Join(parent, lowDir, "S230518h")); !os.IsNotExist(err) {
		t.Error("event must not be linked into the low-significance folder")
	}
}

func TestRunFilesLowSignificanceEvent(t *testing.T) {
	eventDir, alertDir := eventTree(t, "MS230511a", "1-Preliminary")
	parent := filepath.Dir(eventDir)

	// Trailing slash on the alert dir must not confuse path splitting.
	if err := Run(alertDir+"/", metaWithSignificant(false), testLogger()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Readlink(filepath.Join(parent, lowDir, "MS230511a")); err != nil {
		t.Fatalf("expected low-significance link: %v", err)
	}
}

func TestRunIdempotent(t *testing.T) {
	_, alertDir := eventTree(t, "S230518h", "3-Update")
	meta := metaWithSignificant(true)

	if err := Run(alertDir, meta, testLogger()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := Run(alertDir, meta, testLogger()); err != nil {
		t.Fatalf("second run: %v", err)
	}
}

func TestRunWithoutSignificanceFlag(t *testing.T) {
	eventDir, alertDir := eventTree(t, "S230518h", "4-Retraction")
	parent := filepath.Dir(eventDir)

	meta := &alert.Metadata{Alert: map[string]any{"alert_type": alert.TypeRetraction}}
	if err := Run(alertDir, meta, testLogger()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Folders are created but nothing is filed.
	for _, d := range []string{lowDir, highDir} {
		entries, err := os.ReadDir(filepath.Join(parent, d))
		if err != nil {
			t.Fatalf("read %s: %v", d, err)
		}
		if len(entries) != 0 {
			t.Errorf("%s should be empty, has %v", d, entries)
		}
	}
}
