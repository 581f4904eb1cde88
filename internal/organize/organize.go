// Package organize sorts event directories into significance folders.
//
// The download tree groups alerts as <parent>/<event>/<alert>. Next to
// the event directories it maintains _low_significance and
// _high_significance folders holding symlinks to the events, so that
// observers can browse either slice directly.
package organize

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alfredjeanlab/gwingest/internal/alert"
)

const (
	lowDir  = "_low_significance"
	highDir = "_high_significance"
)

// Run provisions the significance folders beside the alert's event
// directory and symlinks the event into the folder matching its
// significance flag. Events without a flag are left unfiled. Existing
// links are kept, so re-running on the same alert is a no-op.
func Run(alertDir string, meta *alert.Metadata, logger *slog.Logger) error {
	alertDir = strings.TrimSuffix(alertDir, "/")
	eventDir := filepath.Dir(alertDir)
	base := filepath.Base(eventDir)
	parent := filepath.Dir(eventDir)

	low := filepath.Join(parent, lowDir)
	high := filepath.Join(parent, highDir)
	for _, d := range []string{low, high} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", d, err)
		}
	}

	sig, ok := meta.Significant()
	if !ok {
		return nil
	}

	dest := filepath.Join(low, base)
	if sig {
		dest = filepath.Join(high, base)
	}
	if _, err := os.Lstat(dest); err == nil {
		return nil
	}
	if err := os.Symlink(eventDir, dest); err != nil {
		return fmt.Errorf("symlink %s: %w", dest, err)
	}

	logger.Info("event filed", "event", base, "significant", sig, "dest", dest)
	return nil
}
