// Package export writes CSV and aligned-table snapshots of the alerts
// table and the events view under the alert download tree.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alfredjeanlab/gwingest/internal/config"
	"github.com/alfredjeanlab/gwingest/internal/store"
)

// stampFormat is the timestamp in the "# Exported ..." comment line.
const stampFormat = "2006-01-02 15:04:05"

// eventClass is one of the two event families the LVK feed carries.
type eventClass struct {
	name    string
	dir     string
	prefix  string
	enabled func(c *config.Config) bool
}

var classes = []eventClass{
	{
		name:    "mock",
		dir:     "mockevents",
		prefix:  "M",
		enabled: func(c *config.Config) bool { return c.LVK.ParseMockEvents },
	},
	{
		name:    "real",
		dir:     "superevents",
		prefix:  "S",
		enabled: func(c *config.Config) bool { return c.LVK.ParseRealEvents },
	},
}

// sigPartition is one significance slice of an event class. The "all"
// partition exports at the class root; the others into subfolders the
// organizer provisions.
type sigPartition struct {
	name        string
	subdir      string
	significant *bool
}

var sigPartitions = []sigPartition{
	{name: "all"},
	{name: "low", subdir: "_low_significance", significant: boolPtr(false)},
	{name: "high", subdir: "_high_significance", significant: boolPtr(true)},
}

func boolPtr(b bool) *bool { return &b }

// Exporter regenerates the snapshot files for every enabled partition.
type Exporter struct {
	store  store.Store
	cfg    *config.Config
	logger *slog.Logger

	now func() time.Time // stubbed in tests
}

func New(s store.Store, cfg *config.Config, logger *slog.Logger) *Exporter {
	return &Exporter{store: s, cfg: cfg, logger: logger, now: time.Now}
}

// Run refreshes every enabled (class, significance) partition whose
// directory exists. Partitions without a directory are skipped, not
// created: provisioning the folder tree is the organizer's job. Files
// are overwritten wholesale on each run.
func (e *Exporter) Run(ctx context.Context) error {
	stamp := e.now().Format(stampFormat)

	for _, cl := range classes {
		if !cl.enabled(e.cfg) {
			continue
		}
		for _, sig := range sigPartitions {
			dir := filepath.Join(e.cfg.LVK.DownloadDir, cl.dir)
			if sig.subdir != "" {
				dir = filepath.Join(dir, sig.subdir)
			}
			if _, err := os.Stat(dir); err != nil {
				continue
			}

			filter := store.Filter{IDPrefix: cl.prefix, Significant: sig.significant}
			if err := e.exportPartition(ctx, dir, filter, stamp); err != nil {
				return fmt.Errorf("export %s/%s: %w", cl.name, sig.name, err)
			}
			e.logger.Info("partition exported",
				"class", cl.name, "significance", sig.name, "dir", dir)
		}
	}
	return nil
}

func (e *Exporter) exportPartition(ctx context.Context, dir string, f store.Filter, stamp string) error {
	events, err := e.store.QueryEvents(ctx, f)
	if err != nil {
		return err
	}
	if err := writeSnapshot(filepath.Join(dir, "events"), events, stamp); err != nil {
		return err
	}

	alerts, err := e.store.QueryAlerts(ctx, f)
	if err != nil {
		return err
	}
	return writeSnapshot(filepath.Join(dir, "alerts"), alerts, stamp)
}

// writeSnapshot overwrites <base>.csv and <base>.txt, each prefixed
// with the export timestamp comment line.
func writeSnapshot(base string, rs *store.ResultSet, stamp string) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# Exported %s\n", stamp)
	if err := renderCSV(&buf, rs); err != nil {
		return fmt.Errorf("render csv: %w", err)
	}
	if err := os.WriteFile(base+".csv", buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s.csv: %w", base, err)
	}

	buf.Reset()
	fmt.Fprintf(&buf, "# Exported %s\n", stamp)
	if err := renderTable(&buf, rs); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	if err := os.WriteFile(base+".txt", buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s.txt: %w", base, err)
	}
	return nil
}

func renderCSV(w io.Writer, rs *store.ResultSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(rs.Columns); err != nil {
		return err
	}
	for _, row := range rs.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func renderTable(w io.Writer, rs *store.ResultSet) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(rs.Columns, "\t"))
	for _, row := range rs.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
