package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/alfredjeanlab/gwingest/internal/flatten"
	"github.com/alfredjeanlab/gwingest/internal/store"
)

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// psql builds statements with Postgres-style placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// conflictColumns is the natural key of the alerts table. A later
// ingestion of the same key replaces the existing row.
var conflictColumns = []string{"superevent_id", "alert_time", "alert_type"}

func isConflictColumn(col string) bool {
	for _, c := range conflictColumns {
		if c == col {
			return true
		}
	}
	return false
}

// quoteIdent quotes a column identifier; the schema has reserved
// ("group") and mixed-case ("dateAdded") column names.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// queryUpsertAlerts inserts a batch of flattened records into the
// alerts table, replacing existing rows on natural-key conflict. The
// statement is built over the union of the batch's columns; fields a
// record lacks insert as NULL.
func queryUpsertAlerts(ctx context.Context, db executor, recs []flatten.Record) error {
	if len(recs) == 0 {
		return nil
	}

	colSet := make(map[string]bool)
	for _, rec := range recs {
		for k := range rec {
			colSet[k] = true
		}
	}
	cols := make([]string, 0, len(colSet))
	for k := range colSet {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
	}

	b := psql.Insert(store.AlertsTable).Columns(quoted...)
	for _, rec := range recs {
		vals := make([]any, len(cols))
		for i, c := range cols {
			vals[i] = rec[c]
		}
		b = b.Values(vals...)
	}

	var updates []string
	for _, c := range cols {
		if isConflictColumn(c) {
			continue
		}
		q := quoteIdent(c)
		updates = append(updates, q+" = EXCLUDED."+q)
	}
	conflict := "ON CONFLICT (" + strings.Join(conflictColumns, ", ") + ")"
	if len(updates) > 0 {
		b = b.Suffix(conflict + " DO UPDATE SET " + strings.Join(updates, ", "))
	} else {
		b = b.Suffix(conflict + " DO NOTHING")
	}

	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert alerts: %w", err)
	}
	return nil
}

func applyFilter(b sq.SelectBuilder, f store.Filter) sq.SelectBuilder {
	if f.IDPrefix != "" {
		b = b.Where(sq.Like{"superevent_id": f.IDPrefix + "%"})
	}
	if f.Significant != nil {
		v := 0
		if *f.Significant {
			v = 1
		}
		b = b.Where(sq.Eq{"significant": v})
	}
	return b
}

func queryAlertRows(ctx context.Context, db executor, f store.Filter) (*store.ResultSet, error) {
	b := applyFilter(psql.Select("*").From(store.AlertsTable), f).
		OrderBy("alert_time DESC")
	rs, err := runSelect(ctx, db, b)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	return rs, nil
}

func queryEventRows(ctx context.Context, db executor, f store.Filter) (*store.ResultSet, error) {
	b := applyFilter(psql.Select("*").From(store.EventsView), f)
	rs, err := runSelect(ctx, db, b)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	return rs, nil
}

func runSelect(ctx context.Context, db executor, b sq.SelectBuilder) (*store.ResultSet, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanResultSet(rows)
}
