package postgres

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/alfredjeanlab/gwingest/internal/store"
)

// exportTimeFormat renders timestamp columns in the snapshot files.
const exportTimeFormat = "2006-01-02 15:04:05"

// scanResultSet reads every row into a string-rendered ResultSet. The
// export paths treat both the wide alerts table and the events view
// generically, so columns are taken from the driver rather than a
// hand-maintained list.
func scanResultSet(rows *sql.Rows) (*store.ResultSet, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	rs := &store.ResultSet{Columns: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out := make([]string, len(cols))
		for i, v := range vals {
			out[i] = formatValue(v)
		}
		rs.Rows = append(rs.Rows, out)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return rs, nil
}

// formatValue renders one database value for CSV/table output. NULL
// renders as the empty string.
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(t)
	case string:
		return t
	case time.Time:
		return t.Format(exportTimeFormat)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		if t {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(t)
	}
}
