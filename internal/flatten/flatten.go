// Package flatten converts the nested alert-metadata document into the
// flat record persisted in the alerts table.
//
// The flattening runs as a fixed sequence of named rules: section copy
// rules first (scalar fields only, lower-cased keys), then cleaning
// rules that rename and derive fields, then the sky-map file pick.
package flatten

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alfredjeanlab/gwingest/internal/alert"
)

// Record is one flattened alert: lower-cased column name to scalar
// value. Records are built once per ingestion and never mutated after.
type Record map[string]any

// Keys returns the record's column names in sorted order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String returns the record's string value for a column, or "".
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// headerAllowList is the fixed set of FITS header fields admitted into
// the record. Matched case-insensitively against the header key.
var headerAllowList = map[string]bool{
	"CREATOR":  true,
	"DATE-OBS": true,
	"DISTMEAN": true,
	"DISTSTD":  true,
	"LOGBCI":   true,
	"LOGBSN":   true,
	"MJD-OBS":  true,
}

// sectionRule copies the scalar fields of one metadata section into
// the record. A nil or empty source map disables the rule for that
// document.
type sectionRule struct {
	name string
	// source selects the section from the document.
	source func(m *alert.Metadata) map[string]any
	// prefix is prepended to each field name before lower-casing.
	prefix string
	// allow restricts the admitted field names; nil admits every field.
	allow map[string]bool
	// skipLists drops list-valued fields as well as nested mappings.
	skipLists bool
}

var sectionRules = []sectionRule{
	{name: "alert", source: func(m *alert.Metadata) map[string]any { return m.Alert }},
	{name: "event", source: func(m *alert.Metadata) map[string]any { return m.Event() }, skipLists: true},
	{name: "classification", source: eventSubSection("classification"), prefix: "class_"},
	{name: "properties", source: eventSubSection("properties"), prefix: "prop_"},
	{name: "extra", source: func(m *alert.Metadata) map[string]any { return m.Extra }},
	{name: "header", source: func(m *alert.Metadata) map[string]any { return m.Header }, allow: headerAllowList},
}

func eventSubSection(key string) func(m *alert.Metadata) map[string]any {
	return func(m *alert.Metadata) map[string]any {
		ev := m.Event()
		if ev == nil {
			return nil
		}
		sub, _ := ev[key].(map[string]any)
		return sub
	}
}

func (r sectionRule) apply(m *alert.Metadata, rec Record) {
	for k, v := range r.source(m) {
		if _, nested := v.(map[string]any); nested {
			continue
		}
		if r.skipLists {
			if _, list := v.([]any); list {
				continue
			}
		}
		if r.allow != nil && !r.allow[strings.ToUpper(k)] {
			continue
		}
		rec[columnName(r.prefix+k)] = v
	}
}

// columnName lower-cases a metadata field name and replaces dashes
// with underscores: FITS header keywords such as DATE-OBS and MJD-OBS
// land in the date_obs and mjd_obs columns.
func columnName(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "-", "_")
}

// splitCentralCoordinate stores the two tokens of the EXTRA section's
// "central coordinate.equatorial" string as ra_centre and dec_centre.
// The field is required whenever EXTRA is present; its absence is
// malformed metadata and aborts the ingestion.
func splitCentralCoordinate(m *alert.Metadata, rec Record) error {
	if len(m.Extra) == 0 {
		return nil
	}
	cc, ok := m.Extra["central coordinate"].(map[string]any)
	if !ok {
		return fmt.Errorf("EXTRA section has no central coordinate")
	}
	eq, ok := cc["equatorial"].(string)
	if !ok {
		return fmt.Errorf("central coordinate has no equatorial string")
	}
	tokens := strings.Fields(eq)
	if len(tokens) < 2 {
		return fmt.Errorf("malformed equatorial coordinate %q", eq)
	}
	rec["ra_centre"] = tokens[0]
	rec["dec_centre"] = tokens[1]
	return nil
}

// cleanRule is one post-processing step over the assembled record.
type cleanRule struct {
	name  string
	apply func(rec Record) error
}

var cleanRules = []cleanRule{
	{name: "far", apply: renameFAR},
	{name: "alert_time", apply: deriveAlertTime},
	{name: "significant", apply: coerceSignificant},
}

const secondsPerDay = 86400

// renameFAR renames the false-alarm-rate frequency to far_hz and adds
// far_years, the mean recurrence period rounded to two decimals.
func renameFAR(rec Record) error {
	v, ok := rec["far"]
	if !ok {
		return nil
	}
	delete(rec, "far")
	rec["far_hz"] = v

	hz, ok := toFloat(v)
	if !ok {
		return fmt.Errorf("far value %v is not numeric", v)
	}
	if hz == 0 {
		return fmt.Errorf("far value is zero")
	}
	rec["far_years"] = roundYears(1 / (hz * secondsPerDay))
	return nil
}

// roundYears rounds the recurrence period to two decimals, ties to
// even.
func roundYears(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	return r
}

// Timestamp layouts of the two source fields: time_created carries
// whole seconds, the event time carries microseconds.
const (
	alertTimeLayout = "2006-01-02T15:04:05Z"
	eventTimeLayout = "2006-01-02T15:04:05.999999Z"
)

// deriveAlertTime renames time_created to alert_time and, when an
// event time field is also present, stores their absolute difference
// in whole seconds as alert_delta_sec. A pair that fails to parse
// simply omits the delta; the time field is removed either way.
func deriveAlertTime(rec Record) error {
	v, ok := rec["time_created"]
	if !ok {
		return nil
	}
	delete(rec, "time_created")
	rec["alert_time"] = v

	tv, ok := rec["time"]
	if !ok {
		return nil
	}
	delete(rec, "time")

	created, okC := v.(string)
	event, okE := tv.(string)
	if !okC || !okE {
		return nil
	}
	ct, err := time.Parse(alertTimeLayout, created)
	if err != nil {
		return nil
	}
	et, err := time.Parse(eventTimeLayout, event)
	if err != nil {
		return nil
	}
	rec["alert_delta_sec"] = int(math.Abs(ct.Sub(et).Seconds()))
	return nil
}

// coerceSignificant normalizes the significance flag to 0/1.
func coerceSignificant(rec Record) error {
	v, ok := rec["significant"]
	if !ok {
		return nil
	}
	if alert.Truthy(v) {
		rec["significant"] = 1
	} else {
		rec["significant"] = 0
	}
	return nil
}

// pickMapFile sets the map column to the path of the alert's .fits sky
// map. When several .fits files are present the last one wins, which
// mirrors the upstream behaviour; one map file per alert is expected.
func pickMapFile(files []string, rec Record) {
	for _, f := range files {
		if filepath.Ext(f) == ".fits" {
			rec["map"] = f
		}
	}
}

// Flatten produces the flat alert record for one metadata document and
// the list of files generated for the alert. The output contains no
// nested structures; every value is scalar.
func Flatten(m *alert.Metadata, files []string) (Record, error) {
	rec := Record{}
	for _, r := range sectionRules {
		r.apply(m, rec)
	}
	if err := splitCentralCoordinate(m, rec); err != nil {
		return nil, err
	}
	for _, c := range cleanRules {
		if err := c.apply(rec); err != nil {
			return nil, fmt.Errorf("%s: %w", c.name, err)
		}
	}
	pickMapFile(files, rec)
	return rec, nil
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
