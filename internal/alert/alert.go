// Package alert models one LVK superevent alert as delivered on disk:
// a directory of generated files plus a meta.yaml metadata document.
package alert

// Alert type values carried in the ALERT section. A superevent may
// receive several of these over its lifetime; RETRACTION withdraws it.
const (
	TypeEarlyWarning = "EARLYWARNING"
	TypePreliminary  = "PRELIMINARY"
	TypeInitial      = "INITIAL"
	TypeUpdate       = "UPDATE"
	TypeRetraction   = "RETRACTION"
)

// Metadata is the nested alert-metadata document. The upstream feed
// adds and drops fields between alert revisions, so the sections stay
// schema-less maps and are interpreted field by field by the flattener.
type Metadata struct {
	Alert  map[string]any `yaml:"ALERT"`
	Extra  map[string]any `yaml:"EXTRA"`
	Header map[string]any `yaml:"HEADER"`
}

// Event returns the ALERT.event sub-mapping, or nil when the alert
// carries no event section (retractions usually don't).
func (m *Metadata) Event() map[string]any {
	ev, _ := m.Alert["event"].(map[string]any)
	return ev
}

// Significant reports the ALERT.event.significant flag. ok is false
// when the event section or the flag itself is missing.
func (m *Metadata) Significant() (sig, ok bool) {
	ev := m.Event()
	if ev == nil {
		return false, false
	}
	v, present := ev["significant"]
	if !present {
		return false, false
	}
	return Truthy(v), true
}

// Truthy interprets a schema-less metadata value: false, zero, empty
// and nil are falsey, everything else is truthy.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}
