package models

import (
	"fmt"
	"strings"
	"time"
)

// apiTimeLayouts lists the timestamp shapes the pricing backend emits.
// Python's isoformat() omits the zone, so RFC3339 alone is not enough.
var apiTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// APITime is a time.Time that accepts the backend's zone-less timestamps
type APITime struct {
	time.Time
}

// UnmarshalJSON parses any of the known layouts; null leaves the zero value
func (t *APITime) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range apiTimeLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unsupported timestamp format: %s", raw)
}

// MarshalJSON writes RFC3339, or null for the zero value
func (t APITime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(time.RFC3339) + `"`), nil
}

// DateMX formats the date the way the page shows it (dd/mm/yyyy), "-" when empty
func (t *APITime) DateMX() string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format("02/01/2006")
}

// DateTimeMX formats date and time (dd/mm/yyyy, HH:MM:SS), "-" when empty
func (t *APITime) DateTimeMX() string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format("02/01/2006, 15:04:05")
}
