// Package history stores recorded readings and answers time-range queries.
// The real store is PostgreSQL through gorm; MemoryStore serves tests.
package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/sweeney/lambda-display/internal/display"
)

// Kind selects the reading series.
type Kind string

const (
	KindLambda Kind = "lambda"
	KindTemp   Kind = "temp"
)

// MinRecordedTemp is the lowest temperature worth storing. Colder readings
// come from a sensor that is not installed or an engine that is not running.
const MinRecordedTemp = 100.0

// DefaultRetention is how long readings are kept.
const DefaultRetention = 30 * 24 * time.Hour

// Reading is one stored sensor value. Sensors are numbered from 0.
type Reading struct {
	ID         uint      `json:"-" gorm:"primaryKey"`
	Kind       Kind      `json:"-" gorm:"size:16;index:idx_readings_kind_time,priority:1"`
	SensorID   int       `json:"sensor_id"`
	RecordedAt time.Time `json:"timestamp" gorm:"index:idx_readings_kind_time,priority:2"`
	Value      float64   `json:"value"`
}

// Store persists readings.
type Store interface {
	Insert(readings []Reading) error
	Reader
	// DeleteBefore removes readings older than t and returns how many.
	DeleteBefore(t time.Time) (int64, error)
	Close() error
}

// Reader answers range queries.
type Reader interface {
	// Between returns readings of kind with start <= timestamp <= end,
	// oldest first.
	Between(kind Kind, start, end time.Time) ([]Reading, error)
}

// FromSnapshot returns the readings to store for one update. Temperatures
// above MinRecordedTemp are always kept; lambda values only while recording.
func FromSnapshot(at time.Time, s display.Snapshot, recording bool) []Reading {
	at = at.UTC()
	var out []Reading
	for i, t := range []*float64{s.Temp1, s.Temp2} {
		if t != nil && *t > MinRecordedTemp {
			out = append(out, Reading{Kind: KindTemp, SensorID: i, RecordedAt: at, Value: *t})
		}
	}
	if recording {
		out = append(out,
			Reading{Kind: KindLambda, SensorID: 0, RecordedAt: at, Value: s.Lambda1},
			Reading{Kind: KindLambda, SensorID: 1, RecordedAt: at, Value: s.Lambda2},
		)
	}
	return out
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime accepts ISO 8601 timestamps with or without a zone. Times
// without a zone are taken as UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q", s)
}
