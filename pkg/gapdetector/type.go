package gapdetector

import "time"

// Policy describes the expected sampling cadence.
// A pair further apart than Threshold is a gap. Zero fields take the
// DefaultPolicy value and a Threshold below Cadence is raised to Cadence.
type Policy struct {
	Cadence   time.Duration
	Threshold time.Duration
}

// DefaultPolicy is the ESP32 firmware cadence of one reading every 5
// minutes, with one minute of slack.
var DefaultPolicy = Policy{
	Cadence:   5 * time.Minute,
	Threshold: 6 * time.Minute,
}

// DefaultMaxMissing drops gaps caused by sensor restarts from display.
const DefaultMaxMissing = 500

// GapRecord classifies one reading against its predecessor.
type GapRecord struct {
	ReadingID    string     `json:"readingId"`
	Timestamp    time.Time  `json:"timestamp"`
	Gap          bool       `json:"gap"`
	GapStart     *time.Time `json:"gapStart,omitempty"`
	GapMinutes   float64    `json:"gapMinutes,omitempty"`
	MissingCount int        `json:"missingCount,omitempty"`
}
