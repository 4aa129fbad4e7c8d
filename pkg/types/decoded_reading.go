package types

import "time"

// DecodedReading is a RawReading decorated with its id and the instant
// decoded from that id. Embedded fields flatten into the JSON output.
type DecodedReading struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	RawReading
}

// OrderedSeries is sorted ascending by Timestamp, ties in input order.
// It is shared read-only by every analysis step.
type OrderedSeries []DecodedReading

// Timestamps returns the instants of the series in order.
func (s OrderedSeries) Timestamps() []time.Time {
	out := make([]time.Time, len(s))
	for i, r := range s {
		out[i] = r.Timestamp
	}
	return out
}
