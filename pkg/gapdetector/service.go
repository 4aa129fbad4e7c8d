package gapdetector

import (
	"math"

	"github.com/NotCoffee418/ignyte_sensor/pkg/types"
)

// DetectGaps classifies each reading of series with DefaultPolicy.
func DetectGaps(series types.OrderedSeries) []GapRecord {
	return DetectGapsWith(series, DefaultPolicy)
}

// DetectGapsWith returns one record per reading, in series order.
// The first reading never starts a gap.
func DetectGapsWith(series types.OrderedSeries, policy Policy) []GapRecord {
	policy = policy.withDefaults()

	records := make([]GapRecord, len(series))
	for i, reading := range series {
		records[i] = GapRecord{
			ReadingID: reading.ID,
			Timestamp: reading.Timestamp,
		}
		if i == 0 {
			continue
		}

		prev := series[i-1].Timestamp
		diff := reading.Timestamp.Sub(prev)
		if diff <= policy.Threshold {
			continue
		}

		diffMinutes := diff.Minutes()
		records[i].Gap = true
		records[i].GapStart = &prev
		records[i].GapMinutes = diffMinutes
		records[i].MissingCount = int(math.Floor(diffMinutes / policy.Cadence.Minutes()))
	}
	return records
}

// FilterGaps keeps only the gaps with fewer than maxMissing missing readings.
func FilterGaps(records []GapRecord, maxMissing int) []GapRecord {
	gaps := make([]GapRecord, 0)
	for _, r := range records {
		if r.Gap && r.MissingCount < maxMissing {
			gaps = append(gaps, r)
		}
	}
	return gaps
}

// withDefaults fills unset durations from DefaultPolicy and keeps
// Threshold at or above Cadence, so every gap misses at least one reading.
func (p Policy) withDefaults() Policy {
	if p.Cadence <= 0 {
		p.Cadence = DefaultPolicy.Cadence
	}
	if p.Threshold <= 0 {
		p.Threshold = DefaultPolicy.Threshold
	}
	if p.Threshold < p.Cadence {
		p.Threshold = p.Cadence
	}
	return p
}
