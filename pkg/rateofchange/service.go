package rateofchange

import (
	"time"

	"github.com/NotCoffee418/ignyte_sensor/pkg/types"
	"github.com/NotCoffee418/ignyte_sensor/pkg/units"
)

// Analyze computes the battery state-of-charge rate of change, in percent
// per hour, over the first horizonDays of series.
// Returns nil when fewer than two readings with a state of charge fall
// inside the horizon.
func Analyze(series types.OrderedSeries, windowSize, horizonDays int) *RateResult {
	if len(series) == 0 {
		return nil
	}
	if windowSize < 1 {
		windowSize = DefaultWindowSize
	}
	if horizonDays < 0 {
		horizonDays = DefaultHorizonDays
	}

	window := withinHorizon(series, time.Duration(horizonDays)*24*time.Hour)
	if len(window) < 2 {
		return nil
	}

	rates := make([]float64, 0, len(window)-1)
	timestamps := make([]time.Time, 0, len(window)-1)
	for i := 1; i < len(window); i++ {
		prev, curr := window[i-1], window[i]

		hours := curr.Timestamp.Sub(prev.Timestamp).Hours()
		socDiff := *curr.BattSoc - *prev.BattSoc
		rate := 0.0
		if hours > 0 {
			rate = socDiff / hours
		}

		rates = append(rates, rate)
		timestamps = append(timestamps, curr.Timestamp)
	}

	averages := SlidingAverage(rates, windowSize)

	first, last := window[0], window[len(window)-1]
	stats := Stats{
		AvgRate:     units.Rate(mean(averages)),
		TotalChange: units.Soc(*last.BattSoc - *first.BattSoc),
		StartSOC:    units.Soc(*first.BattSoc),
		EndSOC:      units.Soc(*last.BattSoc),
		DataPoints:  len(window),
		WindowSize:  windowSize,
	}
	if first.BattV != nil {
		stats.StartVoltage = units.Voltage(*first.BattV)
	}
	if last.BattV != nil {
		stats.EndVoltage = units.Voltage(*last.BattV)
	}

	return &RateResult{
		RatesOfChange:   rates,
		SlidingAverages: averages,
		Timestamps:      timestamps,
		Stats:           stats,
	}
}

// withinHorizon returns the readings no later than horizon after the first
// reading of series and that carry a state of charge.
func withinHorizon(series types.OrderedSeries, horizon time.Duration) types.OrderedSeries {
	start := series[0].Timestamp
	window := make(types.OrderedSeries, 0, len(series))
	for _, r := range series {
		if r.Timestamp.Sub(start) > horizon {
			break
		}
		if r.BattSoc == nil {
			continue
		}
		window = append(window, r)
	}
	return window
}

// SlidingAverage smooths values with a centred window of windowSize.
// Index i averages values[i-floor(w/2) : i+ceil(w/2)], clipped to the
// slice bounds, so the window shrinks near both ends.
func SlidingAverage(values []float64, windowSize int) []float64 {
	if windowSize < 1 {
		windowSize = 1
	}
	before := windowSize / 2
	after := (windowSize + 1) / 2

	out := make([]float64, len(values))
	for i := range values {
		start := max(0, i-before)
		end := min(len(values), i+after)
		out[i] = mean(values[start:end])
	}
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
