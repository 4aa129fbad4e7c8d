package daynight

import (
	"time"

	"github.com/NotCoffee418/ignyte_sensor/pkg/types"
)

// Segment splits series into day and night runs using DefaultHours.
func Segment(series types.OrderedSeries) []Period {
	return SegmentWith(series, DefaultHours())
}

// SegmentWith run-length encodes series into alternating day and night
// periods. The periods cover every index exactly once.
func SegmentWith(series types.OrderedSeries, hours Hours) []Period {
	return SegmentTimes(series.Timestamps(), hours)
}

// SegmentTimes is SegmentWith over bare instants.
func SegmentTimes(times []time.Time, hours Hours) []Period {
	hours = hours.withDefaults()
	periods := make([]Period, 0)
	if len(times) == 0 {
		return periods
	}

	current := Period{IsDaytime: hours.IsDaytime(times[0])}
	for i := 1; i < len(times); i++ {
		isDaytime := hours.IsDaytime(times[i])
		if isDaytime == current.IsDaytime {
			continue
		}
		current.EndIndex = i - 1
		periods = append(periods, current)
		current = Period{IsDaytime: isDaytime, StartIndex: i}
	}
	current.EndIndex = len(times) - 1
	return append(periods, current)
}

// IsDaytime classifies t by its hour of day in h.Location.
func (h Hours) IsDaytime(t time.Time) bool {
	h = h.withDefaults()
	loc := h.Location
	if loc == nil {
		loc = time.Local
	}
	hour := t.In(loc).Hour()
	return hour >= h.DayStart && hour < h.NightStart
}

// The zero Hours means DefaultHours.
func (h Hours) withDefaults() Hours {
	if h == (Hours{}) {
		return DefaultHours()
	}
	return h
}
