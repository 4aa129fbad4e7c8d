package daynight

import "time"

// Hours bounds daytime to DayStart <= hour < NightStart in Location.
// The zero Hours behaves as DefaultHours.
type Hours struct {
	DayStart   int
	NightStart int
	Location   *time.Location
}

// DefaultHours matches the dashboard shading: 09:00 to 20:00 local time.
func DefaultHours() Hours {
	return Hours{
		DayStart:   9,
		NightStart: 20,
		Location:   time.Local,
	}
}

// Period is a maximal run of readings sharing a classification.
// StartIndex and EndIndex are inclusive indices into the series.
type Period struct {
	IsDaytime  bool `json:"isDaytime"`
	StartIndex int  `json:"startIndex"`
	EndIndex   int  `json:"endIndex"`
}
