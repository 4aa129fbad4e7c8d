package rateofchange

import "time"

const (
	DefaultWindowSize  = 10
	DefaultHorizonDays = 3
)

// RateResult holds per-interval state-of-charge rates over the analysis
// window. The three slices are parallel, one entry per consecutive pair.
type RateResult struct {
	RatesOfChange   []float64   `json:"ratesOfChange"`
	SlidingAverages []float64   `json:"slidingAverages"`
	Timestamps      []time.Time `json:"timestamps"`
	Stats           Stats       `json:"stats"`
}

// Stats summarises a RateResult. Values are fixed-decimal strings:
// rates to 3 places, SOC to 1 place, voltage to 3 places.
type Stats struct {
	AvgRate      string `json:"avgRate"`
	TotalChange  string `json:"totalChange"`
	StartSOC     string `json:"startSOC"`
	EndSOC       string `json:"endSOC"`
	StartVoltage string `json:"startVoltage,omitempty"`
	EndVoltage   string `json:"endVoltage,omitempty"`
	DataPoints   int    `json:"dataPoints"`
	WindowSize   int    `json:"windowSize"`
}
