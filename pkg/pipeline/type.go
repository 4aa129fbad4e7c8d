package pipeline

import (
	"github.com/NotCoffee418/ignyte_sensor/pkg/daynight"
	"github.com/NotCoffee418/ignyte_sensor/pkg/gapdetector"
	"github.com/NotCoffee418/ignyte_sensor/pkg/rateofchange"
	"github.com/NotCoffee418/ignyte_sensor/pkg/types"
)

type Options struct {
	WindowSize  int
	HorizonDays int
	GapPolicy   gapdetector.Policy
	Hours       daynight.Hours
}

func DefaultOptions() Options {
	return Options{
		WindowSize:  rateofchange.DefaultWindowSize,
		HorizonDays: rateofchange.DefaultHorizonDays,
		GapPolicy:   gapdetector.DefaultPolicy,
		Hours:       daynight.DefaultHours(),
	}
}

// Result bundles every derived series for one snapshot.
// Rate is nil when there is not enough data for a rate of change.
type Result struct {
	Series  types.OrderedSeries      `json:"series"`
	Gaps    []gapdetector.GapRecord  `json:"gaps"`
	Rate    *rateofchange.RateResult `json:"rate"`
	Periods []daynight.Period        `json:"periods"`
	Skipped []string                 `json:"skipped,omitempty"`
}
