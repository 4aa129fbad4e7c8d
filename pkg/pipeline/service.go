// Pipeline runs the full analysis over one raw snapshot.
// It keeps no state between calls and is safe for concurrent use.
package pipeline

import (
	"encoding/json"

	"github.com/NotCoffee418/ignyte_sensor/pkg/daynight"
	"github.com/NotCoffee418/ignyte_sensor/pkg/gapdetector"
	"github.com/NotCoffee418/ignyte_sensor/pkg/normalizer"
	"github.com/NotCoffee418/ignyte_sensor/pkg/rateofchange"
	"github.com/NotCoffee418/ignyte_sensor/pkg/types"
)

// Run normalizes raw and fans the ordered series out to every analysis.
// The zero Options runs with DefaultOptions.
func Run(raw types.RawSnapshot, opts Options) Result {
	if opts == (Options{}) {
		opts = DefaultOptions()
	}
	series, skipped := normalizer.NormalizeWithSkipped(raw)

	return Result{
		Series:  series,
		Gaps:    gapdetector.DetectGapsWith(series, opts.GapPolicy),
		Rate:    rateofchange.Analyze(series, opts.WindowSize, opts.HorizonDays),
		Periods: daynight.SegmentWith(series, opts.Hours),
		Skipped: skipped,
	}
}

func (r Result) ToJsonBytes() []byte {
	b, err := json.Marshal(r)
	if err != nil {
		return nil
	}
	return b
}
