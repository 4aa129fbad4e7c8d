// Ignyte runs the analysis pipeline once over an exported snapshot, or
// follows a running analysis API and prints a summary of every result.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/NotCoffee418/ignyte_sensor/pkg/analysisapi"
	"github.com/NotCoffee418/ignyte_sensor/pkg/daynight"
	"github.com/NotCoffee418/ignyte_sensor/pkg/feed"
	"github.com/NotCoffee418/ignyte_sensor/pkg/gapdetector"
	"github.com/NotCoffee418/ignyte_sensor/pkg/pipeline"
	"github.com/NotCoffee418/ignyte_sensor/pkg/source"
	log "github.com/sirupsen/logrus"
)

func main() {
	var (
		file       = flag.String("file", "", "Analyse a JSON export and print the result")
		device     = flag.String("device", "esp32_01", "Device to select from a full export")
		watch      = flag.String("watch", "", "Follow an analysis API at host:port")
		window     = flag.Int("window", 0, "Sliding average window, 0 for the default")
		horizon    = flag.Int("horizon", -1, "Rate of change horizon in days, -1 for the default")
		maxMissing = flag.Int("max-missing", gapdetector.DefaultMaxMissing, "Hide gaps with this many missing records or more")
		utc        = flag.Bool("utc", false, "Classify day and night in UTC instead of local time")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch {
	case *file != "":
		opts := pipeline.DefaultOptions()
		opts.WindowSize = *window
		opts.HorizonDays = *horizon
		if *utc {
			opts.Hours = daynight.Hours{DayStart: 9, NightStart: 20, Location: time.UTC}
		}

		raw, err := source.NewFileLoader(*file, *device).Load(ctx)
		if err != nil {
			log.Fatalf("Failed to load %s: %v", *file, err)
		}
		fmt.Println(string(pipeline.Run(raw, opts).ToJsonBytes()))
	case *watch != "":
		feed.StartListener(ctx, *watch, func(envelope *analysisapi.Envelope) {
			printSummary(envelope, *maxMissing)
		})
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func printSummary(envelope *analysisapi.Envelope, maxMissing int) {
	result := envelope.Result
	fields := log.Fields{
		"snapshot": envelope.SnapshotID,
		"readings": len(result.Series),
		"gaps":     len(gapdetector.FilterGaps(result.Gaps, maxMissing)),
		"periods":  len(result.Periods),
	}
	if result.Rate != nil {
		fields["avgRate"] = result.Rate.Stats.AvgRate
		fields["soc"] = result.Rate.Stats.EndSOC
	}
	log.WithFields(fields).Info("Analysis received")
}
