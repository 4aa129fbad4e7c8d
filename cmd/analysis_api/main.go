// Analysis API loads sensor snapshots, runs the analysis pipeline and
// publishes the results.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/NotCoffee418/ignyte_sensor/pkg/analysisapi"
	"github.com/NotCoffee418/ignyte_sensor/pkg/config"
	"github.com/NotCoffee418/ignyte_sensor/pkg/metrics"
	"github.com/NotCoffee418/ignyte_sensor/pkg/pathing"
	"github.com/NotCoffee418/ignyte_sensor/pkg/readingdb"
	"github.com/NotCoffee418/ignyte_sensor/pkg/source"
	"github.com/gorilla/handlers"
	log "github.com/sirupsen/logrus"
)

func main() {
	if err := pathing.EnsureDirs(); err != nil {
		log.Fatalf("Failed to create directories: %v", err)
	}

	// Load config
	if err := config.LoadAnalysisAPIConfig(); err != nil {
		log.Fatalf("Failed to load analysis API config: %v", err)
	}
	cfg := config.ActiveAnalysisAPIConfig

	loader, err := newLoader(cfg)
	if err != nil {
		log.Fatalf("Failed to set up %s source: %v", cfg.Source, err)
	}

	server := analysisapi.NewServer(
		loader,
		cfg.PipelineOptions(),
		cfg.MaxMissingRecords,
		metrics.NewMetrics(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go server.Run(ctx, cfg.RefreshInterval())

	listener := fmt.Sprintf("%s:%d", cfg.ListenAddress, cfg.ListenPort)
	httpServer := &http.Server{
		Addr:    listener,
		Handler: handlers.LoggingHandler(os.Stdout, server.Router()),
	}
	go func() {
		<-ctx.Done()
		httpServer.Close()
	}()

	log.Printf("Starting Ignyte Sensor Analysis API on %s (source: %s)", listener, cfg.Source)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

func newLoader(cfg *config.AnalysisAPIConfig) (source.Loader, error) {
	switch cfg.Source {
	case "file":
		return source.NewFileLoader(cfg.ExportFile, cfg.Device), nil
	case "firebase":
		return source.NewFirebaseLoader(cfg.FirebaseURL, cfg.Device, cfg.FirebaseAuth), nil
	default:
		if err := readingdb.InitializeDatabase(); err != nil {
			return nil, err
		}
		return readingdb.DefaultStore()
	}
}
