// Reading collector stores the readings published by the sensor board,
// either over its USB serial console or over MQTT.
package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/NotCoffee418/ignyte_sensor/pkg/config"
	"github.com/NotCoffee418/ignyte_sensor/pkg/mqttsource"
	"github.com/NotCoffee418/ignyte_sensor/pkg/pathing"
	"github.com/NotCoffee418/ignyte_sensor/pkg/pushid"
	"github.com/NotCoffee418/ignyte_sensor/pkg/readingdb"
	"github.com/NotCoffee418/ignyte_sensor/pkg/serialreader"
	"github.com/NotCoffee418/ignyte_sensor/pkg/types"
	log "github.com/sirupsen/logrus"
)

var (
	store *readingdb.Store
	ids   = pushid.NewGenerator()
)

func main() {
	if err := pathing.EnsureDirs(); err != nil {
		log.Fatalf("Failed to create directories: %v", err)
	}

	// Load config
	if err := config.LoadReadingCollectorConfig(); err != nil {
		log.Fatalf("Failed to load reading collector config: %v", err)
	}
	cfg := config.ActiveReadingCollectorConfig

	// Initialize database
	if err := readingdb.InitializeDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	var err error
	if store, err = readingdb.DefaultStore(); err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.RetentionDays > 0 {
		go pruneLoop(ctx, time.Duration(cfg.RetentionDays)*24*time.Hour)
	}

	switch cfg.Transport {
	case "mqtt":
		sub, err := mqttsource.Subscribe(mqttsource.Options{
			Broker:   cfg.MQTTBroker,
			Topic:    cfg.MQTTTopic,
			ClientID: cfg.MQTTClientID,
		}, handleReading)
		if err != nil {
			log.Fatalf("Failed to subscribe: %v", err)
		}
		defer sub.Close()
	default:
		reader := serialreader.NewReader(cfg.SerialDevice, cfg.Baudrate)
		reader.StartReading(handleReading, func(err error) {
			if err != nil {
				log.Fatalf("Error reading serial port: %v", err)
			}
		})
		defer reader.StopReading()
	}

	log.Printf("Collecting readings over %s", cfg.Transport)
	<-ctx.Done()
	log.Println("Interrupt received, shutting down...")
}

// Store each reading under a fresh push id, the same key the board uses
// when it uploads directly.
func handleReading(reading *types.RawReading) {
	id := ids.New()
	if err := store.InsertReading(id, *reading); err != nil {
		log.WithFields(log.Fields{"id": id}).Errorf("Failed to store reading: %v", err)
		return
	}
	log.WithFields(log.Fields{"id": id}).Debug("Stored reading")
}

func pruneLoop(ctx context.Context, retention time.Duration) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		if _, err := store.PruneOlderThan(time.Now().Add(-retention)); err != nil {
			log.Printf("Failed to prune readings: %v", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
