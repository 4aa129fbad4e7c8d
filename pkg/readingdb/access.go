package readingdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/NotCoffee418/ignyte_sensor/pkg/pushid"
	"github.com/NotCoffee418/ignyte_sensor/pkg/types"
	log "github.com/sirupsen/logrus"
)

// Store reads and writes readings on one database handle.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DefaultStore uses the shared database from GetDB.
func DefaultStore() (*Store, error) {
	db, err := GetDB()
	if err != nil {
		return nil, err
	}
	return NewStore(db), nil
}

// InsertReading stores reading under id. The id must decode as a push id.
func (s *Store) InsertReading(id string, reading types.RawReading) error {
	recordedAt, err := pushid.DecodeMillis(id)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO readings "+
			"(push_id, recorded_at, no2_we, ox_we, batt_v, batt_soc, temp, hum) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		id,
		recordedAt,
		nullable(reading.No2We),
		nullable(reading.OxWe),
		nullable(reading.BattV),
		nullable(reading.BattSoc),
		nullable(reading.Temp),
		nullable(reading.Hum),
	)
	return err
}

// Load returns every stored reading as a snapshot for the pipeline.
func (s *Store) Load(ctx context.Context) (types.RawSnapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT push_id, no2_we, ox_we, batt_v, batt_soc, temp, hum FROM readings")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshot := types.RawSnapshot{}
	for rows.Next() {
		var id string
		var row readingRow
		if err := rows.Scan(&id, &row.No2We, &row.OxWe, &row.BattV, &row.BattSoc, &row.Temp, &row.Hum); err != nil {
			return nil, err
		}
		snapshot[id] = row.toRawReading()
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// PruneOlderThan removes readings recorded before cutoff.
func (s *Store) PruneOlderThan(cutoff time.Time) (int64, error) {
	result, err := s.db.Exec("DELETE FROM readings WHERE recorded_at < ?", cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("prune readings: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		log.Printf("Pruned %d readings older than %s", removed, cutoff.Format(time.RFC3339))
	}
	return removed, nil
}

type readingRow struct {
	No2We   sql.NullFloat64
	OxWe    sql.NullFloat64
	BattV   sql.NullFloat64
	BattSoc sql.NullFloat64
	Temp    sql.NullFloat64
	Hum     sql.NullFloat64
}

func (r readingRow) toRawReading() types.RawReading {
	return types.RawReading{
		No2We:   fromNullable(r.No2We),
		OxWe:    fromNullable(r.OxWe),
		BattV:   fromNullable(r.BattV),
		BattSoc: fromNullable(r.BattSoc),
		Temp:    fromNullable(r.Temp),
		Hum:     fromNullable(r.Hum),
	}
}

func nullable(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func fromNullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return types.Float(v.Float64)
}
