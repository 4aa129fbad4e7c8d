package types

import "encoding/json"

// RawReading is a single ESP32 sample as stored by the data source.
// Every field is optional; a nil field was not reported by the device.
type RawReading struct {
	// Gas sensor working electrodes
	No2We *float64 `json:"no2_we,omitempty"`
	OxWe  *float64 `json:"ox_we,omitempty"`

	// Battery
	BattV   *float64 `json:"batt_v,omitempty"`
	BattSoc *float64 `json:"batt_soc,omitempty"`

	// DHT
	Temp *float64 `json:"temp,omitempty"`
	Hum  *float64 `json:"hum,omitempty"`
}

// RawSnapshot is the keyed collection handed to the pipeline.
// Keys are push ids; map order carries no meaning.
type RawSnapshot map[string]RawReading

// Float returns a pointer to v, for building readings in code.
func Float(v float64) *float64 {
	return &v
}

func (r RawReading) ToJsonBytes() []byte {
	b, err := json.Marshal(r)
	if err != nil {
		return nil
	}
	return b
}

func RawReadingFromJsonBytes(data []byte) (*RawReading, error) {
	var reading RawReading
	if err := json.Unmarshal(data, &reading); err != nil {
		return nil, err
	}
	return &reading, nil
}
