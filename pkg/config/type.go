package config

type ReadingCollectorConfig struct {
	// "serial" or "mqtt"
	Transport    string `toml:"transport"`
	SerialDevice string `toml:"serial_device"`
	Baudrate     uint   `toml:"baudrate"`
	MQTTBroker   string `toml:"mqtt_broker"`
	MQTTTopic    string `toml:"mqtt_topic"`
	MQTTClientID string `toml:"mqtt_client_id"`
	// Raw readings older than this are pruned. 0 keeps everything.
	RetentionDays int `toml:"retention_days"`
}

type AnalysisAPIConfig struct {
	ListenAddress string `toml:"listen_address"`
	ListenPort    int    `toml:"listen_port"`

	// "sqlite", "file" or "firebase"
	Source         string `toml:"source"`
	ExportFile     string `toml:"export_file"`
	FirebaseURL    string `toml:"firebase_url"`
	FirebaseAuth   string `toml:"firebase_auth"`
	Device         string `toml:"device"`
	RefreshSeconds int    `toml:"refresh_seconds"`

	// Analysis
	WindowSize          int `toml:"window_size"`
	HorizonDays         int `toml:"horizon_days"`
	CadenceMinutes      int `toml:"cadence_minutes"`
	GapThresholdMinutes int `toml:"gap_threshold_minutes"`
	MaxMissingRecords   int `toml:"max_missing_records"`
	DayStartHour        int `toml:"day_start_hour"`
	NightStartHour      int `toml:"night_start_hour"`
	// IANA zone name, empty for the host zone
	Timezone string `toml:"timezone"`
}
