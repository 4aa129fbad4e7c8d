package pathing

import (
	"os"
	"path/filepath"
)

// Must be called on startup by binaries that write to the data dir.
func EnsureDirs() error {
	// Directories that must exist:
	dirs := []string{
		GetDataDir(),
		GetConfigDir(),
	}

	// Create all directories
	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
		}
	}
	return nil
}

func GetReadingDbPath() string {
	// Join path
	return filepath.Join(GetDataDir(), "ignyte-readings.db")
}

func GetDataDir() string {
	if dir := os.Getenv("IGNYTE_DATA_DIR"); dir != "" {
		return dir
	}
	return "/var/lib/ignyte_sensor"
}

func GetConfigDir() string {
	if dir := os.Getenv("IGNYTE_CONFIG_DIR"); dir != "" {
		return dir
	}
	return "/etc/ignyte_sensor"
}
