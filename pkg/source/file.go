package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/NotCoffee418/ignyte_sensor/pkg/types"
)

// FileLoader reads a Firebase export from disk on every Load.
type FileLoader struct {
	Path   string
	Device string
}

func NewFileLoader(path, device string) *FileLoader {
	return &FileLoader{Path: path, Device: device}
}

func (f *FileLoader) Load(ctx context.Context) (types.RawSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	return ParseExport(data, f.Device)
}

// ParseExport accepts either a full export with a devices tree or the
// readings map of a single device.
func ParseExport(data []byte, device string) (types.RawSnapshot, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return types.RawSnapshot{}, nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedBody, err)
	}

	if _, ok := probe["devices"]; ok {
		var export firebaseExport
		if err := json.Unmarshal(data, &export); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedBody, err)
		}
		dev, ok := export.Devices[device]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, device)
		}
		if dev.Readings == nil {
			return types.RawSnapshot{}, nil
		}
		return dev.Readings, nil
	}

	var snapshot types.RawSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedBody, err)
	}
	return snapshot, nil
}
