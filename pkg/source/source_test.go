package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exportJSON = `{
  "devices": {
    "esp32_01": {
      "readings": {
        "-ObX1aaaAAAAAAAAAAAA": {"batt_soc": 99.1, "batt_v": 4.18, "no2_we": 0.312},
        "-ObX1bbbBBBBBBBBBBBB": {"temp": 20.5, "hum": 61, "firmware": "1.2"}
      }
    },
    "esp32_02": {}
  }
}`

func TestParseExportDevicesTree(t *testing.T) {
	snapshot, err := ParseExport([]byte(exportJSON), "esp32_01")
	require.NoError(t, err)
	require.Len(t, snapshot, 2)

	first := snapshot["-ObX1aaaAAAAAAAAAAAA"]
	require.NotNil(t, first.BattSoc)
	assert.Equal(t, 99.1, *first.BattSoc)
	assert.Equal(t, 0.312, *first.No2We)
	assert.Nil(t, first.Temp)

	second := snapshot["-ObX1bbbBBBBBBBBBBBB"]
	assert.Equal(t, 61.0, *second.Hum)

	empty, err := ParseExport([]byte(exportJSON), "esp32_02")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = ParseExport([]byte(exportJSON), "esp32_09")
	assert.True(t, errors.Is(err, ErrDeviceNotFound))
}

func TestParseExportFlatAndNull(t *testing.T) {
	snapshot, err := ParseExport([]byte(`{"-ObX1aaaAAAAAAAAAAAA": {"ox_we": 0.1}}`), "")
	require.NoError(t, err)
	assert.Equal(t, 0.1, *snapshot["-ObX1aaaAAAAAAAAAAAA"].OxWe)

	snapshot, err = ParseExport([]byte("null\n"), "esp32_01")
	require.NoError(t, err)
	assert.Empty(t, snapshot)

	_, err = ParseExport([]byte(`[1,2]`), "esp32_01")
	assert.True(t, errors.Is(err, ErrUnexpectedBody))
}

func TestFileLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export_oct_14.json")
	require.NoError(t, os.WriteFile(path, []byte(exportJSON), 0644))

	snapshot, err := NewFileLoader(path, "esp32_01").Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, snapshot, 2)

	_, err = NewFileLoader(filepath.Join(t.TempDir(), "missing.json"), "esp32_01").Load(context.Background())
	assert.Error(t, err)
}

func TestFirebaseLoader(t *testing.T) {
	var gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"-ObX1aaaAAAAAAAAAAAA": {"batt_soc": 42}}`))
	}))
	defer server.Close()

	loader := NewFirebaseLoader(server.URL+"/", "esp32_01", "auth=secret")
	snapshot, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/devices/esp32_01/readings.json", gotPath)
	assert.Equal(t, "auth=secret", gotQuery)
	assert.Equal(t, 42.0, *snapshot["-ObX1aaaAAAAAAAAAAAA"].BattSoc)
}

func TestFirebaseLoaderErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "Permission denied"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := NewFirebaseLoader(server.URL, "esp32_01", "").Load(context.Background())
	assert.True(t, errors.Is(err, ErrUnexpectedBody))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewFirebaseLoader(server.URL, "esp32_01", "").Load(ctx)
	assert.Error(t, err)
}
