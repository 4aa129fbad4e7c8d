package analysisapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/NotCoffee418/ignyte_sensor/pkg/daynight"
	"github.com/NotCoffee418/ignyte_sensor/pkg/gapdetector"
	"github.com/NotCoffee418/ignyte_sensor/pkg/pipeline"
	"github.com/NotCoffee418/ignyte_sensor/pkg/pushid"
	"github.com/NotCoffee418/ignyte_sensor/pkg/source"
	"github.com/NotCoffee418/ignyte_sensor/pkg/types"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Hourly readings from 18:00 with 21:00 missing.
func snapshot() types.RawSnapshot {
	start := time.Date(2025, time.October, 14, 18, 0, 0, 0, time.UTC)
	raw := types.RawSnapshot{}
	for i, h := range []int{0, 1, 2, 4} {
		ts := start.Add(time.Duration(h) * time.Hour)
		id := pushid.EncodeTimestamp(ts) + "ABCDEFGHIJK" + string(pushid.Alphabet[i])
		raw[id] = types.RawReading{
			BattSoc: types.Float(90 - float64(h)),
			BattV:   types.Float(4.1),
		}
	}
	return raw
}

func newTestServer(loader source.Loader) *Server {
	opts := pipeline.DefaultOptions()
	opts.Hours = daynight.Hours{DayStart: 9, NightStart: 20, Location: time.UTC}
	opts.HorizonDays = 10000
	return NewServer(loader, opts, gapdetector.DefaultMaxMissing, nil)
}

func staticLoader(raw types.RawSnapshot) source.Loader {
	return source.LoaderFunc(func(ctx context.Context) (types.RawSnapshot, error) {
		return raw, nil
	})
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestEndpointsBeforeRefresh(t *testing.T) {
	s := newTestServer(staticLoader(snapshot()))
	router := s.Router()

	assert.Equal(t, http.StatusOK, get(t, router, "/").Code)
	for _, path := range []string{"/latest", "/series", "/gaps", "/rate", "/periods"} {
		assert.Equal(t, http.StatusNotFound, get(t, router, path).Code, path)
	}
}

func TestRefreshPublishes(t *testing.T) {
	s := newTestServer(staticLoader(snapshot()))
	envelope, err := s.Refresh(context.Background())
	require.NoError(t, err)
	require.NotNil(t, envelope)
	assert.Len(t, envelope.Result.Series, 4)
	assert.Same(t, envelope, s.GetLatest())

	router := s.Router()

	rec := get(t, router, "/latest")
	require.Equal(t, http.StatusOK, rec.Code)
	var latest Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &latest))
	assert.Equal(t, envelope.SnapshotID, latest.SnapshotID)

	rec = get(t, router, "/series")
	require.Equal(t, http.StatusOK, rec.Code)
	var series types.OrderedSeries
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &series))
	assert.Len(t, series, 4)

	rec = get(t, router, "/periods")
	require.Equal(t, http.StatusOK, rec.Code)
	var periods []daynight.Period
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &periods))
	assert.Equal(t, []daynight.Period{
		{IsDaytime: true, StartIndex: 0, EndIndex: 1},
		{IsDaytime: false, StartIndex: 2, EndIndex: 3},
	}, periods)

	rec = get(t, router, "/rate")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"dataPoints":4`)
}

func TestGapsEndpoint(t *testing.T) {
	s := newTestServer(staticLoader(snapshot()))
	_, err := s.Refresh(context.Background())
	require.NoError(t, err)
	router := s.Router()

	var all []gapdetector.GapRecord
	rec := get(t, router, "/gaps")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all, 4)

	var filtered []gapdetector.GapRecord
	rec = get(t, router, "/gaps?max_missing=500")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &filtered))
	require.Len(t, filtered, 3)
	for _, g := range filtered {
		assert.True(t, g.Gap)
	}

	rec = get(t, router, "/gaps?max_missing=12")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &filtered))
	assert.Empty(t, filtered)

	assert.Equal(t, http.StatusBadRequest, get(t, router, "/gaps?max_missing=abc").Code)
}

func TestRateNullWithSingleReading(t *testing.T) {
	single := types.RawSnapshot{}
	for id, r := range snapshot() {
		single[id] = r
		break
	}
	s := newTestServer(staticLoader(single))
	_, err := s.Refresh(context.Background())
	require.NoError(t, err)

	rec := get(t, s.Router(), "/rate")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
}

func TestRefreshKeepsPreviousOnError(t *testing.T) {
	fail := false
	loader := source.LoaderFunc(func(ctx context.Context) (types.RawSnapshot, error) {
		if fail {
			return nil, errors.New("offline")
		}
		return snapshot(), nil
	})
	s := newTestServer(loader)

	first, err := s.Refresh(context.Background())
	require.NoError(t, err)

	fail = true
	_, err = s.Refresh(context.Background())
	require.Error(t, err)
	assert.Same(t, first, s.GetLatest())

	rec := get(t, s.Router(), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ignyte_source_errors_total 1")
	assert.Contains(t, rec.Body.String(), "ignyte_pipeline_runs_total 1")
}

func TestWebSocketReceivesLatestAndBroadcasts(t *testing.T) {
	s := newTestServer(staticLoader(snapshot()))
	first, err := s.Refresh(context.Background())
	require.NoError(t, err)

	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var received Envelope
	require.NoError(t, conn.ReadJSON(&received))
	assert.Equal(t, first.SnapshotID, received.SnapshotID)

	second, err := s.Refresh(context.Background())
	require.NoError(t, err)
	require.NoError(t, conn.ReadJSON(&received))
	assert.Equal(t, second.SnapshotID, received.SnapshotID)
}
