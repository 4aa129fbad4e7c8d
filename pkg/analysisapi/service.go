// Analysisapi publishes pipeline results over HTTP and websocket.
package analysisapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/NotCoffee418/ignyte_sensor/pkg/gapdetector"
	"github.com/NotCoffee418/ignyte_sensor/pkg/metrics"
	"github.com/NotCoffee418/ignyte_sensor/pkg/pipeline"
	"github.com/NotCoffee418/ignyte_sensor/pkg/source"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

type Server struct {
	loader     source.Loader
	opts       pipeline.Options
	maxMissing int
	metrics    *metrics.Metrics
	upgrader   websocket.Upgrader

	latestMutex sync.RWMutex
	latest      *Envelope

	// ws clients for broadcasting new results
	wsClients      map[*websocket.Conn]bool
	wsClientsMutex sync.RWMutex
	// gorilla connections allow one writer at a time
	wsWriteMutex sync.Mutex
}

func NewServer(loader source.Loader, opts pipeline.Options, maxMissing int, m *metrics.Metrics) *Server {
	if m == nil {
		m = metrics.NewMetrics()
	}
	return &Server{
		loader:     loader,
		opts:       opts,
		maxMissing: maxMissing,
		metrics:    m,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Dashboard is served from another origin
			},
		},
		wsClients: make(map[*websocket.Conn]bool),
	}
}

// Refresh loads a snapshot, runs the pipeline and publishes the result.
// On a load error the previous result stays published.
func (s *Server) Refresh(ctx context.Context) (*Envelope, error) {
	raw, err := s.loader.Load(ctx)
	if err != nil {
		s.metrics.ObserveSourceError()
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	envelope := &Envelope{
		SnapshotID:  uuid.New(),
		GeneratedAt: time.Now().UTC(),
		Result:      pipeline.Run(raw, s.opts),
	}

	s.latestMutex.Lock()
	s.latest = envelope
	s.latestMutex.Unlock()

	s.metrics.ObserveResult(envelope.Result, s.maxMissing)
	s.BroadcastToWebSockets(envelope)

	log.WithFields(log.Fields{
		"snapshot": envelope.SnapshotID,
		"readings": len(envelope.Result.Series),
		"skipped":  len(envelope.Result.Skipped),
	}).Info("Published analysis")
	return envelope, nil
}

// Run refreshes immediately and then on every interval until ctx is done.
func (s *Server) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.Refresh(ctx); err != nil {
			log.Printf("Refresh failed: %v", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) GetLatest() *Envelope {
	s.latestMutex.RLock()
	defer s.latestMutex.RUnlock()
	return s.latest
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "Ignyte Sensor Analysis API",
			"status":  "running",
		})
	}).Methods(http.MethodGet)

	r.HandleFunc("/latest", s.withLatest(func(e *Envelope, r *http.Request) (any, error) {
		return e, nil
	})).Methods(http.MethodGet)

	r.HandleFunc("/series", s.withLatest(func(e *Envelope, r *http.Request) (any, error) {
		return e.Result.Series, nil
	})).Methods(http.MethodGet)

	r.HandleFunc("/gaps", s.withLatest(func(e *Envelope, r *http.Request) (any, error) {
		param := r.URL.Query().Get("max_missing")
		if param == "" {
			return e.Result.Gaps, nil
		}
		maxMissing, err := strconv.Atoi(param)
		if err != nil {
			return nil, fmt.Errorf("invalid max_missing %q", param)
		}
		return gapdetector.FilterGaps(e.Result.Gaps, maxMissing), nil
	})).Methods(http.MethodGet)

	// null when there is not enough data for a rate
	r.HandleFunc("/rate", s.withLatest(func(e *Envelope, r *http.Request) (any, error) {
		return e.Result.Rate, nil
	})).Methods(http.MethodGet)

	r.HandleFunc("/periods", s.withLatest(func(e *Envelope, r *http.Request) (any, error) {
		return e.Result.Periods, nil
	})).Methods(http.MethodGet)

	r.HandleFunc("/ws", s.handleWebSocket)
	r.Handle("/metrics", s.metrics.Handler())
	return r
}

// withLatest serves a view of the latest envelope, 404 until the first
// refresh and 400 when the view rejects the request.
func (s *Server) withLatest(view func(e *Envelope, r *http.Request) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		envelope := s.GetLatest()
		if envelope == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": "No analysis available yet",
			})
			return
		}

		body, err := view(envelope, r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, body)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	s.AddWebSocketClient(conn)

	// Send current result immediately if available
	if envelope := s.GetLatest(); envelope != nil {
		if err := s.writeEnvelope(conn, envelope); err != nil {
			s.RemoveWebSocketClient(conn)
			return
		}
	}

	// Keep connection alive
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.RemoveWebSocketClient(conn)
			break
		}
	}
}

func (s *Server) BroadcastToWebSockets(envelope *Envelope) {
	s.wsClientsMutex.RLock()
	clients := make([]*websocket.Conn, 0, len(s.wsClients))
	for client := range s.wsClients {
		clients = append(clients, client)
	}
	s.wsClientsMutex.RUnlock()

	for _, client := range clients {
		if err := s.writeEnvelope(client, envelope); err != nil {
			s.RemoveWebSocketClient(client)
		}
	}
}

func (s *Server) writeEnvelope(conn *websocket.Conn, envelope *Envelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	s.wsWriteMutex.Lock()
	defer s.wsWriteMutex.Unlock()
	return conn.WriteMessage(websocket.TextMessage, payload)
}

func (s *Server) AddWebSocketClient(conn *websocket.Conn) {
	s.wsClientsMutex.Lock()
	s.wsClients[conn] = true
	s.wsClientsMutex.Unlock()
}

func (s *Server) RemoveWebSocketClient(conn *websocket.Conn) {
	s.wsClientsMutex.Lock()
	delete(s.wsClients, conn)
	s.wsClientsMutex.Unlock()
	conn.Close()
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
