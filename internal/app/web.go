package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/sally-golding/stepsmart/internal/config"
	"github.com/sally-golding/stepsmart/internal/gait"
	"github.com/sally-golding/stepsmart/internal/session"
	"github.com/sally-golding/stepsmart/internal/store"
)

const defaultSessionListLimit = 50

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // the dashboard is served from the Pi on the local network
	},
}

// wsClient is one live-metrics websocket subscriber.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// metricsHub fans snapshot payloads out to websocket clients. A client
// that falls behind drops frames rather than stalling the others.
type metricsHub struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

func newMetricsHub() *metricsHub {
	return &metricsHub{clients: make(map[*wsClient]struct{})}
}

func (h *metricsHub) add(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *metricsHub) remove(c *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *metricsHub) broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
		}
	}
}

type webServer struct {
	store *store.Store
	hub   *metricsHub

	mu         sync.RWMutex
	latest     gait.Snapshot
	haveLatest bool
}

func newWebServer(st *store.Store) *webServer {
	return &webServer{store: st, hub: newMetricsHub()}
}

// setLatest records the newest snapshot and pushes it to websocket clients.
func (s *webServer) setLatest(snap gait.Snapshot) {
	s.mu.Lock()
	s.latest = snap
	s.haveLatest = true
	s.mu.Unlock()

	payload, err := json.Marshal(snap)
	if err != nil {
		log.Printf("web: metrics marshal error: %v", err)
		return
	}
	s.hub.broadcast(payload)
}

func (s *webServer) routes(staticDir string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/metrics", s.handleMetrics)
	mux.HandleFunc("GET /ws/metrics", s.handleMetricsWS)
	mux.HandleFunc("GET /api/sessions", s.handleSessions)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleSession)
	mux.HandleFunc("GET /api/sessions/{id}/heatmap.png", s.handleHeatmap)
	if staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}
	return mux
}

func (s *webServer) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	snap, ok := s.latest, s.haveLatest
	s.mu.RUnlock()

	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, snap)
}

func (s *webServer) handleMetricsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	c := &wsClient{conn: conn, send: make(chan []byte, 16)}
	s.hub.add(c)
	defer s.hub.remove(c)

	s.mu.RLock()
	snap, ok := s.latest, s.haveLatest
	s.mu.RUnlock()
	if ok {
		if err := conn.WriteJSON(snap); err != nil {
			return
		}
	}

	// writer
	go func() {
		for payload := range c.send {
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Printf("web: websocket write error: %v", err)
				conn.Close()
				return
			}
		}
	}()

	// the dashboard sends nothing; reading detects the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *webServer) handleSessions(w http.ResponseWriter, r *http.Request) {
	limit := defaultSessionListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	list, err := s.store.List(r.Context(), limit)
	if err != nil {
		log.Printf("web: %v", err)
		http.Error(w, "session history unavailable", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []session.Summary{}
	}
	writeJSON(w, list)
}

func (s *webServer) lookup(w http.ResponseWriter, r *http.Request) (session.Summary, bool) {
	id := r.PathValue("id")
	sum, err := s.store.Get(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, "session not found", http.StatusNotFound)
		return sum, false
	case err != nil:
		log.Printf("web: %v", err)
		http.Error(w, "session history unavailable", http.StatusInternalServerError)
		return sum, false
	}
	return sum, true
}

func (s *webServer) handleSession(w http.ResponseWriter, r *http.Request) {
	if sum, ok := s.lookup(w, r); ok {
		writeJSON(w, sum)
	}
}

func (s *webServer) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	sum, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := session.EncodeHeatmapPNG(&buf, sum.Pressure); err != nil {
		log.Printf("web: heatmap encode error: %v", err)
		http.Error(w, "heatmap unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("web: json encode error: %v", err)
	}
}

// RunWeb serves the dashboard: live metrics over HTTP and websocket, and
// the session history with per-session heat maps.
func RunWeb() error {
	cfg := config.Get()

	st, err := store.Open(cfg.SessionDBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	srv := newWebServer(st)

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDWeb)
	if err != nil {
		return err
	}
	defer client.Disconnect(disconnectQuiesceMs)
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	err = subscribe(client, cfg.TopicMetrics, func(_ mqtt.Client, msg mqtt.Message) {
		var snap gait.Snapshot
		if err := json.Unmarshal(msg.Payload(), &snap); err != nil {
			log.Printf("web: metrics unmarshal error: %v", err)
			return
		}
		srv.setLatest(snap)
	})
	if err != nil {
		return err
	}
	log.Printf("web: subscribed to %s", cfg.TopicMetrics)

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web: listening on %s", addr)
	return http.ListenAndServe(addr, srv.routes("web"))
}
