package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"hotel-autopilot/config"
	"hotel-autopilot/events"
	"hotel-autopilot/models"
	"hotel-autopilot/orchestrator"
	"hotel-autopilot/session"
)

const startAutomationEvent = "start-automation"

type Server struct {
	cfg      *config.Config
	log      *zap.Logger
	orch     *orchestrator.Orchestrator
	registry *session.Registry
	upgrader websocket.Upgrader
}

func New(cfg *config.Config, log *zap.Logger, orch *orchestrator.Orchestrator, registry *session.Registry) *Server {
	s := &Server{
		cfg:      cfg,
		log:      log,
		orch:     orch,
		registry: registry,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			// Non-browser clients send no Origin header.
			return origin == "" || origin == cfg.FrontendOrigin
		},
	}
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/ws", s.handleWS)
	r.Post("/automate-search", s.handleAutomateSearch)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleWS upgrades the connection and serves the persistent bidirectional
// channel: inbound start-automation requests, outbound status/snapshot
// events. Disconnect releases every resource keyed to the client.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := newWSClient(uuid.NewString(), conn, s.log)
	s.log.Info("client connected", zap.String("client", client.id))

	go client.writePump()
	s.readLoop(r.Context(), client)

	client.close()
	s.registry.ReleaseClient(client.id)
	s.log.Info("client disconnected", zap.String("client", client.id))
}

func (s *Server) readLoop(ctx context.Context, client *wsClient) {
	for {
		_, raw, err := client.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg inbound
		if err := json.Unmarshal(raw, &msg); err != nil {
			client.Emit(events.AutomationError, "malformed message")
			continue
		}

		switch msg.Event {
		case startAutomationEvent:
			var req models.BookingRequest
			if err := json.Unmarshal(msg.Data, &req); err != nil {
				client.Emit(events.AutomationError, "malformed booking request")
				continue
			}
			// Run off the read loop so disconnects are still observed
			// while automation is in flight.
			go s.runAutomation(ctx, client, req)
		default:
			s.log.Info("ignoring unknown event", zap.String("event", msg.Event))
		}
	}
}

func (s *Server) runAutomation(ctx context.Context, client *wsClient, req models.BookingRequest) {
	if _, err := s.orch.Run(ctx, client.id, req, client); err != nil {
		client.Emit(events.AutomationError, err.Error())
	}
}

// handleAutomateSearch is the one-shot synchronous trigger: same pipeline,
// no streaming subscriber.
func (s *Server) handleAutomateSearch(w http.ResponseWriter, r *http.Request) {
	var req models.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	clientID := uuid.NewString()
	reports, err := s.orch.Run(r.Context(), clientID, req, logEmitter{s.log})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	type siteStatus struct {
		Result models.SiteFlowResult `json:"result"`
		Error  string                `json:"error,omitempty"`
	}
	out := make(map[string]siteStatus, len(reports))
	for _, rep := range reports {
		st := siteStatus{Result: rep.Result}
		if rep.Err != nil {
			st.Error = rep.Err.Error()
		}
		out[rep.Site] = st
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// logEmitter satisfies events.Emitter for runs with no connected socket.
// Snapshots are dropped, everything else is logged.
type logEmitter struct {
	log *zap.Logger
}

func (e logEmitter) Emit(event string, data any) {
	if event == events.VideoChunk {
		return
	}
	e.log.Info("event", zap.String("name", event), zap.Any("data", data))
}
