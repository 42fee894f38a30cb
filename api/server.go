package api

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wricardo/incognito/game/archive"
	"github.com/wricardo/incognito/game/config"
	"github.com/wricardo/incognito/game/engine"
	"github.com/wricardo/incognito/game/service"
	"github.com/wricardo/incognito/game/session"
	"github.com/wricardo/incognito/transport/websocket"
)

//go:embed static
var staticFiles embed.FS

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server. hub may be nil.
func NewServer(gameService service.GameService, hub *websocket.Hub) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(metricsMiddleware)

	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Game operations
	api.HandleFunc("/sessions/{id}/state", s.handleGetGameState).Methods("GET")
	api.HandleFunc("/sessions/{id}/move", s.handleMove).Methods("POST")
	api.HandleFunc("/sessions/{id}/interrogate", s.handleInterrogate).Methods("POST")
	api.HandleFunc("/sessions/{id}/select", s.handleSelect).Methods("POST")
	api.HandleFunc("/sessions/{id}/reset", s.handleReset).Methods("POST")
	api.HandleFunc("/sessions/{id}/history", s.handleGetHistory).Methods("GET")
	api.HandleFunc("/sessions/{id}/save", s.handleExportSave).Methods("GET")

	// Variants
	api.HandleFunc("/variants", s.handleListVariants).Methods("GET")
	api.HandleFunc("/variants", s.handleCreateVariant).Methods("POST")
	api.HandleFunc("/variants/{name}", s.handleGetVariant).Methods("GET")

	// Archive of finished games
	api.HandleFunc("/archive", s.handleListArchive).Methods("GET")
	api.HandleFunc("/archive/{id}", s.handleGetArchived).Methods("GET")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.Handle("/metrics", promhttp.Handler())
	s.router.HandleFunc("/ws", s.handleWebSocket)

	// Browser board
	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	s.router.PathPrefix("/").Handler(http.FileServer(http.FS(static)))
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// errorStatus maps service errors to HTTP status codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidSquare),
		errors.Is(err, session.ErrInvalidSessionID),
		errors.Is(err, config.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, config.ErrConfigNotFound),
		errors.Is(err, archive.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrArchiveDisabled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func respondServiceError(w http.ResponseWriter, err error) {
	respondError(w, errorStatus(err), err.Error())
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Variant string `json:"variant,omitempty"`
	}

	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	info, err := s.service.CreateSession(r.Context(), req.Variant)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	SessionsCreated.Inc()
	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	total := len(sessions)
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(sessions) {
			sessions = sessions[:l]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	info, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Game Operation Handlers

func (s *Server) handleGetGameState(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.GetGameState(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, state)
}

type actionRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	s.handleAction(w, r, engine.ActionMove)
}

func (s *Server) handleInterrogate(w http.ResponseWriter, r *http.Request) {
	s.handleAction(w, r, engine.ActionInterrogate)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request, kind engine.ActionKind) {
	sessionID := mux.Vars(r)["id"]

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.From == "" || req.To == "" {
		respondError(w, http.StatusBadRequest, "from and to are required")
		return
	}

	var result *service.ActionResult
	var err error
	if kind == engine.ActionMove {
		result, err = s.service.Move(r.Context(), sessionID, req.From, req.To)
	} else {
		result, err = s.service.Interrogate(r.Context(), sessionID, req.From, req.To)
	}
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.recordAction(kind, result)
	s.broadcast(sessionID, result)

	status := "REJECTED"
	if result.Success {
		status = "OK"
	}
	log.Printf("[%s] session=%s %s->%s status=%s player=%s finished=%t",
		strings.ToUpper(kind.String()), sessionID, req.From, req.To, status, result.State.CurrentPlayer, result.State.Finished)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Square string `json:"square"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.Select(r.Context(), sessionID, req.Square)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if result.Result != nil {
		kind := engine.ActionMove
		if strings.HasPrefix(result.Result.Action, "I") {
			kind = engine.ActionInterrogate
		}
		s.recordAction(kind, result.Result)
		s.broadcast(sessionID, result.Result)
	} else if s.hub != nil {
		s.hub.BroadcastToSession(hubKey(sessionID), result.State)
	}

	respondJSON(w, http.StatusOK, result)
}

// recordAction updates the action and finished-game counters
func (s *Server) recordAction(kind engine.ActionKind, result *service.ActionResult) {
	outcome := "rejected"
	if result.Success {
		outcome = "executed"
	}
	Actions.WithLabelValues(kind.String(), outcome).Inc()

	for _, ev := range result.Events {
		if ev.Type == "spy_found" || ev.Type == "spy_exposed" {
			GamesFinished.WithLabelValues(ev.Type).Inc()
		}
	}
}

// broadcast pushes the new state and any game events to WebSocket clients
func (s *Server) broadcast(sessionID string, result *service.ActionResult) {
	if s.hub == nil || !result.Success {
		return
	}

	key := hubKey(sessionID)
	s.hub.BroadcastToSession(key, result.State)
	for _, ev := range result.Events {
		if ev.Type != "move" && ev.Type != "interrogation" {
			s.hub.BroadcastEvent(key, ev.Type, ev)
		}
	}
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.Reset(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastToSession(hubKey(sessionID), state)
		s.hub.BroadcastEvent(hubKey(sessionID), "reset", nil)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Game reset successfully",
		"state":   state,
	})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	opts := service.HistoryOptions{
		Page:  1,
		Limit: 20,
		Order: "desc",
	}

	query := r.URL.Query()
	if pageStr := query.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			opts.Page = p
		}
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			opts.Limit = l
		}
	}

	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}

	history, err := s.service.GetMoveHistory(r.Context(), sessionID, opts)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, history)
}

// handleExportSave returns the session as save-file text
func (s *Server) handleExportSave(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	text, err := s.service.ExportSave(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", sessionID+".txt"))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(text))
}

// Variant Handlers

func (s *Server) handleListVariants(w http.ResponseWriter, r *http.Request) {
	variants, err := s.service.ListVariants(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, variants)
}

func (s *Server) handleGetVariant(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(mux.Vars(r)["name"], ".json")

	variant, err := s.service.LoadVariant(r.Context(), name)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, variant)
}

func (s *Server) handleCreateVariant(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
		engine.GameConfig
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id := req.ID
	if id == "" {
		id = req.Name
	}
	if id == "" {
		respondError(w, http.StatusBadRequest, "Variant id or name is required")
		return
	}

	if err := s.service.SaveVariant(r.Context(), id, &req.GameConfig); err != nil {
		respondError(w, errorStatus(err), fmt.Sprintf("Failed to save variant: %v", err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":    "Variant saved successfully",
		"variant_id": id,
	})
}

// Archive Handlers

func (s *Server) handleListArchive(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}

	games, err := s.service.ListArchive(r.Context(), limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(games),
		"games": games,
	})
}

func (s *Server) handleGetArchived(w http.ResponseWriter, r *http.Request) {
	game, err := s.service.GetArchived(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, game)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "live updates disabled", http.StatusServiceUnavailable)
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	if _, err := s.service.GetSession(context.Background(), sessionID); err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, hubKey(sessionID))
}

// hubKey matches the session manager's case-insensitive IDs
func hubKey(sessionID string) string {
	return strings.ToLower(sessionID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
