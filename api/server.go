package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wricardo/mcp-training/foodchain/game/engine"
	"github.com/wricardo/mcp-training/foodchain/game/savefile"
	"github.com/wricardo/mcp-training/foodchain/game/service"
	"github.com/wricardo/mcp-training/foodchain/game/session"
	"github.com/wricardo/mcp-training/foodchain/transport/websocket"
)

// maxImportSize bounds the body of an import request
const maxImportSize = 1 << 20

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
	api := s.router.PathPrefix("/api").Subrouter()

	// Game
	api.HandleFunc("/game", s.handleNewGame).Methods("POST")
	api.HandleFunc("/game", s.handleGetGame).Methods("GET")
	api.HandleFunc("/game/move", s.handleMove).Methods("POST")
	api.HandleFunc("/game/classify", s.handleClassify).Methods("GET")
	api.HandleFunc("/game/moves", s.handleLegalMoves).Methods("GET")
	api.HandleFunc("/game/bots", s.handlePlayBots).Methods("POST")
	api.HandleFunc("/game/winner", s.handleWinner).Methods("GET")
	api.HandleFunc("/game/history", s.handleGetHistory).Methods("GET")
	api.HandleFunc("/game/export", s.handleExport).Methods("GET")
	api.HandleFunc("/game/import", s.handleImport).Methods("POST")

	// Save slots
	api.HandleFunc("/saves", s.handleListSaves).Methods("GET")
	api.HandleFunc("/saves", s.handleSaveGame).Methods("POST")
	api.HandleFunc("/saves/{slot}/load", s.handleLoadGame).Methods("POST")
	api.HandleFunc("/saves/{slot}", s.handleDeleteSave).Methods("DELETE")

	// Era data
	api.HandleFunc("/eras", s.handleListEras).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
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

// respondServiceError maps service errors to HTTP status codes
func respondServiceError(w http.ResponseWriter, err error) {
	respondError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNoActiveGame), errors.Is(err, session.ErrSaveNotFound):
		return http.StatusNotFound
	case errors.Is(err, savefile.ErrInvalidFormat):
		return http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrInvalidConfig), errors.Is(err, session.ErrInvalidSlot):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) broadcast(gameID string, state *engine.Snapshot) {
	if s.hub != nil && state != nil {
		s.hub.BroadcastState(gameID, state)
	}
}

// Game Handlers

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req service.NewGameRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	info, err := s.service.NewGame(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(info.ID, info.State)
	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	info, err := s.service.GetGame(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role string `json:"role"`
		Row  *int   `json:"row"`
		Col  *int   `json:"col"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	role, err := engine.ParseRole(req.Role)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Row == nil || req.Col == nil {
		respondError(w, http.StatusBadRequest, "row and col are required")
		return
	}

	result, err := s.service.Move(r.Context(), role, engine.Pos(*req.Row, *req.Col))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if result.Success {
		s.broadcast(result.GameID, result.State)
	}
	respondJSON(w, http.StatusOK, result)
}

// parseTarget reads role, row and col query parameters
func parseTarget(r *http.Request, needCell bool) (engine.Role, engine.Position, error) {
	query := r.URL.Query()
	role, err := engine.ParseRole(query.Get("role"))
	if err != nil {
		return "", engine.Position{}, err
	}
	if !needCell {
		return role, engine.Position{}, nil
	}
	row, err := strconv.Atoi(query.Get("row"))
	if err != nil {
		return "", engine.Position{}, fmt.Errorf("invalid row %q", query.Get("row"))
	}
	col, err := strconv.Atoi(query.Get("col"))
	if err != nil {
		return "", engine.Position{}, fmt.Errorf("invalid col %q", query.Get("col"))
	}
	return role, engine.Pos(row, col), nil
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	role, to, err := parseTarget(r, true)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	kind, err := s.service.Classify(r.Context(), role, to)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"role": role,
		"to":   to,
		"kind": kind,
	})
}

func (s *Server) handleLegalMoves(w http.ResponseWriter, r *http.Request) {
	role, _, err := parseTarget(r, false)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	moves, err := s.service.LegalMoves(r.Context(), role)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"role":  role,
		"moves": moves,
	})
}

func (s *Server) handlePlayBots(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.PlayBots(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if len(result.Turns) > 0 {
		s.broadcast(result.GameID, result.State)
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleWinner(w http.ResponseWriter, r *http.Request) {
	winner, err := s.service.Winner(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, winner)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))

	opts := service.HistoryOptions{
		Page:  page,
		Limit: limit,
		Order: query.Get("order"),
	}

	history, err := s.service.GetHistory(r.Context(), opts)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.Export(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="foodchain.sav"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportSize))
	if err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}

	info, err := s.service.Import(r.Context(), data)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(info.ID, info.State)
	respondJSON(w, http.StatusOK, info)
}

// Save Handlers

func (s *Server) handleListSaves(w http.ResponseWriter, r *http.Request) {
	saves, err := s.service.ListSaves(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, saves)
}

func (s *Server) handleSaveGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Slot string `json:"slot"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	info, err := s.service.SaveGame(r.Context(), req.Slot)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleLoadGame(w http.ResponseWriter, r *http.Request) {
	slot := mux.Vars(r)["slot"]

	info, err := s.service.LoadGame(r.Context(), slot)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(info.ID, info.State)
	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteSave(w http.ResponseWriter, r *http.Request) {
	slot := mux.Vars(r)["slot"]

	if err := s.service.DeleteSave(r.Context(), slot); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Era Handlers

func (s *Server) handleListEras(w http.ResponseWriter, r *http.Request) {
	eras, err := s.service.ListEras(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, eras)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket updates are disabled", http.StatusServiceUnavailable)
		return
	}
	gameID := r.URL.Query().Get("game")

	var initial *engine.Snapshot
	if info, err := s.service.GetGame(r.Context()); err == nil {
		if gameID != "" && gameID != info.ID {
			http.Error(w, "Unknown game", http.StatusNotFound)
			return
		}
		initial = info.State
	} else if gameID != "" {
		http.Error(w, "Unknown game", http.StatusNotFound)
		return
	}

	// Upgrade to WebSocket
	s.hub.ServeWS(w, r, gameID, initial)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
