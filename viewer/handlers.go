package main

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Server holds shared state for HTTP handlers.
type Server struct {
	hub     *Hub
	dbCache *DBCache
	logger  *slog.Logger
}

func NewServer(logger *slog.Logger, hub *Hub, roots []string) *Server {
	return &Server{
		hub:     hub,
		dbCache: NewDBCache(logger, roots, 30*time.Second),
		logger:  logger,
	}
}

// RegisterRoutes sets up the page, the live stream and the archive API.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/ws", s.hub.ServeWS)
	mux.HandleFunc("/api/live", s.handleLive)
	mux.HandleFunc("/api/games", s.handleGames)
	mux.HandleFunc("/api/games/", s.handleGameTurns)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	withCORS(w, r)
	last := s.hub.Last()
	if last == nil {
		http.Error(w, "no live game yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(last)
}

func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	withCORS(w, r)
	if r.Method == http.MethodOptions {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := parseIntQuery(r, "limit", 50)
	if limit > 500 {
		limit = 500
	}
	offset := parseIntQuery(r, "offset", 0)

	games, err := s.dbCache.GetGamesIndex(r.Context())
	if err != nil {
		s.logger.Error("games index", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	q := r.URL.Query()
	writeJSON(w, GamesResponse{
		Total: int64(len(games)),
		Games: paginateGames(games, limit, offset, q.Get("sort"), q.Get("dir")),
	})
}

// handleGameTurns serves /api/games/{id}/turns.
func (s *Server) handleGameTurns(w http.ResponseWriter, r *http.Request) {
	withCORS(w, r)
	if r.Method == http.MethodOptions {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/games/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 2 || parts[1] != "turns" {
		http.NotFound(w, r)
		return
	}
	gameID, err := url.PathUnescape(parts[0])
	if err != nil || gameID == "" {
		http.Error(w, "bad game id", http.StatusBadRequest)
		return
	}

	db, err := s.dbCache.Get()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	frames, err := queryTurns(r.Context(), db, gameID)
	if err != nil {
		s.logger.Error("query turns", "game_id", gameID, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(frames) == 0 {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, frames)
}
