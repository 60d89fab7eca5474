// Package api serves the game over HTTP. One server hosts many
// concurrent games; each game's operations are serialized by a per-game
// mutex, matching the engine's single-threaded contract.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/keystroke-kingdom/internal/advisor"
	"github.com/talgya/keystroke-kingdom/internal/config"
	"github.com/talgya/keystroke-kingdom/internal/engine"
	"github.com/talgya/keystroke-kingdom/internal/entropy"
	"github.com/talgya/keystroke-kingdom/internal/persistence"
)

// Server hosts the game registry and the HTTP API.
type Server struct {
	DB      *persistence.DB
	Advisor advisor.Advisor
	Balance *config.Balance
	Entropy entropy.Source // optional shared source for unseeded games
	Port    int

	mu    sync.RWMutex
	games map[string]*gameHandle
}

// gameHandle is one live game plus its collaborators.
type gameHandle struct {
	mu     sync.Mutex
	game   *engine.Game
	player string
	saver  *persistence.Autosaver
	hub    *streamHub
}

// Handler builds the full route table. Exposed separately from Start so
// tests can drive it through httptest.
func (s *Server) Handler() http.Handler {
	s.games = make(map[string]*gameHandle)

	advisorLimiter := NewRateLimiter(30, time.Minute)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/games", s.handleCreateGame)
	mux.HandleFunc("/api/v1/games/", s.handleGameRoutes(advisorLimiter))
	mux.HandleFunc("/api/v1/leaderboard", s.handleLeaderboard)
	mux.HandleFunc("/api/v1/stats", s.handleStats)
	return corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	handler := s.Handler()
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr)

	go func() {
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware allows the configured frontend origins plus localhost
// dev servers. Set CORS_ORIGINS to a comma-separated list.
func corsMiddleware(next http.Handler) http.Handler {
	allowed := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				allowed[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("write response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "error": msg})
}

// handleCreateGame starts a new game: POST {player, difficulty, mode, seed}.
func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}

	var req struct {
		Player     string `json:"player"`
		Difficulty string `json:"difficulty"`
		Mode       string `json:"mode"`
		Seed       *int64 `json:"seed,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Player == "" {
		req.Player = "anonymous"
	}

	diff := s.Balance.Difficulty(req.Difficulty)
	mode := s.Balance.Mode(req.Mode)

	var src entropy.Source
	switch {
	case req.Seed != nil:
		src = entropy.Seeded(*req.Seed)
	case s.Entropy != nil:
		src = s.Entropy
	default:
		src = entropy.Crypto()
	}

	hub := newStreamHub()
	g := engine.NewGame(diff, mode, src, hub)

	h := &gameHandle{
		game:   g,
		player: req.Player,
		hub:    hub,
	}
	if s.DB != nil {
		h.saver = persistence.NewAutosaver(s.DB, 0.5)
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.games[id] = h
	s.mu.Unlock()

	slog.Info("game created", "id", id, "player", req.Player, "difficulty", diff.Name, "mode", mode.Name)
	writeJSON(w, map[string]any{"success": true, "id": id, "state": g.State})
}

// FlushSaves persists every unfinished live game (shutdown path).
func (s *Server) FlushSaves() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, h := range s.games {
		h.mu.Lock()
		if !h.game.State.GameOver {
			h.saver.Flush(h.player, h.game.State, h.game.Diff.Name, h.game.Mode.Name)
		}
		h.mu.Unlock()
		slog.Debug("game flushed", "id", id)
	}
}

func (s *Server) lookup(id string) (*gameHandle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.games[id]
	return h, ok
}

// handleGameRoutes dispatches /api/v1/games/{id}[/op].
func (s *Server) handleGameRoutes(advisorLimiter *RateLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/v1/games/")
		parts := strings.SplitN(rest, "/", 2)
		id := parts[0]
		op := ""
		if len(parts) == 2 {
			op = parts[1]
		}

		h, ok := s.lookup(id)
		if !ok {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}

		switch op {
		case "":
			h.mu.Lock()
			defer h.mu.Unlock()
			writeJSON(w, map[string]any{"success": true, "state": h.game.State})
		case "summary":
			s.handleSummary(w, h)
		case "actions":
			s.handleAction(w, r, h)
		case "turn":
			s.handleTurn(w, r, h)
		case "choice":
			s.handleChoice(w, r, h)
		case "advisor":
			RateLimitMiddleware(advisorLimiter, func(w http.ResponseWriter, r *http.Request) {
				s.handleAdvisor(w, r, h)
			})(w, r)
		case "save":
			s.handleSave(w, r, h)
		case "load":
			s.handleLoad(w, r, h)
		case "stream":
			h.hub.handleUpgrade(w, r)
		default:
			writeError(w, http.StatusNotFound, "unknown operation")
		}
	}
}

func (s *Server) handleSummary(w http.ResponseWriter, h *gameHandle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	st := h.game.State
	writeJSON(w, map[string]any{
		"success":           true,
		"day":               st.CurrentDay,
		"total_days":        st.TotalDays,
		"actions_remaining": st.ActionsRemaining,
		"employment":        st.Employment,
		"inflation":         st.Inflation,
		"capacity_used":     st.CapacityUsed,
		"total_capacity":    st.TotalCapacity(),
		"aggregate_demand":  st.AggregateDemand(),
		"deficit":           st.Deficit,
		"game_over":         st.GameOver,
		"active_event":      st.ActiveEvent,
		"final_score":       st.FinalScore,
	})
}

// handleAction dispatches one player action by type.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request, h *gameHandle) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}

	var req struct {
		Type   string  `json:"type"`
		Sector string  `json:"sector"`
		Amount float64 `json:"amount"`
		Kind   string  `json:"kind"`
		Delta  float64 `json:"delta"`
		Value  float64 `json:"value"`
		Stance int     `json:"stance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	g := h.game
	var ok bool
	switch req.Type {
	case "spend":
		ok = g.SpendPublic(req.Sector, req.Amount)
	case "invest":
		ok = g.InvestInCapacity(req.Kind)
	case "import":
		ok = g.ImportGoods()
	case "toggle_jg":
		ok = g.ToggleJobGuarantee()
	case "adjust_tax":
		ok = g.AdjustTax(req.Delta)
	case "adjust_rate":
		ok = g.AdjustPolicyRate(req.Delta)
	case "set_jg_wage":
		ok = g.SetJGWage(req.Value)
	case "regulate_credit":
		ok = g.RegulatePrivateCredit(req.Stance)
	case "toggle_yield_control":
		ok = g.ToggleYieldControl()
	case "toggle_ior":
		ok = g.ToggleIOR()
	default:
		writeError(w, http.StatusBadRequest, "unknown action type")
		return
	}

	if ok {
		h.saver.Save(h.player, g.State, g.Diff.Name, g.Mode.Name)
		h.hub.BroadcastState(g.State)
	}
	writeJSON(w, map[string]any{"success": true, "applied": ok, "state": g.State})
}

// handleTurn advances one day. Finishing the run submits the score and
// clears the save slot; persistence failures degrade to log lines.
func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request, h *gameHandle) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	g := h.game
	advanced := g.NextTurn()

	if advanced {
		if g.State.GameOver {
			if s.DB != nil {
				if err := s.DB.SubmitScore(h.player, g.State, g.Diff.Name, g.Mode.Name); err != nil {
					slog.Warn("score submission failed", "player", h.player, "error", err)
				}
				if err := s.DB.DeleteSave(h.player); err != nil {
					slog.Warn("save cleanup failed", "player", h.player, "error", err)
				}
			}
		} else {
			h.saver.Flush(h.player, g.State, g.Diff.Name, g.Mode.Name)
		}
		h.hub.BroadcastState(g.State)
	}

	writeJSON(w, map[string]any{"success": true, "advanced": advanced, "state": g.State})
}

func (s *Server) handleChoice(w http.ResponseWriter, r *http.Request, h *gameHandle) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}

	var req struct {
		Index int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	result, ok := h.game.ResolveChoice(req.Index)
	if ok {
		h.saver.Save(h.player, h.game.State, h.game.Diff.Name, h.game.Mode.Name)
		h.hub.BroadcastState(h.game.State)
	}
	writeJSON(w, map[string]any{"success": true, "resolved": ok, "result": result, "state": h.game.State})
}

func (s *Server) handleAdvisor(w http.ResponseWriter, r *http.Request, h *gameHandle) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}

	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	h.mu.Lock()
	snap := advisor.Snap(h.game.State)
	h.mu.Unlock()

	answer := s.Advisor.Ask(req.Question, snap)
	writeJSON(w, map[string]any{"success": true, "answer": answer})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request, h *gameHandle) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	if s.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "persistence disabled")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := s.DB.SaveGame(h.player, h.game.State, h.game.Diff.Name, h.game.Mode.Name); err != nil {
		slog.Warn("manual save failed", "player", h.player, "error", err)
		writeError(w, http.StatusInternalServerError, "save failed")
		return
	}
	writeJSON(w, map[string]any{"success": true, "message": "game saved"})
}

// handleLoad replaces the game with the player's saved one, rebuilt
// under the difficulty and mode the save was made with. A corrupt save
// falls back to leaving the current game untouched.
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request, h *gameHandle) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	if s.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "persistence disabled")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	sv, err := s.DB.LoadGame(h.player)
	if errors.Is(err, persistence.ErrNoSave) {
		writeError(w, http.StatusNotFound, "no saved game")
		return
	}
	if err != nil {
		slog.Warn("load failed, keeping current game", "player", h.player, "error", err)
		writeError(w, http.StatusUnprocessableEntity, "saved game unreadable")
		return
	}

	diff := s.Balance.Difficulty(sv.Difficulty)
	mode := s.Balance.Mode(sv.Mode)
	h.game = engine.Restore(sv.State, diff, mode, h.game.Rand, h.hub)
	h.hub.BroadcastState(sv.State)
	writeJSON(w, map[string]any{"success": true, "state": sv.State})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "persistence disabled")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	rows, err := s.DB.Leaderboard(limit)
	if err != nil {
		slog.Error("leaderboard query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "leaderboard unavailable")
		return
	}
	writeJSON(w, map[string]any{"success": true, "data": rows})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "persistence disabled")
		return
	}

	player := r.URL.Query().Get("player")
	if player == "" {
		writeError(w, http.StatusBadRequest, "player query parameter required")
		return
	}

	st, err := s.DB.Stats(player)
	if err != nil {
		slog.Error("stats query failed", "player", player, "error", err)
		writeError(w, http.StatusInternalServerError, "stats unavailable")
		return
	}
	writeJSON(w, map[string]any{"success": true, "data": st})
}
