package persistence

import (
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/talgya/keystroke-kingdom/internal/econ"
)

// Autosaver throttles best-effort saves so a burst of actions inside one
// turn costs at most one write. Failures are logged, never raised —
// the simulation must keep working with persistence down.
type Autosaver struct {
	db      *DB
	limiter *rate.Limiter
}

// NewAutosaver allows roughly one save per interval second, with a small
// burst for turn boundaries.
func NewAutosaver(db *DB, perSecond float64) *Autosaver {
	return &Autosaver{
		db:      db,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 2),
	}
}

// Save persists the state if the throttle allows it.
func (a *Autosaver) Save(player string, s *econ.State, difficulty, mode string) {
	if a == nil || a.db == nil {
		return
	}
	if !a.limiter.Allow() {
		return
	}
	if err := a.db.SaveGame(player, s, difficulty, mode); err != nil {
		slog.Warn("autosave failed", "player", player, "error", err)
	}
}

// Flush persists unconditionally (end of turn, shutdown).
func (a *Autosaver) Flush(player string, s *econ.State, difficulty, mode string) {
	if a == nil || a.db == nil {
		return
	}
	if err := a.db.SaveGame(player, s, difficulty, mode); err != nil {
		slog.Warn("save failed", "player", player, "error", err)
	}
}
