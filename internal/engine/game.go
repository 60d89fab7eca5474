// Package engine ties the economy state, event system, and scoring
// together and drives them one turn at a time. All mutation is
// synchronous; a Game has no goroutines of its own.
package engine

import (
	"github.com/talgya/keystroke-kingdom/internal/config"
	"github.com/talgya/keystroke-kingdom/internal/econ"
	"github.com/talgya/keystroke-kingdom/internal/entropy"
	"github.com/talgya/keystroke-kingdom/internal/events"
	"github.com/talgya/keystroke-kingdom/internal/score"
)

// Game is one playthrough: state plus the collaborators that evolve it.
type Game struct {
	State    *econ.State
	Diff     config.Difficulty
	Mode     config.Mode
	Events   *events.System
	Rand     entropy.Source
	Notifier Notifier
}

// NewGame starts a fresh playthrough. A nil source falls back to
// crypto-backed randomness; a nil notifier to a no-op.
func NewGame(diff config.Difficulty, mode config.Mode, src entropy.Source, n Notifier) *Game {
	if src == nil {
		src = entropy.Crypto()
	}
	if n == nil {
		n = NopNotifier{}
	}
	return &Game{
		State:    econ.NewState(diff, mode),
		Diff:     diff,
		Mode:     mode,
		Events:   events.NewSystem(),
		Rand:     src,
		Notifier: n,
	}
}

// Restore rebuilds a Game around a previously persisted state.
func Restore(st *econ.State, diff config.Difficulty, mode config.Mode, src entropy.Source, n Notifier) *Game {
	g := NewGame(diff, mode, src, n)
	g.State = st
	return g
}

// ResolveChoice answers the active event with the indexed choice. False
// means no active event, an out-of-range index, or an unaffordable cost;
// in every failure case nothing was mutated.
func (g *Game) ResolveChoice(index int) (string, bool) {
	result, ok := g.Events.ResolveChoice(g.State, index)
	if !ok {
		return "", false
	}
	g.Notifier.ShowEventResult(result)
	g.checkAchievements()
	return result, true
}

// checkAchievements runs the idempotent unlock pass and surfaces any
// new unlocks.
func (g *Game) checkAchievements() {
	for _, a := range score.CheckAchievements(g.State) {
		g.Notifier.ShowAchievementUnlock(a)
	}
}
