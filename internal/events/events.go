// Package events implements the shock/opportunity layer: per-turn
// eligibility scanning, difficulty-scaled effect application, delayed
// chain follow-ups, and the player's choice-resolution protocol.
package events

import (
	"log/slog"

	"github.com/talgya/keystroke-kingdom/internal/config"
	"github.com/talgya/keystroke-kingdom/internal/econ"
	"github.com/talgya/keystroke-kingdom/internal/entropy"
)

// Effects holds the direct state deltas applied when an event triggers.
// Zero fields are no-ops. Adverse components (negative capacity, credit,
// or employment deltas and positive inflation deltas) are scaled by the
// difficulty's shock multiplier; favorable components are not.
type Effects struct {
	Inflation      float64
	Employment     float64
	PrivateCredit  float64
	PublicSpending float64
	NetExports     float64
	Energy         float64
	Skills         float64
	Logistics      float64
	ServicesScore  float64
}

// Adverse reports whether any component is a shock rather than a windfall.
func (e Effects) Adverse() bool {
	return e.Inflation > 0 ||
		e.Employment < 0 ||
		e.PrivateCredit < 0 ||
		e.Energy < 0 || e.Skills < 0 || e.Logistics < 0
}

// Choice is one player response to an active event. Apply mutates state
// and returns a human-readable result line for the event history.
type Choice struct {
	Label string
	Cost  int
	Apply func(s *econ.State) string
}

// Definition is one catalog entry. Conditions and choice effects are
// plain closures over the state type.
type Definition struct {
	ID          string
	Title       string
	Description string
	Lesson      string

	MinDay, MaxDay int
	Probability    float64
	Condition      func(s *econ.State) bool

	Effects Effects
	Choices []Choice
}

// Chain binds a trigger event to a probabilistic follow-up with a delay
// window. The follow-up's condition is re-checked at its due day.
type Chain struct {
	ID          string
	Trigger     string
	FollowUp    string
	Probability float64
	DelayMin    int
	DelayMax    int
}

// System holds the event catalog and chain definitions for one game.
type System struct {
	catalog []Definition
	byID    map[string]*Definition
	chains  []Chain
}

// NewSystem builds a System over the default catalog.
func NewSystem() *System {
	return NewSystemWith(Catalog(), Chains())
}

// NewSystemWith builds a System over explicit definitions (used by tests).
func NewSystemWith(catalog []Definition, chains []Chain) *System {
	s := &System{catalog: catalog, chains: chains}
	s.byID = make(map[string]*Definition, len(catalog))
	for i := range s.catalog {
		s.byID[s.catalog[i].ID] = &s.catalog[i]
	}
	return s
}

// Lookup returns the definition for an id.
func (sys *System) Lookup(id string) (*Definition, bool) {
	d, ok := sys.byID[id]
	return d, ok
}

// CheckTriggers runs the per-turn event scan: due chain follow-ups first,
// then ordinary eligibility. At most one event triggers per call; nil
// means the turn passed quietly. No event triggers while one is active.
func (sys *System) CheckTriggers(st *econ.State, diff config.Difficulty, mode config.Mode, src entropy.Source) *Definition {
	if st.ActiveEvent != nil {
		return nil
	}

	if def := sys.popDueChain(st); def != nil {
		sys.trigger(st, def, diff, src, true)
		return def
	}

	for i := range sys.catalog {
		def := &sys.catalog[i]
		if !sys.eligible(st, def, mode) {
			continue
		}
		if src.Float64() < def.Probability*diff.EventProbMult {
			sys.trigger(st, def, diff, src, false)
			return def
		}
	}
	return nil
}

// eligible checks the day window, one-shot rule, and condition predicate.
func (sys *System) eligible(st *econ.State, def *Definition, mode config.Mode) bool {
	if st.CurrentDay < def.MinDay || st.CurrentDay > def.MaxDay {
		return false
	}
	if st.TriggeredEvents[def.ID] && !mode.RepeatEvents {
		return false
	}
	if def.Condition != nil && !def.Condition(st) {
		return false
	}
	return true
}

// popDueChain removes the first pending chain whose due day has arrived
// and returns its follow-up if the condition still holds. A stale chain
// is dropped silently and the ordinary scan proceeds.
func (sys *System) popDueChain(st *econ.State) *Definition {
	for i, pc := range st.PendingChainEvents {
		if pc.TriggerDay > st.CurrentDay {
			continue
		}
		st.PendingChainEvents = append(st.PendingChainEvents[:i], st.PendingChainEvents[i+1:]...)

		def, ok := sys.byID[pc.EventID]
		if !ok {
			slog.Warn("chain references unknown event", "chain", pc.ChainID, "event", pc.EventID)
			return nil
		}
		if def.Condition != nil && !def.Condition(st) {
			slog.Debug("chain condition stale, dropped", "chain", pc.ChainID, "event", pc.EventID)
			return nil
		}
		return def
	}
	return nil
}

// trigger marks the event, applies its effects, schedules follow-ups,
// and installs it as the single active event.
func (sys *System) trigger(st *econ.State, def *Definition, diff config.Difficulty, src entropy.Source, chain bool) {
	st.TriggeredEvents[def.ID] = true

	applyEffects(st, def.Effects, diff.ShockMult)

	for _, c := range sys.chains {
		if c.Trigger != def.ID {
			continue
		}
		if src.Float64() >= c.Probability {
			continue
		}
		delay := c.DelayMin
		if c.DelayMax > c.DelayMin {
			delay += src.IntN(c.DelayMax - c.DelayMin + 1)
		}
		st.PendingChainEvents = append(st.PendingChainEvents, econ.PendingChain{
			ChainID:    c.ID,
			EventID:    c.FollowUp,
			TriggerDay: st.CurrentDay + delay,
		})
		slog.Debug("chain scheduled", "chain", c.ID, "follow_up", c.FollowUp, "due_day", st.CurrentDay+delay)
	}

	st.ActiveEvent = &econ.ActiveEvent{
		ID:      def.ID,
		Day:     st.CurrentDay,
		Chain:   chain,
		Adverse: def.Effects.Adverse(),
	}

	slog.Info("event triggered", "event", def.ID, "day", st.CurrentDay, "chain", chain, "adverse", def.Effects.Adverse())
}

// applyEffects writes the deltas, scaling each adverse component by the
// shock multiplier, then re-applies floors and the balance identity.
func applyEffects(st *econ.State, e Effects, shockMult float64) {
	scale := func(delta float64, adverse bool) float64 {
		if adverse {
			return delta * shockMult
		}
		return delta
	}

	st.Inflation += scale(e.Inflation, e.Inflation > 0)
	st.Employment += scale(e.Employment, e.Employment < 0)
	st.PrivateCredit += scale(e.PrivateCredit, e.PrivateCredit < 0)
	st.Capacity.Energy += scale(e.Energy, e.Energy < 0)
	st.Capacity.Skills += scale(e.Skills, e.Skills < 0)
	st.Capacity.Logistics += scale(e.Logistics, e.Logistics < 0)

	// Spending, exports, and services shifts are never severity-scaled.
	st.PublicSpending += e.PublicSpending
	if e.PublicSpending > 0 {
		st.CurrencyIssued += e.PublicSpending
	}
	st.NetExports += e.NetExports
	st.ServicesScore += e.ServicesScore

	st.FloorIndicators()
	st.UpdateSectoralBalances()
	st.InvalidateCache()
}

// ResolveChoice applies the selected response to the active event. The
// cost check happens before any mutation: an unaffordable choice leaves
// the state untouched and the event still active.
func (sys *System) ResolveChoice(st *econ.State, index int) (string, bool) {
	ae := st.ActiveEvent
	if ae == nil {
		return "", false
	}
	def, ok := sys.byID[ae.ID]
	if !ok || index < 0 || index >= len(def.Choices) {
		return "", false
	}

	choice := def.Choices[index]
	if choice.Cost > st.ActionsRemaining {
		return "", false
	}
	st.ActionsRemaining -= choice.Cost

	result := choice.Apply(st)

	st.EventHistory = append(st.EventHistory, econ.EventRecord{
		Day:     st.CurrentDay,
		EventID: def.ID,
		Choice:  choice.Label,
		Result:  result,
	})

	if ae.Adverse && choice.Cost >= 1 {
		st.Tracking.ShocksHandled++
	}
	if def.Lesson != "" {
		st.MMTBadges[def.ID] = true
	}

	st.ActiveEvent = nil
	st.FloorIndicators()
	st.UpdateSectoralBalances()
	st.InvalidateCache()

	slog.Info("event resolved", "event", def.ID, "choice", choice.Label, "cost", choice.Cost)
	return result, true
}
