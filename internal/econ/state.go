// Package econ defines the mutable economy aggregate for a single game.
// One State instance exists per active game; all mutation is synchronous.
package econ

import (
	"github.com/talgya/keystroke-kingdom/internal/config"
)

// Hard floors and clamps on the primary indicators.
const (
	MinCapacity      = 10.0
	MinPrivateCredit = 20.0
	MinEmployment    = 50.0
	MaxEmployment    = 100.0
	MaxTaxRate       = 50.0
	MaxPolicyRate    = 10.0
)

// Credit regulation stances.
const (
	CreditTighten = -1
	CreditNeutral = 0
	CreditLoosen  = 1
)

// Capacity holds the three productive sub-resources. The binding supply
// constraint is the minimum of the three.
type Capacity struct {
	Energy    float64 `json:"energy"`
	Skills    float64 `json:"skills"`
	Logistics float64 `json:"logistics"`
}

// Min returns the bottleneck capacity.
func (c Capacity) Min() float64 {
	m := c.Energy
	if c.Skills < m {
		m = c.Skills
	}
	if c.Logistics < m {
		m = c.Logistics
	}
	return m
}

// Floor raises every sub-resource to the minimum capacity constant.
func (c *Capacity) Floor() {
	if c.Energy < MinCapacity {
		c.Energy = MinCapacity
	}
	if c.Skills < MinCapacity {
		c.Skills = MinCapacity
	}
	if c.Logistics < MinCapacity {
		c.Logistics = MinCapacity
	}
}

// SectoralBalances is the three-sector accounting identity. The three
// fields always sum to zero after UpdateSectoralBalances runs.
type SectoralBalances struct {
	Government float64 `json:"government"`
	Private    float64 `json:"private"`
	External   float64 `json:"external"`
}

// MMTDecisions counts how the player's tax moves matched the demand context.
type MMTDecisions struct {
	Aligned int `json:"aligned"`
	Hawkish int `json:"hawkish"`
}

// ActiveEvent is the single outstanding event awaiting a player choice.
type ActiveEvent struct {
	ID      string `json:"id"`
	Day     int    `json:"day"`
	Chain   bool   `json:"chain"`   // Arrived via a chain follow-up
	Adverse bool   `json:"adverse"` // Any shock component was adverse
}

// EventRecord is one resolved event in the append-only history.
type EventRecord struct {
	Day     int    `json:"day"`
	EventID string `json:"event_id"`
	Choice  string `json:"choice"`
	Result  string `json:"result"`
}

// PendingChain is a scheduled follow-up event keyed by its due day.
type PendingChain struct {
	ChainID    string `json:"chain_id"`
	EventID    string `json:"event_id"`
	TriggerDay int    `json:"trigger_day"`
}

// Snapshot is the per-day indicator log used by scoring and the UI charts.
type Snapshot struct {
	Day           int     `json:"day"`
	Employment    float64 `json:"employment"`
	Inflation     float64 `json:"inflation"`
	CapacityUsed  float64 `json:"capacity_used"`
	PrivateCredit float64 `json:"private_credit"`
	PublicSpend   float64 `json:"public_spending"`
	NetExports    float64 `json:"net_exports"`
	Deficit       float64 `json:"deficit"`
}

// Tracking accumulates the streaks, extremes, and flags that feed
// achievements and the final score.
type Tracking struct {
	FullEmploymentStreak  int `json:"full_employment_streak"`
	StableInflationStreak int `json:"stable_inflation_streak"`
	JGActiveDays          int `json:"jg_active_days"`
	ShocksHandled         int `json:"shocks_handled"`

	PeakInflation    float64 `json:"peak_inflation"`
	LowestEmployment float64 `json:"lowest_employment"`

	TamedInflation bool `json:"tamed_inflation"`
	FastRecovery   bool `json:"fast_recovery"`

	InRecession       bool `json:"in_recession"`
	RecessionStartDay int  `json:"recession_start_day"`

	Snapshots []Snapshot `json:"snapshots"`
}

// ScoreBreakdown itemizes the final score terms.
type ScoreBreakdown struct {
	Base         float64 `json:"base"`
	Shocks       float64 `json:"shocks"`
	Stability    float64 `json:"stability"`
	JobGuarantee float64 `json:"job_guarantee"`
	Insight      float64 `json:"insight"`
	Achievements float64 `json:"achievements"`
	Objectives   float64 `json:"objectives"`
	Subtotal     float64 `json:"subtotal"`
	Multiplier   float64 `json:"multiplier"`
}

// State is the complete economy record for one game. Everything exported
// round-trips through JSON; the derived-value cache does not and is
// rebuilt on demand.
type State struct {
	// Temporal.
	CurrentDay       int `json:"current_day"`
	TotalDays        int `json:"total_days"`
	ActionsRemaining int `json:"actions_remaining"`

	// Primary indicators.
	Employment    float64 `json:"employment"`
	Inflation     float64 `json:"inflation"`
	ServicesScore float64 `json:"services_score"`

	// Productive capacity and utilization.
	Capacity     Capacity `json:"capacity"`
	CapacityUsed float64  `json:"capacity_used"`

	// Demand-side aggregates.
	PublicSpending float64 `json:"public_spending"`
	PrivateCredit  float64 `json:"private_credit"`
	NetExports     float64 `json:"net_exports"` // Negative = trade deficit

	// Policy levers.
	TaxRate          float64 `json:"tax_rate"`
	PolicyRate       float64 `json:"policy_rate"`
	CreditRegulation int     `json:"credit_regulation"` // -1 tighten, 0 neutral, +1 loosen
	JGEnabled        bool    `json:"jg_enabled"`
	YieldControl     bool    `json:"yield_control"` // Flavor only, never enters the formulas
	IOREnabled       bool    `json:"ior_enabled"`   // Flavor only, never enters the formulas
	JGWage           float64 `json:"jg_wage"`
	JGPoolSize       float64 `json:"jg_pool_size"` // Percent of workforce absorbed

	// Currency accounting.
	CurrencyIssued float64          `json:"currency_issued"`
	TaxesDeleted   float64          `json:"taxes_deleted"`
	Deficit        float64          `json:"deficit"`
	Balances       SectoralBalances `json:"sectoral_balances"`

	// Gamification.
	MMTScore     float64         `json:"mmt_score"`
	MMTBadges    map[string]bool `json:"mmt_badges"`
	MMTDecisions MMTDecisions    `json:"mmt_decisions"`
	Achievements map[string]bool `json:"achievements"`

	// Event subsystem.
	TriggeredEvents    map[string]bool `json:"triggered_events"`
	ActiveEvent        *ActiveEvent    `json:"active_event,omitempty"`
	EventHistory       []EventRecord   `json:"event_history"`
	PendingChainEvents []PendingChain  `json:"pending_chain_events"`
	InsightsShown      map[string]bool `json:"insights_shown"`

	Tracking Tracking `json:"tracking"`

	FinalScore     int             `json:"final_score"`
	ScoreBreakdown *ScoreBreakdown `json:"score_breakdown,omitempty"`
	GameOver       bool            `json:"game_over"`

	// Derived-value cache (see derived.go). Never serialized.
	cacheValid    bool
	cacheKey      cacheKey
	totalCapacity float64
	aggDemand     float64
}

// NewState builds a fresh economy from the mode's starting conditions and
// the difficulty's action budget.
func NewState(diff config.Difficulty, mode config.Mode) *State {
	s := &State{
		CurrentDay:       1,
		TotalDays:        mode.TotalDays,
		ActionsRemaining: diff.ActionsPerTurn,

		Employment:    mode.StartEmployment,
		Inflation:     mode.StartInflation,
		ServicesScore: 0,

		Capacity: Capacity{Energy: 70, Skills: 70, Logistics: 70},

		PublicSpending: 40,
		PrivateCredit:  mode.StartCredit,
		NetExports:     -5,

		TaxRate:    25,
		PolicyRate: 2,
		JGWage:     12,

		MMTBadges:       make(map[string]bool),
		Achievements:    make(map[string]bool),
		TriggeredEvents: make(map[string]bool),
		InsightsShown:   make(map[string]bool),

		Tracking: Tracking{LowestEmployment: mode.StartEmployment},
	}
	s.TaxesDeleted = s.PublicSpending * s.TaxRate / 100
	s.UpdateSectoralBalances()
	s.CapacityUsed = minf(100, s.AggregateDemand()/s.TotalCapacity()*100)
	return s
}

// UseAction consumes one action point. It is the single gate guarding
// every costed action: on false the caller must not mutate anything.
func (s *State) UseAction() bool {
	if s.ActionsRemaining <= 0 {
		return false
	}
	s.ActionsRemaining--
	return true
}

// UpdateSectoralBalances recomputes the three-sector identity and the
// deficit. Must run after any change to public spending, taxes deleted,
// or net exports.
func (s *State) UpdateSectoralBalances() {
	s.Balances.Government = -(s.PublicSpending - s.TaxesDeleted)
	s.Balances.External = -s.NetExports
	s.Balances.Private = -s.Balances.Government - s.Balances.External
	s.Deficit = -s.Balances.Government
}

// SetCreditRegulation sets the macroprudential stance. Free of action
// cost: event-choice effects call this directly, while the player-facing
// entry point charges an action first.
func (s *State) SetCreditRegulation(stance int) {
	if stance < CreditTighten {
		stance = CreditTighten
	}
	if stance > CreditLoosen {
		stance = CreditLoosen
	}
	s.CreditRegulation = stance
}

// ClampPolicy re-applies the lever bounds after direct mutation.
func (s *State) ClampPolicy() {
	s.TaxRate = clampf(s.TaxRate, 0, MaxTaxRate)
	s.PolicyRate = clampf(s.PolicyRate, 0, MaxPolicyRate)
}

// FloorIndicators re-applies the hard floors and clamps shared by the
// turn pipeline and event effects.
func (s *State) FloorIndicators() {
	s.Capacity.Floor()
	if s.PrivateCredit < MinPrivateCredit {
		s.PrivateCredit = MinPrivateCredit
	}
	s.Employment = clampf(s.Employment, MinEmployment, MaxEmployment)
	if s.Inflation < 0 {
		s.Inflation = 0
	}
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
