// The per-turn update pipeline. Step order is load-bearing: later steps
// read values written by earlier ones.
package engine

import (
	"log/slog"
	"math"

	"github.com/talgya/keystroke-kingdom/internal/econ"
	"github.com/talgya/keystroke-kingdom/internal/entropy"
	"github.com/talgya/keystroke-kingdom/internal/score"
)

// Tracking thresholds.
const (
	fullEmploymentLevel = 95.0
	inflationTarget     = 2.5
	inflationStableBand = 1.5
	recessionLevel      = 75.0
	recoveryLevel       = 85.0
	fastRecoveryWindow  = 5
	tamedInflationPeak  = 8.0
	tamedInflationLevel = 3.0
)

// NextTurn advances the simulation one day. It is a silent no-op after
// game over or while an event awaits resolution; the return value only
// reports whether the turn ran.
func (g *Game) NextTurn() bool {
	s := g.State
	if s.GameOver {
		return false
	}
	if s.ActiveEvent != nil {
		slog.Debug("turn refused, event awaiting resolution", "event", s.ActiveEvent.ID)
		return false
	}

	s.CurrentDay++
	s.ActionsRemaining = g.Diff.ActionsPerTurn

	// Credit evolution: the policy rate drags on growth, the credit
	// stance pushes either way.
	s.PrivateCredit += 0.5 - s.PolicyRate/20 + float64(s.CreditRegulation)*0.3
	if s.PrivateCredit < econ.MinPrivateCredit {
		s.PrivateCredit = econ.MinPrivateCredit
	}

	// Tax drag: a small multiplicative dampener, stronger at higher rates.
	s.PrivateCredit *= 0.98 + (1-s.TaxRate/100*0.7)*0.02
	if s.PrivateCredit < econ.MinPrivateCredit {
		s.PrivateCredit = econ.MinPrivateCredit
	}

	// Tax take is recomputed each turn, not accumulated.
	s.TaxesDeleted = s.PublicSpending * s.TaxRate / 100

	// Job Guarantee wage bill flows into public spending.
	if s.JGEnabled {
		s.JGPoolSize = (100 - s.Employment) * 0.7
		bill := s.JGPoolSize * s.JGWage * 0.01 * 0.1
		s.PublicSpending += bill
		s.CurrencyIssued += bill
	} else {
		s.JGPoolSize = 0
	}

	// Capacity drift: independent difficulty-scaled noise per resource.
	s.Capacity.Energy += entropy.Between(g.Rand, g.Diff.DriftMin, g.Diff.DriftMax)
	s.Capacity.Skills += entropy.Between(g.Rand, g.Diff.DriftMin, g.Diff.DriftMax)
	s.Capacity.Logistics += entropy.Between(g.Rand, g.Diff.DriftMin, g.Diff.DriftMax)
	s.Capacity.Floor()

	s.UpdateSectoralBalances()
	s.InvalidateCache()

	// Inflation formation against the bottleneck capacity.
	total := s.TotalCapacity()
	agg := s.AggregateDemand()
	s.CapacityUsed = math.Min(100, agg/total*100)
	gap := agg - total

	if gap > 0 {
		s.Inflation = 2.0 + math.Pow(gap/total, 1.5)*10*g.Diff.InflationMult
	} else {
		s.Inflation = math.Max(0, 2.0-(-gap)/total*3)
	}
	if s.JGEnabled {
		// The fixed JG wage acts as a price anchor.
		s.Inflation *= 0.9
	}

	// Employment formation.
	base := 60 + agg/total*35
	if base < econ.MinEmployment {
		base = econ.MinEmployment
	}
	if base > econ.MaxEmployment {
		base = econ.MaxEmployment
	}
	s.Employment = base
	if s.JGEnabled {
		s.Employment += (100 - s.Employment) * 0.7
		if s.Employment > econ.MaxEmployment {
			s.Employment = econ.MaxEmployment
		}
		s.Tracking.JGActiveDays++
	}

	g.updateTracking()

	slog.Info("turn advanced",
		"day", s.CurrentDay,
		"employment", round1(s.Employment),
		"inflation", round2(s.Inflation),
		"capacity_used", round1(s.CapacityUsed),
		"private_credit", round1(s.PrivateCredit),
		"deficit", round1(s.Deficit),
	)

	if s.CurrentDay > s.TotalDays {
		score.Finalize(s, g.Diff, g.Mode)
		s.GameOver = true
		return true
	}

	s.InvalidateCache()
	if def := g.Events.CheckTriggers(s, g.Diff, g.Mode, g.Rand); def != nil {
		g.Notifier.ShowEventChoicePrompt(def)
	}
	g.checkAchievements()
	return true
}

// updateTracking maintains streaks, extremes, recession detection, and
// the daily snapshot log.
func (g *Game) updateTracking() {
	s := g.State
	t := &s.Tracking

	if s.Employment >= fullEmploymentLevel {
		t.FullEmploymentStreak++
	} else {
		t.FullEmploymentStreak = 0
	}

	if math.Abs(s.Inflation-inflationTarget) <= inflationStableBand {
		t.StableInflationStreak++
	} else {
		t.StableInflationStreak = 0
	}

	if s.Inflation > t.PeakInflation {
		t.PeakInflation = s.Inflation
	}
	if s.Employment < t.LowestEmployment {
		t.LowestEmployment = s.Employment
	}
	if t.PeakInflation >= tamedInflationPeak && s.Inflation <= tamedInflationLevel {
		t.TamedInflation = true
	}

	// Recession: employment below 75. Fast recovery: back to 85 within
	// five days of onset.
	if s.Employment < recessionLevel && !t.InRecession {
		t.InRecession = true
		t.RecessionStartDay = s.CurrentDay
		slog.Info("recession begins", "day", s.CurrentDay, "employment", round1(s.Employment))
	}
	if t.InRecession && s.Employment >= recoveryLevel {
		t.InRecession = false
		if s.CurrentDay-t.RecessionStartDay <= fastRecoveryWindow {
			t.FastRecovery = true
		}
		slog.Info("recession ends", "day", s.CurrentDay, "duration", s.CurrentDay-t.RecessionStartDay)
	}

	t.Snapshots = append(t.Snapshots, econ.Snapshot{
		Day:           s.CurrentDay,
		Employment:    s.Employment,
		Inflation:     s.Inflation,
		CapacityUsed:  s.CapacityUsed,
		PrivateCredit: s.PrivateCredit,
		PublicSpend:   s.PublicSpending,
		NetExports:    s.NetExports,
		Deficit:       s.Deficit,
	})
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
