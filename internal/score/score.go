// Package score computes the end-of-run score and evaluates achievement
// and scenario-objective unlocks from the tracking data.
package score

import (
	"log/slog"
	"math"

	"github.com/talgya/keystroke-kingdom/internal/config"
	"github.com/talgya/keystroke-kingdom/internal/econ"
)

// Objective is a mode-specific end-of-run target worth bonus points.
type Objective struct {
	ID          string
	Description string
	Points      float64
	Check       func(s *econ.State) bool
}

// Objectives returns the scenario objectives for a mode name.
func Objectives(mode string) []Objective {
	switch mode {
	case "marathon":
		return []Objective{
			{
				ID:          "endurance",
				Description: "Finish the long haul with employment at 85 or better",
				Points:      75,
				Check:       func(s *econ.State) bool { return s.Employment >= 85 },
			},
			{
				ID:          "service-state",
				Description: "Accumulate 60 services points",
				Points:      50,
				Check:       func(s *econ.State) bool { return s.ServicesScore >= 60 },
			},
		}
	case "crisis":
		return []Objective{
			{
				ID:          "recovery",
				Description: "Pull employment back to 85 from the crisis floor",
				Points:      100,
				Check:       func(s *econ.State) bool { return s.Employment >= 85 },
			},
			{
				ID:          "credit-restored",
				Description: "Restore private credit to 45",
				Points:      50,
				Check:       func(s *econ.State) bool { return s.PrivateCredit >= 45 },
			},
			{
				ID:          "no-deflation",
				Description: "End the run clear of deflation",
				Points:      50,
				Check:       func(s *econ.State) bool { return s.Inflation >= 1 },
			},
		}
	default: // classic
		return []Objective{
			{
				ID:          "full-employment-finish",
				Description: "Finish with employment at 90 or better",
				Points:      50,
				Check:       func(s *econ.State) bool { return s.Employment >= 90 },
			},
			{
				ID:          "stable-prices-finish",
				Description: "Finish with inflation at or below 3 percent",
				Points:      50,
				Check:       func(s *econ.State) bool { return s.Inflation <= 3 },
			},
		}
	}
}

// Finalize computes the multi-term final score, writes the breakdown onto
// the state, and returns the rounded total.
func Finalize(s *econ.State, diff config.Difficulty, mode config.Mode) int {
	bd := econ.ScoreBreakdown{Multiplier: diff.ScoreMult}

	bd.Base = math.Max(0, s.Employment*2+s.ServicesScore*1.5-math.Abs(s.Inflation-2.5)*10)
	bd.Shocks = float64(s.Tracking.ShocksHandled) * 10
	bd.Stability = float64(s.Tracking.FullEmploymentStreak+s.Tracking.StableInflationStreak) * 2
	bd.JobGuarantee = float64(s.Tracking.JGActiveDays) * 0.5
	bd.Insight = s.MMTScore * 0.5

	for id := range s.Achievements {
		if a, ok := achievementsByID[id]; ok {
			bd.Achievements += a.Points
		}
	}

	for _, obj := range Objectives(mode.Name) {
		if obj.Check(s) {
			bd.Objectives += obj.Points
			slog.Info("scenario objective met", "mode", mode.Name, "objective", obj.ID, "points", obj.Points)
		}
	}

	bd.Subtotal = bd.Base + bd.Shocks + bd.Stability + bd.JobGuarantee + bd.Insight + bd.Achievements + bd.Objectives
	total := int(math.Round(bd.Subtotal * diff.ScoreMult))

	s.ScoreBreakdown = &bd
	s.FinalScore = total

	slog.Info("final score",
		"total", total,
		"base", bd.Base,
		"shocks", bd.Shocks,
		"stability", bd.Stability,
		"jg", bd.JobGuarantee,
		"insight", bd.Insight,
		"achievements", bd.Achievements,
		"objectives", bd.Objectives,
		"multiplier", diff.ScoreMult,
	)
	return total
}
