// Package config holds the difficulty and game-mode balance presets.
// Numbers here are game-balance tuning, not economics.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Difficulty scales the per-turn action budget, inflation sensitivity,
// event probability, shock severity, capacity drift range, and final score.
type Difficulty struct {
	Name           string  `yaml:"name" json:"name"`
	ActionsPerTurn int     `yaml:"actions_per_turn" json:"actions_per_turn"`
	InflationMult  float64 `yaml:"inflation_mult" json:"inflation_mult"`
	EventProbMult  float64 `yaml:"event_prob_mult" json:"event_prob_mult"`
	ShockMult      float64 `yaml:"shock_mult" json:"shock_mult"`
	ScoreMult      float64 `yaml:"score_mult" json:"score_mult"`
	DriftMin       float64 `yaml:"drift_min" json:"drift_min"` // Capacity noise lower bound per turn
	DriftMax       float64 `yaml:"drift_max" json:"drift_max"` // Capacity noise upper bound per turn
}

// Mode selects the horizon, starting conditions, and scenario objectives.
type Mode struct {
	Name            string  `yaml:"name" json:"name"`
	TotalDays       int     `yaml:"total_days" json:"total_days"`
	RepeatEvents    bool    `yaml:"repeat_events" json:"repeat_events"` // Triggered events may fire again
	StartEmployment float64 `yaml:"start_employment" json:"start_employment"`
	StartInflation  float64 `yaml:"start_inflation" json:"start_inflation"`
	StartCredit     float64 `yaml:"start_credit" json:"start_credit"`
}

// Normal is the baseline difficulty all multipliers are calibrated against.
func Normal() Difficulty {
	return Difficulty{
		Name:           "normal",
		ActionsPerTurn: 3,
		InflationMult:  1.0,
		EventProbMult:  1.0,
		ShockMult:      1.0,
		ScoreMult:      1.0,
		DriftMin:       -0.1,
		DriftMax:       0.3,
	}
}

// Casual softens shocks and grants an extra action per turn.
func Casual() Difficulty {
	d := Normal()
	d.Name = "casual"
	d.ActionsPerTurn = 4
	d.InflationMult = 0.8
	d.EventProbMult = 0.8
	d.ShockMult = 0.7
	d.ScoreMult = 0.9
	d.DriftMin = 0.0
	d.DriftMax = 0.4
	return d
}

// Hard tightens the action budget and amplifies every shock.
func Hard() Difficulty {
	d := Normal()
	d.Name = "hard"
	d.ActionsPerTurn = 2
	d.InflationMult = 1.3
	d.EventProbMult = 1.2
	d.ShockMult = 1.4
	d.ScoreMult = 1.2
	d.DriftMin = -0.25
	d.DriftMax = 0.25
	return d
}

// Classic is the standard 30-day run.
func Classic() Mode {
	return Mode{
		Name:            "classic",
		TotalDays:       30,
		StartEmployment: 85,
		StartInflation:  2.0,
		StartCredit:     50,
	}
}

// Marathon doubles the horizon and lets events re-trigger.
func Marathon() Mode {
	m := Classic()
	m.Name = "marathon"
	m.TotalDays = 60
	m.RepeatEvents = true
	return m
}

// Crisis starts mid-recession: low employment, deflation risk, frozen credit.
func Crisis() Mode {
	m := Classic()
	m.Name = "crisis"
	m.StartEmployment = 65
	m.StartInflation = 1.0
	m.StartCredit = 30
	return m
}

// DifficultyByName returns the preset for a name, defaulting to Normal.
func DifficultyByName(name string) Difficulty {
	switch name {
	case "casual":
		return Casual()
	case "hard":
		return Hard()
	default:
		return Normal()
	}
}

// ModeByName returns the preset for a name, defaulting to Classic.
func ModeByName(name string) Mode {
	switch name {
	case "marathon":
		return Marathon()
	case "crisis":
		return Crisis()
	default:
		return Classic()
	}
}

// Balance is the optional on-disk override for all presets.
type Balance struct {
	Difficulties map[string]Difficulty `yaml:"difficulties"`
	Modes        map[string]Mode       `yaml:"modes"`
}

// LoadBalance reads a YAML balance file. Missing file is not an error —
// callers fall back to the built-in presets.
func LoadBalance(path string) (*Balance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read balance file: %w", err)
	}

	var b Balance
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse balance file: %w", err)
	}
	return &b, nil
}

// Difficulty returns the named difficulty from the override file, falling
// back to the built-in preset.
func (b *Balance) Difficulty(name string) Difficulty {
	if b != nil {
		if d, ok := b.Difficulties[name]; ok {
			return d
		}
	}
	return DifficultyByName(name)
}

// Mode returns the named mode from the override file, falling back to the
// built-in preset.
func (b *Balance) Mode(name string) Mode {
	if b != nil {
		if m, ok := b.Modes[name]; ok {
			return m
		}
	}
	return ModeByName(name)
}
