package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPresetLookupFallsBack(t *testing.T) {
	if DifficultyByName("hard").ActionsPerTurn != 2 {
		t.Fatal("hard must grant 2 actions")
	}
	if DifficultyByName("nonsense").Name != "normal" {
		t.Fatal("unknown difficulty must fall back to normal")
	}
	if ModeByName("crisis").StartEmployment != 65 {
		t.Fatal("crisis must start at 65 employment")
	}
	if ModeByName("nonsense").Name != "classic" {
		t.Fatal("unknown mode must fall back to classic")
	}
}

func TestMarathonRepeatsEvents(t *testing.T) {
	m := Marathon()
	if !m.RepeatEvents || m.TotalDays != 60 {
		t.Fatalf("unexpected marathon preset: %+v", m)
	}
	if Classic().RepeatEvents {
		t.Fatal("classic must not repeat events")
	}
}

func TestLoadBalanceMissingFile(t *testing.T) {
	b, err := LoadBalance(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
	if b != nil {
		t.Fatal("missing file must yield nil overrides")
	}

	// Nil overrides still resolve to the built-in presets.
	if b.Difficulty("hard").ShockMult != 1.4 {
		t.Fatal("nil balance must fall back to presets")
	}
}

func TestLoadBalanceOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "balance.yaml")
	doc := `difficulties:
  hard:
    name: hard
    actions_per_turn: 1
    inflation_mult: 2.0
    event_prob_mult: 1.5
    shock_mult: 2.0
    score_mult: 1.5
    drift_min: -0.5
    drift_max: 0.1
modes:
  classic:
    name: classic
    total_days: 45
    start_employment: 80
    start_inflation: 2.5
    start_credit: 40
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	b, err := LoadBalance(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if b.Difficulty("hard").ActionsPerTurn != 1 {
		t.Fatal("override must replace the hard preset")
	}
	if b.Difficulty("casual").ActionsPerTurn != 4 {
		t.Fatal("unlisted difficulties must keep their presets")
	}
	if b.Mode("classic").TotalDays != 45 {
		t.Fatal("override must replace the classic preset")
	}
	if b.Mode("marathon").TotalDays != 60 {
		t.Fatal("unlisted modes must keep their presets")
	}
}

func TestLoadBalanceRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "balance.yaml")
	if err := os.WriteFile(path, []byte("{not yaml::::"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadBalance(path); err == nil {
		t.Fatal("malformed YAML must error")
	}
}
