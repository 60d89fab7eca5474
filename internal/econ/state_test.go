package econ

import (
	"encoding/json"
	"testing"

	"github.com/talgya/keystroke-kingdom/internal/config"
)

func TestNewStateStartingConditions(t *testing.T) {
	s := NewState(config.Normal(), config.Classic())

	if s.CurrentDay != 1 {
		t.Fatalf("expected day 1, got %d", s.CurrentDay)
	}
	if s.TotalDays != 30 {
		t.Fatalf("expected 30 days, got %d", s.TotalDays)
	}
	if s.ActionsRemaining != 3 {
		t.Fatalf("expected 3 actions, got %d", s.ActionsRemaining)
	}
	if s.Employment != 85 {
		t.Fatalf("expected employment 85, got %.1f", s.Employment)
	}
	if s.Capacity.Energy != 70 || s.Capacity.Skills != 70 || s.Capacity.Logistics != 70 {
		t.Fatalf("expected capacity 70/70/70, got %+v", s.Capacity)
	}
	if s.TaxesDeleted != 10 {
		t.Fatalf("expected taxes 40*25%% = 10, got %.1f", s.TaxesDeleted)
	}
	if s.MMTBadges == nil || s.Achievements == nil || s.TriggeredEvents == nil || s.InsightsShown == nil {
		t.Fatal("tracking maps must be initialized")
	}
	if s.Tracking.LowestEmployment != 85 {
		t.Fatalf("lowest employment must start at the opening level, got %.1f", s.Tracking.LowestEmployment)
	}
}

func TestCrisisModeStartsDepressed(t *testing.T) {
	s := NewState(config.Normal(), config.Crisis())

	if s.Employment != 65 {
		t.Fatalf("expected employment 65, got %.1f", s.Employment)
	}
	if s.Inflation != 1.0 {
		t.Fatalf("expected inflation 1.0, got %.1f", s.Inflation)
	}
	if s.PrivateCredit != 30 {
		t.Fatalf("expected credit 30, got %.1f", s.PrivateCredit)
	}
}

func TestUseActionExhaustsBudget(t *testing.T) {
	s := NewState(config.Hard(), config.Classic())

	if !s.UseAction() || !s.UseAction() {
		t.Fatal("first two actions must succeed on hard")
	}
	if s.UseAction() {
		t.Fatal("third action must fail with budget exhausted")
	}
	if s.ActionsRemaining != 0 {
		t.Fatalf("budget must not go negative, got %d", s.ActionsRemaining)
	}
}

func TestSectoralBalancesSumToZero(t *testing.T) {
	s := NewState(config.Normal(), config.Classic())

	cases := []struct {
		spending, taxes, exports float64
	}{
		{40, 10, -5},
		{120, 30, 15},
		{0, 0, 0},
		{55.5, 13.875, -21},
	}
	for _, tc := range cases {
		s.PublicSpending = tc.spending
		s.TaxesDeleted = tc.taxes
		s.NetExports = tc.exports
		s.UpdateSectoralBalances()

		sum := s.Balances.Government + s.Balances.Private + s.Balances.External
		if sum < -1e-9 || sum > 1e-9 {
			t.Errorf("balances must sum to zero, got %.9f for %+v", sum, tc)
		}
		if s.Deficit != -s.Balances.Government {
			t.Errorf("deficit must mirror the government balance, got %.2f vs %.2f",
				s.Deficit, -s.Balances.Government)
		}
	}
}

func TestDeficitIsPrivateSurplusInClosedTrade(t *testing.T) {
	s := NewState(config.Normal(), config.Classic())
	s.PublicSpending = 100
	s.TaxesDeleted = 40
	s.NetExports = 0
	s.UpdateSectoralBalances()

	if s.Balances.Private != 60 {
		t.Fatalf("with zero external balance the private surplus must equal the deficit, got %.1f", s.Balances.Private)
	}
}

func TestSetCreditRegulationClamps(t *testing.T) {
	s := NewState(config.Normal(), config.Classic())

	s.SetCreditRegulation(5)
	if s.CreditRegulation != CreditLoosen {
		t.Fatalf("expected clamp to +1, got %d", s.CreditRegulation)
	}
	s.SetCreditRegulation(-5)
	if s.CreditRegulation != CreditTighten {
		t.Fatalf("expected clamp to -1, got %d", s.CreditRegulation)
	}
}

func TestClampPolicyBounds(t *testing.T) {
	s := NewState(config.Normal(), config.Classic())

	s.TaxRate = 90
	s.PolicyRate = -3
	s.ClampPolicy()
	if s.TaxRate != MaxTaxRate {
		t.Fatalf("tax rate must clamp to %v, got %.1f", MaxTaxRate, s.TaxRate)
	}
	if s.PolicyRate != 0 {
		t.Fatalf("policy rate must clamp to 0, got %.1f", s.PolicyRate)
	}
}

func TestFloorIndicators(t *testing.T) {
	s := NewState(config.Normal(), config.Classic())
	s.Capacity = Capacity{Energy: 3, Skills: -1, Logistics: 200}
	s.PrivateCredit = 5
	s.Employment = 10
	s.Inflation = -2

	s.FloorIndicators()

	if s.Capacity.Energy != MinCapacity || s.Capacity.Skills != MinCapacity {
		t.Fatalf("capacity must floor at %v, got %+v", MinCapacity, s.Capacity)
	}
	if s.Capacity.Logistics != 200 {
		t.Fatal("capacities above the floor must be untouched")
	}
	if s.PrivateCredit != MinPrivateCredit {
		t.Fatalf("credit must floor at %v, got %.1f", MinPrivateCredit, s.PrivateCredit)
	}
	if s.Employment != MinEmployment {
		t.Fatalf("employment must clamp at %v, got %.1f", MinEmployment, s.Employment)
	}
	if s.Inflation != 0 {
		t.Fatalf("inflation must floor at 0, got %.1f", s.Inflation)
	}
}

func TestBottleneckCapacity(t *testing.T) {
	c := Capacity{Energy: 80, Skills: 45, Logistics: 90}
	if c.Min() != 45 {
		t.Fatalf("expected bottleneck 45, got %.1f", c.Min())
	}
}

func TestDerivedCacheTracksMutation(t *testing.T) {
	s := NewState(config.Normal(), config.Classic())

	before := s.AggregateDemand()
	if before != 40+50-5 {
		t.Fatalf("expected demand 85, got %.1f", before)
	}

	// Mutate without calling InvalidateCache: the key comparison must
	// still pick up the change.
	s.PublicSpending = 60
	if got := s.AggregateDemand(); got != 105 {
		t.Fatalf("cache served a stale value: got %.1f, want 105", got)
	}

	s.Capacity.Skills = 40
	if got := s.TotalCapacity(); got != 40 {
		t.Fatalf("bottleneck must follow the mutated capacity, got %.1f", got)
	}

	s.InvalidateCache()
	if got := s.DemandGap(); got != 105-40 {
		t.Fatalf("expected gap 65, got %.1f", got)
	}
}

func TestStateRoundTripsThroughJSON(t *testing.T) {
	s := NewState(config.Hard(), config.Marathon())
	s.MMTBadges["credit-boom"] = true
	s.Achievements["jg-champion"] = true
	s.ActiveEvent = &ActiveEvent{ID: "energy-shock", Day: 4, Adverse: true}
	s.PendingChainEvents = append(s.PendingChainEvents, PendingChain{
		ChainID: "energy-to-wages", EventID: "wage-spiral", TriggerDay: 8,
	})
	s.EventHistory = append(s.EventHistory, EventRecord{
		Day: 3, EventID: "credit-boom", Choice: "Tighten lending standards", Result: "boom cooled",
	})
	s.Tracking.Snapshots = append(s.Tracking.Snapshots, Snapshot{Day: 1, Employment: 85})

	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back State
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	again, err := json.Marshal(&back)
	if err != nil {
		t.Fatalf("remarshal: %v", err)
	}
	if string(raw) != string(again) {
		t.Fatal("state must survive a JSON round trip unchanged")
	}

	if back.ActiveEvent == nil || back.ActiveEvent.ID != "energy-shock" {
		t.Fatal("active event lost in round trip")
	}
	if !back.MMTBadges["credit-boom"] {
		t.Fatal("badge map lost in round trip")
	}
	// Derived values must be recomputable on the restored copy.
	if back.TotalCapacity() != s.TotalCapacity() {
		t.Fatal("derived capacity differs after round trip")
	}
}
