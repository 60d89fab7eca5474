// Package advisor answers free-text player questions about the current
// economy. The canned implementation is keyword matching over a state
// snapshot; correctness never depends on any external service.
package advisor

import (
	"fmt"
	"strings"

	"github.com/talgya/keystroke-kingdom/internal/econ"
)

// Advisor produces a response to a player question.
type Advisor interface {
	Ask(question string, snap Snapshot) string
}

// Snapshot is the read-only view of state the advisor reasons over.
type Snapshot struct {
	Day           int
	TotalDays     int
	Employment    float64
	Inflation     float64
	CapacityUsed  float64
	DemandGap     float64
	Deficit       float64
	PrivateCredit float64
	NetExports    float64
	TaxRate       float64
	PolicyRate    float64
	JGEnabled     bool
}

// Snap captures the advisor's view of a state.
func Snap(s *econ.State) Snapshot {
	return Snapshot{
		Day:           s.CurrentDay,
		TotalDays:     s.TotalDays,
		Employment:    s.Employment,
		Inflation:     s.Inflation,
		CapacityUsed:  s.CapacityUsed,
		DemandGap:     s.DemandGap(),
		Deficit:       s.Deficit,
		PrivateCredit: s.PrivateCredit,
		NetExports:    s.NetExports,
		TaxRate:       s.TaxRate,
		PolicyRate:    s.PolicyRate,
		JGEnabled:     s.JGEnabled,
	}
}

// Canned is the offline advisor: keyword rules over the snapshot.
type Canned struct{}

// Ask matches the question against topic keywords, most specific first.
func (Canned) Ask(question string, snap Snapshot) string {
	q := strings.ToLower(question)

	contains := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(q, w) {
				return true
			}
		}
		return false
	}

	switch {
	case contains("job guarantee", "jg ", " jg", "guarantee"):
		if snap.JGEnabled {
			return "The Job Guarantee is running. It absorbs a share of the unemployed at the fixed JG wage, which also anchors prices — watch the wage bill feed into public spending each turn."
		}
		return "The Job Guarantee is off. Enabling it absorbs unemployment into public-financed jobs and damps inflation through the fixed wage anchor."

	case contains("inflation", "price", "prices"):
		if snap.DemandGap > 0 {
			return fmt.Sprintf("Inflation is %.1f%% and demand exceeds capacity by %.0f. That gap is the cause: cool demand with taxes, or better, raise the capacity ceiling with investment.", snap.Inflation, snap.DemandGap)
		}
		return fmt.Sprintf("Inflation is %.1f%% with slack in the economy. There is room to spend before prices respond.", snap.Inflation)

	case contains("unemploy", "employment", "jobs", "work"):
		if snap.Employment < 75 {
			return fmt.Sprintf("Employment is %.0f%% — recession territory. Public spending or the Job Guarantee puts people to work directly; waiting for credit to recover does not.", snap.Employment)
		}
		return fmt.Sprintf("Employment is %.0f%%. Demand relative to capacity drives it: more net spending raises it, up to the real limit.", snap.Employment)

	case contains("deficit", "debt", "afford", "money"):
		return fmt.Sprintf("The deficit is %.0f — and to the gram, it is the private sector's surplus. The constraint on a currency issuer is real resources and inflation, not solvency. Capacity is %.0f%% used.", snap.Deficit, snap.CapacityUsed)

	case contains("tax"):
		return fmt.Sprintf("The tax rate is %.0f%%. Taxes do not fund spending — they delete currency and release real resources. Raise them when demand outruns capacity, not as a piggy bank.", snap.TaxRate)

	case contains("interest", "rate", "monetary"):
		return fmt.Sprintf("The policy rate is %.1f%%. It works indirectly, slowing private credit growth next turn. It is a blunt tool compared with fiscal policy or credit regulation.", snap.PolicyRate)

	case contains("export", "import", "trade"):
		if snap.NetExports < 0 {
			return fmt.Sprintf("Net exports stand at %.0f — a trade deficit, meaning the rest of the world is net-supplying you real goods. Imports also relieve capacity bottlenecks.", snap.NetExports)
		}
		return fmt.Sprintf("Net exports stand at %.0f. External demand adds to the pressure on your capacity like any other spending.", snap.NetExports)

	case contains("capacity", "invest", "bottleneck", "supply"):
		return fmt.Sprintf("Capacity utilization is %.0f%%. The binding constraint is the weakest of energy, skills, and logistics — invest in the lowest one, since the bottleneck sets the inflation ceiling.", snap.CapacityUsed)

	case contains("credit", "bank", "lend"):
		return fmt.Sprintf("Private credit is %.0f and pro-cyclical: it grows in booms and vanishes in panics. The policy rate and macroprudential stance steer it each turn.", snap.PrivateCredit)

	default:
		return fmt.Sprintf("Day %d of %d: employment %.0f%%, inflation %.1f%%, capacity %.0f%% used. Ask about inflation, employment, the deficit, taxes, trade, credit, or the Job Guarantee.",
			snap.Day, snap.TotalDays, snap.Employment, snap.Inflation, snap.CapacityUsed)
	}
}
