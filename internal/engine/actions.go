// The action layer: every player-invocable operation. Each costed action
// passes through State.UseAction first; on a failed budget check nothing
// is mutated and the call reports false.
package engine

import (
	"log/slog"
)

// Insight identifiers surfaced at most once per game each.
const (
	InsightSpendingCreatesMoney   = "spending-creates-money"
	InsightRealResourceLimit      = "real-resource-limit"
	InsightDeficitIsPrivateWealth = "deficit-is-private-wealth"
)

// sectorBonus maps a spending sector to its services payoff.
var sectorBonus = map[string]float64{
	"healthcare":     2,
	"education":      2,
	"green":          2,
	"infrastructure": 1.5,
	"stimulus":       1.5,
	"training":       1.5,
	"consumption":    1,
	"wages":          1,
}

// SpendPublic adds government spending in a sector. Spending is currency
// creation, not a budget draw: issuance rises with every positive amount.
func (g *Game) SpendPublic(sector string, amount float64) bool {
	s := g.State
	if s.GameOver || !s.UseAction() {
		return false
	}

	s.PublicSpending += amount
	if amount > 0 {
		s.CurrencyIssued += amount
	}
	s.TaxesDeleted = s.PublicSpending * s.TaxRate / 100
	s.UpdateSectoralBalances()

	bonus, ok := sectorBonus[sector]
	if !ok {
		bonus = 1
	}
	s.ServicesScore += bonus

	g.maybeShowSpendingInsight()

	s.InvalidateCache()
	g.checkAchievements()
	slog.Debug("public spending", "sector", sector, "amount", amount, "total", s.PublicSpending)
	return true
}

// maybeShowSpendingInsight fires at most one tutorial insight per spend,
// in priority order, each at most once per game. Utilization is computed
// live here: CapacityUsed is a turn-boundary reading and would surface
// the overheating lesson one turn after the spend that caused it.
func (g *Game) maybeShowSpendingInsight() {
	s := g.State
	utilization := s.AggregateDemand() / s.TotalCapacity() * 100
	switch {
	case s.CurrentDay <= 3 && !s.InsightsShown[InsightSpendingCreatesMoney]:
		g.fireInsight(InsightSpendingCreatesMoney)
	case utilization >= 95 && !s.InsightsShown[InsightRealResourceLimit]:
		g.fireInsight(InsightRealResourceLimit)
	case s.Deficit >= 100 && !s.InsightsShown[InsightDeficitIsPrivateWealth]:
		g.fireInsight(InsightDeficitIsPrivateWealth)
	}
}

func (g *Game) fireInsight(id string) {
	s := g.State
	s.InsightsShown[id] = true
	s.MMTBadges[id] = true
	s.MMTScore += 2
	g.Notifier.ShowInsight(id)
}

// InvestInCapacity adds a fixed block to one capacity resource, financed
// by a small spending side effect.
func (g *Game) InvestInCapacity(kind string) bool {
	s := g.State
	if kind != "energy" && kind != "skills" && kind != "logistics" {
		return false
	}
	if s.GameOver || !s.UseAction() {
		return false
	}

	switch kind {
	case "energy":
		s.Capacity.Energy += 10
	case "skills":
		s.Capacity.Skills += 10
	case "logistics":
		s.Capacity.Logistics += 10
	}

	s.PublicSpending += 3
	s.CurrencyIssued += 3
	s.TaxesDeleted = s.PublicSpending * s.TaxRate / 100
	s.UpdateSectoralBalances()
	s.InvalidateCache()
	g.checkAchievements()
	slog.Debug("capacity investment", "kind", kind)
	return true
}

// ImportGoods trades a worse external balance for uniform relief across
// all three capacity bottlenecks.
func (g *Game) ImportGoods() bool {
	s := g.State
	if s.GameOver || !s.UseAction() {
		return false
	}

	s.NetExports -= 5
	s.Capacity.Energy += 2
	s.Capacity.Skills += 2
	s.Capacity.Logistics += 2
	s.UpdateSectoralBalances()
	s.InvalidateCache()
	g.checkAchievements()
	return true
}

// ToggleJobGuarantee flips the JG. Employment and spending effects apply
// on the next turn via the update pipeline.
func (g *Game) ToggleJobGuarantee() bool {
	s := g.State
	if s.GameOver || !s.UseAction() {
		return false
	}
	s.JGEnabled = !s.JGEnabled
	s.InvalidateCache()
	g.checkAchievements()
	slog.Debug("job guarantee toggled", "enabled", s.JGEnabled)
	return true
}

// AdjustTax moves the tax rate by delta within [0, 50], recomputes the
// tax take, and scores the move against the current demand context.
func (g *Game) AdjustTax(delta float64) bool {
	s := g.State
	if s.GameOver || !s.UseAction() {
		return false
	}

	s.TaxRate += delta
	s.ClampPolicy()
	s.TaxesDeleted = s.PublicSpending * s.TaxRate / 100
	s.UpdateSectoralBalances()

	g.scoreTaxDecision(delta)

	s.InvalidateCache()
	g.checkAchievements()
	return true
}

// scoreTaxDecision marks a tax move as MMT-aligned or hawkish. Raising
// into overheating (or cutting into slack) is aligned; raising into
// slack (or cutting into overheating) is the hawkish reflex.
func (g *Game) scoreTaxDecision(delta float64) {
	s := g.State
	overheating := s.DemandGap() > 0 || s.Inflation > 4
	slack := s.DemandGap() < 0 && s.Inflation < 2

	aligned := (delta > 0 && overheating) || (delta < 0 && slack)
	hawkish := (delta > 0 && slack) || (delta < 0 && overheating)

	switch {
	case aligned:
		s.MMTScore += 2
		s.MMTDecisions.Aligned++
	case hawkish:
		s.MMTScore -= 1
		if s.MMTScore < 0 {
			s.MMTScore = 0
		}
		s.MMTDecisions.Hawkish++
	}
}

// AdjustPolicyRate moves the policy rate by delta within [0, 10]. The
// economic effect lands in next turn's credit evolution.
func (g *Game) AdjustPolicyRate(delta float64) bool {
	s := g.State
	if s.GameOver || !s.UseAction() {
		return false
	}
	s.PolicyRate += delta
	s.ClampPolicy()
	g.checkAchievements()
	return true
}

// SetJGWage sets the Job Guarantee wage directly (not delta-based). It
// feeds next turn's JG wage bill.
func (g *Game) SetJGWage(value float64) bool {
	s := g.State
	if s.GameOver || !s.UseAction() {
		return false
	}
	if value < 0 {
		value = 0
	}
	s.JGWage = value
	return true
}

// ApplyMacroprudential sets the credit stance without charging an
// action. Event-choice effects use this path; the player pays via
// RegulatePrivateCredit instead.
func (g *Game) ApplyMacroprudential(stance int) {
	if g.State.GameOver {
		return
	}
	g.State.SetCreditRegulation(stance)
}

// RegulatePrivateCredit is the costed player-facing wrapper around
// ApplyMacroprudential.
func (g *Game) RegulatePrivateCredit(stance int) bool {
	s := g.State
	if s.GameOver || !s.UseAction() {
		return false
	}
	g.ApplyMacroprudential(stance)
	g.checkAchievements()
	return true
}

// ToggleYieldControl flips the yield-control flag. Flavor only: the
// update formulas never read it.
func (g *Game) ToggleYieldControl() bool {
	s := g.State
	if s.GameOver || !s.UseAction() {
		return false
	}
	s.YieldControl = !s.YieldControl
	return true
}

// ToggleIOR flips interest-on-reserves. Flavor only, like YieldControl.
func (g *Game) ToggleIOR() bool {
	s := g.State
	if s.GameOver || !s.UseAction() {
		return false
	}
	s.IOREnabled = !s.IOREnabled
	return true
}
