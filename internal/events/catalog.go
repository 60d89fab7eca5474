// The default event catalog. Each entry is data plus closures over the
// state type; no rendering or dialog concerns live here.
package events

import (
	"fmt"

	"github.com/talgya/keystroke-kingdom/internal/econ"
)

// retax recomputes the tax take after a choice moves the tax rate.
func retax(s *econ.State, delta float64) {
	s.TaxRate += delta
	s.ClampPolicy()
	s.TaxesDeleted = s.PublicSpending * s.TaxRate / 100
}

// spend adds public spending with its currency-issuance side effect.
func spend(s *econ.State, amount float64) {
	s.PublicSpending += amount
	if amount > 0 {
		s.CurrencyIssued += amount
	}
}

// Catalog returns the default event definitions in scan order.
func Catalog() []Definition {
	return []Definition{
		{
			ID:          "credit-boom",
			Title:       "Private Credit Boom",
			Description: "Banks are lending freely and household borrowing is surging. Demand is picking up fast.",
			Lesson:      "Bank lending creates purchasing power the same way government spending does — and can overheat the economy the same way.",
			MinDay:      2, MaxDay: 8,
			Probability: 0.25,
			Condition:   func(s *econ.State) bool { return s.PrivateCredit < 60 },
			Effects:     Effects{PrivateCredit: 8},
			Choices: []Choice{
				{
					Label: "Let it run",
					Cost:  0,
					Apply: func(s *econ.State) string {
						return "You let the boom run. Demand climbs; watch the capacity ceiling."
					},
				},
				{
					Label: "Lean against the wind",
					Cost:  1,
					Apply: func(s *econ.State) string {
						s.SetCreditRegulation(econ.CreditTighten)
						s.PrivateCredit -= 3
						return "Macroprudential screws tightened. Credit growth cools before it curdles."
					},
				},
				{
					Label: "Tax away the froth",
					Cost:  1,
					Apply: func(s *econ.State) string {
						retax(s, 3)
						return fmt.Sprintf("Tax rate nudged to %.0f%% to drain excess demand.", s.TaxRate)
					},
				},
			},
		},
		{
			ID:          "energy-shock",
			Title:       "Energy Price Shock",
			Description: "A supply disruption abroad sends energy prices spiking. Your energy capacity is squeezed.",
			Lesson:      "Inflation from a real supply shock is not cured by demand cuts alone — it is cured by fixing the bottleneck.",
			MinDay:      4, MaxDay: 15,
			Probability: 0.2,
			Effects:     Effects{Energy: -12, Inflation: 1.5},
			Choices: []Choice{
				{
					Label: "Emergency energy imports",
					Cost:  1,
					Apply: func(s *econ.State) string {
						s.NetExports -= 4
						s.Capacity.Energy += 6
						return "Tankers rerouted. The trade balance takes the hit so the grid does not."
					},
				},
				{
					Label: "Subsidize fuel prices",
					Cost:  1,
					Apply: func(s *econ.State) string {
						spend(s, 6)
						s.Inflation += 0.3
						return "Fuel subsidies cushion households but pour a little demand on the fire."
					},
				},
				{
					Label: "Ride it out",
					Cost:  0,
					Apply: func(s *econ.State) string {
						return "No intervention. Prices will clear the shock — eventually."
					},
				},
			},
		},
		{
			// Chain-only follow-up to energy-shock; probability 0 keeps it
			// out of the ordinary scan.
			ID:          "wage-spiral",
			Title:       "Wage-Price Spiral Brewing",
			Description: "Unions cite the cost-of-living spike and demand compensation. Employers plan matching price rises.",
			Lesson:      "A spiral is a distributional fight. A credible price anchor — like a fixed JG wage — can break it.",
			MinDay:      1, MaxDay: 999,
			Probability: 0,
			Condition:   func(s *econ.State) bool { return s.Inflation > 3.5 },
			Effects:     Effects{Inflation: 1.2},
			Choices: []Choice{
				{
					Label: "Anchor with the Job Guarantee",
					Cost:  1,
					Apply: func(s *econ.State) string {
						s.JGEnabled = true
						return "The JG wage becomes the economy's visible price anchor."
					},
				},
				{
					Label: "Raise the policy rate",
					Cost:  1,
					Apply: func(s *econ.State) string {
						s.PolicyRate += 1.5
						s.ClampPolicy()
						return fmt.Sprintf("Policy rate lifted to %.1f%%. Credit growth will slow next turn.", s.PolicyRate)
					},
				},
				{
					Label: "Accept the drift",
					Cost:  0,
					Apply: func(s *econ.State) string {
						return "You wait it out. Expectations are now doing the work against you."
					},
				},
			},
		},
		{
			ID:          "skills-shortage",
			Title:       "Skills Shortage Bites",
			Description: "Employers report unfillable vacancies. The skills base is the economy's tightest constraint.",
			Lesson:      "Training is capacity investment: it raises the ceiling inflation forms against.",
			MinDay:      6, MaxDay: 20,
			Probability: 0.18,
			Condition:   func(s *econ.State) bool { return s.Capacity.Skills < 65 },
			Effects:     Effects{Skills: -8},
			Choices: []Choice{
				{
					Label: "Crash training program",
					Cost:  2,
					Apply: func(s *econ.State) string {
						s.Capacity.Skills += 12
						spend(s, 5)
						s.ServicesScore += 1.5
						return "A national training drive rebuilds the skills base within the quarter."
					},
				},
				{
					Label: "Recruit abroad",
					Cost:  1,
					Apply: func(s *econ.State) string {
						s.Capacity.Skills += 6
						s.NetExports -= 2
						return "Targeted visas fill the worst gaps; remittances widen the external deficit."
					},
				},
				{
					Label: "Let firms sort it out",
					Cost:  0,
					Apply: func(s *econ.State) string {
						return "Firms bid up wages for the same scarce workers. The shortage persists."
					},
				},
			},
		},
		{
			ID:          "logistics-breakdown",
			Title:       "Logistics Breakdown",
			Description: "Port congestion and rail failures snarl the supply chain. Goods pile up in the wrong places.",
			Lesson:      "An economy can have idle workers and shortages at the same time when the plumbing fails.",
			MinDay:      5, MaxDay: 18,
			Probability: 0.18,
			Effects:     Effects{Logistics: -10, Employment: -2},
			Choices: []Choice{
				{
					Label: "Emergency repair works",
					Cost:  1,
					Apply: func(s *econ.State) string {
						s.Capacity.Logistics += 8
						spend(s, 4)
						return "Repair crews work around the clock. Freight moves again."
					},
				},
				{
					Label: "Charter foreign shipping",
					Cost:  1,
					Apply: func(s *econ.State) string {
						s.Capacity.Logistics += 5
						s.NetExports -= 3
						return "Chartered capacity bridges the gap at a price paid abroad."
					},
				},
				{
					Label: "Wait for the backlog to clear",
					Cost:  0,
					Apply: func(s *econ.State) string {
						return "The backlog clears slowly. Shelves stay patchy for a while."
					},
				},
			},
		},
		{
			ID:          "export-windfall",
			Title:       "Export Windfall",
			Description: "A major trading partner's boom pulls in your exports. Foreign demand surges.",
			Lesson:      "Net exports add to domestic demand — a windfall can overheat you as surely as a spending spree.",
			MinDay:      8, MaxDay: 25,
			Probability: 0.15,
			Condition:   func(s *econ.State) bool { return s.NetExports < 5 },
			Effects:     Effects{NetExports: 8},
			Choices: []Choice{
				{
					Label: "Bank the surplus",
					Cost:  0,
					Apply: func(s *econ.State) string {
						return "You let the surplus accumulate. The external sector is now feeding demand."
					},
				},
				{
					Label: "Build capacity buffers",
					Cost:  1,
					Apply: func(s *econ.State) string {
						s.Capacity.Energy += 2
						s.Capacity.Skills += 2
						s.Capacity.Logistics += 2
						return "Windfall earnings are recycled into the capacity base."
					},
				},
				{
					Label: "Cut taxes at home",
					Cost:  1,
					Apply: func(s *econ.State) string {
						retax(s, -3)
						return fmt.Sprintf("Tax rate eased to %.0f%% while the external sector carries demand.", s.TaxRate)
					},
				},
			},
		},
		{
			ID:          "financial-panic",
			Title:       "Financial Panic",
			Description: "An overleveraged lender fails and interbank markets seize. Credit lines are being pulled economy-wide.",
			Lesson:      "Private credit is pro-cyclical: it vanishes exactly when the economy needs spending most. Only the currency issuer can fill that hole.",
			MinDay:      10, MaxDay: 26,
			Probability: 0.15,
			Condition: func(s *econ.State) bool {
				return s.PrivateCredit > 55 || s.CreditRegulation == econ.CreditLoosen
			},
			Effects: Effects{PrivateCredit: -15, Employment: -4},
			Choices: []Choice{
				{
					Label: "Lender of last resort",
					Cost:  1,
					Apply: func(s *econ.State) string {
						s.PrivateCredit += 8
						return "The central bank backstops the system. The run stops at the discount window."
					},
				},
				{
					Label: "Full fiscal backstop",
					Cost:  2,
					Apply: func(s *econ.State) string {
						spend(s, 10)
						s.Employment += 2
						return "Public spending replaces the vanished private demand, job for job."
					},
				},
				{
					Label: "Let the banks fail",
					Cost:  0,
					Apply: func(s *econ.State) string {
						s.PrivateCredit -= 5
						return "Creative destruction, you call it. The credit contraction deepens."
					},
				},
			},
		},
		{
			// Chain-only follow-up to financial-panic.
			ID:          "credit-crunch",
			Title:       "Credit Crunch",
			Description: "Surviving banks hoard reserves and refuse new lending. Solvent firms cannot roll over loans.",
			Lesson:      "After a panic, looser regulation alone cannot force banks to lend into a slump — someone has to spend first.",
			MinDay:      1, MaxDay: 999,
			Probability: 0,
			Condition:   func(s *econ.State) bool { return s.PrivateCredit < 45 },
			Effects:     Effects{PrivateCredit: -8, Employment: -3},
			Choices: []Choice{
				{
					Label: "Loosen macroprudential rules",
					Cost:  1,
					Apply: func(s *econ.State) string {
						s.SetCreditRegulation(econ.CreditLoosen)
						return "Lending rules eased. Banks may lend again — if anyone wants to borrow."
					},
				},
				{
					Label: "Public investment offset",
					Cost:  2,
					Apply: func(s *econ.State) string {
						spend(s, 8)
						s.Capacity.Logistics += 3
						return "Public investment fills the demand hole and leaves infrastructure behind."
					},
				},
				{
					Label: "Trust the market to clear",
					Cost:  0,
					Apply: func(s *econ.State) string {
						return "The market clears — at a lower level of everything."
					},
				},
			},
		},
		{
			ID:          "strike-wave",
			Title:       "Strike Wave",
			Description: "Real wages have fallen behind prices and key sectors walk out. Freight and services are disrupted.",
			Lesson:      "Distributional conflict drives inflation dynamics as much as any aggregate does.",
			MinDay:      12, MaxDay: 24,
			Probability: 0.15,
			Condition:   func(s *econ.State) bool { return s.Inflation > 4 },
			Effects:     Effects{Employment: -3, Logistics: -4},
			Choices: []Choice{
				{
					Label: "Negotiate catch-up wages",
					Cost:  1,
					Apply: func(s *econ.State) string {
						s.Employment += 2
						s.Inflation += 0.4
						return "A settlement restores peace, passing some of the cost into prices."
					},
				},
				{
					Label: "Raise the JG wage floor",
					Cost:  1,
					Apply: func(s *econ.State) string {
						s.JGWage += 2
						s.Employment += 1
						return "A higher public wage floor pulls up the bottom without a general spiral."
					},
				},
				{
					Label: "Hold firm",
					Cost:  0,
					Apply: func(s *econ.State) string {
						s.ServicesScore -= 1
						return "The strikes drag on. Public services feel it first."
					},
				},
			},
		},
		{
			ID:          "partner-recession",
			Title:       "Trading Partner Recession",
			Description: "Your largest export market slides into recession. Orders are being cancelled.",
			Lesson:      "A floating-currency issuer can always replace lost foreign demand with domestic demand.",
			MinDay:      10, MaxDay: 28,
			Probability: 0.15,
			Condition:   func(s *econ.State) bool { return s.NetExports > -15 },
			Effects:     Effects{NetExports: -6},
			Choices: []Choice{
				{
					Label: "Stimulate domestic demand",
					Cost:  1,
					Apply: func(s *econ.State) string {
						spend(s, 6)
						return "Domestic orders replace the lost foreign ones."
					},
				},
				{
					Label: "Export credit support",
					Cost:  1,
					Apply: func(s *econ.State) string {
						s.NetExports += 3
						spend(s, 2)
						return "Subsidized trade finance keeps some order books alive."
					},
				},
				{
					Label: "Absorb the hit",
					Cost:  0,
					Apply: func(s *econ.State) string {
						return "Exporters retrench. The slack shows up in next quarter's numbers."
					},
				},
			},
		},
		{
			ID:          "green-transition",
			Title:       "Green Transition Window",
			Description: "Falling renewable costs open a window: a build-out now would permanently raise energy capacity.",
			Lesson:      "The question is never where the money will come from — it is whether the real resources are available.",
			MinDay:      8, MaxDay: 22,
			Probability: 0.15,
			Condition:   func(s *econ.State) bool { return s.Capacity.Energy < 80 },
			Choices: []Choice{
				{
					Label: "Full build-out",
					Cost:  2,
					Apply: func(s *econ.State) string {
						s.Capacity.Energy += 10
						s.Capacity.Skills += 4
						spend(s, 8)
						s.ServicesScore += 2
						return "Turbines, grids, and the crews trained to run them. The ceiling rises for good."
					},
				},
				{
					Label: "Pilot program",
					Cost:  1,
					Apply: func(s *econ.State) string {
						s.Capacity.Energy += 4
						spend(s, 3)
						s.ServicesScore += 1
						return "A modest pilot proves the model and adds a little headroom."
					},
				},
				{
					Label: "Pass on it",
					Cost:  0,
					Apply: func(s *econ.State) string {
						return "The window narrows. Someone else's economy gets the turbines."
					},
				},
			},
		},
		{
			ID:          "housing-bubble",
			Title:       "Housing Credit Bubble",
			Description: "Mortgage lending is compounding on itself and prices are detaching from incomes.",
			Lesson:      "Interest rates are a blunt tool against asset bubbles; targeted credit regulation is the scalpel.",
			MinDay:      14, MaxDay: 28,
			Probability: 0.15,
			Condition: func(s *econ.State) bool {
				return s.PrivateCredit > 65 && s.CreditRegulation != econ.CreditTighten
			},
			Effects: Effects{PrivateCredit: 10, Inflation: 0.8},
			Choices: []Choice{
				{
					Label: "Tighten lending standards",
					Cost:  1,
					Apply: func(s *econ.State) string {
						s.SetCreditRegulation(econ.CreditTighten)
						s.PrivateCredit -= 5
						return "Loan-to-value caps bite. The bubble deflates instead of bursting."
					},
				},
				{
					Label: "Raise rates across the board",
					Cost:  1,
					Apply: func(s *econ.State) string {
						s.PolicyRate += 2
						s.ClampPolicy()
						return "Every borrower in the economy pays for the housing market's excess."
					},
				},
				{
					Label: "Declare it a supply problem",
					Cost:  0,
					Apply: func(s *econ.State) string {
						return "Committees are formed. The lending continues."
					},
				},
			},
		},
		{
			ID:          "supply-pandemic",
			Title:       "Pandemic Supply Shock",
			Description: "A public-health emergency idles workplaces and snaps supply chains across every sector at once.",
			Lesson:      "When supply collapses, protecting incomes without igniting prices means managing real resources directly.",
			MinDay:      18, MaxDay: 30,
			Probability: 0.12,
			Effects:     Effects{Energy: -6, Skills: -6, Logistics: -6, Employment: -3},
			Choices: []Choice{
				{
					Label: "Health mobilization",
					Cost:  2,
					Apply: func(s *econ.State) string {
						spend(s, 8)
						s.ServicesScore += 3
						s.Employment += 2
						return "Testing, treatment, and paid leave. The workforce comes back sooner."
					},
				},
				{
					Label: "Seal the borders",
					Cost:  1,
					Apply: func(s *econ.State) string {
						s.NetExports -= 3
						s.Capacity.Energy += 3
						s.Capacity.Skills += 3
						s.Capacity.Logistics += 3
						return "Isolation slows the spread at the cost of trade."
					},
				},
				{
					Label: "Keep everything open",
					Cost:  0,
					Apply: func(s *econ.State) string {
						s.Employment -= 2
						return "The economy stays open and the workforce pays for it."
					},
				},
			},
		},
		{
			ID:          "bond-vigilantes",
			Title:       "Bond Vigilante Scare",
			Description: "Financial commentators warn that deficits will 'force' rates up. Markets are testing your resolve.",
			Lesson:      "A currency-issuing government sets its own policy rate. Vigilantes can only move yields the issuer lets them move.",
			MinDay:      10, MaxDay: 26,
			Probability: 0.12,
			Condition: func(s *econ.State) bool {
				return s.Deficit > 80 && !s.YieldControl
			},
			Choices: []Choice{
				{
					Label: "Announce yield control",
					Cost:  1,
					Apply: func(s *econ.State) string {
						s.YieldControl = true
						return "The central bank names its yield and dares the market. The market blinks."
					},
				},
				{
					Label: "Signal austerity",
					Cost:  1,
					Apply: func(s *econ.State) string {
						retax(s, 2)
						s.MMTDecisions.Hawkish++
						return "Taxes rise to soothe headlines, draining demand whether it needed draining or not."
					},
				},
				{
					Label: "Ignore the noise",
					Cost:  0,
					Apply: func(s *econ.State) string {
						return "The scare passes, as scares do when the issuer holds the pen."
					},
				},
			},
		},
	}
}

// Chains returns the default follow-up definitions.
func Chains() []Chain {
	return []Chain{
		{
			ID:          "energy-to-wages",
			Trigger:     "energy-shock",
			FollowUp:    "wage-spiral",
			Probability: 0.6,
			DelayMin:    2,
			DelayMax:    5,
		},
		{
			ID:          "panic-to-crunch",
			Trigger:     "financial-panic",
			FollowUp:    "credit-crunch",
			Probability: 0.5,
			DelayMin:    2,
			DelayMax:    4,
		},
		{
			ID:          "bubble-to-panic",
			Trigger:     "housing-bubble",
			FollowUp:    "financial-panic",
			Probability: 0.35,
			DelayMin:    3,
			DelayMax:    6,
		},
	}
}
