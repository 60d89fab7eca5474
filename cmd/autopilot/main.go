// Command autopilot plays full runs headlessly with a simple policy.
// Useful for balance tuning and for smoke-testing the engine end to end.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/talgya/keystroke-kingdom/internal/config"
	"github.com/talgya/keystroke-kingdom/internal/econ"
	"github.com/talgya/keystroke-kingdom/internal/engine"
	"github.com/talgya/keystroke-kingdom/internal/entropy"
	"github.com/talgya/keystroke-kingdom/internal/persistence"
)

var (
	difficulty string
	mode       string
	seed       int64
	runs       int
	verbose    bool
	dbPath     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "autopilot",
		Short: "Keystroke Kingdom headless runner",
	}

	playCmd := &cobra.Command{
		Use:   "play",
		Short: "Play one or more full runs with the built-in policy",
		Run:   runPlay,
	}
	playCmd.Flags().StringVarP(&difficulty, "difficulty", "d", "normal", "casual, normal, or hard")
	playCmd.Flags().StringVarP(&mode, "mode", "m", "classic", "classic, marathon, or crisis")
	playCmd.Flags().Int64VarP(&seed, "seed", "s", 42, "Deterministic seed")
	playCmd.Flags().IntVarP(&runs, "runs", "n", 1, "Number of runs (seed increments each run)")
	playCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print every turn")

	lbCmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the high-score table from a local database",
		Run:   runLeaderboard,
	}
	lbCmd.Flags().StringVar(&dbPath, "db", "data/kingdom.db", "Path to the SQLite database")

	rootCmd.AddCommand(playCmd, lbCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runPlay(cmd *cobra.Command, args []string) {
	titleColor := color.New(color.FgCyan, color.Bold)
	titleColor.Printf("\nKeystroke Kingdom autopilot — %s / %s\n\n", difficulty, mode)

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Run", "Seed", "Score", "Employment", "Inflation", "Services", "Shocks", "Badges"}),
	)

	for i := 0; i < runs; i++ {
		s := seed + int64(i)
		g := engine.NewGame(config.DifficultyByName(difficulty), config.ModeByName(mode), entropy.Seeded(s), engine.NopNotifier{})
		playOut(g)

		st := g.State
		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d", s),
			humanize.Comma(int64(st.FinalScore)),
			fmt.Sprintf("%.1f%%", st.Employment),
			fmt.Sprintf("%.1f%%", st.Inflation),
			fmt.Sprintf("%.1f", st.ServicesScore),
			fmt.Sprintf("%d", st.Tracking.ShocksHandled),
			fmt.Sprintf("%d", len(st.MMTBadges)),
		})
	}

	table.Render()
}

// playOut drives one game to completion with a hand-tuned policy:
// counter-cyclical spending, inflation fought with taxes before rates,
// job guarantee on by day 3, capacity investment when utilization runs hot.
func playOut(g *engine.Game) {
	st := g.State

	for !st.GameOver {
		// Events first: their choices spend actions from the same budget.
		if st.ActiveEvent != nil && !resolveEvent(g) {
			break
		}

		for st.ActionsRemaining > 0 {
			if !policyStep(g) {
				break
			}
		}

		advanced := g.NextTurn()
		if verbose && advanced && !st.GameOver {
			fmt.Printf("  day %2d  emp %5.1f%%  infl %4.1f%%  deficit %6.1f  services %5.1f\n",
				st.CurrentDay, st.Employment, st.Inflation, st.Deficit, st.ServicesScore)
		}
		if !advanced && !st.GameOver {
			break
		}
	}
}

func policyStep(g *engine.Game) bool {
	st := g.State

	switch {
	case !st.JGEnabled && st.CurrentDay >= 3:
		return g.ToggleJobGuarantee()
	case st.Inflation > 4.5 && st.TaxRate < econ.MaxTaxRate-2:
		return g.AdjustTax(2)
	case st.Inflation > 5.5 && st.PolicyRate < econ.MaxPolicyRate-0.5:
		return g.AdjustPolicyRate(0.5)
	case st.CapacityUsed > 90:
		return g.InvestInCapacity(lowestCapacity(st))
	case st.Employment < 90 && st.Inflation < 3.5:
		return g.SpendPublic(pickSector(st), 4)
	case st.PrivateCredit > 70:
		return g.RegulatePrivateCredit(econ.CreditTighten)
	case st.Inflation < 1.5 && st.TaxRate > 5:
		return g.AdjustTax(-2)
	default:
		// Nothing worth an action; bank the rest of the turn.
		return false
	}
}

func lowestCapacity(st *econ.State) string {
	c := st.Capacity
	switch {
	case c.Energy <= c.Skills && c.Energy <= c.Logistics:
		return "energy"
	case c.Skills <= c.Logistics:
		return "skills"
	default:
		return "logistics"
	}
}

func pickSector(st *econ.State) string {
	// Alternate service sectors for the services bonus.
	if st.CurrentDay%2 == 0 {
		return "healthcare"
	}
	return "education"
}

// resolveEvent picks the most expensive affordable response, treating
// the action budget as the thing events are for.
func resolveEvent(g *engine.Game) bool {
	def, ok := g.Events.Lookup(g.State.ActiveEvent.ID)
	if !ok {
		return false
	}

	best := -1
	bestCost := -1
	for i, c := range def.Choices {
		if c.Cost <= g.State.ActionsRemaining && c.Cost > bestCost {
			best, bestCost = i, c.Cost
		}
	}
	if best < 0 {
		return false
	}

	msg, ok := g.ResolveChoice(best)
	if ok && verbose {
		fmt.Printf("  event %s: %s\n", def.ID, msg)
	}
	return ok
}

func runLeaderboard(cmd *cobra.Command, args []string) {
	db, err := persistence.Open(dbPath)
	if err != nil {
		color.Red("Error opening database: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	rows, err := db.Leaderboard(50)
	if err != nil {
		color.Red("Error reading leaderboard: %v", err)
		os.Exit(1)
	}
	if len(rows) == 0 {
		color.Yellow("No finished runs yet.")
		return
	}

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Rank", "Player", "Score", "Employment", "Inflation", "Days", "Difficulty", "Mode", "When"}),
	)
	for i, r := range rows {
		when := r.CreatedAt
		if ts, err := time.Parse(time.RFC3339, r.CreatedAt); err == nil {
			when = humanize.Time(ts)
		}
		table.Append([]string{
			humanize.Ordinal(i + 1),
			r.Player,
			humanize.Comma(int64(r.Score)),
			fmt.Sprintf("%.1f%%", r.FinalEmployment),
			fmt.Sprintf("%.1f%%", r.FinalInflation),
			fmt.Sprintf("%d", r.DaysCompleted),
			r.Difficulty,
			r.Mode,
			when,
		})
	}
	table.Render()
}
