package score

import "github.com/talgya/keystroke-kingdom/internal/econ"

// Achievement is a boolean-condition unlock. Each unlocks at most once
// and immediately adds its points to the MMT score.
type Achievement struct {
	ID          string
	Name        string
	Description string
	Points      float64
	Check       func(s *econ.State) bool
}

// Registry is the full achievement catalog, evaluated in order.
var Registry = []Achievement{
	{
		ID:          "full-employment-streak",
		Name:        "Everyone Works",
		Description: "Hold employment at 95 or above for 10 straight days",
		Points:      15,
		Check:       func(s *econ.State) bool { return s.Tracking.FullEmploymentStreak >= 10 },
	},
	{
		ID:          "price-stability-streak",
		Name:        "Steady Hand",
		Description: "Keep inflation within a point and a half of target for 10 straight days",
		Points:      15,
		Check:       func(s *econ.State) bool { return s.Tracking.StableInflationStreak >= 10 },
	},
	{
		ID:          "inflation-tamer",
		Name:        "Dragon Tamer",
		Description: "Bring inflation back to 3 after it peaked at 8 or worse",
		Points:      20,
		Check:       func(s *econ.State) bool { return s.Tracking.TamedInflation },
	},
	{
		ID:          "fast-recovery",
		Name:        "V-Shaped",
		Description: "Pull out of a recession within five days of its onset",
		Points:      20,
		Check:       func(s *econ.State) bool { return s.Tracking.FastRecovery },
	},
	{
		ID:          "jg-champion",
		Name:        "Employer of Last Resort",
		Description: "Run the Job Guarantee for 15 days",
		Points:      15,
		Check:       func(s *econ.State) bool { return s.Tracking.JGActiveDays >= 15 },
	},
	{
		ID:          "capacity-builder",
		Name:        "Raise the Ceiling",
		Description: "Grow the bottleneck capacity to 100",
		Points:      15,
		Check:       func(s *econ.State) bool { return s.TotalCapacity() >= 100 },
	},
	{
		ID:          "deficit-owl",
		Name:        "Deficit Owl",
		Description: "Run a deficit of 150 with inflation no worse than 3",
		Points:      20,
		Check:       func(s *econ.State) bool { return s.Deficit >= 150 && s.Inflation <= 3 },
	},
	{
		ID:          "shock-absorber",
		Name:        "Shock Absorber",
		Description: "Actively handle three adverse events",
		Points:      15,
		Check:       func(s *econ.State) bool { return s.Tracking.ShocksHandled >= 3 },
	},
	{
		ID:          "export-powerhouse",
		Name:        "Export Powerhouse",
		Description: "Turn the trade balance positive",
		Points:      10,
		Check:       func(s *econ.State) bool { return s.NetExports > 0 },
	},
	{
		ID:          "money-creator",
		Name:        "Keystroke Sovereign",
		Description: "Issue 200 in currency over the run",
		Points:      10,
		Check:       func(s *econ.State) bool { return s.CurrencyIssued >= 200 },
	},
}

var achievementsByID = func() map[string]Achievement {
	m := make(map[string]Achievement, len(Registry))
	for _, a := range Registry {
		m[a.ID] = a
	}
	return m
}()

// ByID returns the achievement definition for an id.
func ByID(id string) (Achievement, bool) {
	a, ok := achievementsByID[id]
	return a, ok
}

// CheckAchievements evaluates the registry against current state and
// returns any newly unlocked achievements. Already-unlocked entries are
// skipped, so a second pass with no state change unlocks nothing.
func CheckAchievements(s *econ.State) []Achievement {
	var unlocked []Achievement
	for _, a := range Registry {
		if s.Achievements[a.ID] {
			continue
		}
		if !a.Check(s) {
			continue
		}
		s.Achievements[a.ID] = true
		s.MMTScore += a.Points
		unlocked = append(unlocked, a)
	}
	return unlocked
}
