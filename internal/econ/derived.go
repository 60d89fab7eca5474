// Derived-value cache: bottleneck capacity and aggregate demand are pure
// functions of six fields, memoized against a structural key of exactly
// those inputs. A stale key forces a recompute, so readers can never see
// stale values even if a mutator forgets InvalidateCache; the explicit
// call remains the documented contract and skips the key comparison.
package econ

// cacheKey captures every input the derived values depend on.
type cacheKey struct {
	energy, skills, logistics          float64
	publicSpending, credit, netExports float64
}

func (s *State) currentKey() cacheKey {
	return cacheKey{
		energy:         s.Capacity.Energy,
		skills:         s.Capacity.Skills,
		logistics:      s.Capacity.Logistics,
		publicSpending: s.PublicSpending,
		credit:         s.PrivateCredit,
		netExports:     s.NetExports,
	}
}

// InvalidateCache marks the derived values dirty. Every mutator calls
// this after touching a capacity or demand component.
func (s *State) InvalidateCache() {
	s.cacheValid = false
}

func (s *State) ensureCache() {
	key := s.currentKey()
	if s.cacheValid && key == s.cacheKey {
		return
	}
	s.cacheKey = key
	s.totalCapacity = s.Capacity.Min()
	s.aggDemand = s.PublicSpending + s.PrivateCredit + s.NetExports
	s.cacheValid = true
}

// TotalCapacity returns the bottleneck capacity, the binding supply
// constraint.
func (s *State) TotalCapacity() float64 {
	s.ensureCache()
	return s.totalCapacity
}

// AggregateDemand returns public spending + private credit + net exports.
func (s *State) AggregateDemand() float64 {
	s.ensureCache()
	return s.aggDemand
}

// DemandGap is aggregate demand minus bottleneck capacity. Positive means
// inflationary pressure, negative means slack.
func (s *State) DemandGap() float64 {
	return s.AggregateDemand() - s.TotalCapacity()
}
