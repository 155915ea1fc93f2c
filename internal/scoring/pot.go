// Package scoring holds the pot-splitting arithmetic and the score ledger.
package scoring

// ManualPotFallback is the pot ceiling used for manual-scoring games whose
// maximum is variable.
const ManualPotFallback = 1600

// Awards maps player id to a point delta for one scoring pass.
type Awards map[int64]int

// Add accumulates delta for player id.
func (a Awards) Add(id int64, delta int) {
	if delta == 0 {
		return
	}
	a[id] += delta
}

// Merge adds every delta of other into a.
func (a Awards) Merge(other Awards) {
	for id, d := range other {
		a.Add(id, d)
	}
}

// GroupPot is a cooperative pot: innocents collectively earn Earned, the mole
// earns what was left on the table.
type GroupPot struct {
	Earned int
	Max    int
}

// Clamp bounds Earned to [0, Max].
func (p GroupPot) Clamp() GroupPot {
	if p.Earned < 0 {
		p.Earned = 0
	}
	if p.Max < 0 {
		p.Max = 0
	}
	if p.Earned > p.Max {
		p.Earned = p.Max
	}
	return p
}

// InnocentShare is what each non-mole player receives.
func (p GroupPot) InnocentShare() int {
	return p.Earned
}

// MoleShare is what the mole receives: the part of the pot the group missed.
func (p GroupPot) MoleShare() int {
	return p.Max - p.Earned
}

// Share returns the pot share for a player with the given role.
func (p GroupPot) Share(isMole bool) int {
	if isMole {
		return p.MoleShare()
	}
	return p.InnocentShare()
}

// ManualPot builds the pot for a facilitator-entered total. max <= 0 marks a
// variable maximum and uses ManualPotFallback.
func ManualPot(points, max int) GroupPot {
	if max <= 0 {
		max = ManualPotFallback
	}
	return GroupPot{Earned: points, Max: max}
}
