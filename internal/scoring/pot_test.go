package scoring

import (
	"testing"
	"testing/quick"
)

func TestGroupPotSharesAddUpToMax(t *testing.T) {
	f := func(earned, max uint16) bool {
		pot := GroupPot{Earned: int(earned), Max: int(max)}.Clamp()
		return pot.MoleShare()+pot.InnocentShare() == pot.Max
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatalf("group pot invariant failed: %v", err)
	}
}

func TestGroupPotClampBounds(t *testing.T) {
	pot := GroupPot{Earned: -40, Max: 300}.Clamp()
	if pot.Earned != 0 || pot.MoleShare() != 300 {
		t.Fatalf("negative earned should clamp to 0, got %+v", pot)
	}
	pot = GroupPot{Earned: 900, Max: 300}.Clamp()
	if pot.Earned != 300 || pot.MoleShare() != 0 {
		t.Fatalf("earned above max should clamp to max, got %+v", pot)
	}
}

func TestManualPotInvariant(t *testing.T) {
	f := func(max uint16, raw uint16) bool {
		m := int(max) + 1
		points := int(raw) % (m + 1)
		pot := ManualPot(points, m)
		return pot.Share(false)+pot.Share(true) == m
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatalf("manual pot invariant failed: %v", err)
	}
}

func TestManualPotFallback(t *testing.T) {
	pot := ManualPot(1000, 0)
	if pot.Max != ManualPotFallback {
		t.Fatalf("expected fallback max %d, got %d", ManualPotFallback, pot.Max)
	}
	if pot.Share(true) != 600 || pot.Share(false) != 1000 {
		t.Fatalf("unexpected shares: mole=%d innocent=%d", pot.Share(true), pot.Share(false))
	}
}

func TestAwardsMerge(t *testing.T) {
	a := Awards{1: 10}
	a.Merge(Awards{1: 5, 2: -3, 3: 0})
	if a[1] != 15 || a[2] != -3 {
		t.Fatalf("unexpected merge result: %v", a)
	}
	if _, ok := a[3]; ok {
		t.Fatalf("zero deltas should not create entries")
	}
}
