package quiz

import "math/rand"

// Select picks up to count unused non-identity questions at random and
// appends the identity question. When fewer than count remain, all of them
// are taken.
func (b *Bank) Select(rng *rand.Rand, used []int, count int) []int {
	usedSet := make(map[int]bool, len(used))
	for _, id := range used {
		usedSet[id] = true
	}
	var available []int
	for _, q := range b.questions {
		if q.ID == b.identityID || usedSet[q.ID] {
			continue
		}
		available = append(available, q.ID)
	}

	selected := available
	if len(available) > count {
		rng.Shuffle(len(available), func(i, j int) {
			available[i], available[j] = available[j], available[i]
		})
		selected = available[:count]
	}
	out := make([]int, 0, len(selected)+1)
	out = append(out, selected...)
	return append(out, b.identityID)
}

// Hint returns the question shown to playerID as a hint: the round's
// non-identity questions indexed by playerID mod count. It is deterministic
// for a given roster and selection so players can reason about it.
func Hint(selected []int, identityID int, playerID int64) (int, bool) {
	var candidates []int
	for _, id := range selected {
		if id != identityID {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return 0, false
	}
	n := int64(len(candidates))
	idx := ((playerID % n) + n) % n
	return candidates[idx], true
}
