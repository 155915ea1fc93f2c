package scoring

import (
	"sort"

	"github.com/aaronzipp/the-mole/internal/models"
)

// SortHistory orders snapshots by round marker, then player id. The sort is
// stable so equal keys keep their recording order.
func SortHistory(history []models.ScoreSnapshot) {
	sort.SliceStable(history, func(i, j int) bool {
		if history[i].RoundMarker != history[j].RoundMarker {
			return history[i].RoundMarker < history[j].RoundMarker
		}
		return history[i].PlayerID < history[j].PlayerID
	})
}

// Markers returns the distinct round markers in ascending order.
func Markers(history []models.ScoreSnapshot) []float64 {
	seen := make(map[float64]bool)
	var out []float64
	for _, s := range history {
		if !seen[s.RoundMarker] {
			seen[s.RoundMarker] = true
			out = append(out, s.RoundMarker)
		}
	}
	sort.Float64s(out)
	return out
}
