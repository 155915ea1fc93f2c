package scoring

import (
	"context"
	"fmt"
	"time"

	"github.com/aaronzipp/the-mole/internal/models"
)

// Registry is the player store the ledger writes through.
type Registry interface {
	Players(ctx context.Context) ([]models.Player, error)
	AddScore(ctx context.Context, playerID int64, delta int) error
	AppendSnapshots(ctx context.Context, snaps []models.ScoreSnapshot) error
}

// Ledger applies score deltas and records history snapshots.
type Ledger struct {
	reg Registry
	now func() time.Time
}

// NewLedger creates a ledger writing through reg.
func NewLedger(reg Registry, now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{reg: reg, now: now}
}

// Apply adds every delta in awards. Each call is additive; calling it twice
// with the same awards applies them twice.
func (l *Ledger) Apply(ctx context.Context, awards Awards) error {
	for id, delta := range awards {
		if delta == 0 {
			continue
		}
		if err := l.reg.AddScore(ctx, id, delta); err != nil {
			return fmt.Errorf("add score player=%d: %w", id, err)
		}
	}
	return nil
}

// SplitPot gives every non-mole player the innocent share and every mole the
// mole share.
func (l *Ledger) SplitPot(ctx context.Context, pot GroupPot) (Awards, error) {
	players, err := l.reg.Players(ctx)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	awards := Awards{}
	for _, p := range players {
		awards.Add(p.ID, pot.Share(p.IsMole))
	}
	return awards, l.Apply(ctx, awards)
}

// Snapshot records every player's current score at marker.
func (l *Ledger) Snapshot(ctx context.Context, marker float64) error {
	players, err := l.reg.Players(ctx)
	if err != nil {
		return fmt.Errorf("list players: %w", err)
	}
	at := l.now()
	snaps := make([]models.ScoreSnapshot, 0, len(players))
	for _, p := range players {
		snaps = append(snaps, models.ScoreSnapshot{
			RoundMarker: marker,
			PlayerID:    p.ID,
			Score:       p.Score,
			RecordedAt:  at,
		})
	}
	return l.reg.AppendSnapshots(ctx, snaps)
}

// Trajectories groups history by player in round-marker order.
func Trajectories(history []models.ScoreSnapshot) map[int64][]models.ScoreSnapshot {
	sorted := make([]models.ScoreSnapshot, len(history))
	copy(sorted, history)
	SortHistory(sorted)
	out := make(map[int64][]models.ScoreSnapshot)
	for _, s := range sorted {
		out[s.PlayerID] = append(out[s.PlayerID], s)
	}
	return out
}
