package store

import (
	"context"
	"fmt"
	"time"

	"github.com/aaronzipp/the-mole/internal/models"
)

type snapshotRow struct {
	RoundMarker  float64 `db:"round_marker"`
	PlayerID     int64   `db:"player_id"`
	Score        int     `db:"score"`
	RecordedAtMs int64   `db:"recorded_at_ms"`
}

// AppendSnapshots appends to the score history.
func (t *Tx) AppendSnapshots(ctx context.Context, snaps []models.ScoreSnapshot) error {
	for _, s := range snaps {
		err := t.exec(ctx,
			"INSERT INTO score_history (round_marker, player_id, score, recorded_at_ms) VALUES (?, ?, ?, ?)",
			s.RoundMarker, s.PlayerID, s.Score, s.RecordedAt.UnixMilli())
		if err != nil {
			return fmt.Errorf("insert snapshot: %w", err)
		}
	}
	return nil
}

// History returns the score history ordered by round marker, then player.
func (t *Tx) History(ctx context.Context) ([]models.ScoreSnapshot, error) {
	var rows []snapshotRow
	q := `SELECT round_marker, player_id, score, recorded_at_ms FROM score_history
		ORDER BY round_marker, player_id, recorded_at_ms`
	if err := t.tx.SelectContext(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("select history: %w", err)
	}
	out := make([]models.ScoreSnapshot, len(rows))
	for i, r := range rows {
		out[i] = models.ScoreSnapshot{
			RoundMarker: r.RoundMarker,
			PlayerID:    r.PlayerID,
			Score:       r.Score,
			RecordedAt:  time.UnixMilli(r.RecordedAtMs).UTC(),
		}
	}
	return out, nil
}
