package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aaronzipp/the-mole/internal/models"
)

// ErrNoEvent is returned by Event before the first reset.
var ErrNoEvent = errors.New("event state not initialised")

type eventRow struct {
	EventID          string `db:"event_id"`
	Phase            string `db:"phase"`
	RoundIdx         int    `db:"round_idx"`
	TimerEndMs       int64  `db:"timer_end_ms"`
	DynamicSecret    string `db:"dynamic_secret"`
	BonusScoredRound int    `db:"bonus_scored_round"`
	QuizScoredRound  int    `db:"quiz_scored_round"`
}

// Event loads the singleton event state.
func (t *Tx) Event(ctx context.Context) (models.EventState, error) {
	var row eventRow
	q := `SELECT event_id, phase, round_idx, timer_end_ms, dynamic_secret,
		bonus_scored_round, quiz_scored_round FROM event_state WHERE id = 1`
	err := t.tx.GetContext(ctx, &row, q)
	if errors.Is(err, sql.ErrNoRows) {
		return models.EventState{}, ErrNoEvent
	}
	if err != nil {
		return models.EventState{}, fmt.Errorf("select event state: %w", err)
	}
	if !models.Phase(row.Phase).Valid() {
		return models.EventState{}, fmt.Errorf("event state has unknown phase %q", row.Phase)
	}
	ev := models.EventState{
		EventID:          row.EventID,
		Phase:            models.Phase(row.Phase),
		RoundIdx:         row.RoundIdx,
		Secret:           []byte(row.DynamicSecret),
		BonusScoredRound: row.BonusScoredRound,
		QuizScoredRound:  row.QuizScoredRound,
	}
	if row.TimerEndMs > 0 {
		ev.TimerEnd = time.UnixMilli(row.TimerEndMs).UTC()
	}
	return ev, nil
}

// SaveEvent writes the singleton event state.
func (t *Tx) SaveEvent(ctx context.Context, ev models.EventState) error {
	var timerEnd int64
	if !ev.TimerEnd.IsZero() {
		timerEnd = ev.TimerEnd.UnixMilli()
	}
	secret := string(ev.Secret)
	if secret == "" {
		secret = "{}"
	}
	err := t.exec(ctx, `UPDATE event_state SET event_id = ?, phase = ?, round_idx = ?,
		timer_end_ms = ?, dynamic_secret = ?, bonus_scored_round = ?, quiz_scored_round = ?
		WHERE id = 1`,
		ev.EventID, string(ev.Phase), ev.RoundIdx, timerEnd, secret,
		ev.BonusScoredRound, ev.QuizScoredRound)
	if err != nil {
		return fmt.Errorf("update event state: %w", err)
	}
	return nil
}

// Reset deletes every player, answer, selection and snapshot and writes a
// fresh LOBBY event state.
func (t *Tx) Reset(ctx context.Context, eventID string) error {
	for _, table := range []string{"players", "quiz_selections", "quiz_answers", "score_history", "event_state"} {
		if err := t.exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	err := t.exec(ctx, `INSERT INTO event_state (id, event_id, phase, round_idx, timer_end_ms,
		dynamic_secret, bonus_scored_round, quiz_scored_round) VALUES (1, ?, ?, 0, 0, '{}', -1, -1)`,
		eventID, string(models.PhaseLobby))
	if err != nil {
		return fmt.Errorf("insert event state: %w", err)
	}
	return nil
}
