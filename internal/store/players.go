package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aaronzipp/the-mole/internal/models"
)

const playerColumns = "id, name, score, is_mole, is_vip, has_finished_quiz"

// Players returns the roster in join order.
func (t *Tx) Players(ctx context.Context) ([]models.Player, error) {
	var players []models.Player
	q := "SELECT " + playerColumns + " FROM players ORDER BY id"
	if err := t.tx.SelectContext(ctx, &players, q); err != nil {
		return nil, fmt.Errorf("select players: %w", err)
	}
	return players, nil
}

// Player returns one player; ok is false when id is unknown.
func (t *Tx) Player(ctx context.Context, id int64) (models.Player, bool, error) {
	var p models.Player
	q := t.tx.Rebind("SELECT " + playerColumns + " FROM players WHERE id = ?")
	err := t.tx.GetContext(ctx, &p, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Player{}, false, nil
	}
	if err != nil {
		return models.Player{}, false, fmt.Errorf("select player %d: %w", id, err)
	}
	return p, true, nil
}

// PlayerByName looks a player up by exact name.
func (t *Tx) PlayerByName(ctx context.Context, name string) (models.Player, bool, error) {
	var p models.Player
	q := t.tx.Rebind("SELECT " + playerColumns + " FROM players WHERE name = ?")
	err := t.tx.GetContext(ctx, &p, q, name)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Player{}, false, nil
	}
	if err != nil {
		return models.Player{}, false, fmt.Errorf("select player %q: %w", name, err)
	}
	return p, true, nil
}

// InsertPlayer adds a player with the next id. The first player is the VIP.
func (t *Tx) InsertPlayer(ctx context.Context, name string) (models.Player, error) {
	var next struct {
		ID    int64 `db:"next_id"`
		Count int   `db:"n"`
	}
	q := "SELECT COALESCE(MAX(id), 0) + 1 AS next_id, COUNT(*) AS n FROM players"
	if err := t.tx.GetContext(ctx, &next, q); err != nil {
		return models.Player{}, fmt.Errorf("next player id: %w", err)
	}
	p := models.Player{ID: next.ID, Name: name, IsVIP: next.Count == 0}
	err := t.exec(ctx,
		"INSERT INTO players (id, name, score, is_mole, is_vip, has_finished_quiz) VALUES (?, ?, 0, ?, ?, ?)",
		p.ID, p.Name, false, p.IsVIP, false)
	if err != nil {
		return models.Player{}, fmt.Errorf("insert player %q: %w", name, err)
	}
	return p, nil
}

// AddScore adds delta to one player's score.
func (t *Tx) AddScore(ctx context.Context, id int64, delta int) error {
	if err := t.exec(ctx, "UPDATE players SET score = score + ? WHERE id = ?", delta, id); err != nil {
		return fmt.Errorf("update score %d: %w", id, err)
	}
	return nil
}

// AssignMole clears every mole flag and sets it on id.
func (t *Tx) AssignMole(ctx context.Context, id int64) error {
	if err := t.exec(ctx, "UPDATE players SET is_mole = ?", false); err != nil {
		return fmt.Errorf("clear moles: %w", err)
	}
	if err := t.exec(ctx, "UPDATE players SET is_mole = ? WHERE id = ?", true, id); err != nil {
		return fmt.Errorf("set mole %d: %w", id, err)
	}
	return nil
}

// ResetQuizFlags marks every player as not having finished the quiz.
func (t *Tx) ResetQuizFlags(ctx context.Context) error {
	if err := t.exec(ctx, "UPDATE players SET has_finished_quiz = ?", false); err != nil {
		return fmt.Errorf("reset quiz flags: %w", err)
	}
	return nil
}

// MarkQuizFinished sets one player's quiz-completion flag.
func (t *Tx) MarkQuizFinished(ctx context.Context, id int64) error {
	if err := t.exec(ctx, "UPDATE players SET has_finished_quiz = ? WHERE id = ?", true, id); err != nil {
		return fmt.Errorf("mark quiz finished %d: %w", id, err)
	}
	return nil
}
