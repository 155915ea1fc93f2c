package store

import (
	"context"
	"fmt"

	"github.com/aaronzipp/the-mole/internal/models"
)

// Selection returns the question ids chosen for round, in selection order.
func (t *Tx) Selection(ctx context.Context, round int) ([]int, error) {
	var ids []int
	q := t.tx.Rebind("SELECT question_id FROM quiz_selections WHERE round_idx = ? ORDER BY position")
	if err := t.tx.SelectContext(ctx, &ids, q, round); err != nil {
		return nil, fmt.Errorf("select quiz selection: %w", err)
	}
	return ids, nil
}

// UsedQuestions returns every question id selected in any round, except
// the reusable identity question.
func (t *Tx) UsedQuestions(ctx context.Context, identityID int) ([]int, error) {
	var ids []int
	q := t.tx.Rebind("SELECT DISTINCT question_id FROM quiz_selections WHERE question_id <> ? ORDER BY question_id")
	if err := t.tx.SelectContext(ctx, &ids, q, identityID); err != nil {
		return nil, fmt.Errorf("select used questions: %w", err)
	}
	return ids, nil
}

// SaveSelection replaces the selection for round.
func (t *Tx) SaveSelection(ctx context.Context, round int, ids []int) error {
	if err := t.exec(ctx, "DELETE FROM quiz_selections WHERE round_idx = ?", round); err != nil {
		return fmt.Errorf("clear quiz selection: %w", err)
	}
	for pos, id := range ids {
		if err := t.exec(ctx, "INSERT INTO quiz_selections (round_idx, position, question_id) VALUES (?, ?, ?)", round, pos, id); err != nil {
			return fmt.Errorf("insert quiz selection: %w", err)
		}
	}
	return nil
}

// ReplaceAnswers stores a player's answers, discarding earlier ones.
func (t *Tx) ReplaceAnswers(ctx context.Context, playerID int64, answers map[int]string) error {
	if err := t.exec(ctx, "DELETE FROM quiz_answers WHERE player_id = ?", playerID); err != nil {
		return fmt.Errorf("clear answers %d: %w", playerID, err)
	}
	for qid, answer := range answers {
		if err := t.exec(ctx, "INSERT INTO quiz_answers (player_id, question_id, answer) VALUES (?, ?, ?)", playerID, qid, answer); err != nil {
			return fmt.Errorf("insert answer %d/%d: %w", playerID, qid, err)
		}
	}
	return nil
}

// Answers returns every stored quiz answer.
func (t *Tx) Answers(ctx context.Context) ([]models.QuizAnswer, error) {
	var answers []models.QuizAnswer
	q := "SELECT player_id, question_id, answer FROM quiz_answers ORDER BY player_id, question_id"
	if err := t.tx.SelectContext(ctx, &answers, q); err != nil {
		return nil, fmt.Errorf("select answers: %w", err)
	}
	return answers, nil
}

// ClearAnswers deletes the round's quiz answers.
func (t *Tx) ClearAnswers(ctx context.Context) error {
	if err := t.exec(ctx, "DELETE FROM quiz_answers"); err != nil {
		return fmt.Errorf("clear answers: %w", err)
	}
	return nil
}
