package game

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aaronzipp/the-mole/internal/apperr"
	"github.com/aaronzipp/the-mole/internal/minigame"
	"github.com/aaronzipp/the-mole/internal/models"
	"github.com/aaronzipp/the-mole/internal/store"
)

// Action delegates a player's in-game action to the active mini-game. Any
// failure rolls back everything the game wrote.
func (e *Engine) Action(ctx context.Context, playerID int64, action string, payload json.RawMessage) (minigame.Result, error) {
	var result minigame.Result
	err := e.update(ctx, func(tx *store.Tx) error {
		ev, err := tx.Event(ctx)
		if err != nil {
			return err
		}
		if ev.Phase != models.PhaseGameRunning && ev.Phase != models.PhaseScoring {
			return apperr.New(apperr.CodeInvalidPhase, fmt.Sprintf("no mini-game is running during %s", ev.Phase))
		}
		if _, ok, err := tx.Player(ctx, playerID); err != nil {
			return err
		} else if !ok {
			return apperr.New(apperr.CodeNotFound, fmt.Sprintf("unknown player %d", playerID))
		}
		p, err := e.activeGame(ev.RoundIdx)
		if err != nil {
			return err
		}
		result, err = p.HandleAction(ctx, tx.Ext(), playerID, action, payload)
		if err != nil {
			return pluginErr(p, "handle_action", err)
		}
		return nil
	})
	return result, err
}

// SubmitQuiz stores a player's quiz answers, replacing any earlier
// submission, and marks the player as finished.
func (e *Engine) SubmitQuiz(ctx context.Context, playerID int64, answers map[int]string) error {
	return e.update(ctx, func(tx *store.Tx) error {
		ev, err := tx.Event(ctx)
		if err != nil {
			return err
		}
		if ev.Phase != models.PhaseQuiz {
			return apperr.New(apperr.CodeInvalidPhase, fmt.Sprintf("the quiz is not open during %s", ev.Phase))
		}
		if _, ok, err := tx.Player(ctx, playerID); err != nil {
			return err
		} else if !ok {
			return apperr.New(apperr.CodeNotFound, fmt.Sprintf("unknown player %d", playerID))
		}

		selected, err := tx.Selection(ctx, ev.RoundIdx)
		if err != nil {
			return err
		}
		inRound := make(map[int]bool, len(selected))
		for _, id := range selected {
			inRound[id] = true
		}
		for qid := range answers {
			if !inRound[qid] {
				return apperr.New(apperr.CodeInvalidInput, fmt.Sprintf("question %d is not part of this round", qid))
			}
		}

		if err := tx.ReplaceAnswers(ctx, playerID, answers); err != nil {
			return err
		}
		return tx.MarkQuizFinished(ctx, playerID)
	})
}
