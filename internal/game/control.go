package game

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/aaronzipp/the-mole/internal/apperr"
	"github.com/aaronzipp/the-mole/internal/minigame"
	"github.com/aaronzipp/the-mole/internal/models"
	"github.com/aaronzipp/the-mole/internal/quiz"
	"github.com/aaronzipp/the-mole/internal/scoring"
	"github.com/aaronzipp/the-mole/internal/store"
)

// Facilitator commands.
const (
	CmdStartGame    = "start_game"
	CmdExplainRound = "explain_round"
	CmdStartTimer   = "start_timer"
	CmdEndGameEarly = "end_game_early"
	CmdSubmitScore  = "submit_score"
	CmdStartQuiz    = "start_quiz"
	CmdAdvanceRound = "advance_round"
)

// ControlPayload carries optional command arguments.
type ControlPayload struct {
	// Points is the facilitator-entered pot total for submit_score.
	Points *int `json:"points,omitempty"`
}

type command struct {
	from models.Phase
	run  func(e *Engine, ctx context.Context, tx *store.Tx, ev *models.EventState, p ControlPayload) error
}

var commands = map[string]command{
	CmdStartGame:    {models.PhaseLobby, (*Engine).startGame},
	CmdExplainRound: {models.PhaseReveal, (*Engine).explainRound},
	CmdStartTimer:   {models.PhaseExplanation, (*Engine).startTimer},
	CmdEndGameEarly: {models.PhaseGameRunning, (*Engine).endGameEarly},
	CmdSubmitScore:  {models.PhaseScoring, (*Engine).submitScore},
	CmdStartQuiz:    {models.PhaseQuizIntro, (*Engine).startQuiz},
	CmdAdvanceRound: {models.PhaseQuiz, (*Engine).advanceRound},
}

// Control runs a facilitator command. Only the VIP may issue commands, and
// each command is legal from exactly one phase. A failed command leaves the
// event untouched.
func (e *Engine) Control(ctx context.Context, callerID int64, name string, payload ControlPayload) error {
	cmd, ok := commands[name]
	if !ok {
		return apperr.New(apperr.CodeUnknownAction, fmt.Sprintf("unknown command %q", name))
	}
	return e.update(ctx, func(tx *store.Tx) error {
		caller, ok, err := tx.Player(ctx, callerID)
		if err != nil {
			return err
		}
		if !ok || !caller.IsVIP {
			return apperr.New(apperr.CodeForbidden, "only the facilitator can control the event")
		}

		ev, err := tx.Event(ctx)
		if err != nil {
			return err
		}
		if ev.Phase.Terminal() {
			return apperr.New(apperr.CodeInvalidPhase, "the event is over, reset to play again")
		}
		if ev.Phase != cmd.from {
			return apperr.New(apperr.CodeInvalidPhase, fmt.Sprintf("cannot %s during %s", name, ev.Phase))
		}
		from := ev.Phase
		if err := cmd.run(e, ctx, tx, &ev, payload); err != nil {
			return err
		}
		if !from.CanTransitionTo(ev.Phase) {
			return fmt.Errorf("%s produced illegal transition %s -> %s", name, from, ev.Phase)
		}
		if err := tx.SaveEvent(ctx, ev); err != nil {
			return err
		}
		log.Printf("phase: from=%s to=%s round=%d", from, ev.Phase, ev.RoundIdx)
		return nil
	})
}

func (e *Engine) activeGame(round int) (minigame.Plugin, error) {
	p, ok := e.lineup.At(round)
	if !ok {
		return nil, fmt.Errorf("no mini-game for round %d", round)
	}
	return p, nil
}

func (e *Engine) startGame(ctx context.Context, tx *store.Tx, ev *models.EventState, _ ControlPayload) error {
	players, err := tx.Players(ctx)
	if err != nil {
		return err
	}
	if len(players) < e.settings.MinPlayers {
		return apperr.New(apperr.CodeNotEnoughPlayers,
			fmt.Sprintf("need at least %d players, have %d", e.settings.MinPlayers, len(players)))
	}
	mole := pickMole(e.rng, players)
	if err := tx.AssignMole(ctx, mole.ID); err != nil {
		return err
	}
	if e.settings.Debug {
		log.Printf("start_game: mole=%d players=%d", mole.ID, len(players))
	}
	ev.Phase = models.PhaseReveal
	return nil
}

func (e *Engine) explainRound(ctx context.Context, tx *store.Tx, ev *models.EventState, _ ControlPayload) error {
	return e.beginRound(ctx, tx, ev)
}

// beginRound generates the active game's secret state and draws the round's
// quiz questions.
func (e *Engine) beginRound(ctx context.Context, tx *store.Tx, ev *models.EventState) error {
	p, err := e.activeGame(ev.RoundIdx)
	if err != nil {
		return err
	}
	players, err := tx.Players(ctx)
	if err != nil {
		return err
	}
	secret, err := p.GenerateSecretState(ctx, tx.Ext(), e.rng, players)
	if err != nil {
		return pluginErr(p, "generate_secret_state", err)
	}
	raw, err := json.Marshal(secret)
	if err != nil {
		return fmt.Errorf("encode secret: %w", err)
	}

	used, err := tx.UsedQuestions(ctx, e.bank.IdentityID())
	if err != nil {
		return err
	}
	selected := e.bank.Select(e.rng, used, e.settings.QuestionsPerRound)
	if err := tx.SaveSelection(ctx, ev.RoundIdx, selected); err != nil {
		return err
	}

	ev.Secret = raw
	ev.TimerEnd = time.Time{}
	ev.Phase = models.PhaseExplanation
	return nil
}

func (e *Engine) startTimer(_ context.Context, _ *store.Tx, ev *models.EventState, _ ControlPayload) error {
	p, err := e.activeGame(ev.RoundIdx)
	if err != nil {
		return err
	}
	ev.TimerEnd = e.now().Add(p.Info().Duration)
	ev.Phase = models.PhaseGameRunning
	return nil
}

func (e *Engine) endGameEarly(_ context.Context, _ *store.Tx, ev *models.EventState, _ ControlPayload) error {
	ev.Phase = models.PhaseScoring
	return nil
}

// submitScore splits the facilitator's pot for manually scored games, then
// applies the game's own bonuses and snapshots at round+0.5.
func (e *Engine) submitScore(ctx context.Context, tx *store.Tx, ev *models.EventState, payload ControlPayload) error {
	if ev.BonusScoredRound >= ev.RoundIdx {
		return apperr.New(apperr.CodeAlreadyScored, fmt.Sprintf("round %d is already scored", ev.RoundIdx+1))
	}
	p, err := e.activeGame(ev.RoundIdx)
	if err != nil {
		return err
	}
	info := p.Info()
	ledger := scoring.NewLedger(tx, e.now)

	if info.ManualScoring {
		ceiling := info.MaxPoints.PotCeiling()
		points := 0
		if payload.Points != nil {
			points = *payload.Points
		}
		if points < 0 || points > ceiling {
			return apperr.New(apperr.CodeInvalidInput, fmt.Sprintf("points must be between 0 and %d", ceiling))
		}
		if _, err := ledger.SplitPot(ctx, scoring.ManualPot(points, ceiling)); err != nil {
			return err
		}
	}

	players, err := tx.Players(ctx)
	if err != nil {
		return err
	}
	awards, err := p.CalculateScores(ctx, tx.Ext(), players)
	if err != nil {
		return pluginErr(p, "calculate_scores", err)
	}
	if err := ledger.Apply(ctx, awards); err != nil {
		return err
	}
	if err := ledger.Snapshot(ctx, float64(ev.RoundIdx)+0.5); err != nil {
		return err
	}
	ev.BonusScoredRound = ev.RoundIdx
	ev.Phase = models.PhaseQuizIntro
	return nil
}

func (e *Engine) startQuiz(ctx context.Context, tx *store.Tx, ev *models.EventState, _ ControlPayload) error {
	if err := tx.ResetQuizFlags(ctx); err != nil {
		return err
	}
	ev.Phase = models.PhaseQuiz
	return nil
}

// advanceRound scores the quiz, snapshots at round+1.0 and moves on to the
// next game, or to the final reveal after the last one.
func (e *Engine) advanceRound(ctx context.Context, tx *store.Tx, ev *models.EventState, _ ControlPayload) error {
	if ev.QuizScoredRound >= ev.RoundIdx {
		return apperr.New(apperr.CodeAlreadyScored, fmt.Sprintf("quiz of round %d is already scored", ev.RoundIdx+1))
	}
	players, err := tx.Players(ctx)
	if err != nil {
		return err
	}
	answers, err := tx.Answers(ctx)
	if err != nil {
		return err
	}
	ledger := scoring.NewLedger(tx, e.now)
	if err := ledger.Apply(ctx, quiz.Score(players, answers, e.bank.IdentityID())); err != nil {
		return err
	}
	if err := ledger.Snapshot(ctx, float64(ev.RoundIdx)+1.0); err != nil {
		return err
	}
	if err := tx.ClearAnswers(ctx); err != nil {
		return err
	}
	ev.QuizScoredRound = ev.RoundIdx

	if ev.RoundIdx+1 >= len(e.lineup) {
		ev.TimerEnd = time.Time{}
		ev.Phase = models.PhaseFinalReveal
		return nil
	}
	ev.RoundIdx++
	if err := tx.ResetQuizFlags(ctx); err != nil {
		return err
	}
	return e.beginRound(ctx, tx, ev)
}
