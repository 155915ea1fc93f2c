package game

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/aaronzipp/the-mole/internal/minigame"
	"github.com/aaronzipp/the-mole/internal/models"
	"github.com/aaronzipp/the-mole/internal/quiz"
	"github.com/aaronzipp/the-mole/internal/scoring"
	"github.com/aaronzipp/the-mole/internal/store"
)

// RosterEntry is a player as everyone sees them. IsMole is set only once the
// mole has been revealed.
type RosterEntry struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Score           int    `json:"score"`
	IsVIP           bool   `json:"is_vip"`
	HasFinishedQuiz bool   `json:"has_finished_quiz"`
	IsMole          *bool  `json:"is_mole,omitempty"`
}

// Me is the requesting player's own record.
type Me struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	IsVIP           bool   `json:"is_vip"`
	IsMole          bool   `json:"is_mole"`
	HasFinishedQuiz bool   `json:"has_finished_quiz"`
}

// RoundInfo is the 1-based round counter.
type RoundInfo struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// GameContent is the active game's metadata.
type GameContent struct {
	minigame.Info
	DurationSeconds int `json:"duration"`
}

// QuizHint is the question a player is nudged towards during a round.
type QuizHint struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// StateView is the projection served to one client.
type StateView struct {
	EventID   string                 `json:"event_id"`
	Phase     models.Phase           `json:"phase"`
	TimerEnd  *time.Time             `json:"timer_end,omitempty"`
	Players   []RosterEntry          `json:"players"`
	RoundInfo RoundInfo              `json:"round_info"`
	History   []models.ScoreSnapshot `json:"history,omitempty"`

	Me           *Me                 `json:"me,omitempty"`
	GameContent  *GameContent        `json:"game_content,omitempty"`
	GameSpecific *minigame.View      `json:"game_specific,omitempty"`
	SecretInfo   string              `json:"secret_info,omitempty"`
	QuizHint     *QuizHint           `json:"quiz_hint,omitempty"`
	MaxPoints    *minigame.MaxPoints `json:"max_points,omitempty"`
	QuizData     []quiz.Question     `json:"quiz_data,omitempty"`
}

// State projects the event for playerID. A zero or unknown playerID gets
// only the public part.
func (e *Engine) State(ctx context.Context, playerID int64) (StateView, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	var view StateView
	err := e.store.WithReadTx(ctx, func(tx *store.Tx) error {
		ev, err := tx.Event(ctx)
		if err != nil {
			return err
		}
		players, err := tx.Players(ctx)
		if err != nil {
			return err
		}

		view = StateView{
			EventID:   ev.EventID,
			Phase:     ev.Phase,
			Players:   roster(players, ev.Phase == models.PhaseFinalReveal),
			RoundInfo: RoundInfo{Current: ev.RoundIdx + 1, Total: len(e.lineup)},
		}
		if !ev.TimerEnd.IsZero() {
			end := ev.TimerEnd
			view.TimerEnd = &end
		}
		if ev.Phase == models.PhaseFinalReveal {
			history, err := tx.History(ctx)
			if err != nil {
				return err
			}
			scoring.SortHistory(history)
			view.History = history
		}

		var me models.Player
		found := false
		for _, p := range players {
			if p.ID == playerID {
				me, found = p, true
				break
			}
		}
		if !found {
			return nil
		}
		view.Me = &Me{ID: me.ID, Name: me.Name, IsVIP: me.IsVIP, IsMole: me.IsMole, HasFinishedQuiz: me.HasFinishedQuiz}
		return e.playerState(ctx, tx, ev, me, players, &view)
	})
	return view, err
}

func roster(players []models.Player, revealMole bool) []RosterEntry {
	out := make([]RosterEntry, len(players))
	for i, p := range players {
		out[i] = RosterEntry{
			ID:              p.ID,
			Name:            p.Name,
			Score:           p.Score,
			IsVIP:           p.IsVIP,
			HasFinishedQuiz: p.HasFinishedQuiz,
		}
		if revealMole {
			isMole := p.IsMole
			out[i].IsMole = &isMole
		}
	}
	return out
}

func names(players []models.Player) []string {
	out := make([]string, len(players))
	for i, p := range players {
		out[i] = p.Name
	}
	return out
}

// playerState adds the role-scoped part of the view. Non-moles never get
// mole-only text or the self disclosure.
func (e *Engine) playerState(ctx context.Context, tx *store.Tx, ev models.EventState, me models.Player, players []models.Player, view *StateView) error {
	switch {
	case ev.Phase.ShowsGameContent():
		p, err := e.activeGame(ev.RoundIdx)
		if err != nil {
			return err
		}
		info := p.Info()
		view.GameContent = &GameContent{Info: info, DurationSeconds: int(info.Duration / time.Second)}

		var secret minigame.Secret
		if len(ev.Secret) > 0 {
			if err := json.Unmarshal(ev.Secret, &secret); err != nil {
				return fmt.Errorf("decode secret: %w", err)
			}
		}
		// A failing view must not take the whole state down with it.
		if gv, err := p.PlayerView(ctx, tx.Ext(), me, secret); err != nil {
			log.Printf("state: player view failed game=%s player=%d err=%v", info.ID, me.ID, err)
		} else {
			if !me.IsMole {
				gv.SelfDisclosure = ""
			}
			view.GameSpecific = &gv
		}
		if me.IsMole {
			view.SecretInfo = p.MoleText(secret)
		} else {
			view.SecretInfo = p.InnocentText(secret)
		}

		selected, err := tx.Selection(ctx, ev.RoundIdx)
		if err != nil {
			return err
		}
		if hintID, ok := quiz.Hint(selected, e.bank.IdentityID(), me.ID); ok {
			if q, ok := e.bank.Render(hintID, e.settings.QuizTarget, nil); ok {
				view.QuizHint = &QuizHint{Text: q.Text, Options: q.Options}
			}
		}
		if ev.Phase == models.PhaseScoring {
			mp := info.MaxPoints
			view.MaxPoints = &mp
		}

	case ev.Phase == models.PhaseQuiz:
		selected, err := tx.Selection(ctx, ev.RoundIdx)
		if err != nil {
			return err
		}
		view.QuizData = e.bank.RenderAll(selected, e.settings.QuizTarget, names(players))
	}
	return nil
}
