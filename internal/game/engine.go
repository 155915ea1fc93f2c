// Package game runs the event: the phase state machine, dispatch to the
// active mini-game, quiz scoring and the score ledger.
package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aaronzipp/the-mole/internal/apperr"
	"github.com/aaronzipp/the-mole/internal/minigame"
	"github.com/aaronzipp/the-mole/internal/models"
	"github.com/aaronzipp/the-mole/internal/quiz"
	"github.com/aaronzipp/the-mole/internal/store"
)

// Settings are the tunable rules of an event.
type Settings struct {
	MinPlayers        int
	QuestionsPerRound int
	QuizTarget        string
	Debug             bool
}

func (s Settings) withDefaults() Settings {
	if s.MinPlayers < 2 {
		s.MinPlayers = MinPlayers
	}
	if s.QuestionsPerRound <= 0 {
		s.QuestionsPerRound = QuestionsPerRound
	}
	if s.QuizTarget == "" {
		s.QuizTarget = DefaultQuizTarget
	}
	return s
}

// Engine is the single authority over event state. Every mutating call is
// one transaction, serialized by mu.
type Engine struct {
	mu       sync.Mutex
	store    *store.Store
	lineup   minigame.Lineup
	bank     *quiz.Bank
	rng      *rand.Rand
	now      func() time.Time
	settings Settings
	onChange func(models.Phase)
}

// Option configures an Engine.
type Option func(*Engine)

// WithLineup replaces the default mini-game lineup.
func WithLineup(l minigame.Lineup) Option {
	return func(e *Engine) { e.lineup = l }
}

// WithRand sets the random source used for mole selection and secrets.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithSettings overrides the event rules.
func WithSettings(s Settings) Option {
	return func(e *Engine) { e.settings = s }
}

// WithOnChange registers a callback run after every committed mutation.
func WithOnChange(fn func(models.Phase)) Option {
	return func(e *Engine) { e.onChange = fn }
}

// New creates an engine. Call Init before serving requests.
func New(st *store.Store, bank *quiz.Bank, opts ...Option) (*Engine, error) {
	e := &Engine{
		store: st,
		bank:  bank,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.lineup == nil {
		lineup, err := minigame.Default()
		if err != nil {
			return nil, fmt.Errorf("load mini-games: %w", err)
		}
		e.lineup = lineup
	}
	if len(e.lineup) == 0 {
		return nil, errors.New("empty mini-game lineup")
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	e.settings = e.settings.withDefaults()
	return e, nil
}

// Init creates every mini-game's tables and starts a fresh event if none
// exists yet.
func (e *Engine) Init(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.WithTx(ctx, func(tx *store.Tx) error {
		for _, p := range e.lineup {
			if err := p.SetupDB(ctx, tx.Ext()); err != nil {
				return fmt.Errorf("setup %s: %w", p.Info().ID, err)
			}
		}
		_, err := tx.Event(ctx)
		if errors.Is(err, store.ErrNoEvent) {
			id := uuid.NewString()
			log.Printf("event: initialised event_id=%s", id)
			return e.resetEvent(ctx, tx, id)
		}
		return err
	})
}

// Lineup returns the games in play order.
func (e *Engine) Lineup() minigame.Lineup {
	return e.lineup
}

// update runs fn as one serialized unit of work and reports the resulting
// phase to the change hook once committed.
func (e *Engine) update(ctx context.Context, fn func(tx *store.Tx) error) error {
	var phase models.Phase
	err := func() error {
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.store.WithTx(ctx, func(tx *store.Tx) error {
			if err := fn(tx); err != nil {
				return err
			}
			ev, err := tx.Event(ctx)
			if err != nil {
				return err
			}
			phase = ev.Phase
			return nil
		})
	}()
	if err != nil {
		return err
	}
	if e.onChange != nil {
		e.onChange(phase)
	}
	return nil
}

// Join registers a player, or returns the existing player with that name.
// New names are accepted only in the lobby. The first player is the VIP.
func (e *Engine) Join(ctx context.Context, name string) (models.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Player{}, apperr.New(apperr.CodeInvalidInput, "name is required")
	}
	var joined models.Player
	err := e.update(ctx, func(tx *store.Tx) error {
		existing, ok, err := tx.PlayerByName(ctx, name)
		if err != nil {
			return err
		}
		if ok {
			joined = existing
			return nil
		}
		ev, err := tx.Event(ctx)
		if err != nil {
			return err
		}
		if ev.Phase != models.PhaseLobby {
			return apperr.New(apperr.CodeInvalidPhase, "the event has already started")
		}
		joined, err = tx.InsertPlayer(ctx, name)
		if err != nil {
			return err
		}
		log.Printf("Player joined: id=%d name=%s vip=%v", joined.ID, joined.Name, joined.IsVIP)
		return nil
	})
	return joined, err
}

// Reset discards every player and all progress and starts a new event in
// the lobby. It is allowed from any phase.
func (e *Engine) Reset(ctx context.Context) error {
	id := uuid.NewString()
	err := e.update(ctx, func(tx *store.Tx) error {
		return e.resetEvent(ctx, tx, id)
	})
	if err == nil {
		log.Printf("event: reset event_id=%s", id)
	}
	return err
}

// resetEvent empties every game's tables and the core tables, then writes
// a fresh lobby.
func (e *Engine) resetEvent(ctx context.Context, tx *store.Tx, id string) error {
	for _, p := range e.lineup {
		if err := p.ClearState(ctx, tx.Ext()); err != nil {
			return pluginErr(p, "clear_state", err)
		}
	}
	return tx.Reset(ctx, id)
}

// pluginErr passes coded plugin errors through and turns anything else into
// a plugin_failure, logging the cause.
func pluginErr(p minigame.Plugin, op string, err error) error {
	if err == nil || apperr.IsCoded(err) {
		return err
	}
	log.Printf("plugin failure: game=%s op=%s err=%v", p.Info().ID, op, err)
	return apperr.Wrap(apperr.CodePluginFailure, "the mini-game failed", err)
}

// pickMole selects one player uniformly at random.
func pickMole(rng *rand.Rand, players []models.Player) models.Player {
	return players[rng.Intn(len(players))]
}
