// Package minigame defines the contract every mini-game satisfies and the
// fixed lineup of games played during an event.
package minigame

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aaronzipp/the-mole/internal/models"
	"github.com/aaronzipp/the-mole/internal/scoring"
)

//go:embed data/*.json
var dataFS embed.FS

// DB is the request transaction handed to plugins for their private tables.
type DB = sqlx.ExtContext

// Kind identifies a mini-game.
type Kind string

const (
	KindWhoAmI     Kind = "who-am-i"
	KindChess      Kind = "chess-challenges"
	KindDictionary Kind = "dictionary-dudes"
	KindRisky      Kind = "risky-business"
)

// MaxPoints is either a fixed number or the "Variable" marker.
type MaxPoints struct {
	Value    int
	Variable bool
}

// Fixed returns a fixed maximum.
func Fixed(v int) MaxPoints { return MaxPoints{Value: v} }

// Variable returns the variable marker.
func Variable() MaxPoints { return MaxPoints{Variable: true} }

// PotCeiling is the maximum used for manual pot splitting.
func (m MaxPoints) PotCeiling() int {
	if m.Variable {
		return scoring.ManualPotFallback
	}
	return m.Value
}

func (m MaxPoints) MarshalJSON() ([]byte, error) {
	if m.Variable {
		return []byte(`"Variable"`), nil
	}
	return json.Marshal(m.Value)
}

// Info is a game's static metadata.
type Info struct {
	ID               Kind          `json:"id"`
	Title            string        `json:"title"`
	Duration         time.Duration `json:"-"`
	MaxPoints        MaxPoints     `json:"max_points"`
	TeamDistribution string        `json:"team_distribution"`
	Rules            string        `json:"description"`

	// ManualScoring marks games whose pot is entered by the facilitator.
	ManualScoring bool `json:"-"`
}

// Intel is the hidden per-player assignment shown on the mole's briefing.
type Intel struct {
	PlayerID  int64    `json:"player_id"`
	Name      string   `json:"name"`
	Character string   `json:"character,omitempty"`
	Tasks     []string `json:"tasks,omitempty"`
}

// Secret is a round's dynamic secret.
type Secret struct {
	Game  Kind     `json:"game"`
	Intel []Intel  `json:"intel,omitempty"`
	Words []string `json:"words,omitempty"`
}

// TaskView is one of the viewer's own tasks.
type TaskView struct {
	Index  int    `json:"idx"`
	Desc   string `json:"desc"`
	Points int    `json:"points"`
	Type   string `json:"type,omitempty"`
	Done   bool   `json:"done"`
}

// HiddenTask is another player's task. It has no completion field.
type HiddenTask struct {
	Desc   string `json:"desc"`
	Points int    `json:"points"`
}

// OtherPlayer is another player's public assignment.
type OtherPlayer struct {
	Name      string `json:"name"`
	Character string `json:"char"`
}

// Stats are per-player counters.
type Stats struct {
	Questions int  `json:"questions,omitempty"`
	Strikes   int  `json:"strikes,omitempty"`
	Solved    bool `json:"solved,omitempty"`
	Points    int  `json:"points,omitempty"`
	Moves     int  `json:"moves,omitempty"`
	GameWon   bool `json:"game_won,omitempty"`
}

// View is a player's projection of a game's private state.
type View struct {
	GameID         Kind          `json:"game_id"`
	RoleText       string        `json:"role_text"`
	Tasks          []TaskView    `json:"tasks,omitempty"`
	GroupTasks     []TaskView    `json:"group_tasks,omitempty"`
	IndivTasks     []TaskView    `json:"indiv_tasks,omitempty"`
	AnonymousTasks []HiddenTask  `json:"anonymous_tasks,omitempty"`
	Others         []OtherPlayer `json:"others,omitempty"`
	Words          []string      `json:"word_list,omitempty"`
	Stats          *Stats        `json:"stats,omitempty"`

	// SelfDisclosure is set only for the mole.
	SelfDisclosure string `json:"self_disclosure,omitempty"`
}

// Result is the outcome of a player action.
type Result struct {
	Status   string `json:"status,omitempty"`
	Outcome  string `json:"result,omitempty"`
	Points   int    `json:"points,omitempty"`
	RealName string `json:"real_name,omitempty"`
}

var updated = Result{Status: "updated"}

// Plugin is implemented by every mini-game.
//
// CalculateScores returns deltas rather than applying them. Calling it twice
// and applying both results awards twice; the engine guarantees one call per
// round.
type Plugin interface {
	Info() Info
	SetupDB(ctx context.Context, db DB) error
	// ClearState drops every row the game wrote for the current event.
	ClearState(ctx context.Context, db DB) error
	GenerateSecretState(ctx context.Context, db DB, rng *rand.Rand, players []models.Player) (Secret, error)
	MoleText(secret Secret) string
	InnocentText(secret Secret) string
	PlayerView(ctx context.Context, db DB, player models.Player, secret Secret) (View, error)
	HandleAction(ctx context.Context, db DB, playerID int64, action string, payload json.RawMessage) (Result, error)
	CalculateScores(ctx context.Context, db DB, players []models.Player) (scoring.Awards, error)
}

// Lineup is the ordered list of games; the round index selects one.
type Lineup []Plugin

// At returns the game for round idx.
func (l Lineup) At(idx int) (Plugin, bool) {
	if idx < 0 || idx >= len(l) {
		return nil, false
	}
	return l[idx], true
}

// Default loads the four games with their embedded content pools.
func Default() (Lineup, error) {
	whoami, err := NewWhoAmI()
	if err != nil {
		return nil, err
	}
	chess, err := NewChess()
	if err != nil {
		return nil, err
	}
	dict, err := NewDictionary()
	if err != nil {
		return nil, err
	}
	risky, err := NewRisky()
	if err != nil {
		return nil, err
	}
	return Lineup{whoami, chess, dict, risky}, nil
}

func loadData(name string, v any) error {
	raw, err := dataFS.ReadFile("data/" + name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

func decodePayload(payload json.RawMessage, v any) error {
	if len(payload) == 0 {
		return nil
	}
	return json.Unmarshal(payload, v)
}
