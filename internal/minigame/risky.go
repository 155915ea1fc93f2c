package minigame

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/aaronzipp/the-mole/internal/models"
	"github.com/aaronzipp/the-mole/internal/scoring"
)

const (
	RiskyMediumPoints = 150
	RiskyHardPoints   = 300
)

const riskyRules = `Play a game of Risk with altered rules. The group's goal is to have as many troops alive at the end as possible.

The game ends after 20 minutes, or when everyone has taken 15 moves.

Setup: roll a die for turn order. Deal territory cards as normal and place 2 troops on each of your territories.

Each turn, either place 2 new troops or attack as often as you like.
An attacker with more troops than the defenders always wins. A defender may first move troops out of or into the attacked territory from adjacent territories it controls, leaving at least 1.
If the attackers still outnumber the defenders, all defenders are removed and the attacker loses 1 troop for every 2 defenders, rounded down. Otherwise every attacker perishes and no defender is lost.

No territory cards are awarded for attacks, and troops cannot be moved after attacking. Eastern Australia and Venezuela are connected. Continent bonuses work as normal.

Everyone also has three hidden individual tasks.

Scoring: 5 points per troop alive at the end for the group, 150 points per medium task and 300 points per hard task.`

type riskyData struct {
	MediumEnd []string `json:"medium_end_of_game"`
	HardEnd   []string `json:"hard_end_of_game"`
	Medium    []string `json:"medium"`
	Hard      []string `json:"hard"`
}

// Risky is the altered-rules Risk game. Its pot is entered by the facilitator
// and individual tasks are scored automatically.
type Risky struct {
	data  riskyData
	tasks taskTable
}

// NewRisky loads the embedded task pools.
func NewRisky() (*Risky, error) {
	g := &Risky{tasks: taskTable{name: "risk_tasks"}}
	if err := loadData("risky.json", &g.data); err != nil {
		return nil, err
	}
	d := g.data
	if len(d.MediumEnd) == 0 || len(d.HardEnd) == 0 || len(d.Medium) == 0 || len(d.Hard) == 0 {
		return nil, errors.New("risky: empty task pool")
	}
	return g, nil
}

func (g *Risky) Info() Info {
	return Info{
		ID:               KindRisky,
		Title:            "Risky Business",
		Duration:         20 * time.Minute,
		MaxPoints:        Fixed(1600),
		TeamDistribution: "Individual",
		Rules:            riskyRules,
		ManualScoring:    true,
	}
}

func (g *Risky) SetupDB(ctx context.Context, db DB) error {
	return g.tasks.create(ctx, db)
}

func (g *Risky) ClearState(ctx context.Context, db DB) error {
	return g.tasks.clear(ctx, db)
}

func (g *Risky) GenerateSecretState(ctx context.Context, db DB, rng *rand.Rand, players []models.Player) (Secret, error) {
	if err := g.ClearState(ctx, db); err != nil {
		return Secret{}, err
	}
	mediumEnd := newDeck(rng, g.data.MediumEnd)
	hardEnd := newDeck(rng, g.data.HardEnd)
	medium := newDeck(rng, g.data.Medium)
	hard := newDeck(rng, g.data.Hard)

	secret := Secret{Game: KindRisky}
	for _, p := range players {
		var assigned []task
		deal := func(d *deck[string], points int, kind string) {
			held := make([]string, len(assigned))
			for i, t := range assigned {
				held[i] = t.Desc
			}
			assigned = append(assigned, task{Desc: drawExcept(d, held), Points: points, Type: kind})
		}
		if rng.Intn(2) == 0 {
			deal(hardEnd, RiskyHardPoints, "Hard (End Game)")
			deal(medium, RiskyMediumPoints, "Medium")
			deal(medium, RiskyMediumPoints, "Medium")
		} else {
			deal(mediumEnd, RiskyMediumPoints, "Medium (End Game)")
			deal(medium, RiskyMediumPoints, "Medium")
			deal(hard, RiskyHardPoints, "Hard")
		}
		for i := range assigned {
			assigned[i].PlayerID = p.ID
			assigned[i].Category = "secret"
			assigned[i].Position = i
			if err := g.tasks.insert(ctx, db, assigned[i]); err != nil {
				return Secret{}, err
			}
		}
		leak := assigned[rng.Intn(len(assigned))]
		secret.Intel = append(secret.Intel, Intel{PlayerID: p.ID, Name: p.Name, Tasks: []string{leak.Desc}})
	}
	return secret, nil
}

func (g *Risky) MoleText(secret Secret) string {
	var b strings.Builder
	b.WriteString("SECRET INTEL (One random task from each player):\n")
	for _, in := range secret.Intel {
		fmt.Fprintf(&b, "\n%s: %s", in.Name, strings.Join(in.Tasks, "; "))
	}
	return b.String()
}

func (g *Risky) InnocentText(Secret) string {
	return "You are a team player. Keep as many troops alive as possible, but don't forget your own tasks."
}

func (g *Risky) PlayerView(ctx context.Context, db DB, player models.Player, _ Secret) (View, error) {
	tasks, err := g.tasks.forPlayer(ctx, db, player.ID, "secret")
	if err != nil {
		return View{}, err
	}
	if len(tasks) == 0 {
		return View{}, missingRow(KindRisky, player.ID)
	}
	view := View{GameID: KindRisky, Tasks: views(tasks)}
	if player.IsMole {
		view.RoleText = "Role: MOLE.\nSabotage the troop count. Complete your tasks."
	} else {
		view.RoleText = "Role: INNOCENT.\nKeep troops alive!"
	}
	return view, nil
}

func (g *Risky) HandleAction(ctx context.Context, db DB, playerID int64, action string, payload json.RawMessage) (Result, error) {
	if action != "toggle_task" {
		return Result{}, unknownAction(KindRisky, action)
	}
	idx, err := decodeIndex(payload, "index")
	if err != nil {
		return Result{}, err
	}
	if err := g.tasks.toggle(ctx, db, playerID, "secret", idx); err != nil {
		return Result{}, err
	}
	return updated, nil
}

// CalculateScores awards completed task points. The troop pot is split by the
// engine from the facilitator's total.
func (g *Risky) CalculateScores(ctx context.Context, db DB, _ []models.Player) (scoring.Awards, error) {
	done, err := g.tasks.donePoints(ctx, db, "secret")
	if err != nil {
		return nil, err
	}
	awards := scoring.Awards{}
	for id, pts := range done {
		awards.Add(id, pts)
	}
	return awards, nil
}
