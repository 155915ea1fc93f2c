package minigame

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aaronzipp/the-mole/internal/apperr"
	"github.com/aaronzipp/the-mole/internal/models"
	"github.com/aaronzipp/the-mole/internal/scoring"
)

// Who am I scoring.
const (
	WhoAmIGuessPoints     = 300
	WhoAmIFreeQuestions   = 4
	WhoAmIQuestionPenalty = 15
	WhoAmIWrongPenalty    = 25
	WhoAmIEasyPoints      = 100
	WhoAmIHardPoints      = 250
)

const whoAmIRules = `Every player is assigned a person or character (real, fictional, alive or dead).

Guess your character using only yes/no questions. Split into pairs; each of you asks two questions, which the other answers.

You may guess at any moment. First name, surname or both are accepted. Write a "-" as a space and leave out accents.

Scoring: a correct guess within 4 questions earns the full 300 points for the group. Every extra question costs 15 points and every incorrect guess 25 points.
Everyone also gets an easy secret task worth 100 points and a hard secret task worth 250 points.`

type whoAmIData struct {
	Characters []string `json:"characters"`
	EasyTasks  []string `json:"easy_tasks"`
	HardTasks  []string `json:"hard_tasks"`
}

type whoAmIRow struct {
	PlayerID  int64  `db:"player_id"`
	Character string `db:"character_name"`
	Questions int    `db:"questions_asked"`
	Wrong     int    `db:"wrong_guesses"`
	Solved    int    `db:"is_solved"`
	Points    int    `db:"points_earned"`
}

// WhoAmI is the character guessing game.
type WhoAmI struct {
	data  whoAmIData
	tasks taskTable
}

// NewWhoAmI loads the embedded character and task pools.
func NewWhoAmI() (*WhoAmI, error) {
	g := &WhoAmI{tasks: taskTable{name: "whoami_tasks"}}
	if err := loadData("whoami.json", &g.data); err != nil {
		return nil, err
	}
	if len(g.data.Characters) == 0 || len(g.data.EasyTasks) == 0 || len(g.data.HardTasks) == 0 {
		return nil, errors.New("whoami: empty content pool")
	}
	return g, nil
}

func (g *WhoAmI) Info() Info {
	return Info{
		ID:               KindWhoAmI,
		Title:            "Who am I?",
		Duration:         20 * time.Minute,
		MaxPoints:        Fixed(1200),
		TeamDistribution: "Individual",
		Rules:            whoAmIRules,
	}
}

func (g *WhoAmI) SetupDB(ctx context.Context, db DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS whoami_state (
			player_id BIGINT PRIMARY KEY,
			character_name TEXT NOT NULL,
			questions_asked INTEGER NOT NULL DEFAULT 0,
			wrong_guesses INTEGER NOT NULL DEFAULT 0,
			is_solved INTEGER NOT NULL DEFAULT 0,
			points_earned INTEGER NOT NULL DEFAULT 0
		)`)
	if err != nil {
		return fmt.Errorf("create whoami_state: %w", err)
	}
	return g.tasks.create(ctx, db)
}

func (g *WhoAmI) ClearState(ctx context.Context, db DB) error {
	if _, err := db.ExecContext(ctx, "DELETE FROM whoami_state"); err != nil {
		return fmt.Errorf("clear whoami_state: %w", err)
	}
	return g.tasks.clear(ctx, db)
}

func (g *WhoAmI) GenerateSecretState(ctx context.Context, db DB, rng *rand.Rand, players []models.Player) (Secret, error) {
	if err := g.ClearState(ctx, db); err != nil {
		return Secret{}, err
	}

	characters := drawUnique(rng, g.data.Characters, len(players))
	secret := Secret{Game: KindWhoAmI}
	for i, p := range players {
		easy := g.data.EasyTasks[rng.Intn(len(g.data.EasyTasks))]
		hard := g.data.HardTasks[rng.Intn(len(g.data.HardTasks))]

		q := db.Rebind("INSERT INTO whoami_state (player_id, character_name) VALUES (?, ?)")
		if _, err := db.ExecContext(ctx, q, p.ID, characters[i]); err != nil {
			return Secret{}, fmt.Errorf("insert whoami_state: %w", err)
		}
		for _, t := range []task{
			{PlayerID: p.ID, Category: "secret", Position: 0, Desc: easy, Points: WhoAmIEasyPoints, Type: "easy"},
			{PlayerID: p.ID, Category: "secret", Position: 1, Desc: hard, Points: WhoAmIHardPoints, Type: "hard"},
		} {
			if err := g.tasks.insert(ctx, db, t); err != nil {
				return Secret{}, err
			}
		}
		secret.Intel = append(secret.Intel, Intel{
			PlayerID:  p.ID,
			Name:      p.Name,
			Character: characters[i],
			Tasks:     []string{easy, hard},
		})
	}
	return secret, nil
}

func (g *WhoAmI) MoleText(secret Secret) string {
	var b strings.Builder
	b.WriteString("SECRET INTEL (Everyone's secret tasks):\n")
	for _, in := range secret.Intel {
		fmt.Fprintf(&b, "\n%s:\n", in.Name)
		for _, t := range in.Tasks {
			fmt.Fprintf(&b, "- %s\n", t)
		}
	}
	return b.String()
}

func (g *WhoAmI) InnocentText(Secret) string {
	return "Guess your character in as few questions as possible, and finish your secret tasks without anyone noticing."
}

func (g *WhoAmI) row(ctx context.Context, db DB, playerID int64) (whoAmIRow, error) {
	var row whoAmIRow
	q := db.Rebind(`SELECT player_id, character_name, questions_asked, wrong_guesses, is_solved, points_earned
		FROM whoami_state WHERE player_id = ?`)
	err := sqlx.GetContext(ctx, db, &row, q, playerID)
	if errors.Is(err, sql.ErrNoRows) {
		return row, missingRow(KindWhoAmI, playerID)
	}
	if err != nil {
		return row, fmt.Errorf("select whoami_state: %w", err)
	}
	return row, nil
}

func (g *WhoAmI) PlayerView(ctx context.Context, db DB, player models.Player, secret Secret) (View, error) {
	row, err := g.row(ctx, db, player.ID)
	if err != nil {
		return View{}, err
	}
	tasks, err := g.tasks.forPlayer(ctx, db, player.ID, "secret")
	if err != nil {
		return View{}, err
	}
	view := View{
		GameID: KindWhoAmI,
		Tasks:  views(tasks),
		Stats: &Stats{
			Questions: row.Questions,
			Strikes:   row.Wrong,
			Solved:    row.Solved != 0,
			Points:    row.Points,
		},
	}
	for _, in := range secret.Intel {
		if in.PlayerID != player.ID {
			view.Others = append(view.Others, OtherPlayer{Name: in.Name, Character: in.Character})
		}
	}
	if player.IsMole {
		view.RoleText = "Role: MOLE.\nPretend you don't know your character and make sure nobody guesses theirs too quickly."
		view.SelfDisclosure = strings.ToUpper(row.Character)
	} else {
		view.RoleText = "Role: INNOCENT. Guess your character to earn points!"
	}
	return view, nil
}

func (g *WhoAmI) HandleAction(ctx context.Context, db DB, playerID int64, action string, payload json.RawMessage) (Result, error) {
	switch action {
	case "add_question":
		q := db.Rebind("UPDATE whoami_state SET questions_asked = questions_asked + 1 WHERE player_id = ?")
		res, err := db.ExecContext(ctx, q, playerID)
		if err != nil {
			return Result{}, fmt.Errorf("add question: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return Result{}, missingRow(KindWhoAmI, playerID)
		}
		return updated, nil

	case "toggle_task":
		idx, err := decodeIndex(payload, "task_index")
		if err != nil {
			return Result{}, err
		}
		if err := g.tasks.toggle(ctx, db, playerID, "secret", idx); err != nil {
			return Result{}, err
		}
		return updated, nil

	case "guess":
		var body struct {
			Guess string `json:"guess"`
		}
		if err := decodePayload(payload, &body); err != nil {
			return Result{}, apperr.Wrap(apperr.CodeInvalidInput, "malformed payload", err)
		}
		return g.guess(ctx, db, playerID, body.Guess)
	}
	return Result{}, unknownAction(KindWhoAmI, action)
}

func (g *WhoAmI) guess(ctx context.Context, db DB, playerID int64, guess string) (Result, error) {
	row, err := g.row(ctx, db, playerID)
	if err != nil {
		return Result{}, err
	}
	if row.Solved != 0 {
		return Result{Outcome: "correct", Points: row.Points, RealName: row.Character}, nil
	}
	if !MatchesCharacter(guess, row.Character) {
		q := db.Rebind("UPDATE whoami_state SET wrong_guesses = wrong_guesses + 1 WHERE player_id = ?")
		if _, err := db.ExecContext(ctx, q, playerID); err != nil {
			return Result{}, fmt.Errorf("record wrong guess: %w", err)
		}
		return Result{Outcome: "incorrect"}, nil
	}

	points := GuessPoints(row.Questions, row.Wrong)
	q := db.Rebind("UPDATE whoami_state SET is_solved = 1, points_earned = ? WHERE player_id = ?")
	if _, err := db.ExecContext(ctx, q, points, playerID); err != nil {
		return Result{}, fmt.Errorf("record solve: %w", err)
	}
	return Result{Outcome: "correct", Points: points, RealName: row.Character}, nil
}

// GuessPoints is the pot contribution of a correct guess after questions
// asked and wrong guesses.
func GuessPoints(questions, wrong int) int {
	extra := max(0, questions-WhoAmIFreeQuestions)
	return max(0, WhoAmIGuessPoints-WhoAmIQuestionPenalty*extra-WhoAmIWrongPenalty*wrong)
}

// MatchesCharacter reports whether guess names character: a whole-word run
// of its words, longer than two letters, ignoring case and punctuation.
func MatchesCharacter(guess, character string) bool {
	g := normalizeName(guess)
	if len(g) <= 2 {
		return false
	}
	return strings.Contains(" "+normalizeName(character)+" ", " "+g+" ")
}

func normalizeName(s string) string {
	s = strings.ToLower(s)
	s = strings.Map(func(r rune) rune {
		switch r {
		case '(', ')', '-', ',':
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

func (g *WhoAmI) CalculateScores(ctx context.Context, db DB, players []models.Player) (scoring.Awards, error) {
	var rows []whoAmIRow
	q := `SELECT player_id, character_name, questions_asked, wrong_guesses, is_solved, points_earned
		FROM whoami_state ORDER BY player_id`
	if err := sqlx.SelectContext(ctx, db, &rows, q); err != nil {
		return nil, fmt.Errorf("select whoami_state: %w", err)
	}
	taskPoints, err := g.tasks.donePoints(ctx, db, "secret")
	if err != nil {
		return nil, err
	}

	pot := scoring.GroupPot{Max: WhoAmIGuessPoints * len(rows)}
	hasRow := make(map[int64]bool, len(rows))
	for _, r := range rows {
		hasRow[r.PlayerID] = true
		if r.Solved != 0 {
			pot.Earned += r.Points
		} else {
			pot.Earned -= WhoAmIWrongPenalty * r.Wrong
		}
	}
	pot = pot.Clamp()

	awards := scoring.Awards{}
	for _, p := range players {
		if !hasRow[p.ID] {
			continue
		}
		awards.Add(p.ID, pot.Share(p.IsMole)+taskPoints[p.ID])
	}
	return awards, nil
}
