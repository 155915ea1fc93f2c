package minigame

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aaronzipp/the-mole/internal/models"
	"github.com/aaronzipp/the-mole/internal/scoring"
)

const (
	ChessGroupPerPlayer = 3
	ChessIndivPerPlayer = 2
	ChessWinBonus       = 400
	chessAnonymousShown = 3
)

const chessRules = `Play a chess game in teams of 2, alternating moves.

Complete as many hidden challenges as possible. Some earn points for the group, some earn individual points.

The game lasts 20 minutes, 20 moves per player, or until a king is taken, whichever comes first.

You may not talk about the game at all. Talking about anything related to a challenge fails it immediately.

The team that wins the game (by taking the opponent's king) earns a 400 point bonus.

Everyone gets 3 group challenges and 2 individual challenges.`

type challenge struct {
	Desc   string `json:"desc"`
	Points int    `json:"points"`
}

type chessRow struct {
	PlayerID int64 `db:"player_id"`
	Moves    int   `db:"moves_made"`
	Won      int   `db:"game_won"`
}

// Chess is the hidden challenges chess game.
type Chess struct {
	challenges []challenge
	tasks      taskTable
}

// NewChess loads the embedded challenge pool.
func NewChess() (*Chess, error) {
	var data struct {
		Challenges []challenge `json:"challenges"`
	}
	if err := loadData("chess.json", &data); err != nil {
		return nil, err
	}
	if len(data.Challenges) == 0 {
		return nil, errors.New("chess: empty challenge pool")
	}
	return &Chess{challenges: data.Challenges, tasks: taskTable{name: "chess_tasks"}}, nil
}

func (g *Chess) Info() Info {
	return Info{
		ID:               KindChess,
		Title:            "Chess Challenges",
		Duration:         20 * time.Minute,
		MaxPoints:        Variable(),
		TeamDistribution: "2 equal teams",
		Rules:            chessRules,
	}
}

func (g *Chess) SetupDB(ctx context.Context, db DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS chess_state (
			player_id BIGINT PRIMARY KEY,
			moves_made INTEGER NOT NULL DEFAULT 0,
			game_won INTEGER NOT NULL DEFAULT 0
		)`)
	if err != nil {
		return fmt.Errorf("create chess_state: %w", err)
	}
	return g.tasks.create(ctx, db)
}

func (g *Chess) ClearState(ctx context.Context, db DB) error {
	if _, err := db.ExecContext(ctx, "DELETE FROM chess_state"); err != nil {
		return fmt.Errorf("clear chess_state: %w", err)
	}
	return g.tasks.clear(ctx, db)
}

func (g *Chess) GenerateSecretState(ctx context.Context, db DB, rng *rand.Rand, players []models.Player) (Secret, error) {
	if err := g.ClearState(ctx, db); err != nil {
		return Secret{}, err
	}

	per := ChessGroupPerPlayer + ChessIndivPerPlayer
	drawn := drawUnique(rng, g.challenges, per*len(players))
	secret := Secret{Game: KindChess}
	for i, p := range players {
		q := db.Rebind("INSERT INTO chess_state (player_id) VALUES (?)")
		if _, err := db.ExecContext(ctx, q, p.ID); err != nil {
			return Secret{}, fmt.Errorf("insert chess_state: %w", err)
		}
		mine := drawn[i*per : (i+1)*per]
		intel := Intel{PlayerID: p.ID, Name: p.Name}
		for j, c := range mine {
			t := task{PlayerID: p.ID, Category: "group", Position: j, Desc: c.Desc, Points: c.Points}
			if j >= ChessGroupPerPlayer {
				t.Category = "indiv"
				t.Position = j - ChessGroupPerPlayer
			} else {
				intel.Tasks = append(intel.Tasks, c.Desc)
			}
			if err := g.tasks.insert(ctx, db, t); err != nil {
				return Secret{}, err
			}
		}
		secret.Intel = append(secret.Intel, intel)
	}
	return secret, nil
}

func (g *Chess) MoleText(secret Secret) string {
	var b strings.Builder
	b.WriteString("SECRET INTEL (Who has which group challenge):\n")
	for _, in := range secret.Intel {
		fmt.Fprintf(&b, "\n%s:\n", in.Name)
		for _, t := range in.Tasks {
			fmt.Fprintf(&b, "- %s\n", t)
		}
	}
	return b.String()
}

func (g *Chess) InnocentText(Secret) string {
	return "You will be assigned unique group and individual challenges.\nYou will also see some challenges belonging to others, but you won't know who owns them."
}

func (g *Chess) row(ctx context.Context, db DB, playerID int64) (chessRow, error) {
	var row chessRow
	q := db.Rebind("SELECT player_id, moves_made, game_won FROM chess_state WHERE player_id = ?")
	err := sqlx.GetContext(ctx, db, &row, q, playerID)
	if errors.Is(err, sql.ErrNoRows) {
		return row, missingRow(KindChess, playerID)
	}
	if err != nil {
		return row, fmt.Errorf("select chess_state: %w", err)
	}
	return row, nil
}

func (g *Chess) PlayerView(ctx context.Context, db DB, player models.Player, _ Secret) (View, error) {
	row, err := g.row(ctx, db, player.ID)
	if err != nil {
		return View{}, err
	}
	group, err := g.tasks.forPlayer(ctx, db, player.ID, "group")
	if err != nil {
		return View{}, err
	}
	indiv, err := g.tasks.forPlayer(ctx, db, player.ID, "indiv")
	if err != nil {
		return View{}, err
	}
	all, err := g.tasks.all(ctx, db, "group")
	if err != nil {
		return View{}, err
	}

	view := View{
		GameID:         KindChess,
		GroupTasks:     views(group),
		IndivTasks:     views(indiv),
		AnonymousTasks: anonymousTasks(all, player.ID),
		Stats:          &Stats{Moves: row.Moves, GameWon: row.Won != 0},
	}
	if player.IsMole {
		view.RoleText = "Role: MOLE.\nSabotage the group challenges. Complete your individual challenges."
	} else {
		view.RoleText = "Role: INNOCENT.\nComplete challenges to earn points!"
	}
	return view, nil
}

// anonymousTasks picks the other players' group challenges shown to
// playerID: sorted by description, starting at (playerID*3) mod total and
// wrapping, so fewer than three challenges repeat.
func anonymousTasks(all []task, playerID int64) []HiddenTask {
	var others []HiddenTask
	for _, t := range all {
		if t.PlayerID != playerID {
			others = append(others, HiddenTask{Desc: t.Desc, Points: t.Points})
		}
	}
	if len(others) == 0 {
		return nil
	}
	sort.SliceStable(others, func(i, j int) bool { return others[i].Desc < others[j].Desc })

	total := int64(len(others))
	start := (playerID * chessAnonymousShown) % total
	seen := make([]HiddenTask, 0, chessAnonymousShown)
	for i := 0; i < chessAnonymousShown; i++ {
		seen = append(seen, others[(start+int64(i))%total])
	}
	return seen
}

func (g *Chess) HandleAction(ctx context.Context, db DB, playerID int64, action string, payload json.RawMessage) (Result, error) {
	switch action {
	case "add_move":
		return g.bump(ctx, db, playerID, "UPDATE chess_state SET moves_made = moves_made + 1 WHERE player_id = ?")
	case "toggle_win":
		return g.bump(ctx, db, playerID, "UPDATE chess_state SET game_won = 1 - game_won WHERE player_id = ?")
	case "toggle_group", "toggle_indiv":
		idx, err := decodeIndex(payload, "index")
		if err != nil {
			return Result{}, err
		}
		category := strings.TrimPrefix(action, "toggle_")
		if err := g.tasks.toggle(ctx, db, playerID, category, idx); err != nil {
			return Result{}, err
		}
		return updated, nil
	}
	return Result{}, unknownAction(KindChess, action)
}

func (g *Chess) bump(ctx context.Context, db DB, playerID int64, query string) (Result, error) {
	res, err := db.ExecContext(ctx, db.Rebind(query), playerID)
	if err != nil {
		return Result{}, fmt.Errorf("update chess_state: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Result{}, missingRow(KindChess, playerID)
	}
	return updated, nil
}

func (g *Chess) CalculateScores(ctx context.Context, db DB, players []models.Player) (scoring.Awards, error) {
	var rows []chessRow
	if err := sqlx.SelectContext(ctx, db, &rows, "SELECT player_id, moves_made, game_won FROM chess_state"); err != nil {
		return nil, fmt.Errorf("select chess_state: %w", err)
	}
	group, err := g.tasks.all(ctx, db, "group")
	if err != nil {
		return nil, err
	}
	indiv, err := g.tasks.donePoints(ctx, db, "indiv")
	if err != nil {
		return nil, err
	}

	var pot scoring.GroupPot
	for _, t := range group {
		pot.Max += t.Points
		if t.Done != 0 {
			pot.Earned += t.Points
		}
	}

	won := make(map[int64]bool, len(rows))
	for _, r := range rows {
		won[r.PlayerID] = r.Won != 0
	}

	shares, personal := scoring.Awards{}, scoring.Awards{}
	for _, p := range players {
		w, ok := won[p.ID]
		if !ok {
			continue
		}
		shares.Add(p.ID, pot.Share(p.IsMole))
		personal.Add(p.ID, indiv[p.ID])
		if w {
			personal.Add(p.ID, ChessWinBonus)
		}
	}
	shares.Merge(personal)
	return shares, nil
}
