package minigame

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"slices"

	"github.com/jmoiron/sqlx"

	"github.com/aaronzipp/the-mole/internal/apperr"
)

// task is one assigned task record.
type task struct {
	PlayerID int64  `db:"player_id"`
	Category string `db:"category"`
	Position int    `db:"position"`
	Desc     string `db:"description"`
	Points   int    `db:"points"`
	Type     string `db:"task_type"`
	Done     int    `db:"done"`
}

func (t task) view() TaskView {
	return TaskView{Index: t.Position, Desc: t.Desc, Points: t.Points, Type: t.Type, Done: t.Done != 0}
}

// taskTable stores a plugin's task records as ordered rows, one per task.
type taskTable struct {
	name string
}

func (tt taskTable) create(ctx context.Context, db DB) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			player_id BIGINT NOT NULL,
			category TEXT NOT NULL,
			position INTEGER NOT NULL,
			description TEXT NOT NULL,
			points INTEGER NOT NULL,
			task_type TEXT NOT NULL DEFAULT '',
			done INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (player_id, category, position)
		)`, tt.name))
	if err != nil {
		return fmt.Errorf("create %s: %w", tt.name, err)
	}
	return nil
}

func (tt taskTable) clear(ctx context.Context, db DB) error {
	if _, err := db.ExecContext(ctx, "DELETE FROM "+tt.name); err != nil {
		return fmt.Errorf("clear %s: %w", tt.name, err)
	}
	return nil
}

func (tt taskTable) insert(ctx context.Context, db DB, t task) error {
	q := db.Rebind(fmt.Sprintf(`INSERT INTO %s (player_id, category, position, description, points, task_type, done)
		VALUES (?, ?, ?, ?, ?, ?, 0)`, tt.name))
	if _, err := db.ExecContext(ctx, q, t.PlayerID, t.Category, t.Position, t.Desc, t.Points, t.Type); err != nil {
		return fmt.Errorf("insert %s: %w", tt.name, err)
	}
	return nil
}

const taskColumns = "player_id, category, position, description, points, task_type, done"

// forPlayer returns a player's tasks in one category, ordered by position.
func (tt taskTable) forPlayer(ctx context.Context, db DB, playerID int64, category string) ([]task, error) {
	var tasks []task
	q := db.Rebind(fmt.Sprintf("SELECT %s FROM %s WHERE player_id = ? AND category = ? ORDER BY position", taskColumns, tt.name))
	if err := sqlx.SelectContext(ctx, db, &tasks, q, playerID, category); err != nil {
		return nil, fmt.Errorf("select %s: %w", tt.name, err)
	}
	return tasks, nil
}

// all returns every task in category.
func (tt taskTable) all(ctx context.Context, db DB, category string) ([]task, error) {
	var tasks []task
	q := db.Rebind(fmt.Sprintf("SELECT %s FROM %s WHERE category = ? ORDER BY player_id, position", taskColumns, tt.name))
	if err := sqlx.SelectContext(ctx, db, &tasks, q, category); err != nil {
		return nil, fmt.Errorf("select %s: %w", tt.name, err)
	}
	return tasks, nil
}

// toggle flips one task's completion flag.
func (tt taskTable) toggle(ctx context.Context, db DB, playerID int64, category string, index int) error {
	q := db.Rebind(fmt.Sprintf("UPDATE %s SET done = 1 - done WHERE player_id = ? AND category = ? AND position = ?", tt.name))
	res, err := db.ExecContext(ctx, q, playerID, category, index)
	if err != nil {
		return fmt.Errorf("toggle %s: %w", tt.name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("toggle %s: %w", tt.name, err)
	}
	if n == 0 {
		return apperr.New(apperr.CodeInvalidInput, fmt.Sprintf("no task %d for player %d", index, playerID))
	}
	return nil
}

// donePoints sums completed task points per player for category.
func (tt taskTable) donePoints(ctx context.Context, db DB, category string) (map[int64]int, error) {
	tasks, err := tt.all(ctx, db, category)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]int)
	for _, t := range tasks {
		if t.Done != 0 {
			out[t.PlayerID] += t.Points
		}
	}
	return out, nil
}

func views(tasks []task) []TaskView {
	out := make([]TaskView, len(tasks))
	for i, t := range tasks {
		out[i] = t.view()
	}
	return out
}

// drawUnique returns n items from pool without repetition. When the pool is
// smaller than n it falls back to a shuffled pool repeated as often as needed.
func drawUnique[T any](rng *rand.Rand, pool []T, n int) []T {
	if n <= 0 || len(pool) == 0 {
		return nil
	}
	shuffled := make([]T, len(pool))
	copy(shuffled, pool)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	if n <= len(shuffled) {
		return shuffled[:n]
	}
	out := make([]T, 0, n)
	for len(out) < n {
		out = append(out, shuffled[:min(len(shuffled), n-len(out))]...)
	}
	return out
}

// deck hands out items without repetition, reshuffling the full pool once it
// runs dry.
type deck[T any] struct {
	rng  *rand.Rand
	pool []T
	left []T
}

func newDeck[T any](rng *rand.Rand, pool []T) *deck[T] {
	return &deck[T]{rng: rng, pool: pool}
}

func (d *deck[T]) draw() T {
	if len(d.left) == 0 {
		d.left = drawUnique(d.rng, d.pool, len(d.pool))
	}
	v := d.left[len(d.left)-1]
	d.left = d.left[:len(d.left)-1]
	return v
}

// drawExcept draws a card not in held. A reshuffle can put a held card back
// on top, so such cards are skipped; it gives up once every card of the pool
// has been tried.
func drawExcept[T comparable](d *deck[T], held []T) T {
	v := d.draw()
	for tries := 1; tries < len(d.pool) && slices.Contains(held, v); tries++ {
		v = d.draw()
	}
	return v
}

func decodeIndex(payload json.RawMessage, key string) (int, error) {
	var m map[string]json.RawMessage
	if err := decodePayload(payload, &m); err != nil {
		return 0, apperr.Wrap(apperr.CodeInvalidInput, "malformed payload", err)
	}
	raw, ok := m[key]
	if !ok {
		return 0, apperr.New(apperr.CodeInvalidInput, key+" is required")
	}
	var idx int
	if err := json.Unmarshal(raw, &idx); err != nil {
		return 0, apperr.Wrap(apperr.CodeInvalidInput, key+" must be an integer", err)
	}
	return idx, nil
}

func unknownAction(game Kind, action string) error {
	return apperr.New(apperr.CodeUnknownAction, fmt.Sprintf("%s: unknown action %q", game, action))
}

func missingRow(game Kind, playerID int64) error {
	return apperr.New(apperr.CodeNotFound, fmt.Sprintf("%s: no state for player %d", game, playerID))
}
