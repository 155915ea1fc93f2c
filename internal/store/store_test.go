package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aaronzipp/the-mole/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), Options{
		Dialect:    DialectSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "mole.sqlite"),
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.WithTx(context.Background(), func(tx *Tx) error {
		return tx.Reset(context.Background(), "evt-1")
	}); err != nil {
		t.Fatalf("reset: %v", err)
	}
	return s
}

func TestOpenRejectsBadOptions(t *testing.T) {
	if _, err := Open(context.Background(), Options{Dialect: DialectPostgres}); err == nil ||
		!strings.Contains(err.Error(), "requires a DSN") {
		t.Fatalf("expected DSN error, got %v", err)
	}
	if _, err := Open(context.Background(), Options{Dialect: "oracle"}); err == nil ||
		!strings.Contains(err.Error(), "unsupported dialect") {
		t.Fatalf("expected dialect error, got %v", err)
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mole.sqlite")
	for i := 0; i < 2; i++ {
		s, err := Open(context.Background(), Options{Dialect: DialectSQLite, SQLitePath: path})
		if err != nil {
			t.Fatalf("open #%d: %v", i, err)
		}
		if s.Dialect() != DialectSQLite {
			t.Fatalf("dialect = %s", s.Dialect())
		}
		_ = s.Close()
	}
}

func TestExtractUp(t *testing.T) {
	got := extractUp("-- +migrate Up\nCREATE x;\n-- +migrate Down\nDROP x;")
	if strings.TrimSpace(got) != "CREATE x;" {
		t.Fatalf("extractUp = %q", got)
	}
}

func TestPlayersRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	err := s.WithTx(ctx, func(tx *Tx) error {
		alice, err := tx.InsertPlayer(ctx, "Alice")
		if err != nil {
			return err
		}
		bob, err := tx.InsertPlayer(ctx, "Bob")
		if err != nil {
			return err
		}
		if alice.ID != 1 || bob.ID != 2 || !alice.IsVIP || bob.IsVIP {
			t.Fatalf("unexpected ids/vip: %+v %+v", alice, bob)
		}
		if err := tx.AddScore(ctx, bob.ID, 250); err != nil {
			return err
		}
		if err := tx.AssignMole(ctx, alice.ID); err != nil {
			return err
		}
		return tx.AssignMole(ctx, bob.ID)
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}

	err = s.WithReadTx(ctx, func(tx *Tx) error {
		players, err := tx.Players(ctx)
		if err != nil {
			return err
		}
		if len(players) != 2 {
			t.Fatalf("expected 2 players, got %d", len(players))
		}
		if players[0].IsMole || !players[1].IsMole || players[1].Score != 250 {
			t.Fatalf("unexpected roster %+v", players)
		}
		p, ok, err := tx.PlayerByName(ctx, "Bob")
		if err != nil || !ok || p.ID != 2 {
			t.Fatalf("PlayerByName: %+v %v %v", p, ok, err)
		}
		if _, ok, _ := tx.Player(ctx, 99); ok {
			t.Fatalf("expected unknown player")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	boom := context.Canceled
	err := s.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.InsertPlayer(ctx, "Ghost"); err != nil {
			return err
		}
		return boom
	})
	if err != boom {
		t.Fatalf("expected error to pass through, got %v", err)
	}
	_ = s.WithReadTx(ctx, func(tx *Tx) error {
		players, err := tx.Players(ctx)
		if err != nil || len(players) != 0 {
			t.Fatalf("expected rollback, got %v %v", players, err)
		}
		return nil
	})
}

func TestEventStateAndReset(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	end := time.UnixMilli(1_700_000_000_000).UTC()

	err := s.WithTx(ctx, func(tx *Tx) error {
		ev, err := tx.Event(ctx)
		if err != nil {
			return err
		}
		if ev.Phase != models.PhaseLobby || ev.EventID != "evt-1" || ev.BonusScoredRound != -1 {
			t.Fatalf("unexpected fresh event %+v", ev)
		}
		ev.Phase = models.PhaseGameRunning
		ev.RoundIdx = 2
		ev.TimerEnd = end
		ev.Secret = []byte(`{"k":1}`)
		if err := tx.SaveEvent(ctx, ev); err != nil {
			return err
		}
		if _, err := tx.InsertPlayer(ctx, "Alice"); err != nil {
			return err
		}
		return tx.AppendSnapshots(ctx, []models.ScoreSnapshot{{RoundMarker: 0.5, PlayerID: 1, Score: 10, RecordedAt: end}})
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}

	_ = s.WithReadTx(ctx, func(tx *Tx) error {
		ev, err := tx.Event(ctx)
		if err != nil {
			t.Fatalf("event: %v", err)
		}
		if ev.Phase != models.PhaseGameRunning || ev.RoundIdx != 2 || !ev.TimerEnd.Equal(end) || string(ev.Secret) != `{"k":1}` {
			t.Fatalf("unexpected event %+v", ev)
		}
		return nil
	})

	err = s.WithTx(ctx, func(tx *Tx) error { return tx.Reset(ctx, "evt-2") })
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	_ = s.WithTx(ctx, func(tx *Tx) error {
		ev, _ := tx.Event(ctx)
		players, _ := tx.Players(ctx)
		hist, _ := tx.History(ctx)
		if ev.EventID != "evt-2" || ev.Phase != models.PhaseLobby || len(players) != 0 || len(hist) != 0 {
			t.Fatalf("reset left state behind: %+v %v %v", ev, players, hist)
		}
		p, err := tx.InsertPlayer(ctx, "Carol")
		if err != nil || p.ID != 1 || !p.IsVIP {
			t.Fatalf("expected ids to restart, got %+v %v", p, err)
		}
		return nil
	})
}

func TestQuizStorage(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	err := s.WithTx(ctx, func(tx *Tx) error {
		if err := tx.SaveSelection(ctx, 0, []int{3, 9, 5}); err != nil {
			return err
		}
		if err := tx.SaveSelection(ctx, 1, []int{11, 5}); err != nil {
			return err
		}
		if err := tx.ReplaceAnswers(ctx, 1, map[int]string{3: "a", 5: "Bob"}); err != nil {
			return err
		}
		return tx.ReplaceAnswers(ctx, 1, map[int]string{9: "b"})
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}

	_ = s.WithReadTx(ctx, func(tx *Tx) error {
		sel, _ := tx.Selection(ctx, 0)
		if len(sel) != 3 || sel[0] != 3 || sel[2] != 5 {
			t.Fatalf("selection order lost: %v", sel)
		}
		used, _ := tx.UsedQuestions(ctx, 5)
		if len(used) != 3 || used[0] != 3 || used[2] != 11 {
			t.Fatalf("used = %v", used)
		}
		answers, _ := tx.Answers(ctx)
		if len(answers) != 1 || answers[0].QuestionID != 9 {
			t.Fatalf("expected resubmission to replace answers, got %+v", answers)
		}
		return nil
	})
}

func TestHistoryOrdering(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	now := time.Now()
	err := s.WithTx(ctx, func(tx *Tx) error {
		return tx.AppendSnapshots(ctx, []models.ScoreSnapshot{
			{RoundMarker: 1.0, PlayerID: 2, Score: 5, RecordedAt: now},
			{RoundMarker: 0.5, PlayerID: 2, Score: 3, RecordedAt: now},
			{RoundMarker: 0.5, PlayerID: 1, Score: 4, RecordedAt: now},
		})
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	_ = s.WithReadTx(ctx, func(tx *Tx) error {
		hist, err := tx.History(ctx)
		if err != nil || len(hist) != 3 {
			t.Fatalf("history: %v %v", hist, err)
		}
		if hist[0].PlayerID != 1 || hist[1].PlayerID != 2 || hist[2].RoundMarker != 1.0 {
			t.Fatalf("unexpected order %+v", hist)
		}
		return nil
	})
}

func TestEventRejectsUnknownPhase(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	err := s.WithTx(ctx, func(tx *Tx) error {
		if err := tx.exec(ctx, "UPDATE event_state SET phase = ? WHERE id = 1", "NAP"); err != nil {
			return err
		}
		_, err := tx.Event(ctx)
		return err
	})
	if err == nil || !strings.Contains(err.Error(), "NAP") {
		t.Fatalf("expected an unknown phase error, got %v", err)
	}
}
