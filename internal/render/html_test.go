package render

import (
	"strings"
	"testing"

	"github.com/aaronzipp/the-mole/internal/game"
	"github.com/aaronzipp/the-mole/internal/models"
)

func TestScoreTableOrderAndEscaping(t *testing.T) {
	out := ScoreTable([]game.RosterEntry{
		{ID: 1, Name: "bob", Score: 100},
		{ID: 2, Name: "<alice>", Score: 300},
		{ID: 3, Name: "Carl", Score: 100},
	})
	if strings.Contains(out, "<alice>") || !strings.Contains(out, "&lt;alice&gt;") {
		t.Fatalf("names must be escaped: %s", out)
	}
	a := strings.Index(out, "&lt;alice&gt;")
	b := strings.Index(out, "bob")
	c := strings.Index(out, "Carl")
	if !(a < b && b < c) {
		t.Fatalf("expected score desc then name order: %s", out)
	}
	if strings.Contains(out, "Role") {
		t.Fatalf("roles must stay hidden until revealed")
	}
}

func TestScoreTableRevealsRoles(t *testing.T) {
	yes, no := true, false
	out := ScoreTable([]game.RosterEntry{
		{ID: 1, Name: "A", Score: 10, IsMole: &yes},
		{ID: 2, Name: "B", Score: 20, IsMole: &no},
	})
	if !strings.Contains(out, "badge-mole") || !strings.Contains(out, "badge-innocent") {
		t.Fatalf("expected role badges: %s", out)
	}
	if ScoreTable(nil) != "" {
		t.Fatalf("empty roster renders nothing")
	}
}

func TestScoreboardByPhase(t *testing.T) {
	players := []game.RosterEntry{{ID: 1, Name: "A", IsVIP: true, HasFinishedQuiz: true}, {ID: 2, Name: "B"}}

	lobby := Scoreboard(game.StateView{Phase: models.PhaseLobby, Players: players})
	if !strings.Contains(lobby, "Players (2)") || !strings.Contains(lobby, "badge-vip") || strings.Contains(lobby, "Round") {
		t.Fatalf("unexpected lobby board: %s", lobby)
	}

	q := Scoreboard(game.StateView{Phase: models.PhaseQuiz, Players: players, RoundInfo: game.RoundInfo{Current: 2, Total: 4}})
	if !strings.Contains(q, "1/2 players finished the quiz") || !strings.Contains(q, "Round 2 of 4") {
		t.Fatalf("unexpected quiz board: %s", q)
	}
}
