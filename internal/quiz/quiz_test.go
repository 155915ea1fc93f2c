package quiz

import (
	"math/rand"
	"testing"

	"github.com/aaronzipp/the-mole/internal/models"
)

func loadBank(t *testing.T) *Bank {
	t.Helper()
	b, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}
	return b
}

func TestLoadDefault(t *testing.T) {
	b := loadBank(t)
	if b.Len() != 17 {
		t.Fatalf("expected 17 questions, got %d", b.Len())
	}
	if !b.Has(IdentityQuestionID) {
		t.Fatalf("identity question missing")
	}
}

func TestNewBankRejectsBadInput(t *testing.T) {
	if _, err := NewBank([]Question{{ID: 1}, {ID: 1}}, 1); err == nil {
		t.Fatalf("expected duplicate id error")
	}
	if _, err := NewBank([]Question{{ID: 1}}, 5); err == nil {
		t.Fatalf("expected missing identity error")
	}
}

func TestSelectSkipsUsedAndAppendsIdentity(t *testing.T) {
	b := loadBank(t)
	rng := rand.New(rand.NewSource(7))
	used := []int{1, 2, 3, 4}

	got := b.Select(rng, used, 4)
	if len(got) != 5 {
		t.Fatalf("expected 4 + identity, got %v", got)
	}
	if got[len(got)-1] != IdentityQuestionID {
		t.Fatalf("identity question must be last, got %v", got)
	}
	seen := map[int]bool{}
	for _, id := range got[:4] {
		if id <= 4 || id == IdentityQuestionID {
			t.Fatalf("selected used or identity question %d in %v", id, got)
		}
		if seen[id] {
			t.Fatalf("duplicate question %d in %v", id, got)
		}
		seen[id] = true
	}
}

func TestSelectExhaustedPool(t *testing.T) {
	b := loadBank(t)
	rng := rand.New(rand.NewSource(1))
	var used []int
	for id := 1; id <= 15; id++ {
		used = append(used, id)
	}
	got := b.Select(rng, used, 4)
	if len(got) != 3 || got[0] != 16 || got[1] != 17 || got[2] != IdentityQuestionID {
		t.Fatalf("expected remaining [16 17 5], got %v", got)
	}

	used = append(used, 16, 17)
	got = b.Select(rng, used, 4)
	if len(got) != 1 || got[0] != IdentityQuestionID {
		t.Fatalf("expected identity only, got %v", got)
	}
}

func TestHintIsPlayerIDModCount(t *testing.T) {
	selected := []int{9, 3, 12, 7, IdentityQuestionID}
	for pid := int64(1); pid <= 8; pid++ {
		got, ok := Hint(selected, IdentityQuestionID, pid)
		if !ok {
			t.Fatalf("expected hint for player %d", pid)
		}
		want := selected[pid%4]
		if got != want {
			t.Fatalf("player %d: got hint %d want %d", pid, got, want)
		}
		again, _ := Hint(selected, IdentityQuestionID, pid)
		if again != got {
			t.Fatalf("hint must be stable")
		}
	}
	if _, ok := Hint([]int{IdentityQuestionID}, IdentityQuestionID, 3); ok {
		t.Fatalf("identity-only selection has no hint")
	}
}

func TestRenderSubstitutesTargetAndRoster(t *testing.T) {
	b := loadBank(t)
	q, ok := b.Render(3, "Lars", nil)
	if !ok || q.Text != "Which superpower would Lars choose?" {
		t.Fatalf("unexpected render: %+v", q)
	}
	id, _ := b.Render(IdentityQuestionID, "Lars", []string{"A", "B", "C"})
	if len(id.Options) != 3 || id.Options[2] != "C" {
		t.Fatalf("identity options should be roster names, got %v", id.Options)
	}
	all := b.RenderAll([]int{3, IdentityQuestionID, 999}, "Lars", []string{"A"})
	if len(all) != 2 {
		t.Fatalf("expected 2 rendered questions, got %d", len(all))
	}
}

func TestScoreMatchesAndIdentity(t *testing.T) {
	players := []models.Player{
		{ID: 1, Name: "A", IsMole: true},
		{ID: 2, Name: "B"},
		{ID: 3, Name: "C"},
	}
	answers := []models.QuizAnswer{
		{PlayerID: 1, QuestionID: 3, Answer: "Flight"},
		{PlayerID: 2, QuestionID: 3, Answer: "Flight"},
		{PlayerID: 3, QuestionID: 3, Answer: "Invisibility"},
		{PlayerID: 2, QuestionID: IdentityQuestionID, Answer: "C"},
		{PlayerID: 3, QuestionID: IdentityQuestionID, Answer: "A"},
	}
	awards := Score(players, answers, IdentityQuestionID)
	if awards[2] != MatchPoints {
		t.Fatalf("B should gain 50, got %d", awards[2])
	}
	if awards[3] != IdentityPoints {
		t.Fatalf("C should gain 100, got %d", awards[3])
	}
	if awards[1] != MoleMatchPoints-IdentityMolePenalty {
		t.Fatalf("mole should net 35-50, got %d", awards[1])
	}
}

func TestScoreIgnoresUnansweredMoleQuestion(t *testing.T) {
	players := []models.Player{{ID: 1, Name: "A", IsMole: true}, {ID: 2, Name: "B"}}
	answers := []models.QuizAnswer{{PlayerID: 2, QuestionID: 3, Answer: "Flight"}}
	awards := Score(players, answers, IdentityQuestionID)
	if len(awards) != 0 {
		t.Fatalf("no mole answer means no match, got %v", awards)
	}
}

func TestScoreWithoutMoleIsNoop(t *testing.T) {
	players := []models.Player{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}
	answers := []models.QuizAnswer{{PlayerID: 2, QuestionID: IdentityQuestionID, Answer: "A"}}
	if awards := Score(players, answers, IdentityQuestionID); len(awards) != 0 {
		t.Fatalf("expected no awards without a mole, got %v", awards)
	}
}
