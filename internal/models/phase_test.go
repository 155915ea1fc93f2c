package models

import "testing"

func TestPhaseOrder(t *testing.T) {
	order := []Phase{
		PhaseLobby, PhaseReveal, PhaseExplanation, PhaseGameRunning,
		PhaseScoring, PhaseQuizIntro, PhaseQuiz, PhaseFinalReveal,
	}
	for i := 0; i < len(order)-1; i++ {
		if !order[i].CanTransitionTo(order[i+1]) {
			t.Fatalf("expected %s -> %s to be legal", order[i], order[i+1])
		}
	}
	if !PhaseQuiz.CanTransitionTo(PhaseExplanation) {
		t.Fatalf("expected quiz to loop back to explanation")
	}
}

func TestPhaseRejectsSkips(t *testing.T) {
	cases := [][2]Phase{
		{PhaseLobby, PhaseExplanation},
		{PhaseReveal, PhaseGameRunning},
		{PhaseScoring, PhaseQuiz},
		{PhaseQuizIntro, PhaseExplanation},
		{PhaseFinalReveal, PhaseLobby},
		{PhaseGameRunning, PhaseGameRunning},
	}
	for _, c := range cases {
		if c[0].CanTransitionTo(c[1]) {
			t.Fatalf("expected %s -> %s to be illegal", c[0], c[1])
		}
	}
}

func TestPhaseTerminalAndValid(t *testing.T) {
	if !PhaseFinalReveal.Terminal() || PhaseQuiz.Terminal() {
		t.Fatalf("only FINAL_REVEAL is terminal")
	}
	if Phase("NAP").Valid() || !PhaseScoring.Valid() {
		t.Fatalf("Valid mismatch")
	}
}

func TestMole(t *testing.T) {
	players := []Player{{ID: 1}, {ID: 2, IsMole: true}, {ID: 3}}
	m, ok := Mole(players)
	if !ok || m.ID != 2 {
		t.Fatalf("expected mole 2, got %+v ok=%v", m, ok)
	}
	if _, ok := Mole(players[:1]); ok {
		t.Fatalf("expected no mole")
	}
}
