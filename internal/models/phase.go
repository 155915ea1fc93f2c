package models

// Phase represents the current phase of the event
type Phase string

const (
	PhaseLobby       Phase = "LOBBY"        // Waiting for players to join
	PhaseReveal      Phase = "REVEAL"       // Mole has been chosen, roles shown
	PhaseExplanation Phase = "EXPLANATION"  // Rules and secret briefing for the round
	PhaseGameRunning Phase = "GAME_RUNNING" // Mini-game in progress, timer advisory
	PhaseScoring     Phase = "SCORING"      // Facilitator enters the manual total
	PhaseQuizIntro   Phase = "QUIZ_INTRO"   // Scores shown, quiz about to start
	PhaseQuiz        Phase = "QUIZ"         // Players answer the round's quiz
	PhaseFinalReveal Phase = "FINAL_REVEAL" // Terminal: mole and history revealed
)

// String returns the string representation of the phase
func (p Phase) String() string {
	return string(p)
}

// Valid reports whether p is one of the known phases
func (p Phase) Valid() bool {
	_, ok := validTransitions[p]
	return ok
}

// Terminal reports whether no command can leave p (only a reset can)
func (p Phase) Terminal() bool {
	return p == PhaseFinalReveal
}

var validTransitions = map[Phase][]Phase{
	PhaseLobby:       {PhaseReveal},
	PhaseReveal:      {PhaseExplanation},
	PhaseExplanation: {PhaseGameRunning},
	PhaseGameRunning: {PhaseScoring},
	PhaseScoring:     {PhaseQuizIntro},
	PhaseQuizIntro:   {PhaseQuiz},
	PhaseQuiz:        {PhaseExplanation, PhaseFinalReveal},
	PhaseFinalReveal: {},
}

// CanTransitionTo checks if a transition from current phase to target phase is valid.
// Reset is not a transition; it reinitialises the event from any phase.
func (p Phase) CanTransitionTo(target Phase) bool {
	for _, phase := range validTransitions[p] {
		if phase == target {
			return true
		}
	}
	return false
}

// ShowsGameContent reports whether the active mini-game is rendered to players
func (p Phase) ShowsGameContent() bool {
	switch p {
	case PhaseExplanation, PhaseGameRunning, PhaseScoring:
		return true
	default:
		return false
	}
}
