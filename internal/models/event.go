package models

import "time"

// EventState is the singleton record driving the event
type EventState struct {
	EventID  string
	Phase    Phase
	RoundIdx int
	TimerEnd time.Time // zero unless a timer was started this round

	// Secret is the raw, plugin-defined dynamic secret for the current round
	Secret []byte

	// BonusScoredRound and QuizScoredRound hold the last round index whose
	// mini-game bonus and quiz were applied, -1 when none.
	BonusScoredRound int
	QuizScoredRound  int
}

// ScoreSnapshot records a player's score at a round marker.
// Whole markers close a mini-game round, .5 markers follow submit_score.
type ScoreSnapshot struct {
	RoundMarker float64   `db:"round_marker" json:"round_idx"`
	PlayerID    int64     `db:"player_id" json:"player_id"`
	Score       int       `db:"score" json:"score"`
	RecordedAt  time.Time `db:"-" json:"recorded_at"`
}

// QuizAnswer is one player's chosen option for one question (per round)
type QuizAnswer struct {
	PlayerID   int64  `db:"player_id"`
	QuestionID int    `db:"question_id"`
	Answer     string `db:"answer"`
}
