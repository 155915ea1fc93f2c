package game

import "time"

const (
	// MinPlayers is the minimum number of players required to start the event
	MinPlayers = 2

	// QuestionsPerRound is the number of trivia questions drawn per round, on
	// top of the identity question
	QuestionsPerRound = 4

	// DefaultQuizTarget replaces the {target} placeholder in question text
	DefaultQuizTarget = "Lars"

	// readTimeout bounds state queries so a stuck reader cannot hold the
	// connection forever
	readTimeout = 5 * time.Second
)
