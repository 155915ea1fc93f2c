package models

// Player represents a joined player. Scores only change through the ledger.
type Player struct {
	ID              int64  `db:"id" json:"id"`
	Name            string `db:"name" json:"name"`
	Score           int    `db:"score" json:"score"`
	IsMole          bool   `db:"is_mole" json:"-"`
	IsVIP           bool   `db:"is_vip" json:"is_vip"`
	HasFinishedQuiz bool   `db:"has_finished_quiz" json:"has_finished_quiz"`
}

// Mole returns the mole among players, if any
func Mole(players []Player) (Player, bool) {
	for _, p := range players {
		if p.IsMole {
			return p, true
		}
	}
	return Player{}, false
}
