package quiz

import (
	"github.com/aaronzipp/the-mole/internal/models"
	"github.com/aaronzipp/the-mole/internal/scoring"
)

// Quiz point values.
const (
	MatchPoints         = 50  // innocent answered like the mole
	MoleMatchPoints     = 35  // mole, per innocent that matched them
	IdentityPoints      = 100 // innocent named the mole
	IdentityMolePenalty = 50  // mole, per innocent that named them
)

// Score computes the quiz deltas. Innocents earn MatchPoints for every
// non-identity answer equal to the mole's own answer, the mole earns
// MoleMatchPoints per match. Naming the mole earns IdentityPoints and costs
// the mole IdentityMolePenalty. The mole's delta is not clamped. Without a
// mole no deltas are produced.
func Score(players []models.Player, answers []models.QuizAnswer, identityID int) scoring.Awards {
	awards := scoring.Awards{}
	mole, ok := models.Mole(players)
	if !ok {
		return awards
	}

	moleAnswers := make(map[int]string)
	for _, a := range answers {
		if a.PlayerID == mole.ID {
			moleAnswers[a.QuestionID] = a.Answer
		}
	}

	moleDelta := 0
	for _, p := range players {
		if p.IsMole {
			continue
		}
		for _, a := range answers {
			if a.PlayerID != p.ID {
				continue
			}
			if a.QuestionID == identityID {
				if a.Answer == mole.Name {
					awards.Add(p.ID, IdentityPoints)
					moleDelta -= IdentityMolePenalty
				}
				continue
			}
			if want, ok := moleAnswers[a.QuestionID]; ok && want == a.Answer {
				awards.Add(p.ID, MatchPoints)
				moleDelta += MoleMatchPoints
			}
		}
	}
	awards.Add(mole.ID, moleDelta)
	return awards
}
