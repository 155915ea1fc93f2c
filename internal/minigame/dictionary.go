package minigame

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/aaronzipp/the-mole/internal/models"
	"github.com/aaronzipp/the-mole/internal/scoring"
)

// DictionaryWordCount is the number of words drawn per round.
const DictionaryWordCount = 80

const dictionaryRules = `Two solo players see a numbered list of 80 words that they must communicate to the team.

One may only draw (no letters, numbers or symbols). The other may only write short descriptions of 5 words or less.

The guessers may not read descriptions out loud or describe drawings, so neither solo knows what the other is doing.

Every note carries the number of its word in the top left corner.

Every word guessed correctly for the correct number is worth 20 points. There are no hidden tasks in this game.`

// Dictionary is the drawing and describing word game. It is scored entirely
// by the facilitator and keeps no private state.
type Dictionary struct {
	words []string
}

// NewDictionary loads the embedded word pool.
func NewDictionary() (*Dictionary, error) {
	var data struct {
		Words []string `json:"words"`
	}
	if err := loadData("dictionary.json", &data); err != nil {
		return nil, err
	}
	if len(data.Words) == 0 {
		return nil, errors.New("dictionary: empty word pool")
	}
	return &Dictionary{words: data.Words}, nil
}

func (g *Dictionary) Info() Info {
	return Info{
		ID:               KindDictionary,
		Title:            "Dictionary Dudes",
		Duration:         10 * time.Minute,
		MaxPoints:        Fixed(1600),
		TeamDistribution: "2 solos and the rest",
		Rules:            dictionaryRules,
		ManualScoring:    true,
	}
}

func (g *Dictionary) SetupDB(context.Context, DB) error { return nil }

func (g *Dictionary) ClearState(context.Context, DB) error { return nil }

func (g *Dictionary) GenerateSecretState(_ context.Context, _ DB, rng *rand.Rand, _ []models.Player) (Secret, error) {
	return Secret{Game: KindDictionary, Words: drawUnique(rng, g.words, DictionaryWordCount)}, nil
}

func (g *Dictionary) MoleText(secret Secret) string {
	var b strings.Builder
	b.WriteString("SNEAK PEEK (Word list):\n")
	for i, w := range secret.Words {
		fmt.Fprintf(&b, "%d. %s\n", i+1, w)
	}
	return b.String()
}

func (g *Dictionary) InnocentText(Secret) string {
	return "Decide who will be the drawing and writing solos. The rest are guessers!"
}

func (g *Dictionary) PlayerView(_ context.Context, _ DB, player models.Player, secret Secret) (View, error) {
	view := View{GameID: KindDictionary, Words: secret.Words}
	if player.IsMole {
		view.RoleText = "Role: MOLE.\nSubtly steer the team into guessing the wrong words!"
	} else {
		view.RoleText = "Role: INNOCENT.\nCoordinate and guess!"
	}
	return view, nil
}

func (g *Dictionary) HandleAction(_ context.Context, _ DB, _ int64, action string, _ json.RawMessage) (Result, error) {
	return Result{}, unknownAction(KindDictionary, action)
}

func (g *Dictionary) CalculateScores(context.Context, DB, []models.Player) (scoring.Awards, error) {
	return scoring.Awards{}, nil
}
