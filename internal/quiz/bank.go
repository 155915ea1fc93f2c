// Package quiz selects, renders and scores the per-round "how well do you
// know the target" quiz, including the fixed "who is the mole?" question.
package quiz

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	// IdentityQuestionID is the "who is the mole?" question. It is asked
	// every round and never counts as used.
	IdentityQuestionID = 5

	// TargetPlaceholder is replaced by the quiz target's name when rendering.
	TargetPlaceholder = "{target}"
)

//go:embed data/questions.json
var defaultQuestions []byte

// Question is one multiple-choice quiz question.
type Question struct {
	ID      int      `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// Bank is an immutable question bank.
type Bank struct {
	questions  []Question
	byID       map[int]Question
	identityID int
}

// LoadDefault parses the embedded question bank.
func LoadDefault() (*Bank, error) {
	var qs []Question
	if err := json.Unmarshal(defaultQuestions, &qs); err != nil {
		return nil, fmt.Errorf("parsing questions.json: %w", err)
	}
	return NewBank(qs, IdentityQuestionID)
}

// NewBank validates qs and builds a bank. identityID must be present.
func NewBank(qs []Question, identityID int) (*Bank, error) {
	b := &Bank{byID: make(map[int]Question, len(qs)), identityID: identityID}
	for _, q := range qs {
		if _, dup := b.byID[q.ID]; dup {
			return nil, fmt.Errorf("duplicate question id %d", q.ID)
		}
		b.byID[q.ID] = q
		b.questions = append(b.questions, q)
	}
	if !b.Has(identityID) {
		return nil, fmt.Errorf("identity question %d missing from bank", identityID)
	}
	return b, nil
}

// IdentityID returns the id of the "who is the mole?" question.
func (b *Bank) IdentityID() int {
	return b.identityID
}

// Len returns the number of questions including the identity question.
func (b *Bank) Len() int {
	return len(b.questions)
}

// Has reports whether id is in the bank.
func (b *Bank) Has(id int) bool {
	_, ok := b.byID[id]
	return ok
}

// Render returns question id with the target substituted. The identity
// question's options are the roster names.
func (b *Bank) Render(id int, target string, roster []string) (Question, bool) {
	q, ok := b.byID[id]
	if !ok {
		return Question{}, false
	}
	out := Question{ID: q.ID, Text: strings.ReplaceAll(q.Text, TargetPlaceholder, target)}
	if id == b.identityID {
		out.Options = append([]string(nil), roster...)
	} else {
		out.Options = append([]string(nil), q.Options...)
	}
	return out, true
}

// RenderAll renders ids in bank order, skipping unknown ids.
func (b *Bank) RenderAll(ids []int, target string, roster []string) []Question {
	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []Question
	for _, q := range b.questions {
		if !want[q.ID] {
			continue
		}
		r, _ := b.Render(q.ID, target, roster)
		out = append(out, r)
	}
	return out
}
