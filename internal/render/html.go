// Package render builds the HTML fragments for the projector scoreboard.
package render

import (
	htmlpkg "html"
	"sort"
	"strconv"
	"strings"

	"github.com/aaronzipp/the-mole/internal/game"
	"github.com/aaronzipp/the-mole/internal/models"
)

// PlayerList generates HTML for the player list
func PlayerList(players []game.RosterEntry) string {
	list := byName(players)
	var b strings.Builder
	b.WriteString(`<h2>Players (`)
	b.WriteString(strconv.Itoa(len(list)))
	b.WriteString(`)</h2><ul class="player-list">`)
	for _, p := range list {
		b.WriteString(`<li class="player-item"><span class="player-name">`)
		b.WriteString(htmlpkg.EscapeString(p.Name))
		b.WriteString(`</span>`)
		if p.IsVIP {
			b.WriteString(`<span class="badge-pill badge-vip">VIP</span>`)
		}
		b.WriteString(`</li>`)
	}
	b.WriteString(`</ul>`)
	return b.String()
}

// ScoreTable generates HTML for the score table, highest score first. The
// role column only appears once the mole is revealed.
func ScoreTable(players []game.RosterEntry) string {
	if len(players) == 0 {
		return ""
	}
	list := byName(players)
	sort.SliceStable(list, func(i, j int) bool { return list[i].Score > list[j].Score })

	revealed := list[0].IsMole != nil
	var b strings.Builder
	b.WriteString(`<h2>Scores</h2><table class="score-table" aria-label="Scoreboard sorted by score"><thead><tr><th>Player</th><th aria-sort="descending" title="Sorted by score (desc)">Score ↓</th>`)
	if revealed {
		b.WriteString(`<th>Role</th>`)
	}
	b.WriteString(`</tr></thead><tbody>`)
	for _, p := range list {
		b.WriteString(`<tr><td class="score-player">`)
		b.WriteString(htmlpkg.EscapeString(p.Name))
		b.WriteString(`</td><td><span class="badge-pill badge-score">`)
		b.WriteString(strconv.Itoa(p.Score))
		b.WriteString(`</span></td>`)
		if revealed {
			if *p.IsMole {
				b.WriteString(`<td><span class="badge-pill badge-mole">Mole</span></td>`)
			} else {
				b.WriteString(`<td><span class="badge-pill badge-innocent">Innocent</span></td>`)
			}
		}
		b.WriteString(`</tr>`)
	}
	b.WriteString(`</tbody></table>`)
	return b.String()
}

// QuizProgress generates HTML for the quiz completion count
func QuizProgress(players []game.RosterEntry) string {
	done := 0
	for _, p := range players {
		if p.HasFinishedQuiz {
			done++
		}
	}
	var b strings.Builder
	b.WriteString(`<p class="ready-count">`)
	b.WriteString(strconv.Itoa(done))
	b.WriteString(`/`)
	b.WriteString(strconv.Itoa(len(players)))
	b.WriteString(` players finished the quiz</p>`)
	return b.String()
}

var phaseLabels = map[models.Phase]string{
	models.PhaseLobby:       "Waiting for players",
	models.PhaseReveal:      "The mole has been chosen",
	models.PhaseExplanation: "Briefing",
	models.PhaseGameRunning: "Game in progress",
	models.PhaseScoring:     "Scoring",
	models.PhaseQuizIntro:   "Quiz coming up",
	models.PhaseQuiz:        "Quiz",
	models.PhaseFinalReveal: "Final reveal",
}

// PhaseBanner generates the heading for the current phase and round
func PhaseBanner(phase models.Phase, round game.RoundInfo) string {
	label, ok := phaseLabels[phase]
	if !ok {
		label = phase.String()
	}
	var b strings.Builder
	b.WriteString(`<div class="phase-banner"><h1>`)
	b.WriteString(htmlpkg.EscapeString(label))
	b.WriteString(`</h1>`)
	if phase != models.PhaseLobby && phase != models.PhaseFinalReveal {
		b.WriteString(`<p class="text-muted">Round `)
		b.WriteString(strconv.Itoa(round.Current))
		b.WriteString(` of `)
		b.WriteString(strconv.Itoa(round.Total))
		b.WriteString(`</p>`)
	}
	b.WriteString(`</div>`)
	return b.String()
}

// Scoreboard renders the full projector fragment for a public state view.
func Scoreboard(v game.StateView) string {
	var b strings.Builder
	b.WriteString(PhaseBanner(v.Phase, v.RoundInfo))
	switch v.Phase {
	case models.PhaseLobby:
		b.WriteString(PlayerList(v.Players))
	case models.PhaseQuiz:
		b.WriteString(QuizProgress(v.Players))
		b.WriteString(ScoreTable(v.Players))
	default:
		b.WriteString(ScoreTable(v.Players))
	}
	return b.String()
}

// byName returns a copy sorted by case-insensitive name
func byName(players []game.RosterEntry) []game.RosterEntry {
	list := make([]game.RosterEntry, len(players))
	copy(list, players)
	sort.SliceStable(list, func(i, j int) bool { return strings.ToLower(list[i].Name) < strings.ToLower(list[j].Name) })
	return list
}
