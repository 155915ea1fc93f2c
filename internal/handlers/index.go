// Package handlers exposes the engine over JSON/HTTP and pushes change
// notifications to connected clients.
package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/aaronzipp/the-mole/internal/config"
	"github.com/aaronzipp/the-mole/internal/game"
	"github.com/aaronzipp/the-mole/internal/models"
	"github.com/aaronzipp/the-mole/internal/render"
	"github.com/aaronzipp/the-mole/internal/sse"
)

// Context holds shared application dependencies
type Context struct {
	Engine *game.Engine
	Hub    *sse.Hub
	Config config.Config
}

// Routes registers every endpoint on a new router.
func (ctx *Context) Routes() http.Handler {
	r := httprouter.New()

	r.GET("/state", ctx.HandleState)
	r.GET("/scoreboard", ctx.HandleScoreboard)
	r.GET("/events", ctx.HandleSSE)

	r.POST("/join", ctx.HandleJoin)
	r.GET("/join/qr", ctx.HandleJoinQR)

	r.POST("/control", ctx.HandleControl)
	r.POST("/game_action", ctx.HandleGameAction)
	r.POST("/submit_quiz", ctx.HandleSubmitQuiz)
	r.POST("/reset", ctx.HandleReset)

	return r
}

// Notify is the engine's change hook. It tells every client to refetch its
// state and pushes the new projector scoreboard.
func (ctx *Context) Notify(phase models.Phase) {
	if ctx.Hub == nil {
		return
	}
	sent := ctx.Hub.Broadcast(sse.EventStateChanged, phase.String())
	if ctx.Config.Debug {
		log.Printf("notify: phase=%s clients=%d", phase, sent)
	}
	if ctx.Engine == nil {
		return
	}
	ctx.Hub.BroadcastPersonalized(sse.EventState, ctx.stateFor)
	html, err := ctx.scoreboard()
	if err != nil {
		log.Printf("notify: scoreboard failed: %v", err)
		return
	}
	ctx.Hub.Broadcast(sse.EventScoreUpdate, html)
}

// stateFor renders playerID's own state view as one line of JSON, or ""
// when it cannot be built.
func (ctx *Context) stateFor(playerID int64) string {
	view, err := ctx.Engine.State(context.Background(), playerID)
	if err != nil {
		log.Printf("notify: state for player=%d failed: %v", playerID, err)
		return ""
	}
	raw, err := json.Marshal(view)
	if err != nil {
		log.Printf("notify: encode state for player=%d failed: %v", playerID, err)
		return ""
	}
	return string(raw)
}

func (ctx *Context) scoreboard() (string, error) {
	view, err := ctx.Engine.State(context.Background(), 0)
	if err != nil {
		return "", err
	}
	return render.Scoreboard(view), nil
}
