package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/aaronzipp/the-mole/internal/apperr"
	"github.com/aaronzipp/the-mole/internal/game"
)

type controlRequest struct {
	PlayerID int64               `json:"player_id"`
	Action   string              `json:"action"`
	Payload  game.ControlPayload `json:"payload"`
}

type actionRequest struct {
	PlayerID int64           `json:"player_id"`
	Action   string          `json:"action"`
	Payload  json.RawMessage `json:"payload"`
}

type quizRequest struct {
	PlayerID int64             `json:"player_id"`
	Answers  map[string]string `json:"answers"`
}

type statusResponse struct {
	Status string `json:"status"`
}

// HandleControl runs a facilitator command.
func (ctx *Context) HandleControl(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req controlRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	caller, err := playerID(r, req.PlayerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	action := orQuery(r, req.Action, "action")
	if ctx.Config.Debug {
		log.Printf("HandleControl: caller=%d action=%s", caller, action)
	}
	if err := ctx.Engine.Control(r.Context(), caller, action, req.Payload); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

// HandleGameAction forwards a player action to the active mini-game.
func (ctx *Context) HandleGameAction(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req actionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	pid, err := playerID(r, req.PlayerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if pid == 0 {
		writeError(w, r, apperr.New(apperr.CodeInvalidInput, "player_id is required"))
		return
	}
	res, err := ctx.Engine.Action(r.Context(), pid, orQuery(r, req.Action, "action"), req.Payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleSubmitQuiz stores a player's quiz answers keyed by question id.
func (ctx *Context) HandleSubmitQuiz(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req quizRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	pid, err := playerID(r, req.PlayerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if pid == 0 {
		writeError(w, r, apperr.New(apperr.CodeInvalidInput, "player_id is required"))
		return
	}
	answers := make(map[int]string, len(req.Answers))
	for k, v := range req.Answers {
		id, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			writeError(w, r, apperr.New(apperr.CodeInvalidInput, "answer keys must be question ids"))
			return
		}
		answers[id] = v
	}
	if err := ctx.Engine.SubmitQuiz(r.Context(), pid, answers); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "submitted"})
}
