package handlers

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/aaronzipp/the-mole/internal/render"
)

// HandleState serves the caller's projection of the event. Without a player
// id only the public part is returned.
func (ctx *Context) HandleState(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	pid, err := playerID(r, 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := ctx.Engine.State(r.Context(), pid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, view)
}

// HandleScoreboard serves the projector fragment.
func (ctx *Context) HandleScoreboard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	view, err := ctx.Engine.State(r.Context(), 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(render.Scoreboard(view)))
}
