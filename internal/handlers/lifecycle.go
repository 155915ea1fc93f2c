package handlers

import (
	"log"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/aaronzipp/the-mole/internal/sse"
)

type resetResponse struct {
	Message string `json:"message"`
}

// HandleReset discards the event and starts a new one. Clients receive an
// event-reset push so they drop their cached player id.
func (ctx *Context) HandleReset(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := ctx.Engine.Reset(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	log.Printf("HandleReset: event reset from %s", r.RemoteAddr)

	http.SetCookie(w, &http.Cookie{Name: playerCookie, Value: "", Path: "/", MaxAge: -1})
	if ctx.Hub != nil {
		ctx.Hub.Broadcast(sse.EventReset, "reset")
	}
	writeJSON(w, http.StatusOK, resetResponse{Message: "Game reset"})
}
