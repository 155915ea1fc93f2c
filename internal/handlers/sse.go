package handlers

import (
	"log"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/aaronzipp/the-mole/internal/render"
	"github.com/aaronzipp/the-mole/internal/sse"
)

// HandleSSE streams change notifications. The first messages carry the
// current phase and scoreboard so a fresh client needs no separate fetch.
func (ctx *Context) HandleSSE(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	pid, err := playerID(r, 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	view, err := ctx.Engine.State(r.Context(), 0)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Set headers for SSE
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable buffering in nginx/proxies

	client := make(chan sse.Message, sse.BufferSize)
	ctx.Hub.Add(client, pid)
	defer ctx.Hub.Remove(client)
	if ctx.Config.Debug {
		log.Printf("HandleSSE: player=%d connected, now have %d total clients", pid, ctx.Hub.Count())
	}

	initial := []sse.Message{
		{Event: sse.EventStateChanged, Data: view.Phase.String()},
		{Event: sse.EventScoreUpdate, Data: render.Scoreboard(view)},
	}
	if own := ctx.stateFor(pid); own != "" {
		initial = append(initial, sse.Message{Event: sse.EventState, Data: own})
	}
	for _, msg := range initial {
		if err := sse.Write(w, msg); err != nil {
			return
		}
	}
	flusher.Flush()

	// Listen for updates
	done := r.Context().Done()
	for {
		select {
		case <-done:
			if ctx.Config.Debug {
				log.Printf("HandleSSE: player=%d disconnected", pid)
			}
			return
		case msg := <-client:
			if err := sse.Write(w, msg); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
