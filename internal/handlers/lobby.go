package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const qrSize = 320

type joinRequest struct {
	Name string `json:"name"`
}

type joinResponse struct {
	PlayerID int64 `json:"player_id"`
	IsVIP    bool  `json:"is_vip"`
}

// HandleJoin registers a player, or returns the existing player with the
// same name, and stores the id in a session cookie.
func (ctx *Context) HandleJoin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req joinRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := ctx.Engine.Join(r.Context(), orQuery(r, req.Name, "name"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     playerCookie,
		Value:    strconv.FormatInt(p.ID, 10),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, joinResponse{PlayerID: p.ID, IsVIP: p.IsVIP})
}

// HandleJoinQR serves a PNG QR code of the public join URL.
func (ctx *Context) HandleJoinQR(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	url := ctx.Config.JoinURL()
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		log.Printf("HandleJoinQR: url=%s: %v", url, err)
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(png)
}
