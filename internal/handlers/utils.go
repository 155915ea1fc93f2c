package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/aaronzipp/the-mole/internal/apperr"
)

const (
	playerCookie = "player_id"
	maxBodyBytes = 1 << 20
)

// decodeBody reads an optional JSON body into v. An empty body is not an
// error so that clients may pass everything as query parameters.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return apperr.Wrap(apperr.CodeInvalidInput, "malformed request body", err)
	}
	return nil
}

// playerID resolves the caller from the given value, the player_id query
// parameter or the session cookie, in that order. Zero means anonymous.
func playerID(r *http.Request, fromBody int64) (int64, error) {
	if fromBody != 0 {
		return fromBody, nil
	}
	raw := strings.TrimSpace(r.URL.Query().Get("player_id"))
	if raw == "" {
		if cookie, err := r.Cookie(playerCookie); err == nil {
			raw = cookie.Value
		}
	}
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, apperr.New(apperr.CodeInvalidInput, "player_id must be a positive integer")
	}
	return id, nil
}

// orQuery returns v, or the named query parameter when v is empty.
func orQuery(r *http.Request, v, name string) string {
	if v != "" {
		return v
	}
	return r.URL.Query().Get(name)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("writeJSON: encode failed: %v", err)
	}
}

type errorBody struct {
	Error string      `json:"error"`
	Code  apperr.Code `json:"code"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperr.CodeOf(err)
	if !apperr.IsCoded(err) || code == apperr.CodeInternal || code == apperr.CodePluginFailure {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, code.HTTPStatus(), errorBody{Error: apperr.Public(err), Code: code})
}
