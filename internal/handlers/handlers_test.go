package handlers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aaronzipp/the-mole/internal/config"
	"github.com/aaronzipp/the-mole/internal/game"
	"github.com/aaronzipp/the-mole/internal/quiz"
	"github.com/aaronzipp/the-mole/internal/sse"
	"github.com/aaronzipp/the-mole/internal/store"
)

func newTestContext(t *testing.T) (*Context, http.Handler) {
	t.Helper()
	st, err := store.Open(context.Background(), store.Options{
		Dialect:    store.DialectSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "mole.sqlite"),
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	bank, err := quiz.LoadDefault()
	if err != nil {
		t.Fatalf("load bank: %v", err)
	}

	ctx := &Context{
		Hub:    sse.NewHub(false),
		Config: config.Config{PublicURL: "http://mole.party/"},
	}
	ctx.Engine, err = game.New(st, bank,
		game.WithRand(rand.New(rand.NewSource(7))),
		game.WithOnChange(ctx.Notify),
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if err := ctx.Engine.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return ctx, ctx.Routes()
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func join(t *testing.T, h http.Handler, name string) joinResponse {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/join", map[string]string{"name": name})
	if rec.Code != http.StatusOK {
		t.Fatalf("join %s: status %d body %s", name, rec.Code, rec.Body.String())
	}
	return decode[joinResponse](t, rec)
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d, got %d (%s)", status, rec.Code, rec.Body.String())
	}
	body := decode[map[string]string](t, rec)
	if body["code"] != code || body["error"] == "" {
		t.Fatalf("expected code %s with a message, got %v", code, body)
	}
}

func TestJoinSetsCookieAndVIP(t *testing.T) {
	_, h := newTestContext(t)

	rec := do(t, h, http.MethodPost, "/join", map[string]string{"name": "Alice"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	first := decode[joinResponse](t, rec)
	if first.PlayerID != 1 || !first.IsVIP {
		t.Fatalf("first joiner should be VIP with id 1: %+v", first)
	}
	if c := rec.Result().Cookies(); len(c) == 0 || c[0].Name != playerCookie || c[0].Value != "1" {
		t.Fatalf("expected player cookie, got %v", c)
	}

	// query parameters work as well
	rec = do(t, h, http.MethodPost, "/join?name=Bob", nil)
	if got := decode[joinResponse](t, rec); got.PlayerID != 2 || got.IsVIP {
		t.Fatalf("unexpected second join: %+v", got)
	}
	if again := join(t, h, "Alice"); again.PlayerID != 1 {
		t.Fatalf("rejoin should return the existing id, got %d", again.PlayerID)
	}

	expectError(t, do(t, h, http.MethodPost, "/join", map[string]string{"name": "  "}), http.StatusBadRequest, "invalid_input")
	expectError(t, do(t, h, http.MethodPost, "/join", nil), http.StatusBadRequest, "invalid_input")
}

func TestMalformedBody(t *testing.T) {
	_, h := newTestContext(t)
	req := httptest.NewRequest(http.MethodPost, "/control", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	expectError(t, rec, http.StatusBadRequest, "invalid_input")
}

func TestControlFlowOverHTTP(t *testing.T) {
	_, h := newTestContext(t)
	vip := join(t, h, "Alice")
	other := join(t, h, "Bob")

	control := func(caller int64, action string) *httptest.ResponseRecorder {
		return do(t, h, http.MethodPost, "/control", map[string]any{"player_id": caller, "action": action})
	}

	expectError(t, control(other.PlayerID, "start_game"), http.StatusForbidden, "forbidden")
	expectError(t, control(vip.PlayerID, "dance"), http.StatusBadRequest, "unknown_action")
	expectError(t, control(vip.PlayerID, "start_quiz"), http.StatusConflict, "invalid_phase")

	for _, action := range []string{"start_game", "explain_round", "start_timer"} {
		if rec := control(vip.PlayerID, action); rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d body %s", action, rec.Code, rec.Body.String())
		}
	}

	rec := do(t, h, http.MethodGet, "/state?player_id=2", nil)
	view := decode[map[string]any](t, rec)
	if view["phase"] != "GAME_RUNNING" || view["timer_end"] == nil {
		t.Fatalf("unexpected state: %v", view)
	}
	if view["me"] == nil || view["game_specific"] == nil || view["secret_info"] == nil {
		t.Fatalf("player view missing private parts: %v", view)
	}

	rec = do(t, h, http.MethodPost, "/game_action", map[string]any{"player_id": other.PlayerID, "action": "add_question"})
	if rec.Code != http.StatusOK {
		t.Fatalf("game_action: status %d body %s", rec.Code, rec.Body.String())
	}
	if got := decode[map[string]any](t, rec); got["status"] != "updated" {
		t.Fatalf("unexpected action result: %v", got)
	}
	expectError(t,
		do(t, h, http.MethodPost, "/game_action", map[string]any{"player_id": other.PlayerID, "action": "fly"}),
		http.StatusBadRequest, "unknown_action")
	expectError(t,
		do(t, h, http.MethodPost, "/game_action", map[string]any{"action": "add_question"}),
		http.StatusBadRequest, "invalid_input")
	expectError(t,
		do(t, h, http.MethodPost, "/game_action", map[string]any{"player_id": 99, "action": "add_question"}),
		http.StatusNotFound, "not_found")

	expectError(t,
		do(t, h, http.MethodPost, "/submit_quiz", map[string]any{"player_id": other.PlayerID, "answers": map[string]string{"5": "Alice"}}),
		http.StatusConflict, "invalid_phase")
	expectError(t,
		do(t, h, http.MethodPost, "/submit_quiz", map[string]any{"player_id": other.PlayerID, "answers": map[string]string{"five": "Alice"}}),
		http.StatusBadRequest, "invalid_input")
}

func TestPublicStateHasNoPrivateParts(t *testing.T) {
	_, h := newTestContext(t)
	join(t, h, "Alice")
	join(t, h, "Bob")

	view := decode[map[string]any](t, do(t, h, http.MethodGet, "/state", nil))
	if view["phase"] != "LOBBY" || view["event_id"] == "" {
		t.Fatalf("unexpected public state: %v", view)
	}
	for _, key := range []string{"me", "game_specific", "secret_info", "quiz_hint"} {
		if _, ok := view[key]; ok {
			t.Fatalf("anonymous state must not include %s", key)
		}
	}
	expectError(t, do(t, h, http.MethodGet, "/state?player_id=abc", nil), http.StatusBadRequest, "invalid_input")
}

func TestResetIssuesNewEvent(t *testing.T) {
	_, h := newTestContext(t)
	join(t, h, "Alice")
	before := decode[map[string]any](t, do(t, h, http.MethodGet, "/state", nil))

	rec := do(t, h, http.MethodPost, "/reset", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset: status %d", rec.Code)
	}
	if c := rec.Result().Cookies(); len(c) == 0 || c[0].MaxAge >= 0 {
		t.Fatalf("reset should expire the player cookie, got %v", c)
	}
	after := decode[map[string]any](t, do(t, h, http.MethodGet, "/state", nil))
	if after["event_id"] == before["event_id"] {
		t.Fatalf("reset must issue a new event id")
	}
	if players, _ := after["players"].([]any); len(players) != 0 {
		t.Fatalf("reset must clear players, got %v", players)
	}
	if again := join(t, h, "Carol"); again.PlayerID != 1 || !again.IsVIP {
		t.Fatalf("first joiner after reset should be id 1 and VIP: %+v", again)
	}
}

func TestScoreboardAndQR(t *testing.T) {
	_, h := newTestContext(t)
	join(t, h, "<b>Alice</b>")

	rec := do(t, h, http.MethodGet, "/scoreboard", nil)
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
	if body := rec.Body.String(); !strings.Contains(body, "&lt;b&gt;Alice&lt;/b&gt;") || strings.Contains(body, "<b>Alice") {
		t.Fatalf("scoreboard must escape names: %s", body)
	}

	rec = do(t, h, http.MethodGet, "/join/qr", nil)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("qr: status %d type %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Fatalf("qr body is not a PNG")
	}
}

// subscribe opens the event stream at path and returns a function that
// blocks until a line containing want arrives and returns that line.
func subscribe(t *testing.T, srv *httptest.Server, path string) func(want string) string {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	lines := make(chan string, 256)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()
	return func(want string) string {
		t.Helper()
		timeout := time.After(5 * time.Second)
		for {
			select {
			case line, ok := <-lines:
				if !ok {
					t.Fatalf("stream closed before %q", want)
				}
				if strings.Contains(line, want) {
					return line
				}
			case <-timeout:
				t.Fatalf("timed out waiting for %q", want)
			}
		}
	}
}

func TestEventsStreamPushesChanges(t *testing.T) {
	ctx, h := newTestContext(t)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close) // runs after the stream body is closed
	waitFor := subscribe(t, srv, "/events")

	waitFor("event: " + sse.EventStateChanged)
	waitFor("data: LOBBY")
	waitFor("Players (0)")

	if _, err := ctx.Engine.Join(context.Background(), "Alice"); err != nil {
		t.Fatalf("join: %v", err)
	}
	waitFor("event: " + sse.EventScoreUpdate)
	waitFor("Players (1)")
}

func TestEventsStreamSendsOwnState(t *testing.T) {
	ctx, h := newTestContext(t)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close) // runs after the stream body is closed
	vip := join(t, h, "Alice")
	join(t, h, "Bob")

	waitFor := subscribe(t, srv, "/events?player_id=2")
	line := waitFor(`"me":{"id":2,`)
	if !strings.HasPrefix(line, "data: ") {
		t.Fatalf("unexpected state line %q", line)
	}

	if err := ctx.Engine.Control(context.Background(), vip.PlayerID, "start_game", game.ControlPayload{}); err != nil {
		t.Fatalf("start_game: %v", err)
	}
	line = waitFor(`"phase":"REVEAL"`)
	for !strings.Contains(line, `"me":`) {
		line = waitFor(`"phase":"REVEAL"`)
	}
	if !strings.Contains(line, `"me":{"id":2,`) || strings.Contains(line, `"me":{"id":1,`) {
		t.Fatalf("stream must carry only the subscriber's own view: %s", line)
	}
}
