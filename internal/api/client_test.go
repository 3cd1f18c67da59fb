package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"tictacgo/internal/domain"
	"tictacgo/internal/gametest"
	"tictacgo/internal/logger"
)

type staticIdentity string

func (s staticIdentity) PlayerID(context.Context) string { return string(s) }

func newClient(srv *gametest.Server, id string) *Client {
	return New(srv.URL(), WithIdentity(staticIdentity(id)), WithLogger(logger.Discard()))
}

func TestIdentityHeaderAttached(t *testing.T) {
	srv := gametest.New(t)
	srv.Respond(http.MethodGet, "/games/g1", http.StatusOK, `{"gameId":"g1"}`)
	srv.Respond(http.MethodPost, "/games", http.StatusOK, `{"gameId":"g2"}`)

	c := newClient(srv, "player-123")
	ctx := context.Background()
	if _, err := c.GetGame(ctx, "g1"); err != nil {
		t.Fatalf("get game: %v", err)
	}
	if _, err := c.CreateGame(ctx, domain.GameModePVP); err != nil {
		t.Fatalf("create game: %v", err)
	}

	reqs := srv.Requests()
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(reqs))
	}
	for _, r := range reqs {
		if got := r.Header.Get(HeaderPlayerID); got != "player-123" {
			t.Fatalf("%s %s: %s = %q", r.Method, r.Path, HeaderPlayerID, got)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Fatalf("%s %s: content type = %q", r.Method, r.Path, r.Header.Get("Content-Type"))
		}
		if r.Header.Get(HeaderRequestID) == "" {
			t.Fatalf("%s %s: missing request id", r.Method, r.Path)
		}
	}
}

func TestIdentityHeaderOmittedWithoutID(t *testing.T) {
	srv := gametest.New(t)
	srv.Respond(http.MethodGet, "/games/g1", http.StatusOK, `{"gameId":"g1"}`)

	c := newClient(srv, "")
	if _, err := c.GetGame(context.Background(), "g1"); err != nil {
		t.Fatalf("get game: %v", err)
	}
	r, _ := srv.LastRequest(http.MethodGet, "/games/g1")
	if _, ok := r.Header[HeaderPlayerID]; ok {
		t.Fatalf("identity header must be omitted, got %q", r.Header.Get(HeaderPlayerID))
	}
}

func TestRegisterPlayer(t *testing.T) {
	srv := gametest.New(t)
	srv.Respond(http.MethodPost, "/players", http.StatusCreated, `{"playerId":"p1","Name":"Bob"}`)

	p, err := newClient(srv, "").RegisterPlayer(context.Background(), "Bob")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if p != (domain.Player{ID: "p1", Name: "Bob", Symbol: domain.SymbolX}) {
		t.Fatalf("player = %+v", p)
	}

	r, _ := srv.LastRequest(http.MethodPost, "/players")
	var body map[string]string
	if err := r.JSON(&body); err != nil || body["name"] != "Bob" {
		t.Fatalf("request body = %s (%v)", r.Body, err)
	}
}

func TestRegisterPlayerKeepsRequestedNameWhenOmitted(t *testing.T) {
	srv := gametest.New(t)
	srv.Respond(http.MethodPost, "/players", http.StatusCreated, `{"playerId":"p9"}`)

	p, err := newClient(srv, "").RegisterPlayer(context.Background(), "Nia")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if p.ID != "p9" || p.Name != "Nia" {
		t.Fatalf("player = %+v", p)
	}
}

func TestRegisterPlayerMissingID(t *testing.T) {
	srv := gametest.New(t)
	srv.Respond(http.MethodPost, "/players", http.StatusOK, `{"name":"Bob"}`)

	_, err := newClient(srv, "").RegisterPlayer(context.Background(), "Bob")
	if !errors.Is(err, domain.ErrMissingPlayerID) {
		t.Fatalf("expected ErrMissingPlayerID, got %v", err)
	}
}

func TestListGamesQueryAndShapes(t *testing.T) {
	cases := []struct {
		body string
		want int
	}{
		{`{"games":[{"gameId":"a"},{"gameId":"b"}]}`, 2},
		{`[{"gameId":"c"}]`, 1},
		{`{}`, 0},
	}

	for _, tc := range cases {
		srv := gametest.New(t)
		srv.Respond(http.MethodGet, "/games", http.StatusOK, tc.body)

		games, err := newClient(srv, "").ListGames(context.Background(), domain.GameModePVP, domain.GameStatusWaiting)
		if err != nil {
			t.Fatalf("%s: %v", tc.body, err)
		}
		if len(games) != tc.want {
			t.Fatalf("%s: got %d games; want %d", tc.body, len(games), tc.want)
		}

		r, _ := srv.LastRequest(http.MethodGet, "/games")
		if r.Query.Get("mode") != "PVP" || r.Query.Get("status") != "WAITING_FOR_PLAYER" {
			t.Fatalf("query = %v", r.Query)
		}
	}
}

func TestSubmitMoveExplicitHeader(t *testing.T) {
	srv := gametest.New(t)
	srv.Respond(http.MethodPost, "/games/g1/moves", http.StatusOK, `{}`)

	// identity source and explicit id disagree; the explicit one wins
	c := newClient(srv, "stored")
	if err := c.SubmitMove(context.Background(), "g1", "explicit", 1, 2); err != nil {
		t.Fatalf("submit: %v", err)
	}

	r, ok := srv.LastRequest(http.MethodPost, "/games/g1/moves")
	if !ok {
		t.Fatalf("move not sent")
	}
	if r.Header.Get(HeaderPlayerID) != "explicit" {
		t.Fatalf("header = %q", r.Header.Get(HeaderPlayerID))
	}
	var body struct{ Row, Col int }
	if err := r.JSON(&body); err != nil || body.Row != 1 || body.Col != 2 {
		t.Fatalf("body = %s (%v)", r.Body, err)
	}
}

func TestErrorStatusSurfaced(t *testing.T) {
	srv := gametest.New(t)
	srv.Respond(http.MethodPost, "/games/g1/moves", http.StatusConflict, `{"message":"Not your turn"}`)
	srv.Respond(http.MethodPost, "/games/g1/join", http.StatusBadRequest, `oops`)

	c := newClient(srv, "p1")
	err := c.SubmitMove(context.Background(), "g1", "p1", 0, 0)
	if !IsStatus(err, http.StatusConflict) {
		t.Fatalf("expected 409 APIError, got %v", err)
	}
	if msg, ok := ServerMessage(err); !ok || msg != "Not your turn" {
		t.Fatalf("message = %q %v", msg, ok)
	}

	_, err = c.JoinGame(context.Background(), "g1")
	if !IsStatus(err, http.StatusBadRequest) {
		t.Fatalf("expected 400 APIError, got %v", err)
	}
	if _, ok := ServerMessage(err); ok {
		t.Fatalf("non-JSON body must not yield a message")
	}
}

func TestTransportError(t *testing.T) {
	srv := gametest.New(t)
	url := srv.URL()
	srv.Close()

	_, err := New(url, WithLogger(logger.Discard())).GetGame(context.Background(), "g1")
	if err == nil {
		t.Fatalf("expected transport error")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Fatalf("transport failure must not be an APIError")
	}
}
