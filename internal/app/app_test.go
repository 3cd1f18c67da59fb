package app

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"tictacgo/internal/config"
	"tictacgo/internal/gametest"
	"tictacgo/internal/repository"
)

func testConfig(srv *gametest.Server) *config.Config {
	return &config.Config{
		APIBaseURL:   srv.URL(),
		WSBaseURL:    srv.WSURL(),
		StoreBackend: "memory",
	}
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New(context.Background(), &config.Config{StoreBackend: "etcd"})
	if !errors.Is(err, repository.ErrUnknownBackend) {
		t.Fatalf("expected ErrUnknownBackend, got %v", err)
	}
}

func TestLogoutResetsGameState(t *testing.T) {
	ctx := context.Background()
	srv := gametest.New(t)
	a, err := New(ctx, testConfig(srv))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer a.Close()

	srv.Respond(http.MethodPost, "/players", http.StatusOK, `{"playerId":"p1","name":"Ann"}`)
	srv.Respond(http.MethodGet, "/games/g1", http.StatusOK, `{"gameId":"g1","status":"IN_PROGRESS"}`)

	if err := a.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := a.Players.RegisterPlayer(ctx, "Ann"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := a.Games.FetchGame(ctx, "g1"); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if err := a.Players.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok := a.Games.CurrentGame(); ok {
		t.Fatalf("current game survived logout")
	}
	if a.Players.IsAuthenticated() {
		t.Fatalf("still authenticated after logout")
	}
	if a.State.PlayerID(ctx) != "" {
		t.Fatalf("stored identity survived logout")
	}
}

func TestStartRestoresSession(t *testing.T) {
	ctx := context.Background()
	srv := gametest.New(t)
	store := repository.NewMemoryStore()
	_ = store.Set(ctx, repository.KeyPlayerID, "p1")
	_ = store.Set(ctx, repository.KeyPlayerName, "Ann")
	_ = store.Set(ctx, repository.KeyStats, `{"wins":2,"losses":0,"draws":1}`)

	a := NewWithStore(testConfig(srv), store)
	defer a.Close()
	if err := a.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if p, ok := a.Players.Player(); !ok || p.Name != "Ann" {
		t.Fatalf("player = %+v", p)
	}
	if s := a.Games.Stats(); s.Wins != 2 || s.Draws != 1 {
		t.Fatalf("stats = %+v", s)
	}
}
