package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tictacgo/internal/app"
	"tictacgo/internal/config"
	"tictacgo/internal/gametest"
	"tictacgo/internal/repository"

	"github.com/gin-gonic/gin"
)

type failingStore struct {
	*repository.MemoryStore
}

func (failingStore) Ping(context.Context) error { return errors.New("disk gone") }

func newStatusServer(t *testing.T, store repository.KVStore) (*httptest.Server, *app.App, *gametest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	game := gametest.New(t)
	a := app.NewWithStore(&config.Config{APIBaseURL: game.URL(), WSBaseURL: game.WSURL()}, store)

	r := gin.New()
	RegisterRoutes(r, a, "test")
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, a, game
}

func get(t *testing.T, url string) (int, []byte) {
	t.Helper()
	res, err := http.Get(url)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	return res.StatusCode, body
}

func TestHealthAndReadiness(t *testing.T) {
	srv, _, _ := newStatusServer(t, repository.NewMemoryStore())

	if code, _ := get(t, srv.URL+"/healthz"); code != 200 {
		t.Fatalf("healthz = %d", code)
	}

	code, body := get(t, srv.URL+"/readyz")
	if code != 200 {
		t.Fatalf("readyz = %d: %s", code, body)
	}
	var resp struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "healthy" || resp.Checks["store"] != "healthy" || resp.Checks["relay"] != "idle" {
		t.Fatalf("readyz body = %s", body)
	}
}

func TestReadinessFailsWhenStoreDown(t *testing.T) {
	srv, _, _ := newStatusServer(t, failingStore{repository.NewMemoryStore()})

	code, body := get(t, srv.URL+"/readyz")
	if code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", code)
	}
	if !strings.Contains(string(body), "disk gone") {
		t.Fatalf("body = %s", body)
	}
}

func TestStateSnapshot(t *testing.T) {
	ctx := context.Background()
	srv, a, game := newStatusServer(t, repository.NewMemoryStore())

	game.Respond(http.MethodPost, "/players", http.StatusOK, `{"playerId":"p1","name":"Ann"}`)
	game.Respond(http.MethodPost, "/games", http.StatusOK, `{"gameId":"g1","mode":"PVC","status":"IN_PROGRESS"}`)
	if err := a.Players.RegisterPlayer(ctx, "Ann"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := a.Games.CreateGame(ctx, "PVC"); err != nil {
		t.Fatalf("create: %v", err)
	}

	code, body := get(t, srv.URL+"/state")
	if code != 200 {
		t.Fatalf("state = %d", code)
	}
	var resp struct {
		Player *struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"player"`
		Authenticated bool `json:"authenticated"`
		CurrentGame   *struct {
			GameID string `json:"gameId"`
		} `json:"currentGame"`
		Role string `json:"role"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Authenticated || resp.Player == nil || resp.Player.Name != "Ann" {
		t.Fatalf("player part = %s", body)
	}
	if resp.CurrentGame == nil || resp.CurrentGame.GameID != "g1" || resp.Role != "X" {
		t.Fatalf("game part = %s", body)
	}
}

func TestMetricsExposed(t *testing.T) {
	srv, _, _ := newStatusServer(t, repository.NewMemoryStore())
	get(t, srv.URL+"/healthz")

	code, body := get(t, srv.URL+"/metrics")
	if code != 200 || !strings.Contains(string(body), "tictacgo_status_requests_total") {
		t.Fatalf("metrics = %d", code)
	}
}
