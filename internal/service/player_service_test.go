package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"tictacgo/internal/api"
	"tictacgo/internal/domain"
	"tictacgo/internal/gametest"
	"tictacgo/internal/logger"
	"tictacgo/internal/repository"
)

func newPlayerService(t *testing.T, reload func(context.Context)) (*PlayerService, *gametest.Server, *repository.MemoryStore) {
	t.Helper()
	srv := gametest.New(t)
	store := repository.NewMemoryStore()
	state := repository.NewClientStateRepository(store)
	client := api.New(srv.URL(), api.WithIdentity(state), api.WithLogger(logger.Discard()))
	svc := NewPlayerService(client, state, reload)
	svc.log = logger.Discard()
	return svc, srv, store
}

func TestInitializeRestoresIdentity(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newPlayerService(t, nil)

	if err := svc.Initialize(ctx); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if svc.IsAuthenticated() {
		t.Fatalf("empty store must leave the session unauthenticated")
	}

	_ = store.Set(ctx, repository.KeyPlayerID, "p1")
	_ = store.Set(ctx, repository.KeyPlayerName, "Bob")
	if err := svc.Initialize(ctx); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := svc.Initialize(ctx); err != nil {
		t.Fatalf("second initialize: %v", err)
	}

	p, ok := svc.Player()
	if !ok || !svc.IsAuthenticated() {
		t.Fatalf("expected restored session")
	}
	if p != (domain.Player{ID: "p1", Name: "Bob", Symbol: domain.SymbolX}) {
		t.Fatalf("player = %+v", p)
	}
}

func TestRegisterPlayerNormalizesAndPersists(t *testing.T) {
	ctx := context.Background()
	svc, srv, store := newPlayerService(t, nil)
	srv.Respond(http.MethodPost, "/players", http.StatusCreated, `{"playerId":"p1","Name":"Bob"}`)

	if err := svc.RegisterPlayer(ctx, "Bob"); err != nil {
		t.Fatalf("register: %v", err)
	}

	p, _ := svc.Player()
	if p != (domain.Player{ID: "p1", Name: "Bob", Symbol: domain.SymbolX}) {
		t.Fatalf("player = %+v", p)
	}
	if !svc.IsAuthenticated() || svc.IsLoading() || svc.Error() != "" {
		t.Fatalf("unexpected flags: auth=%v loading=%v err=%q", svc.IsAuthenticated(), svc.IsLoading(), svc.Error())
	}
	if id, _, _ := store.Get(ctx, repository.KeyPlayerID); id != "p1" {
		t.Fatalf("stored id = %q", id)
	}
	if name, _, _ := store.Get(ctx, repository.KeyPlayerName); name != "Bob" {
		t.Fatalf("stored name = %q", name)
	}
}

func TestRegisterPlayerMissingIDKeepsPriorState(t *testing.T) {
	ctx := context.Background()
	svc, srv, store := newPlayerService(t, nil)
	srv.Respond(http.MethodPost, "/players", http.StatusOK, `{"playerId":"p1","name":"Alice"}`)
	if err := svc.RegisterPlayer(ctx, "Alice"); err != nil {
		t.Fatalf("first register: %v", err)
	}

	srv.Respond(http.MethodPost, "/players", http.StatusOK, `{"name":"Mallory"}`)
	err := svc.RegisterPlayer(ctx, "Mallory")
	if !errors.Is(err, domain.ErrMissingPlayerID) {
		t.Fatalf("expected ErrMissingPlayerID, got %v", err)
	}
	if svc.Error() != ErrRegistrationFailed {
		t.Fatalf("error = %q", svc.Error())
	}

	p, ok := svc.Player()
	if !ok || !svc.IsAuthenticated() || p.ID != "p1" || p.Name != "Alice" {
		t.Fatalf("prior session changed: %+v auth=%v", p, svc.IsAuthenticated())
	}
	if name, _, _ := store.Get(ctx, repository.KeyPlayerName); name != "Alice" {
		t.Fatalf("stored name changed to %q", name)
	}
}

func TestRegisterPlayerServerDown(t *testing.T) {
	svc, srv, _ := newPlayerService(t, nil)
	srv.Respond(http.MethodPost, "/players", http.StatusInternalServerError, `{"message":"boom"}`)

	if err := svc.RegisterPlayer(context.Background(), "Bob"); err == nil {
		t.Fatalf("expected error")
	}
	if svc.IsAuthenticated() || svc.Error() != ErrRegistrationFailed {
		t.Fatalf("auth=%v err=%q", svc.IsAuthenticated(), svc.Error())
	}
}

func TestLogoutClearsAndReloads(t *testing.T) {
	ctx := context.Background()
	reloads := 0
	svc, srv, store := newPlayerService(t, func(context.Context) { reloads++ })
	srv.Respond(http.MethodPost, "/players", http.StatusOK, `{"id":"p9","name":"Zed"}`)
	if err := svc.RegisterPlayer(ctx, "Zed"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if svc.IsAuthenticated() {
		t.Fatalf("still authenticated")
	}
	if _, ok := svc.Player(); ok {
		t.Fatalf("player survived logout")
	}
	if _, ok, _ := store.Get(ctx, repository.KeyPlayerID); ok {
		t.Fatalf("player id survived logout")
	}
	if reloads != 1 {
		t.Fatalf("reload ran %d times", reloads)
	}
}

func TestRequireAuth(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newPlayerService(t, nil)

	if svc.RequireAuth(ctx) {
		t.Fatalf("guard must reject an empty session")
	}
	_ = store.Set(ctx, repository.KeyPlayerID, "p1")
	_ = store.Set(ctx, repository.KeyPlayerName, "Bob")
	if !svc.RequireAuth(ctx) {
		t.Fatalf("guard must restore a stored session")
	}
}

func TestRegisterWithoutNameSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	svc, srv, store := newPlayerService(t, nil)
	srv.Respond(http.MethodPost, "/players", http.StatusOK, `{"playerId":"p9"}`)

	if err := svc.RegisterPlayer(ctx, "Nia"); err != nil {
		t.Fatalf("register: %v", err)
	}

	state := repository.NewClientStateRepository(store)
	restarted := NewPlayerService(nil, state, nil)
	restarted.log = logger.Discard()
	if err := restarted.Initialize(ctx); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	p, ok := restarted.Player()
	if !ok || p.ID != "p9" || p.Name != "Nia" {
		t.Fatalf("restored player = %+v ok=%v", p, ok)
	}
}
