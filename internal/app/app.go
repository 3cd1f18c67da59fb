// Package app wires one client session: store, transport, services.
package app

import (
	"context"

	"tictacgo/internal/api"
	"tictacgo/internal/config"
	"tictacgo/internal/logger"
	"tictacgo/internal/repository"
	"tictacgo/internal/service"
	"tictacgo/internal/ws"
)

type App struct {
	Config  *config.Config
	Store   repository.KVStore
	State   *repository.ClientStateRepository
	API     *api.Client
	Players *service.PlayerService
	Games   *service.GameService
}

// New opens the configured store and builds the services on top of it.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := repository.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewWithStore(cfg, store), nil
}

// NewWithStore builds an App around an already opened store.
func NewWithStore(cfg *config.Config, store repository.KVStore) *App {
	state := repository.NewClientStateRepository(store)

	client := api.New(cfg.APIBaseURL, api.WithIdentity(state), api.WithTimeout(cfg.HTTPTimeout))

	a := &App{
		Config: cfg,
		Store:  store,
		State:  state,
		API:    client,
	}
	a.Games = service.NewGameService(client, state, func(gameID string) service.Relay {
		return ws.NewRelay(cfg.WSBaseURL, gameID)
	})
	a.Players = service.NewPlayerService(client, state, a.Reset)
	return a
}

// Start restores the stored session and stats.
func (a *App) Start(ctx context.Context) error {
	a.Games.LoadStats(ctx)
	return a.Players.Initialize(ctx)
}

// Reset runs after logout: everything derived from the old identity goes.
func (a *App) Reset(ctx context.Context) {
	a.Games.Reset(ctx)
	if err := a.Players.Initialize(ctx); err != nil {
		logger.Warn("re-initialize after logout failed", "error", err)
	}
}

func (a *App) Close() error {
	a.Games.Disconnect()
	return a.Store.Close()
}
