package main

import (
	"context"
	"flag"
	"time"

	"tictacgo/internal/api"
	"tictacgo/internal/config"
	"tictacgo/internal/domain"
	"tictacgo/internal/logger"
	"tictacgo/internal/repository"
	"tictacgo/internal/ws"
)

// smoke player: its own in-memory identity and API client
type player struct {
	name   string
	state  *repository.ClientStateRepository
	client *api.Client
	p      domain.Player
}

func newPlayer(ctx context.Context, base, name string) *player {
	state := repository.NewClientStateRepository(repository.NewMemoryStore())
	pl := &player{
		name:   name,
		state:  state,
		client: api.New(base, api.WithIdentity(state)),
	}

	p, err := pl.client.RegisterPlayer(ctx, name)
	if err != nil {
		logger.Fatal("register failed", "name", name, "error", err)
	}
	if err := state.SaveIdentity(ctx, p); err != nil {
		logger.Fatal("save identity failed", "name", name, "error", err)
	}
	pl.p = p
	logger.Info("registered", "name", name, "player_id", p.ID)
	return pl
}

func main() {
	wait := flag.Duration("wait", 3*time.Second, "how long to wait for push frames")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	ctx := context.Background()

	a := newPlayer(ctx, cfg.APIBaseURL, "smokeA")
	b := newPlayer(ctx, cfg.APIBaseURL, "smokeB")

	g, err := a.client.CreateGame(ctx, domain.GameModePVP)
	if err != nil {
		logger.Fatal("create game failed", "error", err)
	}
	if _, err := b.client.JoinGame(ctx, g.GameID); err != nil {
		logger.Fatal("join game failed", "game_id", g.GameID, "error", err)
	}
	logger.Info("game ready", "game_id", g.GameID)

	frames := make(chan string, 16)
	for _, pl := range []*player{a, b} {
		name := pl.name
		relay := ws.NewRelay(cfg.WSBaseURL, g.GameID)
		dispose, err := relay.Connect(ctx, func(f domain.Frame) {
			u := f.State().Apply(domain.GameState{})
			logger.Info("frame", "player", name, "status", u.Status, "turn", u.CurrentTurn, "board", u.Board)
			frames <- name
		})
		if err != nil {
			logger.Fatal("relay dial failed", "player", name, "error", err)
		}
		defer dispose()
	}

	if err := a.client.SubmitMove(ctx, g.GameID, a.p.ID, 0, 0); err != nil {
		logger.Fatal("move failed", "error", err)
	}

	got := map[string]int{}
	deadline := time.After(*wait)
	for len(got) < 2 {
		select {
		case name := <-frames:
			got[name]++
		case <-deadline:
			logger.Fatal("timed out waiting for frames", "received", got)
		}
	}

	logger.Info("smoke test finished", "frames", got)
}
