package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"tictacgo/internal/app"
	"tictacgo/internal/config"
	"tictacgo/internal/logger"
)

// Registers a player and stores the identity in the configured client state,
// so the next `app` run starts logged in.
func main() {
	flag.Parse()
	name := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if name == "" {
		fmt.Fprintln(os.Stderr, "usage: register_player <name>")
		os.Exit(2)
	}

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	ctx := context.Background()

	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.Fatal("open client state failed", "error", err)
	}
	defer a.Close()

	if err := a.Players.RegisterPlayer(ctx, name); err != nil {
		logger.Fatal(a.Players.Error(), "error", err)
	}

	// verify read back
	id, stored, ok, err := a.State.Identity(ctx)
	if err != nil || !ok {
		logger.Fatal("identity not persisted", "error", err)
	}
	fmt.Printf("player_id=%s name=%s store=%s\n", id, stored, cfg.StoreBackend)
}
