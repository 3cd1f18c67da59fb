// Package cli is the line-oriented front end: one command per line, board
// redrawn whenever the game service publishes a new state.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"tictacgo/internal/app"
	"tictacgo/internal/domain"
	"tictacgo/internal/render"
)

// ErrQuit is returned by Exec for the quit command.
var ErrQuit = errors.New("quit")

const helpText = `Commands:
  register <name>      create a player and log in
  whoami               show the logged-in player
  lobby                list open PVP games
  create [PVP|PVC]     start a game (default PVP)
  join <id>            join an open game
  open <id>            watch a game
  move <row> <col>     play a cell, 0-based
  show                 redraw the current game
  stats                local win/loss/draw counters
  history              finished games
  leave                stop watching the current game
  logout               forget this player
  help                 this text
  quit                 exit`

// public commands skip the login guard
var public = map[string]bool{"register": true, "help": true, "quit": true, "exit": true}

type Shell struct {
	app *app.App

	mu  sync.Mutex
	out io.Writer
}

func NewShell(a *app.App, out io.Writer) *Shell {
	return &Shell{app: a, out: out}
}

func (s *Shell) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}

func (s *Shell) println(text string) {
	if text == "" {
		return
	}
	s.printf("%s\n", text)
}

func (s *Shell) Prompt() {
	s.printf("> ")
}

// Run executes lines until ctx ends, lines closes or quit is entered.
func (s *Shell) Run(ctx context.Context, lines <-chan string) error {
	s.println(helpText)
	s.Prompt()
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if err := s.Exec(ctx, line); errors.Is(err, ErrQuit) {
				return nil
			} else if err != nil {
				s.println(render.Error(err.Error()))
			}
			s.Prompt()
		}
	}
}

// Render redraws the board for every published state until ctx ends.
func (s *Shell) Render(ctx context.Context) error {
	updates, cancel := s.app.Games.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case g, ok := <-updates:
			if !ok {
				return nil
			}
			s.showGame(ctx, g)
			if g.IsFinished() {
				s.println(render.Stats(s.app.Games.Stats()))
			}
		}
	}
}

func (s *Shell) showGame(ctx context.Context, g domain.GameState) {
	role, _ := s.app.Games.Role(ctx, g.GameID)
	s.printf("\n%s\n", render.Board(g, role))
}

// Exec runs one command line. User-facing failures are printed, not returned;
// the returned error is for usage mistakes and ErrQuit.
func (s *Shell) Exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	if !public[cmd] && !s.app.Players.RequireAuth(ctx) {
		s.println("Not logged in. Use: register <name>")
		return nil
	}

	switch cmd {
	case "help":
		s.println(helpText)
	case "quit", "exit":
		return ErrQuit
	case "register":
		return s.register(ctx, args)
	case "whoami":
		p, _ := s.app.Players.Player()
		s.println(render.Player(p))
	case "lobby":
		if err := s.app.Games.FetchAvailableGames(ctx); err != nil {
			s.println(render.Error("Could not load games."))
			return nil
		}
		s.println(render.Lobby(s.app.Games.AvailableGames()))
	case "create":
		return s.create(ctx, args)
	case "join":
		if len(args) != 1 {
			return errors.New("usage: join <id>")
		}
		id, err := s.app.Games.JoinGame(ctx, args[0])
		if err != nil {
			s.println(render.Error(s.app.Games.Error()))
			return nil
		}
		s.open(ctx, id)
	case "open":
		if len(args) != 1 {
			return errors.New("usage: open <id>")
		}
		s.open(ctx, args[0])
	case "move":
		return s.move(ctx, args)
	case "show":
		g, ok := s.app.Games.CurrentGame()
		if !ok {
			s.println("No game open.")
			return nil
		}
		s.showGame(ctx, g)
	case "stats":
		s.println(render.Stats(s.app.Games.Stats()))
	case "history":
		records, err := s.app.Games.History(ctx)
		if err != nil {
			return err
		}
		s.println(render.History(records))
	case "leave":
		s.app.Games.Disconnect()
		s.println("Left the game.")
	case "logout":
		if err := s.app.Players.Logout(ctx); err != nil {
			return err
		}
		s.println("Logged out.")
	default:
		return fmt.Errorf("unknown command %q, try help", cmd)
	}
	return nil
}

func (s *Shell) register(ctx context.Context, args []string) error {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		return errors.New("usage: register <name>")
	}
	if err := s.app.Players.RegisterPlayer(ctx, name); err != nil {
		s.println(render.Error(s.app.Players.Error()))
		return nil
	}
	p, _ := s.app.Players.Player()
	s.printf("Welcome, %s\n", render.Player(p))
	return nil
}

func (s *Shell) create(ctx context.Context, args []string) error {
	var raw string
	if len(args) > 0 {
		raw = strings.ToUpper(args[0])
	}
	mode, err := domain.ParseGameMode(raw)
	if err != nil {
		return err
	}

	id, err := s.app.Games.CreateGame(ctx, mode)
	if err != nil {
		s.println(render.Error(s.app.Games.Error()))
		return nil
	}
	s.printf("Created game %s\n", id)
	s.open(ctx, id)
	return nil
}

// open loads the game and attaches the relay; the board is drawn by Render.
func (s *Shell) open(ctx context.Context, gameID string) {
	if err := s.app.Games.FetchGame(ctx, gameID); err != nil {
		s.println(render.Error(s.app.Games.Error()))
		return
	}
	if err := s.app.Games.ConnectToGame(ctx, gameID); err != nil {
		s.println(render.Error("Live updates unavailable: " + err.Error()))
	}
}

func (s *Shell) move(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: move <row> <col>")
	}
	row, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("bad row %q", args[0])
	}
	col, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("bad col %q", args[1])
	}
	if _, ok := s.app.Games.CurrentGame(); !ok {
		s.println("No game open.")
		return nil
	}

	s.app.Games.ClearError()
	s.app.Games.MakeMove(ctx, row, col)
	if msg := s.app.Games.Error(); msg != "" {
		s.println(render.Error(msg))
		s.app.Games.ClearError()
	}
	return nil
}
