package service

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"tictacgo/internal/api"
	"tictacgo/internal/domain"
	"tictacgo/internal/logger"
	"tictacgo/internal/metrics"
	"tictacgo/internal/repository"
	"tictacgo/internal/ws"
)

// User-facing error messages.
const (
	ErrCreateGame   = "Could not create game."
	ErrJoinGame     = "Could not join game."
	ErrGameNotFound = "Game not found."
	ErrMoveRejected = "Move rejected"
)

const subscriberBuffer = 8

type GameAPI interface {
	ListGames(ctx context.Context, mode domain.GameMode, status domain.GameStatus) ([]domain.GameState, error)
	CreateGame(ctx context.Context, mode domain.GameMode) (domain.GameState, error)
	JoinGame(ctx context.Context, gameID string) (domain.GameState, error)
	GetGame(ctx context.Context, gameID string) (domain.GameState, error)
	SubmitMove(ctx context.Context, gameID, playerID string, row, col int) error
}

// Relay is the push connection for one game.
type Relay interface {
	Connect(ctx context.Context, onUpdate ws.UpdateFunc) (func(), error)
	Disconnect()
	Connected() bool
}

type RelayFactory func(gameID string) Relay

// GameService holds the game being viewed, the lobby and the local stats.
// Frames arrive on the relay goroutine, commands on the caller's; mu guards both.
type GameService struct {
	api      GameAPI
	state    *repository.ClientStateRepository
	newRelay RelayFactory
	log      *slog.Logger
	now      func() time.Time

	mu        sync.Mutex
	current   *domain.GameState
	available []domain.GameState
	loading   bool
	lastErr   string
	stats     domain.Stats
	relay     Relay
	relayGame string
	subs      map[chan domain.GameState]struct{}
}

func NewGameService(api GameAPI, state *repository.ClientStateRepository, newRelay RelayFactory) *GameService {
	return &GameService{
		api:       api,
		state:     state,
		newRelay:  newRelay,
		log:       logger.With("component", "game"),
		now:       time.Now,
		available: []domain.GameState{},
		subs:      make(map[chan domain.GameState]struct{}),
	}
}

func (s *GameService) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *GameService) setError(msg string) {
	s.mu.Lock()
	s.lastErr = msg
	s.mu.Unlock()
}

// FetchAvailableGames loads open PVP games into the lobby.
func (s *GameService) FetchAvailableGames(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	games, err := s.api.ListGames(ctx, domain.GameModePVP, domain.GameStatusWaiting)
	if err != nil {
		s.log.Error("load lobby failed", "error", err)
		return err
	}

	s.mu.Lock()
	s.available = games
	s.mu.Unlock()
	return nil
}

// LoadStats restores counters from the store; a corrupt blob keeps the current ones.
func (s *GameService) LoadStats(ctx context.Context) {
	stats, err := s.state.LoadStats(ctx)
	if err != nil {
		s.log.Error("stats parse error", "error", err)
		return
	}
	s.mu.Lock()
	s.stats = stats
	s.mu.Unlock()
}

// CreateGame starts a game as its creator (X).
func (s *GameService) CreateGame(ctx context.Context, mode domain.GameMode) (string, error) {
	return s.enter(ctx, domain.SymbolX, ErrCreateGame, func() (domain.GameState, error) {
		return s.api.CreateGame(ctx, mode)
	})
}

// JoinGame enters someone else's game as the joiner (O).
func (s *GameService) JoinGame(ctx context.Context, gameID string) (string, error) {
	return s.enter(ctx, domain.SymbolO, ErrJoinGame, func() (domain.GameState, error) {
		return s.api.JoinGame(ctx, gameID)
	})
}

func (s *GameService) enter(ctx context.Context, role domain.Symbol, failMsg string, call func() (domain.GameState, error)) (string, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	g, err := call()
	if err != nil {
		s.log.Error("enter game failed", "role", role, "error", err)
		s.setError(failMsg)
		return "", err
	}

	s.disconnectUnless(g.GameID)
	s.mu.Lock()
	s.current = &g
	s.mu.Unlock()
	s.publish(g)

	if err := s.state.SetRole(ctx, g.GameID, role); err != nil {
		s.log.Warn("persist role failed", "game_id", g.GameID, "error", err)
	}
	return g.GameID, nil
}

// FetchGame loads a single game as the current one. A relay attached to
// another game is closed first so its frames cannot land on this one.
func (s *GameService) FetchGame(ctx context.Context, gameID string) error {
	s.disconnectUnless(gameID)

	g, err := s.api.GetGame(ctx, gameID)
	if err != nil {
		s.log.Error("load game failed", "game_id", gameID, "error", err)
		s.setError(ErrGameNotFound)
		return err
	}

	s.mu.Lock()
	s.current = &g
	s.mu.Unlock()
	s.publish(g)
	return nil
}

// MakeMove submits a move for the current game. The board only changes when
// the server pushes the new state; a rejection lands in Error().
func (s *GameService) MakeMove(ctx context.Context, row, col int) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return
	}
	gameID := s.current.GameID
	s.mu.Unlock()

	playerID := s.state.PlayerID(ctx)
	s.log.Info("sending move", "game_id", gameID, "player_id", playerID, "row", row, "col", col)

	if err := s.api.SubmitMove(ctx, gameID, playerID, row, col); err != nil {
		s.log.Error("move failed", "game_id", gameID, "error", err)
		msg := ErrMoveRejected
		if m, ok := api.ServerMessage(err); ok {
			msg = m
		}
		s.setError(msg)
	}
}

// ConnectToGame replaces the relay with one for gameID and merges every frame
// into the current game. A current game with another id is dropped.
func (s *GameService) ConnectToGame(ctx context.Context, gameID string) error {
	s.Disconnect()

	relay := s.newRelay(gameID)
	s.mu.Lock()
	s.relay = relay
	s.relayGame = gameID
	if s.current != nil && s.current.GameID != gameID {
		s.current = nil
	}
	s.mu.Unlock()

	// frames outlive the caller's request context
	frameCtx := context.WithoutCancel(ctx)
	if _, err := relay.Connect(ctx, func(f domain.Frame) { s.applyFrame(frameCtx, relay, f) }); err != nil {
		s.mu.Lock()
		if s.relay == relay {
			s.relay = nil
			s.relayGame = ""
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

// applyFrame drops frames from a relay that is no longer current and frames
// naming a game other than the current one.
func (s *GameService) applyFrame(ctx context.Context, from Relay, f domain.Frame) {
	update := f.State()

	s.mu.Lock()
	if s.relay != from {
		s.mu.Unlock()
		s.log.Debug("frame from stale relay dropped")
		return
	}
	if s.current != nil && update.GameID != nil && *update.GameID != s.current.GameID {
		current := s.current.GameID
		s.mu.Unlock()
		s.log.Warn("frame for another game dropped", "game_id", *update.GameID, "current", current)
		return
	}
	var oldStatus domain.GameStatus
	var next domain.GameState
	if s.current != nil {
		oldStatus = s.current.Status
		next = update.Apply(*s.current)
	} else {
		next = update.Apply(domain.GameState{})
	}
	s.current = &next
	finished := oldStatus != domain.GameStatusFinished && next.Status == domain.GameStatusFinished
	s.mu.Unlock()

	s.log.Debug("game update", "game_id", next.GameID, "status", next.Status, "turn", next.CurrentTurn)

	if finished {
		s.UpdateLocalStats(ctx, next)
	}
	s.publish(next)
}

// UpdateLocalStats counts a finished game once into the local stats.
func (s *GameService) UpdateLocalStats(ctx context.Context, g domain.GameState) {
	if g.Winner == "" {
		return
	}

	localID := s.state.PlayerID(ctx)
	mine := domain.InferSymbol(g, localID)
	result := domain.ResultFor(g.Winner, mine)

	s.mu.Lock()
	s.stats.Record(result)
	stats := s.stats
	s.mu.Unlock()

	metrics.GamesFinished.WithLabelValues(strings.ToLower(string(result))).Inc()
	s.log.Info("game finished", "game_id", g.GameID, "winner", g.Winner, "symbol", mine, "result", result)

	if err := s.state.SaveStats(ctx, stats); err != nil {
		s.log.Error("persist stats failed", "error", err)
	}

	rec := domain.LocalGameRecord{
		GameID:    g.GameID,
		Opponent:  opponentName(g, mine),
		Result:    result,
		Timestamp: s.now().UnixMilli(),
	}
	if err := s.state.AppendHistory(ctx, rec); err != nil {
		s.log.Error("persist history failed", "error", err)
	}
}

func opponentName(g domain.GameState, mine domain.Symbol) string {
	switch {
	case g.Mode == domain.GameModePVC:
		return "Computer"
	case mine == domain.SymbolO && g.CreatedBy != nil:
		return g.CreatedBy.Name
	}
	return "unknown"
}

// Role returns the stored role marker for gameID.
func (s *GameService) Role(ctx context.Context, gameID string) (domain.Symbol, bool) {
	role, ok, err := s.state.Role(ctx, gameID)
	if err != nil {
		s.log.Warn("read role failed", "game_id", gameID, "error", err)
		return "", false
	}
	return role, ok
}

func (s *GameService) History(ctx context.Context) ([]domain.LocalGameRecord, error) {
	return s.state.History(ctx)
}

// Subscribe returns a stream of game states and a func that ends the subscription.
// A subscriber that falls behind misses intermediate states; the relay never waits.
func (s *GameService) Subscribe() (<-chan domain.GameState, func()) {
	ch := make(chan domain.GameState, subscriberBuffer)

	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, ch)
			s.mu.Unlock()
			close(ch)
		})
	}
}

func (s *GameService) publish(g domain.GameState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- g:
		default:
			s.log.Debug("subscriber behind, state skipped", "game_id", g.GameID)
		}
	}
}

// Disconnect closes the relay, if any.
func (s *GameService) Disconnect() {
	s.mu.Lock()
	relay := s.relay
	s.relay = nil
	s.relayGame = ""
	s.mu.Unlock()

	if relay != nil {
		relay.Disconnect()
	}
}

func (s *GameService) disconnectUnless(gameID string) {
	s.mu.Lock()
	stale := s.relay != nil && s.relayGame != gameID
	s.mu.Unlock()

	if stale {
		s.Disconnect()
	}
}

// Reset drops everything tied to the previous session and reloads stats.
func (s *GameService) Reset(ctx context.Context) {
	s.Disconnect()

	s.mu.Lock()
	s.current = nil
	s.available = []domain.GameState{}
	s.lastErr = ""
	s.loading = false
	s.stats = domain.Stats{}
	s.mu.Unlock()

	s.LoadStats(ctx)
}

func (s *GameService) CurrentGame() (domain.GameState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return domain.GameState{}, false
	}
	return *s.current, true
}

func (s *GameService) AvailableGames() []domain.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.available)
}

func (s *GameService) Stats() domain.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *GameService) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *GameService) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *GameService) ClearError() {
	s.setError("")
}

// Connected reports whether the relay's socket is still open; a server close
// or read error shows up here without a Disconnect call.
func (s *GameService) Connected() bool {
	s.mu.Lock()
	relay := s.relay
	s.mu.Unlock()
	return relay != nil && relay.Connected()
}
