package service

import (
	"context"
	"log/slog"
	"sync"

	"tictacgo/internal/domain"
	"tictacgo/internal/logger"
	"tictacgo/internal/repository"
)

const ErrRegistrationFailed = "Registration failed. Is the server running?"

type PlayerAPI interface {
	RegisterPlayer(ctx context.Context, name string) (domain.Player, error)
}

// PlayerService holds the logged-in player and mirrors it into the client-state store.
type PlayerService struct {
	api    PlayerAPI
	state  *repository.ClientStateRepository
	reload func(ctx context.Context)
	log    *slog.Logger

	mu            sync.RWMutex
	player        *domain.Player
	authenticated bool
	loading       bool
	lastErr       string
}

// NewPlayerService wires the service. reload runs after logout and must drop
// every piece of state that depends on the identity; nil means nothing to drop.
func NewPlayerService(api PlayerAPI, state *repository.ClientStateRepository, reload func(ctx context.Context)) *PlayerService {
	return &PlayerService{
		api:    api,
		state:  state,
		reload: reload,
		log:    logger.With("component", "player"),
	}
}

// Initialize restores the identity from the store, if both id and name are present.
func (s *PlayerService) Initialize(ctx context.Context) error {
	id, name, ok, err := s.state.Identity(ctx)
	if err != nil {
		s.log.Error("restore identity failed", "error", err)
		return err
	}
	if !ok {
		return nil
	}

	s.mu.Lock()
	s.player = &domain.Player{ID: id, Name: name, Symbol: domain.SymbolX}
	s.authenticated = true
	s.mu.Unlock()
	return nil
}

// RegisterPlayer creates a player on the server and persists the identity.
// On failure the previous session is left as it was.
func (s *PlayerService) RegisterPlayer(ctx context.Context, name string) error {
	s.mu.Lock()
	s.loading = true
	s.lastErr = ""
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	p, err := s.api.RegisterPlayer(ctx, name)
	if err == nil {
		err = s.state.SaveIdentity(ctx, p)
	}
	if err != nil {
		s.log.Error("registration failed", "name", name, "error", err)
		s.mu.Lock()
		s.lastErr = ErrRegistrationFailed
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.player = &p
	s.authenticated = true
	s.mu.Unlock()

	s.log.Info("player registered", "player_id", p.ID, "name", p.Name)
	return nil
}

// Logout forgets the identity and runs the reload hook.
func (s *PlayerService) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.player = nil
	s.authenticated = false
	s.lastErr = ""
	s.mu.Unlock()

	err := s.state.ClearIdentity(ctx)
	if err != nil {
		s.log.Error("clear identity failed", "error", err)
	}

	if s.reload != nil {
		s.reload(ctx)
	}
	return err
}

// RequireAuth tries to restore the session once when it is not authenticated.
func (s *PlayerService) RequireAuth(ctx context.Context) bool {
	if s.IsAuthenticated() {
		return true
	}
	if err := s.Initialize(ctx); err != nil {
		return false
	}
	return s.IsAuthenticated()
}

func (s *PlayerService) Player() (domain.Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.player == nil {
		return domain.Player{}, false
	}
	return *s.player, true
}

func (s *PlayerService) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

func (s *PlayerService) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *PlayerService) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}
