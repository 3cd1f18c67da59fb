package repository

import (
	"context"
	"errors"
)

var ErrUnknownBackend = errors.New("unknown store backend")

// KVStore is the persistent client-state store. Values are plain strings;
// structured values are JSON-encoded by the caller.
type KVStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// Keys shared with the browser client, so a state file stays readable by both.
const (
	KeyPlayerID   = "playerId"
	KeyPlayerName = "playerName"
	KeyStats      = "tictacgo_stats"
	KeyHistory    = "tictacgo_history"

	rolePrefix = "role_"
)

func RoleKey(gameID string) string {
	return rolePrefix + gameID
}
