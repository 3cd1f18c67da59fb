package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"tictacgo/internal/domain"
	"tictacgo/internal/logger"
)

const maxHistory = 50

// ClientStateRepository gives typed access to the client-state keys.
type ClientStateRepository struct {
	store KVStore
}

func NewClientStateRepository(store KVStore) *ClientStateRepository {
	return &ClientStateRepository{store: store}
}

func (r *ClientStateRepository) Store() KVStore { return r.store }

// Identity returns the stored player id and name; ok only when both are set.
func (r *ClientStateRepository) Identity(ctx context.Context) (id, name string, ok bool, err error) {
	id, hasID, err := r.store.Get(ctx, KeyPlayerID)
	if err != nil {
		return "", "", false, err
	}
	name, hasName, err := r.store.Get(ctx, KeyPlayerName)
	if err != nil {
		return "", "", false, err
	}
	if !hasID || !hasName || id == "" || name == "" {
		return "", "", false, nil
	}
	return id, name, true, nil
}

// SaveIdentity writes id then name. When the name write fails the previous id
// is put back, so the store never pairs the new id with the old name.
func (r *ClientStateRepository) SaveIdentity(ctx context.Context, p domain.Player) error {
	prevID, hadID, err := r.store.Get(ctx, KeyPlayerID)
	if err != nil {
		return fmt.Errorf("read player id: %w", err)
	}
	if err := r.store.Set(ctx, KeyPlayerID, p.ID); err != nil {
		return fmt.Errorf("save player id: %w", err)
	}
	if err := r.store.Set(ctx, KeyPlayerName, p.Name); err != nil {
		var rollback error
		if hadID {
			rollback = r.store.Set(ctx, KeyPlayerID, prevID)
		} else {
			rollback = r.store.Delete(ctx, KeyPlayerID)
		}
		if rollback != nil {
			return fmt.Errorf("save player name: %w (restore id: %v)", err, rollback)
		}
		return fmt.Errorf("save player name: %w", err)
	}
	return nil
}

func (r *ClientStateRepository) ClearIdentity(ctx context.Context) error {
	if err := r.store.Delete(ctx, KeyPlayerID); err != nil {
		return err
	}
	return r.store.Delete(ctx, KeyPlayerName)
}

// PlayerID is read before every outgoing request; store errors count as "no identity".
func (r *ClientStateRepository) PlayerID(ctx context.Context) string {
	id, _, err := r.store.Get(ctx, KeyPlayerID)
	if err != nil {
		logger.Warn("read player id failed", "error", err)
		return ""
	}
	return id
}

func (r *ClientStateRepository) SetRole(ctx context.Context, gameID string, s domain.Symbol) error {
	return r.store.Set(ctx, RoleKey(gameID), string(s))
}

func (r *ClientStateRepository) Role(ctx context.Context, gameID string) (domain.Symbol, bool, error) {
	v, ok, err := r.store.Get(ctx, RoleKey(gameID))
	if err != nil || !ok {
		return "", false, err
	}
	return domain.Symbol(v), true, nil
}

// LoadStats returns zero stats when nothing is stored.
func (r *ClientStateRepository) LoadStats(ctx context.Context) (domain.Stats, error) {
	var s domain.Stats
	v, ok, err := r.store.Get(ctx, KeyStats)
	if err != nil || !ok {
		return s, err
	}
	if err := json.Unmarshal([]byte(v), &s); err != nil {
		return domain.Stats{}, fmt.Errorf("parse stats: %w", err)
	}
	return s, nil
}

func (r *ClientStateRepository) SaveStats(ctx context.Context, s domain.Stats) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, KeyStats, string(b))
}

// History returns finished games, oldest first. A corrupt blob reads as empty.
func (r *ClientStateRepository) History(ctx context.Context) ([]domain.LocalGameRecord, error) {
	v, ok, err := r.store.Get(ctx, KeyHistory)
	if err != nil || !ok {
		return nil, err
	}
	var records []domain.LocalGameRecord
	if err := json.Unmarshal([]byte(v), &records); err != nil {
		logger.Warn("history parse error", "error", err)
		return nil, nil
	}
	return records, nil
}

// AppendHistory keeps the newest maxHistory records.
func (r *ClientStateRepository) AppendHistory(ctx context.Context, rec domain.LocalGameRecord) error {
	records, err := r.History(ctx)
	if err != nil {
		return err
	}
	records = append(records, rec)
	if len(records) > maxHistory {
		records = records[len(records)-maxHistory:]
	}
	b, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, KeyHistory, string(b))
}
