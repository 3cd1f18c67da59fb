package domain

import (
	"encoding/json"
	"errors"
)

// GameMode - режим игры
type GameMode string

const (
	GameModePVP GameMode = "PVP"
	GameModePVC GameMode = "PVC"
)

// ParseGameMode accepts the mode case-insensitively; empty means PVP.
func ParseGameMode(s string) (GameMode, error) {
	switch s {
	case "", "PVP", "pvp":
		return GameModePVP, nil
	case "PVC", "pvc":
		return GameModePVC, nil
	}
	return "", errors.New("unknown game mode: " + s)
}

// GameStatus - lifecycle of a game on the server
type GameStatus string

const (
	GameStatusWaiting    GameStatus = "WAITING_FOR_PLAYER"
	GameStatusInProgress GameStatus = "IN_PROGRESS"
	GameStatusFinished   GameStatus = "FINISHED"
)

// WinnerDraw is the winner value the server uses for a drawn game.
const WinnerDraw = "DRAW"

const BoardSize = 3

// Board - 3x3 grid of cell markers ("", "X" or "O")
type Board [BoardSize][BoardSize]string

type CreatedBy struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

// GameState - client replica of a server-owned game
type GameState struct {
	GameID      string     `json:"gameId"`
	Mode        GameMode   `json:"mode"`
	Board       Board      `json:"board"`
	CurrentTurn string     `json:"currentTurn"`
	Status      GameStatus `json:"status"`
	Winner      string     `json:"winner"`
	CreatedBy   *CreatedBy `json:"createdBy,omitempty"`
}

func (g GameState) IsFinished() bool { return g.Status == GameStatusFinished }

// GameUpdate carries the fields present in an incremental update.
// Nil fields were absent (or null) and are left untouched by Apply.
type GameUpdate struct {
	GameID      *string     `json:"gameId,omitempty"`
	Mode        *GameMode   `json:"mode,omitempty"`
	Board       *Board      `json:"board,omitempty"`
	CurrentTurn *string     `json:"currentTurn,omitempty"`
	Status      *GameStatus `json:"status,omitempty"`
	Winner      *string     `json:"winner,omitempty"`
	CreatedBy   *CreatedBy  `json:"createdBy,omitempty"`
}

// Apply shallow-merges u over g.
func (u GameUpdate) Apply(g GameState) GameState {
	if u.GameID != nil {
		g.GameID = *u.GameID
	}
	if u.Mode != nil {
		g.Mode = *u.Mode
	}
	if u.Board != nil {
		g.Board = *u.Board
	}
	if u.CurrentTurn != nil {
		g.CurrentTurn = *u.CurrentTurn
	}
	if u.Status != nil {
		g.Status = *u.Status
	}
	if u.Winner != nil {
		g.Winner = *u.Winner
	}
	if u.CreatedBy != nil {
		cb := *u.CreatedBy
		g.CreatedBy = &cb
	}
	return g
}

// DecodeGame decodes a single game response.
func DecodeGame(body []byte) (GameState, error) {
	var g GameState
	if err := json.Unmarshal(body, &g); err != nil {
		return GameState{}, &DecodeError{Field: "game", Err: err}
	}
	return g, nil
}

// DecodeGameList accepts {"games": [...]}, a bare array, or anything else
// (treated as an empty lobby).
func DecodeGameList(body []byte) ([]GameState, error) {
	var probe any
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, &DecodeError{Field: "games", Err: err}
	}

	switch v := probe.(type) {
	case []any:
		var games []GameState
		if err := json.Unmarshal(body, &games); err != nil {
			return nil, &DecodeError{Field: "games", Err: err}
		}
		return nonNil(games), nil
	case map[string]any:
		if list, ok := v["games"].([]any); ok && list != nil {
			var wrapped struct {
				Games []GameState `json:"games"`
			}
			if err := json.Unmarshal(body, &wrapped); err != nil {
				return nil, &DecodeError{Field: "games", Err: err}
			}
			return nonNil(wrapped.Games), nil
		}
	}
	return []GameState{}, nil
}

func nonNil(games []GameState) []GameState {
	if games == nil {
		return []GameState{}
	}
	return games
}
