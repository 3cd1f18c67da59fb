package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Symbol - player's marker on the board
type Symbol string

const (
	SymbolX Symbol = "X"
	SymbolO Symbol = "O"
)

// Player - identity of the local player
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Symbol Symbol `json:"symbol"`
}

var ErrMissingPlayerID = errors.New("server returned no usable player id")

// DecodeError reports a response field that could not be normalized.
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Field names are checked in order, first non-empty wins.
var (
	playerIDFields     = []string{"playerId", "id", "ID"}
	playerNameFields   = []string{"name", "Name"}
	playerSymbolFields = []string{"symbol", "Symbol"}
)

// DecodePlayer normalizes a registration response into a Player.
func DecodePlayer(body []byte) (Player, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return Player{}, &DecodeError{Field: "player", Err: err}
	}

	id := firstString(raw, playerIDFields)
	if id == "" {
		return Player{}, &DecodeError{Field: "id", Err: ErrMissingPlayerID}
	}

	p := Player{
		ID:     id,
		Name:   firstString(raw, playerNameFields),
		Symbol: Symbol(firstString(raw, playerSymbolFields)),
	}
	if p.Symbol == "" {
		p.Symbol = SymbolX
	}
	return p, nil
}

// firstString returns the first field holding a non-empty string or number.
func firstString(raw map[string]json.RawMessage, fields []string) string {
	for _, f := range fields {
		v, ok := raw[f]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			if s != "" {
				return s
			}
			continue
		}
		var n json.Number
		if err := json.Unmarshal(v, &n); err == nil && n != "" {
			return n.String()
		}
	}
	return ""
}
