package domain

import (
	"bytes"
	"encoding/json"
)

// FrameTypeState marks an enveloped game-state frame.
const FrameTypeState = "state"

// Frame is one decoded push frame: either a bare game-state object
// or an envelope {"type": "state", "payload": {...}}.
type Frame struct {
	Type    string
	Payload *GameUpdate
	Fields  GameUpdate
}

// DecodeFrame parses a raw push frame. Both the top-level fields and an
// optional payload are decoded so that State can unwrap without failing.
func DecodeFrame(data []byte) (Frame, error) {
	var env struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return Frame{}, &DecodeError{Field: "frame", Err: err}
	}

	f := Frame{Type: env.Type}
	if err := json.Unmarshal(data, &f.Fields); err != nil {
		return Frame{}, &DecodeError{Field: "frame", Err: err}
	}

	if p := bytes.TrimSpace(env.Payload); len(p) > 0 && !bytes.Equal(p, []byte("null")) {
		var u GameUpdate
		if err := json.Unmarshal(p, &u); err != nil {
			return Frame{}, &DecodeError{Field: "payload", Err: err}
		}
		f.Payload = &u
	}
	return f, nil
}

// State returns the game fields carried by the frame.
func (f Frame) State() GameUpdate {
	if f.Type == FrameTypeState && f.Payload != nil {
		return *f.Payload
	}
	return f.Fields
}
