package api

import (
	"context"
	"net/http"

	"tictacgo/internal/domain"
)

// RegisterPlayer creates a player with the given display name.
func (c *Client) RegisterPlayer(ctx context.Context, name string) (domain.Player, error) {
	body, err := c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/players",
		endpoint: "POST /players",
		body:     map[string]string{"name": name},
	})
	if err != nil {
		return domain.Player{}, err
	}

	c.log.Debug("register response", "body", string(body))
	p, err := domain.DecodePlayer(body)
	if err != nil {
		return domain.Player{}, err
	}
	// the server may echo only the id
	if p.Name == "" {
		p.Name = name
	}
	return p, nil
}
