package api

import (
	"context"
	"net/http"
	"net/url"

	"tictacgo/internal/domain"
)

type moveRequest struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func gamePath(gameID, suffix string) string {
	return "/games/" + url.PathEscape(gameID) + suffix
}

// ListGames returns the lobby filtered by mode and status.
func (c *Client) ListGames(ctx context.Context, mode domain.GameMode, status domain.GameStatus) ([]domain.GameState, error) {
	q := url.Values{}
	q.Set("mode", string(mode))
	q.Set("status", string(status))

	body, err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/games",
		endpoint: "GET /games",
		query:    q,
	})
	if err != nil {
		return nil, err
	}
	return domain.DecodeGameList(body)
}

func (c *Client) CreateGame(ctx context.Context, mode domain.GameMode) (domain.GameState, error) {
	body, err := c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/games",
		endpoint: "POST /games",
		body:     map[string]domain.GameMode{"mode": mode},
	})
	if err != nil {
		return domain.GameState{}, err
	}
	return domain.DecodeGame(body)
}

func (c *Client) JoinGame(ctx context.Context, gameID string) (domain.GameState, error) {
	body, err := c.do(ctx, request{
		method:   http.MethodPost,
		path:     gamePath(gameID, "/join"),
		endpoint: "POST /games/:id/join",
	})
	if err != nil {
		return domain.GameState{}, err
	}
	return domain.DecodeGame(body)
}

func (c *Client) GetGame(ctx context.Context, gameID string) (domain.GameState, error) {
	body, err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     gamePath(gameID, ""),
		endpoint: "GET /games/:id",
	})
	if err != nil {
		return domain.GameState{}, err
	}
	return domain.DecodeGame(body)
}

// SubmitMove posts a move. The player header is set explicitly here on top of
// the identity injected for every request.
func (c *Client) SubmitMove(ctx context.Context, gameID, playerID string, row, col int) error {
	h := http.Header{}
	if playerID != "" {
		h.Set(HeaderPlayerID, playerID)
	}

	_, err := c.do(ctx, request{
		method:   http.MethodPost,
		path:     gamePath(gameID, "/moves"),
		endpoint: "POST /games/:id/moves",
		body:     moveRequest{Row: row, Col: col},
		header:   h,
	})
	return err
}
