package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"tictacgo/internal/domain"
	"tictacgo/internal/logger"
	"tictacgo/internal/metrics"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 5 * time.Second
	maxFrameSize   = 64 << 10
	handshakeLimit = 10 * time.Second
)

// UpdateFunc receives decoded frames in connection order, on the relay's reader goroutine.
type UpdateFunc func(domain.Frame)

// Relay holds at most one push connection for a single game.
type Relay struct {
	url    string
	dialer *websocket.Dialer
	log    *slog.Logger

	connectMu sync.Mutex // serializes Connect

	mu   sync.Mutex
	conn *websocket.Conn
}

type RelayOption func(*Relay)

func WithDialer(d *websocket.Dialer) RelayOption {
	return func(r *Relay) { r.dialer = d }
}

func WithRelayLogger(l *slog.Logger) RelayOption {
	return func(r *Relay) { r.log = l }
}

// NewRelay targets <wsBaseURL>/ws/games/<gameID>.
func NewRelay(wsBaseURL, gameID string, opts ...RelayOption) *Relay {
	r := &Relay{
		url: strings.TrimRight(wsBaseURL, "/") + "/ws/games/" + url.PathEscape(gameID),
		dialer: &websocket.Dialer{
			HandshakeTimeout: handshakeLimit,
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.With("component", "relay")
	}
	r.log = r.log.With("game_id", gameID)
	return r
}

func (r *Relay) URL() string { return r.url }

func (r *Relay) Connected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conn != nil
}

// Connect replaces any open connection with a new one and starts delivering
// frames to onUpdate. The returned dispose func closes this connection only
// if it is still the current one.
func (r *Relay) Connect(ctx context.Context, onUpdate UpdateFunc) (func(), error) {
	r.connectMu.Lock()
	defer r.connectMu.Unlock()

	r.Disconnect()

	r.log.Info("relay connecting", "url", r.url)
	conn, _, err := r.dialer.DialContext(ctx, r.url, nil)
	if err != nil {
		r.log.Error("relay dial failed", "error", err)
		return nil, err
	}
	conn.SetReadLimit(maxFrameSize)

	r.mu.Lock()
	r.conn = conn
	r.mu.Unlock()

	metrics.RelayConnections.Inc()
	r.log.Info("relay connected")

	go r.readPump(conn, onUpdate)

	return func() { r.release(conn) }, nil
}

// Disconnect closes the current connection; calling it again is a no-op.
func (r *Relay) Disconnect() {
	r.mu.Lock()
	conn := r.conn
	r.conn = nil
	r.mu.Unlock()

	if conn != nil {
		closeConn(conn)
	}
}

func (r *Relay) release(conn *websocket.Conn) {
	r.mu.Lock()
	current := r.conn == conn
	if current {
		r.conn = nil
	}
	r.mu.Unlock()

	if current {
		closeConn(conn)
	}
}

func closeConn(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	_ = conn.Close()
}

func (r *Relay) readPump(conn *websocket.Conn, onUpdate UpdateFunc) {
	defer func() {
		metrics.RelayConnections.Dec()

		r.mu.Lock()
		if r.conn == conn {
			r.conn = nil
		}
		r.mu.Unlock()
		conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			r.logReadEnd(conn, err)
			return
		}

		frame, err := domain.DecodeFrame(msg)
		if err != nil {
			metrics.RelayFrames.WithLabelValues("dropped").Inc()
			r.log.Warn("relay frame dropped", "error", err, "bytes", len(msg))
			continue
		}

		metrics.RelayFrames.WithLabelValues("delivered").Inc()
		r.log.Debug("relay frame", "type", frame.Type, "bytes", len(msg))
		onUpdate(frame)
	}
}

func (r *Relay) logReadEnd(conn *websocket.Conn, err error) {
	r.mu.Lock()
	ours := r.conn == conn
	r.mu.Unlock()

	switch {
	case !ours:
		r.log.Info("relay closed")
	case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
		r.log.Info("relay closed by server")
	case errors.Is(err, websocket.ErrCloseSent):
		r.log.Info("relay closed")
	default:
		r.log.Error("relay error", "error", err)
	}
}
