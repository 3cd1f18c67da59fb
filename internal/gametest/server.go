// Package gametest runs a scripted stand-in for the game server: canned HTTP
// responses, request recording and a push endpoint that tests drive by hand.
package gametest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const writeWait = 2 * time.Second

// Request is one recorded HTTP call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// JSON decodes the recorded body into v.
func (r Request) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

type response struct {
	status int
	body   []byte
}

type socket struct {
	conn *websocket.Conn
	wmu  sync.Mutex
}

type Server struct {
	srv      *httptest.Server
	upgrader websocket.Upgrader

	mu        sync.Mutex
	responses map[string]response
	requests  []Request
	sockets   map[string]map[*socket]struct{}
	accepted  int
}

func New(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{
		upgrader:  websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		responses: make(map[string]response),
		sockets:   make(map[string]map[*socket]struct{}),
	}

	r := gin.New()
	r.GET("/ws/games/:id", s.handleWS)
	r.NoRoute(s.handleHTTP)

	s.srv = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

func (s *Server) URL() string { return s.srv.URL }

func (s *Server) WSURL() string {
	return "ws" + strings.TrimPrefix(s.srv.URL, "http")
}

// Respond scripts the answer for "METHOD path". Strings and byte slices are
// sent verbatim; anything else is JSON-encoded.
func (s *Server) Respond(method, path string, status int, body any) {
	var b []byte
	switch v := body.(type) {
	case nil:
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		var err error
		if b, err = json.Marshal(v); err != nil {
			panic(err)
		}
	}

	s.mu.Lock()
	s.responses[method+" "+path] = response{status: status, body: b}
	s.mu.Unlock()
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// LastRequest returns the most recent call to "METHOD path".
func (s *Server) LastRequest(method, path string) (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.requests) - 1; i >= 0; i-- {
		if s.requests[i].Method == method && s.requests[i].Path == path {
			return s.requests[i], true
		}
	}
	return Request{}, false
}

func (s *Server) handleHTTP(c *gin.Context) {
	body, _ := io.ReadAll(c.Request.Body)

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method: c.Request.Method,
		Path:   c.Request.URL.Path,
		Query:  c.Request.URL.Query(),
		Header: c.Request.Header.Clone(),
		Body:   body,
	})
	resp, ok := s.responses[c.Request.Method+" "+c.Request.URL.Path]
	s.mu.Unlock()

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
		return
	}
	c.Data(resp.status, "application/json", resp.body)
}

func (s *Server) handleWS(c *gin.Context) {
	gameID := c.Param("id")

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	sock := &socket{conn: conn}

	s.mu.Lock()
	if s.sockets[gameID] == nil {
		s.sockets[gameID] = make(map[*socket]struct{})
	}
	s.sockets[gameID][sock] = struct{}{}
	s.accepted++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.sockets[gameID], sock)
		s.mu.Unlock()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// OpenSockets counts push connections currently open for gameID.
func (s *Server) OpenSockets(gameID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sockets[gameID])
}

// Accepted counts every push connection ever accepted.
func (s *Server) Accepted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accepted
}

// WaitSockets polls until gameID has exactly n open sockets.
func (s *Server) WaitSockets(gameID string, n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if s.OpenSockets(gameID) == n {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return s.OpenSockets(gameID) == n
}

// Push writes a text frame to every socket open for gameID and returns how
// many received it.
func (s *Server) Push(gameID, frame string) int {
	s.mu.Lock()
	targets := make([]*socket, 0, len(s.sockets[gameID]))
	for sock := range s.sockets[gameID] {
		targets = append(targets, sock)
	}
	s.mu.Unlock()

	sent := 0
	for _, sock := range targets {
		sock.wmu.Lock()
		sock.conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := sock.conn.WriteMessage(websocket.TextMessage, []byte(frame))
		sock.wmu.Unlock()
		if err == nil {
			sent++
		}
	}
	return sent
}

// DropSockets closes the server side of every socket for gameID.
func (s *Server) DropSockets(gameID string) {
	s.mu.Lock()
	targets := make([]*socket, 0, len(s.sockets[gameID]))
	for sock := range s.sockets[gameID] {
		targets = append(targets, sock)
	}
	s.mu.Unlock()

	for _, sock := range targets {
		sock.conn.Close()
	}
}

func (s *Server) Close() {
	s.mu.Lock()
	var all []*socket
	for _, set := range s.sockets {
		for sock := range set {
			all = append(all, sock)
		}
	}
	s.mu.Unlock()

	for _, sock := range all {
		sock.conn.Close()
	}
	s.srv.Close()
}
