package sim

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/heat-chamber/hmi/internal/wshmi"
)

// ServerOptions addresses the published messages.
type ServerOptions struct {
	ServerID  string
	NetworkID int
	DeviceID  int
	// Period between tag broadcasts. Each period advances the chamber by
	// Period * TimeScale of simulated time.
	Period       time.Duration
	TimeScale    float64
	WriteTimeout time.Duration
	Logger       *slog.Logger
}

type peer struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

// Server is a WebHMI endpoint backed by a Chamber.
type Server struct {
	chamber  *Chamber
	opts     ServerOptions
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	peers map[string]*peer
}

// NewServer creates a WebHMI endpoint for chamber.
func NewServer(chamber *Chamber, opts ServerOptions) *Server {
	if opts.Period <= 0 {
		opts.Period = time.Second
	}
	if opts.TimeScale <= 0 {
		opts.TimeScale = 1
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		chamber: chamber,
		opts:    opts,
		log:     logger.With("component", "sim"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		peers: make(map[string]*peer),
	}
}

// ServeHTTP upgrades the request, sends the current tags and applies
// settings messages until the peer disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("upgrade failed", "error", err)
		return
	}

	p := &peer{id: uuid.NewString(), conn: conn}
	s.mu.Lock()
	s.peers[p.id] = p
	s.mu.Unlock()
	s.log.Info("peer connected", "peer", p.id, "remote", r.RemoteAddr, "peers", s.Peers())

	defer func() {
		s.mu.Lock()
		delete(s.peers, p.id)
		s.mu.Unlock()
		_ = conn.Close()
		s.log.Info("peer disconnected", "peer", p.id, "peers", s.Peers())
	}()

	if err := s.send(p, s.message(time.Now())); err != nil {
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg wshmi.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.log.Debug("dropping malformed message", "peer", p.id, "error", err)
			continue
		}
		if !s.addressed(msg) {
			continue
		}
		if err := s.chamber.Submit(msg.Data); err != nil {
			s.log.Warn("settings rejected", "peer", p.id, "error", err)
			continue
		}
		s.log.Info("settings applied", "peer", p.id, "data", msg.Data)
		s.Broadcast(time.Now())
	}
}

// Run advances the chamber and broadcasts its tags every period until ctx
// is done.
func (s *Server) Run(ctx context.Context) error {
	t := time.NewTicker(s.opts.Period)
	defer t.Stop()
	step := time.Duration(float64(s.opts.Period) * s.opts.TimeScale)
	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			return ctx.Err()
		case now := <-t.C:
			if err := s.chamber.Advance(step); err != nil {
				s.log.Warn("chamber step failed", "error", err)
				continue
			}
			s.Broadcast(now)
		}
	}
}

// Broadcast sends the current tags to every peer.
func (s *Server) Broadcast(at time.Time) {
	msg := s.message(at)
	s.mu.RLock()
	peers := make([]*peer, 0, len(s.peers))
	for _, p := range s.peers {
		peers = append(peers, p)
	}
	s.mu.RUnlock()

	for _, p := range peers {
		if err := s.send(p, msg); err != nil {
			s.log.Debug("broadcast failed", "peer", p.id, "error", err)
			_ = p.conn.Close()
		}
	}
}

// Peers returns the number of connected peers.
func (s *Server) Peers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.peers)
}

func (s *Server) message(at time.Time) wshmi.Message {
	return wshmi.Message{
		ServerID:  s.opts.ServerID,
		NetworkID: s.opts.NetworkID,
		DeviceID:  s.opts.DeviceID,
		Data:      s.chamber.Tags(),
		Timestamp: at.Unix(),
	}
}

func (s *Server) send(p *peer, msg wshmi.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout)); err != nil {
		return err
	}
	return p.conn.WriteJSON(msg)
}

// addressed reports whether msg targets this controller. Zero-valued
// address fields match anything.
func (s *Server) addressed(msg wshmi.Message) bool {
	if msg.ServerID != "" && msg.ServerID != s.opts.ServerID {
		return false
	}
	if msg.NetworkID != 0 && msg.NetworkID != s.opts.NetworkID {
		return false
	}
	if msg.DeviceID != 0 && msg.DeviceID != s.opts.DeviceID {
		return false
	}
	return true
}

func (s *Server) closeAll() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.peers {
		p.mu.Lock()
		_ = p.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(time.Second))
		p.mu.Unlock()
		_ = p.conn.Close()
	}
}
