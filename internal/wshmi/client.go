package wshmi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var (
	// ErrNotConnected is returned by Send while no connection is open.
	ErrNotConnected = errors.New("not connected to WebHMI server")
	// ErrWatchdog reports that no message arrived within the watchdog period.
	ErrWatchdog = errors.New("no data from WebHMI server")
)

// Options configures a Client.
type Options struct {
	URI       string
	ServerID  string
	NetworkID int
	DeviceID  int

	ReconnectInitial time.Duration
	ReconnectMax     time.Duration
	Watchdog         time.Duration // 0 disables the watchdog
	WriteTimeout     time.Duration
	AutoReconnect    bool

	Dialer *websocket.Dialer
	Logger *slog.Logger
}

// Client is the WebHMI WebSocket link.
type Client struct {
	opts   Options
	dialer *websocket.Dialer
	log    *slog.Logger

	messages chan Message
	statuses chan Status

	mu    sync.Mutex
	conn  *websocket.Conn
	state State

	writeMu sync.Mutex
}

// New creates a client. Run must be called to connect.
func New(opts Options) *Client {
	dialer := opts.Dialer
	if dialer == nil {
		dialer = &websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.ReconnectInitial <= 0 {
		opts.ReconnectInitial = time.Second
	}
	if opts.ReconnectMax < opts.ReconnectInitial {
		opts.ReconnectMax = opts.ReconnectInitial
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}

	return &Client{
		opts:     opts,
		dialer:   dialer,
		log:      logger.With("component", "wshmi", "uri", opts.URI),
		messages: make(chan Message, 64),
		statuses: make(chan Status, 16),
		state:    StateDisconnected,
	}
}

// Messages delivers inbound messages in arrival order.
func (c *Client) Messages() <-chan Message {
	return c.messages
}

// Statuses delivers link state changes. Changes are dropped if the reader falls
// more than the channel buffer behind; State always reports the latest.
func (c *Client) Statuses() <-chan Status {
	return c.statuses
}

// State returns the current link state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Run connects and reads until ctx is cancelled. Without AutoReconnect it
// returns the first dial or read error.
func (c *Client) Run(ctx context.Context) error {
	backoff := c.opts.ReconnectInitial
	defer c.setState(StateClosed, nil)

	for {
		c.setState(StateConnecting, nil)
		conn, _, err := c.dialer.DialContext(ctx, c.opts.URI, nil)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.setState(StateDisconnected, err)
			c.log.Warn("dial failed", "error", err, "retry_in", backoff)
			if !c.opts.AutoReconnect {
				return fmt.Errorf("dial %s: %w", c.opts.URI, err)
			}
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			backoff = nextBackoff(backoff, c.opts.ReconnectMax)
			continue
		}

		c.mu.Lock()
		c.conn = conn
		c.mu.Unlock()
		c.setState(StateConnected, nil)
		c.log.Info("connected")

		received, err := c.readLoop(ctx, conn)

		c.setState(StateDisconnecting, nil)
		c.writeMu.Lock()
		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = conn.Close()
		c.writeMu.Unlock()

		if ctx.Err() != nil {
			c.setState(StateDisconnected, nil)
			return ctx.Err()
		}
		// Restart the backoff only after a connection that delivered data.
		if received {
			backoff = c.opts.ReconnectInitial
		}
		c.setState(StateDisconnected, err)
		c.log.Warn("connection lost", "error", err, "retry_in", backoff)
		if !c.opts.AutoReconnect {
			return err
		}
		if !sleep(ctx, backoff) {
			return ctx.Err()
		}
		backoff = nextBackoff(backoff, c.opts.ReconnectMax)
	}
}

// readLoop reads until the connection fails, the watchdog fires or ctx ends.
// It reports whether any message was read.
func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) (bool, error) {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			// Unblock ReadMessage.
			_ = conn.Close()
		case <-stop:
		}
	}()

	received := false
	for {
		if c.opts.Watchdog > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(c.opts.Watchdog)); err != nil {
				return received, err
			}
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return received, ctx.Err()
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				return received, fmt.Errorf("%w for %v", ErrWatchdog, c.opts.Watchdog)
			}
			return received, fmt.Errorf("read: %w", err)
		}
		received = true

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.log.Debug("dropping malformed message", "error", err)
			continue
		}
		if !c.accepts(msg) {
			continue
		}

		select {
		case c.messages <- msg:
		case <-ctx.Done():
			return received, ctx.Err()
		}
	}
}

// accepts reports whether msg is addressed to this client. Zero-valued
// address fields in the message match anything.
func (c *Client) accepts(msg Message) bool {
	if msg.ServerID != "" && msg.ServerID != c.opts.ServerID {
		return false
	}
	if msg.NetworkID != 0 && msg.NetworkID != c.opts.NetworkID {
		return false
	}
	if msg.DeviceID != 0 && msg.DeviceID != c.opts.DeviceID {
		return false
	}
	return true
}

// NewMessage addresses data to the configured server and device.
func (c *Client) NewMessage(data map[string]any, at time.Time) Message {
	return Message{
		ServerID:  c.opts.ServerID,
		NetworkID: c.opts.NetworkID,
		DeviceID:  c.opts.DeviceID,
		Data:      data,
		Timestamp: at.Unix(),
	}
}

// Send writes msg to the server. It fails with ErrNotConnected while the
// link is down.
func (c *Client) Send(ctx context.Context, msg Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	deadline := time.Now().Add(c.opts.WriteTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func (c *Client) setState(s State, err error) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()

	select {
	case c.statuses <- Status{State: s, Err: err, At: time.Now()}:
	default:
	}
}

func nextBackoff(cur, max time.Duration) time.Duration {
	next := cur * 2
	if next > max {
		return max
	}
	return next
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
