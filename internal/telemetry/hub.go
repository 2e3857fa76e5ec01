package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Topics published by the HMI.
const (
	TopicTags  = "tags"
	TopicChart = "chart"
	TopicLink  = "link"
)

// Event is one SSE event.
type Event struct {
	ID    int64       `json:"id,omitempty"`
	Type  string      `json:"type"`
	Topic string      `json:"topic,omitempty"`
	Data  interface{} `json:"data"`
}

// Options configures a Hub.
type Options struct {
	Heartbeat  time.Duration
	BufferSize int
	// Snapshot, if set, supplies the payload of the initial ready event.
	Snapshot func() interface{}
}

type client struct {
	id     string
	w      http.ResponseWriter
	ctx    context.Context
	cancel context.CancelFunc
	topics map[string]bool
	events chan Event
	mu     sync.Mutex
}

func (c *client) wants(topic string) bool {
	return len(c.topics) == 0 || topic == "" || c.topics[topic]
}

// Hub distributes events to SSE clients with per-topic replay buffers.
// Event IDs are one monotonic sequence across all topics.
type Hub struct {
	opts Options

	mu      sync.RWMutex
	clients map[string]*client
	buffers map[string]*EventBuffer
	lastID  int64

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewHub creates a hub and starts its heartbeat.
func NewHub(opts Options) *Hub {
	if opts.BufferSize <= 0 {
		opts.BufferSize = 50
	}
	h := &Hub{
		opts:    opts,
		clients: make(map[string]*client),
		buffers: make(map[string]*EventBuffer),
		done:    make(chan struct{}),
	}
	if opts.Heartbeat > 0 {
		h.wg.Add(1)
		go h.heartbeat()
	}
	return h
}

// Subscribe serves one SSE client until ctx or the request is done.
// The optional "topic" query parameter is a comma separated topic filter.
func (h *Hub) Subscribe(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Cache-Control, Last-Event-ID")

	lastEventID := int64(0)
	if s := r.Header.Get("Last-Event-ID"); s != "" {
		if id, err := strconv.ParseInt(s, 10, 64); err == nil {
			lastEventID = id
		}
	}

	clientCtx, cancel := context.WithCancel(ctx)
	c := &client{
		id:     uuid.NewString(),
		w:      w,
		ctx:    clientCtx,
		cancel: cancel,
		topics: parseTopics(r.URL.Query().Get("topic")),
		events: make(chan Event, 100),
	}

	h.mu.Lock()
	select {
	case <-h.done:
		h.mu.Unlock()
		cancel()
		return fmt.Errorf("hub stopped")
	default:
	}
	h.clients[c.id] = c
	h.mu.Unlock()
	defer h.unregister(c.id)

	if err := h.send(c, h.readyEvent()); err != nil {
		return fmt.Errorf("failed to send ready event: %w", err)
	}

	var sent int64
	if lastEventID > 0 {
		for _, e := range h.replay(lastEventID) {
			if !c.wants(e.Topic) {
				continue
			}
			if err := h.send(c, e); err != nil {
				return fmt.Errorf("failed to replay events: %w", err)
			}
			sent = e.ID
		}
	}

	for {
		select {
		case <-c.ctx.Done():
			return nil
		case <-h.done:
			return nil
		case e := <-c.events:
			// Events queued during replay may already have been sent.
			if e.ID > 0 && e.ID <= sent {
				continue
			}
			if err := h.send(c, e); err != nil {
				return nil
			}
		}
	}
}

// Publish buffers an event under topic and delivers it to subscribed clients.
// Slow clients drop events rather than block the publisher.
func (h *Hub) Publish(topic string, data interface{}) Event {
	h.mu.Lock()
	h.lastID++
	e := Event{ID: h.lastID, Type: topic, Topic: topic, Data: data}
	buf, ok := h.buffers[topic]
	if !ok {
		buf = NewEventBuffer(h.opts.BufferSize)
		h.buffers[topic] = buf
	}
	buf.AddEvent(e)
	clients := h.snapshotClients()
	h.mu.Unlock()

	h.deliver(clients, e)
	return e
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// LastID returns the most recently assigned event ID.
func (h *Hub) LastID() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastID
}

// Stop disconnects all clients and stops the heartbeat.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
		h.mu.Lock()
		for _, c := range h.clients {
			c.cancel()
		}
		h.mu.Unlock()
		h.wg.Wait()
	})
}

func (h *Hub) snapshotClients() []*client {
	out := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		out = append(out, c)
	}
	return out
}

func (h *Hub) deliver(clients []*client, e Event) {
	for _, c := range clients {
		if !c.wants(e.Topic) {
			continue
		}
		select {
		case <-c.ctx.Done():
		case c.events <- e:
		default:
		}
	}
}

func (h *Hub) unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		c.cancel()
		delete(h.clients, id)
	}
}

func (h *Hub) readyEvent() Event {
	var snapshot interface{} = map[string]interface{}{}
	if h.opts.Snapshot != nil {
		snapshot = h.opts.Snapshot()
	}
	return Event{
		Type: "ready",
		Data: map[string]interface{}{
			"lastId":   h.LastID(),
			"snapshot": snapshot,
		},
	}
}

// replay returns the buffered events of all topics after lastID, in ID order.
func (h *Hub) replay(lastID int64) []Event {
	h.mu.RLock()
	buffers := make([]*EventBuffer, 0, len(h.buffers))
	for _, b := range h.buffers {
		buffers = append(buffers, b)
	}
	h.mu.RUnlock()

	var events []Event
	for _, b := range buffers {
		events = append(events, b.GetEventsAfter(lastID)...)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	return events
}

// send writes one event in SSE framing and flushes it.
func (h *Hub) send(c *client, e Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e.ID > 0 {
		if _, err := fmt.Fprintf(c.w, "id: %d\n", e.ID); err != nil {
			return fmt.Errorf("failed to write event ID: %w", err)
		}
	}
	if _, err := fmt.Fprintf(c.w, "event: %s\n", e.Type); err != nil {
		return fmt.Errorf("failed to write event type: %w", err)
	}

	data, err := json.Marshal(e.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}
	if _, err := fmt.Fprintf(c.w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("failed to write event data: %w", err)
	}

	if f, ok := c.w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}

// heartbeat sends an unbuffered, ID-less event to every client on each tick.
func (h *Hub) heartbeat() {
	defer h.wg.Done()
	ticker := time.NewTicker(h.opts.Heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case now := <-ticker.C:
			e := Event{
				Type: "heartbeat",
				Data: map[string]interface{}{"ts": now.UTC().Format(time.RFC3339)},
			}
			h.mu.RLock()
			clients := h.snapshotClients()
			h.mu.RUnlock()
			h.deliver(clients, e)
		}
	}
}

func parseTopics(s string) map[string]bool {
	if s == "" {
		return nil
	}
	topics := make(map[string]bool)
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			topics[t] = true
		}
	}
	return topics
}

// EventBuffer keeps the most recent events of one topic.
type EventBuffer struct {
	mu       sync.RWMutex
	events   []Event
	capacity int
}

// NewEventBuffer creates a buffer holding at most capacity events.
func NewEventBuffer(capacity int) *EventBuffer {
	return &EventBuffer{events: make([]Event, 0, capacity), capacity: capacity}
}

// AddEvent appends e, dropping the oldest event at capacity.
func (b *EventBuffer) AddEvent(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
	if len(b.events) > b.capacity {
		b.events = b.events[1:]
	}
}

// GetEventsAfter returns events with ID greater than lastID.
func (b *EventBuffer) GetEventsAfter(lastID int64) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var result []Event
	for _, e := range b.events {
		if e.ID > lastID {
			result = append(result, e)
		}
	}
	return result
}

// GetSize returns the number of buffered events.
func (b *EventBuffer) GetSize() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.events)
}
