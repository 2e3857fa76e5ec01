package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/heat-chamber/hmi/internal/chart"
	"github.com/heat-chamber/hmi/internal/config"
	"github.com/heat-chamber/hmi/internal/form"
	"github.com/heat-chamber/hmi/internal/res"
	"github.com/heat-chamber/hmi/internal/setpoint"
	"github.com/heat-chamber/hmi/internal/tags"
	"github.com/heat-chamber/hmi/internal/telemetry"
	"github.com/heat-chamber/hmi/internal/wshmi"
)

// Link is the WebHMI connection used by the page.
type Link interface {
	Messages() <-chan wshmi.Message
	Statuses() <-chan wshmi.Status
	State() wshmi.State
	NewMessage(data map[string]any, at time.Time) wshmi.Message
	Send(ctx context.Context, msg wshmi.Message) error
}

// Publisher fans state changes out to operator clients.
type Publisher interface {
	Publish(topic string, data interface{}) telemetry.Event
}

// Auditor records operator commands.
type Auditor interface {
	LogCommand(user, server, action string, params map[string]interface{}, code string, err error) error
}

// Deps are the optional collaborators of the page. Nil members are skipped.
type Deps struct {
	Link      Link
	Publisher Publisher
	Auditor   Auditor
	Renderer  chart.Renderer
	Logger    *slog.Logger
}

// Panes is the visibility of the page sections.
type Panes struct {
	Scheme bool `json:"scheme"`
	Chart  bool `json:"chart"`
}

// LinkStatus is the WebHMI link state shown to the operator.
type LinkStatus struct {
	State string    `json:"state"`
	Text  string    `json:"text"`
	Error string    `json:"error,omitempty"`
	Since time.Time `json:"since"`
}

// State is the pro1003 page state. All mutation goes through its methods,
// which serialize on one mutex.
type State struct {
	cfg   *config.Config
	deps  Deps
	log   *slog.Logger
	res   *res.Table
	dates chart.Dates

	mu         sync.Mutex
	buffer     *chart.Buffer
	band       setpoint.Band
	chart      *chart.Linear
	view       *tags.View
	dispatcher *tags.Dispatcher
	events     *tags.EventLog
	form       *form.Form
	panes      Panes
	link       LinkStatus
	current    wshmi.Message
	messages   int
	redrawn    bool
}

// Init builds the page state from cfg.
func Init(cfg *config.Config, deps Deps) (*State, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	buffer, err := chart.NewBuffer(chart.DefaultCapacity, seriesDefs()...)
	if err != nil {
		return nil, fmt.Errorf("chart buffer: %w", err)
	}

	t := res.Lookup(cfg.Lang)
	s := &State{
		cfg:    cfg,
		deps:   deps,
		log:    logger.With("component", "app", "server", cfg.Server.ID),
		res:    t,
		dates:  chart.NewDates(cfg.Chart.DateLayout, cfg.Chart.Location()),
		buffer: buffer,
		view:   tags.NewView(),
		events: tags.NewEventLog(cfg.Telemetry.BufferSize),
		form:   form.New(formItems()),
		panes:  Panes{Scheme: true, Chart: true},
		link:   LinkStatus{State: wshmi.StateDisconnected.String(), Text: t.ConnState(int(wshmi.StateDisconnected)), Since: time.Now()},
	}

	s.chart = chart.NewLinear(chart.Options{
		ValueMin:   cfg.Chart.ValueMin,
		ValueMax:   cfg.Chart.ValueMax,
		ValueLabel: t.Text("ValueAxis"),
	}, deps.Renderer, s.dates)

	s.dispatcher, err = tags.NewDispatcher(s.view, bindings(t, s.onChart, s.events.Handler())...)
	if err != nil {
		return nil, fmt.Errorf("tag bindings: %w", err)
	}

	return s, nil
}

// HandleMessage applies one inbound message. It returns the number of
// bindings that fired.
func (s *State) HandleMessage(msg wshmi.Message) int {
	s.mu.Lock()
	s.current = msg
	s.messages++
	s.redrawn = false
	fired := s.dispatcher.Apply(msg.Data)
	redrawn := s.redrawn
	tagsView := s.tagsEventLocked(fired)
	var chartView ChartView
	if redrawn {
		chartView = s.chartViewLocked()
	}
	s.mu.Unlock()

	s.publish(telemetry.TopicTags, tagsView)
	if redrawn {
		s.publish(telemetry.TopicChart, chartView)
	}
	return fired
}

// onChart routes the tracked chart tags. It runs under s.mu from Apply.
func (s *State) onChart(u tags.Update) {
	v, ok := u.Number()
	if !ok {
		s.log.Debug("ignoring non-numeric chart tag", "key", u.Key, "value", u.Value)
		return
	}
	if s.route(u.Key, v) {
		s.redrawLocked()
	}
}

// route updates the setpoint band for SP and D. TT001 appends one aligned
// batch of all series and reports that a redraw is due.
func (s *State) route(key string, value float64) bool {
	switch key {
	case KeySP:
		s.band.SetCenter(value)
	case KeyD:
		s.band.SetDeadband(value)
	case KeyTrigger:
		stamp := s.current.StampMillis()
		s.buffer.Append(KeySP, stamp, s.band.Center)
		s.buffer.Append(KeySPLo, stamp, s.band.Low)
		s.buffer.Append(KeySPHi, stamp, s.band.High)
		s.buffer.Append(KeyTrigger, stamp, value)
		return true
	}
	return false
}

// redrawLocked pushes a snapshot of all series into the chart and refreshes
// the time-axis label.
func (s *State) redrawLocked() {
	s.redrawn = true
	s.chart.SetData(s.buffer.Snapshot())
	if err := s.chart.ReDraw(); err != nil {
		s.log.Warn("chart redraw failed", "error", err)
	}
	if err := s.chart.RefreshAxisLabel(); err != nil {
		s.log.Warn("chart axis refresh failed", "error", err)
	}
}

// Redraw forces a chart redraw from the current buffers.
func (s *State) Redraw() {
	s.mu.Lock()
	s.redrawLocked()
	view := s.chartViewLocked()
	s.mu.Unlock()
	s.publish(telemetry.TopicChart, view)
}

// HandleStatus records a link state change and logs it to the event log.
func (s *State) HandleStatus(st wshmi.Status) {
	s.mu.Lock()
	prev := s.link
	s.link = LinkStatus{
		State: st.State.String(),
		Text:  s.res.ConnState(int(st.State)),
		Since: st.At,
	}
	if st.Err != nil {
		s.link.Error = st.Err.Error()
	}
	if target, text, ok := s.linkLogLine(prev, st); ok {
		s.events.Add(target, text, "")
	}
	if st.State == wshmi.StateConnected {
		// A new connection starts from a full tag image.
		s.dispatcher.Reset()
	}
	link := s.link
	s.mu.Unlock()

	s.publish(telemetry.TopicLink, link)
}

func (s *State) linkLogLine(prev LinkStatus, st wshmi.Status) (target, text string, ok bool) {
	uri := s.cfg.Server.URI
	switch {
	case errors.Is(st.Err, wshmi.ErrWatchdog):
		return s.res.Text("WatchDog"), s.res.Format("NoDataErr", uri), true
	case st.State == wshmi.StateConnected:
		return s.res.Text("WebSocket"), s.res.Text("Connected"), true
	case st.State == wshmi.StateConnecting && prev.Error != "":
		return s.res.Text("WebSocket"), s.res.Text("AutoReconnect"), true
	case st.State == wshmi.StateDisconnected && st.Err != nil:
		return s.res.Text("WebSocket"), s.res.Format("SrvConnErr", uri), true
	case st.State == wshmi.StateDisconnected:
		return s.res.Text("WebSocket"), s.res.Text("Disconnected"), true
	}
	return "", "", false
}

func (s *State) publish(topic string, data interface{}) {
	if s.deps.Publisher == nil {
		return
	}
	s.deps.Publisher.Publish(topic, data)
}
