package app

import (
	"github.com/heat-chamber/hmi/internal/chart"
	"github.com/heat-chamber/hmi/internal/res"
	"github.com/heat-chamber/hmi/internal/setpoint"
	"github.com/heat-chamber/hmi/internal/tags"
)

// ChartView is the trend chart as served to operators.
type ChartView struct {
	AxisLabel  string         `json:"axisLabel"`
	ValueLabel string         `json:"valueLabel"`
	ValueMin   float64        `json:"valueMin"`
	ValueMax   float64        `json:"valueMax"`
	Redraws    int            `json:"redraws"`
	Capacity   int            `json:"capacity"`
	Series     []chart.Series `json:"series"`
}

// PageView is a snapshot of the whole page.
type PageView struct {
	Server   string        `json:"server"`
	Lang     string        `json:"lang"`
	Stamp    int64         `json:"stamp"`
	Messages int           `json:"messages"`
	Link     LinkStatus    `json:"link"`
	Panes    Panes         `json:"panes"`
	Band     setpoint.Band `json:"band"`
	Tags     []string      `json:"tags"`
	Nodes    []tags.Node   `json:"nodes"`
}

type tagsEvent struct {
	Stamp int64       `json:"stamp"`
	Fired int         `json:"fired"`
	Nodes []tags.Node `json:"nodes"`
}

func (s *State) tagsEventLocked(fired int) tagsEvent {
	return tagsEvent{Stamp: s.current.Timestamp, Fired: fired, Nodes: s.view.Snapshot()}
}

func (s *State) chartViewLocked() ChartView {
	opts := s.chart.Options()
	data := s.chart.Data()
	if data == nil {
		data = s.buffer.Snapshot()
	}
	return ChartView{
		AxisLabel:  s.chart.AxisLabel(),
		ValueLabel: opts.ValueLabel,
		ValueMin:   opts.ValueMin,
		ValueMax:   opts.ValueMax,
		Redraws:    s.chart.Redraws(),
		Capacity:   s.buffer.Capacity(),
		Series:     data,
	}
}

// Page returns a snapshot of the page.
func (s *State) Page() PageView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return PageView{
		Server:   s.cfg.Server.ID,
		Lang:     s.cfg.Lang,
		Stamp:    s.current.Timestamp,
		Messages: s.messages,
		Link:     s.link,
		Panes:    s.panes,
		Band:     s.band,
		Tags:     s.dispatcher.Keys(),
		Nodes:    s.view.Snapshot(),
	}
}

// Chart returns a snapshot of the trend chart.
func (s *State) Chart() ChartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chartViewLocked()
}

// Band returns the cached setpoint band.
func (s *State) Band() setpoint.Band {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.band
}

// Samples returns the number of samples buffered for key.
func (s *State) Samples(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffer.Len(key)
}

// Log returns event log entries with ID greater than after.
func (s *State) Log(after int64) []tags.Entry {
	return s.events.After(after)
}

// Strings returns the string table of the configured locale.
func (s *State) Strings() *res.Table {
	return s.res
}

// FormItems returns the settings form item names.
func (s *State) FormItems() []string {
	return s.form.Items()
}
