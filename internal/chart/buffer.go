package chart

import (
	"encoding/json"
	"fmt"
)

// DefaultCapacity is the number of samples kept per series.
const DefaultCapacity = 30

// Sample is one point of a series. It encodes as [stamp, value].
type Sample struct {
	Stamp int64 // milliseconds since the Unix epoch
	Value float64
}

// MarshalJSON encodes the sample as a two-element array.
func (s Sample) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{float64(s.Stamp), s.Value})
}

// Style describes how a series is drawn.
type Style struct {
	Color       string  `json:"color"`
	LineWidth   float64 `json:"lineWidth"`
	Fill        float64 `json:"fill,omitempty"` // 0..1 opacity of the area under the line
	FillBetween string  `json:"fillBetween,omitempty"`
}

// SeriesDef declares a series at buffer construction.
type SeriesDef struct {
	Key   string
	Label string
	Style Style
}

// Series is a snapshot of one buffered series.
type Series struct {
	Key   string   `json:"id"`
	Label string   `json:"label"`
	Style Style    `json:"style"`
	Data  []Sample `json:"data"`
}

// Buffer holds the rolling samples of a fixed set of series.
// The key registry is fixed at construction. Buffer is not safe for
// concurrent use; the owner serializes access.
type Buffer struct {
	capacity int
	registry map[string]int
	series   []Series
}

// NewBuffer creates a buffer for defs. Duplicate keys are rejected.
func NewBuffer(capacity int, defs ...SeriesDef) (*Buffer, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("capacity must be positive, got %d", capacity)
	}

	b := &Buffer{
		capacity: capacity,
		registry: make(map[string]int, len(defs)),
		series:   make([]Series, 0, len(defs)),
	}
	for _, d := range defs {
		if _, dup := b.registry[d.Key]; dup {
			return nil, fmt.Errorf("duplicate series key %q", d.Key)
		}
		b.registry[d.Key] = len(b.series)
		b.series = append(b.series, Series{
			Key:   d.Key,
			Label: d.Label,
			Style: d.Style,
			Data:  make([]Sample, 0, capacity),
		})
	}
	return b, nil
}

// Append adds (stamp, value) to the series registered under key. If the series
// is already at capacity its oldest sample is dropped first. Unknown keys are ignored.
func (b *Buffer) Append(key string, stamp int64, value float64) {
	idx, ok := b.registry[key]
	if !ok {
		return
	}

	s := &b.series[idx]
	if len(s.Data) >= b.capacity {
		copy(s.Data, s.Data[1:])
		s.Data = s.Data[:len(s.Data)-1]
	}
	s.Data = append(s.Data, Sample{Stamp: stamp, Value: value})
}

// Has reports whether key is registered.
func (b *Buffer) Has(key string) bool {
	_, ok := b.registry[key]
	return ok
}

// Len returns the number of samples held for key, or 0 for unknown keys.
func (b *Buffer) Len(key string) int {
	idx, ok := b.registry[key]
	if !ok {
		return 0
	}
	return len(b.series[idx].Data)
}

// Capacity returns the per-series bound.
func (b *Buffer) Capacity() int {
	return b.capacity
}

// Snapshot returns a deep copy of all series in registration order.
func (b *Buffer) Snapshot() []Series {
	out := make([]Series, len(b.series))
	for i, s := range b.series {
		out[i] = s
		out[i].Data = append([]Sample(nil), s.Data...)
	}
	return out
}
