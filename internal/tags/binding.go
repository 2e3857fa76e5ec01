package tags

import (
	"encoding/json"
	"strconv"
)

// Alg is the node algorithm a binding drives.
type Alg string

const (
	AlgNone         Alg = ""
	AlgText         Alg = "Text"
	AlgBitLamp      Alg = "BitLamp"
	AlgBitLampBlink Alg = "BitLampBlink"
)

// Update is passed to a binding handler.
type Update struct {
	Binding *Binding
	Key     string
	// Value is the processed value: a string after FromArray lookup, otherwise
	// the number (float64) or the raw text of non-numeric tags.
	Value any
	// Before is the processed value prior to FromArray lookup.
	Before any
}

// Number returns Before as a float64.
func (u Update) Number() (float64, bool) {
	f, ok := u.Before.(float64)
	return f, ok
}

// Text returns Value formatted for display.
func (u Update) Text() string {
	return formatValue(u.Value)
}

// Handler runs after a binding has updated its node.
type Handler func(u Update)

// Binding links one data key to one node and/or handler.
type Binding struct {
	Name       string
	DataKey    string
	Node       string
	Alg        Alg
	ByRiseEdge bool // fire only when the processed value changed
	Bit        *int // extract this bit of a packed word
	Div        float64
	FromArray  map[int]string
	Exec       Handler
	LogTarget  string
	LogColor   map[int]string

	last any
	seen bool
}

// BitIndex returns a pointer suitable for Binding.Bit.
func BitIndex(n int) *int {
	return &n
}

// process converts a raw message value into (value, before).
func (b *Binding) process(raw any) (value, before any) {
	f, ok := toFloat(raw)
	if !ok {
		return raw, raw
	}

	if b.Bit != nil {
		f = float64((int64(f) >> uint(*b.Bit)) & 1)
	}
	if b.Div != 0 {
		f = f / b.Div
	}

	if b.FromArray != nil {
		if s, ok := b.FromArray[int(f)]; ok {
			return s, f
		}
	}
	return f, f
}

// Color returns the log colour for the numeric value of u, or "".
func (b *Binding) Color(u Update) string {
	if b.LogColor == nil {
		return ""
	}
	f, ok := u.Number()
	if !ok {
		return ""
	}
	return b.LogColor[int(f)]
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
