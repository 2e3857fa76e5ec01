package tags

import "fmt"

// Dispatcher applies telemetry messages to a fixed set of bindings.
// Not safe for concurrent use.
type Dispatcher struct {
	bindings []*Binding
	view     *View
}

// NewDispatcher creates a dispatcher over bindings. Binding names must be unique.
// view may be nil when no binding drives a node.
func NewDispatcher(view *View, bindings ...*Binding) (*Dispatcher, error) {
	names := make(map[string]struct{}, len(bindings))
	for _, b := range bindings {
		if b.DataKey == "" {
			return nil, fmt.Errorf("binding %q has no data key", b.Name)
		}
		if _, dup := names[b.Name]; dup {
			return nil, fmt.Errorf("duplicate binding %q", b.Name)
		}
		names[b.Name] = struct{}{}
		if b.Node != "" && view == nil {
			return nil, fmt.Errorf("binding %q drives node %q but no view is set", b.Name, b.Node)
		}
		if b.Node != "" {
			view.declare(b.Node, b.Alg)
		}
	}
	return &Dispatcher{bindings: bindings, view: view}, nil
}

// Apply runs every binding whose data key is present in data, in declaration
// order. It returns the number of bindings that fired.
func (d *Dispatcher) Apply(data map[string]any) int {
	fired := 0
	for _, b := range d.bindings {
		raw, ok := data[b.DataKey]
		if !ok {
			continue
		}

		value, before := b.process(raw)
		if b.ByRiseEdge && b.seen && sameValue(b.last, value) {
			continue
		}
		b.last = value
		b.seen = true

		u := Update{Binding: b, Key: b.DataKey, Value: value, Before: before}
		if b.Node != "" {
			d.view.apply(b.Node, b.Alg, u)
		}
		if b.Exec != nil {
			b.Exec(u)
		}
		fired++
	}
	return fired
}

// Reset forgets the last seen values so the next message fires every binding.
func (d *Dispatcher) Reset() {
	for _, b := range d.bindings {
		b.last = nil
		b.seen = false
	}
}

// Keys returns the distinct data keys in binding order.
func (d *Dispatcher) Keys() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, b := range d.bindings {
		if _, ok := seen[b.DataKey]; ok {
			continue
		}
		seen[b.DataKey] = struct{}{}
		out = append(out, b.DataKey)
	}
	return out
}

// sameValue compares processed values; composite JSON values compare by encoding.
func sameValue(a, b any) bool {
	switch x := a.(type) {
	case float64:
		y, ok := b.(float64)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	case nil:
		return b == nil
	default:
		return formatValue(a) == formatValue(b)
	}
}
