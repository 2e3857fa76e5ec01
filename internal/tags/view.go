package tags

import (
	"sync"
	"time"
)

// Node is the display state of one widget.
type Node struct {
	Name    string    `json:"name"`
	Alg     Alg       `json:"alg"`
	Text    string    `json:"text"`
	On      bool      `json:"on"`
	Blink   bool      `json:"blink"`
	Updated time.Time `json:"updated"`
}

// View holds the state of all widget nodes.
type View struct {
	mu    sync.RWMutex
	nodes map[string]*Node
	order []string
	now   func() time.Time
}

// NewView creates an empty view.
func NewView() *View {
	return &View{
		nodes: make(map[string]*Node),
		now:   time.Now,
	}
}

func (v *View) declare(name string, alg Alg) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.nodes[name]; ok {
		return
	}
	v.nodes[name] = &Node{Name: name, Alg: alg}
	v.order = append(v.order, name)
}

func (v *View) apply(name string, alg Alg, u Update) {
	v.mu.Lock()
	defer v.mu.Unlock()

	n, ok := v.nodes[name]
	if !ok {
		return
	}
	switch alg {
	case AlgBitLamp, AlgBitLampBlink:
		f, _ := u.Number()
		n.On = f != 0
		n.Blink = alg == AlgBitLampBlink && n.On
	default:
		n.Text = u.Text()
	}
	n.Updated = v.now()
}

// Node returns a copy of the named node.
func (v *View) Node(name string) (Node, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	n, ok := v.nodes[name]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Snapshot returns copies of all nodes in declaration order.
func (v *View) Snapshot() []Node {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]Node, 0, len(v.order))
	for _, name := range v.order {
		out = append(out, *v.nodes[name])
	}
	return out
}
