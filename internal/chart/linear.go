package chart

// Chart is the redraw surface driven by the application.
type Chart interface {
	// SetData replaces the working data with a snapshot of all series.
	SetData(data []Series)
	// ReDraw requests a visual refresh of the working data.
	ReDraw() error
	// RefreshAxisLabel recomputes the time-axis label from the working data.
	RefreshAxisLabel() error
}

// Plot is everything a Renderer needs to draw one frame.
type Plot struct {
	Series     []Series
	AxisLabel  string
	ValueLabel string
	ValueMin   float64
	ValueMax   float64
}

// Renderer draws plots. Implementations must be safe to call from one goroutine
// while frames are read from others.
type Renderer interface {
	Render(p Plot) error
}

// Options are the fixed chart settings.
type Options struct {
	ValueMin   float64
	ValueMax   float64
	ValueLabel string
}

// Linear is the trend chart. Renderer and DateFormatter may be nil, in which
// case redraws or axis-label refreshes are skipped.
type Linear struct {
	opts      Options
	renderer  Renderer
	dates     DateFormatter
	data      []Series
	axisLabel string
	redraws   int
}

var _ Chart = (*Linear)(nil)

// NewLinear creates a trend chart.
func NewLinear(opts Options, renderer Renderer, dates DateFormatter) *Linear {
	return &Linear{
		opts:      opts,
		renderer:  renderer,
		dates:     dates,
		axisLabel: Placeholder,
	}
}

// SetData replaces the working data.
func (l *Linear) SetData(data []Series) {
	l.data = data
}

// ReDraw renders the working data with the current axis label.
func (l *Linear) ReDraw() error {
	if l.renderer == nil {
		return nil
	}
	l.redraws++
	return l.renderer.Render(l.plot())
}

// RefreshAxisLabel recomputes the axis label and redraws when it changed.
func (l *Linear) RefreshAxisLabel() error {
	if l.dates == nil {
		return nil
	}
	label := AxisLabel(l.data, l.dates)
	if label == l.axisLabel {
		return nil
	}
	l.axisLabel = label
	return l.ReDraw()
}

// AxisLabel returns the current time-axis label.
func (l *Linear) AxisLabel() string {
	return l.axisLabel
}

// Data returns the working data last set.
func (l *Linear) Data() []Series {
	return l.data
}

// Redraws returns how many frames were handed to the renderer.
func (l *Linear) Redraws() int {
	return l.redraws
}

// Options returns the chart settings.
func (l *Linear) Options() Options {
	return l.opts
}

func (l *Linear) plot() Plot {
	return Plot{
		Series:     l.data,
		AxisLabel:  l.axisLabel,
		ValueLabel: l.opts.ValueLabel,
		ValueMin:   l.opts.ValueMin,
		ValueMax:   l.opts.ValueMax,
	}
}
