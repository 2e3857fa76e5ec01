package chart

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Format selects an encoded frame.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// Canvas renders plots with go-chart and keeps the latest encoded frames.
type Canvas struct {
	width  int
	height int

	mu     sync.RWMutex
	frames map[Format][]byte
	stamp  time.Time
}

var _ Renderer = (*Canvas)(nil)

// NewCanvas creates a canvas of the given pixel size.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		width:  width,
		height: height,
		frames: make(map[Format][]byte),
	}
}

// Render encodes p as PNG and SVG. A plot without samples clears the frames.
func (c *Canvas) Render(p Plot) error {
	series := timeSeries(p.Series)
	if len(series) == 0 {
		c.mu.Lock()
		c.frames = make(map[Format][]byte)
		c.stamp = time.Now()
		c.mu.Unlock()
		return nil
	}

	ch := gochart.Chart{
		Width:      c.width,
		Height:     c.height,
		Background: gochart.Style{Padding: gochart.Box{Top: 20, Left: 16, Right: 16, Bottom: 16}},
		XAxis: gochart.XAxis{
			Name:           p.AxisLabel,
			ValueFormatter: gochart.TimeValueFormatterWithFormat("15:04:05"),
		},
		YAxis: gochart.YAxis{
			Name:  p.ValueLabel,
			Range: &gochart.ContinuousRange{Min: p.ValueMin, Max: p.ValueMax},
		},
		Series: series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}

	frames := make(map[Format][]byte, 2)
	for _, f := range []struct {
		format   Format
		provider gochart.RendererProvider
	}{
		{FormatPNG, gochart.PNG},
		{FormatSVG, gochart.SVG},
	} {
		var buf bytes.Buffer
		if err := ch.Render(f.provider, &buf); err != nil {
			return fmt.Errorf("render %s: %w", f.format, err)
		}
		frames[f.format] = buf.Bytes()
	}

	c.mu.Lock()
	c.frames = frames
	c.stamp = time.Now()
	c.mu.Unlock()
	return nil
}

// Frame returns the latest encoded frame and its render time.
// ok is false until a plot with samples has been rendered.
func (c *Canvas) Frame(f Format) (data []byte, stamp time.Time, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, ok = c.frames[f]
	return data, c.stamp, ok
}

// timeSeries converts buffered series to go-chart series, skipping empty ones.
// A series whose samples span no time is padded by one second, as go-chart
// cannot draw a zero-width range.
func timeSeries(data []Series) []gochart.Series {
	out := make([]gochart.Series, 0, len(data))
	for _, s := range data {
		if len(s.Data) == 0 {
			continue
		}
		xs := make([]time.Time, len(s.Data))
		ys := make([]float64, len(s.Data))
		for i, p := range s.Data {
			xs[i] = time.UnixMilli(p.Stamp)
			ys[i] = p.Value
		}
		if xs[0].Equal(xs[len(xs)-1]) {
			xs = append(xs, xs[len(xs)-1].Add(time.Second))
			ys = append(ys, ys[len(ys)-1])
		}
		out = append(out, gochart.TimeSeries{
			Name:    s.Label,
			XValues: xs,
			YValues: ys,
			Style:   seriesStyle(s.Style),
		})
	}
	return out
}

// seriesStyle maps a series style to go-chart. A zero line width draws no
// stroke; go-chart would otherwise substitute its default width.
func seriesStyle(st Style) gochart.Style {
	col := drawing.ColorFromHex(strings.TrimPrefix(st.Color, "#"))
	out := gochart.Style{
		StrokeColor: col,
		StrokeWidth: st.LineWidth,
	}
	if st.LineWidth <= 0 {
		out.StrokeColor = drawing.ColorTransparent
	}
	if st.Fill > 0 {
		out.FillColor = col.WithAlpha(uint8(st.Fill * 255))
	}
	return out
}
