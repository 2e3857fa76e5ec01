package chart

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestCanvasRender(t *testing.T) {
	c := NewCanvas(640, 320)

	if _, _, ok := c.Frame(FormatPNG); ok {
		t.Fatal("fresh canvas should have no frame")
	}

	base := time.Date(2023, 5, 14, 12, 0, 0, 0, time.UTC).UnixMilli()
	plot := Plot{
		Series: []Series{
			{Key: "SP_Lo", Label: "SP-D", Style: Style{Color: "#008000"}, Data: []Sample{{base, 25}, {base + 1000, 25}}},
			{Key: "SP_Hi", Label: "SP+D", Style: Style{Color: "#008000", Fill: 0.25}, Data: []Sample{{base, 35}, {base + 1000, 35}}},
			{Key: "TT001", Label: "TT001", Style: Style{Color: "#000000", LineWidth: 3}, Data: []Sample{{base, 29.5}, {base + 1000, 30.1}}},
			{Key: "SP", Label: "SP", Style: Style{Color: "#FFFF00", LineWidth: 0.8}},
		},
		AxisLabel:  "14.05.2023",
		ValueLabel: "value",
		ValueMin:   0,
		ValueMax:   60,
	}
	if err := c.Render(plot); err != nil {
		t.Fatalf("Render() failed: %v", err)
	}

	png, _, ok := c.Frame(FormatPNG)
	if !ok || !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Errorf("PNG frame missing or malformed (%d bytes)", len(png))
	}
	svg, _, ok := c.Frame(FormatSVG)
	if !ok || !strings.Contains(string(svg), "<svg") {
		t.Errorf("SVG frame missing or malformed (%d bytes)", len(svg))
	}
}

func TestCanvasSingleSampleIsPadded(t *testing.T) {
	c := NewCanvas(320, 200)
	plot := Plot{
		Series:   []Series{{Key: "TT001", Label: "TT001", Data: []Sample{{1_700_000_000_000, 20}}}},
		ValueMax: 60,
	}
	if err := c.Render(plot); err != nil {
		t.Fatalf("Render() of a single sample failed: %v", err)
	}
	if _, _, ok := c.Frame(FormatPNG); !ok {
		t.Error("single sample should still produce a frame")
	}
}

func TestCanvasEmptyPlotClearsFrames(t *testing.T) {
	c := NewCanvas(320, 200)
	if err := c.Render(Plot{Series: []Series{{Key: "TT001", Data: []Sample{{1, 1}, {2000, 2}}}}, ValueMax: 60}); err != nil {
		t.Fatal(err)
	}
	if err := c.Render(Plot{Series: []Series{{Key: "TT001"}}, ValueMax: 60}); err != nil {
		t.Fatal(err)
	}
	if _, _, ok := c.Frame(FormatPNG); ok {
		t.Error("empty plot should clear frames")
	}
}

func TestSeriesStyle(t *testing.T) {
	tests := []struct {
		name       string
		style      Style
		wantStroke bool
		wantFill   bool
	}{
		{"line", Style{Color: "#000000", LineWidth: 3}, true, false},
		{"band edge without line", Style{Color: "#008000"}, false, false},
		{"filled band without line", Style{Color: "#008000", Fill: 0.25}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := seriesStyle(tt.style)
			if stroke := got.StrokeColor.A > 0; stroke != tt.wantStroke {
				t.Errorf("stroke alpha = %d, want visible=%v", got.StrokeColor.A, tt.wantStroke)
			}
			if fill := got.FillColor.A > 0; fill != tt.wantFill {
				t.Errorf("fill alpha = %d, want visible=%v", got.FillColor.A, tt.wantFill)
			}
		})
	}
}
