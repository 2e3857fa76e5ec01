package api

import (
	"context"
	"net/http"
	"time"

	"github.com/heat-chamber/hmi/internal/app"
	"github.com/heat-chamber/hmi/internal/chart"
	"github.com/heat-chamber/hmi/internal/res"
	"github.com/heat-chamber/hmi/internal/tags"
	"github.com/heat-chamber/hmi/internal/telemetry"
)

// PagePort is what the API needs from the page state.
type PagePort interface {
	Page() app.PageView
	Chart() app.ChartView
	Log(after int64) []tags.Entry
	Strings() *res.Table
	FormItems() []string
	ApplySettings(ctx context.Context, user string, values map[string]string) (map[string]any, error)
	TogglePane(item string, values map[string]string) (app.Panes, error)
}

// FramePort serves rendered chart frames.
type FramePort interface {
	Frame(f chart.Format) (data []byte, stamp time.Time, ok bool)
}

// TelemetryPort streams updates to a client.
type TelemetryPort interface {
	Subscribe(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

var _ PagePort = (*app.State)(nil)
var _ FramePort = (*chart.Canvas)(nil)
var _ TelemetryPort = (*telemetry.Hub)(nil)
