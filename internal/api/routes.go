package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/heat-chamber/hmi/internal/app"
	"github.com/heat-chamber/hmi/internal/auth"
	"github.com/heat-chamber/hmi/internal/chart"
	"github.com/heat-chamber/hmi/internal/res"
	"github.com/heat-chamber/hmi/internal/tags"
)

const apiV1 = "/api/v1"

// maxBodyBytes bounds settings submissions.
const maxBodyBytes = 64 << 10

// RegisterRoutes registers all v1 endpoints.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc(apiV1+"/health", s.handleHealth)

	routes := []struct {
		path    string
		handler http.HandlerFunc
		scope   string
	}{
		{"/view", s.handleView, auth.ScopeRead},
		{"/chart", s.handleChart, auth.ScopeRead},
		{"/chart.png", s.handleFrame(chart.FormatPNG, "image/png"), auth.ScopeRead},
		{"/chart.svg", s.handleFrame(chart.FormatSVG, "image/svg+xml"), auth.ScopeRead},
		{"/log", s.handleLog, auth.ScopeRead},
		{"/res", s.handleRes, auth.ScopeRead},
		{"/panes", s.handlePanes, auth.ScopeRead},
		{"/telemetry", s.handleTelemetry, auth.ScopeTelemetry},
		{"/settings", s.handleSettings, auth.ScopeControl},
	}

	for _, rt := range routes {
		h := rt.handler
		if s.opts.Auth != nil {
			h = s.opts.Auth.Protect(h, rt.scope)
		}
		mux.HandleFunc(apiV1+rt.path, h)
	}
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			fmt.Sprintf("Only %s method is allowed", method), nil)
		return false
	}
	return true
}

func (s *Server) requirePage(w http.ResponseWriter) bool {
	if s.opts.Page == nil {
		WriteError(w, http.StatusServiceUnavailable, app.CodeUnavailable, "Page state not available", nil)
		return false
	}
	return true
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	subsystems := map[string]bool{
		"page":      s.opts.Page != nil,
		"frames":    s.opts.Frames != nil,
		"telemetry": s.opts.Telemetry != nil,
		"auth":      true,
	}
	health := map[string]interface{}{
		"status":     "ok",
		"uptimeSec":  time.Since(s.startTime).Seconds(),
		"subsystems": subsystems,
	}
	if s.opts.Page != nil {
		health["link"] = s.opts.Page.Page().Link
	}

	if !subsystems["page"] {
		health["status"] = "degraded"
		WriteError(w, http.StatusServiceUnavailable, "SERVICE_DEGRADED",
			"One or more subsystems are unavailable", health)
		return
	}
	WriteSuccess(w, health)
}

// handleView handles GET /view
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) || !s.requirePage(w) {
		return
	}
	WriteSuccess(w, s.opts.Page.Page())
}

// handleChart handles GET /chart
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) || !s.requirePage(w) {
		return
	}
	WriteSuccess(w, s.opts.Page.Chart())
}

// handleFrame serves the last rendered chart frame in format f.
func (s *Server) handleFrame(f chart.Format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodGet) {
			return
		}
		if s.opts.Frames == nil {
			WriteError(w, http.StatusServiceUnavailable, app.CodeUnavailable, "Chart renderer not available", nil)
			return
		}
		data, stamp, ok := s.opts.Frames.Frame(f)
		if !ok {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "No chart frame rendered yet", nil)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Last-Modified", stamp.UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

// handleLog handles GET /log?after=N
func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) || !s.requirePage(w) {
		return
	}
	after := int64(0)
	if v := r.URL.Query().Get("after"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			WriteError(w, http.StatusBadRequest, app.CodeBadRequest, "after must be a non-negative integer", nil)
			return
		}
		after = n
	}
	entries := s.opts.Page.Log(after)
	if entries == nil {
		entries = []tags.Entry{}
	}
	WriteSuccess(w, entries)
}

// handleRes handles GET /res?lang=xx
func (s *Server) handleRes(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) || !s.requirePage(w) {
		return
	}
	table := s.opts.Page.Strings()
	if lang := r.URL.Query().Get("lang"); lang != "" {
		table = res.Lookup(lang)
	}
	WriteSuccess(w, map[string]interface{}{
		"langs":   res.Langs(),
		"strings": table.Strings,
		"lists":   table.Lists,
		"conn":    table.ConnStates,
		"form":    s.opts.Page.FormItems(),
	})
}

// handlePanes handles GET /panes and POST /panes. A POST toggles every pane
// switch named in the body by whether its checkbox is checked.
func (s *Server) handlePanes(w http.ResponseWriter, r *http.Request) {
	if !s.requirePage(w) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		WriteSuccess(w, s.opts.Page.Page().Panes)
	case http.MethodPost:
		values, err := decodeValues(r)
		if err != nil {
			writePageError(w, err)
			return
		}
		panes := s.opts.Page.Page().Panes
		for _, item := range []string{app.ItemSchemeUse, app.ItemChartUse} {
			if _, ok := values[item]; !ok {
				continue
			}
			if panes, err = s.opts.Page.TogglePane(item, values); err != nil {
				writePageError(w, err)
				return
			}
		}
		WriteSuccess(w, panes)
	default:
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			"Only GET and POST methods are allowed", nil)
	}
}

// handleSettings handles POST /settings
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) || !s.requirePage(w) {
		return
	}
	values, err := decodeValues(r)
	if err != nil {
		writePageError(w, err)
		return
	}

	data, err := s.opts.Page.ApplySettings(r.Context(), auth.Subject(r.Context()), values)
	if err != nil {
		s.log.Warn("settings rejected", "error", err)
		writePageError(w, err)
		return
	}
	WriteSuccess(w, map[string]interface{}{"sent": data})
}

// handleTelemetry handles GET /telemetry (SSE)
func (s *Server) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	if s.opts.Telemetry == nil {
		WriteError(w, http.StatusServiceUnavailable, app.CodeUnavailable,
			"Telemetry service not available", nil)
		return
	}

	// The stream outlives the server write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	if err := s.opts.Telemetry.Subscribe(r.Context(), w, r); err != nil {
		s.log.Debug("telemetry stream ended", "error", err)
	}
}

// decodeValues reads a flat JSON object of form values. Numbers and booleans
// are converted to their form string representation.
func decodeValues(r *http.Request) (map[string]string, error) {
	var raw map[string]interface{}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: malformed JSON", ErrBadRequest)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after JSON object", ErrBadRequest)
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		switch x := v.(type) {
		case string:
			values[k] = x
		case float64:
			values[k] = strconv.FormatFloat(x, 'f', -1, 64)
		case bool:
			if x {
				values[k] = "1"
			} else {
				values[k] = ""
			}
		case nil:
			values[k] = ""
		default:
			return nil, fmt.Errorf("%w: %s must be a string, number or boolean", ErrBadRequest, k)
		}
	}
	return values, nil
}
