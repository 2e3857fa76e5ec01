package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/heat-chamber/hmi/internal/form"
	"github.com/heat-chamber/hmi/internal/wshmi"
)

// ErrUnknownPane is returned by TogglePane for items that are not pane switches.
var ErrUnknownPane = errors.New("not a pane switch")

// Result codes recorded in the audit trail.
const (
	CodeOK          = "OK"
	CodeBadRequest  = "BAD_REQUEST"
	CodeUnavailable = "UNAVAILABLE"
	CodeInternal    = "INTERNAL"
)

const actionSettings = "settings"

// ApplySettings converts the submitted form values and sends them to the
// controller. It fails with wshmi.ErrNotConnected while the link is down.
// Every call is audited under user.
func (s *State) ApplySettings(ctx context.Context, user string, values map[string]string) (map[string]any, error) {
	data, err := s.form.Resultset(values)
	if err != nil {
		s.audit(user, nil, err)
		return nil, err
	}

	if err := s.send(ctx, data); err != nil {
		s.audit(user, data, err)
		return nil, err
	}

	s.audit(user, data, nil)
	s.log.Info("settings sent", "user", user, "items", len(data))
	return data, nil
}

func (s *State) send(ctx context.Context, data map[string]any) error {
	link := s.deps.Link
	if link == nil || link.State() != wshmi.StateConnected {
		return wshmi.ErrNotConnected
	}
	msg := link.NewMessage(data, time.Now())
	if err := link.Send(ctx, msg); err != nil {
		return fmt.Errorf("send settings: %w", err)
	}
	return nil
}

// TogglePane shows the pane switched by item when the checkbox is present in
// values and hides it otherwise.
func (s *State) TogglePane(item string, values map[string]string) (Panes, error) {
	if item != ItemSchemeUse && item != ItemChartUse {
		return Panes{}, fmt.Errorf("%w: %s", ErrUnknownPane, item)
	}
	data, err := s.form.Resultset(values)
	if err != nil && !errors.Is(err, form.ErrEmpty) {
		return Panes{}, err
	}

	s.mu.Lock()
	switch item {
	case ItemSchemeUse:
		s.panes.Scheme = form.Has(data, item)
	case ItemChartUse:
		s.panes.Chart = form.Has(data, item)
	}
	panes := s.panes
	s.mu.Unlock()
	return panes, nil
}

// Code maps a settings error to its result code.
func Code(err error) string {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, form.ErrUnknownItem), errors.Is(err, form.ErrInvalidNumber),
		errors.Is(err, form.ErrEmpty), errors.Is(err, ErrUnknownPane):
		return CodeBadRequest
	case errors.Is(err, wshmi.ErrNotConnected):
		return CodeUnavailable
	default:
		return CodeInternal
	}
}

func (s *State) audit(user string, data map[string]any, err error) {
	if s.deps.Auditor == nil {
		return
	}
	params := make(map[string]interface{}, len(data))
	for k, v := range data {
		params[k] = v
	}
	if aerr := s.deps.Auditor.LogCommand(user, s.cfg.Server.ID, actionSettings, params, Code(err), err); aerr != nil {
		s.log.Error("audit write failed", "error", aerr)
	}
}
