package app

import (
	"context"

	"github.com/heat-chamber/hmi/internal/wshmi"
)

// Run applies link messages and status changes until ctx is done or the
// link channels close. Status changes queued before a message are applied
// before it, so a new connection is seen ahead of its first tag image.
func (s *State) Run(ctx context.Context) error {
	link := s.deps.Link
	if link == nil {
		<-ctx.Done()
		return ctx.Err()
	}

	messages, statuses := link.Messages(), link.Statuses()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case st, ok := <-statuses:
			if !ok {
				statuses = nil
				continue
			}
			s.HandleStatus(st)
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			statuses = s.drainStatuses(statuses)
			s.HandleMessage(msg)
		}
	}
}

// drainStatuses applies every status already queued. It returns nil once
// the channel is closed.
func (s *State) drainStatuses(statuses <-chan wshmi.Status) <-chan wshmi.Status {
	for {
		select {
		case st, ok := <-statuses:
			if !ok {
				return nil
			}
			s.HandleStatus(st)
		default:
			return statuses
		}
	}
}
