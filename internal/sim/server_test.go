package sim

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/heat-chamber/hmi/internal/wshmi"
)

func TestServerWithClient(t *testing.T) {
	chamber := NewChamber(DefaultOptions())
	defer chamber.Close()

	srv := NewServer(chamber, ServerOptions{ServerID: "pro1003", NetworkID: 1, DeviceID: 1, Period: 20 * time.Millisecond})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go func() { _ = srv.Run(ctx) }()

	client := wshmi.New(wshmi.Options{
		URI:       "ws" + strings.TrimPrefix(ts.URL, "http"),
		ServerID:  "pro1003",
		NetworkID: 1,
		DeviceID:  1,
	})
	go func() { _ = client.Run(ctx) }()

	var first wshmi.Message
	select {
	case first = <-client.Messages():
	case <-ctx.Done():
		t.Fatal("no message from simulator")
	}
	if first.Data["TT001"] != 200.0 || first.Data["SP"] != 40.0 {
		t.Errorf("initial tags = %v", first.Data)
	}

	if srv.Peers() != 1 {
		t.Errorf("Peers() = %d, want 1", srv.Peers())
	}

	if err := client.Send(ctx, client.NewMessage(map[string]any{"SP": 55.0, "START": 1.0}, time.Now())); err != nil {
		t.Fatalf("Send() failed: %v", err)
	}

	for {
		select {
		case msg := <-client.Messages():
			if msg.Data["SP"] == 55.0 {
				if chamber.State() != StateRun {
					t.Errorf("State() = %d, want run", chamber.State())
				}
				return
			}
		case <-ctx.Done():
			t.Fatal("settings never reflected in tags")
		}
	}
}

func TestServerRunAdvancesChamber(t *testing.T) {
	chamber := NewChamber(DefaultOptions())
	defer chamber.Close()
	if err := chamber.Submit(map[string]any{"START": 1.0}); err != nil {
		t.Fatal(err)
	}

	// Each 10 ms period is one simulated minute.
	srv := NewServer(chamber, ServerOptions{Period: 10 * time.Millisecond, TimeScale: 6000})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	for chamber.Temperature() < 30 {
		select {
		case <-ctx.Done():
			t.Fatalf("temperature = %.1f, chamber not advanced", chamber.Temperature())
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()
	if err := <-done; err != context.Canceled {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
}

func TestServerIgnoresOtherAddress(t *testing.T) {
	srv := NewServer(nil, ServerOptions{ServerID: "pro1003", NetworkID: 1, DeviceID: 1})
	tests := []struct {
		msg  wshmi.Message
		want bool
	}{
		{wshmi.Message{ServerID: "pro1003", NetworkID: 1, DeviceID: 1}, true},
		{wshmi.Message{}, true},
		{wshmi.Message{ServerID: "other"}, false},
		{wshmi.Message{ServerID: "pro1003", DeviceID: 2}, false},
	}
	for _, tt := range tests {
		if got := srv.addressed(tt.msg); got != tt.want {
			t.Errorf("addressed(%+v) = %v, want %v", tt.msg, got, tt.want)
		}
	}
}
