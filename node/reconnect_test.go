package node

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Deivu/Anchorage/logging"
	"github.com/Deivu/Anchorage/model"
)

// With reconnect_tries=2 and a handshake that always fails, reconnect
// makes exactly one backoff sleep (between attempts 1 and 2) and
// returns the transport error on exhaustion, without ever sleeping for
// real.
func TestReconnectExhaustionVirtualizedTime(t *testing.T) {
	m, _ := newManager(ManagerOptions{
		Descriptor:     Descriptor{Name: "n1", Host: "127.0.0.1", Port: 1, Auth: "secret", UserID: 1},
		UserAgent:      "test-agent",
		ReconnectTries: 2,
		Logger:         logging.NewLoggerWithService("anchorage-test"),
	})

	var sleeps []time.Duration
	m.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}

	err := m.reconnect(context.Background())
	if err == nil {
		t.Fatalf("expected reconnect to fail dialing an unreachable node")
	}

	var transportErr *model.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("got %T, want *model.TransportError", err)
	}
	if len(sleeps) != 1 {
		t.Fatalf("expected exactly one backoff sleep for reconnect_tries=2, got %d", len(sleeps))
	}
	if sleeps[0] != reconnectBackoff {
		t.Fatalf("got backoff %v, want %v", sleeps[0], reconnectBackoff)
	}
	if m.reconnectAttempts != 0 {
		t.Fatalf("expected attempt counter reset after exhaustion, got %d", m.reconnectAttempts)
	}
}

func TestReconnectAbortsOnContextCancel(t *testing.T) {
	m, _ := newManager(ManagerOptions{
		Descriptor:     Descriptor{Name: "n1", Host: "127.0.0.1", Port: 1, Auth: "secret", UserID: 1},
		ReconnectTries: 5,
		Logger:         logging.NewLoggerWithService("anchorage-test"),
	})

	ctx, cancel := context.WithCancel(context.Background())
	m.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	err := m.reconnect(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}
