package node

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// sleepFunc is the injectable backoff delay, so tests can virtualize the
// reconnect loop's waits instead of actually sleeping.
type sleepFunc func(ctx context.Context, d time.Duration) error

func contextSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

const reconnectBackoff = 5 * time.Second

// reconnect drives up to reconnectTries connect attempts. If the stream
// is already available it short-circuits to success. Each failed attempt
// sleeps a fixed backoff before the next, except the last, whose failure
// resets the attempt counter and is returned as-is.
func (m *Manager) reconnect(ctx context.Context) error {
	if m.conn.Available() {
		return nil
	}

	for {
		header := m.buildHandshakeHeader()
		m.reconnectAttempts++

		err := m.conn.Connect(ctx, m.url, header)
		if err == nil {
			m.reconnectAttempts = 0
			return nil
		}

		if m.reconnectAttempts < m.reconnectTries {
			if sleepErr := m.sleep(ctx, reconnectBackoff); sleepErr != nil {
				return sleepErr
			}
			continue
		}

		m.reconnectAttempts = 0
		return err
	}
}

func (m *Manager) buildHandshakeHeader() http.Header {
	header := http.Header{}
	header.Set("User-Id", strconv.FormatUint(m.userID, 10))
	header.Set("Authorization", m.auth)
	sessionID, _ := m.sessionID.Get()
	header.Set("Session-Id", sessionID)
	header.Set("Client-Name", m.userAgent)
	header.Set("User-Agent", m.userAgent)
	header.Set("X-Nonce", uuid.NewString())
	return header
}
