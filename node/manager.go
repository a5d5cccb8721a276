// Package node implements the per-node supervisor (Manager) and its
// external-facing handle, the two halves of one node's lifetime: the
// Manager owns the stream connection and all mutable node state; the
// Handle is what callers and the fleet registry hold onto.
package node

import (
	"context"
	"fmt"

	"github.com/Deivu/Anchorage/logging"
	"github.com/Deivu/Anchorage/model"
	"github.com/Deivu/Anchorage/rest"
	"github.com/Deivu/Anchorage/transport"
)

// Manager is the per-node supervisor task. It owns node runtime state and
// serializes all mutation of it through its own command channel; the
// request/response client is the only collaborator allowed to read state
// (session_id) outside the manager loop, and does so through a lock.
type Manager struct {
	name           string
	auth           string
	userID         uint64
	url            string
	userAgent      string
	reconnectTries int

	sessionID     *model.SharedSessionID
	subscriptions *model.SubscriptionMap

	statistics        *model.Stats
	penalty           float64
	destroyed         bool
	reconnectAttempts int

	commands chan command
	stream   <-chan transport.StreamResult
	conn     *transport.Connection

	sleep  sleepFunc
	logger logging.Logger
}

func newManager(opts ManagerOptions) (*Manager, *rest.Client) {
	sessionID := model.NewSharedSessionID()
	subscriptions := model.NewSubscriptionMap()
	conn, stream := transport.NewConnection()

	streamURL := fmt.Sprintf("ws://%s:%d/v4/websocket", opts.Descriptor.Host, opts.Descriptor.Port)
	baseURL := fmt.Sprintf("http://%s:%d/v4", opts.Descriptor.Host, opts.Descriptor.Port)

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewLoggerWithService("anchorage")
	}

	m := &Manager{
		name:           opts.Descriptor.Name,
		auth:           opts.Descriptor.Auth,
		userID:         opts.Descriptor.UserID,
		url:            streamURL,
		userAgent:      opts.UserAgent,
		reconnectTries: opts.ReconnectTries,
		sessionID:      sessionID,
		subscriptions:  subscriptions,
		commands:       make(chan command, 64),
		stream:         stream,
		conn:           conn,
		sleep:          contextSleep,
		logger:         logger,
	}

	restClient := rest.NewClient(rest.Config{
		BaseURL:    baseURL,
		Auth:       opts.Descriptor.Auth,
		UserAgent:  opts.UserAgent,
		HTTPClient: opts.HTTPClient,
		SessionID:  sessionID,
		Logger:     logger,
	})

	return m, restClient
}

// Run is the manager's main loop: it merges the command and stream
// channels in a single select so neither source can starve the other,
// and blocks on an in-progress reconnect so queued commands wait behind
// it rather than racing it. It returns non-nil when a mid-stream
// reconnect fails (retries exhausted, a fatal condition for this manager)
// or when ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	defer m.subscriptions.BroadcastDestroyedAndClear()

	for !m.destroyed {
		select {
		case cmd := <-m.commands:
			m.handleCommand(ctx, cmd)
		case res := <-m.stream:
			if err := m.handleStreamResult(ctx, res); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (m *Manager) handleCommand(ctx context.Context, cmd command) {
	switch c := cmd.(type) {
	case connectCommand:
		c.reply <- m.reconnect(ctx)
	case disconnectCommand:
		m.teardownConnection()
		c.reply <- struct{}{}
	case destroyCommand:
		m.teardownConnection()
		m.destroyed = true
		c.reply <- struct{}{}
	case getDataCommand:
		c.reply <- m.snapshot()
	}
}

func (m *Manager) teardownConnection() {
	m.conn.Disconnect()
	m.subscriptions.BroadcastDestroyedAndClear()
	m.reconnectAttempts = 0
}

func (m *Manager) snapshot() Snapshot {
	return Snapshot{
		Name:       m.name,
		Auth:       m.auth,
		UserID:     m.userID,
		URL:        m.url,
		Penalty:    m.penalty,
		Statistics: m.statistics,
	}
}

// handleStreamResult dispatches one decoded message or stream error. A
// stream error triggers the reconnect procedure inline, intentionally
// blocking the loop: exhausting retries here is fatal and its error
// return causes Run to exit, letting the registry's watcher tear the
// node down.
func (m *Manager) handleStreamResult(ctx context.Context, res transport.StreamResult) error {
	if res.Err != nil {
		m.logger.WithField("node", m.name).WithError(res.Err).Warn("stream error, reconnecting")
		return m.reconnect(ctx)
	}

	switch msg := res.Message.(type) {
	case model.ReadyMessage:
		m.sessionID.Set(msg.SessionID)
	case model.StatsMessage:
		stats := msg.Stats
		m.statistics = &stats
		m.penalty = computePenalty(stats)
	case model.PlayerUpdateMessage:
		// advisory only; no core state change
	case model.EventMessage:
		guildID := msg.Event.EventGuildID()
		if ch, ok := m.subscriptions.Load(guildID); ok {
			ch.Send(model.PlayerEventEnvelope{Event: msg.Event})
		}
	}
	return nil
}
