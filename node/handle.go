package node

import (
	"context"

	"github.com/Deivu/Anchorage/model"
	"github.com/Deivu/Anchorage/rest"
)

// Handle is the clone-able, external-facing reference to a running
// Manager. Copying a Handle never copies state: every field is a channel
// or pointer shared with the manager it was built from.
type Handle struct {
	Name string
	Rest *rest.Client

	subscriptions *model.SubscriptionMap
	commands      chan command
	done          <-chan struct{}
}

// Subscriptions exposes the node's subscription map for the fleet
// registry's tenant→node lookup.
func (h Handle) Subscriptions() *model.SubscriptionMap { return h.subscriptions }

// Start constructs a Manager for opts and performs its first connect
// synchronously, so handshake failures surface to the caller instead of
// being silently retried in the background. On success it spawns the
// manager's run loop and returns a Handle plus a channel closed when the
// manager exits.
func Start(ctx context.Context, opts ManagerOptions) (Handle, <-chan struct{}, error) {
	m, restClient := newManager(opts)
	if err := m.reconnect(ctx); err != nil {
		return Handle{}, nil, err
	}

	done := make(chan struct{})
	handle := Handle{
		Name:          m.name,
		Rest:          restClient,
		subscriptions: m.subscriptions,
		commands:      m.commands,
		done:          done,
	}

	go func() {
		defer close(done)
		if err := m.Run(ctx); err != nil {
			m.logger.WithField("node", m.name).WithError(err).Warn("node manager exited")
		}
	}()

	return handle, done, nil
}

// Connect invokes the reconnect procedure on the owning manager and
// returns its result.
func (h Handle) Connect(ctx context.Context) error {
	reply := make(chan error, 1)
	if err := h.sendCommand(ctx, connectCommand{reply: reply}); err != nil {
		return err
	}
	select {
	case err := <-reply:
		return err
	case <-h.done:
		return model.ErrChannelRecv
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Disconnect closes the stream connection and clears all of the node's
// subscriptions (each receiving a terminal Destroyed first).
func (h Handle) Disconnect(ctx context.Context) error {
	reply := make(chan struct{}, 1)
	if err := h.sendCommand(ctx, disconnectCommand{reply: reply}); err != nil {
		return err
	}
	select {
	case <-reply:
		return nil
	case <-h.done:
		return model.ErrChannelRecv
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Destroy disconnects and marks the manager terminal; it exits its run
// loop shortly after acknowledging.
func (h Handle) Destroy(ctx context.Context) error {
	reply := make(chan struct{}, 1)
	if err := h.sendCommand(ctx, destroyCommand{reply: reply}); err != nil {
		return err
	}
	select {
	case <-reply:
		return nil
	case <-h.done:
		return model.ErrChannelRecv
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Data returns a snapshot of the node's current runtime state.
func (h Handle) Data(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	if err := h.sendCommand(ctx, getDataCommand{reply: reply}); err != nil {
		return Snapshot{}, err
	}
	select {
	case snap := <-reply:
		return snap, nil
	case <-h.done:
		return Snapshot{}, model.ErrChannelRecv
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

func (h Handle) sendCommand(ctx context.Context, cmd command) error {
	select {
	case h.commands <- cmd:
		return nil
	case <-h.done:
		return model.ErrChannelSend
	case <-ctx.Done():
		return ctx.Err()
	}
}
