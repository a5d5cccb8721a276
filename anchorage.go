// Package anchorage multiplexes application-level interaction with a
// fleet of remote audio-streaming nodes, hiding node count and lifecycle
// behind a fleet registry that routes each tenant to exactly one node.
package anchorage

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/Deivu/Anchorage/logging"
	"github.com/Deivu/Anchorage/model"
	"github.com/Deivu/Anchorage/node"
	"github.com/Deivu/Anchorage/player"
)

// Anchorage is the top-level fleet registry: a concurrent map of nodes by
// name, a load-based selector, a tenant→node lookup, and lifecycle
// fan-out across the fleet.
type Anchorage struct {
	userAgent      string
	reconnectTries int
	httpClient     *http.Client
	logger         logging.Logger

	nodes *nodeTable
}

// New constructs a fleet registry. Call Start to seed it with nodes.
func New(opts Options) *Anchorage {
	opts = opts.withDefaults()
	return &Anchorage{
		userAgent:      opts.UserAgent,
		reconnectTries: opts.ReconnectTries,
		httpClient:     opts.HTTPClient,
		logger:         opts.Logger,
		nodes:          newNodeTable(),
	}
}

// Start constructs a manager and handle for each descriptor, performing
// its first stream connect synchronously so handshake failures surface
// here rather than being silently retried in the background. Descriptor
// order is preserved; a duplicate name is last-writer-wins in the
// registry's map (both managers still run independently to completion).
func (a *Anchorage) Start(ctx context.Context, userID uint64, descriptors []NodeOptions) error {
	for _, d := range descriptors {
		handle, done, err := node.Start(ctx, node.ManagerOptions{
			Descriptor: node.Descriptor{
				Name:   d.Name,
				Host:   d.Host,
				Port:   d.Port,
				Auth:   d.Auth,
				UserID: userID,
			},
			UserAgent:      a.userAgent,
			ReconnectTries: a.reconnectTries,
			HTTPClient:     a.httpClient,
			Logger:         a.logger,
		})
		if err != nil {
			return fmt.Errorf("starting node %q: %w", d.Name, err)
		}

		a.nodes.Store(d.Name, handle)

		go func(name string, done <-chan struct{}) {
			<-done
			a.nodes.Delete(name)
		}(d.Name, done)
	}
	return nil
}

// GetIdealNode fetches every node's current snapshot (concurrently) and
// returns the handle with the true minimum penalty. Ties are broken by
// scan order: the first minimum encountered wins.
func (a *Anchorage) GetIdealNode(ctx context.Context) (node.Handle, error) {
	handles := a.nodes.Snapshot()
	if len(handles) == 0 {
		return node.Handle{}, model.ErrNoNodesAvailable
	}

	snapshots := make([]node.Snapshot, len(handles))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, h := range handles {
		i, h := i, h
		group.Go(func() error {
			snap, err := h.Data(groupCtx)
			if err != nil {
				return err
			}
			snapshots[i] = snap
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return node.Handle{}, err
	}

	best := 0
	for i := 1; i < len(snapshots); i++ {
		if snapshots[i].Penalty < snapshots[best].Penalty {
			best = i
		}
	}
	return handles[best], nil
}

// GetNodeForPlayer scans nodes for one whose subscription map contains
// guildID, returning the first match.
func (a *Anchorage) GetNodeForPlayer(guildID model.GuildID) (node.Handle, bool) {
	var found node.Handle
	var ok bool
	a.nodes.Range(func(_ string, handle node.Handle) bool {
		if handle.Subscriptions().Has(guildID) {
			found, ok = handle, true
			return false
		}
		return true
	})
	return found, ok
}

// CreatePlayer rejects with model.ErrCreateExistingPlayer if guildID is
// already registered on any node. Otherwise it binds a Player to handle,
// attaches the initial voice connection, and only then registers the
// tenant's event subscription — an unregistered subscription never
// becomes visible to GetNodeForPlayer, so a connection failure here
// leaves no dangling registration to clean up.
func (a *Anchorage) CreatePlayer(ctx context.Context, guildID model.GuildID, handle node.Handle, conn player.ConnectionOptions) (*player.Player, <-chan model.SubscriptionEvent, error) {
	if _, exists := a.GetNodeForPlayer(guildID); exists {
		return nil, nil, model.ErrCreateExistingPlayer
	}

	p := player.New(guildID, handle)
	conn.GuildID = guildID
	if _, err := p.UpdateConnection(ctx, conn); err != nil {
		return nil, nil, err
	}

	ch := model.NewEventChannel()
	handle.Subscriptions().Store(guildID, ch)

	return p, ch.Events(), nil
}

// DestroyPlayer locates guildID's owning node (if any), issues
// destroy_player against it, then sends a terminal Destroyed on its
// subscription and removes it. Double-destroy is a no-op.
func (a *Anchorage) DestroyPlayer(ctx context.Context, guildID model.GuildID) error {
	handle, ok := a.GetNodeForPlayer(guildID)
	if !ok {
		return nil
	}

	if err := handle.Rest.DestroyPlayer(ctx, guildID); err != nil {
		return err
	}

	if ch, ok := handle.Subscriptions().Load(guildID); ok {
		ch.Send(model.DestroyedEvent{})
		ch.Close()
	}
	handle.Subscriptions().Delete(guildID)
	return nil
}

// Connect invokes the reconnect procedure on the named node.
func (a *Anchorage) Connect(ctx context.Context, name string) error {
	handle, ok := a.nodes.Load(name)
	if !ok {
		return fmt.Errorf("anchorage: no node named %q", name)
	}
	return handle.Connect(ctx)
}

// Disconnect closes the named node's stream connection. When destroy is
// true the node is also marked terminal and removed from the registry
// once the manager acknowledges.
func (a *Anchorage) Disconnect(ctx context.Context, name string, destroy bool) error {
	handle, ok := a.nodes.Load(name)
	if !ok {
		return fmt.Errorf("anchorage: no node named %q", name)
	}
	if destroy {
		if err := handle.Destroy(ctx); err != nil {
			return err
		}
		a.nodes.Delete(name)
		return nil
	}
	return handle.Disconnect(ctx)
}
