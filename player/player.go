// Package player implements the tenant-facing facade bound to a single
// node: a thin object whose correctness depends entirely on single-owner
// routing and the fleet registry's event-stream delivery, not on any
// state of its own.
package player

import (
	"context"

	"github.com/Deivu/Anchorage/model"
	"github.com/Deivu/Anchorage/node"
)

// ConnectionOptions carries the voice-gateway credentials used to attach
// or update a player's voice connection. ChannelID and UserID are kept
// for the caller's own bookkeeping (e.g. tracking which voice channel a
// guild is in); only Endpoint/SessionID/Token are sent to the node.
type ConnectionOptions struct {
	ChannelID *uint64
	Endpoint  string
	GuildID   model.GuildID
	SessionID string
	Token     string
	UserID    uint64
}

// Player is a value object bound to (tenant-id, node handle). It holds no
// state of its own beyond that binding; every operation is a delegation
// to the bound node's request/response client.
type Player struct {
	GuildID model.GuildID
	node    node.Handle
}

// New binds a Player to guildID on node. It does not touch the node's
// subscription map; registering and clearing subscriptions is the fleet
// registry's responsibility.
func New(guildID model.GuildID, handle node.Handle) *Player {
	return &Player{GuildID: guildID, node: handle}
}

// Data fetches the current remote snapshot of this player.
func (p *Player) Data(ctx context.Context) (*model.Player, error) {
	return p.node.Rest.GetPlayer(ctx, p.GuildID)
}

func (p *Player) submit(ctx context.Context, update model.PlayerUpdateOptions) (*model.Player, error) {
	return p.node.Rest.UpdatePlayer(ctx, p.GuildID, false, update)
}

// Play submits encoded as the player's current track.
func (p *Player) Play(ctx context.Context, encoded string) (*model.Player, error) {
	track := &model.UpdatePlayerTrack{}
	track.SetTrack(encoded)
	return p.submit(ctx, model.PlayerUpdateOptions{Track: track})
}

// Stop clears the player's current track. Per the upstream protocol this
// must be an explicit JSON null, not an omitted field, to distinguish
// "clear" from "untouched."
func (p *Player) Stop(ctx context.Context) (*model.Player, error) {
	track := &model.UpdatePlayerTrack{}
	track.ClearTrack()
	return p.submit(ctx, model.PlayerUpdateOptions{Track: track})
}

// Pause fetches the current snapshot, toggles Paused, and submits the
// result.
func (p *Player) Pause(ctx context.Context) (*model.Player, error) {
	current, err := p.Data(ctx)
	if err != nil {
		return nil, err
	}
	paused := !current.Paused
	return p.submit(ctx, model.PlayerUpdateOptions{Paused: &paused})
}

// UpdateVolume submits a new player volume.
func (p *Player) UpdateVolume(ctx context.Context, volume int) (*model.Player, error) {
	return p.submit(ctx, model.PlayerUpdateOptions{Volume: &volume})
}

// UpdatePosition submits a new playback position in milliseconds.
func (p *Player) UpdatePosition(ctx context.Context, position int64) (*model.Player, error) {
	return p.submit(ctx, model.PlayerUpdateOptions{Position: &position})
}

// UpdateFilters fetches the current filters, merges newFilters on top
// (new field value wins when present, existing preserved otherwise), and
// submits the merged result.
func (p *Player) UpdateFilters(ctx context.Context, newFilters model.Filters) (*model.Player, error) {
	current, err := p.Data(ctx)
	if err != nil {
		return nil, err
	}
	merged := current.Filters.Merge(newFilters)
	return p.submit(ctx, model.PlayerUpdateOptions{Filters: &merged})
}

// ClearFilters submits an empty filter set, clearing every filter.
func (p *Player) ClearFilters(ctx context.Context) (*model.Player, error) {
	empty := model.Filters{}
	return p.submit(ctx, model.PlayerUpdateOptions{Filters: &empty})
}

// UpdateConnection attaches or updates the player's voice connection.
func (p *Player) UpdateConnection(ctx context.Context, conn ConnectionOptions) (*model.Player, error) {
	voice := &model.Voice{
		Token:     conn.Token,
		Endpoint:  conn.Endpoint,
		SessionID: conn.SessionID,
	}
	return p.submit(ctx, model.PlayerUpdateOptions{Voice: voice})
}

// Destroy issues destroy_player against the bound node. It does not
// remove the tenant's event subscription; that remains the fleet
// registry's responsibility.
func (p *Player) Destroy(ctx context.Context) error {
	return p.node.Rest.DestroyPlayer(ctx, p.GuildID)
}
