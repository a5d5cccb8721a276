package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// GuildID is the upstream protocol's tenant identifier. It travels over
// the wire as a decimal string but is used throughout this module as a
// uint64.
type GuildID uint64

func (g GuildID) String() string { return strconv.FormatUint(uint64(g), 10) }

func (g GuildID) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.String())
}

func (g *GuildID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("guildId: %w", err)
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("guildId %q: %w", s, err)
	}
	*g = GuildID(v)
	return nil
}

// FrameStats reports the node's frame-send health since the last stats
// frame.
type FrameStats struct {
	Sent    int `json:"sent"`
	Nulled  int `json:"nulled"`
	Deficit int `json:"deficit"`
}

// Cpu reports the node host's and the node process's CPU load.
type Cpu struct {
	Cores        int     `json:"cores"`
	SystemLoad   float64 `json:"systemLoad"`
	LavalinkLoad float64 `json:"lavalinkLoad"`
}

// Memory reports the node process's memory usage.
type Memory struct {
	Free       int64 `json:"free"`
	Used       int64 `json:"used"`
	Allocated  int64 `json:"allocated"`
	Reservable int64 `json:"reservable"`
}

// Stats is the periodic load snapshot a node publishes on the stream.
type Stats struct {
	Players        int         `json:"players"`
	PlayingPlayers int         `json:"playingPlayers"`
	Uptime         int64       `json:"uptime"`
	Memory         Memory      `json:"memory"`
	Cpu            Cpu         `json:"cpu"`
	FrameStats     *FrameStats `json:"frameStats,omitempty"`
}

// SessionInfo is the body of a session-update request/response.
type SessionInfo struct {
	Resuming bool `json:"resuming"`
	Timeout  int  `json:"timeout"`
}

// FailingAddresses reports route-planner addresses that have failed and
// not yet been cleared.
type FailingAddresses struct {
	FailingAddress     string `json:"failingAddress"`
	FailingTimestamp   int64  `json:"failingTimestamp"`
	FailingTime        string `json:"failingTime"`
}

// IpBlock describes an address block used by a route planner.
type IpBlock struct {
	Type string `json:"type"`
	Size string `json:"size"`
}

// RoutePlannerDetails is the body of a route-planner status response.
type RoutePlannerDetails struct {
	IpBlock           IpBlock            `json:"ipBlock"`
	FailingAddresses  []FailingAddresses `json:"failingAddresses"`
	RotateIndex       string             `json:"rotateIndex,omitempty"`
	IpIndex           string             `json:"ipIndex,omitempty"`
	CurrentAddress    string             `json:"currentAddress,omitempty"`
	CurrentAddressIx  string             `json:"currentAddressIndex,omitempty"`
	BlockIndex        string             `json:"blockIndex,omitempty"`
}

// RoutePlanner is the response of GET /routeplanner/status.
type RoutePlanner struct {
	Class   string              `json:"class"`
	Details RoutePlannerDetails `json:"details"`
}

// NodeVersion is the version block of GET /info.
type NodeVersion struct {
	Semver     string `json:"semver"`
	Major      int    `json:"major"`
	Minor      int    `json:"minor"`
	Patch      int    `json:"patch"`
	PreRelease string `json:"preRelease,omitempty"`
	Build      string `json:"build,omitempty"`
}

// NodeGit is the git block of GET /info.
type NodeGit struct {
	Branch     string `json:"branch"`
	Commit     string `json:"commit"`
	CommitTime int64  `json:"commitTime"`
}

// NodePlugin describes one loaded server plugin.
type NodePlugin struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// NodeInfo is the response of GET /info.
type NodeInfo struct {
	Version        NodeVersion  `json:"version"`
	BuildTime      int64        `json:"buildTime"`
	Git            NodeGit      `json:"git"`
	JVM            string       `json:"jvm"`
	Lavaplayer     string       `json:"lavaplayer"`
	SourceManagers []string     `json:"sourceManagers"`
	Filters        []string     `json:"filters"`
	Plugins        []NodePlugin `json:"plugins"`
}

// Message is any decoded stream frame.
type Message interface {
	isMessage()
}

// ReadyMessage is the first frame a node sends after a successful
// handshake; its SessionID seeds the shared session cell.
type ReadyMessage struct {
	Resumed   bool   `json:"resumed"`
	SessionID string `json:"sessionId"`
}

func (ReadyMessage) isMessage() {}

// PlayerUpdateMessage reports a player's playback position; advisory only.
type PlayerUpdateMessage struct {
	GuildID GuildID           `json:"guildId"`
	State   LavalinkPlayerState `json:"state"`
}

func (PlayerUpdateMessage) isMessage() {}

// StatsMessage carries a periodic Stats snapshot.
type StatsMessage struct {
	Stats
}

func (StatsMessage) isMessage() {}

// EventMessage wraps one decoded player/stream event.
type EventMessage struct {
	Event PlayerEvent
}

func (EventMessage) isMessage() {}

type envelope struct {
	Op string `json:"op"`
}

type eventEnvelope struct {
	Type string `json:"type"`
}

// DecodeMessage discriminates a raw stream frame by its "op" field (and,
// for events, the nested "type" field) and decodes it into the matching
// concrete Message. A nil Message with a nil error indicates a frame this
// module intentionally ignores (unknown op).
func DecodeMessage(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode message envelope: %w", err)
	}

	switch env.Op {
	case "ready":
		var m ReadyMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode ready message: %w", err)
		}
		return m, nil
	case "playerUpdate":
		var m PlayerUpdateMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode playerUpdate message: %w", err)
		}
		return m, nil
	case "stats":
		var m StatsMessage
		if err := json.Unmarshal(data, &m.Stats); err != nil {
			return nil, fmt.Errorf("decode stats message: %w", err)
		}
		return m, nil
	case "event":
		event, err := decodePlayerEvent(data)
		if err != nil {
			return nil, err
		}
		return EventMessage{Event: event}, nil
	default:
		return nil, nil
	}
}

func decodePlayerEvent(data []byte) (PlayerEvent, error) {
	var env eventEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode event envelope: %w", err)
	}

	switch env.Type {
	case "TrackStartEvent":
		var e TrackStartEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decode TrackStartEvent: %w", err)
		}
		return e, nil
	case "TrackEndEvent":
		var e TrackEndEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decode TrackEndEvent: %w", err)
		}
		return e, nil
	case "TrackExceptionEvent":
		var e TrackExceptionEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decode TrackExceptionEvent: %w", err)
		}
		return e, nil
	case "TrackStuckEvent":
		var e TrackStuckEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decode TrackStuckEvent: %w", err)
		}
		return e, nil
	case "WebSocketClosedEvent":
		var e WebSocketClosedEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decode WebSocketClosedEvent: %w", err)
		}
		return e, nil
	default:
		return nil, fmt.Errorf("decode event: unknown type %q", env.Type)
	}
}
