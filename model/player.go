package model

import "encoding/json"

// Severity classifies how badly a track exception affected playback.
type Severity string

const (
	SeverityCommon  Severity = "common"
	SeveritySuspicious Severity = "suspicious"
	SeverityFault   Severity = "fault"
)

// LoadType discriminates the result of a resolve (loadtracks) call.
type LoadType string

const (
	LoadTypeTrack    LoadType = "track"
	LoadTypePlaylist LoadType = "playlist"
	LoadTypeSearch   LoadType = "search"
	LoadTypeEmpty    LoadType = "empty"
	LoadTypeError    LoadType = "error"
)

// TrackInfo is the metadata block of a Track.
type TrackInfo struct {
	Identifier string `json:"identifier"`
	IsSeekable bool   `json:"isSeekable"`
	Author     string `json:"author"`
	Length     int64  `json:"length"`
	IsStream   bool   `json:"isStream"`
	Position   int64  `json:"position"`
	Title      string `json:"title"`
	URI        string `json:"uri,omitempty"`
	SourceName string `json:"sourceName"`
	ArtworkURL string `json:"artworkUrl,omitempty"`
	ISRC       string `json:"isrc,omitempty"`
}

// Track is one playable unit as reported by a node.
type Track struct {
	Encoded    string          `json:"encoded"`
	Info       TrackInfo       `json:"info"`
	PluginInfo json.RawMessage `json:"pluginInfo,omitempty"`
	UserData   json.RawMessage `json:"userData,omitempty"`
}

// PlaylistInfo describes a resolved playlist's shape.
type PlaylistInfo struct {
	Name          string `json:"name"`
	SelectedTrack int    `json:"selectedTrack"`
}

// TrackPlaylist is the data payload of a playlist load result.
type TrackPlaylist struct {
	Info    PlaylistInfo    `json:"info"`
	Tracks  []Track         `json:"tracks"`
	Plugin  json.RawMessage `json:"pluginInfo,omitempty"`
}

// TrackLoadException is the data payload of an error load result.
type TrackLoadException struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Cause    string   `json:"cause"`
}

// LoadResult is the response of the resolve (loadtracks) operation. Only
// the field matching LoadType is populated.
type LoadResult struct {
	LoadType LoadType            `json:"loadType"`
	Track    *Track              `json:"-"`
	Playlist *TrackPlaylist      `json:"-"`
	Search   []Track             `json:"-"`
	Error    *TrackLoadException `json:"-"`
}

// UnmarshalJSON decodes a LoadResult's "data" field according to its
// "loadType" discriminator.
func (r *LoadResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		LoadType LoadType        `json:"loadType"`
		Data     json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.LoadType = raw.LoadType
	switch raw.LoadType {
	case LoadTypeTrack:
		var t Track
		if len(raw.Data) > 0 {
			if err := json.Unmarshal(raw.Data, &t); err != nil {
				return err
			}
		}
		r.Track = &t
	case LoadTypePlaylist:
		var p TrackPlaylist
		if len(raw.Data) > 0 {
			if err := json.Unmarshal(raw.Data, &p); err != nil {
				return err
			}
		}
		r.Playlist = &p
	case LoadTypeSearch:
		var s []Track
		if len(raw.Data) > 0 {
			if err := json.Unmarshal(raw.Data, &s); err != nil {
				return err
			}
		}
		r.Search = s
	case LoadTypeError:
		var e TrackLoadException
		if len(raw.Data) > 0 {
			if err := json.Unmarshal(raw.Data, &e); err != nil {
				return err
			}
		}
		r.Error = &e
	}
	return nil
}

// Equalizer is one band of the equalizer filter.
type Equalizer struct {
	Band uint8   `json:"band"`
	Gain float64 `json:"gain"`
}

type Karaoke struct {
	Level       *float64 `json:"level,omitempty"`
	MonoLevel   *float64 `json:"monoLevel,omitempty"`
	FilterBand  *float64 `json:"filterBand,omitempty"`
	FilterWidth *float64 `json:"filterWidth,omitempty"`
}

type Timescale struct {
	Speed *float64 `json:"speed,omitempty"`
	Pitch *float64 `json:"pitch,omitempty"`
	Rate  *float64 `json:"rate,omitempty"`
}

type Tremolo struct {
	Frequency *float64 `json:"frequency,omitempty"`
	Depth     *float64 `json:"depth,omitempty"`
}

type Vibrato struct {
	Frequency *float64 `json:"frequency,omitempty"`
	Depth     *float64 `json:"depth,omitempty"`
}

type Rotation struct {
	RotationHz *float64 `json:"rotationHz,omitempty"`
}

type Distortion struct {
	SinOffset *float64 `json:"sinOffset,omitempty"`
	SinScale  *float64 `json:"sinScale,omitempty"`
	CosOffset *float64 `json:"cosOffset,omitempty"`
	CosScale  *float64 `json:"cosScale,omitempty"`
	TanOffset *float64 `json:"tanOffset,omitempty"`
	TanScale  *float64 `json:"tanScale,omitempty"`
	Offset    *float64 `json:"offset,omitempty"`
	Scale     *float64 `json:"scale,omitempty"`
}

type ChannelMix struct {
	LeftToLeft   *float64 `json:"leftToLeft,omitempty"`
	LeftToRight  *float64 `json:"leftToRight,omitempty"`
	RightToLeft  *float64 `json:"rightToLeft,omitempty"`
	RightToRight *float64 `json:"rightToRight,omitempty"`
}

type LowPass struct {
	Smoothing *float64 `json:"smoothing,omitempty"`
}

// Filters is the mutable set of audio filters applied to a player. Every
// field is optional; an unset field is omitted from the encoded JSON.
type Filters struct {
	Volume       *float64        `json:"volume,omitempty"`
	Equalizer    []Equalizer     `json:"equalizer,omitempty"`
	Karaoke      *Karaoke        `json:"karaoke,omitempty"`
	Timescale    *Timescale      `json:"timescale,omitempty"`
	Tremolo      *Tremolo        `json:"tremolo,omitempty"`
	Vibrato      *Vibrato        `json:"vibrato,omitempty"`
	Rotation     *Rotation       `json:"rotation,omitempty"`
	Distortion   *Distortion     `json:"distortion,omitempty"`
	ChannelMix   *ChannelMix     `json:"channelMix,omitempty"`
	LowPass      *LowPass        `json:"lowPass,omitempty"`
	PluginFilters json.RawMessage `json:"pluginFilters,omitempty"`
}

// Merge returns the result of layering newer on top of f: every field
// newer sets (non-nil, even an empty slice) wins, every field newer leaves unset
// keeps f's value. This is the documented upstream merge rule (new field
// wins when present, existing preserved otherwise).
func (f Filters) Merge(newer Filters) Filters {
	result := f
	if newer.Volume != nil {
		result.Volume = newer.Volume
	}
	if newer.Equalizer != nil {
		result.Equalizer = newer.Equalizer
	}
	if newer.Karaoke != nil {
		result.Karaoke = newer.Karaoke
	}
	if newer.Timescale != nil {
		result.Timescale = newer.Timescale
	}
	if newer.Tremolo != nil {
		result.Tremolo = newer.Tremolo
	}
	if newer.Vibrato != nil {
		result.Vibrato = newer.Vibrato
	}
	if newer.Rotation != nil {
		result.Rotation = newer.Rotation
	}
	if newer.Distortion != nil {
		result.Distortion = newer.Distortion
	}
	if newer.ChannelMix != nil {
		result.ChannelMix = newer.ChannelMix
	}
	if newer.LowPass != nil {
		result.LowPass = newer.LowPass
	}
	if newer.PluginFilters != nil {
		result.PluginFilters = newer.PluginFilters
	}
	return result
}

// Voice is the voice-gateway credential block submitted to attach or
// update a player's voice connection.
type Voice struct {
	Token     string `json:"token"`
	Endpoint  string `json:"endpoint"`
	SessionID string `json:"sessionId"`
	Connected *bool  `json:"connected,omitempty"`
	Ping      *int   `json:"ping,omitempty"`
}

// LavalinkPlayerState is the playback position/connectivity snapshot
// carried on PlayerUpdate messages and player snapshots.
type LavalinkPlayerState struct {
	Time      int64 `json:"time"`
	Position  int64 `json:"position"`
	Connected bool  `json:"connected"`
	Ping      int   `json:"ping"`
}

// Player is a point-in-time snapshot of a remote player's state.
type Player struct {
	GuildID GuildID             `json:"guildId"`
	Track   *Track              `json:"track"`
	Volume  int                 `json:"volume"`
	Paused  bool                `json:"paused"`
	State   LavalinkPlayerState `json:"state"`
	Voice   Voice               `json:"voice"`
	Filters Filters             `json:"filters"`
}

// UpdatePlayerTrack carries the tri-state "encoded" field used by the
// update_player operation: the field may be omitted (untouched), present
// with a null value (clear), or present with a string (set).
type UpdatePlayerTrack struct {
	Encoded    *json.RawMessage `json:"encoded,omitempty"`
	Identifier *string          `json:"identifier,omitempty"`
	UserData   json.RawMessage `json:"userData,omitempty"`
}

func rawString(s string) *json.RawMessage {
	b, _ := json.Marshal(s)
	raw := json.RawMessage(b)
	return &raw
}

func rawNull() *json.RawMessage {
	raw := json.RawMessage("null")
	return &raw
}

// SetTrack marks the track as set to the given encoded string.
func (t *UpdatePlayerTrack) SetTrack(encoded string) { t.Encoded = rawString(encoded) }

// ClearTrack marks the track as explicitly cleared (JSON null, not
// omitted).
func (t *UpdatePlayerTrack) ClearTrack() { t.Encoded = rawNull() }

// PlayerUpdateOptions is the PATCH body of update_player. All fields are
// optional; an absent field leaves the corresponding remote state
// untouched.
type PlayerUpdateOptions struct {
	Track     *UpdatePlayerTrack `json:"track,omitempty"`
	Position  *int64             `json:"position,omitempty"`
	EndTime   *int64             `json:"endTime,omitempty"`
	Volume    *int               `json:"volume,omitempty"`
	Paused    *bool              `json:"paused,omitempty"`
	Filters   *Filters           `json:"filters,omitempty"`
	Voice     *Voice             `json:"voice,omitempty"`
}

// Exception is the error detail carried by TrackExceptionEvent.
type Exception struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Cause    string   `json:"cause"`
}

// PlayerEvent is any tenant-addressed event delivered on a subscription.
type PlayerEvent interface {
	EventGuildID() GuildID
	isPlayerEvent()
}

type TrackStartEvent struct {
	GuildID GuildID `json:"guildId"`
	Track   Track   `json:"track"`
}

func (e TrackStartEvent) EventGuildID() GuildID { return e.GuildID }
func (TrackStartEvent) isPlayerEvent()          {}

type TrackEndEvent struct {
	GuildID GuildID `json:"guildId"`
	Track   Track   `json:"track"`
	Reason  string  `json:"reason"`
}

func (e TrackEndEvent) EventGuildID() GuildID { return e.GuildID }
func (TrackEndEvent) isPlayerEvent()          {}

type TrackExceptionEvent struct {
	GuildID   GuildID   `json:"guildId"`
	Track     Track     `json:"track"`
	Exception Exception `json:"exception"`
}

func (e TrackExceptionEvent) EventGuildID() GuildID { return e.GuildID }
func (TrackExceptionEvent) isPlayerEvent()          {}

type TrackStuckEvent struct {
	GuildID     GuildID `json:"guildId"`
	Track       Track   `json:"track"`
	ThresholdMs int64   `json:"thresholdMs"`
}

func (e TrackStuckEvent) EventGuildID() GuildID { return e.GuildID }
func (TrackStuckEvent) isPlayerEvent()          {}

type WebSocketClosedEvent struct {
	GuildID GuildID `json:"guildId"`
	Code    int     `json:"code"`
	Reason  string  `json:"reason"`
	ByRemote bool   `json:"byRemote"`
}

func (e WebSocketClosedEvent) EventGuildID() GuildID { return e.GuildID }
func (WebSocketClosedEvent) isPlayerEvent()          {}
