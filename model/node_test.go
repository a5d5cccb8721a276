package model

import (
	"encoding/json"
	"testing"
)

func TestGuildIDUnmarshalJSON(t *testing.T) {
	var g GuildID
	if err := json.Unmarshal([]byte(`"123456789"`), &g); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if g != 123456789 {
		t.Fatalf("got %d, want 123456789", g)
	}
}

func TestGuildIDMarshalJSON(t *testing.T) {
	g := GuildID(42)
	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"42"` {
		t.Fatalf("got %s, want \"42\"", data)
	}
}

func TestGuildIDUnmarshalJSONInvalid(t *testing.T) {
	var g GuildID
	if err := json.Unmarshal([]byte(`"not-a-number"`), &g); err == nil {
		t.Fatalf("expected error for non-numeric guildId")
	}
}

// Every event variant parses and its guildId decimal string decodes to
// the right uint64.
func TestDecodeMessageEvents(t *testing.T) {
	cases := []struct {
		name string
		json string
		want GuildID
	}{
		{
			name: "TrackStartEvent",
			json: `{"op":"event","type":"TrackStartEvent","guildId":"1","track":{"encoded":"abc","info":{}}}`,
			want: 1,
		},
		{
			name: "TrackEndEvent",
			json: `{"op":"event","type":"TrackEndEvent","guildId":"2","track":{"encoded":"abc","info":{}},"reason":"finished"}`,
			want: 2,
		},
		{
			name: "TrackExceptionEvent",
			json: `{"op":"event","type":"TrackExceptionEvent","guildId":"3","track":{"encoded":"abc","info":{}},"exception":{"message":"oops","severity":"common","cause":"x"}}`,
			want: 3,
		},
		{
			name: "TrackStuckEvent",
			json: `{"op":"event","type":"TrackStuckEvent","guildId":"4","track":{"encoded":"abc","info":{}},"thresholdMs":1000}`,
			want: 4,
		},
		{
			name: "WebSocketClosedEvent",
			json: `{"op":"event","type":"WebSocketClosedEvent","guildId":"5","code":1000,"reason":"normal","byRemote":true}`,
			want: 5,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			msg, err := DecodeMessage([]byte(c.json))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			eventMsg, ok := msg.(EventMessage)
			if !ok {
				t.Fatalf("got %T, want EventMessage", msg)
			}
			if eventMsg.Event.EventGuildID() != c.want {
				t.Fatalf("got guildId %d, want %d", eventMsg.Event.EventGuildID(), c.want)
			}
		})
	}
}

func TestDecodeMessageReady(t *testing.T) {
	msg, err := DecodeMessage([]byte(`{"op":"ready","resumed":false,"sessionId":"s1"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	ready, ok := msg.(ReadyMessage)
	if !ok {
		t.Fatalf("got %T, want ReadyMessage", msg)
	}
	if ready.SessionID != "s1" {
		t.Fatalf("got session id %q, want s1", ready.SessionID)
	}
}

func TestDecodeMessageStats(t *testing.T) {
	msg, err := DecodeMessage([]byte(`{"op":"stats","players":5,"playingPlayers":2,"uptime":100,"memory":{},"cpu":{"cores":4,"systemLoad":0.1,"lavalinkLoad":0.05}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	stats, ok := msg.(StatsMessage)
	if !ok {
		t.Fatalf("got %T, want StatsMessage", msg)
	}
	if stats.Players != 5 {
		t.Fatalf("got players %d, want 5", stats.Players)
	}
}

func TestDecodeMessageUnknownOp(t *testing.T) {
	msg, err := DecodeMessage([]byte(`{"op":"somethingUnknown"}`))
	if err != nil {
		t.Fatalf("expected no error for unknown op, got %v", err)
	}
	if msg != nil {
		t.Fatalf("expected nil message for unknown op, got %v", msg)
	}
}
