package player

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Deivu/Anchorage/model"
	"github.com/Deivu/Anchorage/node"
	"github.com/Deivu/Anchorage/rest"
)

func float64Ptr(f float64) *float64 { return &f }

func newTestPlayer(t *testing.T, handler http.HandlerFunc) *Player {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sessionID := model.NewSharedSessionID()
	sessionID.Set("s1")

	client := rest.NewClient(rest.Config{
		BaseURL:   srv.URL,
		Auth:      "secret",
		UserAgent: "test-agent",
		SessionID: sessionID,
	})

	return New(model.GuildID(7), node.Handle{Rest: client})
}

// UpdateFilters fetches the current filters, merges the submitted ones
// on top, and the body the backend receives reflects that merge.
func TestUpdateFiltersMergeRoundTrip(t *testing.T) {
	var receivedBody model.PlayerUpdateOptions

	p := newTestPlayer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodGet {
			json.NewEncoder(w).Encode(model.Player{
				GuildID: 7,
				Filters: model.Filters{
					Volume:  float64Ptr(1.0),
					Karaoke: &model.Karaoke{Level: float64Ptr(0.5)},
				},
			})
			return
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &receivedBody)
		json.NewEncoder(w).Encode(model.Player{GuildID: 7})
	})

	_, err := p.UpdateFilters(context.Background(), model.Filters{
		Timescale: &model.Timescale{Speed: float64Ptr(1.2)},
	})
	if err != nil {
		t.Fatalf("update filters: %v", err)
	}

	filters := receivedBody.Filters
	if filters == nil {
		t.Fatalf("expected filters submitted")
	}
	if filters.Volume == nil || *filters.Volume != 1.0 {
		t.Fatalf("expected preserved volume 1.0, got %v", filters.Volume)
	}
	if filters.Karaoke == nil || filters.Karaoke.Level == nil || *filters.Karaoke.Level != 0.5 {
		t.Fatalf("expected preserved karaoke, got %v", filters.Karaoke)
	}
	if filters.Timescale == nil || filters.Timescale.Speed == nil || *filters.Timescale.Speed != 1.2 {
		t.Fatalf("expected new timescale, got %v", filters.Timescale)
	}
}

func TestStopSendsExplicitNullEncoded(t *testing.T) {
	var gotRaw map[string]json.RawMessage

	p := newTestPlayer(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotRaw)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(model.Player{GuildID: 7})
	})

	if _, err := p.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}

	var track map[string]json.RawMessage
	if err := json.Unmarshal(gotRaw["track"], &track); err != nil {
		t.Fatalf("unmarshal track: %v", err)
	}
	if string(track["encoded"]) != "null" {
		t.Fatalf("got encoded %s, want explicit null", track["encoded"])
	}
}

func TestPauseTogglesState(t *testing.T) {
	var gotPaused *bool
	paused := false

	p := newTestPlayer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodGet {
			json.NewEncoder(w).Encode(model.Player{GuildID: 7, Paused: paused})
			return
		}
		var body model.PlayerUpdateOptions
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &body)
		gotPaused = body.Paused
		json.NewEncoder(w).Encode(model.Player{GuildID: 7, Paused: *body.Paused})
	})

	if _, err := p.Pause(context.Background()); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if gotPaused == nil || *gotPaused != true {
		t.Fatalf("expected paused toggled to true, got %v", gotPaused)
	}
}

func TestDestroyDoesNotTouchSubscriptions(t *testing.T) {
	p := newTestPlayer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Fatalf("expected DELETE, got %s", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	if err := p.Destroy(context.Background()); err != nil {
		t.Fatalf("destroy: %v", err)
	}
}
