package model

import (
	"encoding/json"
	"testing"
)

func float64Ptr(f float64) *float64 { return &f }

// Merging a partial filter update onto an existing one keeps fields the
// update omits and overwrites only the fields it sets.
func TestFiltersMergeKeepsOmittedFields(t *testing.T) {
	existing := Filters{
		Volume:  float64Ptr(1.0),
		Karaoke: &Karaoke{Level: float64Ptr(0.5)},
	}
	update := Filters{
		Timescale: &Timescale{Speed: float64Ptr(1.2)},
	}

	merged := existing.Merge(update)

	if merged.Volume == nil || *merged.Volume != 1.0 {
		t.Fatalf("expected volume preserved at 1.0, got %v", merged.Volume)
	}
	if merged.Karaoke == nil || merged.Karaoke.Level == nil || *merged.Karaoke.Level != 0.5 {
		t.Fatalf("expected karaoke preserved, got %v", merged.Karaoke)
	}
	if merged.Timescale == nil || merged.Timescale.Speed == nil || *merged.Timescale.Speed != 1.2 {
		t.Fatalf("expected timescale set from update, got %v", merged.Timescale)
	}
}

func TestFiltersMergeNewOverridesOld(t *testing.T) {
	existing := Filters{Volume: float64Ptr(1.0)}
	update := Filters{Volume: float64Ptr(0.5)}

	merged := existing.Merge(update)

	if merged.Volume == nil || *merged.Volume != 0.5 {
		t.Fatalf("expected new volume 0.5 to win, got %v", merged.Volume)
	}
}

func TestUpdatePlayerTrackTriState(t *testing.T) {
	t.Run("untouched", func(t *testing.T) {
		update := PlayerUpdateOptions{}
		data, err := json.Marshal(update)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var out map[string]any
		if err := json.Unmarshal(data, &out); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if _, present := out["track"]; present {
			t.Fatalf("expected no track field when untouched, got %v", out)
		}
	})

	t.Run("set", func(t *testing.T) {
		track := &UpdatePlayerTrack{}
		track.SetTrack("abc123")
		update := PlayerUpdateOptions{Track: track}
		data, err := json.Marshal(update)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var out struct {
			Track struct {
				Encoded string `json:"encoded"`
			} `json:"track"`
		}
		if err := json.Unmarshal(data, &out); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if out.Track.Encoded != "abc123" {
			t.Fatalf("got encoded %q, want abc123", out.Track.Encoded)
		}
	})

	t.Run("cleared", func(t *testing.T) {
		track := &UpdatePlayerTrack{}
		track.ClearTrack()
		update := PlayerUpdateOptions{Track: track}
		data, err := json.Marshal(update)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var out map[string]json.RawMessage
		if err := json.Unmarshal(data, &out); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		var trackFields map[string]json.RawMessage
		if err := json.Unmarshal(out["track"], &trackFields); err != nil {
			t.Fatalf("unmarshal track: %v", err)
		}
		if string(trackFields["encoded"]) != "null" {
			t.Fatalf("got encoded %s, want explicit null", trackFields["encoded"])
		}
	})
}
