package middleware

import (
	"strings"
	"testing"

	"github.com/abdelhak4/NashidRoom-sub000/internal/model"
)

func TestValidateEventID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"valid uuid", "0f8fad5b-d9cb-469f-a165-70867728950e", "0f8fad5b-d9cb-469f-a165-70867728950e", false},
		{"valid opaque token", "evt_summer-party", "evt_summer-party", false},
		{"trims whitespace", "  ev1  ", "ev1", false},
		{"empty", "", "", true},
		{"too long 65", strings.Repeat("a", 65), "", true},
		{"exactly 64", strings.Repeat("a", 64), strings.Repeat("a", 64), false},
		{"invalid chars", "ev 1", "", true},
		{"sql injection", "ev'; DROP--", "", true},
		{"unicode", "evént", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errMsg := ValidateEventID(tt.input)
			if tt.wantErr && errMsg == "" {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && errMsg != "" {
				t.Errorf("unexpected error: %s", errMsg)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateTrackID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"valid", "track-123", "track-123", false},
		{"empty", "", "", true},
		{"too long 65", strings.Repeat("t", 65), "", true},
		{"path traversal", "../etc/passwd", "", true},
		{"invalid chars", "tr ack", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errMsg := ValidateTrackID(tt.input)
			if tt.wantErr && errMsg == "" {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && errMsg != "" {
				t.Errorf("unexpected error: %s", errMsg)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateUserID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"valid", "user_42", "user_42", false},
		{"trims whitespace", " alice ", "alice", false},
		{"empty", "", "", true},
		{"too long 65", strings.Repeat("u", 65), "", true},
		{"sql injection", "u'; DROP--", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errMsg := ValidateUserID(tt.input)
			if tt.wantErr && errMsg == "" {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && errMsg != "" {
				t.Errorf("unexpected error: %s", errMsg)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateDirection(t *testing.T) {
	if errMsg := ValidateDirection(model.DirectionUp); errMsg != "" {
		t.Errorf("up: unexpected error: %s", errMsg)
	}
	if errMsg := ValidateDirection(model.DirectionDown); errMsg != "" {
		t.Errorf("down: unexpected error: %s", errMsg)
	}
	if errMsg := ValidateDirection(model.Direction("sideways")); errMsg == "" {
		t.Error("sideways: expected error, got none")
	}
	if errMsg := ValidateDirection(model.Direction("")); errMsg == "" {
		t.Error("empty: expected error, got none")
	}
}

func TestValidateTitle(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"valid", "Bohemian Rhapsody", "Bohemian Rhapsody", false},
		{"trims whitespace", "  Song  ", "Song", false},
		{"empty", "", "", true},
		{"whitespace only", "   ", "", true},
		{"too long 257", strings.Repeat("x", 257), "", true},
		{"exactly 256", strings.Repeat("x", 256), strings.Repeat("x", 256), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errMsg := ValidateTitle(tt.input)
			if tt.wantErr && errMsg == "" {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && errMsg != "" {
				t.Errorf("unexpected error: %s", errMsg)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateArtist(t *testing.T) {
	if got := ValidateArtist("  Queen  "); got != "Queen" {
		t.Errorf("trim failed: got %q", got)
	}
	if got := ValidateArtist(""); got != "" {
		t.Errorf("empty artist should stay empty, got %q", got)
	}
	if got := ValidateArtist(strings.Repeat("a", 200)); len(got) != MaxArtistLen {
		t.Errorf("truncation failed: got len %d, want %d", len(got), MaxArtistLen)
	}
}
