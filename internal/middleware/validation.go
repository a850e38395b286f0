package middleware

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/abdelhak4/NashidRoom-sub000/internal/model"
)

// Field length limits matching database schema constraints.
const (
	MaxEventIDLen = 64  // events.id VARCHAR(64)
	MaxTrackIDLen = 64  // tracks.id VARCHAR(64)
	MaxUserIDLen  = 64  // votes.user_id VARCHAR(64)
	MaxTitleLen   = 256 // tracks.title VARCHAR(256)
	MaxArtistLen  = 128 // tracks.artist VARCHAR(128)
)

var (
	// idRe matches event/track/user identifiers: UUIDs and opaque tokens.
	idRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ValidateEventID checks that an event ID is well-formed and within DB limits.
func ValidateEventID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "eventId is required"
	}
	if len(id) > MaxEventIDLen {
		return "", "eventId must be at most 64 characters"
	}
	if !idRe.MatchString(id) {
		return "", "eventId contains invalid characters"
	}
	return id, ""
}

// ValidateTrackID checks that a track ID is well-formed.
func ValidateTrackID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "trackId is required"
	}
	if len(id) > MaxTrackIDLen {
		return "", "trackId must be at most 64 characters"
	}
	if !idRe.MatchString(id) {
		return "", "trackId contains invalid characters"
	}
	return id, ""
}

// ValidateUserID checks that a user ID is well-formed.
func ValidateUserID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "userId is required"
	}
	if len(id) > MaxUserIDLen {
		return "", "userId must be at most 64 characters"
	}
	if !idRe.MatchString(id) {
		return "", "userId contains invalid characters"
	}
	return id, ""
}

// ValidateDirection checks the vote direction value.
func ValidateDirection(d model.Direction) string {
	if !d.Valid() {
		return "direction must be \"up\" or \"down\""
	}
	return ""
}

// ValidateTitle trims and bounds a track title.
func ValidateTitle(title string) (string, string) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", "title is required"
	}
	if len(title) > MaxTitleLen {
		return "", "title must be at most 256 characters"
	}
	return title, ""
}

// ValidateArtist trims and truncates an artist name.
func ValidateArtist(artist string) string {
	artist = strings.TrimSpace(artist)
	if len(artist) > MaxArtistLen {
		artist = artist[:MaxArtistLen]
	}
	return artist
}
