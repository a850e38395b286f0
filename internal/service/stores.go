package service

import (
	"context"
	"time"

	"github.com/abdelhak4/NashidRoom-sub000/internal/model"
)

// The persistent store is an external collaborator reached over the network.
// Services depend on these narrow interfaces so the ledger and eligibility
// logic are testable without a database.

// VoteStore provides row access to the vote ledger.
type VoteStore interface {
	// GetVote returns the vote row for the composite key, or nil if absent.
	GetVote(ctx context.Context, eventID, trackID, userID string) (*model.Vote, error)
	// ReadVotes returns all current vote rows for a track.
	ReadVotes(ctx context.Context, eventID, trackID string) ([]model.Vote, error)
	UpsertVote(ctx context.Context, eventID, trackID, userID string, direction model.Direction) error
	DeleteVote(ctx context.Context, eventID, trackID, userID string) error
	// ReadUserVotes returns the user's current vote directions across an event.
	ReadUserVotes(ctx context.Context, eventID, userID string) ([]model.UserVote, error)
	// RecentlyVoted returns tracks with vote activity since the cutoff.
	RecentlyVoted(ctx context.Context, since time.Time) ([]VotedTrack, error)
}

// VotedTrack identifies a track with recent vote activity.
type VotedTrack struct {
	EventID string
	TrackID string
}

// TrackStore provides row access to tracks and their denormalized net counts.
type TrackStore interface {
	ReadTracks(ctx context.Context, eventID string) ([]model.Track, error)
	ReadTrackNetVotes(ctx context.Context, trackID string) (int, error)
	WriteTrackNetVotes(ctx context.Context, trackID string, value int) error
	AddTrack(ctx context.Context, eventID, title, artist string) (*model.Track, error)
}

// ConfigStore reads per-event voting configuration.
type ConfigStore interface {
	ReadVotingConfig(ctx context.Context, eventID string) (*model.EventVotingConfig, error)
}

// InvitationLookup reads invitation records for invite-only events.
// A missing record is reported as ("", nil).
type InvitationLookup interface {
	ReadInvitationStatus(ctx context.Context, eventID, userID string) (model.InvitationStatus, error)
}
