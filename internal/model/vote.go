package model

import "time"

// Direction is the polarity of a vote.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Valid reports whether d is one of the two known directions.
func (d Direction) Valid() bool {
	return d == DirectionUp || d == DirectionDown
}

// Delta is the net-count contribution of a vote in this direction.
func (d Direction) Delta() int {
	if d == DirectionDown {
		return -1
	}
	return 1
}

// Vote is the authoritative vote row. At most one row exists per
// (EventID, TrackID, UserID) at any time; casting the same direction
// twice deletes the row (toggle retraction) rather than no-oping.
type Vote struct {
	EventID   string    `json:"eventId"`
	TrackID   string    `json:"trackId"`
	UserID    string    `json:"userId"`
	Direction Direction `json:"direction"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// VoteRequest is the API request body for casting a vote.
type VoteRequest struct {
	TrackID   string    `json:"trackId"`
	Direction Direction `json:"direction"`
	Lat       *float64  `json:"lat,omitempty"`
	Lng       *float64  `json:"lng,omitempty"`
}

// VoteDeleteRequest is the API request body for explicitly removing a vote.
type VoteDeleteRequest struct {
	TrackID string `json:"trackId"`
}

// VoteResponse is the API response after a vote mutation.
type VoteResponse struct {
	Success  bool   `json:"success"`
	TrackID  string `json:"trackId"`
	NetVotes int    `json:"netVotes"`
}

// UserVote pairs a track with the caller's current vote direction on it,
// as returned by the reconciliation poll.
type UserVote struct {
	TrackID   string    `json:"trackId"`
	Direction Direction `json:"direction"`
}
