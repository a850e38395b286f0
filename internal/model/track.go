package model

import "time"

// Track is a queued item inside an event. NetVotes is denormalized and
// owned exclusively by the ledger's recomputation step; Position is the
// display rank, recomputed from ranking, never authoritative.
type Track struct {
	ID       string    `json:"id"`
	EventID  string    `json:"eventId"`
	Title    string    `json:"title"`
	Artist   string    `json:"artist,omitempty"`
	Position int       `json:"position"`
	NetVotes int       `json:"netVotes"`
	AddedAt  time.Time `json:"addedAt"`
}

// TrackAddRequest is the API request body for queueing a track.
type TrackAddRequest struct {
	Title  string `json:"title"`
	Artist string `json:"artist,omitempty"`
}

// RankingResponse is the API response for the ranked track list of an event.
type RankingResponse struct {
	EventID     string     `json:"eventId"`
	Tracks      []Track    `json:"tracks"`
	UserVotes   []UserVote `json:"userVotes,omitempty"`
	GeneratedAt string     `json:"generatedAt"`
}
