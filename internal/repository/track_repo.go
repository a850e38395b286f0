package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abdelhak4/NashidRoom-sub000/internal/model"
)

// TrackRepo stores the event queues. net_votes is denormalized and written
// only through WriteTrackNetVotes; ranking never trusts stored position.
type TrackRepo struct {
	pool *pgxpool.Pool
}

func NewTrackRepo(pool *pgxpool.Pool) *TrackRepo {
	return &TrackRepo{pool: pool}
}

// ReadTracks returns all tracks for an event ordered by added_at. Display
// order is recomputed by the ranking function; this order only has to be
// stable.
func (r *TrackRepo) ReadTracks(ctx context.Context, eventID string) ([]model.Track, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, event_id, title, artist, position, net_votes, added_at
		FROM tracks
		WHERE event_id = $1
		ORDER BY added_at ASC, id ASC`,
		eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []model.Track
	for rows.Next() {
		var t model.Track
		if err := rows.Scan(&t.ID, &t.EventID, &t.Title, &t.Artist, &t.Position, &t.NetVotes, &t.AddedAt); err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

// ReadTrackNetVotes returns the stored net count for a track. Used by the
// ledger's verification re-read and the audit sweep.
func (r *TrackRepo) ReadTrackNetVotes(ctx context.Context, trackID string) (int, error) {
	var net int
	err := r.pool.QueryRow(ctx, `SELECT net_votes FROM tracks WHERE id = $1`, trackID).Scan(&net)
	return net, err
}

// WriteTrackNetVotes persists a recomputed net count.
func (r *TrackRepo) WriteTrackNetVotes(ctx context.Context, trackID string, value int) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE tracks SET net_votes = $1, updated_at = NOW() WHERE id = $2`,
		value, trackID)
	return err
}

// AddTrack queues a new track with zero votes and a server-assigned ID.
func (r *TrackRepo) AddTrack(ctx context.Context, eventID, title, artist string) (*model.Track, error) {
	track := &model.Track{
		ID:      uuid.NewString(),
		EventID: eventID,
		Title:   title,
		Artist:  artist,
		AddedAt: time.Now().UTC(),
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO tracks (id, event_id, title, artist, position, net_votes, added_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, 0, $5, NOW())`,
		track.ID, track.EventID, track.Title, track.Artist, track.AddedAt)
	if err != nil {
		return nil, err
	}
	return track, nil
}
