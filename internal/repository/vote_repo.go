package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abdelhak4/NashidRoom-sub000/internal/model"
	"github.com/abdelhak4/NashidRoom-sub000/internal/service"
)

// VoteRepo stores vote rows in Postgres. The table carries a primary key on
// (event_id, track_id, user_id), which is what makes the single-row-per-user
// invariant hold under concurrent upserts.
type VoteRepo struct {
	pool *pgxpool.Pool
}

func NewVoteRepo(pool *pgxpool.Pool) *VoteRepo {
	return &VoteRepo{pool: pool}
}

// GetVote returns the vote row for the composite key, or nil if absent.
func (r *VoteRepo) GetVote(ctx context.Context, eventID, trackID, userID string) (*model.Vote, error) {
	var v model.Vote
	err := r.pool.QueryRow(ctx, `
		SELECT event_id, track_id, user_id, direction, created_at, updated_at
		FROM votes
		WHERE event_id = $1 AND track_id = $2 AND user_id = $3`,
		eventID, trackID, userID).Scan(
		&v.EventID, &v.TrackID, &v.UserID, &v.Direction, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ReadVotes returns all current vote rows for a track. The ledger re-scans
// this set on every mutation; no counter is kept on the repo side.
func (r *VoteRepo) ReadVotes(ctx context.Context, eventID, trackID string) ([]model.Vote, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT event_id, track_id, user_id, direction, created_at, updated_at
		FROM votes
		WHERE event_id = $1 AND track_id = $2`,
		eventID, trackID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var votes []model.Vote
	for rows.Next() {
		var v model.Vote
		if err := rows.Scan(&v.EventID, &v.TrackID, &v.UserID, &v.Direction, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

// UpsertVote inserts a new vote row or flips the direction of an existing one.
func (r *VoteRepo) UpsertVote(ctx context.Context, eventID, trackID, userID string, direction model.Direction) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO votes (event_id, track_id, user_id, direction, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (event_id, track_id, user_id) DO UPDATE
		SET direction = EXCLUDED.direction, updated_at = NOW()`,
		eventID, trackID, userID, direction)
	return err
}

// DeleteVote removes a user's vote row (toggle retraction or explicit removal).
func (r *VoteRepo) DeleteVote(ctx context.Context, eventID, trackID, userID string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM votes
		WHERE event_id = $1 AND track_id = $2 AND user_id = $3`,
		eventID, trackID, userID)
	return err
}

// ReadUserVotes returns the user's current vote directions across an event.
func (r *VoteRepo) ReadUserVotes(ctx context.Context, eventID, userID string) ([]model.UserVote, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT track_id, direction
		FROM votes
		WHERE event_id = $1 AND user_id = $2`,
		eventID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var votes []model.UserVote
	for rows.Next() {
		var uv model.UserVote
		if err := rows.Scan(&uv.TrackID, &uv.Direction); err != nil {
			return nil, err
		}
		votes = append(votes, uv)
	}
	return votes, rows.Err()
}

// RecentlyVoted returns distinct tracks with vote activity since the cutoff,
// for the audit sweep. Retracted votes leave no row, so the query also picks
// up tracks via the track table's own update timestamp.
func (r *VoteRepo) RecentlyVoted(ctx context.Context, since time.Time) ([]service.VotedTrack, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT v.event_id, v.track_id
		FROM votes v
		WHERE v.updated_at > $1
		UNION
		SELECT t.event_id, t.id
		FROM tracks t
		WHERE t.updated_at > $1`,
		since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracked []service.VotedTrack
	for rows.Next() {
		var vt service.VotedTrack
		if err := rows.Scan(&vt.EventID, &vt.TrackID); err != nil {
			return nil, err
		}
		tracked = append(tracked, vt)
	}
	return tracked, rows.Err()
}
