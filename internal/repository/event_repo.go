package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abdelhak4/NashidRoom-sub000/internal/model"
)

// EventRepo reads per-event voting configuration and invitation records.
// Both are written by the event-management side, which is outside this
// service; only reads live here.
type EventRepo struct {
	pool *pgxpool.Pool
}

func NewEventRepo(pool *pgxpool.Pool) *EventRepo {
	return &EventRepo{pool: pool}
}

// ReadVotingConfig returns the event's eligibility configuration.
func (r *EventRepo) ReadVotingConfig(ctx context.Context, eventID string) (*model.EventVotingConfig, error) {
	var cfg model.EventVotingConfig
	err := r.pool.QueryRow(ctx, `
		SELECT event_id, host_id, license, center_lat, center_lng, radius_m, window_start, window_end
		FROM event_voting_configs
		WHERE event_id = $1`,
		eventID).Scan(
		&cfg.EventID, &cfg.HostID, &cfg.License,
		&cfg.CenterLat, &cfg.CenterLng, &cfg.RadiusM,
		&cfg.WindowStart, &cfg.WindowEnd)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ReadInvitationStatus returns the invitation status for (event, user).
// A missing record is reported as empty status, not an error.
func (r *EventRepo) ReadInvitationStatus(ctx context.Context, eventID, userID string) (model.InvitationStatus, error) {
	var status model.InvitationStatus
	err := r.pool.QueryRow(ctx, `
		SELECT status FROM invitations
		WHERE event_id = $1 AND user_id = $2`,
		eventID, userID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return status, nil
}
