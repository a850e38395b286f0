package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/abdelhak4/NashidRoom-sub000/internal/model"
	"github.com/abdelhak4/NashidRoom-sub000/pkg/geo"
)

// LedgerService owns the authoritative vote rows and the denormalized net
// count per track. Net counts are recomputed from a fresh scan of the vote
// rows on every mutation, never incremented — recomputation is idempotent
// and safe to retry after partial failure, which is what keeps concurrent
// casts on the same track from losing updates.
type LedgerService struct {
	votes       VoteStore
	tracks      TrackStore
	eligibility *EligibilityService
	cache       *CacheService
	now         func() time.Time
}

// CastVoteInput carries one vote attempt. UserID comes from the identity
// collaborator at the edge; Location from the location collaborator and may
// be nil when unavailable.
type CastVoteInput struct {
	EventID   string
	TrackID   string
	UserID    string
	Direction model.Direction
	Location  *geo.Coordinate
}

func NewLedgerService(votes VoteStore, tracks TrackStore, eligibility *EligibilityService, cache *CacheService) *LedgerService {
	return &LedgerService{
		votes:       votes,
		tracks:      tracks,
		eligibility: eligibility,
		cache:       cache,
		now:         time.Now,
	}
}

// CastVote applies one vote attempt and returns the track's new net count.
//
// Row logic for the (event, track, user) key:
//
//	no row                 → insert
//	row, same direction    → delete (toggle retraction, tap-again-to-undo)
//	row, other direction   → flip direction
//
// After the row mutation the net count is recomputed from a fresh scan and
// persisted, then verified with a re-read. A verification mismatch surfaces
// as InconsistentWriteError rather than being silently accepted.
func (s *LedgerService) CastVote(ctx context.Context, in CastVoteInput) (int, error) {
	if in.UserID == "" {
		return 0, model.ErrUnauthenticated
	}

	decision, err := s.eligibility.Check(ctx, in.EventID, in.UserID, in.Location, s.now())
	if err != nil {
		return 0, err
	}
	if !decision.Allowed {
		return 0, &model.EligibilityDeniedError{Reason: decision.Reason}
	}

	existing, err := s.votes.GetVote(ctx, in.EventID, in.TrackID, in.UserID)
	if err != nil {
		return 0, &model.NetworkError{Op: "read vote", Err: err}
	}

	switch {
	case existing == nil:
		err = s.votes.UpsertVote(ctx, in.EventID, in.TrackID, in.UserID, in.Direction)
	case existing.Direction == in.Direction:
		err = s.votes.DeleteVote(ctx, in.EventID, in.TrackID, in.UserID)
	default:
		err = s.votes.UpsertVote(ctx, in.EventID, in.TrackID, in.UserID, in.Direction)
	}
	if err != nil {
		return 0, &model.NetworkError{Op: "write vote", Err: err}
	}

	net, err := s.recountTrack(ctx, in.EventID, in.TrackID)
	if err != nil {
		return 0, err
	}

	observeVote(string(in.Direction))
	s.invalidate(ctx, in.EventID)
	return net, nil
}

// RemoveVote explicitly deletes the caller's vote and recounts. Equivalent
// in effect to a same-direction toggle, exposed for callers that know they
// want removal regardless of current direction.
func (s *LedgerService) RemoveVote(ctx context.Context, eventID, trackID, userID string) (int, error) {
	if userID == "" {
		return 0, model.ErrUnauthenticated
	}

	existing, err := s.votes.GetVote(ctx, eventID, trackID, userID)
	if err != nil {
		return 0, &model.NetworkError{Op: "read vote", Err: err}
	}
	if existing == nil {
		return 0, model.ErrVoteNotFound
	}

	if err := s.votes.DeleteVote(ctx, eventID, trackID, userID); err != nil {
		return 0, &model.NetworkError{Op: "delete vote", Err: err}
	}

	net, err := s.recountTrack(ctx, eventID, trackID)
	if err != nil {
		return 0, err
	}

	s.invalidate(ctx, eventID)
	return net, nil
}

// recountTrack recomputes max(0, up − down) from the current row set,
// persists it, and verifies the write by reading it back.
func (s *LedgerService) recountTrack(ctx context.Context, eventID, trackID string) (int, error) {
	start := time.Now()

	votes, err := s.votes.ReadVotes(ctx, eventID, trackID)
	if err != nil {
		return 0, &model.NetworkError{Op: "scan votes", Err: err}
	}

	net := NetCount(votes)

	if err := s.tracks.WriteTrackNetVotes(ctx, trackID, net); err != nil {
		return 0, &model.NetworkError{Op: "write net count", Err: err}
	}

	verified, err := s.tracks.ReadTrackNetVotes(ctx, trackID)
	if err != nil {
		return 0, &model.NetworkError{Op: "verify net count", Err: err}
	}
	if verified != net {
		err := &model.InconsistentWriteError{TrackID: trackID, Wrote: net, Read: verified}
		log.Error().Str("trackId", trackID).Int("wrote", net).Int("read", verified).Msg("net-count verification mismatch")
		return 0, err
	}

	observeRecount(time.Since(start))
	return net, nil
}

// NetCount folds a vote row set into the denormalized count:
// max(0, upvotes − downvotes).
func NetCount(votes []model.Vote) int {
	net := 0
	for _, v := range votes {
		net += v.Direction.Delta()
	}
	if net < 0 {
		net = 0
	}
	return net
}

func (s *LedgerService) invalidate(ctx context.Context, eventID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateEvent(ctx, eventID); err != nil {
		log.Warn().Err(err).Str("eventId", eventID).Msg("cache invalidation failed")
	}
}
