package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/abdelhak4/NashidRoom-sub000/internal/model"
)

// TrackService serves ranked track lists and queue additions.
type TrackService struct {
	tracks TrackStore
	votes  VoteStore
	cache  *CacheService
}

func NewTrackService(tracks TrackStore, votes VoteStore, cache *CacheService) *TrackService {
	return &TrackService{tracks: tracks, votes: votes, cache: cache}
}

// GetRanking returns the event's tracks in display order. The anonymous
// portion (ranked tracks) is served cache-aside from Redis; the caller's own
// vote directions are always read fresh since they are per-user.
func (s *TrackService) GetRanking(ctx context.Context, eventID, userID string) (*model.RankingResponse, error) {
	resp, err := s.rankedTracks(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if userID != "" {
		userVotes, err := s.votes.ReadUserVotes(ctx, eventID, userID)
		if err != nil {
			return nil, &model.NetworkError{Op: "read user votes", Err: err}
		}
		resp.UserVotes = userVotes
	}

	return resp, nil
}

// AddTrack queues a new track with zero votes.
func (s *TrackService) AddTrack(ctx context.Context, eventID, title, artist string) (*model.Track, error) {
	track, err := s.tracks.AddTrack(ctx, eventID, title, artist)
	if err != nil {
		return nil, &model.NetworkError{Op: "add track", Err: err}
	}

	if s.cache != nil {
		if err := s.cache.InvalidateEvent(ctx, eventID); err != nil {
			log.Warn().Err(err).Str("eventId", eventID).Msg("cache invalidation failed")
		}
	}
	return track, nil
}

func (s *TrackService) rankedTracks(ctx context.Context, eventID string) (*model.RankingResponse, error) {
	if s.cache != nil {
		if data, err := s.cache.GetRanking(ctx, eventID); err == nil && data != nil {
			var cached model.RankingResponse
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
		} else if err != nil {
			log.Warn().Err(err).Str("eventId", eventID).Msg("cache read failed")
		}
	}

	tracks, err := s.tracks.ReadTracks(ctx, eventID)
	if err != nil {
		return nil, &model.NetworkError{Op: "read tracks", Err: err}
	}

	resp := &model.RankingResponse{
		EventID:     eventID,
		Tracks:      Rank(tracks, nil),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}

	if s.cache != nil {
		if err := s.cache.SetRanking(ctx, eventID, resp); err != nil {
			log.Warn().Err(err).Str("eventId", eventID).Msg("cache write failed")
		}
	}
	return resp, nil
}
