package service

import (
	"context"
	"time"

	"github.com/abdelhak4/NashidRoom-sub000/internal/model"
	"github.com/abdelhak4/NashidRoom-sub000/pkg/geo"
)

// EligibilityService decides whether a user may vote in an event at a given
// time and place. Evaluation is pure and side-effect free beyond the injected
// invitation lookup, so it is safe to run on every vote attempt.
type EligibilityService struct {
	configs ConfigStore
	invites InvitationLookup
}

func NewEligibilityService(configs ConfigStore, invites InvitationLookup) *EligibilityService {
	return &EligibilityService{configs: configs, invites: invites}
}

// Check loads the event's voting config and evaluates the policy for the
// requester. The orchestration wrapper around Evaluate.
func (s *EligibilityService) Check(ctx context.Context, eventID, userID string, location *geo.Coordinate, now time.Time) (model.EligibilityDecision, error) {
	cfg, err := s.configs.ReadVotingConfig(ctx, eventID)
	if err != nil {
		return model.EligibilityDecision{}, &model.NetworkError{Op: "read voting config", Err: err}
	}
	return s.Evaluate(ctx, cfg, userID, location, now)
}

// Evaluate applies the eligibility policy:
//
//	host            → allowed (host override)
//	open            → allowed
//	invite_only     → requires an accepted invitation
//	location/time   → window first (inclusive), then geofence; each dimension
//	                  is a no-op when not configured, both gate when present
func (s *EligibilityService) Evaluate(ctx context.Context, cfg *model.EventVotingConfig, userID string, location *geo.Coordinate, now time.Time) (model.EligibilityDecision, error) {
	if userID == cfg.HostID {
		return model.EligibilityDecision{Allowed: true, Reason: model.ReasonHostOverride}, nil
	}

	switch cfg.License {
	case model.LicenseInviteOnly:
		status, err := s.invites.ReadInvitationStatus(ctx, cfg.EventID, userID)
		if err != nil {
			return model.EligibilityDecision{}, &model.NetworkError{Op: "read invitation", Err: err}
		}
		if status != model.InvitationAccepted {
			return model.EligibilityDecision{Allowed: false, Reason: model.ReasonNotInvited}, nil
		}
		return model.EligibilityDecision{Allowed: true, Reason: model.ReasonInvited}, nil

	case model.LicenseLocationTimeBound:
		if cfg.HasWindow() {
			if now.Before(*cfg.WindowStart) || now.After(*cfg.WindowEnd) {
				return model.EligibilityDecision{Allowed: false, Reason: model.ReasonOutsideWindow}, nil
			}
		}
		if cfg.HasGeofence() {
			if location == nil {
				return model.EligibilityDecision{Allowed: false, Reason: model.ReasonLocationUnavailable}, nil
			}
			center := geo.Coordinate{Lat: *cfg.CenterLat, Lng: *cfg.CenterLng}
			if geo.DistanceMeters(center, *location) > *cfg.RadiusM {
				return model.EligibilityDecision{Allowed: false, Reason: model.ReasonOutsideRadius}, nil
			}
		}
		return model.EligibilityDecision{Allowed: true, Reason: model.ReasonUnrestricted}, nil

	default: // open
		return model.EligibilityDecision{Allowed: true, Reason: model.ReasonUnrestricted}, nil
	}
}
