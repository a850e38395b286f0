package model

import "time"

// License controls who may vote in an event.
type License string

const (
	LicenseOpen              License = "open"
	LicenseInviteOnly        License = "invite_only"
	LicenseLocationTimeBound License = "location_time_bound"
)

// InvitationStatus is the state of an invitation record. Only an accepted
// invitation grants voting rights under an invite-only license.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// EventVotingConfig is the per-event eligibility configuration.
//
// Under a location/time-bound license the radius and the window are each
// optional: an absent dimension is a no-op, a present one must be satisfied.
// Both present means both must hold simultaneously.
type EventVotingConfig struct {
	EventID     string     `json:"eventId"`
	HostID      string     `json:"hostId"`
	License     License    `json:"license"`
	CenterLat   *float64   `json:"centerLat,omitempty"`
	CenterLng   *float64   `json:"centerLng,omitempty"`
	RadiusM     *float64   `json:"radiusM,omitempty"`
	WindowStart *time.Time `json:"windowStart,omitempty"`
	WindowEnd   *time.Time `json:"windowEnd,omitempty"`
}

// HasGeofence reports whether a complete geofence is configured.
func (c *EventVotingConfig) HasGeofence() bool {
	return c.CenterLat != nil && c.CenterLng != nil && c.RadiusM != nil
}

// HasWindow reports whether a complete voting window is configured.
func (c *EventVotingConfig) HasWindow() bool {
	return c.WindowStart != nil && c.WindowEnd != nil
}
