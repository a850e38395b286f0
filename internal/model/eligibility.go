package model

// EligibilityReason explains an eligibility decision. Decisions are
// transient values recomputed on every vote attempt, never persisted.
type EligibilityReason string

const (
	ReasonUnrestricted        EligibilityReason = "unrestricted"
	ReasonHostOverride        EligibilityReason = "host_override"
	ReasonInvited             EligibilityReason = "invited"
	ReasonOutsideRadius       EligibilityReason = "outside_radius"
	ReasonOutsideWindow       EligibilityReason = "outside_window"
	ReasonNotInvited          EligibilityReason = "not_invited"
	ReasonLocationUnavailable EligibilityReason = "location_unavailable"
)

// EligibilityDecision is the outcome of evaluating the eligibility policy
// for one (event, user, location, time) tuple.
type EligibilityDecision struct {
	Allowed bool              `json:"allowed"`
	Reason  EligibilityReason `json:"reason"`
}
