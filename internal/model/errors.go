package model

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated means no caller identity is available.
	ErrUnauthenticated = errors.New("no authenticated user")

	// ErrLocationUnavailable means the location collaborator could not
	// produce a coordinate within its bounded wait. Distinct from an
	// eligibility denial: the caller should request location access,
	// not assume the user is out of range.
	ErrLocationUnavailable = errors.New("location unavailable")

	// ErrVoteNotFound means an explicit removal targeted a vote row
	// that does not exist.
	ErrVoteNotFound = errors.New("vote not found")
)

// EligibilityDeniedError is a policy rejection. Terminal for the vote
// attempt; never retried automatically.
type EligibilityDeniedError struct {
	Reason EligibilityReason
}

func (e *EligibilityDeniedError) Error() string {
	return fmt.Sprintf("vote not permitted: %s", e.Reason)
}

// InconsistentWriteError means the verification re-read after persisting
// a recomputed net count did not match the value written. Surfaced, not
// auto-corrected; the next reconciliation poll carries the truth.
type InconsistentWriteError struct {
	TrackID string
	Wrote   int
	Read    int
}

func (e *InconsistentWriteError) Error() string {
	return fmt.Sprintf("inconsistent net-count write for track %s: wrote %d, read back %d", e.TrackID, e.Wrote, e.Read)
}

// NetworkError wraps a transient store or transport failure. Retried by
// the next poll tick, or surfaced for manual retry on explicit actions.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
