// Package client implements the device-side optimistic vote cache. A vote
// is applied to the local view immediately, submitted to the ledger in the
// same call, rolled back on failure, and reconciled against the ledger's
// authoritative counts by a periodic poll.
package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/abdelhak4/NashidRoom-sub000/internal/model"
	"github.com/abdelhak4/NashidRoom-sub000/internal/service"
	"github.com/abdelhak4/NashidRoom-sub000/pkg/geo"
)

// LedgerAPI is the remote vote ledger as seen from a device. The concrete
// implementation is a thin HTTP binding; everything here treats it as a
// network call that can fail, time out, or partially succeed.
type LedgerAPI interface {
	CastVote(ctx context.Context, eventID, trackID string, direction model.Direction, location *geo.Coordinate) (int, error)
	FetchTracks(ctx context.Context, eventID string) ([]model.Track, error)
	FetchUserVotes(ctx context.Context, eventID string) ([]model.UserVote, error)
	FetchEligibility(ctx context.Context, eventID string, location *geo.Coordinate) (model.EligibilityDecision, error)
}

// IdentityProvider reports the signed-in user, if any.
type IdentityProvider interface {
	CurrentUserID() (string, bool)
}

// LocationProvider produces the device coordinate, waiting a bounded time
// before reporting absence with an error.
type LocationProvider interface {
	CurrentCoordinate(ctx context.Context) (*geo.Coordinate, error)
}

// entry is the local optimistic state for one track.
//
// confirmedCount is the last authoritative net count; confirmedVote the
// user's vote as known by the server at that point. pendingVote is the
// user's current local vote and pendingDelta its unconfirmed effect on the
// count. pendingDelta never outlives a poll: reconciliation replaces the
// whole entry.
type entry struct {
	confirmedCount int
	confirmedVote  model.Direction
	pendingVote    model.Direction
	pendingDelta   int
}

// display is the clamped count shown while a vote is unconfirmed.
func (e entry) display() int {
	if v := e.confirmedCount + e.pendingDelta; v > 0 {
		return v
	}
	return 0
}

// Options tunes a Client. Zero values fall back to defaults.
type Options struct {
	PollInterval time.Duration
	CastTimeout  time.Duration
}

const (
	defaultPollInterval = 5 * time.Second
	defaultCastTimeout  = 10 * time.Second
)

var errInvalidDirection = errors.New("invalid vote direction")

// Client is the optimistic vote client for a single active event view.
type Client struct {
	eventID  string
	api      LedgerAPI
	identity IdentityProvider
	location LocationProvider

	pollInterval time.Duration
	castTimeout  time.Duration

	mu      sync.Mutex
	seq     uint64 // bumped on every local mutation and poll application
	entries map[string]entry
	tracks  []model.Track
	subs    []func()

	stopOnce sync.Once
	stopCh   chan struct{}
}

func New(eventID string, api LedgerAPI, identity IdentityProvider, location LocationProvider, opts Options) *Client {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.CastTimeout <= 0 {
		opts.CastTimeout = defaultCastTimeout
	}
	return &Client{
		eventID:      eventID,
		api:          api,
		identity:     identity,
		location:     location,
		pollInterval: opts.PollInterval,
		castTimeout:  opts.CastTimeout,
		entries:      make(map[string]entry),
		stopCh:       make(chan struct{}),
	}
}

// Vote casts a vote on a track. The local view is mutated before the ledger
// call and restored to its exact prior state if the call fails; the change
// never survives a failed remote write. Casting the caller's current
// direction again retracts the vote.
func (c *Client) Vote(ctx context.Context, trackID string, direction model.Direction) error {
	if _, ok := c.identity.CurrentUserID(); !ok {
		return model.ErrUnauthenticated
	}
	if !direction.Valid() {
		return &model.NetworkError{Op: "cast vote", Err: errInvalidDirection}
	}

	c.mu.Lock()
	prev, existed := c.entries[trackID]

	after := direction
	if prev.pendingVote == direction {
		after = "" // same direction again: retraction
	}

	next := prev
	next.pendingVote = after
	next.pendingDelta = voteEffect(after) - voteEffect(prev.confirmedVote)
	c.entries[trackID] = next
	c.seq++
	c.mu.Unlock()

	location := c.currentLocation(ctx)

	castCtx, cancel := context.WithTimeout(ctx, c.castTimeout)
	defer cancel()

	net, err := c.api.CastVote(castCtx, c.eventID, trackID, direction, location)
	if err != nil {
		// Roll back to the exact pre-attempt state. A timed-out call may
		// still have landed remotely; the next poll surfaces the truth.
		c.mu.Lock()
		if existed {
			c.entries[trackID] = prev
		} else {
			delete(c.entries, trackID)
		}
		c.seq++
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	e := c.entries[trackID]
	e.confirmedCount = net
	e.confirmedVote = e.pendingVote
	e.pendingDelta = 0
	c.entries[trackID] = e
	c.seq++
	c.mu.Unlock()

	c.notify()
	return nil
}

// CurrentRanking returns the event's tracks ordered by the local view:
// authoritative counts overlaid with any unreconciled optimistic deltas.
func (c *Client) CurrentRanking() []model.Track {
	c.mu.Lock()
	tracks := make([]model.Track, len(c.tracks))
	copy(tracks, c.tracks)
	override := make(map[string]int, len(c.entries))
	for id, e := range c.entries {
		override[id] = e.display()
	}
	c.mu.Unlock()

	return service.Rank(tracks, override)
}

// UserVote returns the user's current local vote direction on a track
// ("" when none).
func (c *Client) UserVote(trackID string) model.Direction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[trackID].pendingVote
}

// Eligibility evaluates whether the current user may vote in this event
// right now, from here.
func (c *Client) Eligibility(ctx context.Context) (model.EligibilityDecision, error) {
	if _, ok := c.identity.CurrentUserID(); !ok {
		return model.EligibilityDecision{}, model.ErrUnauthenticated
	}
	return c.api.FetchEligibility(ctx, c.eventID, c.currentLocation(ctx))
}

// Subscribe registers fn to run after every reconciliation or confirmed
// vote updates the local cache. Intended for UI refresh.
func (c *Client) Subscribe(fn func()) {
	c.mu.Lock()
	c.subs = append(c.subs, fn)
	c.mu.Unlock()
}

// Start runs the reconciliation loop until ctx is cancelled or Stop is
// called. Ticks never overlap: each poll completes (or fails) before the
// next is considered. Run it with go c.Start(ctx) while the event view is
// active.
func (c *Client) Start(ctx context.Context) {
	log.Debug().Str("eventId", c.eventID).Dur("interval", c.pollInterval).Msg("vote-client: reconciliation loop starting")

	c.Reconcile(ctx)

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Reconcile(ctx)
		case <-ctx.Done():
			log.Debug().Str("eventId", c.eventID).Msg("vote-client: stopping (context cancelled)")
			return
		case <-c.stopCh:
			log.Debug().Str("eventId", c.eventID).Msg("vote-client: stopping (stop signal)")
			return
		}
	}
}

// Stop ends the reconciliation loop. An in-flight poll is allowed to
// finish but its result is discarded. Safe to call more than once.
func (c *Client) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}

// stopped reports whether Stop has been called.
func (c *Client) stopped() bool {
	select {
	case <-c.stopCh:
		return true
	default:
		return false
	}
}

// Reconcile performs one poll: fetch the authoritative track list and the
// user's vote directions, then replace the local cache wholesale. Local
// state is overwritten, never merged — except that the entire result is
// discarded when a local mutation happened after the poll began, so a vote
// always wins over a poll that predates it.
func (c *Client) Reconcile(ctx context.Context) {
	c.mu.Lock()
	seqAtStart := c.seq
	c.mu.Unlock()

	tracks, err := c.api.FetchTracks(ctx, c.eventID)
	if err != nil {
		// Previous cache stays usable, if stale. Retried next tick.
		log.Warn().Err(err).Str("eventId", c.eventID).Msg("vote-client: poll failed")
		return
	}

	var userVotes []model.UserVote
	if _, ok := c.identity.CurrentUserID(); ok {
		userVotes, err = c.api.FetchUserVotes(ctx, c.eventID)
		if err != nil {
			log.Warn().Err(err).Str("eventId", c.eventID).Msg("vote-client: user-vote poll failed")
			return
		}
	}

	if ctx.Err() != nil {
		return
	}

	byTrack := make(map[string]model.Direction, len(userVotes))
	for _, uv := range userVotes {
		byTrack[uv.TrackID] = uv.Direction
	}

	c.mu.Lock()
	if c.seq != seqAtStart {
		// A vote mutated the cache mid-poll; this snapshot predates it.
		c.mu.Unlock()
		log.Debug().Str("eventId", c.eventID).Msg("vote-client: stale poll discarded")
		return
	}
	if c.stopped() {
		// The view is torn down; do not replace the cache or wake subscribers.
		c.mu.Unlock()
		log.Debug().Str("eventId", c.eventID).Msg("vote-client: poll after stop discarded")
		return
	}

	entries := make(map[string]entry, len(tracks))
	for _, t := range tracks {
		d := byTrack[t.ID]
		entries[t.ID] = entry{
			confirmedCount: t.NetVotes,
			confirmedVote:  d,
			pendingVote:    d,
		}
	}
	c.entries = entries
	c.tracks = tracks
	c.seq++
	c.mu.Unlock()

	c.notify()
}

func (c *Client) notify() {
	c.mu.Lock()
	subs := make([]func(), len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// currentLocation asks the location collaborator with a bounded wait.
// Absence is not an error here; the eligibility policy decides whether a
// missing coordinate matters.
func (c *Client) currentLocation(ctx context.Context) *geo.Coordinate {
	if c.location == nil {
		return nil
	}
	locCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	loc, err := c.location.CurrentCoordinate(locCtx)
	if err != nil {
		return nil
	}
	return loc
}

func voteEffect(d model.Direction) int {
	switch d {
	case model.DirectionUp:
		return 1
	case model.DirectionDown:
		return -1
	default:
		return 0
	}
}
