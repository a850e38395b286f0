package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// AuditWorker is a periodic background job that re-verifies denormalized
// net counts against the vote rows for recently voted tracks. Drift can
// only come from out-of-band writers or partially applied mutations; the
// sweep repairs it with the same recompute the ledger uses, so repeated
// runs are idempotent.
type AuditWorker struct {
	votes    VoteStore
	tracks   TrackStore
	interval time.Duration
	lookback time.Duration
	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewAuditWorker creates a worker that ticks every interval and inspects
// tracks voted on within the lookback window.
func NewAuditWorker(votes VoteStore, tracks TrackStore, interval, lookback time.Duration) *AuditWorker {
	return &AuditWorker{
		votes:    votes,
		tracks:   tracks,
		interval: interval,
		lookback: lookback,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic audit loop. It runs one tick immediately,
// then every interval, until the context is cancelled or Stop is called.
func (w *AuditWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Dur("lookback", w.lookback).Msg("audit-worker: starting")

	w.tick(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.tick(ctx)
		case <-ctx.Done():
			log.Info().Msg("audit-worker: stopping (context cancelled)")
			return
		case <-w.stopCh:
			log.Info().Msg("audit-worker: stopping (stop signal)")
			return
		}
	}
}

// Stop signals the worker to stop. Safe to call more than once.
func (w *AuditWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

// tick runs one sweep: recompute each recently voted track's net count and
// repair any stored value that disagrees.
func (w *AuditWorker) tick(ctx context.Context) {
	start := time.Now()

	checked, repaired, err := w.sweep(ctx)
	if err != nil {
		log.Error().Err(err).Msg("audit-worker: sweep error")
		return
	}

	if repaired > 0 {
		log.Warn().Int("checked", checked).Int("repaired", repaired).
			Dur("elapsed", time.Since(start).Round(time.Millisecond)).
			Msg("audit-worker: net-count drift repaired")
	} else {
		log.Debug().Int("checked", checked).
			Dur("elapsed", time.Since(start).Round(time.Millisecond)).
			Msg("audit-worker: sweep complete")
	}
}

func (w *AuditWorker) sweep(ctx context.Context) (checked, repaired int, err error) {
	recent, err := w.votes.RecentlyVoted(ctx, time.Now().Add(-w.lookback))
	if err != nil {
		return 0, 0, err
	}

	for _, vt := range recent {
		votes, err := w.votes.ReadVotes(ctx, vt.EventID, vt.TrackID)
		if err != nil {
			log.Error().Err(err).Str("trackId", vt.TrackID).Msg("audit-worker: scan error")
			continue
		}

		want := NetCount(votes)

		stored, err := w.tracks.ReadTrackNetVotes(ctx, vt.TrackID)
		if err != nil {
			log.Error().Err(err).Str("trackId", vt.TrackID).Msg("audit-worker: read error")
			continue
		}

		checked++
		if stored == want {
			continue
		}

		if err := w.tracks.WriteTrackNetVotes(ctx, vt.TrackID, want); err != nil {
			log.Error().Err(err).Str("trackId", vt.TrackID).Msg("audit-worker: repair error")
			continue
		}

		observeRepair()
		repaired++
		log.Warn().Str("trackId", vt.TrackID).Int("stored", stored).Int("recomputed", want).
			Msg("audit-worker: repaired net count")
	}

	return checked, repaired, nil
}
