package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/abdelhak4/NashidRoom-sub000/internal/model"
)

// memStore is an in-memory store collaborator for ledger tests. A single
// mutex serializes row access the way the real store's transactions do.
type memStore struct {
	mu       sync.Mutex
	votes    map[string]model.Vote
	netVotes map[string]int
	configs  map[string]*model.EventVotingConfig
	invites  map[string]model.InvitationStatus

	// verifySkew simulates an out-of-band writer racing the verification
	// re-read: ReadTrackNetVotes returns stored value + skew.
	verifySkew int
	failWrites error
}

func newMemStore() *memStore {
	return &memStore{
		votes:    make(map[string]model.Vote),
		netVotes: make(map[string]int),
		configs:  make(map[string]*model.EventVotingConfig),
		invites:  make(map[string]model.InvitationStatus),
	}
}

func voteKey(eventID, trackID, userID string) string {
	return eventID + "/" + trackID + "/" + userID
}

func (m *memStore) GetVote(_ context.Context, eventID, trackID, userID string) (*model.Vote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.votes[voteKey(eventID, trackID, userID)]; ok {
		return &v, nil
	}
	return nil, nil
}

func (m *memStore) ReadVotes(_ context.Context, eventID, trackID string) ([]model.Vote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Vote
	for _, v := range m.votes {
		if v.EventID == eventID && v.TrackID == trackID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *memStore) UpsertVote(_ context.Context, eventID, trackID, userID string, direction model.Direction) error {
	if m.failWrites != nil {
		return m.failWrites
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := voteKey(eventID, trackID, userID)
	now := time.Now()
	if existing, ok := m.votes[key]; ok {
		existing.Direction = direction
		existing.UpdatedAt = now
		m.votes[key] = existing
		return nil
	}
	m.votes[key] = model.Vote{
		EventID: eventID, TrackID: trackID, UserID: userID,
		Direction: direction, CreatedAt: now, UpdatedAt: now,
	}
	return nil
}

func (m *memStore) DeleteVote(_ context.Context, eventID, trackID, userID string) error {
	if m.failWrites != nil {
		return m.failWrites
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.votes, voteKey(eventID, trackID, userID))
	return nil
}

func (m *memStore) ReadUserVotes(_ context.Context, eventID, userID string) ([]model.UserVote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.UserVote
	for _, v := range m.votes {
		if v.EventID == eventID && v.UserID == userID {
			out = append(out, model.UserVote{TrackID: v.TrackID, Direction: v.Direction})
		}
	}
	return out, nil
}

func (m *memStore) RecentlyVoted(_ context.Context, since time.Time) ([]VotedTrack, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[VotedTrack]bool)
	for _, v := range m.votes {
		if v.UpdatedAt.After(since) {
			seen[VotedTrack{EventID: v.EventID, TrackID: v.TrackID}] = true
		}
	}
	var out []VotedTrack
	for vt := range seen {
		out = append(out, vt)
	}
	return out, nil
}

func (m *memStore) ReadTracks(_ context.Context, eventID string) ([]model.Track, error) {
	return nil, nil
}

func (m *memStore) ReadTrackNetVotes(_ context.Context, trackID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.netVotes[trackID] + m.verifySkew, nil
}

func (m *memStore) WriteTrackNetVotes(_ context.Context, trackID string, value int) error {
	if m.failWrites != nil {
		return m.failWrites
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.netVotes[trackID] = value
	return nil
}

func (m *memStore) AddTrack(_ context.Context, eventID, title, artist string) (*model.Track, error) {
	return &model.Track{ID: "new", EventID: eventID, Title: title, Artist: artist}, nil
}

func (m *memStore) ReadVotingConfig(_ context.Context, eventID string) (*model.EventVotingConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cfg, ok := m.configs[eventID]; ok {
		return cfg, nil
	}
	return &model.EventVotingConfig{EventID: eventID, HostID: "host", License: model.LicenseOpen}, nil
}

func (m *memStore) ReadInvitationStatus(_ context.Context, eventID, userID string) (model.InvitationStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.invites[eventID+"/"+userID], nil
}

func (m *memStore) rowCount(eventID, trackID, userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.votes[voteKey(eventID, trackID, userID)]; ok {
		return 1
	}
	return 0
}

func newTestLedger(store *memStore) *LedgerService {
	return NewLedgerService(store, store, NewEligibilityService(store, store), nil)
}

func cast(t *testing.T, ledger *LedgerService, userID string, direction model.Direction) int {
	t.Helper()
	net, err := ledger.CastVote(context.Background(), CastVoteInput{
		EventID: "ev1", TrackID: "tr1", UserID: userID, Direction: direction,
	})
	if err != nil {
		t.Fatalf("CastVote(%s, %s): %v", userID, direction, err)
	}
	return net
}

func TestCastVote_FirstCastInserts(t *testing.T) {
	store := newMemStore()
	ledger := newTestLedger(store)

	if net := cast(t, ledger, "alice", model.DirectionUp); net != 1 {
		t.Errorf("net = %d, want 1", net)
	}
	if store.rowCount("ev1", "tr1", "alice") != 1 {
		t.Error("expected one vote row after first cast")
	}
}

func TestCastVote_SameDirectionRetracts(t *testing.T) {
	store := newMemStore()
	ledger := newTestLedger(store)

	cast(t, ledger, "alice", model.DirectionUp)
	net := cast(t, ledger, "alice", model.DirectionUp)

	if net != 0 {
		t.Errorf("net after retraction = %d, want 0", net)
	}
	if store.rowCount("ev1", "tr1", "alice") != 0 {
		t.Error("toggle retraction must delete the row, not keep it")
	}
}

func TestCastVote_OppositeDirectionFlips(t *testing.T) {
	store := newMemStore()
	ledger := newTestLedger(store)

	cast(t, ledger, "alice", model.DirectionUp)
	cast(t, ledger, "bob", model.DirectionUp)
	net := cast(t, ledger, "alice", model.DirectionDown)

	// alice flipped: 1 up (bob) − 1 down (alice) = 0... net is max(0, 0)
	if net != 0 {
		t.Errorf("net after flip = %d, want 0", net)
	}
	if store.rowCount("ev1", "tr1", "alice") != 1 {
		t.Error("flip must keep exactly one row")
	}
}

func TestCastVote_SingleRowInvariant(t *testing.T) {
	store := newMemStore()
	ledger := newTestLedger(store)

	sequence := []model.Direction{
		model.DirectionUp, model.DirectionDown, model.DirectionDown,
		model.DirectionUp, model.DirectionUp, model.DirectionDown,
	}
	for _, d := range sequence {
		cast(t, ledger, "alice", d)
	}

	if n := store.rowCount("ev1", "tr1", "alice"); n > 1 {
		t.Errorf("found %d rows for one (event, track, user), want at most 1", n)
	}
}

func TestCastVote_NetNeverNegative(t *testing.T) {
	store := newMemStore()
	ledger := newTestLedger(store)

	cast(t, ledger, "alice", model.DirectionDown)
	cast(t, ledger, "bob", model.DirectionDown)
	net := cast(t, ledger, "carol", model.DirectionDown)

	if net != 0 {
		t.Errorf("net with only downvotes = %d, want 0 (floored)", net)
	}
}

func TestCastVote_RecomputeIsOrderIndependent(t *testing.T) {
	type castOp struct {
		user string
		dir  model.Direction
	}
	ops := []castOp{
		{"alice", model.DirectionUp},
		{"bob", model.DirectionUp},
		{"carol", model.DirectionDown},
		{"dave", model.DirectionUp},
	}
	reversed := make([]castOp, len(ops))
	for i, op := range ops {
		reversed[len(ops)-1-i] = op
	}

	var nets []int
	for _, order := range [][]castOp{ops, reversed} {
		store := newMemStore()
		ledger := newTestLedger(store)
		var net int
		for _, op := range order {
			net = cast(t, ledger, op.user, op.dir)
		}
		nets = append(nets, net)
	}

	// 3 up, 1 down in both orders.
	if nets[0] != 2 || nets[1] != 2 {
		t.Errorf("nets = %v, want [2 2] regardless of cast order", nets)
	}
}

func TestCastVote_Unauthenticated(t *testing.T) {
	ledger := newTestLedger(newMemStore())

	_, err := ledger.CastVote(context.Background(), CastVoteInput{
		EventID: "ev1", TrackID: "tr1", Direction: model.DirectionUp,
	})
	if !errors.Is(err, model.ErrUnauthenticated) {
		t.Errorf("err = %v, want ErrUnauthenticated", err)
	}
}

func TestCastVote_EligibilityDeniedWritesNothing(t *testing.T) {
	store := newMemStore()
	store.configs["ev1"] = &model.EventVotingConfig{
		EventID: "ev1", HostID: "host", License: model.LicenseInviteOnly,
	}
	ledger := newTestLedger(store)

	_, err := ledger.CastVote(context.Background(), CastVoteInput{
		EventID: "ev1", TrackID: "tr1", UserID: "stranger", Direction: model.DirectionUp,
	})

	var denied *model.EligibilityDeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("err = %v, want EligibilityDeniedError", err)
	}
	if denied.Reason != model.ReasonNotInvited {
		t.Errorf("reason = %s, want not_invited", denied.Reason)
	}
	if store.rowCount("ev1", "tr1", "stranger") != 0 {
		t.Error("denied vote must not write a row")
	}
}

func TestCastVote_InconsistentWriteSurfaced(t *testing.T) {
	store := newMemStore()
	store.verifySkew = 1 // out-of-band writer corrupts the verification read
	ledger := newTestLedger(store)

	_, err := ledger.CastVote(context.Background(), CastVoteInput{
		EventID: "ev1", TrackID: "tr1", UserID: "alice", Direction: model.DirectionUp,
	})

	var inconsistent *model.InconsistentWriteError
	if !errors.As(err, &inconsistent) {
		t.Fatalf("err = %v, want InconsistentWriteError", err)
	}
	if inconsistent.Wrote == inconsistent.Read {
		t.Errorf("mismatch fields not populated: %+v", inconsistent)
	}
}

func TestCastVote_ConcurrentCallersConverge(t *testing.T) {
	store := newMemStore()
	ledger := newTestLedger(store)

	// The fake store has no transaction boundary, so a concurrent writer can
	// land between another caller's write and verification read. That shows
	// up as InconsistentWriteError, which is exactly the drift the audit
	// sweep repairs; any other error is a real failure.
	const voters = 32
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			dir := model.DirectionUp
			if n%4 == 0 {
				dir = model.DirectionDown
			}
			_, err := ledger.CastVote(context.Background(), CastVoteInput{
				EventID: "ev1", TrackID: "tr1",
				UserID: fmt.Sprintf("user-%d", n), Direction: dir,
			})
			var inconsistent *model.InconsistentWriteError
			if err != nil && !errors.As(err, &inconsistent) {
				t.Errorf("concurrent cast %d: %v", n, err)
			}
		}(i)
	}
	wg.Wait()

	// Every row landed regardless of verification conflicts.
	votes, _ := store.ReadVotes(context.Background(), "ev1", "tr1")
	want := NetCount(votes)
	if want != 16 { // 24 up − 8 down
		t.Fatalf("recompute = %d, want 16", want)
	}

	// One audit sweep repairs any stored value a racing writer clobbered.
	worker := NewAuditWorker(store, store, time.Minute, time.Hour)
	if _, _, err := worker.sweep(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	got, _ := store.ReadTrackNetVotes(context.Background(), "tr1")
	if got != want {
		t.Errorf("persisted net = %d, recompute says %d", got, want)
	}
}

func TestRemoveVote_DeletesAndRecounts(t *testing.T) {
	store := newMemStore()
	ledger := newTestLedger(store)

	cast(t, ledger, "alice", model.DirectionUp)
	cast(t, ledger, "bob", model.DirectionUp)

	net, err := ledger.RemoveVote(context.Background(), "ev1", "tr1", "alice")
	if err != nil {
		t.Fatalf("RemoveVote: %v", err)
	}
	if net != 1 {
		t.Errorf("net after removal = %d, want 1", net)
	}
	if store.rowCount("ev1", "tr1", "alice") != 0 {
		t.Error("row should be gone after explicit removal")
	}
}

func TestRemoveVote_NotFound(t *testing.T) {
	ledger := newTestLedger(newMemStore())

	_, err := ledger.RemoveVote(context.Background(), "ev1", "tr1", "alice")
	if !errors.Is(err, model.ErrVoteNotFound) {
		t.Errorf("err = %v, want ErrVoteNotFound", err)
	}
}

func TestNetCount(t *testing.T) {
	up := model.Vote{Direction: model.DirectionUp}
	down := model.Vote{Direction: model.DirectionDown}

	tests := []struct {
		name  string
		votes []model.Vote
		want  int
	}{
		{"empty", nil, 0},
		{"all up", []model.Vote{up, up, up}, 3},
		{"mixed", []model.Vote{up, up, down}, 1},
		{"more downs than ups floors at zero", []model.Vote{up, down, down, down}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NetCount(tt.votes); got != tt.want {
				t.Errorf("NetCount = %d, want %d", got, tt.want)
			}
		})
	}
}
