package service

import (
	"sort"

	"github.com/abdelhak4/NashidRoom-sub000/internal/model"
)

// Rank orders tracks by net votes descending, breaking ties by addedAt
// ascending (earlier-queued tracks rank higher). When override contains an
// entry for a track, that value replaces the track's stored NetVotes in the
// returned slice — this lets a client rank on and display an unreconciled
// optimistic count.
//
// The sort is stable and the input is never mutated: identical inputs
// always produce the identical order, and a no-op re-rank keeps ties where
// they were.
func Rank(tracks []model.Track, override map[string]int) []model.Track {
	ranked := make([]model.Track, len(tracks))
	copy(ranked, tracks)

	for i := range ranked {
		if v, ok := override[ranked[i].ID]; ok {
			ranked[i].NetVotes = v
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].NetVotes != ranked[j].NetVotes {
			return ranked[i].NetVotes > ranked[j].NetVotes
		}
		return ranked[i].AddedAt.Before(ranked[j].AddedAt)
	})

	for i := range ranked {
		ranked[i].Position = i + 1
	}
	return ranked
}
