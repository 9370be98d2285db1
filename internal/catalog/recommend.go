package catalog

import (
	"context"
	"math/rand"
	"sort"
	"strings"
)

// RecommendedPlaylist is one entry of a recommendation shortlist.
// Reason is only populated by backends that can articulate one.
type RecommendedPlaylist struct {
	Playlist
	Reason string `json:"reason,omitempty"`
}

type Recommendation struct {
	Explanation     string                `json:"explanation"`
	Recommendations []RecommendedPlaylist `json:"recommendations"`
}

// Recommender produces a ranked shortlist for a free-text query from
// the given candidate set. Implementations must not mutate candidates.
type Recommender interface {
	Recommend(ctx context.Context, query string, candidates []Playlist) (Recommendation, error)
}

// LocalRecommender scores candidates by keyword overlap. It needs no
// network and always succeeds, which makes it the fallback for every
// externally-backed strategy.
type LocalRecommender struct {
	rng *rand.Rand
}

// NewLocalRecommender builds a scorer. rng drives the no-match random
// sample; nil uses the shared global source.
func NewLocalRecommender(rng *rand.Rand) *LocalRecommender {
	return &LocalRecommender{rng: rng}
}

const maxRecommendations = 3

func (l *LocalRecommender) Recommend(_ context.Context, query string, candidates []Playlist) (Recommendation, error) {
	lowerQuery := strings.ToLower(query)
	keywords := strings.Fields(lowerQuery)

	type scored struct {
		playlist Playlist
		score    int
	}
	scoredAll := make([]scored, 0, len(candidates))
	for _, p := range candidates {
		searchText := strings.ToLower(p.Name + " " + p.Description + " " + strings.Join(p.Tags, " "))

		score := 0
		for _, kw := range keywords {
			if strings.Contains(searchText, kw) {
				score++
			}
		}
		if strings.Contains(strings.ToLower(p.Name), lowerQuery) {
			score += 3
		}
		for _, tag := range p.Tags {
			lowerTag := strings.ToLower(tag)
			for _, kw := range keywords {
				if strings.Contains(lowerTag, kw) {
					score += 2
					break
				}
			}
		}
		scoredAll = append(scoredAll, scored{playlist: p, score: score})
	}

	matches := []scored{}
	for _, s := range scoredAll {
		if s.score > 0 {
			matches = append(matches, s)
		}
	}
	// Ties keep the candidates' original order.
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].score > matches[j].score })
	if len(matches) > maxRecommendations {
		matches = matches[:maxRecommendations]
	}

	if len(matches) == 0 {
		return Recommendation{
			Explanation:     "I couldn't find exact matches for your request, so here are some popular playlists from your collection:",
			Recommendations: l.randomSample(candidates),
		}, nil
	}

	recs := make([]RecommendedPlaylist, 0, len(matches))
	for _, m := range matches {
		recs = append(recs, RecommendedPlaylist{Playlist: m.playlist})
	}
	return Recommendation{
		Explanation:     `Based on your request "` + query + `", here are some playlists that might interest you:`,
		Recommendations: recs,
	}, nil
}

func (l *LocalRecommender) randomSample(candidates []Playlist) []RecommendedPlaylist {
	shuffled := make([]Playlist, len(candidates))
	copy(shuffled, candidates)
	shuffle := rand.Shuffle
	if l.rng != nil {
		shuffle = l.rng.Shuffle
	}
	shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if len(shuffled) > maxRecommendations {
		shuffled = shuffled[:maxRecommendations]
	}
	out := make([]RecommendedPlaylist, 0, len(shuffled))
	for _, p := range shuffled {
		out = append(out, RecommendedPlaylist{Playlist: p})
	}
	return out
}
