// Package like implements the reference like-generation algorithms
// (spec §4.6): a deterministic recency/social-proof scorer and a
// probability-gated variant over the same scores.
package like

import (
	"context"
	"sort"
	"time"

	"github.com/socialsim/engine/domain/simcore"
)

// Score weights for the deterministic policy: score = -RecencyWeight*age
// + LikeWeight*likes + RepostWeight*0.5*reposts + ReplyWeight*0.5*replies,
// where age is measured in seconds before now (more recent = higher score).
const (
	RecencyWeight = 1.0
	LikeWeight    = 0.1
	RepostWeight  = 0.1
	ReplyWeight   = 0.1

	// TopK bounds how many top-scored candidates the deterministic
	// policy likes per turn.
	TopK = 5
)

func score(post simcore.Post, now time.Time) float64 {
	ageSeconds := now.Sub(post.CreatedAt).Seconds()
	recency := -RecencyWeight * ageSeconds
	return recency +
		LikeWeight*float64(post.LikeCount) +
		RepostWeight*0.5*float64(post.RepostCount) +
		ReplyWeight*0.5*float64(post.ReplyCount)
}

// Deterministic likes the top TopK candidates by score, ties broken by
// post_id ascending for stable output (spec §8 Determinism).
func Deterministic(_ context.Context, agent simcore.Agent, candidates []simcore.Post, _ map[string]any) ([]simcore.GeneratedLike, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	now := time.Now()
	ranked := make([]simcore.Post, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := score(ranked[i], now), score(ranked[j], now)
		if si != sj {
			return si > sj
		}
		return ranked[i].PostID < ranked[j].PostID
	})

	n := TopK
	if n > len(ranked) {
		n = len(ranked)
	}

	likes := make([]simcore.GeneratedLike, 0, n)
	for _, post := range ranked[:n] {
		likes = append(likes, simcore.GeneratedLike{
			AgentHandle: agent.Handle,
			PostID:      post.PostID,
			Explanation: "selected by recency and engagement score",
			Meta:        simcore.GenerationMetadata{CreatedAt: now},
		})
	}
	return likes, nil
}
