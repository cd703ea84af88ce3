// Package follow implements the reference follow-generation algorithm
// (spec §4.6). Follow targets are author handles drawn from the
// candidate feed, per §4.5 follow_candidates.
package follow

import (
	"context"
	"hash/fnv"
	"math/rand"
	"sort"
	"time"

	"github.com/socialsim/engine/domain/simcore"
)

// FollowProbability is the per-candidate-author gate probability.
const FollowProbability = 0.05

// TopK bounds how many distinct candidate authors are eligible to follow.
const TopK = 3

// RandomSimple considers the distinct authors of the TopK most recent
// candidates and gates each behind a probability threshold (spec §4.6).
// Self-follows cannot occur here: candidates are already self-excluded
// upstream by the feed pipeline.
func RandomSimple(_ context.Context, agent simcore.Agent, candidates []simcore.Post, _ map[string]any) ([]simcore.GeneratedFollow, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	ranked := make([]simcore.Post, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		if !ranked[i].CreatedAt.Equal(ranked[j].CreatedAt) {
			return ranked[i].CreatedAt.After(ranked[j].CreatedAt)
		}
		return ranked[i].PostID < ranked[j].PostID
	})

	seenAuthor := make(map[string]struct{})
	var authors []string
	for _, post := range ranked {
		if _, ok := seenAuthor[post.AuthorHandle]; ok {
			continue
		}
		seenAuthor[post.AuthorHandle] = struct{}{}
		authors = append(authors, post.AuthorHandle)
		if len(authors) == TopK {
			break
		}
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(agent.Handle))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	now := time.Now()
	follows := make([]simcore.GeneratedFollow, 0, len(authors))
	for _, author := range authors {
		if rng.Float64() >= FollowProbability {
			continue
		}
		follows = append(follows, simcore.GeneratedFollow{
			AgentHandle: agent.Handle,
			UserID:      author,
			Explanation: "passed random engagement gate",
			Meta:        simcore.GenerationMetadata{CreatedAt: now},
		})
	}
	return follows, nil
}
