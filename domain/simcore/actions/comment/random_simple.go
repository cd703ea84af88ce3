// Package comment implements the reference comment-generation algorithm
// (spec §4.6).
package comment

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"sort"
	"time"

	"github.com/socialsim/engine/domain/simcore"
)

// CommentProbability is the per-candidate gate probability.
const CommentProbability = 0.1

// TopK bounds how many top-recency candidates are eligible to comment on.
const TopK = 5

// RandomSimple picks the TopK most recent candidates and gates each
// behind a probability threshold, emitting a templated comment (spec
// §4.6: "random-simple" variant). The RNG is seeded from the agent
// handle for reproducibility.
func RandomSimple(_ context.Context, agent simcore.Agent, candidates []simcore.Post, _ map[string]any) ([]simcore.GeneratedComment, error) {
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

	n := TopK
	if n > len(ranked) {
		n = len(ranked)
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(agent.Handle))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	now := time.Now()
	comments := make([]simcore.GeneratedComment, 0, n)
	for _, post := range ranked[:n] {
		if rng.Float64() >= CommentProbability {
			continue
		}
		comments = append(comments, simcore.GeneratedComment{
			AgentHandle: agent.Handle,
			PostID:      post.PostID,
			Text:        fmt.Sprintf("Interesting take, %s.", post.AuthorHandle),
			Explanation: "passed random engagement gate",
			Meta:        simcore.GenerationMetadata{CreatedAt: now},
		})
	}
	return comments, nil
}
