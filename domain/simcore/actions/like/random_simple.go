package like

import (
	"context"
	"hash/fnv"
	"math/rand"
	"sort"
	"time"

	"github.com/socialsim/engine/domain/simcore"
)

// LikeProbability is the per-candidate gate probability for RandomSimple.
const LikeProbability = 0.15

// RandomSimple ranks candidates by score like Deterministic, then gates
// each of the top TopK behind a probability threshold. The RNG is seeded
// from the agent handle so repeated calls with the same agent and
// candidate set are reproducible (spec §4.6: "seeded" random family).
func RandomSimple(_ context.Context, agent simcore.Agent, candidates []simcore.Post, config map[string]any) ([]simcore.GeneratedLike, error) {
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

	rng := rand.New(rand.NewSource(seedFor(agent.Handle)))
	likes := make([]simcore.GeneratedLike, 0, n)
	for _, post := range ranked[:n] {
		if rng.Float64() >= LikeProbability {
			continue
		}
		likes = append(likes, simcore.GeneratedLike{
			AgentHandle: agent.Handle,
			PostID:      post.PostID,
			Explanation: "passed random engagement gate",
			Meta:        simcore.GenerationMetadata{CreatedAt: now},
		})
	}
	return likes, nil
}

func seedFor(handle string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(handle))
	return int64(h.Sum64())
}
