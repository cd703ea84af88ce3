// Package feeds implements the feed-algorithm registry and the
// per-turn feed generation pipeline (spec §4.4).
package feeds

import (
	"fmt"
	"sort"

	"github.com/socialsim/engine/domain/simcore"
)

// Result is the output of a feed algorithm: an ordered list of post IDs
// bounded by limit (spec §4.4).
type Result struct {
	FeedID      string
	AgentHandle string
	PostIDs     []string
}

// Algorithm is a pure, deterministic function mapping candidates to an
// ordered output: no I/O, same inputs always produce the same output
// (spec §4.4, §8 Determinism).
type Algorithm func(candidates []simcore.Post, agent simcore.Agent, limit int, config map[string]any) (Result, error)

// Registry maps an algorithm name to its implementation. Names are a
// closed set validated against the registry on ingress (spec §9).
type Registry struct {
	algorithms map[string]Algorithm
}

// NewRegistry builds the default registry. "chronological" is required
// (spec §6).
func NewRegistry() *Registry {
	r := &Registry{algorithms: make(map[string]Algorithm)}
	r.Register("chronological", Chronological)
	return r
}

func (r *Registry) Register(name string, alg Algorithm) {
	r.algorithms[name] = alg
}

// Get looks up an algorithm by name. Unknown names are a caller error
// (spec §4.4: "unknown names raise ValueError").
func (r *Registry) Get(name string) (Algorithm, error) {
	alg, ok := r.algorithms[name]
	if !ok {
		return nil, fmt.Errorf("feeds: unknown algorithm %q", name)
	}
	return alg, nil
}

// Chronological sorts candidates by created_at descending (ties by uri
// ascending); config.order = "oldest_first" flips the primary order
// (spec §4.4).
func Chronological(candidates []simcore.Post, agent simcore.Agent, limit int, config map[string]any) (Result, error) {
	sorted := make([]simcore.Post, len(candidates))
	copy(sorted, candidates)

	oldestFirst := false
	if order, ok := config["order"].(string); ok && order == "oldest_first" {
		oldestFirst = true
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if oldestFirst {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.URI < b.URI
	})

	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	postIDs := make([]string, len(sorted))
	for i, p := range sorted {
		postIDs[i] = p.PostID
	}

	return Result{AgentHandle: agent.Handle, PostIDs: postIDs}, nil
}
