// Package actions implements the action-generation pipeline: per-action
// candidate filtering, generator dispatch, invariant enforcement, and
// history recording (spec §4.5, §4.6).
package actions

import (
	"context"
	"fmt"

	"github.com/socialsim/engine/domain/simcore"
)

// LikeGenerator proposes likes from a candidate post list.
type LikeGenerator func(ctx context.Context, agent simcore.Agent, candidates []simcore.Post, config map[string]any) ([]simcore.GeneratedLike, error)

// CommentGenerator proposes comments from a candidate post list.
type CommentGenerator func(ctx context.Context, agent simcore.Agent, candidates []simcore.Post, config map[string]any) ([]simcore.GeneratedComment, error)

// FollowGenerator proposes follows from a candidate post list (the
// target is the author's handle, per spec §4.5 follow_candidates).
type FollowGenerator func(ctx context.Context, agent simcore.Agent, candidates []simcore.Post, config map[string]any) ([]simcore.GeneratedFollow, error)

// Registry dispatches generators by (action kind, algorithm name) and
// resolves per-action algorithm defaults (spec §4.6, §6).
type Registry struct {
	likes    map[string]LikeGenerator
	comments map[string]CommentGenerator
	follows  map[string]FollowGenerator

	defaultAlgorithm map[simcore.ActionKind]string
}

// NewRegistry builds an empty registry with the hard-coded fallback
// defaults from spec §6: deterministic for like, random_simple for
// comment/follow.
func NewRegistry() *Registry {
	return &Registry{
		likes:    make(map[string]LikeGenerator),
		comments: make(map[string]CommentGenerator),
		follows:  make(map[string]FollowGenerator),
		defaultAlgorithm: map[simcore.ActionKind]string{
			simcore.ActionLike:    "deterministic",
			simcore.ActionComment: "random_simple",
			simcore.ActionFollow:  "random_simple",
		},
	}
}

func (r *Registry) RegisterLike(name string, gen LikeGenerator)       { r.likes[name] = gen }
func (r *Registry) RegisterComment(name string, gen CommentGenerator) { r.comments[name] = gen }
func (r *Registry) RegisterFollow(name string, gen FollowGenerator)   { r.follows[name] = gen }

// SetDefaultAlgorithm overrides the fallback algorithm for an action kind,
// e.g. from YAML config under `{action}.default_algorithm` (spec §6).
func (r *Registry) SetDefaultAlgorithm(kind simcore.ActionKind, algorithm string) {
	r.defaultAlgorithm[kind] = algorithm
}

// ResolveAlgorithm applies the resolution order from spec §6: explicit
// argument → configured default → hard-coded fallback.
func (r *Registry) ResolveAlgorithm(kind simcore.ActionKind, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return r.defaultAlgorithm[kind]
}

func (r *Registry) Like(name string) (LikeGenerator, error) {
	gen, ok := r.likes[name]
	if !ok {
		return nil, fmt.Errorf("actions: unknown like algorithm %q", name)
	}
	return gen, nil
}

func (r *Registry) Comment(name string) (CommentGenerator, error) {
	gen, ok := r.comments[name]
	if !ok {
		return nil, fmt.Errorf("actions: unknown comment algorithm %q", name)
	}
	return gen, nil
}

func (r *Registry) Follow(name string) (FollowGenerator, error) {
	gen, ok := r.follows[name]
	if !ok {
		return nil, fmt.Errorf("actions: unknown follow algorithm %q", name)
	}
	return gen, nil
}
