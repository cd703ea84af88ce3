package actions

import (
	"context"

	"github.com/socialsim/engine/domain/simcore"
	"github.com/socialsim/engine/domain/simcore/history"
	"github.com/socialsim/engine/domain/simcore/validate"
)

// Config selects, per action kind, which algorithm to dispatch to and
// any algorithm-specific config map (spec §4.6, §6).
type Config struct {
	LikeAlgorithm    string
	CommentAlgorithm string
	FollowAlgorithm  string
	AlgorithmConfig  map[string]any
}

// Result is the accepted output of one agent's turn: every returned
// action has already passed invariant checks and been recorded into
// history.
type Result struct {
	Likes    []simcore.GeneratedLike
	Comments []simcore.GeneratedComment
	Follows  []simcore.GeneratedFollow
}

// Pipeline runs the per-agent per-turn action-generation sequence
// (spec §4.5, §4.6).
type Pipeline struct {
	registry   *Registry
	history    history.Store
	invariants *validate.Invariants
}

func NewPipeline(registry *Registry, store history.Store, invariants *validate.Invariants) *Pipeline {
	return &Pipeline{registry: registry, history: store, invariants: invariants}
}

// Run filters candidates per action type, dispatches the three
// registered generators, enforces invariants, and records accepted
// targets into history. A non-nil error means the caller must fail the
// turn and the run (spec §4.6 step 2).
func (p *Pipeline) Run(ctx context.Context, runID string, agent simcore.Agent, feed []simcore.Post, cfg Config) (Result, error) {
	likeCandidates, err := p.filter(ctx, runID, agent.Handle, feed, p.history.HasLiked, byPostID)
	if err != nil {
		return Result{}, err
	}
	commentCandidates, err := p.filter(ctx, runID, agent.Handle, feed, p.history.HasCommented, byPostID)
	if err != nil {
		return Result{}, err
	}
	followCandidates, err := p.filter(ctx, runID, agent.Handle, feed, p.history.HasFollowed, byAuthorHandle)
	if err != nil {
		return Result{}, err
	}

	likeAlg, err := p.registry.Like(p.registry.ResolveAlgorithm(simcore.ActionLike, cfg.LikeAlgorithm))
	if err != nil {
		return Result{}, err
	}
	commentAlg, err := p.registry.Comment(p.registry.ResolveAlgorithm(simcore.ActionComment, cfg.CommentAlgorithm))
	if err != nil {
		return Result{}, err
	}
	followAlg, err := p.registry.Follow(p.registry.ResolveAlgorithm(simcore.ActionFollow, cfg.FollowAlgorithm))
	if err != nil {
		return Result{}, err
	}

	likes, err := likeAlg(ctx, agent, likeCandidates, cfg.AlgorithmConfig)
	if err != nil {
		return Result{}, err
	}
	comments, err := commentAlg(ctx, agent, commentCandidates, cfg.AlgorithmConfig)
	if err != nil {
		return Result{}, err
	}
	follows, err := followAlg(ctx, agent, followCandidates, cfg.AlgorithmConfig)
	if err != nil {
		return Result{}, err
	}

	if _, err := p.invariants.Check(ctx, runID, agent.Handle, likes, comments, follows); err != nil {
		return Result{}, err
	}

	for _, l := range likes {
		if err := p.history.RecordLike(ctx, runID, agent.Handle, l.PostID); err != nil {
			return Result{}, err
		}
	}
	for _, c := range comments {
		if err := p.history.RecordComment(ctx, runID, agent.Handle, c.PostID); err != nil {
			return Result{}, err
		}
	}
	for _, f := range follows {
		if err := p.history.RecordFollow(ctx, runID, agent.Handle, f.UserID); err != nil {
			return Result{}, err
		}
	}

	return Result{Likes: likes, Comments: comments, Follows: follows}, nil
}

func byPostID(p simcore.Post) string       { return p.PostID }
func byAuthorHandle(p simcore.Post) string { return p.AuthorHandle }

// filter derives a sibling candidate list from the hydrated feed,
// excluding posts whose key already appears in history (spec §4.5).
func (p *Pipeline) filter(
	ctx context.Context,
	runID, agentHandle string,
	feed []simcore.Post,
	has func(ctx context.Context, runID, agentHandle, key string) (bool, error),
	key func(simcore.Post) string,
) ([]simcore.Post, error) {
	candidates := make([]simcore.Post, 0, len(feed))
	for _, post := range feed {
		seen, err := has(ctx, runID, agentHandle, key(post))
		if err != nil {
			return nil, err
		}
		if seen {
			continue
		}
		candidates = append(candidates, post)
	}
	return candidates, nil
}
