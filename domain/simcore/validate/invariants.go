// Package validate implements the invariant checks the turn orchestrator
// runs before accepting an agent's proposed actions, and the run
// lifecycle's state machine (spec §4.1, §4.7).
package validate

import (
	"context"
	"sort"

	"github.com/socialsim/engine/domain/simcore"
	"github.com/socialsim/engine/domain/simcore/history"
)

// ActionTargets holds the proposed targets for one agent's turn, extracted
// from the three generator outputs.
type ActionTargets struct {
	LikePostIDs    []string
	CommentPostIDs []string
	FollowUserIDs  []string
}

// Invariants checks proposed actions against within-turn duplicates and
// across-turn replays recorded in the history store. It is read-only with
// respect to history; recording happens only after validation passes
// (spec §4.7).
type Invariants struct {
	history history.Store
}

func New(store history.Store) *Invariants {
	return &Invariants{history: store}
}

// Check validates likes/comments/follows for one agent in one turn and
// returns the extracted target key lists for downstream recording.
func (v *Invariants) Check(
	ctx context.Context,
	runID string,
	agentHandle string,
	likes []simcore.GeneratedLike,
	comments []simcore.GeneratedComment,
	follows []simcore.GeneratedFollow,
) (ActionTargets, error) {
	likePostIDs := make([]string, len(likes))
	for i, l := range likes {
		likePostIDs[i] = l.PostID
	}
	commentPostIDs := make([]string, len(comments))
	for i, c := range comments {
		commentPostIDs[i] = c.PostID
	}
	followUserIDs := make([]string, len(follows))
	for i, f := range follows {
		followUserIDs[i] = f.UserID
	}

	if dup := duplicates(likePostIDs); len(dup) > 0 {
		return ActionTargets{}, simcore.NewInvariantViolationError("duplicate", "like", dup)
	}
	if dup := duplicates(commentPostIDs); len(dup) > 0 {
		return ActionTargets{}, simcore.NewInvariantViolationError("duplicate", "comment", dup)
	}
	if dup := duplicates(followUserIDs); len(dup) > 0 {
		return ActionTargets{}, simcore.NewInvariantViolationError("duplicate", "follow", dup)
	}

	if replay, err := v.firstReplay(ctx, runID, agentHandle, likePostIDs, v.history.HasLiked); err != nil {
		return ActionTargets{}, err
	} else if len(replay) > 0 {
		return ActionTargets{}, simcore.NewInvariantViolationError("replay", "like", replay)
	}
	if replay, err := v.firstReplay(ctx, runID, agentHandle, commentPostIDs, v.history.HasCommented); err != nil {
		return ActionTargets{}, err
	} else if len(replay) > 0 {
		return ActionTargets{}, simcore.NewInvariantViolationError("replay", "comment", replay)
	}
	if replay, err := v.firstReplay(ctx, runID, agentHandle, followUserIDs, v.history.HasFollowed); err != nil {
		return ActionTargets{}, err
	} else if len(replay) > 0 {
		return ActionTargets{}, simcore.NewInvariantViolationError("replay", "follow", replay)
	}

	return ActionTargets{
		LikePostIDs:    likePostIDs,
		CommentPostIDs: commentPostIDs,
		FollowUserIDs:  followUserIDs,
	}, nil
}

func (v *Invariants) firstReplay(
	ctx context.Context,
	runID, agentHandle string,
	targets []string,
	has func(ctx context.Context, runID, agentHandle, target string) (bool, error),
) ([]string, error) {
	var replayed []string
	for _, t := range targets {
		seen, err := has(ctx, runID, agentHandle, t)
		if err != nil {
			return nil, err
		}
		if seen {
			replayed = append(replayed, t)
		}
	}
	return replayed, nil
}

// duplicates returns the sorted set of values appearing more than once
// in targets, or nil if there are none.
func duplicates(targets []string) []string {
	counts := make(map[string]int, len(targets))
	for _, t := range targets {
		counts[t]++
	}
	var dups []string
	for t, n := range counts {
		if n > 1 {
			dups = append(dups, t)
		}
	}
	sort.Strings(dups)
	return dups
}
