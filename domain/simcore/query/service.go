package query

import (
	"context"

	"github.com/socialsim/engine/domain/simcore"
)

// Service is the read-only surface external callers use to inspect runs
// without touching the orchestrator (spec §4.9).
type Service struct {
	runs     RunReader
	metadata TurnMetadataReader
	turnData TurnDataReader
}

func NewService(runs RunReader, metadata TurnMetadataReader, turnData TurnDataReader) *Service {
	return &Service{runs: runs, metadata: metadata, turnData: turnData}
}

func (s *Service) GetRun(ctx context.Context, runID string) (*simcore.Run, error) {
	return s.runs.GetRun(ctx, runID)
}

// ListRuns returns every run, newest first by created_at.
func (s *Service) ListRuns(ctx context.Context) ([]simcore.Run, error) {
	return s.runs.ListRuns(ctx)
}

func (s *Service) GetTurnMetadata(ctx context.Context, runID string, turn int) (*simcore.TurnMetadata, error) {
	return s.metadata.GetTurnMetadata(ctx, runID, turn)
}

// ListTurnMetadata returns a run's turn metadata ascending by turn_number.
func (s *Service) ListTurnMetadata(ctx context.Context, runID string) ([]simcore.TurnMetadata, error) {
	return s.metadata.ListTurnMetadata(ctx, runID)
}

// GetTurnData hydrates the full read view for one turn: every agent's
// feed posts plus the actions generated against them. Returns nil,nil
// when no feeds exist for the turn; raises RunNotFoundError when the
// run itself does not exist (spec §4.9).
func (s *Service) GetTurnData(ctx context.Context, runID string, turn int) (*simcore.TurnData, error) {
	run, err := s.runs.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, simcore.NewRunNotFoundError(runID)
	}

	generatedFeeds, err := s.turnData.GetGeneratedFeedsForTurn(ctx, runID, turn)
	if err != nil {
		return nil, err
	}
	if len(generatedFeeds) == 0 {
		return nil, nil
	}

	unionIDs := make(map[string]struct{})
	for _, feed := range generatedFeeds {
		for _, id := range feed.PostIDs {
			unionIDs[id] = struct{}{}
		}
	}
	ids := make([]string, 0, len(unionIDs))
	for id := range unionIDs {
		ids = append(ids, id)
	}
	posts, err := s.turnData.ReadFeedPostsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]simcore.Post, len(posts))
	for _, post := range posts {
		byID[post.PostID] = post
	}

	feedsByAgent := make(map[string][]simcore.Post, len(generatedFeeds))
	for _, feed := range generatedFeeds {
		agentPosts := make([]simcore.Post, 0, len(feed.PostIDs))
		for _, id := range feed.PostIDs {
			if post, ok := byID[id]; ok {
				agentPosts = append(agentPosts, post)
			}
		}
		feedsByAgent[feed.AgentHandle] = agentPosts
	}

	likes, err := s.turnData.GetLikesForTurn(ctx, runID, turn)
	if err != nil {
		return nil, err
	}
	comments, err := s.turnData.GetCommentsForTurn(ctx, runID, turn)
	if err != nil {
		return nil, err
	}
	follows, err := s.turnData.GetFollowsForTurn(ctx, runID, turn)
	if err != nil {
		return nil, err
	}

	likesByAgent := make(map[string][]simcore.GeneratedLike)
	for _, l := range likes {
		likesByAgent[l.AgentHandle] = append(likesByAgent[l.AgentHandle], l)
	}
	commentsByAgent := make(map[string][]simcore.GeneratedComment)
	for _, c := range comments {
		commentsByAgent[c.AgentHandle] = append(commentsByAgent[c.AgentHandle], c)
	}
	followsByAgent := make(map[string][]simcore.GeneratedFollow)
	for _, f := range follows {
		followsByAgent[f.AgentHandle] = append(followsByAgent[f.AgentHandle], f)
	}

	return &simcore.TurnData{
		RunID:    runID,
		Turn:     turn,
		Feeds:    feedsByAgent,
		Likes:    likesByAgent,
		Comments: commentsByAgent,
		Follows:  followsByAgent,
	}, nil
}
