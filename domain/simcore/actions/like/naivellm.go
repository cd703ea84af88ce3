package like

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/socialsim/engine/domain/simcore"
	"github.com/socialsim/engine/pkg/llmpolicy"
)

// llmResponse is the structured shape requested from the completion
// call: a flat list of post IDs the agent chooses to like.
type llmResponse struct {
	PostIDs []string `json:"post_ids"`
}

var llmResponseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"post_ids": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
	},
	Required: []string{"post_ids"},
}

// NewNaiveLLM returns a like generator that formulates a prompt containing
// the candidate list and parses a structured reply (spec §4.6 LLM-backed
// variant). It enforces the generator contract itself: only candidate
// targets, duplicate IDs collapsed, stable sorted output, even though the
// model is non-deterministic. With no candidates it logs and returns no
// likes without calling the model.
func NewNaiveLLM(client *llmpolicy.Client) func(ctx context.Context, agent simcore.Agent, candidates []simcore.Post, config map[string]any) ([]simcore.GeneratedLike, error) {
	return func(ctx context.Context, agent simcore.Agent, candidates []simcore.Post, config map[string]any) ([]simcore.GeneratedLike, error) {
		if len(candidates) == 0 {
			slog.InfoContext(ctx, "like.naivellm: no candidates, skipping completion", slog.String("agent_handle", agent.Handle))
			return nil, nil
		}

		systemPrompt := "You decide which posts a social media persona would like. " +
			"Respond only with post_ids drawn from the candidate list."
		userPrompt := buildPrompt(agent, candidates)

		raw, err := client.CompleteStructured(ctx, systemPrompt, userPrompt, llmResponseSchema)
		if err != nil {
			return nil, err
		}

		var parsed llmResponse
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			return nil, fmt.Errorf("like.naivellm: parse response: %w", err)
		}

		valid := make(map[string]struct{}, len(candidates))
		for _, c := range candidates {
			valid[c.PostID] = struct{}{}
		}

		seen := make(map[string]struct{}, len(parsed.PostIDs))
		var accepted []string
		for _, id := range parsed.PostIDs {
			if _, ok := valid[id]; !ok {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			accepted = append(accepted, id)
		}
		sort.Strings(accepted)

		now := time.Now()
		likes := make([]simcore.GeneratedLike, 0, len(accepted))
		for _, id := range accepted {
			likes = append(likes, simcore.GeneratedLike{
				AgentHandle: agent.Handle,
				PostID:      id,
				Explanation: "selected by language-model policy",
				Meta:        simcore.GenerationMetadata{ModelUsed: client.Model(), CreatedAt: now},
			})
		}
		return likes, nil
	}
}

func buildPrompt(agent simcore.Agent, candidates []simcore.Post) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Agent handle: %s\nCandidates:\n", agent.Handle)
	for _, c := range candidates {
		fmt.Fprintf(&b, "- %s: %s\n", c.PostID, c.Text)
	}
	return b.String()
}
