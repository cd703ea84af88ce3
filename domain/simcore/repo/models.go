// Package repo implements the bun-backed repository ports the
// orchestrator and pipelines depend on (spec §4.8, §6).
package repo

import (
	"time"

	"github.com/uptrace/bun"
)

type runModel struct {
	bun.BaseModel `bun:"table:runs"`

	RunID               string         `bun:"run_id,pk"`
	CreatedAt           time.Time      `bun:"created_at"`
	TotalTurns          int            `bun:"total_turns"`
	TotalAgents         int            `bun:"total_agents"`
	FeedAlgorithm       string         `bun:"feed_algorithm"`
	FeedAlgorithmConfig map[string]any `bun:"feed_algorithm_config"`
	MetricKeys          []string       `bun:"metric_keys"`
	StartedAt           time.Time      `bun:"started_at"`
	Status              string         `bun:"status"`
	CompletedAt         *time.Time     `bun:"completed_at"`
}

type agentModel struct {
	bun.BaseModel `bun:"table:agents"`

	AgentID     string    `bun:"agent_id,pk"`
	Handle      string    `bun:"handle"`
	DisplayName string    `bun:"display_name"`
	Source      string    `bun:"source"`
	CreatedAt   time.Time `bun:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at"`
}

type postModel struct {
	bun.BaseModel `bun:"table:posts"`

	PostID        string    `bun:"post_id,pk"`
	Source        string    `bun:"source"`
	URI           string    `bun:"uri"`
	AuthorHandle  string    `bun:"author_handle"`
	AuthorDisplay string    `bun:"author_display"`
	Text          string    `bun:"text"`
	LikeCount     int       `bun:"like_count"`
	BookmarkCount int       `bun:"bookmark_count"`
	QuoteCount    int       `bun:"quote_count"`
	ReplyCount    int       `bun:"reply_count"`
	RepostCount   int       `bun:"repost_count"`
	CreatedAt     time.Time `bun:"created_at"`
}

type turnMetadataModel struct {
	bun.BaseModel `bun:"table:turn_metadata"`

	RunID        string         `bun:"run_id,pk"`
	TurnNumber   int            `bun:"turn_number,pk"`
	TotalActions map[string]int `bun:"total_actions"`
	CreatedAt    time.Time      `bun:"created_at"`
}

type turnMetricsModel struct {
	bun.BaseModel `bun:"table:turn_metrics"`

	RunID      string             `bun:"run_id,pk"`
	TurnNumber int                `bun:"turn_number,pk"`
	Metrics    map[string]float64 `bun:"metrics"`
	CreatedAt  time.Time          `bun:"created_at"`
}

type runMetricsModel struct {
	bun.BaseModel `bun:"table:run_metrics"`

	RunID     string             `bun:"run_id,pk"`
	Metrics   map[string]float64 `bun:"metrics"`
	CreatedAt time.Time          `bun:"created_at"`
}

type generatedFeedModel struct {
	bun.BaseModel `bun:"table:generated_feeds"`

	FeedID      string    `bun:"feed_id"`
	RunID       string    `bun:"run_id,pk"`
	TurnNumber  int       `bun:"turn_number,pk"`
	AgentHandle string    `bun:"agent_handle,pk"`
	PostIDs     []string  `bun:"post_ids"`
	CreatedAt   time.Time `bun:"created_at"`
}

type likeModel struct {
	bun.BaseModel `bun:"table:likes"`

	ID                     string     `bun:"like_id,pk"`
	RunID                  string     `bun:"run_id"`
	TurnNumber             int        `bun:"turn_number"`
	AgentHandle            string     `bun:"agent_handle"`
	PostID                 string     `bun:"post_id"`
	Explanation            string     `bun:"explanation"`
	ModelUsed              *string    `bun:"model_used"`
	GenerationMetadataJSON []byte     `bun:"generation_metadata_json"`
	GenerationCreatedAt    *time.Time `bun:"generation_created_at"`
	CreatedAt              time.Time  `bun:"created_at"`
}

type commentModel struct {
	bun.BaseModel `bun:"table:comments"`

	ID                     string     `bun:"comment_id,pk"`
	RunID                  string     `bun:"run_id"`
	TurnNumber             int        `bun:"turn_number"`
	AgentHandle            string     `bun:"agent_handle"`
	PostID                 string     `bun:"post_id"`
	Text                   string     `bun:"text"`
	Explanation            string     `bun:"explanation"`
	ModelUsed              *string    `bun:"model_used"`
	GenerationMetadataJSON []byte     `bun:"generation_metadata_json"`
	GenerationCreatedAt    *time.Time `bun:"generation_created_at"`
	CreatedAt              time.Time  `bun:"created_at"`
}

type followModel struct {
	bun.BaseModel `bun:"table:follows"`

	ID                     string     `bun:"follow_id,pk"`
	RunID                  string     `bun:"run_id"`
	TurnNumber             int        `bun:"turn_number"`
	AgentHandle            string     `bun:"agent_handle"`
	UserID                 string     `bun:"user_id"`
	Explanation            string     `bun:"explanation"`
	ModelUsed              *string    `bun:"model_used"`
	GenerationMetadataJSON []byte     `bun:"generation_metadata_json"`
	GenerationCreatedAt    *time.Time `bun:"generation_created_at"`
	CreatedAt              time.Time  `bun:"created_at"`
}
