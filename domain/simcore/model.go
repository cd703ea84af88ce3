package simcore

import "time"

// MaxPostsPerFeed bounds every generated feed (§3 GeneratedFeed, §6).
const MaxPostsPerFeed = 20

// EmptyFeedThreshold is the fraction of agents-without-feeds above which a
// turn is treated as a systemic feed-pipeline failure (§4.3, §6).
const EmptyFeedThreshold = 0.25

// StatusUpdateMaxRetries is the retry budget for run status writes (§4.1, §5).
const StatusUpdateMaxRetries = 3

// RunStatus is the lifecycle state of a Run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// ActionKind names the three action-generation policies.
type ActionKind string

const (
	ActionLike    ActionKind = "like"
	ActionComment ActionKind = "comment"
	ActionFollow  ActionKind = "follow"
)

// AllActionKinds enumerates every ActionKind.
var AllActionKinds = []ActionKind{ActionLike, ActionComment, ActionFollow}

// PersonaSource distinguishes how an Agent's identity was seeded.
type PersonaSource string

const (
	PersonaSourceUserGenerated PersonaSource = "USER_GENERATED"
	PersonaSourceSyncBluesky   PersonaSource = "SYNC_BLUESKY"
)

// BioSource distinguishes how an AgentBio's text was produced.
type BioSource string

const (
	BioSourceAIGenerated  BioSource = "AI_GENERATED"
	BioSourceUserProvided BioSource = "USER_PROVIDED"
)

// PostSource names where a Post originated; combined with URI it forms
// the canonical post identity "{source}:{uri}".
type PostSource string

const (
	PostSourceBluesky     PostSource = "BLUESKY"
	PostSourceAIGenerated PostSource = "AI_GENERATED"
)

// Run is one end-to-end simulation (§3 Run).
type Run struct {
	RunID               string
	CreatedAt           time.Time
	TotalTurns          int
	TotalAgents         int
	FeedAlgorithm       string
	FeedAlgorithmConfig map[string]any
	MetricKeys          []string
	StartedAt           time.Time
	Status              RunStatus
	CompletedAt         *time.Time
}

// RunConfig is the transient request DTO for starting a run (§3 RunConfig).
type RunConfig struct {
	NumAgents           int
	NumTurns            int
	FeedAlgorithm       string
	FeedAlgorithmConfig map[string]any
	MetricKeys          []string
	ActionAlgorithms    map[ActionKind]string // explicit per-action algorithm override, may be nil
}

// Validate applies the RunConfig field-level checks carried over from
// original_source/simulation/core/models/runs.py.
func (c RunConfig) Validate() error {
	if c.NumAgents <= 0 {
		return NewInvalidInputError("num_agents", c.NumAgents)
	}
	if c.NumTurns <= 0 {
		return NewInvalidInputError("num_turns", c.NumTurns)
	}
	if c.FeedAlgorithm == "" {
		return NewInvalidInputError("feed_algorithm", c.FeedAlgorithm)
	}
	if c.MetricKeys != nil {
		if len(c.MetricKeys) == 0 {
			return NewInvalidInputError("metric_keys", c.MetricKeys)
		}
		for _, k := range c.MetricKeys {
			if k == "" {
				return NewInvalidInputError("metric_keys", c.MetricKeys)
			}
		}
	}
	return nil
}

// DefaultMetricKeys is used when RunConfig.MetricKeys is absent.
var DefaultMetricKeys = []string{"total_likes", "total_comments", "total_follows"}

// Agent is a synthetic user acting under algorithmic policies (§3 Agent).
// Agents are read-only inputs to the engine for the lifetime of a run.
type Agent struct {
	AgentID      string
	Handle       string // normalized: lowercase, leading '@'
	DisplayName  string
	Source       PersonaSource
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AgentBio is a versioned persona text for an agent (§3 AgentBio).
type AgentBio struct {
	AgentID   string
	Text      string
	Source    BioSource
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Post is an immutable (within a run) candidate for feeds (§3 Post).
type Post struct {
	PostID          string // "{source}:{uri}"
	Source          PostSource
	URI             string
	AuthorHandle    string
	AuthorDisplay   string
	Text            string
	LikeCount       int
	BookmarkCount   int
	QuoteCount      int
	ReplyCount      int
	RepostCount     int
	CreatedAt       time.Time
}

// GeneratedFeed is a per-(run, turn, agent) ordered list of post IDs
// (§3 GeneratedFeed). Writes are upsert, keyed by (AgentHandle, RunID, TurnNumber).
type GeneratedFeed struct {
	FeedID      string
	RunID       string
	TurnNumber  int
	AgentHandle string
	PostIDs     []string
	CreatedAt   time.Time
}

// TurnMetadata is written exactly once per (run_id, turn_number) (§3 TurnMetadata).
type TurnMetadata struct {
	RunID        string
	TurnNumber   int
	TotalActions map[ActionKind]int
	CreatedAt    time.Time
}

// TurnMetrics maps metric name to scalar value for one turn (§3 TurnMetrics).
type TurnMetrics struct {
	RunID      string
	TurnNumber int
	Metrics    map[string]float64
	CreatedAt  time.Time
}

// RunMetrics maps metric name to scalar value for a completed run (§3 RunMetrics).
type RunMetrics struct {
	RunID     string
	Metrics   map[string]float64
	CreatedAt time.Time
}

// GenerationMetadata accompanies every generated action (§3 Action records).
type GenerationMetadata struct {
	ModelUsed          string
	GenerationMetadata map[string]any
	CreatedAt          time.Time
}

// GeneratedLike is the output of a like generator.
type GeneratedLike struct {
	AgentHandle string
	PostID      string
	Explanation string
	Meta        GenerationMetadata
}

// GeneratedComment is the output of a comment generator.
type GeneratedComment struct {
	AgentHandle string
	PostID      string
	Text        string
	Explanation string
	Meta        GenerationMetadata
}

// GeneratedFollow is the output of a follow generator.
type GeneratedFollow struct {
	AgentHandle string
	UserID      string
	Explanation string
	Meta        GenerationMetadata
}

// PersistedLike/Comment/Follow add denormalized run/turn/agent keys for
// query; see repo package for the bun models backing these.
type PersistedLike struct {
	ID          string
	RunID       string
	TurnNumber  int
	AgentHandle string
	PostID      string
	Explanation string
	Meta        GenerationMetadata
	CreatedAt   time.Time
}

type PersistedComment struct {
	ID          string
	RunID       string
	TurnNumber  int
	AgentHandle string
	PostID      string
	Text        string
	Explanation string
	Meta        GenerationMetadata
	CreatedAt   time.Time
}

type PersistedFollow struct {
	ID          string
	RunID       string
	TurnNumber  int
	AgentHandle string
	UserID      string
	Explanation string
	Meta        GenerationMetadata
	CreatedAt   time.Time
}

// NormalizeExplanation maps an empty or whitespace-only explanation to a
// placeholder and returns any other explanation unchanged. The repository
// read paths (repo.QueryRepository's GetLikesForTurn, GetCommentsForTurn
// and GetFollowsForTurn) do not call it: they return persisted
// explanations as stored, empty ones included.
func NormalizeExplanation(s string) string {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' {
			return s
		}
	}
	return "No explanation provided."
}

// TurnResult is returned by the turn orchestrator (§4.3).
type TurnResult struct {
	TurnNumber       int
	TotalActions     map[ActionKind]int
	ExecutionTimeMs  int64
}

// TurnData is the hydrated read-side view of one turn (§4.9 GetTurnData).
type TurnData struct {
	RunID   string
	Turn    int
	Feeds   map[string][]Post
	Likes   map[string][]GeneratedLike
	Comments map[string][]GeneratedComment
	Follows map[string][]GeneratedFollow
}
