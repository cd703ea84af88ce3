// Package simcore implements the deterministic multi-agent simulation
// engine: run/turn orchestration, feed and action generation, invariant
// enforcement, and the persistence contracts the orchestrator depends on.
package simcore

import (
	"fmt"

	"github.com/socialsim/engine/pkg/apperror"
)

// InvalidInputError is raised for malformed inputs (empty/negative run_id,
// turn_number, num_agents, metric_keys) before any write occurs.
type InvalidInputError struct {
	Field string
	Value any
	App   *apperror.Error
}

func NewInvalidInputError(field string, value any) *InvalidInputError {
	return &InvalidInputError{
		Field: field,
		Value: value,
		App:   apperror.New(400, "invalid_input", fmt.Sprintf("invalid value for %s", field)),
	}
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s=%v", e.Field, e.Value)
}

func (e *InvalidInputError) Unwrap() error { return e.App }

// RunNotFoundError is raised when a lookup by run_id misses.
type RunNotFoundError struct {
	RunID string
	App   *apperror.Error
}

func NewRunNotFoundError(runID string) *RunNotFoundError {
	return &RunNotFoundError{RunID: runID, App: apperror.NewNotFound("run", runID)}
}

func (e *RunNotFoundError) Error() string { return fmt.Sprintf("run not found: %s", e.RunID) }
func (e *RunNotFoundError) Unwrap() error { return e.App }

// InvalidTransitionError is raised when a lifecycle transition is not
// reachable from the run's current status.
type InvalidTransitionError struct {
	RunID            string
	Current          RunStatus
	Target           RunStatus
	ValidTransitions []RunStatus
	App              *apperror.Error
}

func NewInvalidTransitionError(runID string, current, target RunStatus, valid []RunStatus) *InvalidTransitionError {
	return &InvalidTransitionError{
		RunID:            runID,
		Current:          current,
		Target:           target,
		ValidTransitions: valid,
		App: apperror.New(409, "invalid_transition",
			fmt.Sprintf("cannot transition run %s from %s to %s", runID, current, target)),
	}
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition for run %s: %s -> %s (valid: %v)", e.RunID, e.Current, e.Target, e.ValidTransitions)
}
func (e *InvalidTransitionError) Unwrap() error { return e.App }

// RunCreationError is raised when the initial run-creation write fails; no
// run_id was ever assigned.
type RunCreationError struct {
	Cause error
	App   *apperror.Error
}

func NewRunCreationError(cause error) *RunCreationError {
	return &RunCreationError{Cause: cause, App: apperror.New(500, "run_creation_failed", "failed to create run").WithInternal(cause)}
}

func (e *RunCreationError) Error() string { return fmt.Sprintf("run creation failed: %v", e.Cause) }
func (e *RunCreationError) Unwrap() error { return e.Cause }

// RunStatusUpdateError is raised when a status write fails after the
// retry budget (3 retries after the first attempt) is exhausted.
type RunStatusUpdateError struct {
	RunID  string
	Target RunStatus
	Cause  error
	App    *apperror.Error
}

func NewRunStatusUpdateError(runID string, target RunStatus, cause error) *RunStatusUpdateError {
	return &RunStatusUpdateError{
		RunID: runID, Target: target, Cause: cause,
		App: apperror.New(500, "run_status_update_failed", "failed to update run status").WithInternal(cause),
	}
}

func (e *RunStatusUpdateError) Error() string {
	return fmt.Sprintf("failed to update run %s to %s: %v", e.RunID, e.Target, e.Cause)
}
func (e *RunStatusUpdateError) Unwrap() error { return e.Cause }

// DuplicateTurnMetadataError signals a re-write of an existing
// (run_id, turn_number) metadata row. Callers absorb this as idempotent
// success rather than surfacing it as a failure.
type DuplicateTurnMetadataError struct {
	RunID string
	Turn  int
}

func NewDuplicateTurnMetadataError(runID string, turn int) *DuplicateTurnMetadataError {
	return &DuplicateTurnMetadataError{RunID: runID, Turn: turn}
}

func (e *DuplicateTurnMetadataError) Error() string {
	return fmt.Sprintf("turn metadata already exists for run %s turn %d", e.RunID, e.Turn)
}

// InsufficientAgentsError is raised when the agent factory returns fewer
// agents than requested.
type InsufficientAgentsError struct {
	Requested int
	Available int
	App       *apperror.Error
}

func NewInsufficientAgentsError(requested, available int) *InsufficientAgentsError {
	return &InsufficientAgentsError{
		Requested: requested, Available: available,
		App: apperror.New(422, "insufficient_agents", fmt.Sprintf("requested %d agents, only %d available", requested, available)),
	}
}

func (e *InsufficientAgentsError) Error() string {
	return fmt.Sprintf("insufficient agents: requested %d, available %d", e.Requested, e.Available)
}
func (e *InsufficientAgentsError) Unwrap() error { return e.App }

// SimulationRunFailure wraps any failure during a run after creation. The
// original cause is always chained so error paths never mask it.
type SimulationRunFailure struct {
	RunID string
	Cause error
	App   *apperror.Error
}

func NewSimulationRunFailure(runID string, cause error) *SimulationRunFailure {
	return &SimulationRunFailure{
		RunID: runID, Cause: cause,
		App: apperror.New(500, "simulation_failed", "simulation run failed").WithInternal(cause),
	}
}

func (e *SimulationRunFailure) Error() string {
	if e.RunID == "" {
		return fmt.Sprintf("simulation run failed before run_id was assigned: %v", e.Cause)
	}
	return fmt.Sprintf("simulation run %s failed: %v", e.RunID, e.Cause)
}
func (e *SimulationRunFailure) Unwrap() error { return e.Cause }

// MetricsComputationError is raised when a required metric cannot be
// computed; it fails the run.
type MetricsComputationError struct {
	MetricKey string
	Cause     error
	App       *apperror.Error
}

func NewMetricsComputationError(key string, cause error) *MetricsComputationError {
	return &MetricsComputationError{
		MetricKey: key, Cause: cause,
		App: apperror.New(500, "metrics_computation_failed", fmt.Sprintf("failed to compute metric %q", key)).WithInternal(cause),
	}
}

func (e *MetricsComputationError) Error() string {
	return fmt.Sprintf("failed to compute metric %q: %v", e.MetricKey, e.Cause)
}
func (e *MetricsComputationError) Unwrap() error { return e.Cause }

// EmptyFeedThresholdError is raised when more than 25% of agents received
// no feed in a turn — treated as a systemic failure of the feed pipeline.
type EmptyFeedThresholdError struct {
	RunID           string
	Turn            int
	WithoutFeeds    int
	TotalAgents     int
	App             *apperror.Error
}

func NewEmptyFeedThresholdError(runID string, turn, withoutFeeds, total int) *EmptyFeedThresholdError {
	return &EmptyFeedThresholdError{
		RunID: runID, Turn: turn, WithoutFeeds: withoutFeeds, TotalAgents: total,
		App: apperror.New(500, "empty_feed_threshold_exceeded",
			fmt.Sprintf("%d/%d agents received no feed in turn %d, exceeding the 25%% threshold", withoutFeeds, total, turn)),
	}
}

func (e *EmptyFeedThresholdError) Error() string {
	return fmt.Sprintf("run %s turn %d: %d/%d agents without feeds exceeds 25%% threshold", e.RunID, e.Turn, e.WithoutFeeds, e.TotalAgents)
}
func (e *EmptyFeedThresholdError) Unwrap() error { return e.App }

// DuplicateHandleError is raised when an AgentFactory returns agents
// whose handles are not all unique (spec §4.2, §6 HANDLE_ALREADY_EXISTS).
type DuplicateHandleError struct {
	Handle string
	App    *apperror.Error
}

func NewDuplicateHandleError(handle string) *DuplicateHandleError {
	return &DuplicateHandleError{
		Handle: handle,
		App:    apperror.New(409, "handle_already_exists", fmt.Sprintf("duplicate agent handle %q", handle)),
	}
}

func (e *DuplicateHandleError) Error() string { return fmt.Sprintf("duplicate agent handle: %s", e.Handle) }
func (e *DuplicateHandleError) Unwrap() error  { return e.App }

// InvariantViolationError is raised by the invariant validator on
// within-turn duplicates or across-turn replays.
type InvariantViolationError struct {
	Kind    string // "duplicate" or "replay"
	Action  string // "like", "comment", "follow"
	Targets []string
	App     *apperror.Error
}

func NewInvariantViolationError(kind, action string, targets []string) *InvariantViolationError {
	return &InvariantViolationError{
		Kind: kind, Action: action, Targets: targets,
		App: apperror.New(422, "invariant_violation",
			fmt.Sprintf("%s %s violation: %v", action, kind, targets)),
	}
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("%s %s invariant violated for targets %v", e.Action, e.Kind, e.Targets)
}
func (e *InvariantViolationError) Unwrap() error { return e.App }
