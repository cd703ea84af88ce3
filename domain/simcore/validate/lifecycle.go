package validate

import "github.com/socialsim/engine/domain/simcore"

// transitions encodes the run lifecycle state machine (spec §4.1). A
// missing entry for (current) means current is terminal: no transition to
// another status is valid from it. Self-transitions are accepted by
// CheckTransition before this table is consulted.
var transitions = map[simcore.RunStatus][]simcore.RunStatus{
	simcore.RunStatusRunning: {simcore.RunStatusCompleted, simcore.RunStatusFailed},
}

// CheckTransition validates a lifecycle transition. Self-transitions are
// no-ops (nil error, not an error); COMPLETED and FAILED are terminal.
func CheckTransition(runID string, current, target simcore.RunStatus) error {
	if current == target {
		return nil
	}

	valid, ok := transitions[current]
	if !ok {
		return simcore.NewInvalidTransitionError(runID, current, target, nil)
	}
	for _, v := range valid {
		if v == target {
			return nil
		}
	}
	return simcore.NewInvalidTransitionError(runID, current, target, valid)
}
