package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/socialsim/engine/domain/simcore"
)

func TestCheckTransition(t *testing.T) {
	tests := []struct {
		name    string
		current simcore.RunStatus
		target  simcore.RunStatus
		wantErr bool
	}{
		{"running to completed", simcore.RunStatusRunning, simcore.RunStatusCompleted, false},
		{"running to failed", simcore.RunStatusRunning, simcore.RunStatusFailed, false},
		{"self transition is a no-op", simcore.RunStatusRunning, simcore.RunStatusRunning, false},
		{"completed is terminal", simcore.RunStatusCompleted, simcore.RunStatusRunning, true},
		{"failed is terminal", simcore.RunStatusFailed, simcore.RunStatusCompleted, true},
		{"completed self transition is a no-op", simcore.RunStatusCompleted, simcore.RunStatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckTransition("run-1", tt.current, tt.target)
			if tt.wantErr {
				assert.Error(t, err)
				var invalid *simcore.InvalidTransitionError
				assert.ErrorAs(t, err, &invalid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
