package schema

import (
	"testing"

	"entity-sync/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStartupPolicy(t *testing.T) {
	tests := []struct {
		policy  string
		want    reconcile.Policy
		enabled bool
		wantErr bool
	}{
		{policy: "", enabled: false},
		{policy: "None", enabled: false},
		{policy: "validate", want: reconcile.Validate, enabled: true},
		{policy: "create-and-track-for-drop", want: reconcile.CreateAndTrackForDrop, enabled: true},
		{policy: "recreate", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.policy, func(t *testing.T) {
			got, enabled, err := Config{Policy: tt.policy}.StartupPolicy()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.enabled, enabled)
			assert.Equal(t, tt.want, got)
		})
	}
}
