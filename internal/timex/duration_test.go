package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"string hours", `"168h"`, 168 * time.Hour, false},
		{"string minutes", `"15m"`, 15 * time.Minute, false},
		{"nanoseconds", `1000000000`, time.Second, false},
		{"bad string", `"week"`, 0, true},
		{"bool", `true`, 0, true},
		{"garbage", `{`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration)
		})
	}
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Duration{Duration: 90 * time.Minute})
	require.NoError(t, err)
	assert.JSONEq(t, `"1h30m0s"`, string(b))
}
