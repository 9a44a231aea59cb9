package shared

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		debug bool
		want  zerolog.Level
		err   bool
	}{
		{"", false, zerolog.InfoLevel, false},
		{"warn", false, zerolog.WarnLevel, false},
		{"warn", true, zerolog.DebugLevel, false},
		{"loud", false, zerolog.NoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.name, tt.debug)
		if tt.err {
			assert.Error(t, err, tt.name)
			continue
		}
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestSetupSignalHandlerCancel(t *testing.T) {
	ctx, cancel := SetupSignalHandler(zerolog.Nop())
	assert.NoError(t, ctx.Err())
	cancel()
	<-ctx.Done()
}
