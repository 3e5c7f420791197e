// internal/logging/logging_test.go
package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want zapcore.Level
	}{
		{name: "production default", cfg: Config{Environment: EnvironmentProduction}, want: zapcore.InfoLevel},
		{name: "development default", cfg: Config{Environment: EnvironmentDevelopment}, want: zapcore.DebugLevel},
		{name: "explicit level", cfg: Config{Environment: EnvironmentLocal, Level: "warn"}, want: zapcore.WarnLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.want-1))
			}
		})
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(Config{Environment: "mars"})
	require.Error(t, err)

	_, err = New(Config{Environment: EnvironmentProduction, Level: "loud"})
	require.Error(t, err)
}
