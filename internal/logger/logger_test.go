package logger

import (
	"testing"

	"minecraft-store/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Log
		wantErr bool
	}{
		{name: "json info", cfg: config.Log{Level: "info", Format: "json"}},
		{name: "console debug", cfg: config.Log{Level: "debug", Format: "console"}},
		{name: "bad level", cfg: config.Log{Level: "loud", Format: "json"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestNewRespectsLevel(t *testing.T) {
	l, err := New(config.Log{Level: "warn", Format: "json"})
	require.NoError(t, err)

	assert.False(t, l.Core().Enabled(zap.InfoLevel))
	assert.True(t, l.Core().Enabled(zap.WarnLevel))
}
