package logutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, lvl)

	lvl, err = ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	for _, format := range []string{"", "console", "json"} {
		l, err := New(LogConfig{Level: "warn", Format: format})
		require.NoError(t, err, format)
		assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
	}
	_, err := New(LogConfig{Format: "xml"})
	assert.Error(t, err)
}

func TestGlobalLogger(t *testing.T) {
	defer SetGlobalLogger(nil)

	assert.NotNil(t, GetGlobalLogger())
	l := zap.NewExample()
	SetGlobalLogger(l)
	assert.Same(t, l, GetGlobalLogger())

	SetGlobalLogger(nil)
	assert.NotSame(t, l, GetGlobalLogger())
}
