package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed(lvl zapcore.Level) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(lvl)
	return &zapLogger{l: zap.New(core)}, logs
}

func TestFieldsAreAttached(t *testing.T) {
	logger, logs := observed(zapcore.DebugLevel)

	logger.WithFields(Fields{"component": "vad"}).Info("Segmented", Fields{"segments": 3})

	require.Equal(t, 1, logs.Len())
	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, "vad", ctx["component"])
	assert.EqualValues(t, 3, ctx["segments"])
}

func TestErrorCarriesCause(t *testing.T) {
	logger, logs := observed(zapcore.DebugLevel)

	logger.Error(errors.New("boom"), "ffmpeg failed")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, "boom", entry.ContextMap()["error"])
}

func TestLevelFiltering(t *testing.T) {
	logger, logs := observed(zapcore.WarnLevel)

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "shown", logs.All()[0].Message)
}

func TestSetLevel(t *testing.T) {
	defer SetLevel("info")

	SetLevel("debug")
	assert.Equal(t, zapcore.DebugLevel, level.Level())

	SetLevel("nonsense")
	assert.Equal(t, zapcore.InfoLevel, level.Level())
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	logger.WithFields(Fields{"a": 1}).Error(nil, "ignored")
}
