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

func capture(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })
	return logs
}

func TestInfo_WritesFields(t *testing.T) {
	logs := capture(t)
	Info("round started", Fields{"duel": "ABCD1234", "round": 2})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "round started", entries[0].Message)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "ABCD1234", ctx["duel"])
	assert.EqualValues(t, 2, ctx["round"])
}

func TestError_IncludesError(t *testing.T) {
	logs := capture(t)
	Error("persist failed", errors.New("disk full"), nil)
	Warn("unknown status", nil)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "disk full", entries[0].ContextMap()["error"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Empty(t, entries[1].Context)
}

func TestSetLogger_NilSilences(t *testing.T) {
	SetLogger(nil)
	Debug("dropped", Fields{"k": "v"})
	Sync()
}
