package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger() (*zapLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &zapLogger{
		sugarLogger: zap.New(core).Sugar(),
		cfg:         &ZapConfig{Level: "debug"},
	}, logs
}

func TestZapLogger_WithFields(t *testing.T) {
	l, logs := newObservedLogger()

	ctx := l.WithFields(context.Background(), "event_id", "E1")
	l.Info(ctx, "Ticked", "offered", true)
	l.Info(context.Background(), "Plain")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "Ticked", entries[0].Message)
	assert.Equal(t, map[string]interface{}{"event_id": "E1", "offered": true}, entries[0].ContextMap())
	assert.Empty(t, entries[1].ContextMap())
}

func TestZapLogger_WithFieldsNests(t *testing.T) {
	l, logs := newObservedLogger()

	ctx := l.WithFields(context.Background(), "event_id", "E1")
	ctx = l.WithFields(ctx, "user_id", "A")
	l.Warnf(ctx, "offer %s stale", "o-1")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "offer o-1 stale", entries[0].Message)
	assert.Equal(t, map[string]interface{}{"event_id": "E1", "user_id": "A"}, entries[0].ContextMap())
}
