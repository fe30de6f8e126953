package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_WithKeepsFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := logger{zap: zap.New(core)}

	l.With(String("request_id", "abc")).Info("order created", Int64("order_id", 7))

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "order created", entries[0].Message)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "abc", ctx["request_id"])
	assert.Equal(t, int64(7), ctx["order_id"])
}

func TestNew_UnknownLevelFallsBackToDebug(t *testing.T) {
	l := New("test", "nonsense")
	assert.NotNil(t, l)
}
