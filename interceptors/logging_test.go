package interceptors

import (
	"context"
	"testing"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInterceptorLoggerMapsLevelsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := InterceptorLogger(zap.New(core))
	ctx := context.Background()

	l.Log(ctx, logging.LevelDebug, "hidden", "grpc.method", "Login")
	l.Log(ctx, logging.LevelWarn, "finished call", "grpc.method", "Login", "grpc.code", "Unauthenticated")
	l.Log(ctx, logging.LevelError, "failed call")

	require.Equal(t, 2, logs.Len())
	entries := logs.All()
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, map[string]any{"grpc.method": "Login", "grpc.code": "Unauthenticated"}, entries[0].ContextMap())
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}
