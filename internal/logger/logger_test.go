package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":  zapcore.DebugLevel,
		"info":   zapcore.InfoLevel,
		" WARN ": zapcore.WarnLevel,
		"error":  zapcore.ErrorLevel,
		"fatal":  zapcore.FatalLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok, s)
		require.Equal(t, lvl, got)
	}

	got, ok := ParseLogLevel("unknown")
	require.False(t, ok)
	require.Equal(t, zapcore.InfoLevel, got)
}

// TestFromContextFallsBackToGlobal checks that a bare context yields the global logger.
func TestFromContextFallsBackToGlobal(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))
	//nolint:staticcheck // A nil context is handled on purpose.
	require.Same(t, Logger(), FromContext(nil))
}

// TestContextFields checks that WithKV and WithName scope the context logger.
func TestContextFields(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	ctx := ToContext(context.Background(), zap.New(core).Sugar())
	ctx = WithName(ctx, "console")
	ctx = WithKV(ctx, "device", "/dev/ttyACM0")

	InfoKV(ctx, "entry started", "mode", "enter-code")
	Warnf(ctx, "rejected %d", 3)

	entries := logs.All()
	require.Len(t, entries, 2)

	require.Equal(t, "entry started", entries[0].Message)
	require.Equal(t, "console", entries[0].LoggerName)
	fields := entries[0].ContextMap()
	require.Equal(t, "/dev/ttyACM0", fields["device"])
	require.Equal(t, "enter-code", fields["mode"])

	require.Equal(t, zapcore.WarnLevel, entries[1].Level)
	require.Equal(t, "rejected 3", entries[1].Message)
}
