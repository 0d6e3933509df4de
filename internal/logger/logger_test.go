package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	for _, tc := range []struct {
		format string
		level  string
		want   zapcore.Level
	}{
		{"json", "debug", zapcore.DebugLevel},
		{"text", "info", zapcore.InfoLevel},
		{"json", "warn", zapcore.WarnLevel},
		{"text", "error", zapcore.ErrorLevel},
	} {
		t.Run(tc.format+"/"+tc.level, func(t *testing.T) {
			l, err := NewLogger(tc.format, tc.level)
			require.NoError(t, err)
			require.True(t, l.Core().Enabled(tc.want))
			require.False(t, l.Core().Enabled(tc.want-1))
		})
	}
}

func TestNewLoggerNone(t *testing.T) {
	l, err := NewLogger("json", "none")
	require.NoError(t, err)
	require.False(t, l.Core().Enabled(zapcore.FatalLevel))
}

func TestNewLoggerInvalid(t *testing.T) {
	_, err := NewLogger("json", "verbose")
	require.Error(t, err)

	_, err = NewLogger("xml", "info")
	require.Error(t, err)
}
