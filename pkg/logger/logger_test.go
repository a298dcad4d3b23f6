package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/architeacher/persons/pkg/logger"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		level    string
		expected zerolog.Level
	}{
		{name: "debug", level: logger.LogLevelDebug, expected: zerolog.DebugLevel},
		{name: "info", level: logger.LogLevelInfo, expected: zerolog.InfoLevel},
		{name: "warning alias", level: logger.LogLevelWarning, expected: zerolog.WarnLevel},
		{name: "mixed case with spaces", level: " ERROR ", expected: zerolog.ErrorLevel},
		{name: "unknown defaults to info", level: "verbose", expected: zerolog.InfoLevel},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.expected, logger.ParseLevel(tc.level))
		})
	}
}

func TestNewWithWriter_JSONRespectsLevel(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := logger.NewWithWriter(logger.LogLevelWarn, logger.JSONLoggingFormat, buf)

	log.Info().Msg("hidden")
	require.Zero(t, buf.Len())

	log.Warn().Msg("shown")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "shown", entry["message"])
	require.Contains(t, entry, "time")
}

func TestWithContext(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		ctx      func() context.Context
		expected map[string]string
		absent   []string
	}{
		{
			name: "adds request id and user login",
			ctx: func() context.Context {
				ctx := logger.WithRequestID(context.Background(), "req-123")

				return logger.WithUserLogin(ctx, "admin")
			},
			expected: map[string]string{"request_id": "req-123", "user_login": "admin"},
		},
		{
			name:   "empty context adds nothing",
			ctx:    context.Background,
			absent: []string{"request_id", "user_login", "trace_id"},
		},
		{
			name: "empty values are skipped",
			ctx: func() context.Context {
				return logger.WithUserLogin(logger.WithRequestID(context.Background(), ""), "")
			},
			absent: []string{"request_id", "user_login"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			buf := &bytes.Buffer{}
			log := logger.NewBufferedTestLogger(buf)

			l := log.WithContext(tc.ctx())
			l.Info().Msg("test")

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

			for key, value := range tc.expected {
				require.Equal(t, value, entry[key])
			}

			for _, key := range tc.absent {
				require.NotContains(t, entry, key)
			}
		})
	}
}

func TestUserLogin(t *testing.T) {
	t.Parallel()

	_, ok := logger.UserLogin(context.Background())
	require.False(t, ok)

	login, ok := logger.UserLogin(logger.WithUserLogin(context.Background(), "jdoe"))
	require.True(t, ok)
	require.Equal(t, "jdoe", login)
}
