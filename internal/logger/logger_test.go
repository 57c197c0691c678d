package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	for _, mode := range []string{"production", "development", ""} {
		l, err := New(mode)
		require.NoError(t, err)
		l.Info("hello", "mode", mode)
	}
}

func TestRedaction(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := FromZap(zap.New(core))

	l.Info("login", "email", "ada@example.com", "password", "hunter22", "jwt_secret", "abc", "Authorization", "Bearer x")
	l.With("access_token", "tok").Warn("child", "count", 3)

	entries := logs.All()
	require.Len(t, entries, 2)

	fields := entries[0].ContextMap()
	assert.Equal(t, "ada@example.com", fields["email"])
	assert.Equal(t, redacted, fields["password"])
	assert.Equal(t, redacted, fields["jwt_secret"])
	assert.Equal(t, redacted, fields["Authorization"])

	child := entries[1].ContextMap()
	assert.Equal(t, redacted, child["access_token"])
	assert.EqualValues(t, 3, child["count"])
}

func TestSanitizeOddKVs(t *testing.T) {
	assert.Equal(t, []any{"a", 1, "dangling"}, sanitizeKVs([]any{"a", 1, "dangling"}))
	assert.Empty(t, sanitizeKVs(nil))
}
