package common

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "INFO", want: slog.LevelInfo},
		{input: "", want: slog.LevelInfo},
		{input: "warn", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetupLoggerTo(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	t.Run("json output", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, SetupLoggerTo(&buf, "info", "json"))

		LogError(errors.New("boom"), "category save failed", Fields{"category_id": "cat-1"})

		out := buf.String()
		assert.Contains(t, out, `"msg":"category save failed"`)
		assert.Contains(t, out, `"error":"boom"`)
		assert.Contains(t, out, `"category_id":"cat-1"`)
	})

	t.Run("level filters debug", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, SetupLoggerTo(&buf, "warn", "console"))

		slog.Info("hidden")
		slog.Warn("shown")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("invalid format", func(t *testing.T) {
		err := SetupLoggerTo(&bytes.Buffer{}, "info", "xml")
		require.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestUserError(t *testing.T) {
	inner := errors.New("disk full")
	err := NewUserError("could not save category", inner)

	assert.Equal(t, "could not save category: disk full", err.Error())
	assert.ErrorIs(t, err, inner)

	var userErr *UserError
	require.ErrorAs(t, err, &userErr)
	assert.Equal(t, "could not save category", userErr.UserMessage)

	assert.Equal(t, "plain", NewUserError("plain", nil).Error())
}
