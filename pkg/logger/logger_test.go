package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_LevelParsing(t *testing.T) {
	t.Run("known level", func(t *testing.T) {
		_ = New(Config{Level: "debug"})
		assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		_ = New(Config{Level: "loud"})
		assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	})

	t.Run("empty level falls back to info", func(t *testing.T) {
		_ = New(Config{})
		assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	})
}

func TestComponent_TagsEveryLine(t *testing.T) {
	var buf bytes.Buffer
	root := zerolog.New(&buf)

	l := Component(root, "screener")
	l.Info().Msg("run complete")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "screener", line["component"])
	assert.Equal(t, "run complete", line["message"])
}
