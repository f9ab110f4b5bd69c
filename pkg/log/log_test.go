package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: InfoLevel, JSONOutput: true, Output: &buf})

	Logger.Info().Str("op", "test").Msg("hello")
	out := buf.String()
	assert.Contains(t, out, `"op":"test"`)
	assert.Contains(t, out, `"message":"hello"`)
}

func TestInitLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: WarnLevel, JSONOutput: true, Output: &buf})

	Logger.Info().Msg("dropped")
	Logger.Warn().Msg("kept")
	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "kept")
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: DebugLevel, JSONOutput: true, Output: &buf})

	l := WithComponent("lmapi")
	l.Debug().Msg("request")
	assert.Contains(t, buf.String(), `"component":"lmapi"`)
}

func TestWithResource(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: InfoLevel, JSONOutput: true, Output: &buf})

	l := WithResource("device", "web-01.example.com")
	l.Info().Msg("converging")
	out := buf.String()
	assert.Contains(t, out, `"kind":"device"`)
	assert.Contains(t, out, `"name":"web-01.example.com"`)
}
