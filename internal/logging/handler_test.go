package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("apothecary", "1.0.0", "json", &buf)

	logger.Info("potion created", "id", "abc")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "potion created", entry["msg"])
	assert.Equal(t, "apothecary", entry["service"])
	assert.Equal(t, "1.0.0", entry["version"])
	assert.Equal(t, "abc", entry["id"])
	assert.NotContains(t, entry, "request_id")
}

func TestSetup_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("apothecary", "dev", "text", &buf)

	logger.Debug("debug enabled")

	out := buf.String()
	assert.True(t, strings.Contains(out, "level=DEBUG"), out)
	assert.Contains(t, out, "service=apothecary")
}

func TestHandler_RequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("apothecary", "dev", "json", &buf).With("component", "auth")
	ctx := WithRequestID(context.Background(), "req-42")

	logger.InfoContext(ctx, "login")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, "auth", entry["component"])
	assert.Equal(t, "apothecary", entry["service"])
}

func TestWithRequestID_Empty(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, ctx, WithRequestID(ctx, ""))
	assert.Empty(t, RequestID(ctx))
}
