package logging

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "info", "json")
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("container started", zap.String("container", "minio-s1.ws"))
	require.NoError(t, logger.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "container started", entry["msg"])
	assert.Equal(t, "minio-s1.ws", entry["container"])
}

func TestInvalidSettings(t *testing.T) {
	_, err := New(io.Discard, "loud", "console")
	assert.Error(t, err)

	_, err = New(io.Discard, "info", "xml")
	assert.Error(t, err)
}
