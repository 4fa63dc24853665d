package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriterAddsServiceFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "orders", "debug")

	log.Debug("order created", "action", "create_order", "request_id", "abc")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "orders", entry["service"])
	assert.Equal(t, "create_order", entry["action"])
	assert.Equal(t, "abc", entry["request_id"])
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Contains(t, entry, "hostname")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "orders", "warn")

	log.Info("dropped")
	assert.Zero(t, buf.Len())

	log.Warn("kept")
	assert.NotZero(t, buf.Len())
}
