package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInit_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(&Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "eidos-nft",
		Environment: "test",
		Output:      &buf,
	}))

	Info("listing accepted", zap.String("key", "0xaa:1"))
	require.NoError(t, Sync())

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "listing accepted", entry["msg"])
	assert.Equal(t, "eidos-nft", entry["service"])
	assert.Equal(t, "test", entry["env"])
	assert.Equal(t, "0xaa:1", entry["key"])
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(&Config{Level: "info", Output: &buf}))

	Debug("hidden")
	assert.Empty(t, buf.String())

	SetLevel("debug")
	Debug("visible")
	assert.Contains(t, buf.String(), "visible")

	// 非法级别保持不变
	SetLevel("nonsense")
	Debug("still visible")
	assert.Contains(t, buf.String(), "still visible")
}

func TestWithContext(t *testing.T) {
	assert.NotNil(t, WithContext(nil)) //nolint:staticcheck
	assert.Equal(t, L(), WithContext(context.Background()))

	ctx := NewContext(context.Background(), zap.String("trace_id", "abc"))
	assert.NotEqual(t, L(), WithContext(ctx))
}

func TestTruncateSignature(t *testing.T) {
	assert.Equal(t, "0x12", TruncateSignature("0x12"))
	assert.Equal(t, "0x12345678...", TruncateSignature("0x1234567890abcdef"))
}
