package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"shop-api/internal/core/config"
)

type bufSyncer struct{ bytes.Buffer }

func (b *bufSyncer) Sync() error { return nil }

func TestBuildJSON(t *testing.T) {
	var out bufSyncer
	l, cleanup := Build(Options{Level: "info", JSON: true, Out: &out})
	l.Debug("hidden")
	l.Info("order created", zap.String("order_id", "o1"))
	cleanup()

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)
	var m map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &m))
	assert.Equal(t, "order created", m["msg"])
	assert.Equal(t, "o1", m["order_id"])
	assert.Contains(t, m, "ts")
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	var out bufSyncer
	l, cleanup := Build(Options{Level: "loud", JSON: true, Out: &out})
	defer cleanup()
	l.Debug("no")
	l.Info("yes")
	assert.NotContains(t, out.String(), `"no"`)
	assert.Contains(t, out.String(), `"yes"`)
}

func TestFromConfigWithRotation(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	l, cleanup := FromConfig(config.Log{
		Level: "info", JSON: true,
		Rotate: config.Rotate{Enable: true, Filename: file, MaxSizeMB: 1},
	})
	l.Info("to file")
	cleanup()
	assert.FileExists(t, file)
}

func TestToWriter(t *testing.T) {
	var out bufSyncer
	l, cleanup := Build(Options{Level: "debug", JSON: true, Out: &out})
	defer cleanup()
	w := ToWriter(l, zapcore.WarnLevel)
	_, err := fmt.Fprintln(w, "slow query")
	require.NoError(t, err)
	assert.Contains(t, out.String(), `"level":"warn"`)
	assert.Contains(t, out.String(), `"msg":"slow query"`)
}
