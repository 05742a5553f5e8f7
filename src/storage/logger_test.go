package storage

import (
	"BikeSharing/src/config"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) (*Logger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.log")
	logger, err := NewLogger(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = logger.Close() })
	return logger, path
}

func readLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		entry := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestLogger_WritesJSONLines(t *testing.T) {
	logger, path := newTestLogger(t)

	logger.Info("dataset loaded")
	logger.Error("reload failed")
	logger.Fatal("still running")

	lines := readLines(t, path)
	require.Len(t, lines, 3)
	assert.Equal(t, "info", lines[0]["level"])
	assert.Equal(t, "dataset loaded", lines[0]["message"])
	assert.Contains(t, lines[0], "time")
	assert.Equal(t, "error", lines[1]["level"])
	assert.Equal(t, "fatal", lines[2]["level"])
}

func TestLogger_LevelFilter(t *testing.T) {
	logger, path := newTestLogger(t)
	logger.SetLevel(WARNING)

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warning("shown")

	lines := readLines(t, path)
	require.Len(t, lines, 1)
	assert.Equal(t, "warn", lines[0]["level"])
}

func TestLogger_SubscribeAndTee(t *testing.T) {
	logger, _ := newTestLogger(t)
	var tee bytes.Buffer
	logger.Tee(&tee)

	ch := logger.Subscribe()
	logger.Info("hello subscribers")

	select {
	case msg := <-ch:
		assert.Contains(t, msg, "hello subscribers")
		assert.False(t, strings.HasSuffix(msg, "\n"))
	case <-time.After(time.Second):
		t.Fatal("no log entry delivered to subscriber")
	}
	assert.Contains(t, tee.String(), "hello subscribers")

	logger.Unsubscribe(ch)
	logger.Info("after unsubscribe")
	select {
	case msg := <-ch:
		t.Fatalf("unexpected entry after unsubscribe: %s", msg)
	default:
	}
}

func TestLogger_CheckRotate(t *testing.T) {
	logger, path := newTestLogger(t)
	cfg, _ := config.Default()
	cfg.LogMaxSize = "1 * 10"

	logger.Info("this line is longer than ten bytes")
	require.NoError(t, logger.CheckRotate(cfg))

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(path), "app.*.log"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	logger.Info("fresh file")
	lines := readLines(t, path)
	require.Len(t, lines, 1)
	assert.Equal(t, "fresh file", lines[0]["message"])
}

func TestLogger_RotateRenameFailureKeepsWriting(t *testing.T) {
	logger, path := newTestLogger(t)
	cfg, _ := config.Default()
	cfg.LogMaxSize = "1 * 10"
	logger.Info("this line is longer than ten bytes")

	// 轮转目标名被非空目录占用, 改名失败
	now := time.Now()
	for i := -1; i <= 5; i++ {
		name := "app." + now.Add(time.Duration(i)*time.Second).Format("20060102150405") + ".log"
		require.NoError(t, os.MkdirAll(filepath.Join(filepath.Dir(path), name, "keep"), 0o755))
	}
	assert.Error(t, logger.CheckRotate(cfg))

	logger.Info("still writing")
	lines := readLines(t, path)
	require.Len(t, lines, 2)
	assert.Equal(t, "still writing", lines[1]["message"])
}

func TestLogger_Reopen(t *testing.T) {
	logger, _ := newTestLogger(t)
	other := filepath.Join(t.TempDir(), "other.log")

	require.NoError(t, logger.Reopen(other))
	logger.Info("moved")

	lines := readLines(t, other)
	require.Len(t, lines, 1)
}

func TestEval(t *testing.T) {
	n, err := eval("10 * 1024 * 1024")
	require.NoError(t, err)
	assert.Equal(t, int64(10*1024*1024), n)

	_, err = eval("ten megabytes")
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARNING, ParseLevel("warn"))
	assert.Equal(t, ERROR, ParseLevel(" ERROR "))
	assert.Equal(t, INFO, ParseLevel("verbose"))
	assert.Equal(t, "WARNING", WARNING.String())
}
