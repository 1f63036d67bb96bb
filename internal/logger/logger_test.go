package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var entries []map[string]any
	for line := range strings.SplitSeq(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), "line: %s", line)
		entries = append(entries, entry)
	}
	return entries
}

func TestSlogLogger_Levels(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		level     LogLevel
		emit      func(Logger)
		wantLevel string
		wantLine  bool
	}{
		{"debug hidden at info", LogLevelInfo, func(l Logger) { l.Debug("msg") }, "", false},
		{"info shown at info", LogLevelInfo, func(l Logger) { l.Info("msg") }, "INFO", true},
		{"warn shown at info", LogLevelInfo, func(l Logger) { l.Warn("msg") }, "WARN", true},
		{"info hidden at error", LogLevelError, func(l Logger) { l.Info("msg") }, "", false},
		{"error always shown", LogLevelError, func(l Logger) { l.Error("msg") }, "ERROR", true},
		{"trace shown at trace", LogLevelTrace, func(l Logger) { l.Trace("msg") }, "TRACE", true},
		{"trace hidden at debug", LogLevelDebug, func(l Logger) { l.Trace("msg") }, "", false},
		{"explicit level", LogLevelDebug, func(l Logger) { l.Log(LogLevelWarn, "msg") }, "WARN", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			tc.emit(NewSlogLogger(&buf, tc.level, time.UTC))

			entries := decodeLines(t, &buf)
			if !tc.wantLine {
				assert.Empty(t, entries)
				return
			}
			require.Len(t, entries, 1)
			assert.Equal(t, tc.wantLevel, entries[0]["level"])
			assert.Equal(t, "msg", entries[0]["msg"])
		})
	}
}

func TestSlogLogger_Fields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewSlogLogger(&buf, LogLevelDebug, time.UTC).Module("analytics")

	log.With(String("user", "alice")).Info("summary built",
		Int("groups", 3),
		Float64("ratio", 0.123456),
		Bool("cached", false),
		Duration("elapsed", 1500*time.Millisecond),
		Strings("cameras", []string{"A", "B"}),
		Error(errors.New("boom")))

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	entry := entries[0]

	assert.Equal(t, "analytics", entry["module"])
	assert.Equal(t, "alice", entry["user"])
	assert.InDelta(t, 3, entry["groups"], 0)
	assert.InDelta(t, 0.123, entry["ratio"], 0.0001)
	assert.Equal(t, false, entry["cached"])
	assert.Equal(t, "1.5s", entry["elapsed"])
	assert.Equal(t, []any{"A", "B"}, entry["cameras"])
	assert.Equal(t, "boom", entry["error"])
}

func TestModuleLogger_NestedModules(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewSlogLogger(&buf, LogLevelInfo, time.UTC).Module("api").Module("users").Info("hello")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "api.users", entries[0]["module"])
}

func TestModuleLogger_WithDoesNotLeak(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := NewSlogLogger(&buf, LogLevelInfo, time.UTC)
	_ = base.With(String("request_id", "abc"))
	base.Info("plain")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0], "request_id")
}

func TestModuleLogger_WithContextTraceID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewSlogLogger(&buf, LogLevelInfo, time.UTC)

	log.WithContext(WithTraceID(context.Background(), "trace-1")).Info("traced")
	log.WithContext(context.Background()).Info("untraced")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "trace-1", entries[0]["trace_id"])
	assert.NotContains(t, entries[1], "trace_id")
}

func TestCentralLogger_WriterBuffering(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "main.log")
	var console bytes.Buffer
	cl, err := newCentralLogger(&LoggingConfig{
		DefaultLevel:  "info",
		Timezone:      "UTC",
		Console:       &ConsoleOutput{Enabled: false},
		FileOutput:    &FileOutput{Enabled: true, Path: path, Level: "info"},
		ModuleOutputs: map[string]ModuleOutput{"access": {Enabled: false}},
		BufferSize:    4096,
		FlushInterval: 10 * time.Millisecond,
	}, &console)
	require.NoError(t, err)
	defer func() { require.NoError(t, cl.Close()) }()

	require.NotNil(t, cl.mainWriter)
	assert.Equal(t, 4096, cl.mainWriter.bufferSize)
	assert.Equal(t, 10*time.Millisecond, cl.mainWriter.flushInterval)

	cl.Module("api").Info("summary served")
	assert.Eventually(t, func() bool {
		data, err := os.ReadFile(path)
		return err == nil && bytes.Contains(data, []byte("summary served"))
	}, time.Second, 10*time.Millisecond, "flushed before close")
}

func TestCentralLogger_ModuleFileRouting(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mainPath := filepath.Join(dir, "main.log")
	accessPath := filepath.Join(dir, "access.log")

	var console bytes.Buffer
	cl, err := newCentralLogger(&LoggingConfig{
		DefaultLevel: "info",
		Timezone:     "UTC",
		Console:      &ConsoleOutput{Enabled: true, Level: "info"},
		FileOutput:   &FileOutput{Enabled: true, Path: mainPath, Level: "info"},
		ModuleOutputs: map[string]ModuleOutput{
			"access": {Enabled: true, FilePath: accessPath, Level: "info"},
		},
	}, &console)
	require.NoError(t, err)

	cl.Module("datastore").Info("opened database")
	cl.Module("access").Info("GET /api/users/alice")
	require.NoError(t, cl.Close())

	mainLog, err := os.ReadFile(mainPath)
	require.NoError(t, err)
	accessLog, err := os.ReadFile(accessPath)
	require.NoError(t, err)

	assert.Contains(t, string(mainLog), "opened database")
	assert.NotContains(t, string(mainLog), "GET /api/users/alice")
	assert.Contains(t, string(accessLog), "GET /api/users/alice")
	assert.Contains(t, console.String(), "opened database")
	assert.NotContains(t, console.String(), "time=", "console output omits timestamps")
}

func TestCentralLogger_ModuleLevels(t *testing.T) {
	t.Parallel()

	var console bytes.Buffer
	cl, err := newCentralLogger(&LoggingConfig{
		DefaultLevel:  "info",
		Console:       &ConsoleOutput{Enabled: true, Level: "debug"},
		FileOutput:    &FileOutput{Enabled: false},
		ModuleOutputs: map[string]ModuleOutput{},
		ModuleLevels:  map[string]string{"analytics": "debug"},
	}, &console)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cl.Close() })

	cl.Module("analytics").Debug("analytics detail")
	cl.Module("datastore").Debug("datastore detail")

	assert.Contains(t, console.String(), "analytics detail")
	assert.NotContains(t, console.String(), "datastore detail")
}

func TestCentralLogger_Errors(t *testing.T) {
	t.Parallel()

	_, err := NewCentralLogger(nil)
	require.Error(t, err)

	_, err = NewCentralLogger(&LoggingConfig{Timezone: "Not/AZone"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid timezone")
}

func TestApplyConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := &LoggingConfig{}
	applyConfigDefaults(cfg)

	assert.Equal(t, DefaultLogLevel, cfg.DefaultLevel)
	require.NotNil(t, cfg.Console)
	assert.True(t, cfg.Console.Enabled)
	require.NotNil(t, cfg.FileOutput)
	assert.Equal(t, DefaultLogPath, cfg.FileOutput.Path)
	assert.Equal(t, DefaultAccessLogPath, cfg.ModuleOutputs["access"].FilePath)

	// Existing module settings are kept
	cfg = &LoggingConfig{ModuleOutputs: map[string]ModuleOutput{"access": {Enabled: false}}}
	applyConfigDefaults(cfg)
	assert.False(t, cfg.ModuleOutputs["access"].Enabled)
}

func TestBufferedFileWriter_FlushAndClose(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "buffered.log")
	w, err := NewBufferedFileWriter(path, WithFlushInterval(0))
	require.NoError(t, err)
	assert.Equal(t, path, w.FilePath())

	_, err = w.Write([]byte("first\n"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data, "data stays buffered until flush")

	require.NoError(t, w.Flush())
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first\n", string(data))

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, err = w.Write([]byte("late"))
	require.Error(t, err)
}

func TestBufferedFileWriter_ConcurrentWrites(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "concurrent.log")
	w, err := NewBufferedFileWriter(path, WithBufferSize(64), WithFlushInterval(10*time.Millisecond))
	require.NoError(t, err)

	const writers, lines = 8, 50
	var wg sync.WaitGroup
	for range writers {
		wg.Go(func() {
			for range lines {
				_, _ = w.Write([]byte("line\n"))
			}
		})
	}
	wg.Wait()
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, writers*lines, strings.Count(string(data), "line\n"))
}

func TestGormLoggerAdapter_Trace(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	adapter := NewGormLoggerAdapter(NewSlogLogger(&buf, LogLevelDebug, time.UTC), 10*time.Millisecond)
	sql := func() (string, int64) { return "SELECT 1", 1 }

	adapter.Trace(context.Background(), time.Now(), sql, nil)
	adapter.Trace(context.Background(), time.Now(), sql, gorm.ErrRecordNotFound)
	adapter.Trace(context.Background(), time.Now(), sql, errors.New("disk I/O error"))
	adapter.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 3, "plain statements log at trace level")

	assert.Equal(t, "DEBUG", entries[0]["level"])
	assert.Equal(t, "WARN", entries[1]["level"])
	assert.Equal(t, "query failed", entries[1]["msg"])
	assert.Equal(t, "slow query", entries[2]["msg"])
	assert.Equal(t, "10ms", entries[2]["threshold"])
}
