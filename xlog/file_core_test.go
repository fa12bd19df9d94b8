package xlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestFileCore_AppendAndRelease(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	closeC := make(chan struct{})
	logger, err := BuildXLogger(
		WithXLoggerEncoder(JSON),
		WithXLoggerLevel(LogLevelInfo),
		WithXLoggerFileCore(&FileCoreConfig{FilePath: dir, Filename: "xindex.log"}, closeC),
	)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("first entry")
	logger.Warn("second entry")
	require.NoError(t, logger.Sync())

	content := readLog(t, filepath.Join(dir, "xindex.log"))
	require.NotContains(t, content, "hidden")
	require.Contains(t, content, `"msg":"first entry"`)
	require.Contains(t, content, `"msg":"second entry"`)
	require.Equal(t, 2, strings.Count(content, "\n"))

	// A second logger appends to the same file.
	closeC2 := make(chan struct{})
	appended, err := BuildXLogger(
		WithXLoggerEncoder(PlainText),
		WithXLoggerFileCore(&FileCoreConfig{FilePath: dir, Filename: "xindex.log"}, closeC2),
	)
	require.NoError(t, err)
	appended.Info("third entry")
	require.NoError(t, appended.Sync())
	content = readLog(t, filepath.Join(dir, "xindex.log"))
	require.Contains(t, content, "first entry")
	require.Contains(t, content, "third entry")

	close(closeC)
	close(closeC2)
}

func TestFileCore_ReopenAfterRename(t *testing.T) {
	dir := t.TempDir()
	closeC := make(chan struct{})
	defer close(closeC)
	log, err := newSingleLog(&FileCoreConfig{FilePath: dir, Filename: "rotated.log"}, closeC)
	require.NoError(t, err)

	_, err = log.Write([]byte("before\n"))
	require.NoError(t, err)
	path := filepath.Join(dir, "rotated.log")
	require.NoError(t, os.Rename(path, path+".1"))

	require.Eventually(t, func() bool {
		if _, err := log.Write([]byte("after\n")); err != nil {
			return false
		}
		_, err := os.Stat(path)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	require.Contains(t, readLog(t, path+".1"), "before")
	require.Contains(t, readLog(t, path), "after")
	require.NotContains(t, readLog(t, path), "before")
}

func TestFileCore_Close(t *testing.T) {
	dir := t.TempDir()
	closeC := make(chan struct{})
	log, err := newSingleLog(&FileCoreConfig{FilePath: dir, Filename: "closed.log"}, closeC)
	require.NoError(t, err)
	_, err = log.Write([]byte("kept\n"))
	require.NoError(t, err)

	close(closeC)
	select {
	case <-log.doneC:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher not released")
	}
	_, err = log.Write([]byte("dropped\n"))
	require.Error(t, err)
	require.NoError(t, log.Sync())
	content := readLog(t, filepath.Join(dir, "closed.log"))
	require.Contains(t, content, "kept")
	require.NotContains(t, content, "dropped")
}

func TestFileCore_InvalidOptions(t *testing.T) {
	closeC := make(chan struct{})
	defer close(closeC)
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "taken"), 0o755))

	testcases := []struct {
		name string
		opts []XLoggerOption
	}{
		{name: "nil config", opts: []XLoggerOption{WithXLoggerFileCore(nil, closeC)}},
		{name: "no filename", opts: []XLoggerOption{WithXLoggerFileCore(&FileCoreConfig{FilePath: dir}, closeC)}},
		{name: "no close channel", opts: []XLoggerOption{WithXLoggerFileCore(&FileCoreConfig{FilePath: dir, Filename: "a.log"}, nil)}},
		{name: "file is a dir", opts: []XLoggerOption{WithXLoggerFileCore(&FileCoreConfig{FilePath: dir, Filename: "taken"}, closeC)}},
		{name: "writer overridden", opts: []XLoggerOption{
			WithXLoggerFileCore(&FileCoreConfig{FilePath: dir, Filename: "b.log"}, closeC),
			WithXLoggerWriter(StdErr),
		}},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			logger, err := BuildXLogger(tc.opts...)
			require.Error(tt, err)
			require.Nil(tt, logger)
		})
	}
	require.Panics(t, func() {
		NewXLogger(WithXLoggerFileCore(nil, closeC))
	})
}
