package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogLevels(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{level: "error", expected: []string{"ERROR"}, excluded: []string{"WARN", "INFO", "DEBUG"}},
		{level: "warn", expected: []string{"ERROR", "WARN"}, excluded: []string{"INFO", "DEBUG"}},
		{level: "info", expected: []string{"ERROR", "WARN", "INFO"}, excluded: []string{"DEBUG"}},
		{level: "debug", expected: []string{"ERROR", "WARN", "INFO", "DEBUG"}},
		{level: "bogus", expected: []string{"INFO"}, excluded: []string{"DEBUG"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logFile := filepath.Join(tempDir, tt.level+".log")
			cfg := FileConfig{Path: logFile, MaxSizeMB: 10, MaxBackups: 1, MaxAgeDays: 1}
			require.NoError(t, InitWithFileConfig(tt.level, cfg, Quiet))

			Debug("debug message")
			Info("info message")
			Warn("warn message")
			Error("error message")
			Sync()

			content, err := os.ReadFile(logFile)
			require.NoError(t, err)
			logContent := string(content)
			for _, exp := range tt.expected {
				require.Contains(t, logContent, exp)
			}
			for _, exc := range tt.excluded {
				require.NotContains(t, logContent, exc)
			}
		})
	}
}

func TestSugarWritesFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "decimate.log")
	require.NoError(t, Init("info", logFile, Quiet))
	Sugar.Infof("simplified %s to %d faces", "cube.obj", 50)
	Sync()

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(content), "simplified cube.obj to 50 faces"))
}

func TestNopBeforeInit(t *testing.T) {
	Log = nil
	Sync()
	require.NoError(t, Init("warn", "", Quiet))
	require.NotNil(t, Log)
	Info("dropped")
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("/tmp/test.log")
	require.Equal(t, "/tmp/test.log", cfg.Path)
	require.Equal(t, 50, cfg.MaxSizeMB)
	require.Equal(t, 3, cfg.MaxBackups)
	require.Equal(t, 7, cfg.MaxAgeDays)
	require.True(t, cfg.Compress)
}

func TestValidLevel(t *testing.T) {
	for _, l := range []string{"debug", "info", "warn", "error"} {
		require.True(t, ValidLevel(l), l)
	}
	require.False(t, ValidLevel("trace"))
}
