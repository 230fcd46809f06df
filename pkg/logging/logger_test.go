package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// setupTestDir points the package at a temporary directory and resets global state
func setupTestDir(t *testing.T) string {
	t.Helper()

	tempDir := t.TempDir()

	origLogDir := logDir
	origInitErr := initErr
	origRunID := runID
	origLevel := minLevel.Load()
	origRun := current

	logDir = tempDir
	initErr = nil
	initOnce = sync.Once{}
	runID = ""
	runIDOnce = sync.Once{}
	minLevel.Store(int32(LevelDebug))
	current = &runLog{}

	t.Cleanup(func() {
		current = origRun
		logDir = origLogDir
		initErr = origInitErr
		initOnce = sync.Once{}
		runID = origRunID
		runIDOnce = sync.Once{}
		minLevel.Store(origLevel)
	})
	return tempDir
}

func readLog(t *testing.T, l *Logger) string {
	t.Helper()
	content, err := os.ReadFile(l.LogPath())
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	return string(content)
}

func TestNewLogger(t *testing.T) {
	dir := setupTestDir(t)

	logger, err := NewLogger("driver")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	if logger.component != "driver" {
		t.Errorf("Expected component 'driver', got %q", logger.component)
	}
	if logger.RunID() == "" {
		t.Error("Expected non-empty run ID")
	}
	if filepath.Dir(logger.LogPath()) != dir {
		t.Errorf("Expected log in %s, got %s", dir, logger.LogPath())
	}
	if _, err := os.Stat(logger.LogPath()); os.IsNotExist(err) {
		t.Errorf("Log file does not exist at %s", logger.LogPath())
	}
}

func TestLoggerFormatting(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("pages")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	logger.Debugf("Debug %d", 1)
	logger.Infof("Info message")
	logger.Warnf("Warning message")
	logger.Errorf("Error message")

	logContent := readLog(t, logger)
	for _, pattern := range []string{
		"[pages] [DEBUG] Debug 1",
		"[pages] [INFO] Info message",
		"[pages] [WARN] Warning message",
		"[pages] [ERROR] Error message",
	} {
		if !strings.Contains(logContent, pattern) {
			t.Errorf("Log content missing expected pattern: %q\nContent:\n%s", pattern, logContent)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	setupTestDir(t)
	minLevel.Store(int32(LevelWarn))

	logger, err := NewLogger("config")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	logger.Debugf("hidden debug")
	logger.Infof("hidden info")
	logger.Warnf("visible warning")

	logContent := readLog(t, logger)
	if strings.Contains(logContent, "hidden") {
		t.Errorf("Expected debug/info entries to be filtered:\n%s", logContent)
	}
	if !strings.Contains(logContent, "visible warning") {
		t.Errorf("Expected warning entry:\n%s", logContent)
	}
}

func TestMultipleComponents(t *testing.T) {
	setupTestDir(t)

	logger1, err := NewLogger("lifecycle")
	if err != nil {
		t.Fatalf("Failed to create logger1: %v", err)
	}
	defer logger1.Close()

	logger2, err := NewLogger("driver")
	if err != nil {
		t.Fatalf("Failed to create logger2: %v", err)
	}
	defer logger2.Close()

	if logger1.RunID() != logger2.RunID() {
		t.Errorf("Expected same run ID, got %q and %q", logger1.RunID(), logger2.RunID())
	}
	if logger1.LogPath() != logger2.LogPath() {
		t.Errorf("Expected same log path, got %q and %q", logger1.LogPath(), logger2.LogPath())
	}

	logger1.Infof("from lifecycle")
	logger2.Infof("from driver")

	logContent := readLog(t, logger1)
	if !strings.Contains(logContent, "[lifecycle]") || !strings.Contains(logContent, "[driver]") {
		t.Errorf("Log missing component entries:\n%s", logContent)
	}
}

func TestLoggersShareOneFile(t *testing.T) {
	setupTestDir(t)

	first := MustLogger("pages")
	second := MustLogger("pages")
	defer first.Close()

	if first.Writer() != second.Writer() {
		t.Error("Expected loggers to share one file handle")
	}

	first.Infof("one")
	second.Infof("two")
	logContent := readLog(t, first)
	if strings.Count(logContent, "[pages] [INFO]") != 2 {
		t.Errorf("Expected both entries in one file:\n%s", logContent)
	}
}

func TestConfigureBeforeFirstLogger(t *testing.T) {
	setupTestDir(t)
	logDir = ""
	target := filepath.Join(t.TempDir(), "nested", "logs")

	Configure(target, LevelError)

	logger, err := NewLogger("config")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	if filepath.Dir(logger.LogPath()) != target {
		t.Errorf("Expected log dir %s, got %s", target, filepath.Dir(logger.LogPath()))
	}
	if Level(minLevel.Load()) != LevelError {
		t.Errorf("Expected level ERROR, got %s", Level(minLevel.Load()))
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		" warn ":  LevelWarn,
		"warning": LevelWarn,
		"Error":   LevelError,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestLoggerClose(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("test")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("First close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Second close failed: %v", err)
	}
}

func TestLogPathFormat(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("test")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	fileName := filepath.Base(logger.LogPath())
	if !strings.HasSuffix(fileName, "-storefront.log") {
		t.Errorf("Expected log file to end with '-storefront.log', got %q", fileName)
	}
	if !strings.Contains(strings.TrimSuffix(fileName, "-storefront.log"), "-") {
		t.Errorf("Expected run ID part in UUID format, got %q", fileName)
	}
}
