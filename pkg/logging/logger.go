package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Level is the minimum severity a Logger writes.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the label used in log entries.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("LEVEL(%d)", int32(l))
	}
}

// ParseLevel maps a config value such as "debug" or "WARN" to a Level.
// Unknown values fall back to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger writes component-scoped entries for one test run.
// All components of a run share the file <log dir>/<run-id>-storefront.log.
type Logger struct {
	runID     string
	component string
	run       *runLog
	logger    *log.Logger
}

// runLog is the file every logger of the process writes to.
type runLog struct {
	once      sync.Once
	file      *os.File
	path      string
	logger    *log.Logger
	err       error
	closeOnce sync.Once
}

func (r *runLog) open() error {
	r.once.Do(func() {
		if err := initLogDirectory(); err != nil {
			r.err = err
			return
		}
		path := filepath.Join(logDir, fmt.Sprintf("%s-storefront.log", getRunID()))
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			r.err = fmt.Errorf("failed to open log file: %w", err)
			return
		}
		r.file = file
		r.path = path
		r.logger = log.New(file, "", 0)
	})
	return r.err
}

var (
	runID     string
	runIDOnce sync.Once

	// logDir is resolved on first use; Configure may set it beforehand.
	logDir string

	initOnce sync.Once
	initErr  error

	current = &runLog{}

	minLevel atomic.Int32
)

func init() {
	minLevel.Store(int32(LevelInfo))
}

// Configure sets the log directory and minimum level. The directory only
// takes effect if no logger has been created yet.
func Configure(dir string, level Level) {
	if dir != "" {
		initOnce.Do(func() {
			logDir = dir
			initErr = os.MkdirAll(logDir, 0750)
			if initErr != nil {
				initErr = fmt.Errorf("failed to create log directory: %w", initErr)
			}
		})
	}
	minLevel.Store(int32(level))
}

func getRunID() string {
	runIDOnce.Do(func() {
		runID = uuid.New().String()
	})
	return runID
}

func initLogDirectory() error {
	initOnce.Do(func() {
		if logDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				initErr = fmt.Errorf("failed to get home directory: %w", err)
				return
			}
			logDir = filepath.Join(homeDir, ".storefront-e2e", "logs")
		}
		if err := os.MkdirAll(logDir, 0750); err != nil {
			initErr = fmt.Errorf("failed to create log directory: %w", err)
		}
	})
	return initErr
}

// NewLogger creates a logger for a component. The run's log file is opened
// by the first logger and shared by all later ones, so Configure must run
// before it to take effect.
//
// If the log file cannot be opened it returns a logger writing to stderr
// together with the error, so callers may ignore the error safely.
func NewLogger(component string) (*Logger, error) {
	run := current
	if err := run.open(); err != nil {
		return newFallbackLogger(component, err), err
	}
	return &Logger{
		runID:     getRunID(),
		component: component,
		run:       run,
		logger:    run.logger,
	}, nil
}

// MustLogger is NewLogger without the error; failures degrade to stderr.
func MustLogger(component string) *Logger {
	l, _ := NewLogger(component)
	return l
}

func newFallbackLogger(component string, err error) *Logger {
	l := &Logger{
		runID:     getRunID(),
		component: component,
		logger:    log.New(os.Stderr, "", 0),
	}
	l.write(LevelWarn, fmt.Sprintf("file logging unavailable, using stderr: %v", err))
	return l
}

func (l *Logger) formatLogEntry(level Level, message string) string {
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	return fmt.Sprintf("[%s] [%s] [%s] %s", timestamp, l.component, level, message)
}

func (l *Logger) write(level Level, message string) {
	if level < Level(minLevel.Load()) {
		return
	}
	l.logger.Println(l.formatLogEntry(level, message))
}

// Debugf logs a debug-level message
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.write(LevelDebug, fmt.Sprintf(format, v...))
}

// Infof logs an info-level message
func (l *Logger) Infof(format string, v ...interface{}) {
	l.write(LevelInfo, fmt.Sprintf(format, v...))
}

// Warnf logs a warning-level message
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.write(LevelWarn, fmt.Sprintf(format, v...))
}

// Errorf logs an error-level message
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.write(LevelError, fmt.Sprintf(format, v...))
}

// Writer returns the underlying destination.
func (l *Logger) Writer() io.Writer {
	if l.run != nil {
		return l.run.file
	}
	return os.Stderr
}

// RunID returns the id shared by every logger of this process.
func (l *Logger) RunID() string {
	return l.runID
}

// LogPath returns the path to the log file, empty in fallback mode.
func (l *Logger) LogPath() string {
	if l.run == nil {
		return ""
	}
	return l.run.path
}

// Close closes the run's log file, which every logger shares. Call it once
// when the process is done logging. Safe to call multiple times.
func (l *Logger) Close() error {
	if l.run == nil {
		return nil
	}
	var err error
	l.run.closeOnce.Do(func() {
		err = l.run.file.Close()
	})
	return err
}

// GetRunID returns the current global run ID
func GetRunID() string {
	return getRunID()
}

// GetLogDirectory returns the directory where logs are stored
func GetLogDirectory() (string, error) {
	if err := initLogDirectory(); err != nil {
		return "", err
	}
	return logDir, nil
}
