// Package logger provides the structured logger shared by the CLI and the
// mirror server. It wraps logrus and optionally rotates a log file.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Fields is a type alias for log fields to make the API cleaner.
type Fields = logrus.Fields

// FileOptions configure the optional rotating log file output.
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	Compress   bool
}

var (
	logger *logrus.Logger
	mu     sync.Mutex
)

// InitLogger initializes the global logger for CLI and server operations.
// When file options carry a path, output goes to a size-rotated log file
// instead of stdout.
func InitLogger(logLevel string, noColor bool, file FileOptions) {
	mu.Lock()
	defer mu.Unlock()

	l := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(logLevel))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	l.SetOutput(buildOutput(file))
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors: noColor || file.Path != "",
		FullTimestamp: false,
	})

	logger = l
}

func buildOutput(file FileOptions) io.Writer {
	if file.Path == "" {
		return os.Stdout
	}
	if err := os.MkdirAll(filepath.Dir(file.Path), 0o755); err != nil {
		return os.Stdout
	}
	return &lumberjack.Logger{
		Filename:   file.Path,
		MaxSize:    file.MaxSizeMB,
		MaxBackups: file.MaxBackups,
		Compress:   file.Compress,
		LocalTime:  true,
	}
}

// GetLogger returns the configured logger instance, initializing it with
// defaults when InitLogger was never called.
func GetLogger() *logrus.Logger {
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.InfoLevel)
		l.SetOutput(os.Stdout)
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: false})
		logger = l
	}
	return logger
}

// Info logs an info message.
func Info(msg string, fields ...Fields) {
	GetLogger().WithFields(mergeFields(fields...)).Info(msg)
}

// Debug logs a debug message (only shown when debug level is enabled).
func Debug(msg string, fields ...Fields) {
	GetLogger().WithFields(mergeFields(fields...)).Debug(msg)
}

// Warn logs a warning message.
func Warn(msg string, fields ...Fields) {
	GetLogger().WithFields(mergeFields(fields...)).Warn(msg)
}

// Error logs an error message.
func Error(msg string, fields ...Fields) {
	GetLogger().WithFields(mergeFields(fields...)).Error(msg)
}

// Success logs a success message as info with a success indicator.
func Success(msg string, fields ...Fields) {
	merged := mergeFields(fields...)
	merged["status"] = "success"
	GetLogger().WithFields(merged).Info(msg)
}

// mergeFields merges multiple Fields into one.
func mergeFields(fields ...Fields) Fields {
	result := make(Fields)
	for _, field := range fields {
		for k, v := range field {
			result[k] = v
		}
	}
	return result
}
