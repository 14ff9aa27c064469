// Package logging builds the application logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/javiermolinar/marquee/internal/config"
)

// DebugLogPath is the fixed path for debug logs.
const DebugLogPath = "marquee-debug.log"

// Logger is a logger plus the file it writes to, if any.
type Logger struct {
	*logrus.Logger
	closer io.Closer
}

// Close flushes and closes the log file.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// New builds a JSON-lines logger from cfg. With debug set the level is forced to
// debug and logs go to DebugLogPath. Without a configured file the logger
// discards output so nothing interleaves with the terminal UI.
func New(cfg config.LogConfig, debug bool) (*Logger, error) {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "15:04:05.000"})

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	l.SetLevel(level)

	file := cfg.File
	if debug {
		l.SetLevel(logrus.DebugLevel)
		file = DebugLogPath
	}
	if file == "" {
		l.SetOutput(io.Discard)
		return &Logger{Logger: l}, nil
	}

	if debug {
		// A fresh file per debug session, easy to find and read from the top.
		f, err := os.Create(file)
		if err != nil {
			return nil, fmt.Errorf("creating debug log: %w", err)
		}
		l.SetOutput(f)
		l.WithField("log_file", file).Debug("debug logging started")
		return &Logger{Logger: l, closer: f}, nil
	}

	rotator := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     28,
		Compress:   cfg.Compress,
	}
	l.SetOutput(rotator)
	return &Logger{Logger: l, closer: rotator}, nil
}

// ParseLevel maps a config level name to a logrus level. Empty means info.
func ParseLevel(s string) (logrus.Level, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return logrus.InfoLevel, nil
	}
	level, err := logrus.ParseLevel(s)
	if err != nil {
		return 0, fmt.Errorf("parsing log level: %w", err)
	}
	return level, nil
}
