// Package notify provides the toast sinks the table reports to: an in-memory
// queue drained by the TUI, a colored console writer for the CLI, and a logger.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/javiermolinar/marquee/internal/datatable"
)

// Queue buffers toasts until the UI drains them.
type Queue struct {
	mu     sync.Mutex
	toasts []datatable.Toast
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Notify appends t to the queue.
func (q *Queue) Notify(t datatable.Toast) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.toasts = append(q.toasts, t)
}

// Drain returns the queued toasts in arrival order and empties the queue.
func (q *Queue) Drain() []datatable.Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.toasts
	q.toasts = nil
	return out
}

// Len returns the number of queued toasts.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.toasts)
}

var (
	colorInfo    = color.New(color.FgCyan)
	colorSuccess = color.New(color.FgGreen)
	colorWarning = color.New(color.FgYellow)
	colorError   = color.New(color.FgRed, color.Bold)
)

// Console prints toasts as colored lines.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole returns a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Notify writes one line for t.
func (c *Console) Notify(t datatable.Toast) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w, Colorize(t.Level, Format(t)))
}

// Format renders a toast as "Title: message".
func Format(t datatable.Toast) string {
	switch {
	case t.Title == "":
		return t.Message
	case t.Message == "":
		return t.Title
	default:
		return t.Title + ": " + t.Message
	}
}

// Colorize wraps s in the color of level.
func Colorize(level datatable.Level, s string) string {
	switch level {
	case datatable.LevelSuccess:
		return colorSuccess.Sprint(s)
	case datatable.LevelWarning:
		return colorWarning.Sprint(s)
	case datatable.LevelError:
		return colorError.Sprint(s)
	default:
		return colorInfo.Sprint(s)
	}
}

// Log writes toasts to a logger.
type Log struct {
	logger logrus.FieldLogger
}

// NewLog returns a Log notifier.
func NewLog(logger logrus.FieldLogger) *Log {
	return &Log{logger: logger}
}

// Notify logs t at the level matching its severity.
func (l *Log) Notify(t datatable.Toast) {
	entry := l.logger.WithFields(logrus.Fields{"toast": t.Level.String(), "title": t.Title})
	switch t.Level {
	case datatable.LevelError:
		entry.Error(t.Message)
	case datatable.LevelWarning:
		entry.Warn(t.Message)
	default:
		entry.Info(t.Message)
	}
}

// Multi fans a toast out to every notifier.
type Multi []datatable.Notifier

// Notify forwards t to each notifier in order.
func (m Multi) Notify(t datatable.Toast) {
	for _, n := range m {
		n.Notify(t)
	}
}
