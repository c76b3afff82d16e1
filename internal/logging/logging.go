package logging

import (
	"io"
	"log"
	"time"
)

const logDate = `2006-01-02T15:04:05.000-07:00`

// Logger writes "PREFIX: message" lines stamped with the local time.
// Debugf output is only emitted when verbose is set.
type Logger struct {
	out     *log.Logger
	verbose bool
	now     func() time.Time
}

func New(w io.Writer, verbose bool) *Logger {
	return &Logger{
		out:     log.New(w, "", 0),
		verbose: verbose,
		now:     time.Now,
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, false)
}

func (l *Logger) Verbose() bool {
	return l != nil && l.verbose
}

func (l *Logger) Printf(format string, args ...any) {
	if l == nil {
		return
	}
	l.out.Printf("%s | "+format, append([]any{l.now().Format(logDate)}, args...)...)
}

func (l *Logger) Debugf(format string, args ...any) {
	if !l.Verbose() {
		return
	}
	l.Printf(format, args...)
}
