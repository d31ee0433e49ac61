package utils

import (
	"fmt"
	"log"
	"os"
	"sync"

	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	colorRed    = "\x1b[31m"
	colorYellow = "\x1b[33m"
	colorDim    = "\x1b[2m"
	colorReset  = "\x1b[0m"
)

// Verbosity levels for console output. The file log always receives
// everything at debug level and below; trace output is opt-in for both.
const (
	LevelInfo = iota
	LevelDebug
	LevelTrace
)

// Logger writes a rotating run log under .redgreen/ and echoes messages to
// the console according to the configured verbosity.
type Logger struct {
	logger    *log.Logger
	verbosity int
	colorize  bool
}

var (
	globalLogger *Logger
	once         sync.Once
)

// GetLogger returns the singleton Logger. The verbosity is updated on every
// call so later invocations (e.g. after flag parsing) can raise it.
func GetLogger(verbosity int) *Logger {
	once.Do(func() {
		logFile := &lumberjack.Logger{
			Filename:   ".redgreen/run.log",
			MaxSize:    15, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		globalLogger = &Logger{
			logger:   log.New(logFile, "", log.LstdFlags),
			colorize: term.IsTerminal(int(os.Stdout.Fd())),
		}
	})
	globalLogger.verbosity = verbosity
	return globalLogger
}

// Close closes the underlying rotating log file.
func (l *Logger) Close() error {
	if logFile, ok := l.logger.Writer().(*lumberjack.Logger); ok {
		return logFile.Close()
	}
	return nil
}

// Infof logs to the file and always prints to stdout.
func (l *Logger) Infof(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	l.logger.Print(msg)
	fmt.Println(msg)
}

// Warnf logs to the file and prints to stderr, colored when attached to a TTY.
func (l *Logger) Warnf(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	l.logger.Printf("Warning: %s", msg)
	fmt.Fprintln(os.Stderr, l.paint(colorYellow, "warning: "+msg))
}

// Debugf logs to the file and prints to stdout when verbosity >= debug.
func (l *Logger) Debugf(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	l.logger.Print(msg)
	if l.verbosity >= LevelDebug {
		fmt.Println(l.paint(colorDim, msg))
	}
}

// Tracef logs and prints only when verbosity >= trace. Trace output can be
// large (instruction payloads, diffs) so it is kept out of the file log at
// lower verbosity too.
func (l *Logger) Tracef(format string, v ...interface{}) {
	if l.verbosity < LevelTrace {
		return
	}
	msg := fmt.Sprintf(format, v...)
	l.logger.Print(msg)
	fmt.Println(l.paint(colorDim, msg))
}

// LogError records an error in the file log and prints it to stderr.
func (l *Logger) LogError(err error) {
	if err == nil {
		return
	}
	l.logger.Printf("Error: %s", err)
	fmt.Fprintln(os.Stderr, l.paint(colorRed, "error: "+err.Error()))
}

func (l *Logger) paint(color, s string) string {
	if !l.colorize {
		return s
	}
	return color + s + colorReset
}
