// logger/logger.go
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[LogLevel]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

var levelColors = map[LogLevel]string{
	DEBUG: colorGray,
	INFO:  colorReset,
	WARN:  colorYellow,
	ERROR: colorRed,
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel maps a config value like "info" or "WARN" to a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG, nil
	case "", "info":
		return INFO, nil
	case "warn", "warning":
		return WARN, nil
	case "error":
		return ERROR, nil
	default:
		return INFO, fmt.Errorf("unknown log level %q", s)
	}
}

// sink is one destination. Console sinks get colored prefixes, file sinks do not.
type sink struct {
	loggers map[LogLevel]*log.Logger
}

func newSink(w io.Writer, color bool) sink {
	flags := log.Ldate | log.Ltime | log.Lshortfile
	s := sink{loggers: make(map[LogLevel]*log.Logger, len(levelNames))}
	for level, name := range levelNames {
		prefix := fmt.Sprintf("[%s]%s", name, strings.Repeat(" ", 6-len(name)))
		if color {
			prefix = levelColors[level] + prefix + colorReset
		}
		s.loggers[level] = log.New(w, prefix, flags)
	}
	return s
}

type Logger struct {
	sinks    []sink
	file     *os.File
	minLevel LogLevel
}

var (
	defaultLogger *Logger
	once          sync.Once
	mu            sync.RWMutex
)

// ensureInitialized creates a console logger if Init was never called
func ensureInitialized() {
	once.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		if defaultLogger == nil {
			defaultLogger = &Logger{
				sinks:    []sink{newSink(os.Stdout, isTerminal(os.Stdout))},
				minLevel: DEBUG,
			}
		}
	})
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Init initializes the logger with optional file and console output.
// If filename is empty, logs only to console.
// If console is false, logs only to file.
func Init(filename string, console bool) error {
	once.Do(func() {})
	mu.Lock()
	defer mu.Unlock()

	if defaultLogger != nil && defaultLogger.file != nil {
		defaultLogger.file.Close()
	}

	l := &Logger{minLevel: DEBUG}
	if defaultLogger != nil {
		l.minLevel = defaultLogger.minLevel
	}

	if console {
		l.sinks = append(l.sinks, newSink(os.Stdout, isTerminal(os.Stdout)))
	}

	if filename != "" {
		file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		l.file = file
		l.sinks = append(l.sinks, newSink(file, false))
	}

	if len(l.sinks) == 0 {
		return fmt.Errorf("no output destination specified")
	}

	defaultLogger = l
	return nil
}

// SetOutput sends all log output to w without colors. Used by tests and the CLI
// when stdout is reserved for command output.
func SetOutput(w io.Writer) {
	once.Do(func() {})
	mu.Lock()
	defer mu.Unlock()

	l := &Logger{minLevel: DEBUG, sinks: []sink{newSink(w, false)}}
	if defaultLogger != nil {
		l.minLevel = defaultLogger.minLevel
		if defaultLogger.file != nil {
			defaultLogger.file.Close()
		}
	}
	defaultLogger = l
}

// SetLevel sets the minimum log level. Messages below it are dropped.
func SetLevel(level LogLevel) {
	ensureInitialized()
	mu.Lock()
	defer mu.Unlock()
	defaultLogger.minLevel = level
}

// Close closes the log file if one is open
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if defaultLogger != nil && defaultLogger.file != nil {
		defaultLogger.file.Close()
		defaultLogger.file = nil
		defaultLogger.sinks = defaultLogger.sinks[:len(defaultLogger.sinks)-1]
	}
}

func output(level LogLevel, msg string) {
	ensureInitialized()
	mu.RLock()
	defer mu.RUnlock()

	if level < defaultLogger.minLevel {
		return
	}
	for _, s := range defaultLogger.sinks {
		s.loggers[level].Output(3, msg)
	}
}

func Debug(v ...interface{}) { output(DEBUG, fmt.Sprint(v...)) }

func Debugf(format string, v ...interface{}) { output(DEBUG, fmt.Sprintf(format, v...)) }

func Info(v ...interface{}) { output(INFO, fmt.Sprint(v...)) }

func Infof(format string, v ...interface{}) { output(INFO, fmt.Sprintf(format, v...)) }

func Warn(v ...interface{}) { output(WARN, fmt.Sprint(v...)) }

func Warnf(format string, v ...interface{}) { output(WARN, fmt.Sprintf(format, v...)) }

func Error(v ...interface{}) { output(ERROR, fmt.Sprint(v...)) }

func Errorf(format string, v ...interface{}) { output(ERROR, fmt.Sprintf(format, v...)) }

// Fatal logs an error message and exits the program
func Fatal(v ...interface{}) {
	output(ERROR, fmt.Sprint(v...))
	os.Exit(1)
}

// Fatalf logs a formatted error message and exits the program
func Fatalf(format string, v ...interface{}) {
	output(ERROR, fmt.Sprintf(format, v...))
	os.Exit(1)
}
