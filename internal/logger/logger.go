package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/agilira/lethe"
	"github.com/fatih/color"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Format selects how a log line is rendered.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

const timestampLayout = "2006-01-02 15:04:05"

var (
	mu           sync.Mutex
	currentLevel = LevelInfo
	lineFormat   = FormatText
	output       io.Writer = os.Stdout
	colorize     = !color.NoColor
)

var levelColors = map[Level]*color.Color{
	LevelDebug: color.New(color.FgCyan),
	LevelInfo:  color.New(color.FgGreen),
	LevelWarn:  color.New(color.FgYellow),
	LevelError: color.New(color.FgRed),
}

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
		return "UNKNOWN"
	}
}

// ParseLevel converts a case-insensitive level name. The boolean reports
// whether the name was recognized.
func ParseLevel(level string) (Level, bool) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return LevelDebug, true
	case "INFO":
		return LevelInfo, true
	case "WARN":
		return LevelWarn, true
	case "ERROR":
		return LevelError, true
	default:
		return LevelInfo, false
	}
}

func SetLevel(level string) {
	if l, ok := ParseLevel(level); ok {
		mu.Lock()
		currentLevel = l
		mu.Unlock()
	}
}

// SetFormat selects "text" or "json" output. Unknown names are ignored.
func SetFormat(name string) {
	mu.Lock()
	defer mu.Unlock()

	switch strings.ToLower(name) {
	case "text":
		lineFormat = FormatText
	case "json":
		lineFormat = FormatJSON
	}
}

// SetOutput redirects log lines to w. Color is only kept for terminals.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	output = w
	colorize = !color.NoColor && (w == os.Stdout || w == os.Stderr)
}

// Configure applies level, format and output in one step.
//
// Output is "stdout", "stderr" or a file path. File output goes through a
// rotating writer; the returned closer must be closed on shutdown to flush
// it. For the standard streams the closer is a no-op.
func Configure(level, formatName, target string) (io.Closer, error) {
	SetLevel(level)
	SetFormat(formatName)

	switch strings.ToLower(target) {
	case "", "stdout":
		SetOutput(os.Stdout)
		return nopCloser{}, nil
	case "stderr":
		SetOutput(os.Stderr)
		return nopCloser{}, nil
	}

	rotator, err := lethe.NewWithConfig(&lethe.LoggerConfig{
		Filename:   target,
		MaxSizeStr: "10MB",
		MaxBackups: 3,
		LocalTime:  true,
		ErrorCallback: func(operation string, err error) {
			fmt.Fprintf(os.Stderr, "log rotation %s failed: %v\n", operation, err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", target, err)
	}

	SetOutput(rotator)
	return rotator, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

type jsonLine struct {
	Time    string `json:"time"`
	Level   string `json:"level"`
	Message string `json:"msg"`
}

func log(level Level, format string, v ...any) {
	mu.Lock()
	defer mu.Unlock()

	if level < currentLevel {
		return
	}

	now := time.Now()
	message := fmt.Sprintf(format, v...)
	fmt.Fprintln(output, render(level, now, message))
}

// render must be called with mu held.
func render(level Level, now time.Time, message string) string {
	if lineFormat == FormatJSON {
		line, err := json.Marshal(jsonLine{
			Time:    now.Format(time.RFC3339Nano),
			Level:   level.String(),
			Message: message,
		})
		if err == nil {
			return string(line)
		}
	}

	name := level.String()
	if colorize {
		name = levelColors[level].Sprint(name)
	}
	return fmt.Sprintf("[%s] [%s] %s", now.Format(timestampLayout), name, message)
}

func Debug(format string, v ...any) {
	log(LevelDebug, format, v...)
}

func Info(format string, v ...any) {
	log(LevelInfo, format, v...)
}

func Warn(format string, v ...any) {
	log(LevelWarn, format, v...)
}

func Error(format string, v ...any) {
	log(LevelError, format, v...)
}

// IsDebugEnabled reports whether Debug lines are currently emitted. Callers
// use it to skip building expensive debug arguments.
func IsDebugEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return currentLevel <= LevelDebug
}
