package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// EnvLevel overrides the configured log level when set
const EnvLevel = "GREPTUI_LOG_LEVEL"

// Options configure the shared logger
type Options struct {
	Level string // logrus level name, "info" when empty
	File  string // log file path, DefaultFile() when empty
	// Interactive is true while a TUI owns the terminal; stderr output is
	// then suppressed regardless of the terminal check.
	Interactive bool
}

var (
	base    = newBase()
	loggers = make(map[string]*logrus.Entry)
	mu      sync.Mutex
)

func newBase() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	return l
}

// NewLogger returns the logger for a component. Loggers are shared per
// component and pick up later Setup calls.
func NewLogger(component string) *logrus.Entry {
	mu.Lock()
	defer mu.Unlock()

	if l, ok := loggers[component]; ok {
		return l
	}
	l := base.WithField("component", component)
	loggers[component] = l
	return l
}

// Setup points the shared logger at its sinks. The returned closer releases
// the log file.
func Setup(opts Options) (io.Closer, error) {
	levelStr := "info"
	if env := os.Getenv(EnvLevel); env != "" {
		levelStr = env
	} else if opts.Level != "" {
		levelStr = opts.Level
	}
	level, err := logrus.ParseLevel(strings.TrimSpace(levelStr))
	if err != nil {
		return nopCloser{}, fmt.Errorf("invalid log level %q: %w", levelStr, err)
	}
	base.SetLevel(level)

	var writers []io.Writer
	var closer io.Closer = nopCloser{}

	path := opts.File
	if path == "" {
		path = DefaultFile()
	}
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nopCloser{}, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nopCloser{}, fmt.Errorf("failed to open log file: %w", err)
		}
		writers = append(writers, f)
		closer = f
	}

	// Structured lines go to stderr only when nobody is looking at a screen:
	// piped output, or debug level outside the TUI.
	if !opts.Interactive {
		fd := os.Stderr.Fd()
		interactive := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		if !interactive || level >= logrus.DebugLevel {
			writers = append(writers, os.Stderr)
		}
	}

	switch len(writers) {
	case 0:
		base.SetOutput(io.Discard)
	case 1:
		base.SetOutput(writers[0])
	default:
		base.SetOutput(io.MultiWriter(writers...))
	}
	return closer, nil
}

// SetOutput redirects the shared logger, mostly for tests
func SetOutput(w io.Writer) {
	base.SetOutput(w)
}

// SetLevel changes the level of the shared logger
func SetLevel(level logrus.Level) {
	base.SetLevel(level)
}

// DefaultFile returns $XDG_STATE_HOME/greptui/greptui.log, falling back to
// ~/.local/state when the variable is unset
func DefaultFile() string {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "greptui", "greptui.log")
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
