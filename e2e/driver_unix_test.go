//go:build e2e && unix

package e2e

import (
	"bytes"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"
)

var binPath string

const (
	keyEnter = "\r"
	keyEsc   = "\x1b"
	keyCtrlC = "\x03"
	keyF1    = "\x1bOP"
)

var ansiRe = regexp.MustCompile(
	`(?:\x1b\[[0-9;?]*[ -/]*[@-~])|` +
		`(?:\x1b\][^\x07]*\x07)|` +
		`(?:\x1b[\(\)][A-Za-z])|` +
		`(?:\x1b=|\x1b>)|` +
		`\r`,
)

// session drives one greptui process on a pseudo terminal
type session struct {
	t    *testing.T
	cmd  *exec.Cmd
	pty  *os.File
	done chan error

	mu  sync.Mutex
	out bytes.Buffer
}

// start runs greptui in dir with args. State and config live in a fresh home.
func start(t *testing.T, dir string, args ...string) *session {
	t.Helper()
	home := t.TempDir()

	cmd := exec.Command(binPath, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"LC_ALL=C",
		"HOME="+home,
		"XDG_CONFIG_HOME="+home+"/.config",
		"XDG_STATE_HOME="+home+"/.state",
		"GIT_CONFIG_GLOBAL=/dev/null",
	)

	f, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: 30, Cols: 100})
	if err != nil {
		t.Fatalf("failed to start greptui: %v", err)
	}

	s := &session{t: t, cmd: cmd, pty: f, done: make(chan error, 1)}
	go s.read()
	go func() { s.done <- cmd.Wait() }()
	t.Cleanup(s.close)
	return s
}

func (s *session) read() {
	buf := make([]byte, 4096)
	for {
		n, err := s.pty.Read(buf)
		if n > 0 {
			s.mu.Lock()
			s.out.Write(buf[:n])
			s.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// plain returns everything printed so far with escape sequences removed
func (s *session) plain() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ansiRe.ReplaceAllString(s.out.String(), "")
}

func (s *session) send(keys string) {
	s.t.Helper()
	if _, err := s.pty.Write([]byte(keys)); err != nil {
		s.t.Fatalf("failed to write keys: %v", err)
	}
}

// typeText sends one key at a time so each rune is its own key event
func (s *session) typeText(text string) {
	s.t.Helper()
	for _, r := range text {
		s.send(string(r))
		time.Sleep(5 * time.Millisecond)
	}
}

// see waits until text shows up in the output
func (s *session) see(text string) bool {
	s.t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(s.plain(), text) {
			return true
		}
		time.Sleep(25 * time.Millisecond)
	}
	tail := s.plain()
	if len(tail) > 2048 {
		tail = tail[len(tail)-2048:]
	}
	s.t.Logf("%q not found, output tail:\n%s", text, tail)
	return false
}

// wait returns the exit error once the process has exited
func (s *session) wait() error {
	s.t.Helper()
	select {
	case err := <-s.done:
		// let the reader drain what is left
		time.Sleep(50 * time.Millisecond)
		return err
	case <-time.After(5 * time.Second):
		s.t.Fatal("greptui did not exit")
		return nil
	}
}

func (s *session) close() {
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.pty.Close()
}
