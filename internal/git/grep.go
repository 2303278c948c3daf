package git

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"

	"greptui/internal/domain"
	"greptui/internal/logging"
)

// Result is the raw output of one git grep run
type Result struct {
	Lines     []string
	Truncated bool // reading stopped at the configured maximum
}

// Grepper runs git grep
type Grepper struct {
	exec       Executor
	binary     string
	dir        string
	maxResults int
	log        *logrus.Entry
}

// GrepperOption configures a Grepper
type GrepperOption func(*Grepper)

// WithExecutor replaces the command factory
func WithExecutor(e Executor) GrepperOption {
	return func(g *Grepper) { g.exec = e }
}

// WithBinary sets the git executable
func WithBinary(path string) GrepperOption {
	return func(g *Grepper) { g.binary = path }
}

// WithDir runs git in dir instead of the current directory
func WithDir(dir string) GrepperOption {
	return func(g *Grepper) { g.dir = dir }
}

// WithMaxResults stops reading output after n lines; 0 means unlimited
func WithMaxResults(n int) GrepperOption {
	return func(g *Grepper) { g.maxResults = n }
}

// NewGrepper creates a Grepper using the git on PATH
func NewGrepper(opts ...GrepperOption) *Grepper {
	g := &Grepper{
		exec:   &RealExecutor{},
		binary: "git",
		log:    logging.NewLogger("git"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Grep runs the search for q. Exit status 1 without stderr output means no
// match and yields an empty Result. Any other failure is a
// KindSearchExecutionFailure carrying git's stderr. Cancelling ctx kills
// the process and returns ctx.Err().
func (g *Grepper) Grep(ctx context.Context, q domain.Query) (Result, error) {
	args := execArgs(q)
	cmd := g.exec.CommandContext(ctx, g.binary, args...)
	cmd.Dir = g.dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{}, domain.NewSearchError(err, fmt.Sprintf("failed to run %s: %v", g.binary, err))
	}

	g.log.WithField("args", strings.Join(args, " ")).Debug("starting git grep")
	if err := cmd.Start(); err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, domain.NewSearchError(err, fmt.Sprintf("failed to start %s: %v", g.binary, err))
	}

	res, readErr := g.readLines(stdout)
	if res.Truncated || readErr != nil {
		_ = cmd.Process.Kill()
		_, _ = io.Copy(io.Discard, stdout)
	}
	waitErr := cmd.Wait()

	if ctx.Err() != nil {
		return Result{}, ctx.Err()
	}
	if readErr != nil {
		return Result{}, domain.NewSearchError(readErr, fmt.Sprintf("failed to read git grep output: %v", readErr))
	}
	if res.Truncated {
		g.log.WithField("lines", len(res.Lines)).Info("git grep output truncated")
		return res, nil
	}
	if waitErr != nil {
		return g.classify(waitErr, stderr.String())
	}

	g.log.WithField("lines", len(res.Lines)).Debug("git grep finished")
	return res, nil
}

func (g *Grepper) readLines(r io.Reader) (Result, error) {
	var res Result
	br := bufio.NewReaderSize(r, 64*1024)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			if g.maxResults > 0 && len(res.Lines) >= g.maxResults {
				res.Truncated = true
				return res, nil
			}
			res.Lines = append(res.Lines, strings.TrimSuffix(line, "\n"))
		}
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		if err != nil {
			return res, err
		}
	}
}

func (g *Grepper) classify(waitErr error, stderr string) (Result, error) {
	msg := strings.TrimSpace(stderr)

	var exitErr *exec.ExitError
	if !errors.As(waitErr, &exitErr) {
		return Result{}, domain.NewSearchError(waitErr, waitErr.Error())
	}
	code := exitErr.ExitCode()
	if code == 1 && msg == "" {
		g.log.Debug("git grep found no matches")
		return Result{}, nil
	}
	if msg == "" {
		msg = fmt.Sprintf("git grep exited with status %d", code)
	}
	g.log.WithFields(logrus.Fields{"status": code, "stderr": msg}).Warn("git grep failed")
	return Result{}, domain.NewSearchError(waitErr, msg)
}
