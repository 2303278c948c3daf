package git

import (
	"context"
	"os/exec"
)

// Executor creates exec.Cmd instances so tests can point git at fixtures
// or substitute a fake binary
type Executor interface {
	Command(name string, args ...string) *exec.Cmd
	CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd
}

// RealExecutor builds commands with os/exec
type RealExecutor struct {
	Env []string // appended to the inherited environment when set
}

// Command creates a standard exec.Cmd
func (e *RealExecutor) Command(name string, args ...string) *exec.Cmd {
	return e.withEnv(exec.Command(name, args...))
}

// CommandContext creates a context-aware exec.Cmd; cancelling ctx kills the process
func (e *RealExecutor) CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	return e.withEnv(exec.CommandContext(ctx, name, args...))
}

func (e *RealExecutor) withEnv(cmd *exec.Cmd) *exec.Cmd {
	if len(e.Env) > 0 {
		cmd.Env = append(cmd.Environ(), e.Env...)
	}
	return cmd
}
