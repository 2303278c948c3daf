package git

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"greptui/internal/domain"
)

// CheckRepository verifies that binary runs and dir is inside a work tree.
// Failures are KindStartupFailure errors.
func CheckRepository(ctx context.Context, e Executor, binary, dir string) error {
	cmd := e.CommandContext(ctx, binary, "rev-parse", "--is-inside-work-tree")
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return domain.NewStartupError(err, "git executable %q not found", binary)
		}
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			msg = fmt.Sprintf("%s rev-parse failed: %v", binary, err)
		}
		return domain.NewStartupError(err, "%s", firstLine(msg))
	}
	if strings.TrimSpace(string(out)) != "true" {
		return domain.NewStartupError(nil, "not inside a git work tree")
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
