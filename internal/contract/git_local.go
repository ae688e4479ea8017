package contract

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct{}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{}
}

// command builds a git command that runs inside dir. Stdin is left nil so the
// child never reads from the terminal.
func (c *LocalGitClient) command(ctx context.Context, dir string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	return cmd
}

// IsInsideWorkTree implements the GitClient interface.
func (c *LocalGitClient) IsInsideWorkTree(ctx context.Context, dir string) (bool, error) {
	err := c.command(ctx, dir, "rev-parse", "--is-inside-work-tree").Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("failed to launch git in %q: %w", dir, err)
	}
	return true, nil
}

// LineLog implements the GitClient interface.
func (c *LocalGitClient) LineLog(ctx context.Context, dir string, spec string) ([]byte, error) {
	out, err := c.command(ctx, dir, "log", "-L", spec).Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return out, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to launch git in %q: %w", dir, err)
	}
	return out, nil
}
