// Package testutil has helpers for tests that need a real git repository.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// SkipIfGitNotAvailable skips the test if git binary is not found in PATH.
func SkipIfGitNotAvailable(t testing.TB) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("git binary not found in PATH: %v", err)
	}
}

// RunGit runs git inside dir with a fixed identity and returns its output.
func RunGit(t testing.TB, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-c", "commit.gpgsign=false"}, args...)...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=tester", "GIT_AUTHOR_EMAIL=tester@example.com",
		"GIT_COMMITTER_NAME=tester", "GIT_COMMITTER_EMAIL=tester@example.com",
		"GIT_CONFIG_NOSYSTEM=1",
	)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %s: %s", strings.Join(args, " "), out)
	return string(out)
}

// InitRepo creates an empty repository in a temporary directory.
func InitRepo(t testing.TB) string {
	t.Helper()
	SkipIfGitNotAvailable(t)
	dir := t.TempDir()
	RunGit(t, dir, "init", "-q")
	return dir
}

// Commit writes content to the slash separated path rel inside repo and
// commits it with msg.
func Commit(t testing.TB, repo, rel, content, msg string) {
	t.Helper()
	p := filepath.Join(repo, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	RunGit(t, repo, "add", rel)
	RunGit(t, repo, "commit", "-q", "-m", msg)
}
