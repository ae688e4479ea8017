package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/arsham/git-hotspots/internal/discovery"
	"github.com/arsham/git-hotspots/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "git-hotspots dev (none)\n")
	assert.Contains(t, buf.String(), "Runtime: go")
}

func TestShortCommit(t *testing.T) {
	orig := commit
	t.Cleanup(func() { commit = orig })

	commit = "0123456789abcdef"
	assert.Equal(t, "0123456", shortCommit())
	commit = "abc"
	assert.Equal(t, "abc", shortCommit())
}

func TestFlagsRegistered(t *testing.T) {
	flags := rootCmd.PersistentFlags()
	for name, short := range map[string]string{
		"root":         "r",
		"total":        "t",
		"skip":         "s",
		"prefix":       "p",
		"invert-match": "v",
		"exclude-func": "F",
		"log-level":    "V",
	} {
		f := flags.Lookup(name)
		require.NotNil(t, f, name)
		assert.Equal(t, short, f.Shorthand, name)
	}
	assert.Equal(t, "50", flags.Lookup("total").DefValue)
	assert.Equal(t, "0", flags.Lookup("skip").DefValue)
	assert.Equal(t, ".", flags.Lookup("root").DefValue)
}

// TestRootCmd_NoFilesReturnsError checks the failure is returned to the
// caller instead of exiting, so shutdown still runs.
func TestRootCmd_NoFilesReturnsError(t *testing.T) {
	repo := testutil.InitRepo(t)
	rootCmd.SetArgs([]string{repo, "--no-progress"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	require.ErrorIs(t, err, discovery.ErrNoFiles)
	assert.Equal(t, "No files found in the current directory", FatalMessage(err))
}

func TestFatalMessage(t *testing.T) {
	wrapped := fmt.Errorf("cannot run hotspot analysis: %w", discovery.ErrNoFiles)
	assert.Equal(t, "No files found in the current directory", FatalMessage(wrapped))
	assert.Equal(t, "Error", FatalMessage(errors.New("boom")))
}
