// Package insight reads the history of individual functions from git.
package insight

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/arsham/git-hotspots/internal/contract"
)

// Sentinel errors returned by an Inspector.
var (
	ErrNotGitRepo = errors.New("not a git directory")
	ErrUTF8       = errors.New("git output is not valid UTF-8")
)

var commitLine = regexp.MustCompile(`(?m)^commit ([0-9a-f]{40})`)

// Inspector counts the commits that touched a function.
type Inspector struct {
	client contract.GitClient
	root   string
}

// New returns an Inspector for the work tree at root.
func New(ctx context.Context, client contract.GitClient, root string) (*Inspector, error) {
	ok, err := client.IsInsideWorkTree(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("checking work tree: %w", err)
	}
	if !ok {
		return nil, ErrNotGitRepo
	}
	return &Inspector{client: client, root: root}, nil
}

// Root returns the directory git commands are run in.
func (i *Inspector) Root() string {
	return i.root
}

// FunctionHistory returns the hashes of the commits that changed the function
// name in file, newest first. file is resolved by git relative to the root.
func (i *Inspector) FunctionHistory(ctx context.Context, file, name string) ([]string, error) {
	out, err := i.client.LineLog(ctx, i.root, ":"+name+":"+file)
	if err != nil {
		return nil, fmt.Errorf("reading history of %s in %s: %w", name, file, err)
	}
	if !utf8.Valid(out) {
		return nil, ErrUTF8
	}
	return Commits(string(out)), nil
}

// Commits returns the hash of every line that starts with a commit header, in
// the order they appear.
func Commits(text string) []string {
	matches := commitLine.FindAllStringSubmatch(text, -1)
	hashes := make([]string, 0, len(matches))
	for _, m := range matches {
		hashes = append(hashes, m[1])
	}
	return hashes
}
