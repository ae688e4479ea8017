// Package discovery walks a directory tree and classifies the files it finds
// by source language.
package discovery

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/arsham/git-hotspots/schema"
	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/errgroup"
)

// ErrNoFiles is returned when no file survives the filters.
var ErrNoFiles = errors.New("no files found in the current directory")

// gitDir holds the repository metadata and is never descended into.
const gitDir = ".git"

type options struct {
	prefixes    []string
	notContains []string
	globs       []string
	gitignore   bool
	workers     int
}

// Option configures a discovery run.
type Option func(*options)

// WithPrefix keeps only files whose path begins with p. When given more than
// once, a file is kept if it begins with any of them. Prefixes are compared
// by path component against both the walked and the root-relative path, so
// "./src" matches "src/a.go" but not "srcx/a.go".
func WithPrefix(p string) Option {
	return func(o *options) {
		o.prefixes = append(o.prefixes, filepath.Clean(p))
	}
}

// NotContains drops files whose path contains s.
func NotContains(s string) Option {
	return func(o *options) {
		o.notContains = append(o.notContains, s)
	}
}

// ExcludeGlob drops files whose root-relative path matches the doublestar
// pattern.
func ExcludeGlob(pattern string) Option {
	return func(o *options) {
		o.globs = append(o.globs, pattern)
	}
}

// RespectGitignore drops files matched by the .gitignore file at the root.
func RespectGitignore(enabled bool) Option {
	return func(o *options) {
		o.gitignore = enabled
	}
}

// WithWorkers sets the number of filter workers. Values below one are ignored.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// Discover returns every non-hidden file under root that passes the
// configured filters, classified by language. Files in unsupported languages
// are included. The order of the result is unspecified.
//
// Hidden files are dropped by their basename only, so files inside other
// dot-directories are still returned. Directories named .git are the
// exception: they are pruned during the walk and their contents are never
// reported, not even as unsupported files.
func Discover(ctx context.Context, root string, opts ...Option) ([]schema.FileRef, error) {
	start := time.Now()
	o := &options{workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(o)
	}

	var gi *ignore.GitIgnore
	if o.gitignore {
		var err error
		gi, err = ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
		if err != nil {
			slog.Debug("no usable .gitignore at root", "root", root, "error", err)
			gi = nil
		}
	}

	paths := make(chan string, o.workers*4)
	results := make(chan schema.FileRef, o.workers*4)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(paths)
		return walk(gctx, root, paths)
	})

	filters := errgroup.Group{}
	for range o.workers {
		filters.Go(func() error {
			for p := range paths {
				if f, ok := o.classify(root, p, gi); ok {
					results <- f
				}
			}
			return nil
		})
	}
	go func() {
		_ = filters.Wait()
		close(results)
	}()

	var files []schema.FileRef
	for f := range results {
		files = append(files, f)
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Debug("discovery finished", "root", root, "files", len(files), "took", time.Since(start))
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	return files, nil
}

// walk sends every non-directory path under root to out. Entry errors are
// skipped; only context cancellation stops the walk early.
func walk(ctx context.Context, root string, out chan<- string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if d.Name() == gitDir && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		select {
		case out <- path:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	return err
}

// classify applies the filters to a single path.
func (o *options) classify(root, path string, gi *ignore.GitIgnore) (schema.FileRef, bool) {
	if !utf8.ValidString(path) {
		return schema.FileRef{}, false
	}
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return schema.FileRef{}, false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	if !o.matchesPrefix(path, rel) || o.containsExcluded(path) {
		return schema.FileRef{}, false
	}
	slashed := filepath.ToSlash(rel)
	for _, g := range o.globs {
		if ok, _ := doublestar.Match(g, slashed); ok {
			return schema.FileRef{}, false
		}
	}
	if gi != nil && gi.MatchesPath(slashed) {
		return schema.FileRef{}, false
	}
	lang := schema.LangFromTag(schema.TagForExtension(filepath.Ext(base)))
	return schema.FileRef{Path: path, Lang: lang}, true
}

// matchesPrefix checks the walked path and the root-relative path.
func (o *options) matchesPrefix(path, rel string) bool {
	if len(o.prefixes) == 0 {
		return true
	}
	candidates := []string{filepath.Clean(path), rel}
	for _, p := range o.prefixes {
		if p == "." {
			return true
		}
		for _, c := range candidates {
			if c == p || strings.HasPrefix(c, p+string(filepath.Separator)) {
				return true
			}
		}
	}
	return false
}

func (o *options) containsExcluded(path string) bool {
	for _, s := range o.notContains {
		if strings.Contains(path, s) {
			return true
		}
	}
	return false
}
