// Package extract finds function definitions in source files with tree-sitter.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/arsham/git-hotspots/internal/grammar"
	"github.com/arsham/git-hotspots/internal/progress"
	"github.com/arsham/git-hotspots/schema"
	sitter "github.com/smacker/go-tree-sitter"
)

// Sentinel errors returned by an Extractor.
var (
	ErrNotCompatible = errors.New("file is not compatible with this extractor")
	ErrNoFilesAdded  = errors.New("no files have been added")
)

// ParseFileError is returned when the parser cannot be prepared for the
// extractor's language.
type ParseFileError struct {
	Msg string
}

func (e *ParseFileError) Error() string {
	return "can't parse file: " + e.Msg
}

// Canonicalizer rewrites the raw elements of one run and reports how many
// raw elements it removed.
type Canonicalizer func([]schema.Element) ([]schema.Element, int)

var canonicalizers = map[schema.Lang]Canonicalizer{
	schema.GoLang:   CanonicalizeGo,
	schema.RustLang: identity,
	schema.LuaLang:  identity,
}

func identity(elems []schema.Element) ([]schema.Element, int) {
	return elems, 0
}

// Extractor collects files of a single language and extracts their functions.
type Extractor struct {
	lang         schema.Lang
	grammar      *grammar.Language
	canonicalize Canonicalizer
	files        []schema.FileRef
	filters      []string
}

// New returns an extractor for lang. capacity is a hint for the number of
// files that will be added.
func New(lang schema.Lang, capacity int) (*Extractor, error) {
	canon, ok := canonicalizers[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotCompatible, lang)
	}
	g, err := grammar.Get(lang)
	if err != nil {
		return nil, err
	}
	return &Extractor{
		lang:         lang,
		grammar:      g,
		canonicalize: canon,
		files:        make([]schema.FileRef, 0, max(capacity, 0)),
	}, nil
}

// Lang returns the language this extractor accepts.
func (e *Extractor) Lang() schema.Lang {
	return e.lang
}

// Supports reports whether f can be added to this extractor.
func (e *Extractor) Supports(f schema.FileRef) bool {
	return f.Lang == e.lang
}

// AddFile queues f for extraction.
func (e *Extractor) AddFile(f schema.FileRef) error {
	if !e.Supports(f) {
		return ErrNotCompatible
	}
	e.files = append(e.files, f)
	return nil
}

// FilterName drops every element whose name contains substr.
func (e *Extractor) FilterName(substr string) {
	e.filters = append(e.filters, substr)
}

// Len returns the number of queued files.
func (e *Extractor) Len() int {
	return len(e.files)
}

// located keeps the start byte of an element for ordering inside its file.
type located struct {
	start uint32
	elem  schema.Element
}

// Extract returns every function found in the queued files, in file order
// and document order within each file. Files that cannot be read, are not
// valid UTF-8 or fail to parse are logged and skipped.
func (e *Extractor) Extract(ctx context.Context, sink progress.Sink) ([]schema.Element, error) {
	if len(e.files) == 0 {
		return nil, ErrNoFilesAdded
	}
	if sink == nil {
		sink = progress.Discard
	}
	if e.grammar == nil || e.grammar.Sitter() == nil {
		return nil, &ParseFileError{Msg: fmt.Sprintf("no grammar for %s", e.lang)}
	}

	parser := e.grammar.NewParser()
	defer parser.Close()

	var raw []schema.Element
	for _, f := range e.files {
		found, err := e.extractFile(ctx, parser, f, sink)
		if err != nil {
			return nil, err
		}
		raw = append(raw, found...)
	}

	elems, redacted := e.canonicalize(raw)
	if len(e.filters) > 0 {
		kept := elems[:0]
		for _, el := range elems {
			if e.filtered(el.Name) {
				redacted++
				continue
			}
			kept = append(kept, el)
		}
		elems = kept
	}
	sink.AddTotal(-redacted)
	return elems, nil
}

func (e *Extractor) filtered(name string) bool {
	for _, f := range e.filters {
		if strings.Contains(name, f) {
			return true
		}
	}
	return false
}

// extractFile returns the elements of a single file. Only context
// cancellation is reported as an error.
func (e *Extractor) extractFile(ctx context.Context, parser *sitter.Parser, f schema.FileRef, sink progress.Sink) ([]schema.Element, error) {
	src, err := os.ReadFile(f.Path)
	if err != nil {
		slog.Warn("skipping unreadable file", "file", f.Path, "error", err)
		return nil, nil
	}
	if !utf8.Valid(src) {
		slog.Warn("skipping file with invalid UTF-8", "file", f.Path)
		return nil, nil
	}

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil || tree == nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		slog.Warn("skipping file that could not be parsed", "file", f.Path, "error", err)
		return nil, nil
	}
	defer tree.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(e.grammar.Query(), tree.RootNode())

	var found []located
	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range match.Captures {
			text := c.Node.Content(src)
			if !utf8.ValidString(text) {
				continue
			}
			found = append(found, located{
				start: c.Node.StartByte(),
				elem: schema.Element{
					Name:  text,
					File:  f.Path,
					Line:  int(c.Node.StartPoint().Row) + 1,
					Group: c.Index,
				},
			})
			sink.AddTotal(1)
			break
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].start < found[j].start
	})
	out := make([]schema.Element, len(found))
	for i, l := range found {
		out[i] = l.elem
	}
	return out, nil
}
