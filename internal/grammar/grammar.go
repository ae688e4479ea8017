// Package grammar holds the process-wide tree-sitter grammars and the
// function queries compiled against them.
package grammar

import (
	"embed"
	"errors"
	"fmt"
	"sync"

	"github.com/arsham/git-hotspots/schema"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/lua"
	"github.com/smacker/go-tree-sitter/rust"
)

//go:embed queries/*.scm
var queryFS embed.FS

// ErrGrammarInit is returned when a grammar or its query cannot be loaded.
var ErrGrammarInit = errors.New("grammar initialisation failed")

// Language is an immutable grammar handle. It is safe to share across goroutines;
// parsers created from it are not.
type Language struct {
	name   schema.Lang
	sitter *sitter.Language
	query  *sitter.Query
}

// Name returns the language this handle was built for.
func (l *Language) Name() schema.Lang {
	return l.name
}

// Sitter returns the compiled tree-sitter grammar.
func (l *Language) Sitter() *sitter.Language {
	return l.sitter
}

// Query returns the pre-parsed function query.
func (l *Language) Query() *sitter.Query {
	return l.query
}

// NewParser creates a fresh parser for this language.
func (l *Language) NewParser() *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(l.sitter)
	return p
}

type entry struct {
	load func() *sitter.Language
	once sync.Once
	lang *Language
	err  error
}

var registry = map[schema.Lang]*entry{
	schema.GoLang:   {load: golang.GetLanguage},
	schema.RustLang: {load: rust.GetLanguage},
	schema.LuaLang:  {load: lua.GetLanguage},
}

// Get returns the handle for lang, building it on first use.
func Get(lang schema.Lang) (*Language, error) {
	e, ok := registry[lang]
	if !ok {
		return nil, fmt.Errorf("%w: no grammar for %q", ErrGrammarInit, lang)
	}
	e.once.Do(func() {
		data, err := queryFS.ReadFile(fmt.Sprintf("queries/%s.scm", lang))
		if err != nil {
			e.err = fmt.Errorf("%w: reading %s query: %v", ErrGrammarInit, lang, err)
			return
		}
		e.lang, e.err = compile(lang, e.load(), data)
	})
	return e.lang, e.err
}

// compile parses the query source against grammar.
func compile(name schema.Lang, grammar *sitter.Language, data []byte) (*Language, error) {
	if grammar == nil {
		return nil, fmt.Errorf("%w: %s grammar is not available", ErrGrammarInit, name)
	}
	q, err := sitter.NewQuery(data, grammar)
	if err != nil {
		return nil, fmt.Errorf("%w: compiling %s query: %v", ErrGrammarInit, name, err)
	}
	return &Language{name: name, sitter: grammar, query: q}, nil
}
