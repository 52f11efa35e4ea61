// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

// Package grammar loads the declarative Wend grammar and matches token
// streams against it.
package grammar

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"gopkg.wendlang.org/wendc/internal/exc"
)

//go:embed wend.yaml
var wendGrammar []byte

var loadDefault = sync.OnceValues(func() (*Grammar, error) {
	return Load(wendGrammar)
})

// Default returns the grammar shipped with the compiler. It is parsed on
// first use and shared, read-only, by every caller for the life of the
// process.
func Default() (*Grammar, error) {
	return loadDefault()
}

// Source returns the text of the built-in grammar asset.
func Source() []byte {
	out := make([]byte, len(wendGrammar))
	copy(out, wendGrammar)
	return out
}

// Definition is the serialized form of a grammar.
type Definition struct {
	Name     string           `yaml:"name"`
	Version  string           `yaml:"version"`
	Start    string           `yaml:"start"`
	Keywords []string         `yaml:"keywords"`
	Rules    []RuleDefinition `yaml:"rules"`
}

type RuleDefinition struct {
	Name string `yaml:"name"`
	// Expect names the rule in syntax errors in place of the tokens it
	// would have accepted.
	Expect string `yaml:"expect,omitempty"`
	Expr   string `yaml:"expr"`
}

// Grammar is an immutable, compiled grammar. It is safe for concurrent use.
type Grammar struct {
	name     string
	version  string
	start    *rule
	keywords map[string]bool
	rules    []*rule
	byName   map[string]*rule
}

type rule struct {
	index  int
	name   string
	expect string
	expr   expr
}

// Load compiles a YAML grammar definition.
func Load(data []byte) (*Grammar, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, exc.Wrap(exc.Location{}, exc.CodeInvalidGrammar, err)
	}
	return Compile(&def)
}

// Compile builds a Grammar from a decoded Definition. Every rule reference
// must resolve and the start rule must exist.
func Compile(def *Definition) (*Grammar, error) {
	g := &Grammar{
		name:     def.Name,
		version:  def.Version,
		keywords: make(map[string]bool, len(def.Keywords)),
		byName:   make(map[string]*rule, len(def.Rules)),
	}
	for _, k := range def.Keywords {
		g.keywords[k] = true
	}
	for offset, rd := range def.Rules {
		if rd.Name == "" {
			return nil, invalid("rule %d has no name", offset)
		}
		if _, ok := g.byName[rd.Name]; ok {
			return nil, invalid("rule %q is defined more than once", rd.Name)
		}
		e, err := parseExpr(rd.Expr)
		if err != nil {
			return nil, invalid("rule %q: %s", rd.Name, err.Error())
		}
		r := &rule{index: offset, name: rd.Name, expect: rd.Expect, expr: e}
		g.rules = append(g.rules, r)
		g.byName[rd.Name] = r
	}
	for _, r := range g.rules {
		if err := g.resolve(r.expr); err != nil {
			return nil, invalid("rule %q: %s", r.name, err.Error())
		}
	}
	start, ok := g.byName[def.Start]
	if !ok {
		return nil, invalid("start rule %q is not defined", def.Start)
	}
	g.start = start
	return g, nil
}

func (g *Grammar) resolve(e expr) error {
	switch e := e.(type) {
	case *exprRule:
		r, ok := g.byName[e.name]
		if !ok {
			return fmt.Errorf("undefined rule %q", e.name)
		}
		e.rule = r
	case *exprSequence:
		for _, item := range e.items {
			if err := g.resolve(item); err != nil {
				return err
			}
		}
	case *exprChoice:
		for _, alt := range e.alternatives {
			if err := g.resolve(alt); err != nil {
				return err
			}
		}
	case *exprRepeat:
		return g.resolve(e.inner)
	case *exprPredicate:
		return g.resolve(e.inner)
	case *exprCapture:
		return g.resolve(e.inner)
	}
	return nil
}

func (g *Grammar) Name() string {
	return g.name
}

func (g *Grammar) Version() string {
	return g.version
}

// Start returns the name of the rule a full match begins with.
func (g *Grammar) Start() string {
	return g.start.name
}

func (g *Grammar) IsKeyword(text string) bool {
	return g.keywords[text]
}

// Keywords returns the reserved words in sorted order.
func (g *Grammar) Keywords() []string {
	out := make([]string, 0, len(g.keywords))
	for k := range g.keywords {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Rules returns the rule names in definition order.
func (g *Grammar) Rules() []string {
	out := make([]string, 0, len(g.rules))
	for _, r := range g.rules {
		out = append(out, r.name)
	}
	return out
}

// Rule returns the expression text of the named rule in canonical form.
func (g *Grammar) Rule(name string) (string, bool) {
	r, ok := g.byName[name]
	if !ok {
		return "", false
	}
	return r.expr.String(), true
}

func invalid(format string, args ...any) error {
	return exc.Newf(exc.Location{}, exc.CodeInvalidGrammar, format, args...)
}
