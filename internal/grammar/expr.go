package grammar

import (
	"strings"

	"gopkg.wendlang.org/wendc/internal/syntax"
)

// expr is one node of a compiled parsing expression.
type expr interface {
	String() string
}

type exprSequence struct {
	items []expr
}

func (e *exprSequence) String() string {
	parts := make([]string, 0, len(e.items))
	for _, item := range e.items {
		if _, ok := item.(*exprChoice); ok {
			parts = append(parts, "("+item.String()+")")
			continue
		}
		parts = append(parts, item.String())
	}
	return strings.Join(parts, " ")
}

type exprChoice struct {
	alternatives []expr
}

func (e *exprChoice) String() string {
	parts := make([]string, 0, len(e.alternatives))
	for _, alt := range e.alternatives {
		parts = append(parts, alt.String())
	}
	return strings.Join(parts, " / ")
}

// exprRepeat matches inner at least min times. A max of -1 is unbounded.
type exprRepeat struct {
	inner expr
	min   int
	max   int
}

func (e *exprRepeat) String() string {
	suffix := "*"
	switch {
	case e.min == 1 && e.max == -1:
		suffix = "+"
	case e.min == 0 && e.max == 1:
		suffix = "?"
	}
	return group(e.inner) + suffix
}

type exprPredicate struct {
	inner  expr
	negate bool
}

func (e *exprPredicate) String() string {
	if e.negate {
		return "!" + group(e.inner)
	}
	return "&" + group(e.inner)
}

type exprCapture struct {
	label string
	inner expr
}

func (e *exprCapture) String() string {
	return e.label + ":" + group(e.inner)
}

type exprLiteral struct {
	text string
}

func (e *exprLiteral) String() string {
	return "'" + e.text + "'"
}

type exprTokenKind struct {
	name string
	kind syntax.TokenType
}

func (e *exprTokenKind) String() string {
	return e.name
}

type exprKeyword struct{}

func (e *exprKeyword) String() string {
	return "KEYWORD"
}

type exprRule struct {
	name string
	rule *rule
}

func (e *exprRule) String() string {
	return e.name
}

func group(e expr) string {
	switch e.(type) {
	case *exprSequence, *exprChoice:
		return "(" + e.String() + ")"
	default:
		return e.String()
	}
}

var terminals = map[string]*exprTokenKind{
	"NAME":    {name: "NAME", kind: syntax.TokenTypeIdentifier},
	"NUMBER":  {name: "NUMBER", kind: syntax.TokenTypeNumber},
	"STRING":  {name: "STRING", kind: syntax.TokenTypeText},
	"NEWLINE": {name: "NEWLINE", kind: syntax.TokenTypeNewline},
	"EOF":     {name: "EOF", kind: syntax.TokenTypeEOF},
}

// describe returns the text used for a terminal in "expected" lists.
func describe(e expr) string {
	switch e := e.(type) {
	case *exprLiteral:
		return "'" + e.text + "'"
	case *exprTokenKind:
		switch e.kind {
		case syntax.TokenTypeIdentifier:
			return "name"
		case syntax.TokenTypeNumber:
			return "number"
		case syntax.TokenTypeText:
			return "string"
		case syntax.TokenTypeNewline:
			return "newline"
		case syntax.TokenTypeEOF:
			return "end of input"
		}
		return e.name
	case *exprKeyword:
		return "keyword"
	case *exprPredicate:
		if e.negate {
			return "not " + describe(e.inner)
		}
		return describe(e.inner)
	default:
		return e.String()
	}
}
