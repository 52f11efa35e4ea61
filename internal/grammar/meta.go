package grammar

import (
	"fmt"
	"strings"
	"unicode"
)

type metaTokenType uint8

const (
	metaIdent metaTokenType = iota
	metaQuoted
	metaPunct
	metaEnd
)

type metaToken struct {
	kind   metaTokenType
	value  string
	offset int
}

func (t metaToken) String() string {
	switch t.kind {
	case metaEnd:
		return "end of expression"
	case metaQuoted:
		return "'" + t.value + "'"
	default:
		return fmt.Sprintf("%q", t.value)
	}
}

func lexMeta(text string) ([]metaToken, error) {
	var out []metaToken
	runes := []rune(text)
	for x := 0; x < len(runes); {
		r := runes[x]
		switch {
		case unicode.IsSpace(r):
			x = x + 1
		case strings.ContainsRune("()/*+?!&:", r):
			out = append(out, metaToken{kind: metaPunct, value: string(r), offset: x})
			x = x + 1
		case r == '\'':
			end := x + 1
			for end < len(runes) && runes[end] != '\'' {
				end = end + 1
			}
			if end >= len(runes) {
				return nil, fmt.Errorf("unterminated literal at offset %d", x)
			}
			if end == x+1 {
				return nil, fmt.Errorf("empty literal at offset %d", x)
			}
			out = append(out, metaToken{kind: metaQuoted, value: string(runes[x+1 : end]), offset: x})
			x = end + 1
		case unicode.IsLetter(r) || r == '_':
			end := x + 1
			for end < len(runes) && (unicode.IsLetter(runes[end]) || unicode.IsDigit(runes[end]) || runes[end] == '_') {
				end = end + 1
			}
			out = append(out, metaToken{kind: metaIdent, value: string(runes[x:end]), offset: x})
			x = end
		default:
			return nil, fmt.Errorf("unexpected %q at offset %d", r, x)
		}
	}
	return append(out, metaToken{kind: metaEnd, offset: len(runes)}), nil
}

// metaParser reads the expression notation used by rule definitions.
type metaParser struct {
	tokens []metaToken
	pos    int
}

func parseExpr(text string) (expr, error) {
	tokens, err := lexMeta(text)
	if err != nil {
		return nil, err
	}
	p := &metaParser{tokens: tokens}
	e, err := p.parseChoice()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != metaEnd {
		return nil, fmt.Errorf("unexpected %s at offset %d", t, t.offset)
	}
	return e, nil
}

func (p *metaParser) peek() metaToken {
	return p.tokens[p.pos]
}

func (p *metaParser) peekN(n int) metaToken {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+n]
}

func (p *metaParser) advance() metaToken {
	t := p.tokens[p.pos]
	if t.kind != metaEnd {
		p.pos = p.pos + 1
	}
	return t
}

func (p *metaParser) isPunct(values string) bool {
	t := p.peek()
	return t.kind == metaPunct && strings.Contains(values, t.value)
}

func (p *metaParser) expectPunct(value string) error {
	t := p.peek()
	if t.kind != metaPunct || t.value != value {
		return fmt.Errorf("unexpected %s at offset %d (expecting %q)", t, t.offset, value)
	}
	p.advance()
	return nil
}

// Choice = Sequence ("/" Sequence)*
func (p *metaParser) parseChoice() (expr, error) {
	first, err := p.parseSequence()
	if err != nil {
		return nil, err
	}
	alternatives := []expr{first}
	for p.isPunct("/") {
		p.advance()
		maybeAlt, err := p.parseSequence()
		if err != nil {
			return nil, err
		}
		alternatives = append(alternatives, maybeAlt)
	}
	if len(alternatives) == 1 {
		return first, nil
	}
	return &exprChoice{alternatives: alternatives}, nil
}

// Sequence = Prefixed+
func (p *metaParser) parseSequence() (expr, error) {
	var items []expr
	for {
		t := p.peek()
		if t.kind == metaEnd || (t.kind == metaPunct && strings.Contains(")/", t.value)) {
			break
		}
		maybeItem, err := p.parsePrefixed()
		if err != nil {
			return nil, err
		}
		items = append(items, maybeItem)
	}
	switch len(items) {
	case 0:
		t := p.peek()
		return nil, fmt.Errorf("empty expression at offset %d", t.offset)
	case 1:
		return items[0], nil
	default:
		return &exprSequence{items: items}, nil
	}
}

// Prefixed = ("!" / "&")? Suffixed
func (p *metaParser) parsePrefixed() (expr, error) {
	if p.isPunct("!&") {
		negate := p.advance().value == "!"
		maybeInner, err := p.parseSuffixed()
		if err != nil {
			return nil, err
		}
		return &exprPredicate{inner: maybeInner, negate: negate}, nil
	}
	return p.parseSuffixed()
}

// Suffixed = Labeled ("*" / "+" / "?")*
func (p *metaParser) parseSuffixed() (expr, error) {
	e, err := p.parseLabeled()
	if err != nil {
		return nil, err
	}
	for p.isPunct("*+?") {
		switch p.advance().value {
		case "*":
			e = &exprRepeat{inner: e, min: 0, max: -1}
		case "+":
			e = &exprRepeat{inner: e, min: 1, max: -1}
		case "?":
			e = &exprRepeat{inner: e, min: 0, max: 1}
		}
	}
	return e, nil
}

// Labeled = (ident ":")? Primary
func (p *metaParser) parseLabeled() (expr, error) {
	t := p.peek()
	next := p.peekN(1)
	if t.kind == metaIdent && next.kind == metaPunct && next.value == ":" {
		p.advance()
		p.advance()
		maybeInner, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return &exprCapture{label: t.value, inner: maybeInner}, nil
	}
	return p.parsePrimary()
}

// Primary = quoted / ident / "(" Choice ")"
func (p *metaParser) parsePrimary() (expr, error) {
	t := p.peek()
	switch {
	case t.kind == metaQuoted:
		p.advance()
		return &exprLiteral{text: t.value}, nil
	case t.kind == metaIdent:
		p.advance()
		if t.value == "KEYWORD" {
			return &exprKeyword{}, nil
		}
		if terminal, ok := terminals[t.value]; ok {
			return terminal, nil
		}
		return &exprRule{name: t.value}, nil
	case t.kind == metaPunct && t.value == "(":
		p.advance()
		maybeInner, err := p.parseChoice()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return maybeInner, nil
	default:
		return nil, fmt.Errorf("unexpected %s at offset %d", t, t.offset)
	}
}
