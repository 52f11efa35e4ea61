package grammar

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.wendlang.org/wendc/internal/exc"
	"gopkg.wendlang.org/wendc/internal/syntax"
)

// Match matches a full token stream against the start rule. The stream is
// expected to end with an EOF token, as produced by the preprocessor.
//
// On failure the error is a single syntax diagnostic located at the furthest
// token any alternative reached, listing what would have been accepted
// there. No partial tree is returned.
func (g *Grammar) Match(uri string, tokens []*syntax.Token) (*Node, error) {
	return g.MatchRule(uri, g.start.name, tokens)
}

// MatchRule is Match starting from an arbitrary rule. The rule must consume
// every token.
func (g *Grammar) MatchRule(uri string, name string, tokens []*syntax.Token) (*Node, error) {
	r, ok := g.byName[name]
	if !ok {
		return nil, invalid("rule %q is not defined", name)
	}
	m := &matcher{
		grammar:  g,
		uri:      uri,
		tokens:   tokens,
		memo:     make(map[memoKey]memoResult),
		expected: make(map[string]bool),
	}
	root := &frame{}
	if m.call(r, root) && m.pos == len(tokens) {
		return root.children[0], nil
	}
	if m.pos > m.furthest {
		m.furthest = m.pos
		m.expected = map[string]bool{"end of input": true}
	}
	return nil, m.failure()
}

type memoKey struct {
	rule int
	pos  int
}

type memoResult struct {
	ok   bool
	end  int
	node *Node
}

type capture struct {
	label string
	match Match
}

// frame collects the children and captures of the rule being matched.
type frame struct {
	children []*Node
	captures []capture
}

type activeRule struct {
	expect string
	start  int
}

// matcher is a packrat parser: each (rule, position) pair is evaluated at
// most once, so backtracking stays linear in the input.
type matcher struct {
	grammar *Grammar
	uri     string
	tokens  []*syntax.Token
	pos     int
	memo    map[memoKey]memoResult

	active   []activeRule
	quiet    int
	furthest int
	expected map[string]bool
}

func (m *matcher) eval(e expr, f *frame) bool {
	switch e := e.(type) {
	case *exprSequence:
		pos, children, captures := m.pos, len(f.children), len(f.captures)
		for _, item := range e.items {
			if !m.eval(item, f) {
				m.pos, f.children, f.captures = pos, f.children[:children], f.captures[:captures]
				return false
			}
		}
		return true
	case *exprChoice:
		pos, children, captures := m.pos, len(f.children), len(f.captures)
		for _, alt := range e.alternatives {
			if m.eval(alt, f) {
				return true
			}
			m.pos, f.children, f.captures = pos, f.children[:children], f.captures[:captures]
		}
		return false
	case *exprRepeat:
		count := 0
		for e.max < 0 || count < e.max {
			pos := m.pos
			if !m.eval(e.inner, f) {
				break
			}
			count = count + 1
			if m.pos == pos {
				break
			}
		}
		return count >= e.min
	case *exprPredicate:
		pos := m.pos
		if e.negate {
			m.quiet = m.quiet + 1
		}
		ok := m.eval(e.inner, &frame{})
		if e.negate {
			m.quiet = m.quiet - 1
		}
		m.pos = pos
		if ok && e.negate {
			m.expect(describe(e))
		}
		return ok != e.negate
	case *exprCapture:
		pos, children := m.pos, len(f.children)
		if !m.eval(e.inner, f) {
			return false
		}
		switch {
		case len(f.children) > children:
			f.captures = append(f.captures, capture{label: e.label, match: Match{Node: f.children[children]}})
		case m.pos > pos:
			f.captures = append(f.captures, capture{label: e.label, match: Match{Token: m.tokens[pos]}})
		}
		return true
	case *exprRule:
		return m.call(e.rule, f)
	default:
		return m.terminal(e)
	}
}

func (m *matcher) terminal(e expr) bool {
	if m.pos < len(m.tokens) {
		t := m.tokens[m.pos]
		var ok bool
		switch e := e.(type) {
		case *exprLiteral:
			ok = t.Value == e.text && t.Type != syntax.TokenTypeText
		case *exprTokenKind:
			ok = t.Type == e.kind
		case *exprKeyword:
			ok = t.Type == syntax.TokenTypeIdentifier && m.grammar.keywords[t.Value]
		}
		if ok {
			m.pos = m.pos + 1
			return true
		}
	}
	m.expect(describe(e))
	return false
}

func (m *matcher) call(r *rule, f *frame) bool {
	key := memoKey{rule: r.index, pos: m.pos}
	if res, ok := m.memo[key]; ok {
		if !res.ok {
			return false
		}
		m.pos = res.end
		f.children = append(f.children, res.node)
		return true
	}
	start := m.pos
	if r.expect != "" {
		m.active = append(m.active, activeRule{expect: r.expect, start: start})
	}
	inner := &frame{}
	ok := m.eval(r.expr, inner)
	if r.expect != "" {
		m.active = m.active[:len(m.active)-1]
	}
	if !ok {
		m.pos = start
		m.memo[key] = memoResult{}
		return false
	}
	n := &Node{
		Rule:     r.name,
		Span:     m.span(start, m.pos),
		Children: inner.children,
	}
	if len(inner.captures) > 0 {
		n.Captures = make(map[string][]Match)
		for _, c := range inner.captures {
			n.Captures[c.label] = append(n.Captures[c.label], c.match)
		}
	}
	m.memo[key] = memoResult{ok: true, end: m.pos, node: n}
	f.children = append(f.children, n)
	return true
}

func (m *matcher) span(start int, end int) syntax.Span {
	if start >= len(m.tokens) {
		if len(m.tokens) == 0 {
			return syntax.Span{}
		}
		last := m.tokens[len(m.tokens)-1].Span.End
		return syntax.Span{Start: last, End: last}
	}
	if end <= start {
		at := m.tokens[start].Span.Start
		return syntax.Span{Start: at, End: at}
	}
	return syntax.Span{Start: m.tokens[start].Span.Start, End: m.tokens[end-1].Span.End}
}

// expect records that description would have been accepted at the current
// position. Inside a rule with a display name that started here the rule's
// name is recorded instead of its parts.
func (m *matcher) expect(description string) {
	if m.quiet > 0 {
		return
	}
	for _, a := range m.active {
		if a.start == m.pos {
			description = a.expect
			break
		}
	}
	if m.pos > m.furthest {
		m.furthest = m.pos
		m.expected = make(map[string]bool)
	}
	if m.pos == m.furthest {
		m.expected[description] = true
	}
}

func (m *matcher) failure() error {
	expected := make([]string, 0, len(m.expected))
	for e := range m.expected {
		expected = append(expected, e)
	}
	sort.Strings(expected)
	want := strings.Join(expected, ", ")
	if len(expected) > 1 {
		want = "one of: " + want
	}
	if m.furthest >= len(m.tokens) {
		loc := exc.Location{URI: m.uri}
		if len(m.tokens) > 0 {
			loc.Location = m.tokens[len(m.tokens)-1].Span.End
		}
		return exc.Newf(loc, exc.CodeUnexpectedEOF, "unexpected end of input (expected %s)", want)
	}
	t := m.tokens[m.furthest]
	loc := exc.Location{URI: m.uri, Location: t.Span.Start}
	if t.Type == syntax.TokenTypeEOF {
		return exc.Newf(loc, exc.CodeUnexpectedEOF, "unexpected end of input (expected %s)", want)
	}
	return exc.Newf(loc, exc.CodeUnexpectedToken, "unexpected %s (expected %s)", tokenText(t), want)
}

func tokenText(t *syntax.Token) string {
	switch {
	case t.Synthetic && t.Type == syntax.TokenTypeCurlyOpen:
		return "indent"
	case t.Synthetic && t.Type == syntax.TokenTypeCurlyClose:
		return "dedent"
	case t.Type == syntax.TokenTypeNewline:
		return "newline"
	default:
		return fmt.Sprintf("%q", t.Value)
	}
}
