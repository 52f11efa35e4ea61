package compiler

import (
	"context"
	"fmt"
	"strings"

	"gopkg.wendlang.org/wendc/internal/exc"
	"gopkg.wendlang.org/wendc/internal/iter"
	"gopkg.wendlang.org/wendc/internal/optional"
	"gopkg.wendlang.org/wendc/internal/syntax"
)

const defaultTabWidth = 4

// NewPreprocessor rewrites indentation in a raw token stream into explicit
// block markers.
//
// The NEWLINE that ends a logical line is held until the indentation of the
// next logical line is known. A deeper line replaces it with a synthetic '{'.
// A shallower line emits it followed by one synthetic '}' for every block
// closed, and the new indentation must match a block that is still open. At
// the end of input every open block is closed and an EOF token is produced.
// Whitespace and comments are consumed here and never reach the grammar.
// Inside brackets and explicit braces line breaks carry no layout.
func NewPreprocessor(uri string, tokens syntax.Iterator[*syntax.Token], reporter exc.Reporter, tabWidth int) syntax.Iterator[*syntax.Token] {
	if tabWidth < 1 {
		tabWidth = defaultTabWidth
	}
	withoutComments := iter.NewIteratorFilter(tokens, syntax.Filter[*syntax.Token](iter.FilterFunc[*syntax.Token](func(ctx context.Context, t *syntax.Token) bool {
		return t.Type != syntax.TokenTypeComment
	})))
	return &preprocessor{
		uri:       uri,
		tokens:    withoutComments,
		reporter:  reporter,
		tabWidth:  tabWidth,
		depths:    []int{0},
		lineStart: true,
	}
}

type preprocessor struct {
	uri      string
	tokens   syntax.Iterator[*syntax.Token]
	reporter exc.Reporter
	tabWidth int

	depths   []int
	brackets []*syntax.Token
	queue    []*syntax.Token
	// pending is the held NEWLINE of the previous logical line.
	pending   *syntax.Token
	lineStart bool
	indent    int
	content   bool
	lastEnd   syntax.Location
	done      bool
}

func (self *preprocessor) Next(ctx context.Context) optional.Optional[*syntax.Token] {
	for len(self.queue) == 0 {
		if self.done {
			return optional.None[*syntax.Token]()
		}
		self.fill(ctx)
	}
	t := self.queue[0]
	self.queue = self.queue[1:]
	return optional.Some(t)
}

func (self *preprocessor) Close(ctx context.Context) error {
	return self.tokens.Close(ctx)
}

func (self *preprocessor) fill(ctx context.Context) {
	maybeToken := self.tokens.Next(ctx)
	if !maybeToken.IsPresent() {
		self.finish()
		return
	}
	t := maybeToken.Value()
	self.lastEnd = t.Span.End
	switch t.Type {
	case syntax.TokenTypeWhitespace:
		if self.lineStart {
			self.indent = self.measure(t.Value)
		}
		return
	case syntax.TokenTypeNewline:
		self.lineStart = true
		self.indent = 0
		if len(self.brackets) > 0 {
			return
		}
		if self.content {
			self.pending = t
		}
		self.content = false
		return
	}
	if self.lineStart && len(self.brackets) == 0 && !self.layout(t) {
		return
	}
	self.lineStart = false
	self.content = true
	if !self.track(t) {
		return
	}
	self.queue = append(self.queue, t)
}

// layout compares the indentation of the logical line starting at t with the
// innermost open block.
func (self *preprocessor) layout(t *syntax.Token) bool {
	top := self.depths[len(self.depths)-1]
	switch {
	case self.indent > top:
		if self.pending == nil {
			self.fail(t.Span.Start, exc.CodeInconsistentIndent, "unexpected indent")
			return false
		}
		self.pending = nil
		self.depths = append(self.depths, self.indent)
		self.queue = append(self.queue, synthetic(syntax.TokenTypeCurlyOpen, "{", t.Span.Start))
	case self.indent == top:
		self.flush()
	default:
		self.flush()
		open := self.openDepths()
		for len(self.depths) > 1 && self.indent < self.depths[len(self.depths)-1] {
			self.depths = self.depths[:len(self.depths)-1]
			self.queue = append(self.queue, synthetic(syntax.TokenTypeCurlyClose, "}", t.Span.Start))
		}
		if self.indent != self.depths[len(self.depths)-1] {
			self.fail(t.Span.Start, exc.CodeInconsistentIndent, fmt.Sprintf("inconsistent dedent to column %d; open blocks are indented %s", self.indent+1, open))
			return false
		}
	}
	return true
}

var closerFor = map[syntax.TokenType]syntax.TokenType{
	syntax.TokenTypeParenClose:  syntax.TokenTypeParenOpen,
	syntax.TokenTypeSquareClose: syntax.TokenTypeSquareOpen,
	syntax.TokenTypeCurlyClose:  syntax.TokenTypeCurlyOpen,
}

func (self *preprocessor) track(t *syntax.Token) bool {
	switch t.Type {
	case syntax.TokenTypeParenOpen, syntax.TokenTypeSquareOpen, syntax.TokenTypeCurlyOpen:
		self.brackets = append(self.brackets, t)
	case syntax.TokenTypeParenClose, syntax.TokenTypeSquareClose, syntax.TokenTypeCurlyClose:
		if len(self.brackets) == 0 {
			self.fail(t.Span.Start, exc.CodeUnbalancedBracket, fmt.Sprintf("unbalanced %q", t.Value))
			return false
		}
		open := self.brackets[len(self.brackets)-1]
		if open.Type != closerFor[t.Type] {
			self.fail(t.Span.Start, exc.CodeUnbalancedBracket, fmt.Sprintf("unbalanced %q: %q opened at %s is still open", t.Value, open.Value, open.Span.Start))
			return false
		}
		self.brackets = self.brackets[:len(self.brackets)-1]
	}
	return true
}

func (self *preprocessor) finish() {
	self.flush()
	for len(self.depths) > 1 {
		self.depths = self.depths[:len(self.depths)-1]
		self.queue = append(self.queue, synthetic(syntax.TokenTypeCurlyClose, "}", self.lastEnd))
	}
	self.queue = append(self.queue, &syntax.Token{
		Span: syntax.Span{Start: self.lastEnd, End: self.lastEnd},
		Type: syntax.TokenTypeEOF,
	})
	self.done = true
}

func (self *preprocessor) flush() {
	if self.pending != nil {
		self.queue = append(self.queue, self.pending)
		self.pending = nil
	}
}

// measure returns the width of leading whitespace. A tab advances to the next
// multiple of the tab width.
func (self *preprocessor) measure(ws string) int {
	width := 0
	for _, r := range ws {
		if r == '\t' {
			width = (width/self.tabWidth + 1) * self.tabWidth
			continue
		}
		width = width + 1
	}
	return width
}

func (self *preprocessor) openDepths() string {
	parts := make([]string, 0, len(self.depths))
	for _, d := range self.depths {
		parts = append(parts, fmt.Sprint(d))
	}
	return strings.Join(parts, ", ")
}

func (self *preprocessor) fail(loc syntax.Location, code string, message string) {
	_ = self.reporter.Report(exc.New(exc.Location{URI: self.uri, Location: loc}, code, message))
	self.queue = nil
	self.done = true
}

func synthetic(kind syntax.TokenType, value string, at syntax.Location) *syntax.Token {
	return &syntax.Token{
		Span:      syntax.Span{Start: at, End: at},
		Type:      kind,
		Value:     value,
		Synthetic: true,
	}
}
