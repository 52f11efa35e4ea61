package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"gopkg.wendlang.org/wendc/internal/exc"
)

// renderer formats diagnostics with the offending source line and a caret
// under the reported column.
type renderer struct {
	header   lipgloss.Style
	location lipgloss.Style
	gutter   lipgloss.Style
	caret    lipgloss.Style
}

func newRenderer(w io.Writer, color string) *renderer {
	r := lipgloss.NewRenderer(w)
	switch color {
	case "never":
		r.SetColorProfile(termenv.Ascii)
	case "always":
		r.SetColorProfile(termenv.ANSI256)
	}
	return &renderer{
		header:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		location: r.NewStyle().Foreground(lipgloss.Color("12")),
		gutter:   r.NewStyle().Foreground(lipgloss.Color("8")),
		caret:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	}
}

func (self *renderer) diagnostic(e exc.Exception, source string) string {
	var b strings.Builder
	loc := e.Location()
	fmt.Fprintf(&b, "%s: %s\n", self.header.Render(fmt.Sprintf("%s %s", e.Kind(), e.Code())), e.Message())
	if loc.Line < 1 {
		if loc.URI != "" {
			fmt.Fprintf(&b, "  --> %s\n", self.location.Render(loc.URI))
		}
		return b.String()
	}
	fmt.Fprintf(&b, "  --> %s\n", self.location.Render(loc.String()))
	lines := strings.Split(source, "\n")
	if int(loc.Line) > len(lines) || source == "" {
		return b.String()
	}
	text := strings.TrimRight(lines[loc.Line-1], "\r")
	number := fmt.Sprint(loc.Line)
	pad := strings.Repeat(" ", len(number))
	fmt.Fprintf(&b, "%s %s\n", pad, self.gutter.Render("|"))
	fmt.Fprintf(&b, "%s %s %s\n", self.gutter.Render(number), self.gutter.Render("|"), text)
	fmt.Fprintf(&b, "%s %s %s%s\n", pad, self.gutter.Render("|"), caretPrefix(text, int(loc.Column)), self.caret.Render("^"))
	return b.String()
}

// caretPrefix returns the whitespace that puts a caret under column col of
// text. Tabs are copied so the caret lines up however the terminal expands
// them.
func caretPrefix(text string, col int) string {
	var b strings.Builder
	seen := 1
	for _, r := range text {
		if seen >= col {
			break
		}
		if r == '\t' {
			b.WriteRune('\t')
		} else {
			b.WriteRune(' ')
		}
		seen = seen + 1
	}
	for ; seen < col; seen = seen + 1 {
		b.WriteRune(' ')
	}
	return b.String()
}
