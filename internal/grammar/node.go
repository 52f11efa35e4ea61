package grammar

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.wendlang.org/wendc/internal/syntax"
)

// Node is one rule match in a concrete parse tree. Children holds the rule
// matches made directly by this rule's expression, in source order. Captures
// holds the labelled sub-matches, also in source order.
type Node struct {
	Rule     string
	Span     syntax.Span
	Children []*Node
	Captures map[string][]Match
}

// Match is a labelled sub-match: either a rule match or a single token.
type Match struct {
	Node  *Node
	Token *syntax.Token
}

// Capture returns every match recorded under label.
func (n *Node) Capture(label string) []Match {
	return n.Captures[label]
}

// labels returns the capture labels ordered by where they first matched.
func (n *Node) labels() []string {
	out := make([]string, 0, len(n.Captures))
	for label := range n.Captures {
		out = append(out, label)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := n.Captures[out[i]][0].offset(), n.Captures[out[j]][0].offset()
		if a != b {
			return a < b
		}
		return out[i] < out[j]
	})
	return out
}

func (m Match) offset() int64 {
	if m.Node != nil {
		return m.Node.Span.Start.Offset
	}
	return m.Token.Span.Start.Offset
}

// Dump writes an indented rendering of the tree. Rules without captures are
// shown with their children so that pass-through rules stay visible.
func Dump(w io.Writer, n *Node) error {
	return dump(w, n, "", 0)
}

func dump(w io.Writer, n *Node, label string, depth int) error {
	indent := strings.Repeat("  ", depth)
	if label != "" {
		label = label + ": "
	}
	if _, err := fmt.Fprintf(w, "%s%s%s [%s-%s]\n", indent, label, n.Rule, n.Span.Start, n.Span.End); err != nil {
		return err
	}
	captured := make(map[*Node]bool)
	for _, l := range n.labels() {
		for _, m := range n.Captures[l] {
			if m.Node != nil {
				captured[m.Node] = true
				if err := dump(w, m.Node, l, depth+1); err != nil {
					return err
				}
				continue
			}
			if _, err := fmt.Fprintf(w, "%s  %s: %q\n", indent, l, m.Token.Value); err != nil {
				return err
			}
		}
	}
	for _, child := range n.Children {
		if captured[child] {
			continue
		}
		if err := dump(w, child, "", depth+1); err != nil {
			return err
		}
	}
	return nil
}
