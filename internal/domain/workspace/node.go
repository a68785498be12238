package workspace

import (
	"fmt"
	"strings"
)

// Node is one entity in a fetched hierarchy snapshot.
// A tree is never mutated once built.
type Node struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Kind     Kind    `json:"type"`
	Children []*Node `json:"children,omitempty"`
}

// NewRoot creates the synthetic workspace node.
func NewRoot(teamID string) *Node {
	return &Node{ID: teamID, Name: "Workspace", Kind: KindWorkspace}
}

// Add appends child and returns it.
func (n *Node) Add(child *Node) *Node {
	n.Children = append(n.Children, child)
	return child
}

// Match is a node found by a search together with its ancestors, root first.
type Match struct {
	Node      *Node
	Ancestors []*Node
}

// Path renders the ancestors below the workspace plus the node itself,
// e.g. "Engineering / Sprint 1 / Backlog".
func (m Match) Path() string {
	parts := make([]string, 0, len(m.Ancestors)+1)
	for _, a := range m.Ancestors {
		if a.Kind == KindWorkspace {
			continue
		}
		parts = append(parts, a.Name)
	}
	parts = append(parts, m.Node.Name)
	return strings.Join(parts, " / ")
}

// Walk visits every descendant of n depth-first in child order.
// Returning false from fn skips that node's children.
func (n *Node) Walk(fn func(node *Node, ancestors []*Node) bool) {
	n.walk(nil, fn)
}

func (n *Node) walk(ancestors []*Node, fn func(*Node, []*Node) bool) {
	path := append(ancestors[:len(ancestors):len(ancestors)], n)
	for _, c := range n.Children {
		if fn(c, path) {
			c.walk(path, fn)
		}
	}
}

// FindByName returns every descendant of the given kind whose name equals
// name, ignoring case and surrounding whitespace.
func (n *Node) FindByName(kind Kind, name string) []Match {
	want := strings.TrimSpace(name)
	var matches []Match
	n.Walk(func(node *Node, ancestors []*Node) bool {
		if node.Kind == kind && strings.EqualFold(strings.TrimSpace(node.Name), want) {
			matches = append(matches, Match{Node: node, Ancestors: ancestors})
		}
		return true
	})
	return matches
}

// FindByID returns the descendant of the given kind with the given ID.
func (n *Node) FindByID(kind Kind, id string) (Match, bool) {
	var found Match
	ok := false
	n.Walk(func(node *Node, ancestors []*Node) bool {
		if ok {
			return false
		}
		if node.Kind == kind && node.ID == id {
			found = Match{Node: node, Ancestors: ancestors}
			ok = true
			return false
		}
		return true
	})
	return found, ok
}

// Count returns the number of descendants of the given kind.
func (n *Node) Count(kind Kind) int {
	total := 0
	n.Walk(func(node *Node, _ []*Node) bool {
		if node.Kind == kind {
			total++
		}
		return true
	})
	return total
}

// Render formats the tree as indented text with box-drawing connectors.
func Render(root *Node) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s ID: %s)\n", root.Name, root.Kind.Label(), root.ID)
	renderChildren(&b, root.Children, "")
	return strings.TrimRight(b.String(), "\n")
}

func renderChildren(b *strings.Builder, children []*Node, prefix string) {
	for i, c := range children {
		last := i == len(children)-1
		connector, indent := "├── ", "│   "
		if last {
			connector, indent = "└── ", "    "
		}
		fmt.Fprintf(b, "%s%s%s (%s ID: %s)\n", prefix, connector, c.Name, c.Kind.Label(), c.ID)
		renderChildren(b, c.Children, prefix+indent)
	}
}
