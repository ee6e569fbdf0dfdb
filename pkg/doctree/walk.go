package doctree

import (
	"strconv"
	"strings"
)

// Path locates a node within a tree as the trail of child indices from
// the root. The root itself has the empty path.
type Path []int

// String renders the path as "/" for the root or "/0/2/1" for a nested
// node. The format appears in run reports to identify failing nodes.
func (p Path) String() string {
	if len(p) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, i := range p {
		b.WriteByte('/')
		b.WriteString(strconv.Itoa(i))
	}
	return b.String()
}

// Child returns the path extended by one child index. The receiver is
// not modified.
func (p Path) Child(i int) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = i
	return out
}

// Walk traverses the tree in pre-order, invoking fn for each node.
// Traversal stops at the first error, which is returned to the caller.
//
// fn must not restructure the child sequence of any ancestor of the node
// it is visiting; mutating the visited node's own fields is fine. This
// keeps traversal order well-defined within one pass.
func Walk(n *Node, fn func(*Node) error) error {
	if n == nil {
		return ErrNilNode
	}
	if err := fn(n); err != nil {
		return err
	}
	for _, c := range n.Children {
		if c == nil {
			continue
		}
		if err := Walk(c, fn); err != nil {
			return err
		}
	}
	return nil
}

// WalkPath is Walk with the node's path supplied to the callback.
func WalkPath(n *Node, fn func(*Node, Path) error) error {
	if n == nil {
		return ErrNilNode
	}
	return walkPath(n, nil, fn)
}

func walkPath(n *Node, p Path, fn func(*Node, Path) error) error {
	if err := fn(n, p); err != nil {
		return err
	}
	for i, c := range n.Children {
		if c == nil {
			continue
		}
		if err := walkPath(c, p.Child(i), fn); err != nil {
			return err
		}
	}
	return nil
}

// Words collects every word node in traversal (pre-)order together with
// its path. This is the node set the per-word enhancer pass runs over.
func Words(n *Node) []WordRef {
	var words []WordRef
	_ = WalkPath(n, func(node *Node, p Path) error {
		if node.IsWord() {
			words = append(words, WordRef{Node: node, Path: p})
		}
		return nil
	})
	return words
}

// WordRef pairs a word node with its location in the tree.
type WordRef struct {
	Node *Node
	Path Path
}

// Count returns the number of nodes of the given kind in the tree.
func Count(n *Node, kind Kind) int {
	total := 0
	_ = Walk(n, func(node *Node) error {
		if node.Kind == kind {
			total++
		}
		return nil
	})
	return total
}
