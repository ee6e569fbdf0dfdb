package annotators

import (
	"context"

	"github.com/fustilio/glost/pkg/doctree"
	"github.com/fustilio/glost/pkg/extension"
)

// NormalizeID is the id of the normalize extension.
const NormalizeID = "normalize"

// Normalize builds the extension that tidies a freshly-parsed tree with
// a whole-tree transform: empty text and whitespace leaves are dropped
// and runs of consecutive whitespace nodes collapse into one. Other
// extensions usually list it as a dependency so they see a clean tree.
func Normalize() *extension.Extension {
	return &extension.Extension{
		ID:   NormalizeID,
		Name: "Tree Normalization",
		Transform: func(ctx context.Context, tree *doctree.Node) (*doctree.Node, error) {
			normalize(tree)
			return tree, nil
		},
	}
}

func normalize(n *doctree.Node) {
	if len(n.Children) == 0 {
		return
	}
	kept := n.Children[:0]
	prevWhitespace := false
	for _, c := range n.Children {
		if c == nil {
			continue
		}
		switch c.Kind {
		case doctree.KindText:
			if c.Text == "" {
				continue
			}
			prevWhitespace = false
		case doctree.KindWhitespace:
			if c.Text == "" || prevWhitespace {
				continue
			}
			prevWhitespace = true
		default:
			prevWhitespace = false
		}
		normalize(c)
		kept = append(kept, c)
	}
	// Zero the tail so dropped nodes do not linger in the backing array.
	for i := len(kept); i < len(n.Children); i++ {
		n.Children[i] = nil
	}
	n.Children = kept
}
