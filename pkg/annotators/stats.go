package annotators

import (
	"context"

	"github.com/fustilio/glost/pkg/doctree"
	"github.com/fustilio/glost/pkg/extension"
)

// StatsID is the id of the stats extension.
const StatsID = "stats"

// Stats builds the extension that writes structural counts into
// extras.stats on container nodes: word counts on sentences, word and
// sentence counts on paragraphs, and document totals on the root.
//
// Stats only reads the subtree below each visited node and mutates that
// node's own extras, so it composes with any enhancer.
func Stats() *extension.Extension {
	return &extension.Extension{
		ID:   StatsID,
		Name: "Structure Statistics",
		Provides: &extension.Contract{
			Extras: []string{"stats"},
		},
		Visitors: map[doctree.Kind]extension.VisitFunc{
			doctree.KindSentence: func(ctx context.Context, n *doctree.Node) error {
				n.SetExtra("stats", map[string]any{
					"words": doctree.Count(n, doctree.KindWord),
				})
				return nil
			},
			doctree.KindParagraph: func(ctx context.Context, n *doctree.Node) error {
				n.SetExtra("stats", map[string]any{
					"words":     doctree.Count(n, doctree.KindWord),
					"sentences": doctree.Count(n, doctree.KindSentence),
				})
				return nil
			},
			doctree.KindRoot: func(ctx context.Context, n *doctree.Node) error {
				n.SetExtra("stats", map[string]any{
					"words":      doctree.Count(n, doctree.KindWord),
					"sentences":  doctree.Count(n, doctree.KindSentence),
					"paragraphs": doctree.Count(n, doctree.KindParagraph),
				})
				return nil
			},
		},
	}
}
