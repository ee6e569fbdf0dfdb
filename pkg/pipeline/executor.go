package pipeline

import (
	"context"
	"sync"

	"github.com/fustilio/glost/pkg/doctree"
	"github.com/fustilio/glost/pkg/errors"
	"github.com/fustilio/glost/pkg/extension"
)

// execResult is the outcome of running one extension against one tree.
// Tree is always the tree to continue with: the transform's replacement
// on success, or the last consistent tree when a later phase failed.
type execResult struct {
	Tree     *doctree.Node
	Err      error  // nil on success
	NodePath string // set when the failure is attributable to a node
}

// execute runs one extension's behaviors against the tree in order:
// transform, then visitors, then the enhancer pass. Panics inside any
// behavior are recovered and converted to EXTENSION_FAILED so a broken
// extension cannot take down the pipeline.
func execute(ctx context.Context, ext *extension.Extension, tree *doctree.Node, workers int) execResult {
	// Phase 1: transform. Only transforms may restructure the tree; the
	// returned tree replaces the input wholesale.
	if ext.Transform != nil {
		next, err := callTransform(ctx, ext, tree)
		if err != nil {
			return execResult{Tree: tree, Err: err}
		}
		if next != nil {
			tree = next
		}
	}

	// Phase 2: visitors. Full pre-order traversal of the post-transform
	// tree; nodes whose kind has a table entry are visited. Visitors
	// mutate nodes in place and must not restructure the tree, which
	// keeps traversal order well-defined within the pass.
	if len(ext.Visitors) > 0 {
		if res := runVisitors(ctx, ext, tree); res.Err != nil {
			res.Tree = tree
			return res
		}
	}

	// Phase 3: enhancer pass over word nodes.
	if ext.Enhance != nil {
		if res := runEnhance(ctx, ext, tree, workers); res.Err != nil {
			res.Tree = tree
			return res
		}
	}

	return execResult{Tree: tree}
}

func callTransform(ctx context.Context, ext *extension.Extension, tree *doctree.Node) (next *doctree.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			next, err = nil, errors.New(errors.ErrCodeExtensionFailed,
				"extension %q panicked in transform: %v", ext.ID, r)
		}
	}()
	return ext.Transform(ctx, tree)
}

func runVisitors(ctx context.Context, ext *extension.Extension, tree *doctree.Node) execResult {
	var failed execResult
	walkErr := doctree.WalkPath(tree, func(n *doctree.Node, p doctree.Path) error {
		visit, ok := ext.Visitors[n.Kind]
		if !ok {
			return nil
		}
		if err := callVisit(ctx, ext, visit, n); err != nil {
			failed = execResult{Err: err, NodePath: p.String()}
			return err // stop the pass at the first failing node
		}
		return nil
	})
	if failed.Err != nil {
		return failed
	}
	if walkErr != nil {
		return execResult{Err: errors.Wrap(errors.ErrCodeExtensionFailed, walkErr,
			"extension %q visit traversal failed", ext.ID)}
	}
	return execResult{}
}

func callVisit(ctx context.Context, ext *extension.Extension, visit extension.VisitFunc, n *doctree.Node) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.ErrCodeExtensionFailed,
				"extension %q panicked visiting %s node: %v", ext.ID, n.Kind, r)
		}
	}()
	return visit(ctx, n)
}

// enhanceOutcome is one word's enhancer result, indexed by its position
// in traversal order.
type enhanceOutcome struct {
	partial map[string]any
	err     error
}

// runEnhance walks word nodes in traversal order, dispatches enhancer
// invocations to a bounded worker pool, and folds results back in
// traversal order so the report stays deterministic. Per-node failures
// do not abort sibling lookups, but any failure marks the whole
// extension failed; the first failing node (in traversal order) is the
// one reported.
func runEnhance(ctx context.Context, ext *extension.Extension, tree *doctree.Node, workers int) execResult {
	words := doctree.Words(tree)
	if len(words) == 0 {
		return execResult{}
	}
	if workers <= 0 {
		workers = 1
	}

	outcomes := make([]enhanceOutcome, len(words))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i := range words {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			partial, err := callEnhance(ctx, ext, words[i].Node)
			outcomes[i] = enhanceOutcome{partial: partial, err: err}
		}(i)
	}
	wg.Wait()

	// Fold in traversal order. All lookups have settled; merging here
	// keeps the single-writer guarantee on the tree.
	var failed execResult
	for i, w := range words {
		out := outcomes[i]
		if out.err != nil {
			if failed.Err == nil {
				failed = execResult{Err: out.err, NodePath: w.Path.String()}
			}
			continue
		}
		if out.partial != nil {
			w.Node.Extras = doctree.MergeExtras(w.Node.Extras, out.partial)
		}
	}
	return failed
}

func callEnhance(ctx context.Context, ext *extension.Extension, word *doctree.Node) (partial map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			partial, err = nil, errors.New(errors.ErrCodeExtensionFailed,
				"extension %q panicked enhancing word %q: %v", ext.ID, word.Text, r)
		}
	}()
	return ext.Enhance(ctx, word)
}
