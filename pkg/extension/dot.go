package extension

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// ToDOT returns a Graphviz DOT representation of the dependency graph
// over the given extensions.
//
// Solid edges point from an extension to each of its dependencies;
// dashed red edges mark explicit conflict declarations. Extensions with
// an enhance behavior render as ellipses, transforms as boxes, and
// visitor-only extensions as rounded boxes, so the graph doubles as a
// behavior overview.
//
// The DOT output can be rendered with Graphviz tools (dot, neato, etc.)
// or programmatically with RenderSVG.
func ToDOT(exts []*Extension) string {
	var buf bytes.Buffer
	buf.WriteString("digraph extensions {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontname=\"SF Mono, Menlo, monospace\", fontsize=14, style=filled, fillcolor=white];\n\n")

	inSet := make(map[string]bool, len(exts))
	for _, e := range exts {
		inSet[e.ID] = true
	}

	for _, e := range exts {
		shape := "box"
		style := "filled"
		switch {
		case e.Enhance != nil:
			shape = "ellipse"
		case e.Transform == nil && len(e.Visitors) > 0:
			style = "filled,rounded"
		}
		fmt.Fprintf(&buf, "  %q [label=%q, shape=%s, style=%q];\n", e.ID, e.ID, shape, style)
	}
	buf.WriteString("\n")

	for _, e := range exts {
		for _, dep := range e.Dependencies {
			if inSet[dep] {
				fmt.Fprintf(&buf, "  %q -> %q;\n", e.ID, dep)
			}
		}
		for _, c := range e.Conflicts {
			if inSet[c] {
				fmt.Fprintf(&buf, "  %q -> %q [style=dashed, color=red, arrowhead=none];\n", e.ID, c)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders the dependency graph as an SVG image.
//
// RenderSVG generates a DOT representation via ToDOT, then uses Graphviz
// to render it to SVG format. The returned bytes are a complete SVG
// document suitable for embedding in HTML or saving to a file.
//
// All errors are wrapped with context using fmt.Errorf with %w, suitable
// for unwrapping with errors.Unwrap or errors.Is.
func RenderSVG(exts []*Extension) ([]byte, error) {
	dot := ToDOT(exts)

	gv, err := graphviz.New(context.Background())
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(context.Background(), g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render SVG: %w", err)
	}
	return buf.Bytes(), nil
}
