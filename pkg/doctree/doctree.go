// Package doctree defines the linguistic document tree that annotation
// extensions operate on.
//
// A document is a tree of tagged nodes: a root owning paragraphs, which
// own sentences, which own words, punctuation, symbols, and whitespace.
// Every node carries a schema-less annotation map ("extras") that
// extensions write into; word nodes additionally carry transcriptions
// keyed by scheme name (e.g. "ipa").
//
// The package also provides the generic traversal utilities (Walk,
// WalkPath, Words) and the deep-merge engine (MergeExtras) that folds
// one extension's partial output into a node's extras without erasing
// what earlier extensions wrote.
//
// A tree is exclusively owned by the caller for one pipeline run. The
// engine may replace it wholesale (transforms) or mutate it in place
// (visitors, enhancers); nothing in this package retains state across
// calls.
package doctree

import (
	"errors"
)

var (
	// ErrNilNode is returned by traversal functions when the root is nil.
	ErrNilNode = errors.New("node must not be nil")

	// ErrUnknownKind is returned by the codec when a serialized node
	// carries a kind outside the closed set of variants.
	ErrUnknownKind = errors.New("unknown node kind")
)

// Kind tags a node variant. The set of kinds is closed; visitor tables
// dispatch on it without reflection.
type Kind string

const (
	KindRoot        Kind = "root"
	KindParagraph   Kind = "paragraph"
	KindSentence    Kind = "sentence"
	KindWord        Kind = "word"
	KindText        Kind = "text"
	KindPunctuation Kind = "punctuation"
	KindSymbol      Kind = "symbol"
	KindWhitespace  Kind = "whitespace"
	KindSource      Kind = "source"
)

// Kinds lists every node variant. Useful for validating visitor tables.
var Kinds = []Kind{
	KindRoot, KindParagraph, KindSentence, KindWord, KindText,
	KindPunctuation, KindSymbol, KindWhitespace, KindSource,
}

// containerKinds are the variants that own an ordered child sequence.
var containerKinds = map[Kind]bool{
	KindRoot:      true,
	KindParagraph: true,
	KindSentence:  true,
	KindSource:    true,
}

// Valid reports whether k is one of the closed set of node kinds.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Container reports whether nodes of this kind own children.
func (k Kind) Container() bool { return containerKinds[k] }

// Transcription is a phonetic or romanized rendering of a word under a
// named scheme.
type Transcription struct {
	Scheme string `json:"scheme"`           // scheme name, e.g. "ipa", "pinyin"
	Value  string `json:"value"`            // the rendering itself
	Source string `json:"source,omitempty"` // provider that produced it (optional)
}

// Node is one vertex of the document tree. The zero value is not usable;
// construct nodes with the New* helpers or decode them with ReadDocument.
//
// Extras is the schema-less annotation map extensions write into. Values
// are JSON-shaped (string, bool, float64, int, []any, map[string]any) by
// convention so MergeExtras stays total. Extras may be nil until the
// first write.
//
// Transcriptions is only meaningful on word nodes and maps scheme name
// to transcription record.
type Node struct {
	Kind           Kind                     `json:"kind"`
	Text           string                   `json:"text,omitempty"`
	Children       []*Node                  `json:"children,omitempty"`
	Extras         map[string]any           `json:"extras,omitempty"`
	Transcriptions map[string]Transcription `json:"transcriptions,omitempty"`
}

// NewRoot creates a root node owning the given children.
func NewRoot(children ...*Node) *Node {
	return &Node{Kind: KindRoot, Children: children}
}

// NewParagraph creates a paragraph node owning the given children.
func NewParagraph(children ...*Node) *Node {
	return &Node{Kind: KindParagraph, Children: children}
}

// NewSentence creates a sentence node owning the given children.
func NewSentence(children ...*Node) *Node {
	return &Node{Kind: KindSentence, Children: children}
}

// NewSource creates a source node recording provenance text (e.g. the
// raw input line a sentence was segmented from) with optional children.
func NewSource(text string, children ...*Node) *Node {
	return &Node{Kind: KindSource, Text: text, Children: children}
}

// NewWord creates a word node for the given surface form.
func NewWord(text string) *Node {
	return &Node{Kind: KindWord, Text: text}
}

// NewText creates a plain text leaf.
func NewText(text string) *Node {
	return &Node{Kind: KindText, Text: text}
}

// NewPunctuation creates a punctuation leaf.
func NewPunctuation(text string) *Node {
	return &Node{Kind: KindPunctuation, Text: text}
}

// NewSymbol creates a symbol leaf.
func NewSymbol(text string) *Node {
	return &Node{Kind: KindSymbol, Text: text}
}

// NewWhitespace creates a whitespace leaf.
func NewWhitespace(text string) *Node {
	return &Node{Kind: KindWhitespace, Text: text}
}

// IsWord reports whether the node is a word node.
func (n *Node) IsWord() bool { return n.Kind == KindWord }

// SetTranscription records a transcription under its scheme name,
// initializing the map on first use.
func (n *Node) SetTranscription(t Transcription) {
	if n.Transcriptions == nil {
		n.Transcriptions = make(map[string]Transcription, 1)
	}
	n.Transcriptions[t.Scheme] = t
}

// Transcription returns the transcription for the given scheme and true,
// or a zero record and false when absent.
func (n *Node) Transcription(scheme string) (Transcription, bool) {
	t, ok := n.Transcriptions[scheme]
	return t, ok
}

// Extra returns the extras value stored under key, or nil when absent.
func (n *Node) Extra(key string) any {
	if n.Extras == nil {
		return nil
	}
	return n.Extras[key]
}

// SetExtra stores a value under key, initializing the map on first use.
func (n *Node) SetExtra(key string, value any) {
	if n.Extras == nil {
		n.Extras = make(map[string]any, 1)
	}
	n.Extras[key] = value
}

// Clone deep-copies the tree rooted at n, including extras and
// transcriptions. Extras values that are maps or slices are copied
// recursively; scalar values are shared (they are immutable by
// convention).
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{Kind: n.Kind, Text: n.Text}
	if n.Children != nil {
		out.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.Clone()
		}
	}
	if n.Extras != nil {
		out.Extras = cloneMap(n.Extras)
	}
	if n.Transcriptions != nil {
		out.Transcriptions = make(map[string]Transcription, len(n.Transcriptions))
		for k, v := range n.Transcriptions {
			out.Transcriptions[k] = v
		}
	}
	return out
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
