package doctree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Document Serialization API
// =============================================================================

// MarshalDocument converts a document tree to indented JSON bytes.
func MarshalDocument(n *Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeDocumentTo(n, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteDocument writes a document tree as JSON to an io.Writer.
func WriteDocument(n *Node, w io.Writer) error {
	return writeDocumentTo(n, w)
}

// WriteDocumentFile writes a document tree to a JSON file.
// The file is created with 0644 permissions.
func WriteDocumentFile(n *Node, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeDocumentTo(n, f)
}

// ReadDocument decodes a JSON document tree from an io.Reader.
// Returns validation errors for unknown node kinds or children on
// non-container nodes.
func ReadDocument(r io.Reader) (*Node, error) {
	var n Node
	if err := json.NewDecoder(r).Decode(&n); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := validate(&n); err != nil {
		return nil, err
	}
	return &n, nil
}

// ReadDocumentFile reads a JSON file and returns the decoded tree.
func ReadDocumentFile(path string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadDocument(f)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeDocumentTo(n *Node, w io.Writer) error {
	if n == nil {
		return ErrNilNode
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(n); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func validate(n *Node) error {
	return WalkPath(n, func(node *Node, p Path) error {
		if !node.Kind.Valid() {
			return fmt.Errorf("node %s: %w: %q", p, ErrUnknownKind, node.Kind)
		}
		if len(node.Children) > 0 && !node.Kind.Container() {
			return fmt.Errorf("node %s: %s nodes cannot have children", p, node.Kind)
		}
		return nil
	})
}
