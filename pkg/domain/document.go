package domain

import (
	"encoding/json"
	"fmt"
)

// DocumentVersion is the wire format version written on export.
const DocumentVersion = "1.0"

// Document is the persisted page format: a version string and the page tree.
type Document struct {
	Version string         `json:"version"`
	Root    *ComponentNode `json:"root"`
}

// ParseDocument decodes a persisted document. It rejects malformed JSON and a
// missing root key; it performs no structural validation beyond that (see
// ValidateTree for the import-boundary invariant check).
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	if doc.Root == nil {
		return nil, ErrMissingRoot
	}
	return &doc, nil
}

// Marshal serializes the document for export.
func (d *Document) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return data, nil
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	return &Document{Version: d.Version, Root: d.Root.Clone()}
}
