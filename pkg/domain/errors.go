package domain

import "errors"

// ErrMissingRoot is returned when a document lacks the top-level "root" key.
var ErrMissingRoot = errors.New("document has no root node")

// ErrNodeNotFound is returned when an event trigger names an unknown node.
var ErrNodeNotFound = errors.New("node not found")

// ErrDocumentNotFound is returned when a document name cannot be found in a store.
var ErrDocumentNotFound = errors.New("document not found")
