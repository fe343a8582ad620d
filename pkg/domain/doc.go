/*
Package domain contains the core domain models for the Arbor editor.

It defines the fundamental entities of a page document: the component tree,
the typed actions attached to component events, and the persisted document
format. This package is kept pure and free of external I/O, following
Hexagonal Architecture principles.

# Key Entities

  - ComponentNode: A node in the page tree, identified by a unique ID and a
    closed Kind enumeration that determines whether it may carry children.
  - Action: A tagged unit of side-effecting behavior (setState, consoleLog,
    alert, n8n-webhook) whose open config decodes into a typed payload.
  - Document: The persisted wire format, a version string plus the page root.
*/
package domain
