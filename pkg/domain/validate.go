package domain

import "fmt"

// StructureError represents a single tree invariant violation.
type StructureError struct {
	NodeID string // Offending node, if identifiable
	Reason string // Human-readable reason for failure
}

func (e *StructureError) Error() string {
	if e.NodeID == "" {
		return e.Reason
	}
	return fmt.Sprintf("node %q: %s", e.NodeID, e.Reason)
}

// AggregateError represents multiple invariant violations.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d structure errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// StructureErrors returns all violations if err is an AggregateError.
// Otherwise returns nil.
func StructureErrors(err error) []error {
	if aggr, ok := err.(*AggregateError); ok {
		return aggr.Errors
	}
	return nil
}

// ValidateTree checks the structural invariants of an imported tree: the root
// is a single page node, every id is unique, every kind is known, page occurs
// only at the root, and only container kinds carry children.
//
// Interactive edits keep their silent no-op policy; this check runs only at
// import boundaries, where external data enters the store unvetted.
func ValidateTree(root *ComponentNode) error {
	if root == nil {
		return ErrMissingRoot
	}

	var errs []error
	if root.Kind != KindPage {
		errs = append(errs, &StructureError{
			NodeID: root.ID,
			Reason: fmt.Sprintf("root must be of kind %q, got %q", KindPage, root.Kind),
		})
	}

	seen := make(map[string]bool)
	root.Walk(func(n *ComponentNode) bool {
		if n.ID == "" {
			errs = append(errs, &StructureError{Reason: "node has empty id"})
		} else if seen[n.ID] {
			errs = append(errs, &StructureError{NodeID: n.ID, Reason: "duplicate id"})
		}
		seen[n.ID] = true

		if !n.Kind.Valid() {
			errs = append(errs, &StructureError{
				NodeID: n.ID,
				Reason: fmt.Sprintf("unknown kind %q", n.Kind),
			})
		}
		if n != root && n.Kind == KindPage {
			errs = append(errs, &StructureError{NodeID: n.ID, Reason: "page kind outside root"})
		}
		if len(n.Children) > 0 && !n.Kind.IsContainer() {
			errs = append(errs, &StructureError{
				NodeID: n.ID,
				Reason: fmt.Sprintf("leaf kind %q carries children", n.Kind),
			})
		}
		return true
	})

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
