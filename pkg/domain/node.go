package domain

// Kind identifies the component family of a node. It is a closed enumeration:
// whether a node may carry children is determined solely by its kind.
type Kind string

const (
	KindPage      Kind = "page"
	KindContainer Kind = "container"
	KindRow       Kind = "row"
	KindColumn    Kind = "column"
	KindInput     Kind = "input"
	KindButton    Kind = "button"
	KindText      Kind = "text"
	KindImage     Kind = "image"
	KindTable     Kind = "table"
	KindSelect    Kind = "select"
)

// IsContainer reports whether nodes of this kind may carry children.
func (k Kind) IsContainer() bool {
	switch k {
	case KindPage, KindContainer, KindRow, KindColumn:
		return true
	}
	return false
}

// Valid reports whether k is a member of the closed kind enumeration.
func (k Kind) Valid() bool {
	switch k {
	case KindPage, KindContainer, KindRow, KindColumn,
		KindInput, KindButton, KindText, KindImage, KindTable, KindSelect:
		return true
	}
	return false
}

// Direction selects the sibling a node is swapped with during a reorder.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// ComponentNode is one node of the page tree.
//
// ID is the sole identity key: globally unique within a tree and immutable
// after creation. Props and Style are open JSON-like mappings; string values
// in Props (and Label) may be templates. Style is opaque to the core.
// Events maps an event name (e.g. "onClick") to the ordered action list run
// when the event fires.
type ComponentNode struct {
	ID     string              `json:"id"`
	Kind   Kind                `json:"kind"`
	Label  string              `json:"label,omitempty"`
	Props  map[string]any      `json:"props,omitempty"`
	Style  map[string]any      `json:"style,omitempty"`
	Events map[string][]Action `json:"events,omitempty"`

	// Children is present only for container kinds. Leaf nodes never carry
	// children through any public operation.
	Children []*ComponentNode `json:"children,omitempty"`
}

// Fields is a partial update applied to a node via UpdateFields.
// Nil members are left untouched; non-nil members replace the corresponding
// field wholesale (shallow merge at the node level, no deep merge).
// Identity (ID), Kind and Children are deliberately not representable here.
type Fields struct {
	Label  *string
	Props  map[string]any
	Style  map[string]any
	Events map[string][]Action
}

// Clone returns a deep copy of the partial update, detached from any maps the
// caller still holds.
func (f Fields) Clone() Fields {
	clone := Fields{
		Props: copyMap(f.Props),
		Style: copyMap(f.Style),
	}
	if f.Label != nil {
		label := *f.Label
		clone.Label = &label
	}
	if f.Events != nil {
		clone.Events = make(map[string][]Action, len(f.Events))
		for name, actions := range f.Events {
			copied := make([]Action, len(actions))
			for i, a := range actions {
				copied[i] = a.Clone()
			}
			clone.Events[name] = copied
		}
	}
	return clone
}

// Clone returns a deep copy of the node and its entire subtree.
func (n *ComponentNode) Clone() *ComponentNode {
	if n == nil {
		return nil
	}
	clone := &ComponentNode{
		ID:    n.ID,
		Kind:  n.Kind,
		Label: n.Label,
		Props: copyMap(n.Props),
		Style: copyMap(n.Style),
	}
	if n.Events != nil {
		clone.Events = make(map[string][]Action, len(n.Events))
		for name, actions := range n.Events {
			copied := make([]Action, len(actions))
			for i, a := range actions {
				copied[i] = a.Clone()
			}
			clone.Events[name] = copied
		}
	}
	if n.Children != nil {
		clone.Children = make([]*ComponentNode, len(n.Children))
		for i, child := range n.Children {
			clone.Children[i] = child.Clone()
		}
	}
	return clone
}

// Walk visits the subtree rooted at n in depth-first pre-order.
// Returning false from fn stops the traversal.
func (n *ComponentNode) Walk(fn func(*ComponentNode) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, child := range n.Children {
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}

// Find returns the first node in pre-order whose ID matches, or nil.
// Ids are supposed unique; on a duplicate the first encountered wins.
func (n *ComponentNode) Find(id string) *ComponentNode {
	var found *ComponentNode
	n.Walk(func(node *ComponentNode) bool {
		if node.ID == id {
			found = node
			return false
		}
		return true
	})
	return found
}

// copyMap deep-copies a JSON-like mapping (nested maps and slices included).
func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return copyMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	default:
		// Scalars (string, bool, float64, nil, json.Number) are immutable.
		return v
	}
}
