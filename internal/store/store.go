// Package store owns the component tree and the runtime data context for one
// editing session. It is the single source of truth for tree structure:
// every mutation happens on a private clone of the whole tree and the root
// pointer is swapped only on full success, so a reader holding a snapshot
// never observes a partial mutation.
package store

import (
	"log/slog"
	"sync"

	"github.com/arborui/arbor/internal/logging"
	"github.com/arborui/arbor/pkg/domain"
	"github.com/google/uuid"
)

// IDFunc synthesizes a globally-unique node id for a given kind.
type IDFunc func(kind domain.Kind) string

// DefaultIDFunc prefixes a random UUID with the node kind. Collisions are a
// correctness bug, not a condition to tolerate, so the full UUID is kept.
func DefaultIDFunc(kind domain.Kind) string {
	return string(kind) + "-" + uuid.NewString()
}

// Store holds the tree, the runtime data context and the advisory selection.
type Store struct {
	mu       sync.RWMutex
	root     *domain.ComponentNode
	context  map[string]any
	selected string

	newID  IDFunc
	logger *slog.Logger
}

// Option configures the Store.
type Option func(*Store)

// WithIDFunc overrides the node id synthesis strategy.
func WithIDFunc(fn IDFunc) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

// WithLogger configures a logger for rejected mutations.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a store rooted at a fresh, empty page node.
func New(opts ...Option) *Store {
	s := &Store{
		context: make(map[string]any),
		newID:   DefaultIDFunc,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.root = &domain.ComponentNode{
		ID:       s.newID(domain.KindPage),
		Kind:     domain.KindPage,
		Children: []*domain.ComponentNode{},
	}
	return s
}

// Snapshot returns the current tree. The returned tree is immutable by
// contract: mutations build a new tree and swap the root, so callers may
// traverse a snapshot concurrently with any number of mutations.
func (s *Store) Snapshot() *domain.ComponentNode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

// FindByID returns the first node matching id in pre-order, or nil.
// The result belongs to the current snapshot and must not be mutated.
func (s *Store) FindByID(id string) *domain.ComponentNode {
	return s.Snapshot().Find(id)
}

// InsertChild appends node as the last child of the container parentID.
// If node carries no id, or an id already present in the tree, a fresh one is
// synthesized. Inserting into a missing or leaf parent is a silent no-op.
// It returns the inserted node's id and whether the insert applied.
func (s *Store) InsertChild(parentID string, node *domain.ComponentNode) (string, bool) {
	if node == nil {
		return "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.root.Clone()
	parent := next.Find(parentID)
	if parent == nil || !parent.Kind.IsContainer() {
		s.logger.Debug("insert rejected", "parent_id", parentID)
		return "", false
	}

	child := node.Clone()
	if child.ID == "" || next.Find(child.ID) != nil {
		child.ID = s.newID(child.Kind)
	}
	if child.Kind.IsContainer() {
		if child.Children == nil {
			child.Children = []*domain.ComponentNode{}
		}
	} else {
		// Leaf kinds never gain children, whatever the caller passed.
		child.Children = nil
	}

	parent.Children = append(parent.Children, child)
	s.root = next
	return child.ID, true
}

// UpdateFields shallow-merges the given fields onto the node matching id,
// replacing each provided field wholesale. Identity, kind and children are
// not reachable through this path. No-op if the node is not found.
func (s *Store) UpdateFields(id string, fields domain.Fields) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.root.Clone()
	node := next.Find(id)
	if node == nil {
		return false
	}

	// Detach from the caller's maps so later mutations on their side cannot
	// reach the committed snapshot.
	fields = fields.Clone()

	if fields.Label != nil {
		node.Label = *fields.Label
	}
	if fields.Props != nil {
		node.Props = fields.Props
	}
	if fields.Style != nil {
		node.Style = fields.Style
	}
	if fields.Events != nil {
		node.Events = fields.Events
	}

	s.root = next
	return true
}

// Remove detaches the node (and its entire subtree) from its parent. The root
// cannot be removed. Selection is cleared if the removed id was selected.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == s.root.ID {
		return false
	}

	next := s.root.Clone()
	if detach(next, id) == nil {
		return false
	}

	s.root = next
	if s.selected == id {
		s.selected = ""
	}
	return true
}

// ReorderSibling swaps the node with its immediate previous (up) or next
// (down) sibling. Reordering the root, a missing node, or past either end of
// the sibling list is a silent no-op.
func (s *Store) ReorderSibling(id string, dir domain.Direction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == s.root.ID {
		return false
	}

	next := s.root.Clone()
	parent, idx := parentOf(next, id)
	if parent == nil {
		return false
	}

	target := idx - 1
	if dir == domain.DirectionDown {
		target = idx + 1
	}
	if target < 0 || target >= len(parent.Children) {
		return false
	}

	parent.Children[idx], parent.Children[target] = parent.Children[target], parent.Children[idx]
	s.root = next
	return true
}

// MoveTo relocates the node dragID to become a child of targetID at the given
// position (clamped into the valid range). The operation is atomic: it runs
// against a private clone and commits only on full success, so a failed move
// leaves the tree byte-for-byte unchanged and never orphans the subtree.
//
// The target is located after the dragged subtree is detached, which rejects
// moving a node into its own descendant.
func (s *Store) MoveTo(dragID, targetID string, index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dragID == s.root.ID || dragID == targetID {
		return false
	}

	next := s.root.Clone()
	dragged := detach(next, dragID)
	if dragged == nil {
		return false
	}

	target := next.Find(targetID)
	if target == nil || !target.Kind.IsContainer() {
		s.logger.Debug("move rejected", "drag_id", dragID, "target_id", targetID)
		return false
	}

	if index < 0 {
		index = 0
	}
	if index > len(target.Children) {
		index = len(target.Children)
	}

	target.Children = append(target.Children, nil)
	copy(target.Children[index+1:], target.Children[index:])
	target.Children[index] = dragged

	s.root = next
	return true
}

// ReplaceTree swaps the whole tree, used for document load. The incoming tree
// is deep-copied so the caller keeps no aliases into live store state.
// Selection is cleared; invariants of the incoming tree are the caller's
// responsibility (see domain.ValidateTree for the import boundary).
func (s *Store) ReplaceTree(root *domain.ComponentNode) {
	if root == nil {
		return
	}
	next := root.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.root = next
	s.selected = ""
}

// SetContextValue assigns a top-level key in the runtime data context,
// replacing any prior value. Last writer wins; there is no deep merge.
func (s *Store) SetContextValue(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.context[key] = value
}

// ContextSnapshot returns a copy of the runtime data context's top level.
func (s *Store) ContextSnapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]any, len(s.context))
	for k, v := range s.context {
		out[k] = v
	}
	return out
}

// ResetContext discards every runtime context key, used on document load.
func (s *Store) ResetContext() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.context = make(map[string]any)
}

// Select sets the advisory selection pointer. Any id is accepted, including
// non-existent ones; an empty id clears the selection.
func (s *Store) Select(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = id
}

// Selected returns the advisory selection pointer, or "" when nothing is
// selected.
func (s *Store) Selected() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// parentOf locates the parent of id and the child index of id beneath it.
func parentOf(root *domain.ComponentNode, id string) (*domain.ComponentNode, int) {
	var parent *domain.ComponentNode
	idx := -1
	root.Walk(func(n *domain.ComponentNode) bool {
		for i, child := range n.Children {
			if child.ID == id {
				parent, idx = n, i
				return false
			}
		}
		return true
	})
	return parent, idx
}

// detach splices the node matching id out of its parent's child list and
// returns it, or nil if id is the root or absent.
func detach(root *domain.ComponentNode, id string) *domain.ComponentNode {
	parent, idx := parentOf(root, id)
	if parent == nil {
		return nil
	}
	node := parent.Children[idx]
	parent.Children = append(parent.Children[:idx], parent.Children[idx+1:]...)
	return node
}
