package arbor

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/arborui/arbor/internal/logging"
	"github.com/arborui/arbor/internal/runtime"
	"github.com/arborui/arbor/internal/store"
	"github.com/arborui/arbor/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Version is the library version, also reported by the CLI.
const Version = "0.1.0"

// Sink is where consoleLog and alert actions surface. The default sink writes
// both through the editor's structured logger.
type Sink interface {
	Log(message any)
	Alert(message any)
}

// Editor is the high-level entry point for the Arbor library. It owns the
// component tree and the runtime data context for one editing session and
// exposes the structural mutation contract, the document boundary and event
// triggering.
type Editor struct {
	store    *store.Store
	pipeline *runtime.Pipeline
	logger   *slog.Logger

	httpClient *http.Client
	sink       Sink
	registerer prometheus.Registerer
	idFunc     store.IDFunc
}

// Option defines a functional option for configuring the Editor.
type Option func(*Editor)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithHTTPClient overrides the client used by webhook actions.
func WithHTTPClient(client *http.Client) Option {
	return func(e *Editor) {
		e.httpClient = client
	}
}

// WithSink redirects consoleLog and alert output.
func WithSink(sink Sink) Option {
	return func(e *Editor) {
		e.sink = sink
	}
}

// WithMetrics registers action pipeline metrics on the given registerer.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(e *Editor) {
		e.registerer = reg
	}
}

// WithIDFunc overrides node id synthesis.
func WithIDFunc(fn store.IDFunc) Option {
	return func(e *Editor) {
		e.idFunc = fn
	}
}

// New initializes an Editor with a fresh, empty page.
func New(opts ...Option) *Editor {
	e := &Editor{
		logger: logging.NewNop(),
		idFunc: store.DefaultIDFunc,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.store = store.New(
		store.WithIDFunc(e.idFunc),
		store.WithLogger(e.logger),
	)

	pipelineOpts := []runtime.Option{runtime.WithLogger(e.logger)}
	if e.httpClient != nil {
		pipelineOpts = append(pipelineOpts, runtime.WithHTTPClient(e.httpClient))
	}
	if e.sink != nil {
		pipelineOpts = append(pipelineOpts, runtime.WithSink(e.sink))
	}
	if e.registerer != nil {
		pipelineOpts = append(pipelineOpts, runtime.WithMetrics(runtime.NewMetrics(e.registerer)))
	}
	e.pipeline = runtime.NewPipeline(e.store, pipelineOpts...)

	return e
}

// Snapshot returns the current tree. Snapshots are immutable: concurrent
// readers always see either the fully-prior or fully-new tree.
func (e *Editor) Snapshot() *domain.ComponentNode {
	return e.store.Snapshot()
}

// FindByID returns the first node matching id in pre-order, or nil.
func (e *Editor) FindByID(id string) *domain.ComponentNode {
	return e.store.FindByID(id)
}

// InsertChild appends node as the last child of the container parentID,
// synthesizing a unique id when the caller supplies none. Inserting into a
// missing or leaf parent is a silent no-op (applied reports false).
func (e *Editor) InsertChild(parentID string, node *domain.ComponentNode) (id string, applied bool) {
	return e.store.InsertChild(parentID, node)
}

// UpdateFields shallow-merges the given fields onto the node matching id.
func (e *Editor) UpdateFields(id string, fields domain.Fields) bool {
	return e.store.UpdateFields(id, fields)
}

// Remove detaches the node and its subtree. The root cannot be removed.
func (e *Editor) Remove(id string) bool {
	return e.store.Remove(id)
}

// ReorderSibling swaps the node with its previous (up) or next (down) sibling.
func (e *Editor) ReorderSibling(id string, dir domain.Direction) bool {
	return e.store.ReorderSibling(id, dir)
}

// MoveTo relocates a node under a new container at a clamped position.
// The move is atomic: on any failure the tree is left unchanged.
func (e *Editor) MoveTo(dragID, targetID string, index int) bool {
	return e.store.MoveTo(dragID, targetID, index)
}

// SetContextValue assigns a top-level runtime context key.
func (e *Editor) SetContextValue(key string, value any) {
	e.store.SetContextValue(key, value)
}

// Context returns a copy of the runtime data context's top level.
func (e *Editor) Context() map[string]any {
	return e.store.ContextSnapshot()
}

// Select sets the advisory selection pointer; empty clears it.
func (e *Editor) Select(id string) {
	e.store.Select(id)
}

// Selected returns the advisory selection pointer.
func (e *Editor) Selected() string {
	return e.store.Selected()
}

// ReplaceTree swaps the whole tree without validation; the caller owns the
// incoming tree's invariants. Prefer Import at document boundaries.
func (e *Editor) ReplaceTree(root *domain.ComponentNode) {
	e.store.ReplaceTree(root)
}

// Import loads a persisted document: it rejects malformed JSON, a missing
// root and invariant violations, leaving the current tree untouched on any
// failure; on success it replaces the tree wholesale and reinitializes the
// runtime data context.
func (e *Editor) Import(data []byte) error {
	doc, err := domain.ParseDocument(data)
	if err != nil {
		return err
	}
	if err := domain.ValidateTree(doc.Root); err != nil {
		return fmt.Errorf("invalid document structure: %w", err)
	}

	e.store.ReplaceTree(doc.Root)
	e.store.ResetContext()
	e.logger.Info("document imported", "root_id", doc.Root.ID, "version", doc.Version)
	return nil
}

// Export serializes the current tree as a versioned document.
func (e *Editor) Export() ([]byte, error) {
	doc := e.Document()
	return doc.Marshal()
}

// Document returns the current tree wrapped in the persisted format.
func (e *Editor) Document() *domain.Document {
	return &domain.Document{Version: domain.DocumentVersion, Root: e.store.Snapshot()}
}

// Trigger fires a component event: it resolves the node's action list for the
// event and interprets it in declared order against the runtime context
// overlaid by local. It blocks until the list settles; independent triggers
// may run concurrently and interleave (last writer wins on the shared
// context).
//
// A node with no actions for the event is a successful no-op. Failures of
// individual actions are surfaced through the logger and sink, never as an
// error here.
func (e *Editor) Trigger(ctx context.Context, nodeID, event string, local map[string]any) error {
	node := e.store.FindByID(nodeID)
	if node == nil {
		return fmt.Errorf("trigger %s on %s: %w", event, nodeID, domain.ErrNodeNotFound)
	}
	e.pipeline.Run(ctx, node.Events[event], local)
	return nil
}
