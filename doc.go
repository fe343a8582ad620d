/*
Package arbor is a schema-driven page editor core: an in-memory tree of
component descriptors edited through a strict structural mutation contract,
a template evaluator binding "{{ path }}" references to a runtime data
context, and an interpreter for the declarative actions attached to component
events.

The visual chrome is deliberately out of scope. Arbor is the engine a canvas
or preview sits on: the presentation layer consumes immutable tree snapshots
and the evaluator, and gesture handling feeds structural-edit requests into
the store. This Hexagonal split allows the core to be embedded behind any
surface: an HTTP API, an MCP server, or a desktop shell.

# Key Properties

  - Atomic structure: every mutation runs on a private clone of the tree and
    commits only on full success; readers never see a partial edit.
  - Forgiving edits: invalid structural operations (insert into a leaf, move
    into a descendant, unknown ids) are silent no-ops, not errors.
  - Ordered effects: one event's action list executes strictly in declared
    order, including across the webhook await point; independent events
    interleave with last-writer-wins context semantics.

# Usage

	editor := arbor.New(arbor.WithLogger(logger))

	rootID := editor.Snapshot().ID
	id, _ := editor.InsertChild(rootID, &domain.ComponentNode{
		Kind:  domain.KindButton,
		Label: "Hello {{ user.name }}",
	})

	editor.SetContextValue("user", map[string]any{"name": "Ada"})
	_ = editor.Trigger(context.Background(), id, "onClick", nil)

	data, _ := editor.Export()
*/
package arbor
