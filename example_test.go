package arbor_test

import (
	"fmt"

	"github.com/arborui/arbor"
	"github.com/arborui/arbor/pkg/domain"
	"github.com/arborui/arbor/pkg/expr"
)

// ExampleEditor builds a minimal page and resolves a templated label against
// the runtime context.
func ExampleEditor() {
	editor := arbor.New()
	rootID := editor.Snapshot().ID

	id, _ := editor.InsertChild(rootID, &domain.ComponentNode{
		Kind:  domain.KindText,
		Label: "Welcome, {{ user.name }}!",
	})

	editor.SetContextValue("user", map[string]any{"name": "Ada"})

	node := editor.FindByID(id)
	fmt.Println(expr.Evaluate(node.Label, editor.Context()))
	// Output: Welcome, Ada!
}
