package expr_test

import (
	"testing"

	"github.com/arborui/arbor/pkg/expr"
	"github.com/stretchr/testify/assert"
)

func TestEvaluate_PureReference_PreservesType(t *testing.T) {
	ctx := map[string]any{"a": map[string]any{"b": float64(5)}}

	assert.Equal(t, float64(5), expr.Evaluate("{{ a.b }}", ctx))
	assert.Equal(t, map[string]any{"b": float64(5)}, expr.Evaluate("{{ a }}", ctx))
}

func TestEvaluate_PureReference_Missing(t *testing.T) {
	assert.Nil(t, expr.Evaluate("{{ missing }}", map[string]any{}))
	assert.Nil(t, expr.Evaluate("{{ a.deep.path }}", map[string]any{"a": "scalar"}))
}

func TestEvaluate_Interpolation(t *testing.T) {
	ctx := map[string]any{"a": map[string]any{"b": float64(5)}, "name": "Alice"}

	assert.Equal(t, "x=5", expr.Evaluate("x={{ a.b }}", ctx))
	assert.Equal(t, "Alice has 5", expr.Evaluate("{{ name }} has {{ a.b }}", ctx))
}

func TestEvaluate_Interpolation_MissingIsEmpty(t *testing.T) {
	// Never the literal "undefined".
	assert.Equal(t, "y=", expr.Evaluate("y={{ missing }}", map[string]any{}))
}

func TestEvaluate_PureReference_Whitespace(t *testing.T) {
	ctx := map[string]any{"n": float64(7)}

	// Surrounding whitespace does not demote a pure reference to interpolation.
	assert.Equal(t, float64(7), expr.Evaluate("  {{ n }}  ", ctx))
}

func TestEvaluate_TwoReferences_NotPure(t *testing.T) {
	ctx := map[string]any{"a": float64(1), "b": float64(2)}

	assert.Equal(t, "1 2", expr.Evaluate("{{ a }} {{ b }}", ctx))
}

func TestEvaluate_Literal(t *testing.T) {
	assert.Equal(t, "plain text", expr.Evaluate("plain text", map[string]any{}))
}

func TestEvaluate_NonString_Unchanged(t *testing.T) {
	assert.Equal(t, 42, expr.Evaluate(42, map[string]any{}))
	assert.Equal(t, true, expr.Evaluate(true, map[string]any{}))
	value := map[string]any{"k": "v"}
	assert.Equal(t, value, expr.Evaluate(value, map[string]any{}))
	assert.Nil(t, expr.Evaluate(nil, map[string]any{}))
}

func TestEvaluate_EmptyReference(t *testing.T) {
	assert.Nil(t, expr.Evaluate("{{ }}", map[string]any{"a": 1}))
	assert.Equal(t, "x=", expr.Evaluate("x={{ }}", map[string]any{"a": 1}))
}

func TestLookup_SequenceIndexing(t *testing.T) {
	ctx := map[string]any{
		"items": []any{
			map[string]any{"name": "first"},
			map[string]any{"name": "second"},
		},
	}

	v, ok := expr.Lookup(ctx, "items.1.name")
	assert.True(t, ok)
	assert.Equal(t, "second", v)

	_, ok = expr.Lookup(ctx, "items.5.name")
	assert.False(t, ok)
	_, ok = expr.Lookup(ctx, "items.-1")
	assert.False(t, ok)
	_, ok = expr.Lookup(ctx, "items.x")
	assert.False(t, ok)
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "5", expr.Stringify(float64(5)))
	assert.Equal(t, "5.5", expr.Stringify(float64(5.5)))
	assert.Equal(t, "true", expr.Stringify(true))
	assert.Equal(t, "", expr.Stringify(nil))
	assert.Equal(t, `{"k":"v"}`, expr.Stringify(map[string]any{"k": "v"}))
	assert.Equal(t, `[1,2]`, expr.Stringify([]any{float64(1), float64(2)}))
}
