package runtime_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/arborui/arbor/internal/runtime"
	"github.com/arborui/arbor/internal/store"
	"github.com/arborui/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink captures consoleLog and alert output.
type recordingSink struct {
	mu     sync.Mutex
	logs   []any
	alerts []any
}

func (s *recordingSink) Log(message any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, message)
}

func (s *recordingSink) Alert(message any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, message)
}

func setState(id, key string, value any) domain.Action {
	return domain.Action{
		ID:     id,
		Type:   domain.ActionSetState,
		Config: map[string]any{"key": key, "value": value},
	}
}

func TestRun_SetState_EvaluatesValueNotKey(t *testing.T) {
	s := store.New()
	p := runtime.NewPipeline(s)

	s.SetContextValue("user", map[string]any{"name": "Alice"})
	p.Run(context.Background(), []domain.Action{
		setState("a1", "{{ user.name }}", "{{ user.name }}"),
	}, nil)

	ctx := s.ContextSnapshot()
	// The key is verbatim; only the value went through the evaluator.
	assert.Equal(t, "Alice", ctx["{{ user.name }}"])
}

func TestRun_LocalContextWinsOverRuntime(t *testing.T) {
	s := store.New()
	p := runtime.NewPipeline(s)

	s.SetContextValue("who", "runtime")
	p.Run(context.Background(), []domain.Action{
		setState("a1", "result", "{{ who }}"),
	}, map[string]any{"who": "local"})

	assert.Equal(t, "local", s.ContextSnapshot()["result"])
}

func TestRun_LaterActionsSeeEarlierWrites(t *testing.T) {
	s := store.New()
	sink := &recordingSink{}
	p := runtime.NewPipeline(s, runtime.WithSink(sink))

	p.Run(context.Background(), []domain.Action{
		setState("a1", "step", float64(1)),
		{ID: "a2", Type: domain.ActionConsoleLog, Config: map[string]any{"message": "step={{ step }}"}},
	}, nil)

	require.Len(t, sink.logs, 1)
	assert.Equal(t, "step=1", sink.logs[0])
}

func TestRun_FailingActionDoesNotAbortList(t *testing.T) {
	s := store.New()
	sink := &recordingSink{}
	p := runtime.NewPipeline(s, runtime.WithSink(sink))

	p.Run(context.Background(), []domain.Action{
		{ID: "a1", Type: domain.ActionType("teleport"), Config: map[string]any{}},
		setState("a2", "", "no key"), // invalid setState
		{ID: "a3", Type: domain.ActionAlert, Config: map[string]any{"message": "still here"}},
	}, nil)

	require.Len(t, sink.alerts, 1)
	assert.Equal(t, "still here", sink.alerts[0])
}

func TestRun_ActionOrdering_AcrossSlowWebhook(t *testing.T) {
	s := store.New()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(150 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"k":99}}`))
	}))
	defer server.Close()

	p := runtime.NewPipeline(s)
	p.Run(context.Background(), []domain.Action{
		setState("a1", "k", float64(1)),
		{ID: "a2", Type: domain.ActionWebhook, Config: map[string]any{
			"url":             server.URL,
			"responseMapping": map[string]any{"k": "data.k"},
		}},
		setState("a3", "k", float64(2)),
	}, nil)

	// Action 3 runs only after the webhook settled, so its synchronous write
	// is the final one; the slow response mapping never clobbers it.
	assert.Equal(t, float64(2), s.ContextSnapshot()["k"])
}

func TestRun_ConsoleLogPreservesNativeType(t *testing.T) {
	s := store.New()
	sink := &recordingSink{}
	p := runtime.NewPipeline(s, runtime.WithSink(sink))

	s.SetContextValue("count", float64(5))
	p.Run(context.Background(), []domain.Action{
		{ID: "a1", Type: domain.ActionConsoleLog, Config: map[string]any{"message": "{{ count }}"}},
	}, nil)

	require.Len(t, sink.logs, 1)
	assert.Equal(t, float64(5), sink.logs[0])
}
