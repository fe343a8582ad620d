package runtime_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/arborui/arbor/internal/runtime"
	"github.com/arborui/arbor/internal/store"
	"github.com/arborui/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturingServer records the requests a webhook action sends.
type capturingServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []capturedRequest
}

type capturedRequest struct {
	Method      string
	ContentType string
	Body        map[string]any
	HasBody     bool
}

func newCapturingServer(response string) *capturingServer {
	cs := &capturingServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		req := capturedRequest{
			Method:      r.Method,
			ContentType: r.Header.Get("Content-Type"),
			HasBody:     len(raw) > 0,
		}
		if len(raw) > 0 {
			json.Unmarshal(raw, &req.Body)
		}
		cs.mu.Lock()
		cs.requests = append(cs.requests, req)
		cs.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(response))
	}))
	return cs
}

func (cs *capturingServer) last(t *testing.T) capturedRequest {
	t.Helper()
	cs.mu.Lock()
	defer cs.mu.Unlock()
	require.NotEmpty(t, cs.requests)
	return cs.requests[len(cs.requests)-1]
}

func webhook(config map[string]any) domain.Action {
	return domain.Action{ID: "wh", Type: domain.ActionWebhook, Config: config}
}

func TestWebhook_DefaultsToPostWithJSONContentType(t *testing.T) {
	srv := newCapturingServer(`{}`)
	defer srv.Close()

	s := store.New()
	p := runtime.NewPipeline(s)
	p.Run(context.Background(), []domain.Action{webhook(map[string]any{"url": srv.URL})}, nil)

	req := srv.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "application/json", req.ContentType)
}

func TestWebhook_BodyCarriesFullRuntimeContext(t *testing.T) {
	srv := newCapturingServer(`{}`)
	defer srv.Close()

	s := store.New()
	s.SetContextValue("session", "abc")
	p := runtime.NewPipeline(s)

	// The broadcast is the entire runtime context at call time, not the
	// merged/local view.
	p.Run(context.Background(), []domain.Action{
		webhook(map[string]any{"url": srv.URL, "body": map[string]any{"op": "save"}}),
	}, map[string]any{"localOnly": true})

	body := srv.last(t).Body
	assert.Equal(t, "save", body["op"])
	broadcast := body["context"].(map[string]any)
	assert.Equal(t, "abc", broadcast["session"])
	assert.NotContains(t, broadcast, "localOnly")
}

func TestWebhook_GetOmitsBody(t *testing.T) {
	srv := newCapturingServer(`{}`)
	defer srv.Close()

	s := store.New()
	p := runtime.NewPipeline(s)
	p.Run(context.Background(), []domain.Action{
		webhook(map[string]any{"url": srv.URL, "method": "get"}),
	}, nil)

	req := srv.last(t)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.False(t, req.HasBody)
}

func TestWebhook_StringBodyParsedAsJSON(t *testing.T) {
	srv := newCapturingServer(`{}`)
	defer srv.Close()

	s := store.New()
	p := runtime.NewPipeline(s)
	p.Run(context.Background(), []domain.Action{
		webhook(map[string]any{"url": srv.URL, "body": `{"parsed": true}`}),
	}, nil)

	assert.Equal(t, true, srv.last(t).Body["parsed"])
}

func TestWebhook_StringBodyFallsBackToEvaluatedValue(t *testing.T) {
	srv := newCapturingServer(`{}`)
	defer srv.Close()

	s := store.New()
	s.SetContextValue("name", "Alice")
	p := runtime.NewPipeline(s)
	p.Run(context.Background(), []domain.Action{
		webhook(map[string]any{"url": srv.URL, "body": "hello {{ name }}"}),
	}, nil)

	assert.Equal(t, "hello Alice", srv.last(t).Body["value"])
}

func TestWebhook_ResponseMapping(t *testing.T) {
	srv := newCapturingServer(`{"data":{"name":"Alice","age":30}}`)
	defer srv.Close()

	s := store.New()
	p := runtime.NewPipeline(s)
	p.Run(context.Background(), []domain.Action{
		webhook(map[string]any{
			"url": srv.URL,
			"responseMapping": map[string]any{
				"user.name": "data.name",  // literal target key, not a nested path
				"missing":   "data.ghost", // missing path: skipped, no mutation
			},
		}),
	}, nil)

	ctx := s.ContextSnapshot()
	assert.Equal(t, "Alice", ctx["user.name"])
	assert.NotContains(t, ctx, "missing")
	assert.NotContains(t, ctx, "lastResult")
}

func TestWebhook_NoMappingWritesLastResult(t *testing.T) {
	srv := newCapturingServer(`{"ok":true,"items":[1,2]}`)
	defer srv.Close()

	s := store.New()
	p := runtime.NewPipeline(s)
	p.Run(context.Background(), []domain.Action{webhook(map[string]any{"url": srv.URL})}, nil)

	last := s.ContextSnapshot()["lastResult"].(map[string]any)
	assert.Equal(t, true, last["ok"])
}

func TestWebhook_NetworkFailureMutatesNothing(t *testing.T) {
	srv := newCapturingServer(`{}`)
	srv.Close() // refuse connections

	s := store.New()
	p := runtime.NewPipeline(s)
	p.Run(context.Background(), []domain.Action{
		webhook(map[string]any{"url": srv.URL, "responseMapping": map[string]any{"k": "v"}}),
		setState("after", "reached", true),
	}, nil)

	ctx := s.ContextSnapshot()
	assert.NotContains(t, ctx, "k")
	assert.NotContains(t, ctx, "lastResult")
	// The failing webhook did not abort the rest of the list.
	assert.Equal(t, true, ctx["reached"])
}

func TestWebhook_NonJSONResponseMutatesNothing(t *testing.T) {
	srv := newCapturingServer(`<html>not json</html>`)
	defer srv.Close()

	s := store.New()
	p := runtime.NewPipeline(s)
	p.Run(context.Background(), []domain.Action{webhook(map[string]any{"url": srv.URL})}, nil)

	assert.NotContains(t, s.ContextSnapshot(), "lastResult")
}

func TestWebhook_MissingURLFails(t *testing.T) {
	s := store.New()
	p := runtime.NewPipeline(s)
	p.Run(context.Background(), []domain.Action{webhook(map[string]any{})}, nil)

	assert.Empty(t, s.ContextSnapshot())
}
