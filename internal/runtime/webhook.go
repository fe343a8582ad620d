package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/arborui/arbor/pkg/domain"
	"github.com/arborui/arbor/pkg/expr"
)

// lastResultKey receives the whole response JSON when no response mapping is
// configured, keeping an unconfigured webhook observable.
const lastResultKey = "lastResult"

// callWebhook issues the outbound HTTP request for an n8n-webhook action and
// remaps the response into the runtime context. On any network or parse
// failure the action fails without mutating the context.
func (p *Pipeline) callWebhook(ctx context.Context, cfg domain.WebhookConfig, merged map[string]any) error {
	if cfg.URL == "" {
		return fmt.Errorf("webhook requires a url")
	}

	method := strings.ToUpper(cfg.Method)
	if method == "" {
		method = http.MethodPost
	}

	var bodyReader io.Reader
	if method != http.MethodGet {
		payload := p.buildBody(cfg.Body, merged)
		// The body always broadcasts the entire runtime data context at call
		// time, not the merged/local view.
		payload["context"] = p.store.ContextSnapshot()

		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode webhook body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, cfg.URL, bodyReader)
	if err != nil {
		return fmt.Errorf("invalid webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := p.client.Do(req)
	p.metrics.observeWebhook(time.Since(start))
	if err != nil {
		return fmt.Errorf("webhook call failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read webhook response: %w", err)
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("webhook response is not JSON: %w", err)
	}

	if len(cfg.ResponseMapping) > 0 {
		for key, path := range cfg.ResponseMapping {
			value, found := expr.Lookup(parsed, path)
			if !found {
				// A missing path skips that key; no partial garbage.
				p.logger.Debug("response mapping path missing", "key", key, "path", path)
				continue
			}
			p.store.SetContextValue(key, value)
		}
		return nil
	}

	p.store.SetContextValue(lastResultKey, parsed)
	return nil
}

// buildBody constructs the request payload from the configured body.
// An object is used as-is; a string is parsed as JSON when possible, and
// otherwise evaluated as a template and wrapped under "value"; anything else
// (absent, scalar, array) is wrapped the same way, or yields an empty object.
func (p *Pipeline) buildBody(body any, merged map[string]any) map[string]any {
	switch v := body.(type) {
	case nil:
		return map[string]any{}
	case map[string]any:
		out := make(map[string]any, len(v)+1)
		for k, val := range v {
			out[k] = val
		}
		return out
	case string:
		var parsed any
		if err := json.Unmarshal([]byte(v), &parsed); err == nil {
			if obj, ok := parsed.(map[string]any); ok {
				return obj
			}
			return map[string]any{"value": parsed}
		}
		return map[string]any{"value": expr.Evaluate(v, merged)}
	default:
		return map[string]any{"value": v}
	}
}
