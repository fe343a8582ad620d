package domain

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// ActionType tags the variant of an action's configuration.
type ActionType string

const (
	// ActionSetState assigns an evaluated value to a runtime context key.
	ActionSetState ActionType = "setState"
	// ActionConsoleLog surfaces an evaluated message as a diagnostic.
	ActionConsoleLog ActionType = "consoleLog"
	// ActionAlert surfaces an evaluated message as a user-visible notice.
	ActionAlert ActionType = "alert"
	// ActionWebhook issues an outbound HTTP request with optional response
	// remapping into the runtime context.
	ActionWebhook ActionType = "n8n-webhook"
)

// Action is a typed, configured unit of side-effecting behavior attached to a
// component event. Config is an open mapping on the wire; the recognized keys
// depend on Type and are decoded into the typed payload structs below.
type Action struct {
	ID     string         `json:"id"`
	Type   ActionType     `json:"type"`
	Config map[string]any `json:"config,omitempty"`
}

// Clone returns a deep copy of the action.
func (a Action) Clone() Action {
	return Action{ID: a.ID, Type: a.Type, Config: copyMap(a.Config)}
}

// SetStateConfig is the payload of a setState action. Key is used verbatim as
// the target context key; Value is evaluated as a template before assignment.
type SetStateConfig struct {
	Key   string `mapstructure:"key"`
	Value any    `mapstructure:"value"`
}

// MessageConfig is the payload of consoleLog and alert actions.
type MessageConfig struct {
	Message any `mapstructure:"message"`
}

// WebhookConfig is the payload of an n8n-webhook action.
//
// URL and Method are used verbatim (Method defaults to POST). Body may be an
// object (used as-is), a string (parsed as JSON, or wrapped as {"value": ...}
// on parse failure), or absent. ResponseMapping maps target context keys to
// dotted paths into the response JSON; when empty the whole response is
// written to the "lastResult" context key.
type WebhookConfig struct {
	URL             string            `mapstructure:"url"`
	Method          string            `mapstructure:"method"`
	Body            any               `mapstructure:"body"`
	ResponseMapping map[string]string `mapstructure:"responseMapping"`
}

// SetState decodes the action's config as a setState payload.
func (a Action) SetState() (SetStateConfig, error) {
	var cfg SetStateConfig
	err := decodeConfig(a, &cfg)
	return cfg, err
}

// Message decodes the action's config as a consoleLog/alert payload.
func (a Action) Message() (MessageConfig, error) {
	var cfg MessageConfig
	err := decodeConfig(a, &cfg)
	return cfg, err
}

// Webhook decodes the action's config as an n8n-webhook payload.
func (a Action) Webhook() (WebhookConfig, error) {
	var cfg WebhookConfig
	err := decodeConfig(a, &cfg)
	return cfg, err
}

func decodeConfig(a Action, out any) error {
	if err := mapstructure.Decode(a.Config, out); err != nil {
		return fmt.Errorf("action %s (%s): invalid config: %w", a.ID, a.Type, err)
	}
	return nil
}
