package domain

import (
	"encoding/json"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ActionDescriptor is the machine-readable payload a diagram author embeds
// in a node note, e.g. {"action":"LoadProfile","params":{"id":"{{userId}}"}}.
type ActionDescriptor struct {
	Action string            `json:"action" mapstructure:"action"`
	Params map[string]string `json:"params" mapstructure:"params"`
}

// TryParseJSONObject attempts to decode text as a JSON object.
// The boolean result replaces exception-driven control flow: callers branch
// on the tag, never on a recovered failure.
func TryParseJSONObject(text string) (map[string]any, bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// ParseActionDescriptor decodes a node's JSON metadata into an
// ActionDescriptor. It returns false when the text is not a JSON object or
// carries no "action" key; JSON without an action is legal and simply not
// actionable.
func ParseActionDescriptor(text string) (*ActionDescriptor, bool) {
	obj, ok := TryParseJSONObject(text)
	if !ok {
		return nil, false
	}
	if _, hasAction := obj["action"]; !hasAction {
		return nil, false
	}

	var desc ActionDescriptor
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &desc,
		WeaklyTypedInput: true, // numeric params arrive as float64 from JSON
	})
	if err != nil {
		return nil, false
	}
	if err := decoder.Decode(obj); err != nil {
		return nil, false
	}
	if desc.Action == "" {
		return nil, false
	}
	if desc.Params == nil {
		desc.Params = make(map[string]string)
	}
	return &desc, true
}
