package card

import (
	"context"
	"fmt"
	"strings"
)

// presetFields are the prompt-bearing keys in a SillyTavern preset,
// matched at any nesting depth.
var presetFields = map[string]bool{
	"content":                 true,
	"new_group_chat_prompt":   true,
	"new_example_chat_prompt": true,
	"continue_nudge_prompt":   true,
	"wi_format":               true,
	"personality_format":      true,
	"group_nudge_prompt":      true,
	"scenario_format":         true,
	"new_chat_prompt":         true,
	"impersonation_prompt":    true,
	"bias_preset_selected":    true,
	"assistant_impersonation": true,
}

// TranslatePreset translates the prompt fields of a preset document in
// place, walking nested objects and arrays.
func TranslatePreset(ctx context.Context, data any, ft FieldTranslator) error {
	switch node := data.(type) {
	case map[string]any:
		for key, value := range node {
			if text, ok := value.(string); ok && presetFields[key] && strings.TrimSpace(text) != "" {
				if err := ctx.Err(); err != nil {
					return err
				}
				translated, err := ft.TranslateField(ctx, text)
				if err != nil {
					return fmt.Errorf("translating %s: %w", key, err)
				}
				node[key] = translated
				continue
			}
			if err := TranslatePreset(ctx, value, ft); err != nil {
				return err
			}
		}
	case []any:
		for _, item := range node {
			if err := TranslatePreset(ctx, item, ft); err != nil {
				return err
			}
		}
	}
	return nil
}
