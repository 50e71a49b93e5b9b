// Package card traverses SillyTavern character card and preset
// documents, translating the prose fields and leaving everything else
// untouched.
package card

import (
	"context"
	"encoding/json"
	"fmt"
)

// FieldTranslator translates one document field at a time.
// *cardlingo.Pipeline satisfies this.
type FieldTranslator interface {
	TranslateField(ctx context.Context, text string) (string, error)
}

// translatableFields are the card fields carrying prose. Order matters
// only for determinism; every field is independent.
var translatableFields = []string{
	"description",
	"personality",
	"scenario",
	"first_mes",
	"mes_example",
	"system_prompt",
	"post_history_instructions",
	"creator_notes",
}

// CharacterName extracts the display name from a card, checking the
// root level and the V2 "data" object.
func CharacterName(data map[string]any) string {
	if name, ok := data["name"].(string); ok {
		return name
	}
	if inner, ok := data["data"].(map[string]any); ok {
		if name, ok := inner["name"].(string); ok {
			return name
		}
	}
	return ""
}

// DeepCopy returns an independent copy of a card document via a JSON
// round trip. The input must itself have come from JSON.
func DeepCopy(data map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("copying card data: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("copying card data: %w", err)
	}
	return out, nil
}

// Translate translates the prose fields of a card in place, at the
// root level and under the V2 "data" object. The name field is only
// translated when translateName is set.
//
// The context is checked between fields so a cancellation stops the
// card promptly rather than mid-document.
func Translate(ctx context.Context, data map[string]any, ft FieldTranslator, translateName bool) error {
	if err := translateLevel(ctx, data, ft, translateName); err != nil {
		return err
	}
	if inner, ok := data["data"].(map[string]any); ok {
		if err := translateLevel(ctx, inner, ft, translateName); err != nil {
			return err
		}
	}
	return nil
}

func translateLevel(ctx context.Context, m map[string]any, ft FieldTranslator, translateName bool) error {
	fields := translatableFields
	if translateName {
		fields = append([]string{"name"}, fields...)
	}

	for _, field := range fields {
		if err := ctx.Err(); err != nil {
			return err
		}
		text, ok := m[field].(string)
		if !ok {
			continue
		}
		translated, err := ft.TranslateField(ctx, text)
		if err != nil {
			return fmt.Errorf("translating %s: %w", field, err)
		}
		m[field] = translated
	}

	greetings, ok := m["alternate_greetings"].([]any)
	if !ok {
		return nil
	}
	out := make([]any, 0, len(greetings))
	for _, g := range greetings {
		if err := ctx.Err(); err != nil {
			return err
		}
		text, ok := g.(string)
		if !ok {
			// Malformed entries survive the round trip untouched.
			out = append(out, g)
			continue
		}
		translated, err := ft.TranslateField(ctx, text)
		if err != nil {
			return fmt.Errorf("translating alternate_greetings: %w", err)
		}
		out = append(out, translated)
	}
	m["alternate_greetings"] = out
	return nil
}
