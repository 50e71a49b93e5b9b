package card

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// upperTranslator marks fields it visited by upper-casing them.
type upperTranslator struct {
	calls []string
	err   error
}

func (u *upperTranslator) TranslateField(_ context.Context, text string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	u.calls = append(u.calls, text)
	return strings.ToUpper(text), nil
}

func TestCharacterName(t *testing.T) {
	if got := CharacterName(map[string]any{"name": "Aria"}); got != "Aria" {
		t.Errorf("root name: got %q", got)
	}
	if got := CharacterName(map[string]any{"data": map[string]any{"name": "Aria"}}); got != "Aria" {
		t.Errorf("nested name: got %q", got)
	}
	if got := CharacterName(map[string]any{}); got != "" {
		t.Errorf("missing name: got %q", got)
	}
}

func TestDeepCopy_Independent(t *testing.T) {
	src := map[string]any{
		"name": "Aria",
		"data": map[string]any{"description": "original"},
	}
	dst, err := DeepCopy(src)
	if err != nil {
		t.Fatal(err)
	}

	dst["data"].(map[string]any)["description"] = "changed"
	if src["data"].(map[string]any)["description"] != "original" {
		t.Error("DeepCopy shares nested maps with the source")
	}
}

func TestTranslate_FieldSelection(t *testing.T) {
	data := map[string]any{
		"name":        "Aria",
		"description": "a tall woman",
		"tags":        []any{"fantasy"},
		"spec":        "chara_card_v2",
		"data": map[string]any{
			"name":      "Aria",
			"scenario":  "in the tavern",
			"first_mes": "hello traveler",
			"extensions": map[string]any{
				"depth": "leave me",
			},
		},
	}

	ft := &upperTranslator{}
	if err := Translate(context.Background(), data, ft, false); err != nil {
		t.Fatal(err)
	}

	if data["description"] != "A TALL WOMAN" {
		t.Errorf("description = %v", data["description"])
	}
	inner := data["data"].(map[string]any)
	if inner["scenario"] != "IN THE TAVERN" || inner["first_mes"] != "HELLO TRAVELER" {
		t.Errorf("nested fields = %v", inner)
	}

	// Untouched: name (disabled), spec marker, tags, extensions.
	if data["name"] != "Aria" || inner["name"] != "Aria" {
		t.Error("name translated despite translateName=false")
	}
	if data["spec"] != "chara_card_v2" {
		t.Errorf("spec = %v", data["spec"])
	}
	if inner["extensions"].(map[string]any)["depth"] != "leave me" {
		t.Error("extensions should not be translated")
	}
}

func TestTranslate_NameWhenEnabled(t *testing.T) {
	data := map[string]any{"name": "Aria"}
	if err := Translate(context.Background(), data, &upperTranslator{}, true); err != nil {
		t.Fatal(err)
	}
	if data["name"] != "ARIA" {
		t.Errorf("name = %v", data["name"])
	}
}

func TestTranslate_AlternateGreetings(t *testing.T) {
	data := map[string]any{
		"alternate_greetings": []any{"hi there", "well met", 42},
		"data": map[string]any{
			"alternate_greetings": []any{"nested greeting"},
		},
	}
	if err := Translate(context.Background(), data, &upperTranslator{}, false); err != nil {
		t.Fatal(err)
	}

	got := data["alternate_greetings"].([]any)
	if len(got) != 3 || got[0] != "HI THERE" || got[1] != "WELL MET" {
		t.Errorf("greetings = %v", got)
	}
	if got[2] != 42 {
		t.Errorf("non-string greeting not preserved: %v", got[2])
	}
	nested := data["data"].(map[string]any)["alternate_greetings"].([]any)
	if len(nested) != 1 || nested[0] != "NESTED GREETING" {
		t.Errorf("nested greetings = %v", nested)
	}
}

func TestTranslate_PropagatesError(t *testing.T) {
	boom := errors.New("config trouble")
	data := map[string]any{"description": "text"}

	err := Translate(context.Background(), data, &upperTranslator{err: boom}, false)
	if !errors.Is(err, boom) {
		t.Errorf("got %v, want wrapped translator error", err)
	}
}

func TestTranslate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	data := map[string]any{"description": "text"}
	ft := &upperTranslator{}
	if err := Translate(ctx, data, ft, false); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
	if len(ft.calls) != 0 {
		t.Error("translator called after cancellation")
	}
}
