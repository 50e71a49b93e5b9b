package cache

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestExportImport_Roundtrip(t *testing.T) {
	src := NewMemory(0)
	src.Set("k1", "v1")
	src.Set("k2", "v2")

	var buf bytes.Buffer
	if err := NewExporter(src).Export(&buf, map[string]string{"target_language": "pt"}); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var export ExportFormat
	if err := json.Unmarshal(buf.Bytes(), &export); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if export.Version != "1.0" {
		t.Errorf("version = %q", export.Version)
	}
	if len(export.Entries) != 2 {
		t.Errorf("entries = %d, want 2", len(export.Entries))
	}
	if export.Metadata["target_language"] != "pt" {
		t.Errorf("metadata = %v", export.Metadata)
	}

	dst := NewMemory(0)
	result, err := NewImporter(dst).Import(&buf)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if result.Imported != 2 || result.Failed != 0 {
		t.Errorf("result = %+v", result)
	}

	for key, want := range map[string]string{"k1": "v1", "k2": "v2"} {
		if got, ok := dst.Get(key); !ok || got != want {
			t.Errorf("imported %s = %q (%v), want %q", key, got, ok, want)
		}
	}
}

func TestExport_UnsupportedCache(t *testing.T) {
	db := struct{ TranslationCache }{}
	err := NewExporter(db).Export(&bytes.Buffer{}, nil)
	if err == nil || !strings.Contains(err.Error(), "does not support export") {
		t.Errorf("got %v, want unsupported-cache error", err)
	}
}

func TestImport_BadJSON(t *testing.T) {
	if _, err := NewImporter(NewMemory(0)).Import(strings.NewReader("{not json")); err == nil {
		t.Error("expected a decode error")
	}
}
