package loader_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/vanderheijden86/arbor/pkg/loader"
	"github.com/vanderheijden86/arbor/pkg/tree"
)

func collectWarnings() (*[]string, loader.ParseOptions) {
	var warnings []string
	return &warnings, loader.ParseOptions{
		WarningHandler: func(msg string) { warnings = append(warnings, msg) },
	}
}

// =============================================================================
// ItemFromFields Tests
// =============================================================================

func TestItemFromFields(t *testing.T) {
	tests := []struct {
		name    string
		fields  map[string]any
		want    tree.FlatItem
		wantErr bool
	}{
		{
			name:   "label and parentId",
			fields: map[string]any{"id": "2", "label": "Mammals", "parentId": "1"},
			want:   tree.FlatItem{ID: "2", Label: "Mammals", ParentID: "1"},
		},
		{
			name:   "null parent is root",
			fields: map[string]any{"id": "1", "label": "Animals", "parentId": nil},
			want:   tree.FlatItem{ID: "1", Label: "Animals"},
		},
		{
			name:   "snake case parent",
			fields: map[string]any{"id": "b", "name": "B", "parent_id": "a"},
			want:   tree.FlatItem{ID: "b", Label: "B", ParentID: "a"},
		},
		{
			name:   "title fallback and short parent",
			fields: map[string]any{"id": "c", "title": "C", "parent": "b"},
			want:   tree.FlatItem{ID: "c", Label: "C", ParentID: "b"},
		},
		{
			name:   "numeric ids",
			fields: map[string]any{"id": float64(3), "parentId": float64(2)},
			want:   tree.FlatItem{ID: "3", Label: "3", ParentID: "2"},
		},
		{
			name:   "integer ids from yaml and toml",
			fields: map[string]any{"id": int64(7), "parent": 6},
			want:   tree.FlatItem{ID: "7", Label: "7", ParentID: "6"},
		},
		{
			name:   "extra fields kept",
			fields: map[string]any{"id": "x", "label": "X", "size": float64(10), "name": "ignored label"},
			want: tree.FlatItem{ID: "x", Label: "X", Fields: map[string]any{
				"size": float64(10),
				"name": "ignored label",
			}},
		},
		{name: "missing id", fields: map[string]any{"label": "nope"}, wantErr: true},
		{name: "null id", fields: map[string]any{"id": nil}, wantErr: true},
		{name: "blank id", fields: map[string]any{"id": "  "}, wantErr: true},
		{name: "object id", fields: map[string]any{"id": map[string]any{}}, wantErr: true},
		{name: "object parent", fields: map[string]any{"id": "a", "parent": []any{"b"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := loader.ItemFromFields(tt.fields)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

// =============================================================================
// Format parsers
// =============================================================================

func TestParseJSONL(t *testing.T) {
	input := "\xef\xbb\xbf" + `{"id":"1","label":"Animals","parentId":null}
{"id":"2","label":"Mammals","parentId":"1"}

{INVALID JSON}
{"label":"no id"}
{"id":"3","label":"Dog","parentId":"2","sound":"woof"}
`
	warnings, opts := collectWarnings()
	items, err := loader.ParseJSONL(strings.NewReader(input), opts)
	if err != nil {
		t.Fatalf("ParseJSONL failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d: %+v", len(items), items)
	}
	if items[0].ID != "1" || items[2].ParentID != "2" {
		t.Errorf("unexpected items %+v", items)
	}
	if v, _ := items[2].Field("sound"); v != "woof" {
		t.Errorf("expected extra field sound=woof, got %v", v)
	}
	if len(*warnings) != 2 {
		t.Errorf("expected 2 warnings, got %v", *warnings)
	}
}

func TestParseJSONL_LongLine(t *testing.T) {
	input := `{"id":"a"}` + "\n" + `{"id":"b","label":"` + strings.Repeat("x", 256) + `"}` + "\n" + `{"id":"c"}` + "\n"
	warnings, opts := collectWarnings()
	opts.BufferSize = 64

	items, err := loader.ParseJSONL(strings.NewReader(input), opts)
	if err != nil {
		t.Fatalf("ParseJSONL failed: %v", err)
	}
	if len(items) != 2 || items[0].ID != "a" || items[1].ID != "c" {
		t.Errorf("expected a and c, got %+v", items)
	}
	if len(*warnings) != 1 || !strings.Contains((*warnings)[0], "line too long") {
		t.Errorf("expected a line-too-long warning, got %v", *warnings)
	}
}

func TestParseJSONL_Empty(t *testing.T) {
	items, err := loader.ParseJSONL(strings.NewReader(""), loader.ParseOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", items)
	}
}

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantIDs []string
		wantErr error
	}{
		{"array", `[{"id":"a"},{"id":"b","parentId":"a"}]`, []string{"a", "b"}, nil},
		{"items key", `{"items":[{"id":"a"}],"title":"ignored"}`, []string{"a"}, nil},
		{"empty document", "  ", nil, nil},
		{"no items", `{"nodes":[]}`, nil, loader.ErrNoItems},
		{"scalar", `42`, nil, loader.ErrNoItems},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, opts := collectWarnings()
			items, err := loader.ParseJSON(strings.NewReader(tt.input), opts)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var ids []string
			for _, it := range items {
				ids = append(ids, it.ID)
			}
			if !reflect.DeepEqual(ids, tt.wantIDs) {
				t.Errorf("ids = %v, want %v", ids, tt.wantIDs)
			}
		})
	}
}

func TestParseJSON_SkipsNonObjects(t *testing.T) {
	warnings, opts := collectWarnings()
	items, err := loader.ParseJSON(strings.NewReader(`[{"id":"a"}, "oops", 3]`), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || len(*warnings) != 2 {
		t.Errorf("expected 1 item and 2 warnings, got %d items %v", len(items), *warnings)
	}
}

func TestParseJSON_Malformed(t *testing.T) {
	if _, err := loader.ParseJSON(strings.NewReader(`[{"id":`), loader.ParseOptions{}); err == nil {
		t.Error("expected parse error")
	}
}

func TestParseYAML(t *testing.T) {
	input := `
items:
  - id: src
    label: src
  - id: components
    label: components
    parentId: src
  - id: 10
    name: Button.tsx
    parent: components
    size: 1200
`
	items, err := loader.ParseYAML(strings.NewReader(input), loader.ParseOptions{})
	if err != nil {
		t.Fatalf("ParseYAML failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[2].ID != "10" || items[2].Label != "Button.tsx" || items[2].ParentID != "components" {
		t.Errorf("unexpected third item %+v", items[2])
	}
	if v, _ := items[2].Field("size"); v != 1200 {
		t.Errorf("expected size 1200, got %v (%T)", v, v)
	}
}

func TestParseYAML_TopLevelSequenceAndEmpty(t *testing.T) {
	items, err := loader.ParseYAML(strings.NewReader("- id: a\n- id: b\n  parent_id: a\n"), loader.ParseOptions{})
	if err != nil || len(items) != 2 || items[1].ParentID != "a" {
		t.Fatalf("unexpected result %+v, %v", items, err)
	}

	items, err = loader.ParseYAML(strings.NewReader(""), loader.ParseOptions{})
	if err != nil || len(items) != 0 {
		t.Errorf("expected empty result for empty document, got %+v, %v", items, err)
	}
}

func TestParseTOML(t *testing.T) {
	input := `
[[items]]
id = "1"
label = "Animals"

[[items]]
id = "2"
label = "Mammals"
parent_id = "1"
legs = 4
`
	items, err := loader.ParseTOML(strings.NewReader(input), loader.ParseOptions{})
	if err != nil {
		t.Fatalf("ParseTOML failed: %v", err)
	}
	want := []tree.FlatItem{
		{ID: "1", Label: "Animals"},
		{ID: "2", Label: "Mammals", ParentID: "1", Fields: map[string]any{"legs": int64(4)}},
	}
	if !reflect.DeepEqual(items, want) {
		t.Errorf("got %+v, want %+v", items, want)
	}
}

func TestParseTOML_Errors(t *testing.T) {
	if _, err := loader.ParseTOML(strings.NewReader("title = \"x\"\n"), loader.ParseOptions{}); !errors.Is(err, loader.ErrNoItems) {
		t.Errorf("expected ErrNoItems, got %v", err)
	}
	if _, err := loader.ParseTOML(strings.NewReader("[[items]\n"), loader.ParseOptions{}); err == nil {
		t.Error("expected syntax error")
	}
}

// =============================================================================
// LoadFile / FormatFromPath
// =============================================================================

func TestFormatFromPath(t *testing.T) {
	tests := map[string]loader.Format{
		"a.jsonl":    loader.FormatJSONL,
		"a.NDJSON":   loader.FormatJSONL,
		"a.json":     loader.FormatJSON,
		"a.yml":      loader.FormatYAML,
		"a.yaml":     loader.FormatYAML,
		"a.toml":     loader.FormatTOML,
		"a.db":       loader.FormatSQLite,
		"a.sqlite3":  loader.FormatSQLite,
	}
	for path, want := range tests {
		got, err := loader.FormatFromPath(path)
		if err != nil || got != want {
			t.Errorf("FormatFromPath(%q) = %q, %v; want %q", path, got, err, want)
		}
	}
	if _, err := loader.FormatFromPath("notes.txt"); !errors.Is(err, loader.ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tree.yaml")
	if err := os.WriteFile(path, []byte("- id: a\n- id: b\n  parentId: a\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	items, err := loader.LoadFile(path, loader.ParseOptions{})
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	forest := tree.BuildTree(items)
	if len(forest) != 1 || len(forest[0].Children) != 1 {
		t.Errorf("expected a -> b, got %+v", forest)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := loader.LoadFile(filepath.Join(dir, "missing.json"), loader.ParseOptions{}); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := loader.LoadFile(filepath.Join(dir, "x.db"), loader.ParseOptions{}); err == nil {
		t.Error("expected sqlite to be refused")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := loader.LoadFile(bad, loader.ParseOptions{})
	if err == nil || !strings.Contains(err.Error(), bad) {
		t.Errorf("expected error naming the file, got %v", err)
	}
}
