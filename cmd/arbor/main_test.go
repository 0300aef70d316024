package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/arbor/pkg/testutil"
	"github.com/vanderheijden86/arbor/pkg/tree"
	"github.com/vanderheijden86/arbor/pkg/version"
)

// isolate keeps tests away from the user's config and state.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
}

func runCLI(t *testing.T, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut)
	return out.String(), errOut.String(), code
}

func writeAnimals(t *testing.T) string {
	t.Helper()
	items := []tree.FlatItem{
		{ID: "1", Label: "Animals"},
		{ID: "2", Label: "Mammals", ParentID: "1"},
		{ID: "3", Label: "Dog", ParentID: "2"},
		{ID: "4", Label: "Birds", ParentID: "1"},
	}
	return testutil.WriteItemsFile(t, t.TempDir(), "animals.jsonl", items)
}

func TestVersionAndHelp(t *testing.T) {
	isolate(t)

	out, _, code := runCLI(t, "--version")
	if code != 0 || out != "arbor "+version.Version+"\n" {
		t.Errorf("--version = %q (exit %d)", out, code)
	}

	out, _, code = runCLI(t, "--help")
	if code != 0 || !strings.Contains(out, "Usage: arbor") || !strings.Contains(out, "-expand") {
		t.Errorf("--help output missing usage (exit %d):\n%s", code, out)
	}
}

func TestUsageErrors(t *testing.T) {
	isolate(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no sources", nil},
		{"unknown flag", []string{"--bogus"}},
		{"bad format", []string{"--demo", "--format", "gif"}},
		{"bad expansion", []string{"--demo", "--expand", " , "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, code := runCLI(t, tt.args...); code != 2 {
				t.Errorf("exit = %d, want 2", code)
			}
		})
	}
}

func TestPrintText(t *testing.T) {
	isolate(t)
	path := writeAnimals(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "expand all by default",
			args: []string{path},
			want: "▾ Animals\n    ├── ▾ Mammals\n    │   └──   Dog\n    └──   Birds\n",
		},
		{
			name: "collapsed",
			args: []string{"--expand", "none", path},
			want: "▸ Animals\n",
		},
		{
			name: "listed ids without guides",
			args: []string{"--expand", "1", "--no-guides", path},
			want: "▾ Animals\n  ▸ Mammals\n    Birds\n",
		},
		{
			name: "ascii",
			args: []string{"--ascii", "--expand", "1", path},
			want: "▾ Animals\n    |-- ▸ Mammals\n    `--   Birds\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, stderr, code := runCLI(t, tt.args...)
			if code != 0 {
				t.Fatalf("exit %d: %s", code, stderr)
			}
			if out != tt.want {
				t.Errorf("output mismatch\ngot:\n%s\nwant:\n%s", out, tt.want)
			}
		})
	}
}

func TestPrintEmptyMessage(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "empty.jsonl")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}

	out, _, code := runCLI(t, path)
	if code != 0 || out != "No items\n" {
		t.Errorf("default empty output = %q (exit %d)", out, code)
	}

	out, _, _ = runCLI(t, "--empty-message", "Nothing here", path)
	if out != "Nothing here\n" {
		t.Errorf("custom empty output = %q", out)
	}
}

func TestPrintMarkdownDemo(t *testing.T) {
	isolate(t)

	out, stderr, code := runCLI(t, "--demo", "--format", "markdown", "--expand", "none")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	for _, want := range []string{"# demo", "- src _(5 hidden)_", "- README.md\n", "- Animals _(5 hidden)_"} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q:\n%s", want, out)
		}
	}
}

func TestOutWritesFile(t *testing.T) {
	isolate(t)
	path := writeAnimals(t)
	dest := filepath.Join(t.TempDir(), "nested", "tree.png")

	_, stderr, code := runCLI(t, "--out", dest, path)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	f, err := os.Open(dest)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Errorf("output is not a PNG: %v", err)
	}
}

func TestCheck(t *testing.T) {
	isolate(t)

	out, _, code := runCLI(t, "--check", writeAnimals(t))
	if code != 0 || out != "OK: 4 items, 1 roots\n" {
		t.Errorf("check clean = %q (exit %d)", out, code)
	}

	gen := testutil.NewDefault()
	broken := append(gen.WithOrphans(gen.Chain(2), 1), gen.Cycle(2)...)
	// Cycle reuses the chain's IDs; rename to keep them unique.
	for i := len(broken) - 2; i < len(broken); i++ {
		broken[i].ID = "c" + broken[i].ID
		broken[i].ParentID = "c" + broken[i].ParentID
	}
	path := testutil.WriteItemsFile(t, t.TempDir(), "broken.jsonl", broken)

	out, _, code = runCLI(t, "--check", path)
	if code != 1 {
		t.Errorf("exit = %d, want 1", code)
	}
	for _, want := range []string{"missing parent", "parent cycle"} {
		if !strings.Contains(out, want) {
			t.Errorf("check output missing %q:\n%s", want, out)
		}
	}
}

func TestDuplicateIDsRefused(t *testing.T) {
	isolate(t)
	items := []tree.FlatItem{
		{ID: "a", Label: "A"},
		{ID: "a", Label: "Again"},
	}
	path := testutil.WriteItemsFile(t, t.TempDir(), "dup.jsonl", items)

	out, stderr, code := runCLI(t, path)
	if code != 1 {
		t.Errorf("exit = %d, want 1", code)
	}
	if out != "" {
		t.Errorf("nothing should be printed, got %q", out)
	}
	if !strings.Contains(stderr, "duplicate ids a") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestOrphanWarning(t *testing.T) {
	isolate(t)
	gen := testutil.NewDefault()
	path := testutil.WriteItemsFile(t, t.TempDir(), "orphans.jsonl", gen.WithOrphans(gen.Chain(1), 1))

	out, stderr, code := runCLI(t, path)
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	if out != "  Item 0\n" {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(stderr, `"orphan0" references a missing parent`) {
		t.Errorf("missing orphan warning: %q", stderr)
	}
}

func TestConfigDefaults(t *testing.T) {
	isolate(t)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	cfg := "tree:\n  show_guides: false\n  initial_expansion: [\"1\"]\n  empty_message: Empty\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	out, _, code := runCLI(t, "--config", cfgPath, writeAnimals(t))
	if code != 0 || out != "▾ Animals\n  ▸ Mammals\n    Birds\n" {
		t.Errorf("config-driven output = %q (exit %d)", out, code)
	}

	// Flags win over the config.
	out, _, _ = runCLI(t, "--config", cfgPath, "--expand", "none", writeAnimals(t))
	if out != "▸ Animals\n" {
		t.Errorf("flag override output = %q", out)
	}
}

func TestUnknownNamedSource(t *testing.T) {
	isolate(t)
	_, stderr, code := runCLI(t, "@missing")
	if code != 1 || !strings.Contains(stderr, `unknown source "missing"`) {
		t.Errorf("exit %d, stderr %q", code, stderr)
	}
}

func TestStatsWritesMetrics(t *testing.T) {
	isolate(t)
	_, stderr, code := runCLI(t, "--stats", writeAnimals(t))
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	for _, want := range []string{`"name": "source_load"`, `"name": "validation"`, `"name": "export"`} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stats missing %s:\n%s", want, stderr)
		}
	}
}
