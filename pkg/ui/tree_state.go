package ui

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/arbor/pkg/debug"
	"github.com/vanderheijden86/arbor/pkg/metrics"
)

// TreeState is the persisted view state of one source: which nodes were
// expanded and which was selected.
//
// File format (JSON):
//
//	{
//	  "version": 1,
//	  "source": "/home/me/tree.yaml",
//	  "expanded": ["src", "src/components"],
//	  "selected": "src/components/button"
//	}
//
// A missing or corrupted file means "no saved state".
type TreeState struct {
	Version  int      `json:"version"`
	Source   string   `json:"source"`
	Expanded []string `json:"expanded"`
	Selected string   `json:"selected,omitempty"`
}

// TreeStateVersion is the current schema version for tree persistence
const TreeStateVersion = 1

// StateKey identifies a set of sources. Paths are made absolute so the same
// files opened from different directories share state.
func StateKey(paths []string) string {
	abs := make([]string, len(paths))
	for i, p := range paths {
		if a, err := filepath.Abs(p); err == nil {
			p = a
		}
		abs[i] = p
	}
	return strings.Join(abs, "\x00")
}

// TreeStatePath returns where the state for key lives under dir.
func TreeStatePath(dir, key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(dir, "trees", hex.EncodeToString(sum[:8])+".json")
}

// LoadTreeState reads saved state. ok is false when there is none or it cannot
// be used.
func LoadTreeState(dir, key string) (state TreeState, ok bool) {
	path := TreeStatePath(dir, key)
	data, err := os.ReadFile(path)
	if err != nil {
		return TreeState{}, false
	}
	if err := json.Unmarshal(data, &state); err != nil {
		debug.Log("tree state: ignoring invalid %s: %v", path, err)
		return TreeState{}, false
	}
	if state.Version != TreeStateVersion {
		debug.Log("tree state: ignoring %s with version %d", path, state.Version)
		return TreeState{}, false
	}
	if state.Expanded == nil {
		state.Expanded = []string{}
	}
	return state, true
}

// SaveTreeState writes state for key under dir, creating directories as
// needed. The file is replaced atomically.
func SaveTreeState(dir, key string, state TreeState) error {
	defer metrics.Timer(metrics.StateSave)()
	state.Version = TreeStateVersion
	if state.Expanded == nil {
		state.Expanded = []string{}
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tree state: %w", err)
	}

	path := TreeStatePath(dir, key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write tree state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace tree state: %w", err)
	}
	return nil
}
