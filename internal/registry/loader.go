// Package registry loads a worker manifest from disk: a directory of JSON
// files, each describing one worker an operator wants the scheduler to
// register at startup. This keeps worker wiring declarative the same way
// the teacher's model loader turned a models directory into a slice of
// entries, rather than hardcoding workers into the binary.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"schedulerd/internal/common/fsutil"
)

// Entry describes one worker to construct and register. Class-specific
// settings (engine endpoint, binary path, voice id, ...) live in Settings,
// left as a raw JSON blob so this package stays agnostic of worker kinds.
type Entry struct {
	ID           string          `json:"id"`
	Class        string          `json:"class"`
	Engine       string          `json:"engine"`
	LMExclusive  bool            `json:"lm_exclusive,omitempty"`
	Settings     json.RawMessage `json:"settings,omitempty"`
}

// LoadDir scans dir for *.json manifest files and returns one Entry per
// file. Entries are returned in filename order so startup wiring is
// deterministic (the first LM-capable entry can be the exclusive worker).
func LoadDir(dir string) ([]Entry, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var out []Entry
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".json") {
			continue
		}
		b, err := os.ReadFile(filepath.Join(abs, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		var entry Entry
		if err := json.Unmarshal(b, &entry); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		if entry.ID == "" {
			return nil, fmt.Errorf("%s: missing worker id", name)
		}
		out = append(out, entry)
	}
	return out, nil
}
