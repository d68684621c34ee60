// Package store persists patch documents as flat JSON files and handles
// batch save/load with collision-free file naming.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kennygrant/sanitize"
)

// ReadJSON reads one JSON file into a generic document.
func ReadJSON(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}

// WriteJSON writes a document to path, creating parent directories. Pretty
// output is two-space indented with a trailing newline; otherwise compact.
func WriteJSON(doc any, path string, pretty bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	var data []byte
	var err error
	if pretty {
		data, err = json.MarshalIndent(doc, "", "  ")
		data = append(data, '\n')
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadPatch reads a single patch document; the file must hold a JSON object.
func LoadPatch(path string) (map[string]any, error) {
	doc, err := ReadJSON(path)
	if err != nil {
		return nil, err
	}
	m, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("patch at %s must be a JSON object", path)
	}
	return m, nil
}

// SavePatch writes a single patch document. Returns the written path.
func SavePatch(doc map[string]any, path string, pretty bool) (string, error) {
	if err := WriteJSON(doc, path, pretty); err != nil {
		return "", err
	}
	return path, nil
}

// LoadBatch loads every *.json patch under a directory (sorted by name), or
// the single file when given a file path.
func LoadBatch(pathOrDir string) ([]map[string]any, error) {
	info, err := os.Stat(pathOrDir)
	if err != nil {
		return nil, err
	}
	var files []string
	if info.IsDir() {
		matches, err := filepath.Glob(filepath.Join(pathOrDir, "*.json"))
		if err != nil {
			return nil, err
		}
		sort.Strings(matches)
		files = matches
	} else {
		files = []string{pathOrDir}
	}

	var patches []map[string]any
	for _, f := range files {
		if strings.ToLower(filepath.Ext(f)) != ".json" {
			continue
		}
		p, err := LoadPatch(f)
		if err != nil {
			return nil, err
		}
		patches = append(patches, p)
	}
	return patches, nil
}

// SaveBatch writes patches into outDir, one file each. File stems come from
// the patch name (falling back to meta.name, then prefix_NNNN). When a stem
// already exists and overwrite is false, a dated unique suffix keeps the old
// file intact. Returns the written paths in input order.
func SaveBatch(patches []map[string]any, outDir, prefix string, pretty, overwrite bool) ([]string, error) {
	if prefix == "" {
		prefix = "patch"
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	stamp := time.Now().Format("20060102")
	written := make([]string, 0, len(patches))
	for i, p := range patches {
		stem := inferName(p, prefix, i+1)
		candidate := filepath.Join(outDir, stem+".json")
		if _, err := os.Stat(candidate); err == nil && !overwrite {
			candidate = filepath.Join(outDir,
				fmt.Sprintf("%s.%s.%s.json", stem, stamp, uuid.NewString()[:6]))
		}
		path, err := SavePatch(p, candidate, pretty)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// inferName picks a filename stem: patch name, then meta.name, then a
// numbered prefix.
func inferName(p map[string]any, prefix string, idx int) string {
	if name, ok := p["name"].(string); ok && strings.TrimSpace(name) != "" {
		return SanitizeFilename(name)
	}
	if meta, ok := p["meta"].(map[string]any); ok {
		if name, ok := meta["name"].(string); ok && strings.TrimSpace(name) != "" {
			return SanitizeFilename(name)
		}
	}
	return fmt.Sprintf("%s_%04d", prefix, idx)
}

// SanitizeFilename makes a patch name safe to use as a file stem. An empty
// result gets a random placeholder so a file is always produced.
func SanitizeFilename(stem string) string {
	cleaned := strings.Trim(sanitize.Name(stem), "-. ")
	if cleaned == "" {
		return "patch_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	}
	return cleaned
}
