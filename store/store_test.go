package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadPatchRoundTrip(t *testing.T) {
	dir := t.TempDir()
	doc := map[string]any{
		"name":   "RoundTrip",
		"filter": map[string]any{"cutoff": 0.5},
		"osc":    []any{map[string]any{"amp": 0.8}},
	}

	path, err := SavePatch(doc, filepath.Join(dir, "rt.json"), true)
	require.NoError(t, err)

	loaded, err := LoadPatch(path)
	require.NoError(t, err)
	assert.Equal(t, doc, loaded)

	// pretty output ends with a newline
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "\n"))
}

func TestLoadPatchRejectsNonObject(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "arr.json")
	require.NoError(t, os.WriteFile(path, []byte("[1, 2, 3]"), 0o644))

	_, err := LoadPatch(path)
	assert.Error(t, err)
}

func TestSaveBatchNamesAndUniqueness(t *testing.T) {
	dir := t.TempDir()
	patches := []map[string]any{
		{"name": "Big Lead"},
		{"meta": map[string]any{"name": "From Meta"}},
		{}, // no name anywhere -> prefix_0003
	}

	written, err := SaveBatch(patches, dir, "patch", true, false)
	require.NoError(t, err)
	require.Len(t, written, 3)
	assert.Equal(t, "big-lead.json", filepath.Base(written[0]))
	assert.Equal(t, "from-meta.json", filepath.Base(written[1]))
	assert.Equal(t, "patch_0003.json", filepath.Base(written[2]))

	// saving again without overwrite keeps the originals and uniquifies
	again, err := SaveBatch(patches[:1], dir, "patch", true, false)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.NotEqual(t, written[0], again[0])
	assert.True(t, strings.HasPrefix(filepath.Base(again[0]), "big-lead."))

	// with overwrite the original path is reused
	over, err := SaveBatch(patches[:1], dir, "patch", true, true)
	require.NoError(t, err)
	assert.Equal(t, written[0], over[0])
}

func TestLoadBatchFromDirectory(t *testing.T) {
	dir := t.TempDir()
	patches := []map[string]any{
		{"name": "aa"},
		{"name": "bb"},
	}
	_, err := SaveBatch(patches, dir, "patch", true, false)
	require.NoError(t, err)

	// non-JSON files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	loaded, err := LoadBatch(dir)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "aa", loaded[0]["name"])
	assert.Equal(t, "bb", loaded[1]["name"])
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "big-lead", SanitizeFilename("Big Lead"))
	assert.NotContains(t, SanitizeFilename(`a<b>:c"/d\e|f?g*`), "/")

	// empty input still yields a usable stem
	stem := SanitizeFilename("   ")
	assert.True(t, strings.HasPrefix(stem, "patch_"))
	assert.Greater(t, len(stem), len("patch_"))
}
