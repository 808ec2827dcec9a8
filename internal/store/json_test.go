package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobscribe/pkg/models"
	"jobscribe/pkg/utils"
)

func record(id, title string) models.Record {
	return models.Record{
		ID:        id,
		Title:     title,
		JobURL:    "https://www.linkedin.com/jobs/view/" + id + "/",
		ApplyType: models.ApplyTypeExternal,
	}
}

func readCollection(t *testing.T, path string) []map[string]interface{} {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestMergeIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "jobs.json")
	r := record("4012345678", "Data Engineer")

	require.NoError(t, Merge(r, path))
	require.NoError(t, Merge(r, path))

	entries := readCollection(t, path)
	require.Len(t, entries, 1)
	assert.Equal(t, "4012345678", entries[0]["id"])
}

func TestMergeReplacesAndKeepsOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.json")
	s := NewJSONStore(path)

	require.NoError(t, s.Merge(record("11111111", "First")))
	require.NoError(t, s.Merge(record("22222222", "Second")))
	require.NoError(t, s.Merge(record("33333333", "Third")))
	require.NoError(t, s.Merge(record("22222222", "Second, rescraped")))

	records, err := s.Load()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "11111111", records[0].ID)
	assert.Equal(t, "33333333", records[1].ID)
	assert.Equal(t, "22222222", records[2].ID)
	assert.Equal(t, "Second, rescraped", records[2].Title)
}

func TestMergeLegacySingleObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.json")
	legacy := `{"id": "11111111", "title": "Old", "customNote": "keep me"}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	require.NoError(t, Merge(record("22222222", "New"), path))

	entries := readCollection(t, path)
	require.Len(t, entries, 2)
	assert.Equal(t, "keep me", entries[0]["customNote"], "unknown keys of untouched entries survive")
	assert.Equal(t, "22222222", entries[1]["id"])
}

func TestMergeLegacySingleObjectSameID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"id": "11111111", "title": "Old"}`), 0o644))

	require.NoError(t, Merge(record("11111111", "New"), path))

	entries := readCollection(t, path)
	require.Len(t, entries, 1)
	assert.Equal(t, "New", entries[0]["title"])
}

func TestMergeMalformedCollectionIsReplaced(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id": "1111`), 0o644))

	require.NoError(t, Merge(record("22222222", "New"), path))

	entries := readCollection(t, path)
	require.Len(t, entries, 1)
	assert.Equal(t, "22222222", entries[0]["id"])
}

func TestMergeOutputFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.json")
	r := record("4012345678", "R&D <Lead> ☕")
	require.NoError(t, Merge(r, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "[\n  {\n    \"id\": \"4012345678\",")
	assert.Contains(t, text, `"title": "R&D <Lead> ☕"`, "no HTML or unicode escaping")
	assert.Contains(t, text, `"posterFullName": null`)

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".jobs.json.*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches, "temporary file is renamed away")
}

func TestMergeWriteFailureIsPersistenceError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	err := Merge(record("4012345678", "x"), filepath.Join(blocker, "jobs.json"))
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindPersistence))
}

func TestLoadMissingCollection(t *testing.T) {
	records, err := NewJSONStore(filepath.Join(t.TempDir(), "none.json")).Load()
	require.NoError(t, err)
	assert.Empty(t, records)
}
