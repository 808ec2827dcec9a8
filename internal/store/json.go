// Package store persists extracted records: a JSON collection merged by id,
// and an optional SQLite mirror of the same records.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"jobscribe/internal/logging"
	"jobscribe/internal/logging/types"
	"jobscribe/pkg/models"
	"jobscribe/pkg/utils"
)

// JSONStore is a collection file holding one JSON array of records.
// Writers are expected to take turns; nothing locks the file.
type JSONStore struct {
	Path   string
	logger types.Logger
}

// NewJSONStore returns a store backed by the collection file at path
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{Path: path, logger: logging.GetGlobalLogger()}
}

// Merge is a convenience wrapper around JSONStore.Merge
func Merge(record models.Record, collectionPath string) error {
	return NewJSONStore(collectionPath).Merge(record)
}

// Merge replaces any entry with the record's id and appends the record.
// Untouched entries keep their order and their original content.
func (s *JSONStore) Merge(record models.Record) error {
	entries := s.loadRaw()

	encoded, err := encode(record)
	if err != nil {
		return utils.NewPersistenceError("failed to encode record", err)
	}

	merged := make([]json.RawMessage, 0, len(entries)+1)
	replaced := 0
	for _, entry := range entries {
		if id, ok := entryID(entry); ok && id == record.ID {
			replaced++
			continue
		}
		merged = append(merged, entry)
	}
	merged = append(merged, encoded)

	if err := s.write(merged); err != nil {
		return err
	}

	s.logger.Debug("Record merged into collection", map[string]interface{}{
		"id":       record.ID,
		"path":     s.Path,
		"replaced": replaced,
		"total":    len(merged),
	})
	return nil
}

// Load returns every record in the collection, in file order. A missing or
// unreadable collection yields no records.
func (s *JSONStore) Load() ([]models.Record, error) {
	entries := s.loadRaw()

	records := make([]models.Record, 0, len(entries))
	for i, entry := range entries {
		var r models.Record
		if err := json.Unmarshal(entry, &r); err != nil {
			return nil, fmt.Errorf("collection entry %d: %w", i, err)
		}
		records = append(records, r)
	}
	return records, nil
}

// loadRaw reads the collection leniently. A lone object is treated as a
// one-element list and malformed content as an empty collection.
func (s *JSONStore) loadRaw() []json.RawMessage {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Failed to read collection, starting empty", map[string]interface{}{
				"path":  s.Path,
				"error": err.Error(),
			})
		}
		return nil
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	var list []json.RawMessage
	if err := json.Unmarshal(trimmed, &list); err == nil {
		return list
	}

	var single map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &single); err == nil {
		return []json.RawMessage{json.RawMessage(trimmed)}
	}

	s.logger.Warn("Collection is malformed, it will be overwritten", map[string]interface{}{
		"path": s.Path,
	})
	return nil
}

func (s *JSONStore) write(entries []json.RawMessage) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return utils.NewPersistenceError("failed to create output directory", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return utils.NewPersistenceError("failed to encode collection", err)
	}

	if err := writeFileAtomic(s.Path, buf.Bytes()); err != nil {
		return utils.NewPersistenceError("failed to write collection", err)
	}
	return nil
}

// writeFileAtomic writes data next to path and renames it into place
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	cleanup := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

func encode(record models.Record) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(record); err != nil {
		return nil, err
	}
	return json.RawMessage(bytes.TrimSpace(buf.Bytes())), nil
}

// entryID returns the string id of a raw entry
func entryID(entry json.RawMessage) (string, bool) {
	var probe struct {
		ID *string `json:"id"`
	}
	if err := json.Unmarshal(entry, &probe); err != nil || probe.ID == nil {
		return "", false
	}
	return *probe.ID, true
}
