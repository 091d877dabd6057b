package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/quickbrown/typist/internal/model"
)

// WriteSaveFile writes a portable JSON save atomically (temp file, then
// rename into place).
func WriteSaveFile(path string, save model.Save) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create save dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "save-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp save: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	enc := json.NewEncoder(tmpFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(save); err != nil {
		return fmt.Errorf("failed to encode save: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync save: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close save: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write save: %w", err)
	}
	return nil
}

// ReadSaveFile loads a portable JSON save.
func ReadSaveFile(path string) (model.Save, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Save{}, fmt.Errorf("failed to read save: %w", err)
	}
	var save model.Save
	if err := json.Unmarshal(data, &save); err != nil {
		return model.Save{}, fmt.Errorf("failed to decode save: %w", err)
	}
	return save, nil
}
