// Package texts acquires target texts from files, folders, and stdin.
package texts

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Entry describes one practice text in the texts folder.
type Entry struct {
	Path string
	Name string
	Size int64
}

// Scan lists the .txt files in the practice folder, sorted by name. The
// folder is created if it does not exist yet.
func Scan(dir string) ([]Entry, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create texts directory: %w", err)
	}
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read texts directory: %w", err)
	}
	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		name := de.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".txt") {
			continue
		}
		info, err := de.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", name, err)
		}
		entries = append(entries, Entry{
			Path: filepath.Join(dir, name),
			Name: strings.TrimSuffix(name, filepath.Ext(name)),
			Size: info.Size(),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// LoadFile reads a whole text file. An empty file is an error, matching the
// session's non-empty target contract.
func LoadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	text := Normalize(string(data))
	if text == "" {
		return "", fmt.Errorf("%s is empty", path)
	}
	return text, nil
}

// ReadStdin reads pasted text until EOF.
func ReadStdin(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return Normalize(string(data)), nil
}

// Normalize folds Windows and old-Mac line endings to plain newlines and
// strips a trailing newline so the session does not end on one.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.TrimRight(s, "\n")
}

// Sample is the fallback passage used when no text is supplied.
func Sample() string {
	return "The quick brown fox jumps over the lazy dog.\n" +
		"This is a sample text for the terminal typing game.\n" +
		"Feel free to paste any long passage you like (novel chapters, code, poems...)."
}
