// Package favorites persists the user's favorite logic groups as a small
// JSON file next to the database.
package favorites

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

type fileFormat struct {
	Favorites []string `json:"favorites"`
}

// Store reads and writes one favorites file. A missing or corrupt file reads
// as an empty list; favorites are a convenience, not data worth failing over.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// List returns the favorite group names, sorted.
func (s *Store) List() ([]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read favorites: %w", err)
	}

	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, nil
	}
	sort.Strings(f.Favorites)
	return f.Favorites, nil
}

// Contains reports whether the group is a favorite.
func (s *Store) Contains(group string) (bool, error) {
	list, err := s.List()
	if err != nil {
		return false, err
	}
	for _, g := range list {
		if g == group {
			return true, nil
		}
	}
	return false, nil
}

// Toggle adds the group if absent, removes it if present. Returns true when
// the group ended up added.
func (s *Store) Toggle(group string) (bool, error) {
	list, err := s.List()
	if err != nil {
		return false, err
	}

	out := list[:0]
	added := true
	for _, g := range list {
		if g == group {
			added = false
			continue
		}
		out = append(out, g)
	}
	if added {
		out = append(out, group)
		sort.Strings(out)
	}

	if err := s.write(out); err != nil {
		return false, err
	}
	return added, nil
}

// write replaces the file atomically so a crash never leaves it truncated.
func (s *Store) write(list []string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create favorites directory: %w", err)
	}

	data, err := json.MarshalIndent(fileFormat{Favorites: list}, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "favorites-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp favorites file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write favorites: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
