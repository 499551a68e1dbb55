package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"clarion/internal/domain/role"
)

// RoleFileStore persists the role collection as a single JSON file,
// rewritten wholesale on every save.
type RoleFileStore struct {
	path string
}

func NewRoleFileStore(path string) *RoleFileStore {
	return &RoleFileStore{path: path}
}

func (s *RoleFileStore) Load(ctx context.Context) (map[string]*role.Role, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]*role.Role{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read role store file: %w", err)
	}

	var doc map[string]persistedRole
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("role store file is corrupt: %w", err)
	}

	return collectionFromPersisted(doc)
}

func (s *RoleFileStore) Save(ctx context.Context, roles map[string]*role.Role) error {
	data, err := json.MarshalIndent(collectionToPersisted(roles), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize role collection: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create role store directory: %w", err)
	}

	// Write to a temp file in the same directory, then rename, so a crash
	// mid-write never leaves a truncated document behind.
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".roles-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp role store file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write role store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close role store file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace role store file: %w", err)
	}
	return nil
}
