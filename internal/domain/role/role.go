package role

import (
	"fmt"
	"strings"
	"time"

	"clarion/internal/domain/grants"
	"clarion/internal/shared/biztime"
	"clarion/internal/shared/id"
)

// MinNameLength is the minimum trimmed length of a role name.
const MinNameLength = 3

// Role is a named permission grant set. System roles are seeded templates:
// readable and duplicable, never editable or deletable.
type Role struct {
	id          string
	name        string
	description string
	permissions grants.GrantSet
	isSystem    bool
	createdBy   string
	createdAt   time.Time
	updatedAt   time.Time
}

// NewRole creates a custom role with a fresh id and timestamps. The name is
// trimmed; format rules beyond non-emptiness live in the edit validation,
// not here.
func NewRole(name, description string, permissions grants.GrantSet, createdBy string) (*Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	roleID, err := id.NewRoleID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate role ID: %w", err)
	}

	now := biztime.NowUTC()
	return &Role{
		id:          roleID,
		name:        name,
		description: description,
		permissions: permissions.Clone(),
		createdBy:   createdBy,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// NewSystemRole creates a seeded system role. Only the seeding path uses this.
func NewSystemRole(name, description string, permissions grants.GrantSet) (*Role, error) {
	r, err := NewRole(name, description, permissions, "")
	if err != nil {
		return nil, err
	}
	r.isSystem = true
	return r, nil
}

// ReconstructRole rebuilds a role from persistence.
func ReconstructRole(
	roleID string,
	name string,
	description string,
	permissions grants.GrantSet,
	isSystem bool,
	createdBy string,
	createdAt, updatedAt time.Time,
) (*Role, error) {
	if roleID == "" {
		return nil, fmt.Errorf("role ID cannot be empty")
	}
	if name == "" {
		return nil, ErrEmptyName
	}

	return &Role{
		id:          roleID,
		name:        name,
		description: description,
		permissions: permissions,
		isSystem:    isSystem,
		createdBy:   createdBy,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}, nil
}

func (r *Role) ID() string                    { return r.id }
func (r *Role) Name() string                  { return r.name }
func (r *Role) Description() string           { return r.description }
func (r *Role) Permissions() grants.GrantSet  { return r.permissions }
func (r *Role) IsSystem() bool                { return r.isSystem }
func (r *Role) CreatedBy() string             { return r.createdBy }
func (r *Role) CreatedAt() time.Time          { return r.createdAt }
func (r *Role) UpdatedAt() time.Time          { return r.updatedAt }

// Update replaces the role's name, description, and grant set, stamping
// updatedAt. System roles reject every edit.
func (r *Role) Update(name, description string, permissions grants.GrantSet) error {
	if r.isSystem {
		return ErrSystemRoleImmutable
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}

	r.name = name
	r.description = description
	r.permissions = permissions.Clone()
	r.updatedAt = biztime.NowUTC()
	return nil
}

// Duplicate deep-copies the role under a new name with a fresh id and
// timestamps. The copy is always an ordinary custom role; duplicating a
// system role is the only sanctioned way to customize one.
func (r *Role) Duplicate(name, createdBy string) (*Role, error) {
	dup, err := NewRole(name, r.description, r.permissions.Clone(), createdBy)
	if err != nil {
		return nil, err
	}
	return dup, nil
}
