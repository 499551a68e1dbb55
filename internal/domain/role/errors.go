package role

import "errors"

var (
	// ErrRoleNotFound is returned when no role exists with the given id.
	ErrRoleNotFound = errors.New("role not found")

	// ErrSystemRoleImmutable is returned on any attempt to edit or delete a
	// system role.
	ErrSystemRoleImmutable = errors.New("system roles cannot be modified or deleted")

	// ErrEmptyName is returned when the trimmed role name is empty.
	ErrEmptyName = errors.New("role name is required")

	// ErrNameTooShort is returned when the trimmed role name is shorter than
	// MinNameLength.
	ErrNameTooShort = errors.New("role name must be at least 3 characters")

	// ErrDuplicateName is returned when another role already uses the name
	// (case-insensitive).
	ErrDuplicateName = errors.New("a role with this name already exists")

	// ErrNoPermissionsSelected is returned when a role would be saved with
	// no granted leaf at all.
	ErrNoPermissionsSelected = errors.New("at least one permission must be selected")
)
