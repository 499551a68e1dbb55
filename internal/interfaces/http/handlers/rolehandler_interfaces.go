package handlers

import (
	"context"

	"clarion/internal/application/matrix"
	"clarion/internal/domain/grants"
	"clarion/internal/domain/role"
)

// RoleService is the slice of the role application service the handlers use.
type RoleService interface {
	Get(id string) (*role.Role, error)
	List() []*role.Role
	IsDuplicateName(name, excludeID string) bool
	ValidateRoleInput(name, excludeID string, permissions grants.GrantSet) error
	Create(ctx context.Context, name, description string, permissions grants.GrantSet, createdBy string) (*role.Role, error)
	Update(ctx context.Context, id, name, description string, permissions grants.GrantSet) (*role.Role, error)
	Delete(ctx context.Context, id string) error
	Duplicate(ctx context.Context, id, createdBy string) (*role.Role, error)
}

// MatrixService is the slice of the matrix projection service the handlers use.
type MatrixService interface {
	Build(g grants.GrantSet, scope matrix.Scope, granularity matrix.Granularity) matrix.View
	Toggle(g grants.GrantSet, sel grants.NodeSelector) (grants.GrantSet, error)
	SelectionOf(g grants.GrantSet, sel grants.NodeSelector) (grants.Selection, error)
	Count(g grants.GrantSet, sel grants.NodeSelector) (granted, total int, err error)
	VisibleCount(g grants.GrantSet, scope matrix.Scope) (granted, total int)
}
