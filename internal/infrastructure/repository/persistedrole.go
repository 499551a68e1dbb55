package repository

import (
	"fmt"
	"time"

	"clarion/internal/domain/grants"
	"clarion/internal/domain/role"
)

// persistedRole is the serialized shape of one role inside the collection
// document: { "<roleId>": { ... } }.
type persistedRole struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Permissions  grants.GrantMap `json:"permissions"`
	IsSystemRole bool            `json:"is_system_role"`
	CreatedBy    string          `json:"created_by,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func toPersisted(r *role.Role) persistedRole {
	return persistedRole{
		ID:           r.ID(),
		Name:         r.Name(),
		Description:  r.Description(),
		Permissions:  r.Permissions().ToMap(),
		IsSystemRole: r.IsSystem(),
		CreatedBy:    r.CreatedBy(),
		CreatedAt:    r.CreatedAt(),
		UpdatedAt:    r.UpdatedAt(),
	}
}

func fromPersisted(p persistedRole) (*role.Role, error) {
	r, err := role.ReconstructRole(
		p.ID,
		p.Name,
		p.Description,
		grants.FromMap(p.Permissions),
		p.IsSystemRole,
		p.CreatedBy,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct role %q: %w", p.ID, err)
	}
	return r, nil
}

func collectionToPersisted(roles map[string]*role.Role) map[string]persistedRole {
	doc := make(map[string]persistedRole, len(roles))
	for id, r := range roles {
		doc[id] = toPersisted(r)
	}
	return doc
}

func collectionFromPersisted(doc map[string]persistedRole) (map[string]*role.Role, error) {
	roles := make(map[string]*role.Role, len(doc))
	for id, p := range doc {
		r, err := fromPersisted(p)
		if err != nil {
			return nil, err
		}
		roles[id] = r
	}
	return roles, nil
}
