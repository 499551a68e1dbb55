package role

import (
	"fmt"

	"clarion/internal/domain/catalog"
	"clarion/internal/domain/grants"
	"clarion/internal/domain/role"
)

// SystemRoleSeeds builds the fixed set of system roles from the catalog.
// Grant sets are assembled with the same toggle operations the matrix uses,
// so the seeds stay valid across catalog revisions.
func SystemRoleSeeds(cat *catalog.Catalog) ([]*role.Role, error) {
	seeds := []struct {
		name        string
		description string
		build       func() grants.GrantSet
	}{
		{
			name:        "Administrator",
			description: "Every permission in every module, including advanced features.",
			build: func() grants.GrantSet {
				return grants.ToggleNode(cat, grants.NewGrantSet(), grants.GlobalNode(true))
			},
		},
		{
			name:        "Safety Manager",
			description: "Full control of the core safety modules.",
			build: func() grants.GrantSet {
				g := grants.NewGrantSet()
				for _, m := range cat.Modules(false) {
					g = grants.ToggleNode(cat, g, grants.ModuleNode(m.ID))
				}
				return g
			},
		},
		{
			name:        "Supervisor",
			description: "Runs incident management day to day; reads everything else in the core modules.",
			build: func() grants.GrantSet {
				g := grants.ToggleNode(cat, grants.NewGrantSet(), grants.ModuleNode("incident_management"))
				for _, m := range cat.Modules(false) {
					if m.ID == "incident_management" {
						continue
					}
					g = grants.ToggleNode(cat, g, grants.CategoryNode(m.ID, catalog.CategoryView))
					g = grants.ToggleNode(cat, g, grants.CategoryNode(m.ID, catalog.CategoryCollaboration))
				}
				return g
			},
		},
		{
			name:        "Viewer",
			description: "Read-only access across the console.",
			build: func() grants.GrantSet {
				g := grants.NewGrantSet()
				for _, m := range cat.Modules(true) {
					g = grants.ToggleNode(cat, g, grants.CategoryNode(m.ID, catalog.CategoryView))
				}
				return g
			},
		},
	}

	out := make([]*role.Role, 0, len(seeds))
	for _, seed := range seeds {
		r, err := role.NewSystemRole(seed.name, seed.description, seed.build())
		if err != nil {
			return nil, fmt.Errorf("failed to seed system role %q: %w", seed.name, err)
		}
		out = append(out, r)
	}
	return out, nil
}
