// Package catalog holds the static description of every module, entity, and
// action the console can grant. The catalog is loaded once at startup and
// never mutated; all permission computation is keyed against it.
package catalog

import "fmt"

// Action is a single grantable capability, tagged with one category.
type Action struct {
	ID          string   `yaml:"id" json:"id"`
	Label       string   `yaml:"label" json:"label"`
	Description string   `yaml:"description" json:"description,omitempty"`
	Category    Category `yaml:"category" json:"category"`
}

// Entity is a named sub-object within a module that actions apply to.
type Entity struct {
	Name    string   `yaml:"name" json:"name"`
	Actions []Action `yaml:"actions" json:"actions"`
}

// Module is a top-level permission grouping. Modules flagged AdvancedOnly
// are hidden from the core visibility scope.
type Module struct {
	ID           string   `yaml:"id" json:"id"`
	Name         string   `yaml:"name" json:"name"`
	Description  string   `yaml:"description" json:"description,omitempty"`
	AdvancedOnly bool     `yaml:"advanced_only" json:"advanced_only"`
	Entities     []Entity `yaml:"entities" json:"entities"`
}

// Catalog is the immutable permission reference data.
type Catalog struct {
	version string
	modules []Module

	moduleIndex map[string]int
	leafIndex   map[leafKey]struct{}
}

type leafKey struct {
	module string
	entity string
	action string
}

// New builds a catalog from module definitions and validates it: module ids
// and action ids must be unique catalog-wide, and every action must carry a
// known category.
func New(version string, modules []Module) (*Catalog, error) {
	if len(modules) == 0 {
		return nil, fmt.Errorf("catalog has no modules")
	}

	c := &Catalog{
		version:     version,
		modules:     modules,
		moduleIndex: make(map[string]int, len(modules)),
		leafIndex:   make(map[leafKey]struct{}),
	}

	actionIDs := make(map[string]string)
	for i, m := range modules {
		if m.ID == "" {
			return nil, fmt.Errorf("module at index %d has empty id", i)
		}
		if _, ok := c.moduleIndex[m.ID]; ok {
			return nil, fmt.Errorf("duplicate module id %q", m.ID)
		}
		c.moduleIndex[m.ID] = i

		for _, e := range m.Entities {
			if e.Name == "" {
				return nil, fmt.Errorf("module %q has entity with empty name", m.ID)
			}
			for _, a := range e.Actions {
				if a.ID == "" {
					return nil, fmt.Errorf("entity %q in module %q has action with empty id", e.Name, m.ID)
				}
				if !a.Category.Valid() {
					return nil, fmt.Errorf("action %q has unknown category %q", a.ID, a.Category)
				}
				if owner, ok := actionIDs[a.ID]; ok {
					return nil, fmt.Errorf("action id %q appears in both %q and %q", a.ID, owner, m.ID)
				}
				actionIDs[a.ID] = m.ID
				c.leafIndex[leafKey{module: m.ID, entity: e.Name, action: a.ID}] = struct{}{}
			}
		}
	}

	return c, nil
}

// Version returns the catalog version string.
func (c *Catalog) Version() string {
	return c.version
}

// Modules returns the modules in catalog order. When includeAdvancedOnly is
// false, modules flagged AdvancedOnly are excluded; this is the
// module-visibility scope axis.
func (c *Catalog) Modules(includeAdvancedOnly bool) []Module {
	out := make([]Module, 0, len(c.modules))
	for _, m := range c.modules {
		if m.AdvancedOnly && !includeAdvancedOnly {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Module looks up a module by id.
func (c *Catalog) Module(id string) (Module, bool) {
	i, ok := c.moduleIndex[id]
	if !ok {
		return Module{}, false
	}
	return c.modules[i], true
}

// HasLeaf reports whether (module, entity, action) addresses a real catalog leaf.
func (c *Catalog) HasLeaf(moduleID, entityName, actionID string) bool {
	_, ok := c.leafIndex[leafKey{module: moduleID, entity: entityName, action: actionID}]
	return ok
}

// ActionsInCategory returns the ids of every action in the module tagged
// with the given category, in catalog order. A module without the category
// yields an empty slice.
func (c *Catalog) ActionsInCategory(moduleID string, category Category) []string {
	m, ok := c.Module(moduleID)
	if !ok {
		return nil
	}

	var ids []string
	for _, e := range m.Entities {
		for _, a := range e.Actions {
			if a.Category == category {
				ids = append(ids, a.ID)
			}
		}
	}
	return ids
}

// CategoriesPresent returns the categories that have at least one action in
// the module, in the fixed canonical order.
func (c *Catalog) CategoriesPresent(moduleID string) []Category {
	m, ok := c.Module(moduleID)
	if !ok {
		return nil
	}

	present := make(map[Category]bool)
	for _, e := range m.Entities {
		for _, a := range e.Actions {
			present[a.Category] = true
		}
	}

	var out []Category
	for _, cat := range canonicalOrder {
		if present[cat] {
			out = append(out, cat)
		}
	}
	return out
}

// LeafCount returns the number of leaves in the visible catalog.
func (c *Catalog) LeafCount(includeAdvancedOnly bool) int {
	n := 0
	for _, m := range c.Modules(includeAdvancedOnly) {
		for _, e := range m.Entities {
			n += len(e.Actions)
		}
	}
	return n
}
