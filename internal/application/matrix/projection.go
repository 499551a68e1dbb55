// Package matrix projects a grant set into the permission matrix the
// console renders. Projections are read-only: the two display axes (module
// visibility scope and grouping granularity) never change the underlying
// grants, only what is shown and what the aggregate badges cover.
package matrix

import (
	"fmt"

	"clarion/internal/domain/catalog"
	"clarion/internal/domain/grants"
)

// Scope is the module-visibility axis: core hides advanced-only modules,
// full shows every module. Hidden modules keep their grants; they are just
// not displayed or counted.
type Scope string

const (
	ScopeCore Scope = "core"
	ScopeFull Scope = "full"
)

// ParseScope parses a scope value, defaulting to core.
func ParseScope(s string) (Scope, error) {
	switch s {
	case "", string(ScopeCore):
		return ScopeCore, nil
	case string(ScopeFull):
		return ScopeFull, nil
	}
	return "", fmt.Errorf("unknown scope %q", s)
}

// IncludeAdvanced reports whether advanced-only modules are visible.
func (s Scope) IncludeAdvanced() bool {
	return s == ScopeFull
}

// Granularity is the grouping axis: per-action toggles or one aggregate
// toggle per category. Both operate over the same leaves.
type Granularity string

const (
	GranularityAction   Granularity = "action"
	GranularityCategory Granularity = "category"
)

// ParseGranularity parses a granularity value, defaulting to per-action.
func ParseGranularity(s string) (Granularity, error) {
	switch s {
	case "", string(GranularityAction):
		return GranularityAction, nil
	case string(GranularityCategory):
		return GranularityCategory, nil
	}
	return "", fmt.Errorf("unknown granularity %q", s)
}

// View is one rendered projection of a grant set.
type View struct {
	Scope       Scope            `json:"scope"`
	Granularity Granularity      `json:"granularity"`
	Selection   grants.Selection `json:"selection"`
	Granted     int              `json:"granted"`
	Total       int              `json:"total"`
	Modules     []ModuleView     `json:"modules"`
}

type ModuleView struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	AdvancedOnly bool             `json:"advanced_only"`
	Selection    grants.Selection `json:"selection"`
	Granted      int              `json:"granted"`
	Total        int              `json:"total"`
	Entities     []EntityView     `json:"entities,omitempty"`
	Categories   []CategoryView   `json:"categories,omitempty"`
}

type EntityView struct {
	Name      string           `json:"name"`
	Selection grants.Selection `json:"selection"`
	Actions   []ActionView     `json:"actions"`
}

type ActionView struct {
	ID          string           `json:"id"`
	Label       string           `json:"label"`
	Description string           `json:"description"`
	Category    catalog.Category `json:"category"`
	Granted     bool             `json:"granted"`
}

type CategoryView struct {
	Category  catalog.Category `json:"category"`
	Selection grants.Selection `json:"selection"`
	Granted   int              `json:"granted"`
	Total     int              `json:"total"`
	ActionIDs []string         `json:"action_ids"`
}

// Service builds matrix views against a fixed catalog.
type Service struct {
	cat *catalog.Catalog
}

func NewService(cat *catalog.Catalog) *Service {
	return &Service{cat: cat}
}

// Build projects the grant set under the given axes. Counts aggregate over
// visible leaves only, so the same grant set can show fewer enabled
// permissions in core scope than in full scope.
func (s *Service) Build(g grants.GrantSet, scope Scope, granularity Granularity) View {
	view := View{
		Scope:       scope,
		Granularity: granularity,
		Selection:   grants.SelectionOf(s.cat, g, grants.GlobalNode(scope.IncludeAdvanced())),
	}
	view.Granted, view.Total = grants.CountGranted(s.cat, g, grants.GlobalNode(scope.IncludeAdvanced()))

	for _, m := range s.cat.Modules(scope.IncludeAdvanced()) {
		mv := ModuleView{
			ID:           m.ID,
			Name:         m.Name,
			Description:  m.Description,
			AdvancedOnly: m.AdvancedOnly,
			Selection:    grants.SelectionOf(s.cat, g, grants.ModuleNode(m.ID)),
		}
		mv.Granted, mv.Total = grants.CountGranted(s.cat, g, grants.ModuleNode(m.ID))

		if granularity == GranularityCategory {
			mv.Categories = s.buildCategories(g, m)
		} else {
			mv.Entities = s.buildEntities(g, m)
		}

		view.Modules = append(view.Modules, mv)
	}

	return view
}

func (s *Service) buildEntities(g grants.GrantSet, m catalog.Module) []EntityView {
	out := make([]EntityView, 0, len(m.Entities))
	for _, e := range m.Entities {
		ev := EntityView{
			Name:      e.Name,
			Selection: grants.SelectionOf(s.cat, g, grants.EntityNode(m.ID, e.Name)),
		}
		for _, a := range e.Actions {
			ev.Actions = append(ev.Actions, ActionView{
				ID:          a.ID,
				Label:       a.Label,
				Description: a.Description,
				Category:    a.Category,
				Granted:     g.Get(m.ID, e.Name, a.ID),
			})
		}
		out = append(out, ev)
	}
	return out
}

func (s *Service) buildCategories(g grants.GrantSet, m catalog.Module) []CategoryView {
	var out []CategoryView
	for _, cat := range s.cat.CategoriesPresent(m.ID) {
		cv := CategoryView{
			Category:  cat,
			Selection: grants.SelectionOf(s.cat, g, grants.CategoryNode(m.ID, cat)),
			ActionIDs: s.cat.ActionsInCategory(m.ID, cat),
		}
		cv.Granted, cv.Total = grants.CountGranted(s.cat, g, grants.CategoryNode(m.ID, cat))
		out = append(out, cv)
	}
	return out
}

// Toggle applies the select-all rule to the node and returns the new grant
// set. The input set is never modified.
func (s *Service) Toggle(g grants.GrantSet, sel grants.NodeSelector) (grants.GrantSet, error) {
	if err := sel.Validate(); err != nil {
		return g, err
	}
	if sel.Kind == grants.NodeLeaf {
		return grants.ToggleLeaf(g, sel.Module, sel.Entity, sel.Action), nil
	}
	return grants.ToggleNode(s.cat, g, sel), nil
}

// SelectionOf computes the tri-state of a single node.
func (s *Service) SelectionOf(g grants.GrantSet, sel grants.NodeSelector) (grants.Selection, error) {
	if err := sel.Validate(); err != nil {
		return grants.SelectionNone, err
	}
	return grants.SelectionOf(s.cat, g, sel), nil
}

// Count returns how many of the node's leaves are granted and the node's
// total leaf count.
func (s *Service) Count(g grants.GrantSet, sel grants.NodeSelector) (granted, total int, err error) {
	if err := sel.Validate(); err != nil {
		return 0, 0, err
	}
	granted, total = grants.CountGranted(s.cat, g, sel)
	return granted, total, nil
}

// VisibleCount returns granted/total over the leaves visible in the scope.
func (s *Service) VisibleCount(g grants.GrantSet, scope Scope) (granted, total int) {
	return grants.CountGranted(s.cat, g, grants.GlobalNode(scope.IncludeAdvanced()))
}
