package grants

import (
	"fmt"

	"clarion/internal/domain/catalog"
)

// Selection is the tri-state of an aggregation node, always derived from
// leaf data and never stored.
type Selection string

const (
	SelectionNone    Selection = "none"
	SelectionPartial Selection = "partial"
	SelectionFull    Selection = "full"
)

// NodeKind identifies the aggregation level a selector addresses.
type NodeKind string

const (
	NodeLeaf     NodeKind = "leaf"
	NodeEntity   NodeKind = "entity"
	NodeModule   NodeKind = "module"
	NodeCategory NodeKind = "category"
	NodeGlobal   NodeKind = "global"
)

// NodeSelector addresses a set of leaves: a single action, an entity, a
// module, a category within a module, or the whole visible catalog.
type NodeSelector struct {
	Kind     NodeKind
	Module   string
	Entity   string
	Action   string
	Category catalog.Category

	// IncludeAdvanced widens a global selector to advanced-only modules.
	IncludeAdvanced bool
}

func LeafNode(module, entity, action string) NodeSelector {
	return NodeSelector{Kind: NodeLeaf, Module: module, Entity: entity, Action: action}
}

func EntityNode(module, entity string) NodeSelector {
	return NodeSelector{Kind: NodeEntity, Module: module, Entity: entity}
}

func ModuleNode(module string) NodeSelector {
	return NodeSelector{Kind: NodeModule, Module: module}
}

func CategoryNode(module string, category catalog.Category) NodeSelector {
	return NodeSelector{Kind: NodeCategory, Module: module, Category: category}
}

func GlobalNode(includeAdvanced bool) NodeSelector {
	return NodeSelector{Kind: NodeGlobal, IncludeAdvanced: includeAdvanced}
}

// Validate checks that the selector is well-formed for its kind.
func (s NodeSelector) Validate() error {
	switch s.Kind {
	case NodeLeaf:
		if s.Module == "" || s.Entity == "" || s.Action == "" {
			return fmt.Errorf("leaf selector requires module, entity, and action")
		}
	case NodeEntity:
		if s.Module == "" || s.Entity == "" {
			return fmt.Errorf("entity selector requires module and entity")
		}
	case NodeModule:
		if s.Module == "" {
			return fmt.Errorf("module selector requires module")
		}
	case NodeCategory:
		if s.Module == "" {
			return fmt.Errorf("category selector requires module")
		}
		if !s.Category.Valid() {
			return fmt.Errorf("category selector has unknown category %q", s.Category)
		}
	case NodeGlobal:
	default:
		return fmt.Errorf("unknown node kind %q", s.Kind)
	}
	return nil
}

// LeavesUnder resolves the selector to its constituent catalog leaves.
// Selectors that address nothing in the catalog resolve to an empty set.
func LeavesUnder(cat *catalog.Catalog, sel NodeSelector) []Leaf {
	switch sel.Kind {
	case NodeLeaf:
		if !cat.HasLeaf(sel.Module, sel.Entity, sel.Action) {
			return nil
		}
		return []Leaf{{Module: sel.Module, Entity: sel.Entity, Action: sel.Action}}

	case NodeEntity:
		m, ok := cat.Module(sel.Module)
		if !ok {
			return nil
		}
		for _, e := range m.Entities {
			if e.Name != sel.Entity {
				continue
			}
			leaves := make([]Leaf, 0, len(e.Actions))
			for _, a := range e.Actions {
				leaves = append(leaves, Leaf{Module: m.ID, Entity: e.Name, Action: a.ID})
			}
			return leaves
		}
		return nil

	case NodeModule:
		m, ok := cat.Module(sel.Module)
		if !ok {
			return nil
		}
		return moduleLeaves(m)

	case NodeCategory:
		m, ok := cat.Module(sel.Module)
		if !ok {
			return nil
		}
		var leaves []Leaf
		for _, e := range m.Entities {
			for _, a := range e.Actions {
				if a.Category == sel.Category {
					leaves = append(leaves, Leaf{Module: m.ID, Entity: e.Name, Action: a.ID})
				}
			}
		}
		return leaves

	case NodeGlobal:
		var leaves []Leaf
		for _, m := range cat.Modules(sel.IncludeAdvanced) {
			leaves = append(leaves, moduleLeaves(m)...)
		}
		return leaves
	}

	return nil
}

func moduleLeaves(m catalog.Module) []Leaf {
	var leaves []Leaf
	for _, e := range m.Entities {
		for _, a := range e.Actions {
			leaves = append(leaves, Leaf{Module: m.ID, Entity: e.Name, Action: a.ID})
		}
	}
	return leaves
}

// SelectionOf computes the tri-state of the node: Full when every
// constituent leaf is granted, None when none is (including the empty node,
// which must never show as vacuously Full), Partial otherwise.
func SelectionOf(cat *catalog.Catalog, g GrantSet, sel NodeSelector) Selection {
	leaves := LeavesUnder(cat, sel)
	return selectionOfLeaves(g, leaves)
}

func selectionOfLeaves(g GrantSet, leaves []Leaf) Selection {
	if len(leaves) == 0 {
		return SelectionNone
	}

	granted := 0
	for _, leaf := range leaves {
		if g.Get(leaf.Module, leaf.Entity, leaf.Action) {
			granted++
		}
	}

	switch granted {
	case 0:
		return SelectionNone
	case len(leaves):
		return SelectionFull
	default:
		return SelectionPartial
	}
}

// CountGranted returns how many of the node's leaves are granted, and the
// node's total leaf count.
func CountGranted(cat *catalog.Catalog, g GrantSet, sel NodeSelector) (granted, total int) {
	leaves := LeavesUnder(cat, sel)
	for _, leaf := range leaves {
		if g.Get(leaf.Module, leaf.Entity, leaf.Action) {
			granted++
		}
	}
	return granted, len(leaves)
}
