// Package grants models a role's permission grant set and the pure
// selection/toggle computations over it. Every mutation returns a fresh
// GrantSet; callers re-render off the new value.
package grants

import (
	"encoding/json"
	"sort"

	"clarion/internal/domain/catalog"
)

// Leaf addresses one (module, entity, action) boolean grant.
type Leaf struct {
	Module string `json:"module"`
	Entity string `json:"entity"`
	Action string `json:"action"`
}

// GrantSet is a sparse grant set: only granted leaves are stored, any leaf
// absent from the set is false. The zero value is an empty set and is safe
// to use.
type GrantSet struct {
	granted map[Leaf]struct{}
}

// NewGrantSet returns an empty grant set.
func NewGrantSet() GrantSet {
	return GrantSet{}
}

// Get reports whether the leaf is granted. Unknown keys are simply false.
func (g GrantSet) Get(module, entity, action string) bool {
	_, ok := g.granted[Leaf{Module: module, Entity: entity, Action: action}]
	return ok
}

// With returns a copy of the set with the leaf set to value. The receiver is
// left unmodified.
func (g GrantSet) With(module, entity, action string, value bool) GrantSet {
	leaf := Leaf{Module: module, Entity: entity, Action: action}
	if value == g.Get(module, entity, action) {
		return g
	}

	next := g.clone()
	if value {
		next.granted[leaf] = struct{}{}
	} else {
		delete(next.granted, leaf)
	}
	return next
}

// withAll returns a copy with every given leaf set to value.
func (g GrantSet) withAll(leaves []Leaf, value bool) GrantSet {
	next := g.clone()
	for _, leaf := range leaves {
		if value {
			next.granted[leaf] = struct{}{}
		} else {
			delete(next.granted, leaf)
		}
	}
	return next
}

// GrantedCount returns the number of granted leaves in the whole set.
func (g GrantSet) GrantedCount() int {
	return len(g.granted)
}

// IsEmpty reports whether no leaf is granted.
func (g GrantSet) IsEmpty() bool {
	return len(g.granted) == 0
}

// Leaves returns the granted leaves in a stable order.
func (g GrantSet) Leaves() []Leaf {
	out := make([]Leaf, 0, len(g.granted))
	for leaf := range g.granted {
		out = append(out, leaf)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Module != b.Module {
			return a.Module < b.Module
		}
		if a.Entity != b.Entity {
			return a.Entity < b.Entity
		}
		return a.Action < b.Action
	})
	return out
}

// Clone returns an independent deep copy. Role duplication must never share
// grant storage between roles.
func (g GrantSet) Clone() GrantSet {
	return g.clone()
}

// Pruned returns a copy containing only leaves that still exist in the
// catalog. Stale leaves from an older persisted catalog are dropped, not
// treated as errors.
func (g GrantSet) Pruned(cat *catalog.Catalog) GrantSet {
	next := GrantSet{granted: make(map[Leaf]struct{}, len(g.granted))}
	for leaf := range g.granted {
		if cat.HasLeaf(leaf.Module, leaf.Entity, leaf.Action) {
			next.granted[leaf] = struct{}{}
		}
	}
	return next
}

func (g GrantSet) clone() GrantSet {
	next := GrantSet{granted: make(map[Leaf]struct{}, len(g.granted)+1)}
	for leaf := range g.granted {
		next.granted[leaf] = struct{}{}
	}
	return next
}

// GrantMap is the wire and persistence shape of a grant set:
// moduleId -> entityName -> actionId -> granted.
type GrantMap map[string]map[string]map[string]bool

// ToMap converts the set to its nested-map form. False leaves are omitted.
func (g GrantSet) ToMap() GrantMap {
	out := make(GrantMap)
	for leaf := range g.granted {
		if out[leaf.Module] == nil {
			out[leaf.Module] = make(map[string]map[string]bool)
		}
		if out[leaf.Module][leaf.Entity] == nil {
			out[leaf.Module][leaf.Entity] = make(map[string]bool)
		}
		out[leaf.Module][leaf.Entity][leaf.Action] = true
	}
	return out
}

// FromMap builds a grant set from the nested-map form. Explicit false
// entries are ignored; absence already means false.
func FromMap(m GrantMap) GrantSet {
	g := GrantSet{granted: make(map[Leaf]struct{})}
	for module, entities := range m {
		for entity, actions := range entities {
			for action, granted := range actions {
				if granted {
					g.granted[Leaf{Module: module, Entity: entity, Action: action}] = struct{}{}
				}
			}
		}
	}
	return g
}

// MarshalJSON serializes the set in its nested-map form.
func (g GrantSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.ToMap())
}

// UnmarshalJSON reads the nested-map form.
func (g *GrantSet) UnmarshalJSON(data []byte) error {
	var m GrantMap
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*g = FromMap(m)
	return nil
}
