package grants

import "clarion/internal/domain/catalog"

// ToggleNode applies the single governing rule for every "select all"
// control: the node's selection is computed first, a Full node clears all
// its leaves, and any other state (None or Partial) grants them all. A
// partially checked node therefore always toggles to fully checked; there
// is no direct Partial-to-None transition.
func ToggleNode(cat *catalog.Catalog, g GrantSet, sel NodeSelector) GrantSet {
	leaves := LeavesUnder(cat, sel)
	if len(leaves) == 0 {
		return g
	}

	target := selectionOfLeaves(g, leaves) != SelectionFull
	return g.withAll(leaves, target)
}

// ToggleLeaf flips exactly one leaf, independent of the select-all rule.
func ToggleLeaf(g GrantSet, module, entity, action string) GrantSet {
	return g.With(module, entity, action, !g.Get(module, entity, action))
}
