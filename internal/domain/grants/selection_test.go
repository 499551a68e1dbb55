package grants

import (
	"testing"

	"clarion/internal/domain/catalog"
)

func TestSelectorValidate(t *testing.T) {
	tests := []struct {
		name    string
		sel     NodeSelector
		wantErr bool
	}{
		{"valid leaf", LeafNode("incidents", "Event", "view_events"), false},
		{"leaf missing action", NodeSelector{Kind: NodeLeaf, Module: "incidents", Entity: "Event"}, true},
		{"valid entity", EntityNode("incidents", "Event"), false},
		{"entity missing entity", NodeSelector{Kind: NodeEntity, Module: "incidents"}, true},
		{"valid module", ModuleNode("incidents"), false},
		{"module missing module", NodeSelector{Kind: NodeModule}, true},
		{"valid category", CategoryNode("incidents", catalog.CategoryView), false},
		{"category missing module", NodeSelector{Kind: NodeCategory, Category: catalog.CategoryView}, true},
		{"category unknown category", NodeSelector{Kind: NodeCategory, Module: "incidents", Category: "banana"}, true},
		{"valid global", GlobalNode(true), false},
		{"unknown kind", NodeSelector{Kind: "galaxy"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sel.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLeavesUnder(t *testing.T) {
	cat := testCatalog(t)

	tests := []struct {
		name string
		sel  NodeSelector
		want int
	}{
		{"single leaf", LeafNode("incidents", "Event", "view_events"), 1},
		{"unknown leaf", LeafNode("incidents", "Event", "nope"), 0},
		{"entity", EntityNode("incidents", "Event"), 3},
		{"unknown entity", EntityNode("incidents", "Ghost"), 0},
		{"module", ModuleNode("incidents"), 5},
		{"unknown module", ModuleNode("nonexistent"), 0},
		{"category view", CategoryNode("incidents", catalog.CategoryView), 2},
		{"category editor", CategoryNode("incidents", catalog.CategoryEditor), 3},
		{"category absent from module", CategoryNode("incidents", catalog.CategoryAdvanced), 0},
		{"global core", GlobalNode(false), 5},
		{"global with advanced", GlobalNode(true), 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LeavesUnder(cat, tt.sel); len(got) != tt.want {
				t.Errorf("LeavesUnder() = %d leaves, want %d", len(got), tt.want)
			}
		})
	}
}

func TestSelectionOf(t *testing.T) {
	cat := testCatalog(t)

	empty := NewGrantSet()
	partial := NewGrantSet().With("incidents", "Event", "view_events", true)
	fullEntity := partial.
		With("incidents", "Event", "edit_event", true).
		With("incidents", "Event", "close_event", true)

	tests := []struct {
		name string
		g    GrantSet
		sel  NodeSelector
		want Selection
	}{
		{"empty set leaf", empty, LeafNode("incidents", "Event", "view_events"), SelectionNone},
		{"granted leaf", partial, LeafNode("incidents", "Event", "view_events"), SelectionFull},
		{"entity partial", partial, EntityNode("incidents", "Event"), SelectionPartial},
		{"entity full", fullEntity, EntityNode("incidents", "Event"), SelectionFull},
		{"module partial", fullEntity, ModuleNode("incidents"), SelectionPartial},
		{"category view partial", partial, CategoryNode("incidents", catalog.CategoryView), SelectionPartial},
		{"category editor untouched", partial, CategoryNode("incidents", catalog.CategoryEditor), SelectionNone},
		{"global none on empty set", empty, GlobalNode(true), SelectionNone},
		// A node with zero constituent leaves is None, never vacuously Full.
		{"empty node is none", fullEntity, ModuleNode("nonexistent"), SelectionNone},
		{"absent category is none", fullEntity, CategoryNode("incidents", catalog.CategoryAdvanced), SelectionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectionOf(cat, tt.g, tt.sel); got != tt.want {
				t.Errorf("SelectionOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCountGranted(t *testing.T) {
	cat := testCatalog(t)

	g := NewGrantSet().
		With("incidents", "Event", "view_events", true).
		With("incidents", "Action Item", "view_action_items", true)

	tests := []struct {
		name        string
		sel         NodeSelector
		wantGranted int
		wantTotal   int
	}{
		{"category view", CategoryNode("incidents", catalog.CategoryView), 2, 2},
		{"category editor", CategoryNode("incidents", catalog.CategoryEditor), 0, 3},
		{"module", ModuleNode("incidents"), 2, 5},
		{"global core", GlobalNode(false), 2, 5},
		{"global with advanced", GlobalNode(true), 2, 7},
		{"empty node", ModuleNode("nonexistent"), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			granted, total := CountGranted(cat, g, tt.sel)
			if granted != tt.wantGranted || total != tt.wantTotal {
				t.Errorf("CountGranted() = (%d, %d), want (%d, %d)", granted, total, tt.wantGranted, tt.wantTotal)
			}
		})
	}
}
