package catalog

import (
	"reflect"
	"testing"
)

func testModules() []Module {
	return []Module{
		{
			ID:   "incidents",
			Name: "Incidents",
			Entities: []Entity{
				{
					Name: "Event",
					Actions: []Action{
						{ID: "view_events", Label: "View events", Category: CategoryView},
						{ID: "edit_event", Label: "Edit event", Category: CategoryEditor},
						{ID: "export_events", Label: "Export events", Category: CategoryReporting},
					},
				},
			},
		},
		{
			ID:           "analytics",
			Name:         "Analytics",
			AdvancedOnly: true,
			Entities: []Entity{
				{
					Name: "Dashboard",
					Actions: []Action{
						{ID: "view_dashboards", Label: "View dashboards", Category: CategoryView},
						{ID: "build_dashboard", Label: "Build dashboard", Category: CategoryAdvanced},
					},
				},
			},
		},
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func([]Module) []Module
		wantErr bool
	}{
		{
			name:    "valid catalog",
			mutate:  func(ms []Module) []Module { return ms },
			wantErr: false,
		},
		{
			name:    "no modules",
			mutate:  func(ms []Module) []Module { return nil },
			wantErr: true,
		},
		{
			name: "duplicate module id",
			mutate: func(ms []Module) []Module {
				ms[1].ID = ms[0].ID
				return ms
			},
			wantErr: true,
		},
		{
			name: "duplicate action id across modules",
			mutate: func(ms []Module) []Module {
				ms[1].Entities[0].Actions[0].ID = "view_events"
				return ms
			},
			wantErr: true,
		},
		{
			name: "unknown category",
			mutate: func(ms []Module) []Module {
				ms[0].Entities[0].Actions[0].Category = "banana"
				return ms
			},
			wantErr: true,
		},
		{
			name: "empty action id",
			mutate: func(ms []Module) []Module {
				ms[0].Entities[0].Actions[0].ID = ""
				return ms
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("test", tt.mutate(testModules()))
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestModulesScopeFilter(t *testing.T) {
	cat, err := New("test", testModules())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	core := cat.Modules(false)
	if len(core) != 1 || core[0].ID != "incidents" {
		t.Errorf("Modules(false) = %v modules, want only incidents", len(core))
	}

	full := cat.Modules(true)
	if len(full) != 2 {
		t.Errorf("Modules(true) = %d modules, want 2", len(full))
	}
}

func TestHasLeaf(t *testing.T) {
	cat, err := New("test", testModules())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if !cat.HasLeaf("incidents", "Event", "view_events") {
		t.Error("HasLeaf() = false for a real leaf")
	}
	if cat.HasLeaf("incidents", "Event", "nonexistent") {
		t.Error("HasLeaf() = true for an unknown action")
	}
	if cat.HasLeaf("incidents", "Dashboard", "view_events") {
		t.Error("HasLeaf() = true for a mismatched entity")
	}
}

func TestActionsInCategory(t *testing.T) {
	cat, err := New("test", testModules())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	got := cat.ActionsInCategory("incidents", CategoryView)
	if !reflect.DeepEqual(got, []string{"view_events"}) {
		t.Errorf("ActionsInCategory(view) = %v, want [view_events]", got)
	}

	if got := cat.ActionsInCategory("incidents", CategoryAdvanced); len(got) != 0 {
		t.Errorf("ActionsInCategory(advanced) = %v, want empty", got)
	}

	if got := cat.ActionsInCategory("nonexistent", CategoryView); got != nil {
		t.Errorf("ActionsInCategory(unknown module) = %v, want nil", got)
	}
}

func TestCategoriesPresentCanonicalOrder(t *testing.T) {
	cat, err := New("test", testModules())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	got := cat.CategoriesPresent("incidents")
	want := []Category{CategoryView, CategoryEditor, CategoryReporting}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CategoriesPresent() = %v, want %v", got, want)
	}
}

func TestLeafCount(t *testing.T) {
	cat, err := New("test", testModules())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if got := cat.LeafCount(false); got != 3 {
		t.Errorf("LeafCount(false) = %d, want 3", got)
	}
	if got := cat.LeafCount(true); got != 5 {
		t.Errorf("LeafCount(true) = %d, want 5", got)
	}
}

func TestDefaultCatalogIsValid(t *testing.T) {
	cat := Default()
	if cat.Version() == "" {
		t.Error("Default() catalog has empty version")
	}
	if len(cat.Modules(true)) <= len(cat.Modules(false)) {
		t.Error("Default() catalog should have advanced-only modules beyond the core set")
	}
}

func TestCategoryValid(t *testing.T) {
	for _, c := range CanonicalCategoryOrder() {
		if !c.Valid() {
			t.Errorf("Category %q should be valid", c)
		}
	}
	if Category("banana").Valid() {
		t.Error(`Category("banana").Valid() = true`)
	}
}
