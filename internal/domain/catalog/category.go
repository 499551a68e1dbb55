package catalog

// Category classifies actions for grouped display. It carries no
// authorization meaning of its own.
type Category string

const (
	CategoryView          Category = "view"
	CategoryEditor        Category = "editor"
	CategoryManagement    Category = "management"
	CategoryCollaboration Category = "collaboration"
	CategoryDataCleanup   Category = "data_cleanup"
	CategoryReporting     Category = "reporting"
	CategoryAdvanced      Category = "advanced"
)

// canonicalOrder fixes the rendering order of categories everywhere in the
// console so grouped views are deterministic.
var canonicalOrder = []Category{
	CategoryView,
	CategoryEditor,
	CategoryManagement,
	CategoryCollaboration,
	CategoryDataCleanup,
	CategoryReporting,
	CategoryAdvanced,
}

// CanonicalCategoryOrder returns a copy of the fixed category display order.
func CanonicalCategoryOrder() []Category {
	out := make([]Category, len(canonicalOrder))
	copy(out, canonicalOrder)
	return out
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range canonicalOrder {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}
