package catalog

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/catalog.yaml
var embeddedCatalog []byte

type catalogDocument struct {
	Version string   `yaml:"version"`
	Modules []Module `yaml:"modules"`
}

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
	defaultCatalogErr  error
)

// Parse builds a catalog from a yaml document.
func Parse(data []byte) (*Catalog, error) {
	var doc catalogDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog yaml: %w", err)
	}
	return New(doc.Version, doc.Modules)
}

// Default returns the compiled-in catalog. The embedded document is parsed
// and validated once; a broken embed is a build defect, so errors panic.
func Default() *Catalog {
	defaultCatalogOnce.Do(func() {
		defaultCatalog, defaultCatalogErr = Parse(embeddedCatalog)
	})
	if defaultCatalogErr != nil {
		panic(fmt.Sprintf("embedded permission catalog is invalid: %v", defaultCatalogErr))
	}
	return defaultCatalog
}
