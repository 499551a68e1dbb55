package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"clarion/internal/application/matrix"
	"clarion/internal/domain/catalog"
	"clarion/internal/shared/utils"
)

// CatalogHandler serves the static permission catalog.
type CatalogHandler struct {
	cat *catalog.Catalog
}

func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{cat: cat}
}

type CatalogResponse struct {
	Version       string             `json:"version"`
	Scope         matrix.Scope       `json:"scope"`
	CategoryOrder []catalog.Category `json:"category_order"`
	Modules       []catalog.Module   `json:"modules"`
}

// GetCatalog returns the modules visible in the requested scope, with the
// fixed category display order.
func (h *CatalogHandler) GetCatalog(c *gin.Context) {
	scope, err := matrix.ParseScope(c.Query("scope"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", CatalogResponse{
		Version:       h.cat.Version(),
		Scope:         scope,
		CategoryOrder: catalog.CanonicalCategoryOrder(),
		Modules:       h.cat.Modules(scope.IncludeAdvanced()),
	})
}
