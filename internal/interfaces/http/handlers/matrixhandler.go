package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"clarion/internal/application/matrix"
	"clarion/internal/domain/catalog"
	"clarion/internal/domain/grants"
	"clarion/internal/shared/logger"
	"clarion/internal/shared/utils"
)

// MatrixHandler serves the matrix projections and the stateless
// selection/toggle computations the edit form drives. Toggle endpoints take
// a grant map and return a new one; nothing is stored until the role is
// saved through the role endpoints.
type MatrixHandler struct {
	roleService   RoleService
	matrixService MatrixService
	logger        logger.Interface
}

func NewMatrixHandler(roleService RoleService, matrixService MatrixService, log logger.Interface) *MatrixHandler {
	return &MatrixHandler{
		roleService:   roleService,
		matrixService: matrixService,
		logger:        log,
	}
}

// NodeSelectorRequest addresses an aggregation node in API requests.
type NodeSelectorRequest struct {
	Kind            string `json:"kind" binding:"required,oneof=leaf entity module category global"`
	Module          string `json:"module"`
	Entity          string `json:"entity"`
	Action          string `json:"action"`
	Category        string `json:"category" binding:"omitempty,permcategory"`
	IncludeAdvanced bool   `json:"include_advanced"`
}

func (r NodeSelectorRequest) toSelector() grants.NodeSelector {
	return grants.NodeSelector{
		Kind:            grants.NodeKind(r.Kind),
		Module:          r.Module,
		Entity:          r.Entity,
		Action:          r.Action,
		Category:        catalog.Category(r.Category),
		IncludeAdvanced: r.IncludeAdvanced,
	}
}

type MatrixComputeRequest struct {
	Permissions grants.GrantMap     `json:"permissions"`
	Node        NodeSelectorRequest `json:"node" binding:"required"`
}

type ToggleResponse struct {
	Permissions grants.GrantMap  `json:"permissions"`
	Selection   grants.Selection `json:"selection"`
}

type SelectionResponse struct {
	Selection grants.Selection `json:"selection"`
	Granted   int              `json:"granted"`
	Total     int              `json:"total"`
}

type MatrixPreviewRequest struct {
	Permissions grants.GrantMap `json:"permissions"`
	Scope       string          `json:"scope" binding:"omitempty,oneof=core full"`
	Granularity string          `json:"granularity" binding:"omitempty,oneof=action category"`
}

// GetRoleMatrix projects a stored role's grants under the requested axes.
func (h *MatrixHandler) GetRoleMatrix(c *gin.Context) {
	r, err := h.roleService.Get(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusNotFound, "role not found")
		return
	}

	scope, err := matrix.ParseScope(c.Query("scope"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	granularity, err := matrix.ParseGranularity(c.Query("granularity"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", h.matrixService.Build(r.Permissions(), scope, granularity))
}

// PreviewMatrix projects an unsaved grant map, for the edit session.
func (h *MatrixHandler) PreviewMatrix(c *gin.Context) {
	var req MatrixPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	scope, _ := matrix.ParseScope(req.Scope)
	granularity, _ := matrix.ParseGranularity(req.Granularity)

	utils.SuccessResponse(c, http.StatusOK, "", h.matrixService.Build(grants.FromMap(req.Permissions), scope, granularity))
}

// ToggleNode applies the select-all rule to a node of an unsaved grant map
// and returns the new map plus the node's new tri-state.
func (h *MatrixHandler) ToggleNode(c *gin.Context) {
	var req MatrixComputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	sel := req.Node.toSelector()
	next, err := h.matrixService.Toggle(grants.FromMap(req.Permissions), sel)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	selection, err := h.matrixService.SelectionOf(next, sel)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", ToggleResponse{
		Permissions: next.ToMap(),
		Selection:   selection,
	})
}

// NodeSelection computes the tri-state and granted/total counts of a node.
func (h *MatrixHandler) NodeSelection(c *gin.Context) {
	var req MatrixComputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	g := grants.FromMap(req.Permissions)
	sel := req.Node.toSelector()

	selection, err := h.matrixService.SelectionOf(g, sel)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	resp := SelectionResponse{Selection: selection}
	resp.Granted, resp.Total, err = h.matrixService.Count(g, sel)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", resp)
}
