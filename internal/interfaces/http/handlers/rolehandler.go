package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"clarion/internal/application/matrix"
	roleapp "clarion/internal/application/role"
	"clarion/internal/domain/grants"
	"clarion/internal/domain/role"
	apperrors "clarion/internal/shared/errors"
	"clarion/internal/shared/logger"
	"clarion/internal/shared/services/markdown"
	"clarion/internal/shared/utils"
)

type RoleHandler struct {
	roleService   RoleService
	matrixService MatrixService
	markdown      markdown.Service
	logger        logger.Interface
}

func NewRoleHandler(roleService RoleService, matrixService MatrixService, md markdown.Service, log logger.Interface) *RoleHandler {
	return &RoleHandler{
		roleService:   roleService,
		matrixService: matrixService,
		markdown:      md,
		logger:        log,
	}
}

type RoleMutationRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Permissions grants.GrantMap `json:"permissions"`
	CreatedBy   string          `json:"created_by"`
}

type PermissionCount struct {
	Granted int `json:"granted"`
	Total   int `json:"total"`
}

type RoleResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	DescriptionHTML string          `json:"description_html,omitempty"`
	Permissions     grants.GrantMap `json:"permissions"`
	IsSystemRole    bool            `json:"is_system_role"`
	CreatedBy       string          `json:"created_by,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	CoreCount       PermissionCount `json:"core_count"`
	FullCount       PermissionCount `json:"full_count"`
}

type NameCheckResponse struct {
	Name      string `json:"name"`
	Duplicate bool   `json:"duplicate"`
}

func (h *RoleHandler) toResponse(r *role.Role) RoleResponse {
	resp := RoleResponse{
		ID:           r.ID(),
		Name:         r.Name(),
		Description:  r.Description(),
		Permissions:  r.Permissions().ToMap(),
		IsSystemRole: r.IsSystem(),
		CreatedBy:    r.CreatedBy(),
		CreatedAt:    r.CreatedAt(),
		UpdatedAt:    r.UpdatedAt(),
	}

	resp.CoreCount.Granted, resp.CoreCount.Total = h.matrixService.VisibleCount(r.Permissions(), matrix.ScopeCore)
	resp.FullCount.Granted, resp.FullCount.Total = h.matrixService.VisibleCount(r.Permissions(), matrix.ScopeFull)

	if r.Description() != "" {
		html, err := h.markdown.ToHTMLSanitized(r.Description())
		if err != nil {
			h.logger.Warnw("failed to render role description", "role_id", r.ID(), "error", err)
		} else {
			resp.DescriptionHTML = html
		}
	}

	return resp
}

// ListRoles returns every role, system roles first.
func (h *RoleHandler) ListRoles(c *gin.Context) {
	roles := h.roleService.List()
	out := make([]RoleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, h.toResponse(r))
	}
	utils.SuccessResponse(c, http.StatusOK, "", out)
}

// GetRole returns a single role by id.
func (h *RoleHandler) GetRole(c *gin.Context) {
	r, err := h.roleService.Get(c.Param("id"))
	if err != nil {
		h.respondRoleError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", h.toResponse(r))
}

// CreateRole validates the edit input and inserts a new custom role.
func (h *RoleHandler) CreateRole(c *gin.Context) {
	var req RoleMutationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	permissions := grants.FromMap(req.Permissions)
	if err := h.roleService.ValidateRoleInput(req.Name, "", permissions); err != nil {
		h.respondRoleError(c, err)
		return
	}

	r, err := h.roleService.Create(c.Request.Context(), req.Name, req.Description, permissions, req.CreatedBy)
	if err != nil && !errors.Is(err, roleapp.ErrStoreWrite) {
		h.respondRoleError(c, err)
		return
	}

	utils.CreatedResponse(c, h.toResponse(r), persistMessage(err, "Role created"))
}

// UpdateRole validates the edit input and replaces a custom role's fields.
func (h *RoleHandler) UpdateRole(c *gin.Context) {
	id := c.Param("id")

	var req RoleMutationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	permissions := grants.FromMap(req.Permissions)
	if err := h.roleService.ValidateRoleInput(req.Name, id, permissions); err != nil {
		h.respondRoleError(c, err)
		return
	}

	r, err := h.roleService.Update(c.Request.Context(), id, req.Name, req.Description, permissions)
	if err != nil && !errors.Is(err, roleapp.ErrStoreWrite) {
		h.respondRoleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, persistMessage(err, "Role updated"), h.toResponse(r))
}

// DeleteRole removes a custom role.
func (h *RoleHandler) DeleteRole(c *gin.Context) {
	err := h.roleService.Delete(c.Request.Context(), c.Param("id"))
	if err != nil && !errors.Is(err, roleapp.ErrStoreWrite) {
		h.respondRoleError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, persistMessage(err, "Role deleted"), nil)
}

// DuplicateRole deep-copies a role under a "(Copy)" name.
func (h *RoleHandler) DuplicateRole(c *gin.Context) {
	var req struct {
		CreatedBy string `json:"created_by"`
	}
	// The body is optional for duplication.
	_ = c.ShouldBindJSON(&req)

	r, err := h.roleService.Duplicate(c.Request.Context(), c.Param("id"), req.CreatedBy)
	if err != nil && !errors.Is(err, roleapp.ErrStoreWrite) {
		h.respondRoleError(c, err)
		return
	}

	utils.CreatedResponse(c, h.toResponse(r), persistMessage(err, "Role duplicated"))
}

// CheckName reports whether a name collides with an existing role. The
// exclude_id query parameter keeps an edited role from flagging itself.
func (h *RoleHandler) CheckName(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "name query parameter is required")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", NameCheckResponse{
		Name:      name,
		Duplicate: h.roleService.IsDuplicateName(name, c.Query("exclude_id")),
	})
}

// persistMessage annotates a mutation message when the store write failed;
// the in-memory collection remains authoritative for the session.
func persistMessage(err error, base string) string {
	if errors.Is(err, roleapp.ErrStoreWrite) {
		return base + " (warning: changes could not be persisted)"
	}
	return base
}

func (h *RoleHandler) respondRoleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, role.ErrRoleNotFound):
		utils.AppErrorResponse(c, apperrors.NewNotFoundError("role not found"))
	case errors.Is(err, role.ErrSystemRoleImmutable):
		utils.AppErrorResponse(c, apperrors.NewForbiddenError("system roles cannot be modified or deleted"))
	case errors.Is(err, role.ErrEmptyName),
		errors.Is(err, role.ErrNameTooShort),
		errors.Is(err, role.ErrDuplicateName),
		errors.Is(err, role.ErrNoPermissionsSelected):
		utils.AppErrorResponse(c, apperrors.NewValidationError(err.Error()))
	default:
		h.logger.Errorw("unexpected role operation error", "error", err)
		utils.AppErrorResponse(c, apperrors.NewInternalError("role operation failed"))
	}
}
