package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"usercms/internal/repository"
)

// RoleHandler serves the /api/roles endpoints.
type RoleHandler struct {
	Roles *repository.RoleRepo
	Log   *zap.Logger
}

func NewRoleHandler(roles *repository.RoleRepo, log *zap.Logger) *RoleHandler {
	return &RoleHandler{Roles: roles, Log: log}
}

type roleReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// List handles GET /api/roles.
func (h *RoleHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	roles, err := h.Roles.List(ctx)
	if err != nil {
		h.Log.Error("list roles failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error"})
	}
	return c.JSON(http.StatusOK, roles)
}

// Get handles GET /api/roles/:id.
func (h *RoleHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	role, err := h.Roles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Role not found"})
		}
		h.Log.Error("get role failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error"})
	}
	return c.JSON(http.StatusOK, role)
}

// Create handles POST /api/roles.
func (h *RoleHandler) Create(c echo.Context) error {
	var req roleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Role name is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	role, err := h.Roles.Create(ctx, req.Name, req.Description)
	if err != nil {
		return h.roleError(c, err)
	}
	return c.JSON(http.StatusCreated, role)
}

// Update handles PUT /api/roles/:id.
func (h *RoleHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid id"})
	}
	var req roleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Role name is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	role, err := h.Roles.Update(ctx, id, req.Name, req.Description)
	if err != nil {
		return h.roleError(c, err)
	}
	return c.JSON(http.StatusOK, role)
}

// Delete handles DELETE /api/roles/:id. Deletion of the reserved admin
// role and of any role still assigned to users is refused.
func (h *RoleHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Roles.Delete(ctx, id); err != nil {
		return h.roleError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// roleError maps repository failures onto the role endpoint contract.
func (h *RoleHandler) roleError(c echo.Context, err error) error {
	var ve *repository.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Msg})
	case errors.Is(err, repository.ErrDuplicateRole):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Role with this name already exists"})
	case errors.Is(err, repository.ErrAdminRoleProtected):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Cannot delete the default admin role"})
	case errors.Is(err, repository.ErrRoleInUse):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Cannot delete role that is assigned to users. Please reassign users first."})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Role not found"})
	default:
		h.Log.Error("role operation failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error"})
	}
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
