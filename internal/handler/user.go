package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"usercms/internal/repository"
)

// UserHandler serves the /api/users endpoints.
type UserHandler struct {
	Users *repository.UserRepo
	Log   *zap.Logger
}

func NewUserHandler(users *repository.UserRepo, log *zap.Logger) *UserHandler {
	return &UserHandler{Users: users, Log: log}
}

type userReq struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	RoleID    int64  `json:"role_id"`
}

// The change-password body uses camelCase keys; the admin client sends
// them that way.
type changePasswordReq struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (r userReq) input() repository.UserInput {
	return repository.UserInput{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Address:   r.Address,
		Phone:     r.Phone,
		Username:  r.Username,
		Password:  r.Password,
		RoleID:    r.RoleID,
	}
}

// List handles GET /api/users.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		h.Log.Error("list users failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error"})
	}
	return c.JSON(http.StatusOK, users)
}

// Get handles GET /api/users/:id.
func (h *UserHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
		}
		h.Log.Error("get user failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error"})
	}
	return c.JSON(http.StatusOK, u)
}

// Create handles POST /api/users.
func (h *UserHandler) Create(c echo.Context) error {
	var req userReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing required fields"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.Create(ctx, req.input())
	if err != nil {
		var ve *repository.ValidationError
		switch {
		case errors.As(err, &ve):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Msg})
		case errors.Is(err, repository.ErrDuplicateUser):
			// Duplicates deliberately share the storage-error status here;
			// the combined message is what the admin client expects.
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error or duplicate email/username"})
		default:
			h.Log.Error("create user failed", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error"})
		}
	}
	return c.JSON(http.StatusCreated, u)
}

// Update handles PUT /api/users/:id.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid id"})
	}
	var req userReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing required fields"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.Update(ctx, id, req.input())
	if err != nil {
		var ve *repository.ValidationError
		switch {
		case errors.As(err, &ve):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Msg})
		case errors.Is(err, repository.ErrNotFound):
			// Updating an id that does not exist is not an error at this
			// surface; the body is simply null.
			return c.JSON(http.StatusOK, nil)
		default:
			h.Log.Error("update user failed", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error"})
		}
	}
	return c.JSON(http.StatusOK, u)
}

// Delete handles DELETE /api/users/:id. Always 204 unless storage fails.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		h.Log.Error("delete user failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ChangePassword handles POST /api/users/:id/change-password.
func (h *UserHandler) ChangePassword(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid id"})
	}
	var req changePasswordReq
	if err := c.Bind(&req); err != nil || req.CurrentPassword == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Current password and new password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Users.ChangePassword(ctx, id, req.CurrentPassword, req.NewPassword); err != nil {
		var ve *repository.ValidationError
		switch {
		case errors.As(err, &ve):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Msg})
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
		case errors.Is(err, repository.ErrInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Current password is incorrect"})
		default:
			h.Log.Error("change password failed", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Password updated successfully",
	})
}
