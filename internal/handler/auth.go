package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"usercms/internal/model"
	"usercms/internal/repository"
)

// dbTimeout bounds every database call made from a handler.
const dbTimeout = 5 * time.Second

// AuthHandler serves the login endpoint.
type AuthHandler struct {
	Users *repository.UserRepo
	Log   *zap.Logger
}

func NewAuthHandler(users *repository.UserRepo, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Users: users, Log: log}
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResp struct {
	User model.User `json:"user"`
}

// Login handles POST /api/login. On success the user object is returned
// directly; there is no session or token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing username or password"})
	}
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing username or password"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCredentials) {
			// The response never reveals whether the username exists.
			h.Log.Debug("login rejected", zap.String("username", req.Username))
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid credentials"})
		}
		h.Log.Error("login query failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error"})
	}
	return c.JSON(http.StatusOK, loginResp{User: u})
}
