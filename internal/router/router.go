// Package router wires the HTTP surface onto an Echo instance. The
// browser client talks only to the /api group; /healthz stays outside it
// for infrastructure probes.
package router

import (
	"github.com/labstack/echo/v4"

	"usercms/internal/handler"
)

// Register attaches every route to the given Echo instance.
func Register(e *echo.Echo, auth *handler.AuthHandler, roles *handler.RoleHandler, users *handler.UserHandler) {
	e.GET("/healthz", handler.Health)

	api := e.Group("/api")

	api.POST("/login", auth.Login)

	api.GET("/roles", roles.List)
	api.GET("/roles/:id", roles.Get)
	api.POST("/roles", roles.Create)
	api.PUT("/roles/:id", roles.Update)
	api.DELETE("/roles/:id", roles.Delete)

	api.GET("/users", users.List)
	api.GET("/users/:id", users.Get)
	api.POST("/users", users.Create)
	api.PUT("/users/:id", users.Update)
	api.DELETE("/users/:id", users.Delete)
	api.POST("/users/:id/change-password", users.ChangePassword)
}
