package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/projectdesk/internal/handler"
	"github.com/iliyamo/projectdesk/internal/middleware"
)

// AdminHandlers groups the handlers served only to administrators.
type AdminHandlers struct {
	Users      *handler.UserHandler
	Roles      *handler.RoleHandler
	Navigation *handler.NavigationHandler
}

// RegisterAdmin registers user, role and navigation administration.  Every
// route requires a valid token and the admin role.
func RegisterAdmin(api *echo.Group, h AdminHandlers, v middleware.Verifier, adminRoleID uint64) {
	g := api.Group("", middleware.AccessGuard(v), middleware.RequireAdmin(adminRoleID))

	// ---- Users ----
	g.GET("/users", h.Users.List)
	g.GET("/users/:id", h.Users.Get)
	g.PUT("/users/:id", h.Users.Update)
	g.PUT("/users/:id/deactivate", h.Users.ToggleStatus)
	g.DELETE("/users/:id", h.Users.Delete)

	// ---- Roles ----
	g.POST("/roles", h.Roles.Create)
	g.GET("/roles", h.Roles.List)
	g.GET("/roles/:id", h.Roles.Get)
	g.PUT("/roles/:id", h.Roles.Update)
	g.DELETE("/roles/:id", h.Roles.Delete)

	// ---- Navigation ----
	g.POST("/navigation", h.Navigation.Create)
	g.GET("/navigation", h.Navigation.List)
	g.PUT("/navigation/:id", h.Navigation.Update)
	g.DELETE("/navigation/:id", h.Navigation.Delete)
}
