package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/projectdesk/internal/handler"
	"github.com/iliyamo/projectdesk/internal/middleware"
)

// RegisterMenu registers the menu, catalog and permission routes.  All of
// them need a valid token; a user's menu is readable by that user or an
// admin, and only admins may replace permissions.
func RegisterMenu(api *echo.Group, m *handler.MenuHandler, v middleware.Verifier, adminRoleID uint64, cache echo.MiddlewareFunc) {
	g := api.Group("", middleware.AccessGuard(v))

	g.GET("/menu/:handle", m.Menu, middleware.RequireSelfOrAdmin("handle", adminRoleID))
	g.GET("/menu-catalog", m.Catalog, cache)
	g.GET("/permissions/:roleId", m.ListPermissions)
	g.POST("/permissions", m.SavePermissions, middleware.RequireAdmin(adminRoleID))
}
