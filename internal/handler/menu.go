package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/projectdesk/internal/service"
)

// MenuHandler serves the per-user menu, the catalog and the permission
// editor.
type MenuHandler struct {
	Menus *service.MenuResolver
	Perms *service.PermissionEditor
}

func NewMenuHandler(menus *service.MenuResolver, perms *service.PermissionEditor) *MenuHandler {
	return &MenuHandler{Menus: menus, Perms: perms}
}

type savePermissionsReq struct {
	RoleID      uint64                   `json:"roleId"`
	Permissions []service.PermissionItem `json:"permissions"`
}

// Menu handles GET /api/menu/:handle.
func (h *MenuHandler) Menu(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	entries, err := h.Menus.Resolve(ctx, c.Param("handle"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, entries)
}

// Catalog handles GET /api/menu-catalog.
func (h *MenuHandler) Catalog(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	entries, err := h.Menus.Catalog(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, entries)
}

// ListPermissions handles GET /api/permissions/:roleId.
func (h *MenuHandler) ListPermissions(c echo.Context) error {
	roleID, ok := parseID(c, "roleId")
	if !ok {
		return badRequest(c, "invalid roleId")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	entries, err := h.Perms.List(ctx, roleID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, entries)
}

// SavePermissions handles POST /api/permissions.  The role's permission set
// is replaced as a whole.
func (h *MenuHandler) SavePermissions(c echo.Context) error {
	var req savePermissionsReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "roleId and permissions are required")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.Perms.Save(ctx, identity(c).Handle, req.RoleID, req.Permissions); err != nil {
		return respondRoleRef(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"roleId": req.RoleID, "message": "permissions saved"})
}
