package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/projectdesk/internal/model"
	"github.com/iliyamo/projectdesk/internal/queue"
	"github.com/iliyamo/projectdesk/internal/repository"
	"github.com/iliyamo/projectdesk/internal/service"
)

// roleDateLayout renders creation dates as dd/mm/yyyy HH:MM:SS.
const roleDateLayout = "02/01/2006 15:04:05"

// RoleHandler manages the role catalog.
type RoleHandler struct {
	Roles  *repository.RoleRepo
	Events service.Publisher
}

func NewRoleHandler(roles *repository.RoleRepo, events service.Publisher) *RoleHandler {
	return &RoleHandler{Roles: roles, Events: events}
}

type roleReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type roleResp struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
	CreatedBy   string `json:"createdBy"`
}

func toRoleResp(r model.Role) roleResp {
	return roleResp{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		CreatedAt:   r.CreatedAt.Format(roleDateLayout),
		CreatedBy:   r.CreatedBy,
	}
}

func (req roleReq) role() (model.Role, bool) {
	r := model.Role{Name: strings.TrimSpace(req.Name), Description: strings.TrimSpace(req.Description)}
	return r, r.Name != ""
}

// Create handles POST /api/roles.  The caller's handle is recorded as the
// creator.
func (h *RoleHandler) Create(c echo.Context) error {
	var req roleReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	role, ok := req.role()
	if !ok {
		return badRequest(c, "name is required")
	}
	role.CreatedBy = identity(c).Handle

	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.Roles.Create(ctx, &role); err != nil {
		return respondError(c, err)
	}
	created, err := h.Roles.GetByID(ctx, role.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toRoleResp(created))
}

// Update handles PUT /api/roles/:id.
func (h *RoleHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req roleReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	role, ok := req.role()
	if !ok {
		return badRequest(c, "name is required")
	}
	role.ID = id

	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.Roles.Update(ctx, role); err != nil {
		return respondError(c, err)
	}
	updated, err := h.Roles.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toRoleResp(updated))
}

// List handles GET /api/roles?search=.
func (h *RoleHandler) List(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	roles, err := h.Roles.List(ctx, c.QueryParam("search"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]roleResp, 0, len(roles))
	for _, r := range roles {
		out = append(out, toRoleResp(r))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /api/roles/:id.
func (h *RoleHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	role, err := h.Roles.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toRoleResp(role))
}

// Delete handles DELETE /api/roles/:id.  A role still used by a user or a
// navigation link answers 409 and is left as it was.
func (h *RoleHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.Roles.Delete(ctx, id); err != nil {
		return respondError(c, err)
	}
	service.Publish(h.Events, queue.AuditEvent{Kind: queue.KindRoleDeleted, Actor: identity(c).Handle, RoleID: id})
	return c.NoContent(http.StatusNoContent)
}
