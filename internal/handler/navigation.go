package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/projectdesk/internal/model"
	"github.com/iliyamo/projectdesk/internal/repository"
)

// NavigationHandler manages role-owned navigation links.
type NavigationHandler struct {
	Links *repository.NavigationRepo
}

func NewNavigationHandler(links *repository.NavigationRepo) *NavigationHandler {
	return &NavigationHandler{Links: links}
}

type navigationReq struct {
	LinkName string `json:"linkName"`
	URL      string `json:"url"`
	RoleID   uint64 `json:"roleId"`
}

func (req navigationReq) link() (model.NavigationLink, string) {
	l := model.NavigationLink{
		LinkName: strings.TrimSpace(req.LinkName),
		URL:      strings.TrimSpace(req.URL),
		RoleID:   req.RoleID,
	}
	switch {
	case l.LinkName == "":
		return l, "linkName is required"
	case l.URL == "":
		return l, "url is required"
	case l.RoleID == 0:
		return l, "roleId is required"
	}
	return l, ""
}

// Create handles POST /api/navigation.
func (h *NavigationHandler) Create(c echo.Context) error {
	var req navigationReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	l, msg := req.link()
	if msg != "" {
		return badRequest(c, msg)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.Links.Create(ctx, &l); err != nil {
		return respondRoleRef(c, err)
	}
	return c.JSON(http.StatusCreated, l)
}

// Update handles PUT /api/navigation/:id.
func (h *NavigationHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req navigationReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	l, msg := req.link()
	if msg != "" {
		return badRequest(c, msg)
	}
	l.ID = id
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.Links.Update(ctx, l); err != nil {
		return respondRoleRef(c, err)
	}
	return c.JSON(http.StatusOK, l)
}

// List handles GET /api/navigation?search=.
func (h *NavigationHandler) List(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	links, err := h.Links.List(ctx, c.QueryParam("search"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, links)
}

// Delete handles DELETE /api/navigation/:id.
func (h *NavigationHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.Links.Delete(ctx, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
