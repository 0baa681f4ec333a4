package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/projectdesk/internal/model"
	"github.com/iliyamo/projectdesk/internal/repository"
	"github.com/iliyamo/projectdesk/internal/service"
	"github.com/iliyamo/projectdesk/internal/utils"
)

// UserHandler is the administrator's view of user accounts.
type UserHandler struct {
	Users      *repository.UserRepo
	BcryptCost int
}

func NewUserHandler(users *repository.UserRepo, bcryptCost int) *UserHandler {
	return &UserHandler{Users: users, BcryptCost: bcryptCost}
}

type updateUserReq struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Handle   string `json:"handle"`
	Password string `json:"password"`
	Status   *int   `json:"status"`
	RoleID   uint64 `json:"roleId"`
}

// List handles GET /api/users?search=.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	users, err := h.Users.List(ctx, c.QueryParam("search"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// Get handles GET /api/users/:id.
func (h *UserHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// Update handles PUT /api/users/:id.  An empty password keeps the current
// hash and a missing status keeps the current status.
func (h *UserHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	u := model.User{
		ID:      id,
		Name:    strings.TrimSpace(req.Name),
		Surname: strings.TrimSpace(req.Surname),
		Handle:  strings.TrimSpace(req.Handle),
		RoleID:  req.RoleID,
	}
	switch {
	case u.Name == "" || u.Surname == "" || u.Handle == "":
		return badRequest(c, "name, surname and handle are required")
	case u.RoleID == 0:
		return badRequest(c, "roleId is required")
	case req.Password != "" && len(req.Password) < service.MinPasswordLen:
		return badRequest(c, "password must be at least 6 characters")
	case len(req.Password) > service.MaxPasswordLen:
		return badRequest(c, "password must be at most 72 bytes")
	}
	if req.Status != nil {
		if *req.Status != model.StatusActive && *req.Status != model.StatusInactive {
			return badRequest(c, "status must be 0 or 1")
		}
		u.Status = *req.Status
	}
	if req.Password != "" {
		hash, err := utils.HashPassword(req.Password, h.BcryptCost)
		if err != nil {
			return respondError(c, err)
		}
		u.PasswordHash = hash
	}

	ctx, cancel := withTimeout(c)
	defer cancel()
	if req.Status == nil {
		current, err := h.Users.GetByID(ctx, id)
		if err != nil {
			return respondError(c, err)
		}
		u.Status = current.Status
	}
	if err := h.Users.Update(ctx, u); err != nil {
		return respondRoleRef(c, err)
	}
	updated, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// ToggleStatus handles PUT /api/users/:id/deactivate.
func (h *UserHandler) ToggleStatus(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	status, err := h.Users.ToggleStatus(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": status})
}

// Delete handles DELETE /api/users/:id.
func (h *UserHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.Users.Delete(ctx, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
