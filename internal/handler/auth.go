package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/projectdesk/internal/service"
)

// AuthHandler exposes registration, login and the caller's identity.
type AuthHandler struct {
	Auth *service.Authenticator
}

func NewAuthHandler(a *service.Authenticator) *AuthHandler { return &AuthHandler{Auth: a} }

type registerReq struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Handle   string `json:"handle"`
	Password string `json:"password"`
	RoleID   uint64 `json:"roleId"`
}

type loginReq struct {
	Handle   string `json:"handle"`
	Password string `json:"password"`
}

type tokenResp struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	tok, err := h.Auth.Register(ctx, service.RegisterInput{
		Name: req.Name, Surname: req.Surname, Handle: req.Handle, Password: req.Password, RoleID: req.RoleID,
	})
	if err != nil {
		return respondRoleRef(c, err)
	}
	return c.JSON(http.StatusCreated, tokenResp{Token: tok.Token, Expires: tok.Exp})
}

// Login handles POST /api/auth/login.  Unknown handle, wrong password and
// inactive account all answer 400.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.Handle == "" || req.Password == "" {
		return badRequest(c, "handle and password are required")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	tok, err := h.Auth.Login(ctx, req.Handle, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tokenResp{Token: tok.Token, Expires: tok.Exp})
}

// Me returns the verified identity of the caller.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, identity(c))
}
