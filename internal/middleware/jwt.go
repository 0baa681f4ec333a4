package middleware // middleware provides request processing shared by handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/projectdesk/internal/model"
)

// TokenHeader carries the identity token on guarded routes.
const TokenHeader = "x-auth-token"

// Verifier turns a raw token into the identity it encodes.
type Verifier interface {
	Verify(raw string) (model.Identity, error)
}

// AccessGuard verifies the request token and stores the caller identity in
// the context.  The token is read from x-auth-token, falling back to an
// "Authorization: Bearer" header.  A missing or invalid token ends the
// request with 401 before the wrapped handler runs.
func AccessGuard(v Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFrom(c.Request())
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing token"})
			}
			id, err := v.Verify(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			SetIdentity(c, id)
			return next(c)
		}
	}
}

func tokenFrom(r *http.Request) string {
	if t := strings.TrimSpace(r.Header.Get(TokenHeader)); t != "" {
		return t
	}
	auth := r.Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}
