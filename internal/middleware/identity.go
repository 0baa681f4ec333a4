package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/projectdesk/internal/model"
)

// identityKey is the echo context key the access guard stores the verified
// caller under.
const identityKey = "identity"

// SetIdentity attaches a verified identity to the request context.
func SetIdentity(c echo.Context, id model.Identity) { c.Set(identityKey, id) }

// IdentityFrom returns the identity attached by AccessGuard, if any.
func IdentityFrom(c echo.Context) (model.Identity, bool) {
	id, ok := c.Get(identityKey).(model.Identity)
	return id, ok
}
