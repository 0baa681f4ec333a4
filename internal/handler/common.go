package handler // handler defines the HTTP handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/projectdesk/internal/middleware"
	"github.com/iliyamo/projectdesk/internal/model"
	"github.com/iliyamo/projectdesk/internal/repository"
	"github.com/iliyamo/projectdesk/internal/service"
)

// reqTimeout bounds the storage work of a single request.
const reqTimeout = 5 * time.Second

func withTimeout(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), reqTimeout)
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

func identity(c echo.Context) model.Identity {
	id, _ := middleware.IdentityFrom(c)
	return id
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// respondError maps domain errors onto status codes.  Anything unrecognised
// is logged and reported as a generic 500 so storage detail never reaches
// the client.
func respondError(c echo.Context, err error) error {
	var verr *service.ValidationError
	var unknown *repository.UnknownMenuError
	switch {
	case errors.As(err, &verr):
		return badRequest(c, verr.Error())
	case errors.As(err, &unknown):
		return badRequest(c, unknown.Error())
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInactiveAccount):
		return badRequest(c, err.Error())
	case errors.Is(err, service.ErrInvalidToken):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrNoMenuFound),
		errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrRoleNotFound),
		errors.Is(err, repository.ErrNavigationNotFound),
		errors.Is(err, repository.ErrMenuNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		log.WithError(err).WithField("path", c.Path()).Warn("request timed out")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "request timed out"})
	}
	log.WithError(err).WithFields(log.Fields{"method": c.Request().Method, "path": c.Path()}).Error("internal error")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// respondRoleRef is respondError for requests that reference a role in
// their body: an unknown role there is bad input, not a missing resource.
func respondRoleRef(c echo.Context, err error) error {
	if errors.Is(err, repository.ErrRoleNotFound) {
		return badRequest(c, "role does not exist")
	}
	return respondError(c, err)
}
