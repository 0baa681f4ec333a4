package router // package router wires repositories, services and handlers onto echo routes

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/projectdesk/internal/config"
	"github.com/iliyamo/projectdesk/internal/handler"
	"github.com/iliyamo/projectdesk/internal/middleware"
	"github.com/iliyamo/projectdesk/internal/repository"
	"github.com/iliyamo/projectdesk/internal/service"
)

// Options carries everything the HTTP server is built from.  Redis may be
// nil, in which case caching and rate limiting pass requests through.
type Options struct {
	Config    config.Config
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	DB        *sql.DB
	Redis     *redis.Client
	Events    service.Publisher
}

// New builds the echo instance with the shared middleware stack and every
// route registered.
func New(o Options) *echo.Echo {
	if o.Events == nil {
		o.Events = service.NoopPublisher{}
	}
	cfg := o.Config

	users := repository.NewUserRepo(o.DB)
	auth := &service.Authenticator{
		Users:      users,
		Secret:     cfg.JWTSecret,
		TTL:        cfg.TokenTTL(),
		BcryptCost: cfg.BcryptCost,
		Events:     o.Events,
	}
	menus := &service.MenuResolver{Menus: repository.NewMenuRepo(o.DB), SubSubmenuActions: cfg.SubSubmenuActions}
	perms := &service.PermissionEditor{Perms: repository.NewPermissionRepo(o.DB), Events: o.Events}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, middleware.TokenHeader},
	}))

	RegisterRoutes(e)
	api := e.Group("/api")
	RegisterAuth(api, handler.NewAuthHandler(auth), auth, middleware.NewTokenBucket(o.RateLimit, o.Redis))
	RegisterMenu(api, handler.NewMenuHandler(menus, perms), auth, cfg.AdminRoleID, middleware.NewRedisCache(o.Cache, o.Redis))
	RegisterAdmin(api, AdminHandlers{
		Users:      handler.NewUserHandler(users, cfg.BcryptCost),
		Roles:      handler.NewRoleHandler(repository.NewRoleRepo(o.DB), o.Events),
		Navigation: handler.NewNavigationHandler(repository.NewNavigationRepo(o.DB)),
	}, auth, cfg.AdminRoleID)
	return e
}

// RegisterRoutes registers routes that need no authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the credential endpoints, both behind the rate
// limiter, and the guarded /me.
func RegisterAuth(api *echo.Group, a *handler.AuthHandler, v middleware.Verifier, limiter echo.MiddlewareFunc) {
	g := api.Group("/auth", limiter)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	api.GET("/me", a.Me, middleware.AccessGuard(v))
}
