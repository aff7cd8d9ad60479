package controller

import (
	"github.com/krakosik/userhub/internal/dto"
	"github.com/krakosik/userhub/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Controllers interface {
	User() UserController
	Info() InfoController
	Health() HealthController
	Docs() DocsController

	Route(e *echo.Echo)
}

type controllers struct {
	userController   UserController
	infoController   InfoController
	healthController HealthController
	docsController   DocsController

	authService service.AuthService
	config      dto.Config
}

func NewControllers(services service.Services, config dto.Config) Controllers {
	return &controllers{
		userController:   newUserController(services.User()),
		infoController:   newInfoController(config),
		healthController: newHealthController(services.Health()),
		docsController:   newDocsController(),
		authService:      services.Auth(),
		config:           config,
	}
}

func (c controllers) User() UserController {
	return c.userController
}

func (c controllers) Info() InfoController {
	return c.infoController
}

func (c controllers) Health() HealthController {
	return c.healthController
}

func (c controllers) Docs() DocsController {
	return c.docsController
}

// NewEcho returns an echo instance with the error handler, validator and
// global middleware installed, and every route mounted.
func NewEcho(controllers Controllers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = HTTPErrorHandler
	e.Validator = NewValidator()

	e.Use(middleware.RequestID())
	e.Use(RequestLogger())
	e.Use(middleware.Recover())

	controllers.Route(e)
	return e
}

func (c controllers) Route(e *echo.Echo) {
	e.GET("/", c.infoController.Info)
	e.GET("/health", c.healthController.Check)

	if !c.config.IsProduction() {
		e.GET("/docs", c.docsController.OpenAPI, DocsBasicAuth(c.config))
	}

	api := e.Group("/api/v1", Authenticate(c.authService))

	users := api.Group("/users")
	users.GET("", c.userController.List)
	users.GET("/cursor", c.userController.ListCursor)
	users.GET("/me", c.userController.Me)
	users.PATCH("/me", c.userController.UpdateMe)
	users.GET("/:id", c.userController.Get)
	users.DELETE("/:id", c.userController.Delete, RequireAdmin)
	users.POST("/:id/restore", c.userController.Restore, RequireAdmin)
}
