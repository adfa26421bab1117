package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/moviegoer/rottenpotatoes/internal/handler"
	"github.com/moviegoer/rottenpotatoes/internal/middleware"
)

// RegisterRoutes registers routes that need no dependencies. Currently
// that is only the health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers session endpoints. Unauthenticated operations
// live under /v1/auth; /v1/me requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	// Local-provider accounts (password based).
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// External identity providers: the OAuth proxy posts the validated
	// assertion here and the resolver maps it to a moviegoer.
	g.POST("/:provider/callback", a.Callback)
	// Token lifecycle.
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}
