package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/webpro/backend/internal/config"
	"github.com/webpro/backend/internal/logging"
	"github.com/webpro/backend/internal/model"
	"github.com/webpro/backend/internal/service"
)

type RouterDeps struct {
	Auth          *service.AuthService
	Authenticator *service.RequestAuthenticator
	CORS          config.CORSConfig
	Logger        logging.Logger
}

// SetMode applies GIN_MODE, rejecting values gin would panic on.
func SetMode(mode string) error {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		gin.SetMode(mode)
		return nil
	}
	return fmt.Errorf("%w: unknown GIN_MODE %q", service.ErrMisconfigured, mode)
}

// NewRouter wires middleware and routes. Everything except login,
// register, the auth config probe and /ping requires a principal,
// including paths with no route.
func NewRouter(deps RouterDeps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Nop{}
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(logger))
	router.Use(CORSMiddleware(deps.CORS.AllowedOrigins, deps.CORS.AllowCredentials))
	router.Use(AuthMiddleware(deps.Authenticator, logger))

	authHandler := NewAuthHandler(deps.Auth, logger)

	router.GET("/ping", Ping)

	public := router.Group("/api")
	public.POST("/register", authHandler.Register)
	public.POST("/login", authHandler.Login)
	public.GET("/auth/config", authHandler.Config)

	protected := router.Group("/")
	protected.Use(RequireAuth())
	protected.GET("/", Greeting)
	protected.GET("/about", About)
	protected.GET("/api/me", authHandler.Me)

	router.NoRoute(RequireAuth(), notFound)

	return router
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "not found"})
}
