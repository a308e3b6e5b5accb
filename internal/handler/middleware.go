package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/webpro/backend/internal/logging"
	"github.com/webpro/backend/internal/model"
	"github.com/webpro/backend/internal/service"
)

const (
	requestIDHeader = "X-Request-ID"
	loggerKey       = "logger"
)

// AuthMiddleware resolves the bearer token into a principal on the request
// context. It never rejects; RequireAuth does.
func AuthMiddleware(authenticator *service.RequestAuthenticator, logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if _, ok := service.PrincipalFrom(ctx); ok {
			c.Next()
			return
		}

		principal, outcome := authenticator.Authenticate(ctx, c.GetHeader("Authorization"))
		if principal != nil {
			c.Request = c.Request.WithContext(service.WithPrincipal(ctx, principal))
		}
		if outcome != service.OutcomeNoToken {
			requestLogger(c, logger).Debug(ctx, "bearer token evaluated", "outcome", string(outcome))
		}

		c.Next()
	}
}

// RequireAuth rejects requests that carry no principal.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetPrincipal(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{Error: "unauthorized"})
			return
		}
		c.Next()
	}
}

func GetPrincipal(c *gin.Context) *model.Principal {
	if p, ok := service.PrincipalFrom(c.Request.Context()); ok {
		return p
	}
	return nil
}

// RequestLogger tags each request with an id and logs its completion.
func RequestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		reqLogger := logger.With("request_id", requestID)
		c.Set(loggerKey, reqLogger)

		c.Next()

		reqLogger.Info(c.Request.Context(), "request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
		)
	}
}

func requestLogger(c *gin.Context, fallback logging.Logger) logging.Logger {
	if value, ok := c.Get(loggerKey); ok {
		if l, ok := value.(logging.Logger); ok {
			return l
		}
	}
	return fallback
}

func CORSMiddleware(allowedOrigins []string, allowCredentials bool) gin.HandlerFunc {
	originMap := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		originMap[trimmed] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := originMap[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
				if allowCredentials {
					c.Header("Access-Control-Allow-Credentials", "true")
				}
				c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
				c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
