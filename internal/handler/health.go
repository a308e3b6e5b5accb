package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/webpro/backend/internal/model"
)

// Ping is the public liveness check.
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, model.PingResponse{Message: "pong"})
}

func Greeting(c *gin.Context) {
	c.JSON(http.StatusOK, model.MessageResponse{Message: "Hello, " + GetPrincipal(c).Username})
}

func About(c *gin.Context) {
	c.JSON(http.StatusOK, model.MessageResponse{Message: "Bearer-token authenticated API"})
}
