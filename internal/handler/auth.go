package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/webpro/backend/internal/logging"
	"github.com/webpro/backend/internal/model"
	"github.com/webpro/backend/internal/service"
)

const invalidCredentialsMessage = "Invalid credentials"

type AuthHandler struct {
	svc    *service.AuthService
	logger logging.Logger
}

func NewAuthHandler(svc *service.AuthService, logger logging.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, logger: logger}
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.AuthRequest true "Username and password"
// @Success 200 {object} model.RegisterResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Registration failed: invalid request"})
		return
	}

	identity, err := h.svc.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.writeRegisterError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.RegisterResponse{
		Message:  "User registered successfully",
		Username: identity.Username,
	})
}

// Login godoc
// @Summary Login and obtain a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.AuthRequest true "Username and password"
// @Success 200 {object} model.LoginResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request"})
		return
	}

	result, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.writeLoginError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.LoginResponse{
		Token:     result.Token,
		Username:  result.Username,
		ExpiresAt: result.ExpiresAt,
	})
}

// Config godoc
// @Summary Get auth config
// @Tags auth
// @Produce json
// @Success 200 {object} model.AuthConfigResponse
// @Router /api/auth/config [get]
func (h *AuthHandler) Config(c *gin.Context) {
	c.JSON(http.StatusOK, model.AuthConfigResponse{
		AllowSignup: h.svc.AllowSignup(),
	})
}

// Me godoc
// @Summary Get current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.AuthMeResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	p := GetPrincipal(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, model.AuthMeResponse{
		Username:    p.Username,
		Authorities: p.Authorities,
	})
}

func (h *AuthHandler) writeLoginError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: invalidCredentialsMessage})
		return
	}
	requestLogger(c, h.logger).Error(c.Request.Context(), "login failed", "error", err)
	c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "server error"})
}

func (h *AuthHandler) writeRegisterError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDuplicateUsername):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Registration failed: username already exists"})
	case errors.Is(err, service.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Registration failed: " + validationReason(err)})
	case errors.Is(err, service.ErrSignupDisabled):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Registration failed: signup disabled"})
	default:
		requestLogger(c, h.logger).Error(c.Request.Context(), "registration failed", "error", err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "server error"})
	}
}

// validationReason strips the sentinel prefix from a wrapped validation error.
func validationReason(err error) string {
	return strings.TrimPrefix(err.Error(), service.ErrValidationFailed.Error()+": ")
}
